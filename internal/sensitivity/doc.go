// Package sensitivity computes per-element compliance sensitivities
// for SIMP topology optimization on a regular quadrilateral mesh.
//
// For every element the kernel gathers the eight nodal displacements,
// evaluates the strain-energy quadratic form against the shared base
// stiffness-derivative matrix, and scales it by the SIMP penalization
// derivative:
//
//	d(compliance)/d(rho_e) = -p * rho_e^(p-1) * ue' * dKe * ue
//
// Elements are fully independent: no element reads another element's
// density or output slot, so the map parallelizes without locks.
//
// # Thread Safety
//
// Compute and ComputeParallel are stateless; concurrent calls on
// disjoint output slices are safe.
package sensitivity
