package material

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// keIndex lays out the 8x8 bilinear quad stiffness matrix from the
// eight distinct coefficients of the closed-form plane-stress
// integration. Local node order is counterclockwise from the
// bottom-left corner.
var keIndex = [8][8]int{
	{0, 1, 2, 3, 4, 5, 6, 7},
	{1, 0, 7, 6, 5, 4, 3, 2},
	{2, 7, 0, 5, 6, 3, 4, 1},
	{3, 6, 5, 0, 7, 2, 1, 4},
	{4, 5, 6, 7, 0, 1, 2, 3},
	{5, 4, 3, 2, 1, 0, 7, 6},
	{6, 3, 4, 1, 2, 7, 0, 5},
	{7, 2, 1, 4, 3, 6, 5, 0},
}

// PlaneStress returns the elemental stiffness matrix of a unit-square
// bilinear quadrilateral in plane stress, for Young's modulus e and
// Poisson's ratio nu. The matrix is independent of element size for
// congruent square elements of unit thickness.
func PlaneStress(e, nu float64) *mat.SymDense {
	c := e / (1 - nu*nu)
	k := [8]float64{
		c * (0.5 - nu/6),
		c * (0.125 + nu/8),
		c * (-0.25 - nu/12),
		c * (-0.125 + 3*nu/8),
		c * (-0.25 + nu/12),
		c * (-0.125 - nu/8),
		c * (nu / 6),
		c * (0.125 - 3*nu/8),
	}
	ke := mat.NewSymDense(8, nil)
	for i := 0; i < 8; i++ {
		for j := i; j < 8; j++ {
			ke.SetSym(i, j, k[keIndex[i][j]])
		}
	}
	return ke
}

// Variation returns the stiffness change (1-eps)*Ke of toggling one
// element between solid and soft-killed void. It is the base matrix of
// the compliance sensitivity: the derivative of Interp is exactly
// p*rho^(p-1) times this factor of Ke.
func Variation(ke *mat.SymDense, eps float64) *mat.SymDense {
	dke := mat.NewSymDense(8, nil)
	for i := 0; i < 8; i++ {
		for j := i; j < 8; j++ {
			dke.SetSym(i, j, (1-eps)*ke.At(i, j))
		}
	}
	return dke
}

// Interp is the SIMP stiffness law: the factor multiplying Ke for an
// element of density rho under penalization p, with soft-kill floor
// eps keeping the global matrix positive definite at rho=0.
func Interp(rho, p, eps float64) float64 {
	return eps + (1-eps)*math.Pow(rho, p)
}
