package fem

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/mechlab/topopt/internal/material"
)

// Assemble builds the global stiffness matrix over the free DOFs for
// the density field x, scaling the shared elemental matrix ke by the
// SIMP law with exponent penal and soft-kill floor eps.
func (c *Cantilever) Assemble(x []float64, ke *mat.SymDense, penal, eps float64) (*mat.SymDense, error) {
	n := c.grid.NumElems()
	if len(x) != n {
		return nil, fmt.Errorf("fem: density has %d entries, want %d", len(x), n)
	}
	k := mat.NewSymDense(len(c.free), nil)
	for e := 0; e < n; e++ {
		s := material.Interp(x[e], penal, eps)
		dofs := c.grid.ElemDOFs(e)
		for i := 0; i < 8; i++ {
			ri := c.index[dofs[i]]
			if ri < 0 {
				continue
			}
			for j := 0; j < 8; j++ {
				rj := c.index[dofs[j]]
				if rj < ri {
					continue
				}
				k.SetSym(ri, rj, k.At(ri, rj)+s*ke.At(i, j))
			}
		}
	}
	return k, nil
}

// Solve factorizes k and returns the full global displacement vector,
// with zeros at the clamped DOFs.
func (c *Cantilever) Solve(k *mat.SymDense) ([]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(k); !ok {
		return nil, fmt.Errorf("fem: stiffness matrix is not positive definite")
	}

	fr := make([]float64, len(c.free))
	for i, d := range c.free {
		fr[i] = c.load[d]
	}

	var ur mat.VecDense
	if err := chol.SolveVecTo(&ur, mat.NewVecDense(len(fr), fr)); err != nil {
		return nil, fmt.Errorf("fem: solve failed: %w", err)
	}

	u := make([]float64, c.grid.NumDOFs())
	for i, d := range c.free {
		u[d] = ur.AtVec(i)
	}
	return u, nil
}

// Displacements assembles and solves in one step.
func (c *Cantilever) Displacements(x []float64, ke *mat.SymDense, penal, eps float64) ([]float64, error) {
	k, err := c.Assemble(x, ke, penal, eps)
	if err != nil {
		return nil, err
	}
	return c.Solve(k)
}

// Compliance is the work done by the external load, f·u.
func (c *Cantilever) Compliance(u []float64) float64 {
	return floats.Dot(c.load, u)
}
