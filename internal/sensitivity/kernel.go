package sensitivity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// penaltyTol guards the degenerate p=1 case: within this tolerance of
// one, the penalization derivative factor is taken as exactly 1 and no
// density scaling is applied.
const penaltyTol = 1e-9

// Compute fills out[e] with the compliance sensitivity of every
// element of an nx-by-ny column-major grid. density holds one value
// per element, dke is the shared 8x8 base stiffness-derivative matrix,
// disp the global displacement vector (two DOFs per node), and penal
// the SIMP penalization exponent.
//
// All inputs except out are read-only. Preconditions are checked
// before any write: density and out must have length nx*ny, dke must
// be 8x8, and disp must cover every DOF of the grid.
func Compute(out, density []float64, dke mat.Matrix, disp []float64, penal float64, nx, ny int) error {
	if err := validate(out, density, dke, disp, nx, ny); err != nil {
		return err
	}
	elemRange(out, density, dke, disp, penal, ny, 0, nx*ny)
	return nil
}

func validate(out, density []float64, dke mat.Matrix, disp []float64, nx, ny int) error {
	if nx < 1 || ny < 1 {
		return fmt.Errorf("%w: %dx%d", ErrGridSize, nx, ny)
	}
	n := nx * ny
	if len(density) != n {
		return fmt.Errorf("%w: density has %d entries, want %d", ErrFieldLength, len(density), n)
	}
	if len(out) != n {
		return fmt.Errorf("%w: output has %d entries, want %d", ErrFieldLength, len(out), n)
	}
	r, c := dke.Dims()
	if r != 8 || c != 8 {
		return fmt.Errorf("%w: got %dx%d", ErrMatrixShape, r, c)
	}
	// The largest DOF index belongs to the top-right node (nx+1)(ny+1)-1.
	if need := 2 * (nx + 1) * (ny + 1); len(disp) < need {
		return fmt.Errorf("%w: displacement has %d entries, need %d", ErrDOFRange, len(disp), need)
	}
	return nil
}

// elemRange computes sensitivities for elements [start, end). The node
// numbering is the analytic column-major formula with ny+1 node rows
// per column; n0 is the bottom node of the element's left edge.
func elemRange(out, density []float64, dke mat.Matrix, disp []float64, penal float64, ny, start, end int) {
	scaled := penal > 1+penaltyTol
	for e := start; e < end; e++ {
		n0 := e + e/ny
		n1 := n0 + ny + 1
		n2 := n1 + 1
		n3 := n0 + 1

		var dofs [8]int
		for k, n := range [4]int{n0, n1, n2, n3} {
			dofs[2*k] = 2 * n
			dofs[2*k+1] = 2*n + 1
		}

		var ue, fe [8]float64
		for i, d := range dofs {
			ue[i] = disp[d]
		}
		for i := 0; i < 8; i++ {
			sum := 0.0
			for j := 0; j < 8; j++ {
				sum += dke.At(i, j) * ue[j]
			}
			fe[i] = sum
		}

		s := 0.0
		for i := 0; i < 8; i++ {
			s -= ue[i] * fe[i]
		}
		if scaled {
			s *= penal * math.Pow(density[e], penal-1)
		}
		out[e] = s
	}
}
