package fem

import (
	"fmt"

	"github.com/mechlab/topopt/internal/mesh"
)

// small tolerates floating-point noise when matching node coordinates
// against the clamp and load spans.
const small = 1e-14

// Cantilever is the load case: the left edge is clamped over a span
// centered at bcPos with half-length bcRad (both as fractions of the
// beam height), and a unit downward load is spread over a right-edge
// span given by loadPos and loadRad the same way.
type Cantilever struct {
	grid mesh.Grid

	free  []int // free DOF -> global DOF
	index []int // global DOF -> reduced index, -1 when clamped

	load      []float64 // global load vector
	loadElems []int     // last-column elements touching a loaded node
}

func NewCantilever(g mesh.Grid, bcPos, bcRad, loadPos, loadRad float64) (*Cantilever, error) {
	ny := g.Ny
	h := g.Height

	// clamped nodes on the left edge
	fixed := make([]bool, g.NumDOFs())
	nFixed := 0
	bcMask := make([]bool, ny+1)
	for r := 0; r <= ny; r++ {
		_, y := g.NodeCoord(r)
		if abs(y-bcPos*h) < bcRad*h+small {
			bcMask[r] = true
			fixed[2*r] = true
			fixed[2*r+1] = true
			nFixed++
		}
	}
	if nFixed < 2 {
		return nil, fmt.Errorf("fem: clamp span selects %d node(s), need at least 2", nFixed)
	}

	// loaded nodes on the right edge
	base := g.Nx * (ny + 1)
	var loaded []int
	ldMask := make([]bool, ny+1)
	for r := 0; r <= ny; r++ {
		_, y := g.NodeCoord(base + r)
		if abs(y-loadPos*h) < loadRad*h+small {
			ldMask[r] = true
			loaded = append(loaded, base+r)
		}
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("fem: load span selects no nodes")
	}

	// distribute the unit load: a lone node takes it all, otherwise the
	// span endpoints take half the interior share
	load := make([]float64, g.NumDOFs())
	if len(loaded) == 1 {
		load[2*loaded[0]+1] = -1.0
	} else {
		val := -1.0 / float64(len(loaded)-1)
		for i, n := range loaded {
			if i == 0 || i == len(loaded)-1 {
				load[2*n+1] = 0.5 * val
			} else {
				load[2*n+1] = val
			}
		}
	}

	// last-column elements adjacent to any loaded node stay in the load
	// path and are pinned solid by the optimizer
	var loadElems []int
	for r := 0; r < ny; r++ {
		if ldMask[r] || ldMask[r+1] {
			loadElems = append(loadElems, (g.Nx-1)*ny+r)
		}
	}

	free := make([]int, 0, g.NumDOFs()-2*nFixed)
	index := make([]int, g.NumDOFs())
	for d := range index {
		if fixed[d] {
			index[d] = -1
			continue
		}
		index[d] = len(free)
		free = append(free, d)
	}

	return &Cantilever{grid: g, free: free, index: index, load: load, loadElems: loadElems}, nil
}

func (c *Cantilever) Grid() mesh.Grid { return c.grid }

// Load returns the global load vector, one entry per DOF.
func (c *Cantilever) Load() []float64 { return c.load }

// LoadElems returns the elements carrying the applied load.
func (c *Cantilever) LoadElems() []int { return c.loadElems }

// NumFree returns the number of unconstrained DOFs.
func (c *Cantilever) NumFree() int { return len(c.free) }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
