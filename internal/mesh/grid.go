package mesh

import "fmt"

// Grid is a regular quadrilateral mesh of Nx element columns by Ny
// element rows. Elements and nodes are numbered column-major:
//
//	2_____5_____8_____11
//	| (1) | (3) | (5) |
//	1_____4_____7_____10
//	| (0) | (2) | (4) |
//	0_____3_____6_____9
//
// Each node carries two degrees of freedom, horizontal at 2*node and
// vertical at 2*node+1. Elements are congruent squares of side
// Height/Ny, so a single elemental stiffness matrix serves the whole
// mesh.
type Grid struct {
	Nx, Ny int
	Height float64
}

func New(nx, ny int, height float64) (Grid, error) {
	if nx < 1 || ny < 1 {
		return Grid{}, fmt.Errorf("mesh: grid dimensions must be positive, got %dx%d", nx, ny)
	}
	if height <= 0 {
		return Grid{}, fmt.Errorf("mesh: height must be positive, got %f", height)
	}
	return Grid{Nx: nx, Ny: ny, Height: height}, nil
}

func (g Grid) NumElems() int { return g.Nx * g.Ny }
func (g Grid) NumNodes() int { return (g.Nx + 1) * (g.Ny + 1) }
func (g Grid) NumDOFs() int  { return 2 * g.NumNodes() }

// ElemSize is the side length of every element.
func (g Grid) ElemSize() float64 { return g.Height / float64(g.Ny) }

// ElemNodes returns the four node indices of element e, counterclockwise
// from the bottom-left corner: bottom-left, bottom-right, top-right,
// top-left.
func (g Grid) ElemNodes(e int) [4]int {
	n0 := e + e/g.Ny
	return [4]int{n0, n0 + g.Ny + 1, n0 + g.Ny + 2, n0 + 1}
}

// ElemDOFs returns the eight global DOF indices of element e in local
// order [n0x n0y n1x n1y n2x n2y n3x n3y].
func (g Grid) ElemDOFs(e int) [8]int {
	nodes := g.ElemNodes(e)
	var dofs [8]int
	for k, n := range nodes {
		dofs[2*k] = 2 * n
		dofs[2*k+1] = 2*n + 1
	}
	return dofs
}

// NodeCoord returns the position of node n. The beam midline sits at
// y=0, so the left edge spans y in [-Height/2, Height/2].
func (g Grid) NodeCoord(n int) (x, y float64) {
	h := g.ElemSize()
	col := n / (g.Ny + 1)
	row := n % (g.Ny + 1)
	return float64(col) * h, float64(row)*h - 0.5*g.Height
}

// Centroid returns the center of element e.
func (g Grid) Centroid(e int) (x, y float64) {
	h := g.ElemSize()
	col := e / g.Ny
	row := e % g.Ny
	return (float64(col) + 0.5) * h, (float64(row)+0.5)*h - 0.5*g.Height
}
