package mesh

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0, 4, 1.0); err == nil {
		t.Error("expected error for zero columns")
	}
	if _, err := New(4, -1, 1.0); err == nil {
		t.Error("expected error for negative rows")
	}
	if _, err := New(4, 4, 0); err == nil {
		t.Error("expected error for zero height")
	}
}

func TestCounts(t *testing.T) {
	g, err := New(3, 2, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if g.NumElems() != 6 {
		t.Errorf("expected 6 elements, got %d", g.NumElems())
	}
	if g.NumNodes() != 12 {
		t.Errorf("expected 12 nodes, got %d", g.NumNodes())
	}
	if g.NumDOFs() != 24 {
		t.Errorf("expected 24 dofs, got %d", g.NumDOFs())
	}
}

func TestElemNodes2x2(t *testing.T) {
	g, _ := New(2, 2, 1.0)

	tests := []struct {
		e     int
		nodes [4]int
	}{
		{0, [4]int{0, 3, 4, 1}},
		{1, [4]int{1, 4, 5, 2}},
		{2, [4]int{3, 6, 7, 4}},
		{3, [4]int{4, 7, 8, 5}},
	}
	for _, tt := range tests {
		if got := g.ElemNodes(tt.e); got != tt.nodes {
			t.Errorf("element %d: expected nodes %v, got %v", tt.e, tt.nodes, got)
		}
	}
}

func TestElemDOFsOrder(t *testing.T) {
	g, _ := New(2, 2, 1.0)

	// element 0: nodes 0,3,4,1 -> dofs in [n0x n0y n1x n1y n2x n2y n3x n3y]
	want := [8]int{0, 1, 6, 7, 8, 9, 2, 3}
	if got := g.ElemDOFs(0); got != want {
		t.Errorf("expected dofs %v, got %v", want, got)
	}
}

func TestSharedEdgeNodes(t *testing.T) {
	g, _ := New(2, 2, 1.0)

	shared := func(a, b [4]int) int {
		count := 0
		for _, na := range a {
			for _, nb := range b {
				if na == nb {
					count++
				}
			}
		}
		return count
	}

	// vertical neighbors in the same column share their horizontal edge
	if n := shared(g.ElemNodes(0), g.ElemNodes(1)); n != 2 {
		t.Errorf("elements 0,1: expected 2 shared nodes, got %d", n)
	}
	// horizontal neighbors share their vertical edge
	if n := shared(g.ElemNodes(0), g.ElemNodes(2)); n != 2 {
		t.Errorf("elements 0,2: expected 2 shared nodes, got %d", n)
	}
	// diagonal neighbors share a single corner
	if n := shared(g.ElemNodes(0), g.ElemNodes(3)); n != 1 {
		t.Errorf("elements 0,3: expected 1 shared node, got %d", n)
	}
}

func TestCoords(t *testing.T) {
	g, _ := New(2, 2, 1.0)

	x, y := g.NodeCoord(0)
	if x != 0 || y != -0.5 {
		t.Errorf("node 0: expected (0,-0.5), got (%f,%f)", x, y)
	}
	x, y = g.NodeCoord(8)
	if x != 1.0 || y != 0.5 {
		t.Errorf("node 8: expected (1,0.5), got (%f,%f)", x, y)
	}

	cx, cy := g.Centroid(0)
	if math.Abs(cx-0.25) > 1e-15 || math.Abs(cy+0.25) > 1e-15 {
		t.Errorf("element 0: expected centroid (0.25,-0.25), got (%f,%f)", cx, cy)
	}
}
