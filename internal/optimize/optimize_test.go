package optimize

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/mechlab/topopt/internal/fem"
	"github.com/mechlab/topopt/internal/material"
	"github.com/mechlab/topopt/internal/mesh"
)

func TestRegistry(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range []string{"oc", "beso"} {
		up, err := NewUpdater(name, cfg)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if up.Name() != name {
			t.Errorf("expected name %q, got %q", name, up.Name())
		}
	}
	if _, err := NewUpdater("simplex", cfg); err == nil {
		t.Error("expected error for unknown updater")
	}
	names := Updaters()
	if len(names) != 2 || names[0] != "beso" || names[1] != "oc" {
		t.Errorf("unexpected updater list %v", names)
	}
}

func TestOCHoldsVolumeTarget(t *testing.T) {
	n := 200
	volfrac := 0.5
	oc := NewOC(0.2)

	x := oc.Initial(n, volfrac)
	rng := rand.New(rand.NewSource(11))
	alpha := make([]float64, n)
	for i := range alpha {
		alpha[i] = -rng.Float64()
	}

	oc.Update(x, alpha, volfrac)

	sum := 0.0
	for _, v := range x {
		if v < 1e-3-1e-15 || v > 1 {
			t.Fatalf("density %g outside [xmin, 1]", v)
		}
		sum += v
	}
	if math.Abs(sum/float64(n)-volfrac) > 0.01 {
		t.Errorf("expected mean density near %f, got %f", volfrac, sum/float64(n))
	}
}

func TestOCMoveLimit(t *testing.T) {
	n := 50
	oc := NewOC(0.1)
	x := oc.Initial(n, 0.5)
	alpha := make([]float64, n)
	for i := range alpha {
		alpha[i] = -float64(i + 1)
	}
	oc.Update(x, alpha, 0.5)
	for e, v := range x {
		if math.Abs(v-0.5) > 0.1+1e-12 {
			t.Errorf("element %d moved by %f, limit 0.1", e, math.Abs(v-0.5))
		}
	}
}

func TestBESORemovesWeakestElements(t *testing.T) {
	n := 100
	beso := NewBESO(0.05, 0.1)
	x := beso.Initial(n, 0.5)

	// element e has sensitivity -(n-e): high indices are weakest
	alpha := make([]float64, n)
	for e := range alpha {
		alpha[e] = -float64(n - e)
	}

	beso.Update(x, alpha, 0.5)

	solid := 0
	for _, v := range x {
		if v == 1.0 {
			solid++
		}
	}
	if solid != n-5 { // dVmax = 0.05*100
		t.Fatalf("expected 95 solid elements after one step, got %d", solid)
	}
	for e := n - 5; e < n; e++ {
		if x[e] != 0 {
			t.Errorf("expected weakest element %d removed", e)
		}
	}
}

func TestBESOKeepsPinnedElements(t *testing.T) {
	n := 20
	beso := NewBESO(0.5, 0.5) // aggressive caps
	x := beso.Initial(n, 0.1)

	alpha := make([]float64, n)
	for e := range alpha {
		alpha[e] = -float64(e + 1)
	}
	alpha[0] = math.Inf(-1)

	for i := 0; i < 5; i++ {
		beso.Update(x, alpha, 0.1)
	}
	if x[0] != 1.0 {
		t.Error("pinned element was removed")
	}
}

func TestBESOSwapsVolumeNeutral(t *testing.T) {
	beso := NewBESO(0.1, 0.6)
	x := []float64{1, 1, 1, 1, 1, 0, 0, 0, 0, 0}
	// voids 5..9 are more useful than solids 0..4
	alpha := []float64{-1, -2, -3, -4, -5, -10, -11, -12, -13, -14}

	before := 0.0
	for _, v := range x {
		before += v
	}
	beso.Update(x, alpha, 0.5)
	after := 0.0
	for _, v := range x {
		after += v
	}
	if after != before {
		t.Fatalf("expected volume preserved at target, got %f -> %f", before, after)
	}
	if x[9] != 1.0 {
		t.Error("expected strongest void revived")
	}
	if x[0] != 0.0 {
		t.Error("expected weakest solid removed")
	}
}

func runSetup(t *testing.T, updater string, cfg Config) *Optimizer {
	t.Helper()
	g, err := mesh.New(8, 4, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	c, err := fem.NewCantilever(g, 0, 0.5, 0, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	ke := material.PlaneStress(1.0, 0.3)
	up, err := NewUpdater(updater, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return New(c, ke, up, cfg)
}

func TestRunOC(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilterRadius = 0.3
	cfg.MaxIters = 30
	cfg.Patience = 5
	cfg.Workers = 2

	res, err := runSetup(t, "oc", cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations < 1 || res.Iterations > cfg.MaxIters {
		t.Fatalf("unexpected iteration count %d", res.Iterations)
	}
	if len(res.Compliance) != res.Iterations || len(res.Volume) != res.Iterations {
		t.Fatal("history lengths do not match iteration count")
	}
	for i, comp := range res.Compliance {
		if comp <= 0 {
			t.Fatalf("iteration %d: non-positive compliance %f", i, comp)
		}
	}
	last := res.Volume[len(res.Volume)-1]
	if math.Abs(last-cfg.VolFrac) > 0.02 {
		t.Errorf("expected final volume near %f, got %f", cfg.VolFrac, last)
	}
	if res.BestCompliance <= 0 || math.IsInf(res.BestCompliance, 0) {
		t.Errorf("bad best compliance %f", res.BestCompliance)
	}
	if len(res.Best) != len(res.Density) {
		t.Error("best field length mismatch")
	}
}

func TestRunBESO(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilterRadius = 0.3
	cfg.MaxIters = 60
	cfg.Patience = 5
	cfg.Workers = 2

	res, err := runSetup(t, "beso", cfg).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	last := res.Volume[len(res.Volume)-1]
	if last > cfg.VolFrac+1e-9 {
		t.Errorf("expected volume at or below %f, got %f", cfg.VolFrac, last)
	}
	for e, v := range res.Density {
		if v != 0 && v != 1 {
			t.Fatalf("element %d: expected binary density, got %f", e, v)
		}
	}
}

func TestRunObserver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilterRadius = 0.3
	cfg.MaxIters = 3
	cfg.Patience = 100

	opt := runSetup(t, "oc", cfg)
	calls := 0
	opt.Observer = func(iter int, x []float64, compliance, volume float64) {
		if iter != calls {
			t.Errorf("expected iteration %d, got %d", calls, iter)
		}
		if len(x) != 32 {
			t.Errorf("unexpected field length %d", len(x))
		}
		calls++
	}
	res, err := opt.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if calls != res.Iterations {
		t.Errorf("observer called %d times for %d iterations", calls, res.Iterations)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := runSetup(t, "oc", DefaultConfig()).Run(ctx)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res.Iterations != 0 || res.Density != nil {
		t.Error("expected empty result when cancelled before the first solve")
	}
}

// A run cancelled mid-flight still delivers the density fields and
// metrics for the iterations it completed.
func TestRunCancelledKeepsProgress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FilterRadius = 0.3
	cfg.MaxIters = 10
	cfg.Patience = 100

	opt := runSetup(t, "oc", cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opt.Observer = func(iter int, x []float64, compliance, volume float64) {
		if iter == 2 {
			cancel()
		}
	}

	res, err := opt.Run(ctx)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Iterations != 3 {
		t.Fatalf("expected 3 completed iterations, got %d", res.Iterations)
	}
	if len(res.Density) != 32 || len(res.Best) != 32 {
		t.Fatalf("expected density fields on cancelled run, got %d/%d", len(res.Density), len(res.Best))
	}
	if res.BestCompliance <= 0 || math.IsInf(res.BestCompliance, 0) {
		t.Errorf("bad best compliance %f", res.BestCompliance)
	}
	if res.Metrics["iterations"] != 3 {
		t.Errorf("expected iterations metric 3, got %f", res.Metrics["iterations"])
	}
	if len(res.Compliance) != 3 || len(res.Volume) != 3 {
		t.Errorf("history lengths %d/%d do not match completed iterations", len(res.Compliance), len(res.Volume))
	}
}
