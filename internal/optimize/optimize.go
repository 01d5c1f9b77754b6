// Package optimize runs the quasi-static compliance minimization loop:
// solve the cantilever, evaluate element sensitivities, filter and
// blend them, then let an updater redistribute material until the
// volume target is met and compliance stops improving.
package optimize

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mechlab/topopt/internal/fem"
	"github.com/mechlab/topopt/internal/filter"
	"github.com/mechlab/topopt/internal/material"
	"github.com/mechlab/topopt/internal/sensitivity"
)

// improveTol separates genuine compliance improvements from float
// noise when tracking the best design.
const improveTol = 1e-14

type Config struct {
	Penalty      float64
	VolFrac      float64
	FilterRadius float64
	Momentum     float64
	Patience     int
	MaxIters     int
	MoveLimit    float64 // oc: density change cap per iteration
	VolChange    float64 // beso: volume fraction removed per iteration
	TopoChange   float64 // beso: fraction of elements toggled per iteration
	SoftKill     float64
	Workers      int
}

func DefaultConfig() Config {
	return Config{
		Penalty:      3.0,
		VolFrac:      0.5,
		FilterRadius: 0.125,
		Momentum:     0.5,
		Patience:     20,
		MaxIters:     200,
		MoveLimit:    0.2,
		VolChange:    0.015625,
		TopoChange:   0.03125,
		SoftKill:     1e-6,
		Workers:      4,
	}
}

// Updater redistributes material given the blended sensitivity field.
// Load-path elements arrive pinned at -Inf and must stay solid.
type Updater interface {
	Name() string
	Initial(n int, volfrac float64) []float64
	Update(x, alpha []float64, volfrac float64)
}

type Result struct {
	Density        []float64 // final density field
	Best           []float64 // best field seen at target volume
	Compliance     []float64 // per-iteration history
	Volume         []float64 // per-iteration volume fraction
	Iterations     int
	BestCompliance float64
	Metrics        map[string]float64
}

type Optimizer struct {
	model   *fem.Cantilever
	ke      *mat.SymDense
	updater Updater
	cfg     Config

	// Observer, when set, is called once per iteration with the
	// current density field before the update step.
	Observer func(iter int, x []float64, compliance, volume float64)
}

func New(model *fem.Cantilever, ke *mat.SymDense, updater Updater, cfg Config) *Optimizer {
	return &Optimizer{model: model, ke: ke, updater: updater, cfg: cfg}
}

func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	g := o.model.Grid()
	n := g.NumElems()
	dke := material.Variation(o.ke, o.cfg.SoftKill)

	x := o.updater.Initial(n, o.cfg.VolFrac)
	alpha := make([]float64, n)
	alphaF := make([]float64, n)
	alphaM := make([]float64, n) // momentum state, persists across iterations

	res := &Result{Metrics: make(map[string]float64)}
	best := math.Inf(1)
	var bestX []float64
	waiting := 0

	for it := 0; it < o.cfg.MaxIters; it++ {
		select {
		case <-ctx.Done():
			// a cancelled run still carries whatever it computed
			finalize(res, x, best, bestX)
			return res, ctx.Err()
		default:
		}

		u, err := o.model.Displacements(x, o.ke, o.cfg.Penalty, o.cfg.SoftKill)
		if err != nil {
			return nil, err
		}
		comp := o.model.Compliance(u)
		vol := mean(x)
		res.Compliance = append(res.Compliance, comp)
		res.Volume = append(res.Volume, vol)
		res.Iterations = it + 1

		if o.Observer != nil {
			o.Observer(it, x, comp, vol)
		}

		if err := sensitivity.ComputeParallel(alpha, x, dke, u, o.cfg.Penalty, g.Nx, g.Ny, o.cfg.Workers); err != nil {
			return nil, err
		}
		if err := filter.Sensitivities(alphaF, alpha, g, o.cfg.FilterRadius); err != nil {
			return nil, err
		}

		// momentum blend on normalized sensitivities; the load path is
		// zeroed before blending and pinned after so it never erodes
		for _, e := range o.model.LoadElems() {
			alphaM[e] = 0
		}
		m := maxAbs(alphaF)
		if m == 0 {
			m = 1
		}
		for i := range alphaM {
			alphaM[i] = o.cfg.Momentum*alphaM[i] + (1-o.cfg.Momentum)*alphaF[i]/m
		}
		if m = maxAbs(alphaM); m == 0 {
			m = 1
		}
		for i := range alphaM {
			alphaM[i] /= m
		}
		for _, e := range o.model.LoadElems() {
			alphaM[e] = math.Inf(-1)
		}

		if vol <= o.cfg.VolFrac*(1+1e-3) {
			if comp < (1-improveTol)*best {
				best = comp
				bestX = clone(x)
				waiting = 0
			} else {
				waiting++
				if waiting >= o.cfg.Patience {
					break
				}
			}
		}

		o.updater.Update(x, alphaM, o.cfg.VolFrac)
	}

	finalize(res, x, best, bestX)
	return res, nil
}

// finalize fills the density fields and metrics from whatever the loop
// accumulated. A run stopped before its first solve stays empty.
func finalize(res *Result, x []float64, best float64, bestX []float64) {
	if res.Iterations == 0 {
		return
	}
	res.Density = x
	if bestX == nil {
		bestX = clone(x)
		best = res.Compliance[len(res.Compliance)-1]
	}
	res.Best = bestX
	res.BestCompliance = best
	res.Metrics["compliance"] = res.Compliance[len(res.Compliance)-1]
	res.Metrics["best_compliance"] = best
	res.Metrics["volume"] = res.Volume[len(res.Volume)-1]
	res.Metrics["iterations"] = float64(res.Iterations)
}

func mean(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		if a := math.Abs(v); a > m && !math.IsInf(a, 1) {
			m = a
		}
	}
	return m
}

func clone(x []float64) []float64 {
	c := make([]float64, len(x))
	copy(c, x)
	return c
}
