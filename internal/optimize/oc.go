package optimize

import "math"

// OC is the optimality-criteria updater: densities move along
// x*sqrt(-alpha/lambda) with the Lagrange multiplier lambda bisected
// until the mean density meets the volume target.
type OC struct {
	move float64
	xMin float64
}

func NewOC(move float64) *OC {
	if move <= 0 {
		move = 0.2
	}
	return &OC{move: move, xMin: 1e-3}
}

func (o *OC) Name() string { return "oc" }

func (o *OC) Initial(n int, volfrac float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = volfrac
	}
	return x
}

func (o *OC) Update(x, alpha []float64, volfrac float64) {
	n := len(x)
	xnew := make([]float64, n)

	l1, l2 := 0.0, 1e9
	for (l2-l1)/(l2+l1) > 1e-4 {
		lmid := 0.5 * (l1 + l2)
		sum := 0.0
		for e := range x {
			// pinned -Inf sensitivities drive xn to +Inf and land on
			// the upper clamp, so the load path stays solid
			xn := x[e] * math.Sqrt(-alpha[e]/lmid)
			if xn > x[e]+o.move {
				xn = x[e] + o.move
			}
			if xn < x[e]-o.move {
				xn = x[e] - o.move
			}
			if xn > 1 {
				xn = 1
			}
			if xn < o.xMin {
				xn = o.xMin
			}
			xnew[e] = xn
			sum += xn
		}
		if sum/float64(n) > volfrac {
			l1 = lmid
		} else {
			l2 = lmid
		}
	}
	copy(x, xnew)
}
