package optimize

import "sort"

// BESO is the evolutionary updater: densities are binary, and each
// iteration removes the least useful solid elements (sensitivity
// closest to zero) and revives the most promising voids, capped by the
// volume and topology change rates.
type BESO struct {
	volChange  float64
	topoChange float64
}

func NewBESO(volChange, topoChange float64) *BESO {
	if volChange <= 0 {
		volChange = 0.015625
	}
	if topoChange <= 0 {
		topoChange = 0.03125
	}
	return &BESO{volChange: volChange, topoChange: topoChange}
}

func (b *BESO) Name() string { return "beso" }

func (b *BESO) Initial(n int, volfrac float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 1.0
	}
	return x
}

func (b *BESO) Update(x, alpha []float64, volfrac float64) {
	n := len(x)
	target := int(volfrac * float64(n))
	dVmax := int(b.volChange * float64(n))
	if dVmax < 1 {
		dVmax = 1
	}
	dXmax := b.topoChange * float64(n)
	if dXmax < 2 {
		dXmax = 2
	}

	var solid, void []int
	for e := range x {
		if x[e] > 0.5 {
			solid = append(solid, e)
		} else {
			void = append(void, e)
		}
	}
	// ascending sensitivity: most negative (most useful) first; the
	// pinned -Inf load path sorts to the front and is never reached
	// from the removal end
	sort.Slice(solid, func(i, j int) bool { return alpha[solid[i]] < alpha[solid[j]] })
	sort.Slice(void, func(i, j int) bool { return alpha[void[i]] < alpha[void[j]] })

	removed := 0
	for removed < len(solid)-target && removed < dVmax {
		x[solid[len(solid)-1-removed]] = 0
		removed++
	}

	// volume-neutral swaps: trade the weakest remaining solid for the
	// strongest void while the exchange still pays off
	swaps := int((dXmax - float64(removed)) / 2)
	for i := 0; i < swaps && i < len(void); i++ {
		si := len(solid) - 1 - removed - i
		if si < 0 {
			break
		}
		es, ev := solid[si], void[i]
		if alpha[es] < alpha[ev] {
			break
		}
		x[es] = 0
		x[ev] = 1
	}
}
