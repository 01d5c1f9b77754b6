// Package filter implements the mesh-independency sensitivity filter:
// each element's sensitivity becomes a distance-weighted average of
// its neighborhood, suppressing checkerboard patterns.
package filter

import (
	"fmt"
	"math"

	"github.com/mechlab/topopt/internal/mesh"
)

// Sensitivities writes into out the filtered field of in, using linear
// weights w = radius - dist between element centroids. Elements
// farther apart than radius do not interact; the element itself always
// carries weight radius, so the result is well defined everywhere.
// out and in must not alias.
func Sensitivities(out, in []float64, g mesh.Grid, radius float64) error {
	n := g.NumElems()
	if len(in) != n || len(out) != n {
		return fmt.Errorf("filter: field lengths %d/%d do not match element count %d", len(in), len(out), n)
	}
	if radius <= 0 {
		return fmt.Errorf("filter: radius must be positive, got %f", radius)
	}

	h := g.ElemSize()
	band := int(radius/h) + 1

	for e := 0; e < n; e++ {
		col := e / g.Ny
		row := e % g.Ny
		cx, cy := g.Centroid(e)

		sum, wsum := 0.0, 0.0
		for dc := -band; dc <= band; dc++ {
			c2 := col + dc
			if c2 < 0 || c2 >= g.Nx {
				continue
			}
			for dr := -band; dr <= band; dr++ {
				r2 := row + dr
				if r2 < 0 || r2 >= g.Ny {
					continue
				}
				j := c2*g.Ny + r2
				jx, jy := g.Centroid(j)
				w := radius - math.Hypot(jx-cx, jy-cy)
				if w <= 0 {
					continue
				}
				sum += w * in[j]
				wsum += w
			}
		}
		out[e] = sum / wsum
	}
	return nil
}
