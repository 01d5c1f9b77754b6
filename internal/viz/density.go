// Package viz renders density fields and optimization progress in the
// terminal.
package viz

import "strings"

var shadeRunes = []rune{' ', '░', '▒', '▓', '█'}

// DensityMap renders the element density field as a shade map, one
// pair of cells per element, top row first. Two characters per element
// roughly squares the aspect ratio of a terminal cell.
func DensityMap(x []float64, nx, ny int) string {
	var b strings.Builder
	for r := ny - 1; r >= 0; r-- {
		for c := 0; c < nx; c++ {
			v := x[c*ny+r]
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			shade := shadeRunes[int(v*float64(len(shadeRunes)-1)+0.5)]
			b.WriteRune(shade)
			b.WriteRune(shade)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
