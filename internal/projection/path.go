package projection

import (
	"math"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// Path renders g as an SVG path string in canvas coordinates.
// Each ring becomes "M x,y L x,y ... Z" with coordinates rounded to 3 decimals.
func (m *Mercator) Path(g geom.T) string {
	var b strings.Builder
	for _, r := range m.projectRings(g) {
		for i, p := range r {
			if i == 0 {
				b.WriteByte('M')
			} else {
				b.WriteByte('L')
			}
			b.WriteString(formatCoord(p[0]))
			b.WriteByte(',')
			b.WriteString(formatCoord(p[1]))
		}
		b.WriteByte('Z')
	}
	return b.String()
}

// Centroid returns the planar centroid of g after projection, so it lines up
// with the drawn path. Rings are weighted by signed area, so holes subtract.
// Zero-area shapes fall back to the edge-length weighted centroid, then to the
// vertex mean. ok is false when g has no vertices.
func (m *Mercator) Centroid(g geom.T) (x, y float64, ok bool) {
	var (
		x0, y0, z0 float64 // vertices
		x1, y1, z1 float64 // edges
		x2, y2, z2 float64 // area
	)
	for _, r := range m.projectRings(g) {
		for i, a := range r {
			b := r[(i+1)%len(r)]

			x0 += a[0]
			y0 += a[1]
			z0++

			l := math.Hypot(b[0]-a[0], b[1]-a[1])
			x1 += l * (a[0] + b[0]) / 2
			y1 += l * (a[1] + b[1]) / 2
			z1 += l

			z := a[0]*b[1] - b[0]*a[1]
			x2 += z * (a[0] + b[0])
			y2 += z * (a[1] + b[1])
			z2 += 3 * z
		}
	}

	switch {
	case z2 != 0:
		return x2 / z2, y2 / z2, true
	case z1 != 0:
		return x1 / z1, y1 / z1, true
	case z0 != 0:
		return x0 / z0, y0 / z0, true
	default:
		return math.NaN(), math.NaN(), false
	}
}

func formatCoord(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
