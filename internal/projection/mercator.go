// Package projection maps longitude/latitude geometry onto the map canvas.
package projection

import (
	"math"

	"github.com/twpayne/go-geom"
)

// maxLatitude bounds Mercator's y axis; beyond it the projection diverges.
const maxLatitude = 85.0511287798

// Config positions the projection on the canvas.
type Config struct {
	Center    [2]float64 `yaml:"center" mapstructure:"center"`       // lon, lat
	Translate [2]float64 `yaml:"translate" mapstructure:"translate"` // canvas point the center lands on
	Scale     float64    `yaml:"scale" mapstructure:"scale"`
}

// DefaultConfig frames Japan on a 400x400 canvas.
func DefaultConfig() Config {
	return Config{
		Center:    [2]float64{137.0, 38.2},
		Translate: [2]float64{200, 200},
		Scale:     1000,
	}
}

// Mercator is a conformal cylindrical projection centered on Config.Center.
// It is immutable and safe for concurrent use.
type Mercator struct {
	cfg    Config
	dx, dy float64
}

// New builds a Mercator projection from cfg.
func New(cfg Config) *Mercator {
	cx, cy := raw(cfg.Center[0], cfg.Center[1])
	return &Mercator{
		cfg: cfg,
		dx:  cfg.Translate[0] - cfg.Scale*cx,
		dy:  cfg.Translate[1] + cfg.Scale*cy,
	}
}

// Config returns the configuration the projection was built from.
func (m *Mercator) Config() Config { return m.cfg }

// Project maps a lon/lat pair in degrees to canvas coordinates.
func (m *Mercator) Project(lon, lat float64) (x, y float64) {
	rx, ry := raw(lon, lat)
	return m.dx + m.cfg.Scale*rx, m.dy - m.cfg.Scale*ry
}

// raw is the unscaled Mercator transform in radians.
func raw(lon, lat float64) (float64, float64) {
	lat = math.Max(-maxLatitude, math.Min(maxLatitude, lat))
	lambda := lon * math.Pi / 180
	phi := lat * math.Pi / 180
	return lambda, math.Log(math.Tan(math.Pi/4 + phi/2))
}

// ring is a projected closed ring without its repeated closing vertex.
type ring [][2]float64

// projectRings projects every linear ring of a polygonal geometry.
// Unsupported geometry types yield nil.
func (m *Mercator) projectRings(g geom.T) []ring {
	var out []ring
	switch t := g.(type) {
	case *geom.Polygon:
		out = m.appendPolygon(out, t)
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			out = m.appendPolygon(out, t.Polygon(i))
		}
	}
	return out
}

func (m *Mercator) appendPolygon(out []ring, p *geom.Polygon) []ring {
	if p == nil {
		return out
	}
	stride := p.Stride()
	for i := 0; i < p.NumLinearRings(); i++ {
		flat := p.LinearRing(i).FlatCoords()
		n := len(flat) / stride
		if n > 1 && flat[0] == flat[(n-1)*stride] && flat[1] == flat[(n-1)*stride+1] {
			n--
		}
		if n == 0 {
			continue
		}
		r := make(ring, n)
		for j := 0; j < n; j++ {
			x, y := m.Project(flat[j*stride], flat[j*stride+1])
			r[j] = [2]float64{x, y}
		}
		out = append(out, r)
	}
	return out
}
