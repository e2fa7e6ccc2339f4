// Package colorscale maps population values onto a sequential Blues ramp.
package colorscale

import (
	"fmt"
	"image/color"
	"math"
)

// Fallback is the neutral fill used when no scale color applies.
const Fallback = "#ccc"

// blues is the 9-class sequential Blues scheme, lightest first.
var blues = []color.RGBA{
	{0xf7, 0xfb, 0xff, 0xff},
	{0xde, 0xeb, 0xf7, 0xff},
	{0xc6, 0xdb, 0xef, 0xff},
	{0x9e, 0xca, 0xe1, 0xff},
	{0x6b, 0xae, 0xd6, 0xff},
	{0x42, 0x92, 0xc6, 0xff},
	{0x21, 0x71, 0xb5, 0xff},
	{0x08, 0x51, 0x9c, 0xff},
	{0x08, 0x30, 0x6b, 0xff},
}

// Color is a fill color. The zero value is not valid; use the scale.
type Color struct {
	rgb      color.RGBA
	fallback string // non-empty for fallback colors
}

// FallbackColor returns the neutral fill as a Color.
func FallbackColor() Color { return Color{fallback: Fallback} }

// IsFallback reports whether c is the neutral fill rather than a ramp color.
func (c Color) IsFallback() bool { return c.fallback != "" }

// RGBA returns the ramp color. Fallback colors report the light gray they stand for.
func (c Color) RGBA() color.RGBA {
	if c.IsFallback() {
		return color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	}
	return c.rgb
}

// String formats c as a CSS color.
func (c Color) String() string {
	if c.IsFallback() {
		return c.fallback
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", c.rgb.R, c.rgb.G, c.rgb.B)
}

// Scale is a continuous sequential scale over [0, max].
type Scale struct {
	max float64
	ok  bool
}

// Build creates a scale whose domain is [0, max(values)].
// With no values the scale is degenerate and every lookup returns the fallback.
func Build(values []float64) *Scale {
	s := &Scale{}
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !s.ok || v > s.max {
			s.max = v
			s.ok = true
		}
	}
	return s
}

// Domain returns the scale's domain. lo is always 0; ok is false for a
// degenerate scale built from no values.
func (s *Scale) Domain() (lo, hi float64, ok bool) {
	return 0, s.max, s.ok
}

// Color maps v onto the ramp. Values at or below 0 map to the lightest color
// and values above the domain max map to the darkest.
func (s *Scale) Color(v float64) Color {
	if !s.ok || math.IsNaN(v) {
		return FallbackColor()
	}
	var t float64
	if s.max != 0 {
		t = v / s.max
	}
	return Interpolate(t)
}

// Interpolate samples the Blues ramp at t in [0, 1] with a uniform
// B-spline through the scheme's colors. t is clamped.
func Interpolate(t float64) Color {
	n := len(blues) - 1
	var i int
	switch {
	case t <= 0 || math.IsNaN(t):
		t, i = 0, 0
	case t >= 1:
		t, i = 1, n-1
	default:
		i = int(math.Floor(t * float64(n)))
	}

	v1, v2 := blues[i], blues[i+1]
	var v0, v3 color.RGBA
	if i > 0 {
		v0 = blues[i-1]
	}
	if i < n-1 {
		v3 = blues[i+2]
	}
	t1 := (t - float64(i)/float64(n)) * float64(n)

	channel := func(c0, c1, c2, c3 uint8, hasPrev, hasNext bool) uint8 {
		a, b, c, d := float64(c0), float64(c1), float64(c2), float64(c3)
		if !hasPrev {
			a = 2*b - c
		}
		if !hasNext {
			d = 2*c - b
		}
		return clampByte(basis(t1, a, b, c, d))
	}
	hasPrev, hasNext := i > 0, i < n-1
	return Color{rgb: color.RGBA{
		R: channel(v0.R, v1.R, v2.R, v3.R, hasPrev, hasNext),
		G: channel(v0.G, v1.G, v2.G, v3.G, hasPrev, hasNext),
		B: channel(v0.B, v1.B, v2.B, v3.B, hasPrev, hasNext),
		A: 0xff,
	}}
}

func basis(t1, v0, v1, v2, v3 float64) float64 {
	t2 := t1 * t1
	t3 := t2 * t1
	return ((1-3*t1+3*t2-t3)*v0 +
		(4-6*t2+3*t3)*v1 +
		(1+3*t1+3*t2-3*t3)*v2 +
		t3*v3) / 6
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
