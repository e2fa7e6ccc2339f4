// Package textmetrics measures label text so the label box can be sized to it.
package textmetrics

import (
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/width"
)

// DefaultSize is the font size SVG text gets without explicit styling.
const DefaultSize = 16

// Rect is a text bounding box in canvas units. Text drawn at the origin has
// its baseline at y=0, so Y is negative.
type Rect struct {
	X, Y, W, H float64
}

// Measurer computes the bounding box of a text run drawn at the origin.
type Measurer interface {
	BBox(text string) Rect
}

// GoFont measures text with the Go Regular face. Go Regular has no CJK
// glyphs, so East Asian wide and fullwidth runes it cannot draw are measured
// at one em, the advance a CJK fallback font gives them.
type GoFont struct {
	mu   sync.Mutex
	face font.Face
	font *sfnt.Font
	buf  sfnt.Buffer
	em   fixed.Int26_6
}

var (
	goFontOnce sync.Once
	goFontData *opentype.Font
	goFontErr  error
)

// NewGoFont returns a measurer for Go Regular at the given size (72 DPI, so
// one point is one canvas unit).
func NewGoFont(size float64) (*GoFont, error) {
	goFontOnce.Do(func() {
		goFontData, goFontErr = opentype.Parse(goregular.TTF)
	})
	if goFontErr != nil {
		return nil, eris.Wrap(goFontErr, "textmetrics: parse go font")
	}
	if size <= 0 {
		size = DefaultSize
	}
	face, err := opentype.NewFace(goFontData, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, eris.Wrap(err, "textmetrics: new face")
	}
	return &GoFont{face: face, font: goFontData, em: fixed.Int26_6(size * 64)}, nil
}

// BBox implements Measurer.
func (g *GoFont) BBox(text string) Rect {
	g.mu.Lock()
	defer g.mu.Unlock()

	m := g.face.Metrics()
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	return Rect{
		X: 0,
		Y: -ascent,
		W: fixedToFloat(g.advance(text)),
		H: ascent + descent,
	}
}

// advance sums glyph advances and kerning like font.MeasureString, except
// that wide runes missing from the face advance by one em. The caller holds mu.
func (g *GoFont) advance(text string) fixed.Int26_6 {
	var total fixed.Int26_6
	prev, prevOK := rune(-1), false
	for _, r := range text {
		if g.hasGlyph(r) {
			if prevOK {
				total += g.face.Kern(prev, r)
			}
			a, _ := g.face.GlyphAdvance(r)
			total += a
			prev, prevOK = r, true
			continue
		}

		if isWide(r) {
			total += g.em
		} else {
			a, _ := g.face.GlyphAdvance(r)
			total += a
		}
		prevOK = false
	}
	return total
}

func (g *GoFont) hasGlyph(r rune) bool {
	idx, err := g.font.GlyphIndex(&g.buf, r)
	return err == nil && idx != 0
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

// Fixed measures every rune with the same advance. It is deterministic and
// does not depend on font data.
type Fixed struct {
	CharWidth float64
	Ascent    float64
	Descent   float64
}

// BBox implements Measurer.
func (f Fixed) BBox(text string) Rect {
	return Rect{
		X: 0,
		Y: -f.Ascent,
		W: float64(len([]rune(text))) * f.CharWidth,
		H: f.Ascent + f.Descent,
	}
}
