package projection

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func square(minX, minY, maxX, maxY float64) []geom.Coord {
	return []geom.Coord{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY}}
}

// linear returns a projection that is close to identity-in-radians near the equator.
func linear() *Mercator {
	return New(Config{Scale: 1})
}

func TestProject_CenterLandsOnTranslate(t *testing.T) {
	m := New(DefaultConfig())
	x, y := m.Project(137.0, 38.2)
	assert.InDelta(t, 200, x, 1e-9)
	assert.InDelta(t, 200, y, 1e-9)
}

func TestProject_LongitudeIsLinear(t *testing.T) {
	m := New(DefaultConfig())
	x0, _ := m.Project(137.0, 38.2)
	x1, _ := m.Project(138.0, 38.2)
	assert.InDelta(t, 1000*math.Pi/180, x1-x0, 1e-9)
}

func TestProject_NorthIsUp(t *testing.T) {
	m := New(DefaultConfig())
	_, ySouth := m.Project(137.0, 30)
	_, yNorth := m.Project(137.0, 45)
	assert.Less(t, yNorth, ySouth)
}

func TestProject_PolesStayFinite(t *testing.T) {
	m := New(DefaultConfig())
	_, y := m.Project(0, 90)
	assert.False(t, math.IsInf(y, 0))
	assert.False(t, math.IsNaN(y))
}

func TestProject_Deterministic(t *testing.T) {
	m := New(DefaultConfig())
	x1, y1 := m.Project(139.69, 35.68)
	x2, y2 := m.Project(139.69, 35.68)
	assert.Equal(t, x1, x2)
	assert.Equal(t, y1, y2)
}

func TestPath_Polygon(t *testing.T) {
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{square(0, 0, 10, 10)})
	d := New(Config{Scale: 1}).Path(poly)

	require.True(t, strings.HasPrefix(d, "M0,0L"))
	assert.True(t, strings.HasSuffix(d, "Z"))
	// Closing vertex is not repeated.
	assert.Equal(t, 3, strings.Count(d, "L"))
	assert.Equal(t, 1, strings.Count(d, "M"))
}

func TestPath_MultiPolygonEmitsOneSubpathPerRing(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{square(0, 0, 1, 1), square(0.2, 0.2, 0.4, 0.4)},
		{square(5, 5, 6, 6)},
	})
	d := linear().Path(mp)
	assert.Equal(t, 3, strings.Count(d, "M"))
	assert.Equal(t, 3, strings.Count(d, "Z"))
}

func TestPath_RoundsToThreeDecimals(t *testing.T) {
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{square(0, 0, 1, 1)})
	d := New(DefaultConfig()).Path(poly)
	for _, part := range strings.FieldsFunc(d, func(r rune) bool {
		return r == 'M' || r == 'L' || r == 'Z' || r == ','
	}) {
		if i := strings.IndexByte(part, '.'); i >= 0 {
			assert.LessOrEqual(t, len(part)-i-1, 3, "coordinate %q", part)
		}
	}
}

func TestPath_UnsupportedGeometry(t *testing.T) {
	pt := geom.NewPointFlat(geom.XY, []float64{137, 38})
	assert.Equal(t, "", linear().Path(pt))
	assert.Equal(t, "", linear().Path(nil))
}

func TestCentroid_SymmetricSquare(t *testing.T) {
	m := New(DefaultConfig())
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{square(136, 37, 138, 39)})

	x, y, ok := m.Centroid(poly)
	require.True(t, ok)
	assert.InDelta(t, 200, x, 1e-6)

	_, top := m.Project(137, 39)
	_, bottom := m.Project(137, 37)
	assert.Greater(t, y, top)
	assert.Less(t, y, bottom)
}

func TestCentroid_HoleShiftsCentroid(t *testing.T) {
	outer := square(-0.01, -0.01, 0.01, 0.01)
	// Hole wound opposite to the shell.
	hole := []geom.Coord{{0.002, -0.005}, {0.002, 0.005}, {0.008, 0.005}, {0.008, -0.005}, {0.002, -0.005}}
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{outer, hole})

	x, _, ok := linear().Centroid(poly)
	require.True(t, ok)
	assert.Less(t, x, 0.0)
}

func TestCentroid_MultiPolygonBalances(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{square(-0.02, -0.01, -0.01, 0.01)},
		{square(0.01, -0.01, 0.02, 0.01)},
	})
	x, y, ok := linear().Centroid(mp)
	require.True(t, ok)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestCentroid_DegenerateFallbacks(t *testing.T) {
	m := New(Config{Scale: 180 / math.Pi})

	// Collinear ring: zero area, falls back to the edges.
	line := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{{0, 0}, {2, 0}, {1, 0}, {0, 0}}})
	x, y, ok := m.Centroid(line)
	require.True(t, ok)
	assert.InDelta(t, 1, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)

	// All vertices equal: falls back to the vertex mean.
	dot := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{{0, 0}, {0, 0}, {0, 0}, {0, 0}}})
	x, y, ok = m.Centroid(dot)
	require.True(t, ok)
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
}

func TestCentroid_Empty(t *testing.T) {
	_, _, ok := linear().Centroid(geom.NewMultiPolygon(geom.XY))
	assert.False(t, ok)

	_, _, ok = linear().Centroid(nil)
	assert.False(t, ok)
}
