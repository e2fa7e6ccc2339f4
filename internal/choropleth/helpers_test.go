package choropleth

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/textmetrics"
)

const mountID = "map-container"

var testMetrics = textmetrics.Fixed{CharWidth: 10, Ascent: 12, Descent: 4}

// region builds a square boundary of the given half-width around lon/lat.
func region(name string, lon, lat, half float64) model.BoundaryFeature {
	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{lon - half, lat - half},
		{lon + half, lat - half},
		{lon + half, lat + half},
		{lon - half, lat + half},
		{lon - half, lat - half},
	}})
	return model.BoundaryFeature{Name: name, Geometry: poly}
}

func japan() []model.BoundaryFeature {
	return []model.BoundaryFeature{
		region("北海道", 142.8, 43.4, 2),
		region("東京都", 139.6, 35.7, 0.3),
		region("沖縄県", 127.8, 26.3, 0.4),
		region("XX県", 133.0, 34.0, 0.5),
	}
}

func populations() []model.RegionAttributes {
	return []model.RegionAttributes{
		{Name: "北海道", Population: 5200000, Flag: true},
		{Name: "東京都", Population: 14000000, Flag: true},
		{Name: "沖縄県", Population: 1400000, Flag: false},
	}
}

func testRenderer(opts ...Option) *Renderer {
	return NewRenderer(append([]Option{WithMeasurer(testMetrics)}, opts...)...)
}

// stubProjector returns canned paths and centroids keyed by geometry pointer.
type stubProjector struct {
	centroids map[geom.T][2]float64
}

func (s stubProjector) Path(g geom.T) string {
	if g == nil {
		return ""
	}
	return "M0,0Z"
}

func (s stubProjector) Centroid(g geom.T) (float64, float64, bool) {
	c, ok := s.centroids[g]
	if !ok {
		return 0, 0, false
	}
	return c[0], c[1], true
}
