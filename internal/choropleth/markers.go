package choropleth

import (
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// Hokkaido is drawn so large that its marker needs a wider offset to sit on the island.
const Hokkaido = "北海道"

// DefaultSizeDivisor converts population to marker size in canvas units.
const DefaultSizeDivisor = 100000

// Offsets is the table of marker position offsets. A marker is drawn at
// centroid minus its offset on both axes.
type Offsets struct {
	Default   float64            `yaml:"default" mapstructure:"default"`
	Overrides map[string]float64 `yaml:"overrides" mapstructure:"overrides"`
}

// DefaultOffsets returns the standard table: 5 units, 25 for Hokkaido.
func DefaultOffsets() Offsets {
	return Offsets{
		Default:   5,
		Overrides: map[string]float64{Hokkaido: 25},
	}
}

// For returns the offset for a region.
func (o Offsets) For(name string) float64 {
	if v, ok := o.Overrides[name]; ok {
		return v
	}
	return o.Default
}

// PlaceMarkers returns one marker per flagged attribute record, in dataset
// order. Records without a matching boundary, or whose boundary has no
// computable centroid, are skipped.
func PlaceMarkers(p Projector, boundaries []model.BoundaryFeature, attrs []model.RegionAttributes, offsets Offsets, sizeDivisor float64) []model.MarkerSpec {
	if sizeDivisor <= 0 {
		sizeDivisor = DefaultSizeDivisor
	}

	byName := make(map[string]int, len(boundaries))
	for i, f := range boundaries {
		if f.Name == "" {
			continue
		}
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = i
		}
	}

	var out []model.MarkerSpec
	for _, a := range attrs {
		if !a.Flag {
			continue
		}
		i, ok := byName[a.Name]
		if !ok {
			zap.L().Debug("choropleth: no boundary for flagged region, marker omitted", zap.String("region", a.Name))
			continue
		}
		x, y, ok := p.Centroid(boundaries[i].Geometry)
		if !ok {
			zap.L().Debug("choropleth: empty geometry, marker omitted", zap.String("region", a.Name))
			continue
		}
		out = append(out, model.MarkerSpec{
			Name:   a.Name,
			X:      x,
			Y:      y,
			Size:   a.Population / sizeDivisor,
			Offset: offsets.For(a.Name),
		})
	}
	return out
}
