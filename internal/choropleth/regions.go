// Package choropleth draws a population choropleth into a scene and drives
// its hover overlay.
package choropleth

import (
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/colorscale"
	"github.com/sells-group/choropleth-cli/internal/model"
)

// Region stroke styling.
const (
	Stroke               = "#666"
	StrokeWidth          = 0.25
	HighlightStrokeWidth = 1.0
)

// Projector converts geometry to canvas paths and centroids.
type Projector interface {
	Path(g geom.T) string
	Centroid(g geom.T) (x, y float64, ok bool)
}

// RegionDraw is the draw instruction for one boundary feature.
type RegionDraw struct {
	Name        string                  `json:"name"`
	D           string                  `json:"d"`
	Fill        string                  `json:"fill"`
	Stroke      string                  `json:"stroke"`
	StrokeWidth float64                 `json:"stroke_width"`
	Attributes  *model.RegionAttributes `json:"attributes,omitempty"`
}

// Matched reports whether the region joined an attribute record.
func (r RegionDraw) Matched() bool { return r.Attributes != nil }

// Index joins attribute records by exact region name. When the dataset
// repeats a name, the first record in dataset order wins.
type Index struct {
	attrs      []model.RegionAttributes
	byName     map[string]int
	duplicates []string
}

// NewIndex builds an Index over a copy of attrs.
func NewIndex(attrs []model.RegionAttributes) *Index {
	ix := &Index{
		attrs:  append([]model.RegionAttributes(nil), attrs...),
		byName: make(map[string]int, len(attrs)),
	}
	for i, a := range ix.attrs {
		if _, ok := ix.byName[a.Name]; ok {
			ix.duplicates = append(ix.duplicates, a.Name)
			continue
		}
		ix.byName[a.Name] = i
	}
	if len(ix.duplicates) > 0 {
		zap.L().Warn("choropleth: duplicate attribute names, first record wins",
			zap.Strings("names", ix.duplicates),
		)
	}
	return ix
}

// Lookup returns the record joined to name, or nil.
func (ix *Index) Lookup(name string) *model.RegionAttributes {
	if name == "" {
		return nil
	}
	i, ok := ix.byName[name]
	if !ok {
		return nil
	}
	return &ix.attrs[i]
}

// Duplicates returns the names that appeared more than once, one entry per repeat.
func (ix *Index) Duplicates() []string {
	return append([]string(nil), ix.duplicates...)
}

// BuildRegions computes the path and fill of every boundary feature.
// Features without an attribute record get the fallback fill.
func BuildRegions(p Projector, scale *colorscale.Scale, ix *Index, boundaries []model.BoundaryFeature) []RegionDraw {
	out := make([]RegionDraw, len(boundaries))
	for i, f := range boundaries {
		attrs := ix.Lookup(f.Name)
		fill := colorscale.Fallback
		if attrs != nil {
			fill = scale.Color(attrs.Population).String()
		}
		out[i] = RegionDraw{
			Name:        f.Name,
			D:           p.Path(f.Geometry),
			Fill:        fill,
			Stroke:      Stroke,
			StrokeWidth: StrokeWidth,
			Attributes:  attrs,
		}
	}
	return out
}
