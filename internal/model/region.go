package model

import (
	"strconv"

	"github.com/twpayne/go-geom"
)

// NoData is the tooltip text shown for a region with no joined attribute record.
const NoData = "データなし"

// BoundaryFeature is one region's shape from the boundary dataset.
type BoundaryFeature struct {
	Name     string `json:"name"`
	Geometry geom.T `json:"-"` // *geom.Polygon or *geom.MultiPolygon, lon/lat
}

// RegionAttributes is one region's record from the attribute dataset.
type RegionAttributes struct {
	Name       string  `json:"name" yaml:"name"`
	Population float64 `json:"population" yaml:"population"`
	Flag       bool    `json:"flag" yaml:"flag"`
}

// PopulationText formats the population the way it appears in tooltips.
// A nil record yields the NoData sentinel.
func (a *RegionAttributes) PopulationText() string {
	if a == nil {
		return NoData
	}
	return strconv.FormatFloat(a.Population, 'f', -1, 64)
}

// Populations returns the population of every record in dataset order.
func Populations(attrs []RegionAttributes) []float64 {
	out := make([]float64, len(attrs))
	for i, a := range attrs {
		out[i] = a.Population
	}
	return out
}

// MarkerSpec describes one marker icon derived from a flagged region.
type MarkerSpec struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`      // projected centroid
	Y      float64 `json:"y"`      // projected centroid
	Size   float64 `json:"size"`   // width and height
	Offset float64 `json:"offset"` // subtracted from both centroid axes
}

// Left returns the icon's top-left x coordinate.
func (m MarkerSpec) Left() float64 { return m.X - m.Offset }

// Top returns the icon's top-left y coordinate.
func (m MarkerSpec) Top() float64 { return m.Y - m.Offset }
