package dataset

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// ReadGeoJSON decodes a FeatureCollection of Polygon/MultiPolygon features.
// Features with other geometry types are skipped with a warning. A feature
// without a string name property is kept with an empty name; it is drawn but
// never joins an attribute record.
func ReadGeoJSON(r io.Reader, nameProperty string) ([]model.BoundaryFeature, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "dataset: decode geojson")
	}

	log := zap.L().With(zap.String("component", "dataset.geojson"))

	out := make([]model.BoundaryFeature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil {
			continue
		}
		name, _ := f.Properties[nameProperty].(string)
		if name == "" {
			log.Warn("dataset: feature has no name, drawing it without data",
				zap.Int("feature", i),
				zap.String("property", nameProperty),
			)
		}
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
		default:
			log.Warn("dataset: unsupported geometry, skipping",
				zap.String("region", name),
				zap.String("type", geometryType(f.Geometry)),
			)
			continue
		}
		out = append(out, model.BoundaryFeature{Name: name, Geometry: f.Geometry})
	}

	log.Debug("geojson boundaries loaded", zap.Int("features", len(out)))
	return out, nil
}

// ReadGeoJSONFile reads a GeoJSON file from disk.
func ReadGeoJSONFile(path, nameProperty string) ([]model.BoundaryFeature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open geojson")
	}
	defer f.Close() //nolint:errcheck
	return ReadGeoJSON(f, nameProperty)
}

func geometryType(g geom.T) string {
	switch g.(type) {
	case nil:
		return "null"
	case *geom.Point:
		return "Point"
	case *geom.MultiPoint:
		return "MultiPoint"
	case *geom.LineString:
		return "LineString"
	case *geom.MultiLineString:
		return "MultiLineString"
	case *geom.GeometryCollection:
		return "GeometryCollection"
	default:
		return "unknown"
	}
}
