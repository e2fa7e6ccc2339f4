// Package dataset loads boundary and attribute datasets from local files.
package dataset

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// BoundaryOptions controls how region names are read from a boundary dataset.
type BoundaryOptions struct {
	NameProperty string // GeoJSON property or shapefile field holding the region name
	Charset      string // shapefile DBF encoding; empty means raw bytes
}

// DefaultBoundaryOptions reads Japanese prefecture names.
func DefaultBoundaryOptions() BoundaryOptions {
	return BoundaryOptions{NameProperty: "name_ja", Charset: "shift_jis"}
}

// LoadBoundaries reads a boundary dataset, choosing the format by extension:
// .json/.geojson for GeoJSON, .shp for shapefiles.
func LoadBoundaries(ctx context.Context, path string, opts BoundaryOptions) ([]model.BoundaryFeature, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "dataset: load boundaries")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".geojson":
		return ReadGeoJSONFile(path, opts.NameProperty)
	case ".shp":
		return ReadShapefile(path, opts)
	default:
		return nil, eris.Errorf("dataset: unsupported boundary format %q", ext)
	}
}

// LoadAttributes reads an attribute dataset, choosing the format by extension:
// .json, .yaml/.yml, .csv, .xlsx, or .db/.sqlite.
func LoadAttributes(ctx context.Context, path string) ([]model.RegionAttributes, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "dataset: load attributes")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ReadJSONFile(path)
	case ".yaml", ".yml":
		return ReadYAMLFile(path)
	case ".csv":
		return ReadCSVFile(ctx, path)
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{})
	case ".db", ".sqlite", ".sqlite3":
		return ReadSQLite(ctx, path, DefaultTable)
	default:
		return nil, eris.Errorf("dataset: unsupported attribute format %q", ext)
	}
}
