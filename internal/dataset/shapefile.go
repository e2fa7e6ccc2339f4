package dataset

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/choropleth-cli/internal/model"
)

// ReadShapefile reads polygon boundaries from a .shp file and its .dbf.
// The region name comes from the opts.NameProperty field, decoded from opts.Charset.
func ReadShapefile(path string, opts BoundaryOptions) ([]model.BoundaryFeature, error) {
	var dec *encoding.Decoder
	if opts.Charset != "" {
		enc, err := htmlindex.Get(opts.Charset)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: unknown charset %q", opts.Charset)
		}
		dec = enc.NewDecoder()
	}

	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open shapefile")
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, opts.NameProperty)
	if nameIdx < 0 {
		return nil, eris.Errorf("dataset: shapefile field %q not found", opts.NameProperty)
	}

	log := zap.L().With(zap.String("component", "dataset.shapefile"))

	var out []model.BoundaryFeature
	for reader.Next() {
		row, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			log.Debug("dataset: skipping non-polygon shape", zap.Int("row", row))
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if dec != nil {
			decoded, err := dec.String(name)
			if err != nil {
				return nil, eris.Wrapf(err, "dataset: decode name in row %d", row)
			}
			name = strings.TrimSpace(decoded)
		}
		if name == "" {
			log.Debug("dataset: shape has no name, drawing it without data", zap.Int("row", row))
		}

		g := polygonToMultiPolygon(poly)
		if g == nil {
			log.Debug("dataset: skipping empty polygon", zap.String("region", name))
			continue
		}
		out = append(out, model.BoundaryFeature{Name: name, Geometry: g})
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrap(err, "dataset: read shapefile")
	}

	log.Debug("shapefile boundaries loaded", zap.Int("features", len(out)))
	return out, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Clockwise rings start a new polygon; counter-clockwise rings are holes in
// the polygon before them.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("dataset: skipping malformed polygon part", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 3 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current == nil || signedArea(flat) < 0 {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("dataset: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace area of a flat XY ring; negative means clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
