package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/config"
	"github.com/sells-group/choropleth-cli/internal/dataset"
	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/projection"
	"github.com/sells-group/choropleth-cli/internal/textmetrics"
)

// dataFlags holds the dataset paths shared by render, hover, and serve.
type dataFlags struct {
	boundaries string
	attributes string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.boundaries, "boundaries", "", "boundary file: GeoJSON or shapefile (default from config)")
	cmd.Flags().StringVar(&f.attributes, "attributes", "", "attribute file: JSON, YAML, CSV, XLSX, or SQLite (default from config)")
}

// resolve fills unset paths from config.
func (f dataFlags) resolve(c *config.Config) dataFlags {
	if f.boundaries == "" {
		f.boundaries = c.Data.Boundaries
	}
	if f.attributes == "" {
		f.attributes = c.Data.Attributes
	}
	return f
}

type inputs struct {
	boundaries []model.BoundaryFeature
	attributes []model.RegionAttributes
}

// loadInputs reads both datasets concurrently. The first failure cancels the
// other load.
func loadInputs(ctx context.Context, c *config.Config, paths dataFlags) (*inputs, error) {
	var in inputs
	opts := dataset.BoundaryOptions{
		NameProperty: c.Data.NameProperty,
		Charset:      c.Data.Charset,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := dataset.LoadBoundaries(gctx, paths.boundaries, opts)
		if err != nil {
			return err
		}
		in.boundaries = b
		return nil
	})
	g.Go(func() error {
		a, err := dataset.LoadAttributes(gctx, paths.attributes)
		if err != nil {
			return err
		}
		in.attributes = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Debug("inputs loaded",
		zap.String("boundaries", paths.boundaries),
		zap.Int("regions", len(in.boundaries)),
		zap.String("attributes", paths.attributes),
		zap.Int("records", len(in.attributes)),
	)
	return &in, nil
}

// newRenderer builds a renderer from config.
func newRenderer(c *config.Config) *choropleth.Renderer {
	proj := projection.DefaultConfig()
	if len(c.Projection.Center) == 2 {
		proj.Center = [2]float64{c.Projection.Center[0], c.Projection.Center[1]}
	}
	if c.Projection.Scale > 0 {
		proj.Scale = c.Projection.Scale
	}
	proj.Translate = [2]float64{c.Canvas.Width / 2, c.Canvas.Height / 2}

	offsets := choropleth.Offsets{
		Default:   c.Marker.DefaultOffset,
		Overrides: c.Marker.OffsetTable(),
	}

	opts := []choropleth.Option{
		choropleth.WithProjection(proj),
		choropleth.WithCanvas(choropleth.Canvas{
			Width:   c.Canvas.Width,
			Height:  c.Canvas.Height,
			OffsetY: c.Canvas.OffsetY,
		}),
		choropleth.WithIcon(c.Marker.Icon),
		choropleth.WithOffsets(offsets),
		choropleth.WithSizeDivisor(c.Marker.SizeDivisor),
		choropleth.WithLabelPadding(c.Label.Padding),
	}

	if c.Label.FontSize > 0 {
		m, err := textmetrics.NewGoFont(c.Label.FontSize)
		if err != nil {
			zap.L().Warn("label font unavailable, using default metrics", zap.Error(err))
		} else {
			opts = append(opts, choropleth.WithMeasurer(m))
		}
	}

	return choropleth.NewRenderer(opts...)
}
