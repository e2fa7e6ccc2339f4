package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/model"
	"github.com/sells-group/choropleth-cli/internal/scene"
)

var (
	renderData   dataFlags
	renderFormat string
	renderOut    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the map as SVG, HTML, or JSON draw instructions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("render"); err != nil {
			return err
		}

		in, err := loadInputs(cmd.Context(), cfg, renderData.resolve(cfg))
		if err != nil {
			return err
		}

		doc := scene.NewDocument(cfg.Canvas.MountID)
		m, err := newRenderer(cfg).Render(doc, cfg.Canvas.MountID, in.boundaries, in.attributes)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if renderOut != "" {
			f, err := os.Create(renderOut)
			if err != nil {
				return eris.Wrapf(err, "render: create %s", renderOut)
			}
			defer f.Close() //nolint:errcheck
			w = f
		}

		if err := writeRender(w, renderFormat, doc, m); err != nil {
			return err
		}

		zap.L().Info("map rendered",
			zap.String("render_id", m.ID()),
			zap.String("format", renderFormat),
			zap.Int("regions", len(m.Regions())),
			zap.Int("markers", len(m.Markers())),
		)
		return nil
	},
}

// renderJSON is the draw-instruction output of render --format json.
type renderJSON struct {
	RenderID string                  `json:"render_id"`
	ViewBox  string                  `json:"view_box"`
	Regions  []choropleth.RegionDraw `json:"regions"`
	Markers  []model.MarkerSpec      `json:"markers"`
}

// writeRender encodes a rendered map in the requested format.
func writeRender(w io.Writer, format string, doc *scene.Document, m *choropleth.Map) error {
	switch format {
	case "svg", "":
		return scene.Write(w, m.SVG())
	case "html":
		return scene.WriteHTML(w, doc)
	case "json":
		vb, _ := m.SVG().Attr("viewBox")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(renderJSON{
			RenderID: m.ID(),
			ViewBox:  vb,
			Regions:  m.Regions(),
			Markers:  m.Markers(),
		}), "render: encode json")
	default:
		return eris.Errorf("render: unknown format %q (want svg, html, or json)", format)
	}
}

func init() {
	renderData.register(renderCmd)
	renderCmd.Flags().StringVar(&renderFormat, "format", "svg", "output format: svg, html, or json")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(renderCmd)
}
