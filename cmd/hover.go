package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/choropleth"
	"github.com/sells-group/choropleth-cli/internal/scene"
)

var (
	hoverData   dataFlags
	hoverRegion string
)

var hoverCmd = &cobra.Command{
	Use:   "hover",
	Short: "Hover a region and print the tooltip and label it produces",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("hover"); err != nil {
			return err
		}

		in, err := loadInputs(cmd.Context(), cfg, hoverData.resolve(cfg))
		if err != nil {
			return err
		}

		doc := scene.NewDocument(cfg.Canvas.MountID)
		m, err := newRenderer(cfg).Render(doc, cfg.Canvas.MountID, in.boundaries, in.attributes)
		if err != nil {
			return err
		}

		view, err := hoverOnce(doc, m, hoverRegion)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(view), "hover: encode view")
	},
}

// hoverOnce enters and leaves the named region, returning the overlay shown
// while hovered. It fails if leaving does not restore the document.
func hoverOnce(doc *scene.Document, m *choropleth.Map, name string) (choropleth.View, error) {
	before := doc.Root.Markup()

	if err := m.PointerEnter(name); err != nil {
		return choropleth.View{}, err
	}
	view, _ := m.Hovered()
	if err := m.PointerLeave(name); err != nil {
		return choropleth.View{}, err
	}

	if doc.Root.Markup() != before {
		return view, eris.Errorf("hover: leaving %q did not restore the document", name)
	}

	zap.L().Debug("hover verified",
		zap.String("render_id", m.ID()),
		zap.String("region", name),
	)
	return view, nil
}

func init() {
	hoverData.register(hoverCmd)
	hoverCmd.Flags().StringVar(&hoverRegion, "region", "", "region name to hover")
	_ = hoverCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(hoverCmd)
}
