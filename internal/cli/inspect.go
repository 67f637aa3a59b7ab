package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osmag/agmerge/pkg/osmag"
	"github.com/osmag/agmerge/pkg/render"
)

// newInspectCmd creates the inspect command, which renders a merged map's
// area/passage graph for visual review.
func newInspectCmd() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Render a merged map's connectivity graph",
		Long: `Inspect draws the area/passage graph of an osmAG file: one cluster per
floor, one node per area, passage ways as edges. Vertical passages appear as
bold edges crossing floor clusters, making missed shaft connections visible.`,
		Example: `  # Print DOT to stdout
  agmerge inspect building.osm

  # Write an SVG
  agmerge inspect building.osm --format svg --output building.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			doc, err := osmag.Load(args[0])
			if err != nil {
				return err
			}
			logger.Debug("loaded map",
				"nodes", len(doc.Nodes), "ways", len(doc.Ways), "relations", len(doc.Relations))

			dot := render.ToDOT(doc, render.Options{Detailed: detailed})

			var data []byte
			switch strings.ToLower(format) {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = render.RenderSVG(dot)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format %q (want dot or svg)", format)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			logger.Info("wrote graph", "format", format, "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include area type and height in labels")

	return cmd
}
