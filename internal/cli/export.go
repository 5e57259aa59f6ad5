package cli

import (
	"github.com/spf13/cobra"

	"sales-dashboard/internal/app"
)

var (
	exportRegion  string
	exportPNGPath string
	exportSVGPath string
	exportCSVPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the sales chart as PNG/SVG and the daily totals as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Region:   exportRegion,
			DataPath: dataPath,
			PNGPath:  exportPNGPath,
			SVGPath:  exportSVGPath,
			CSVPath:  exportCSVPath,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRegion, "region", "all", "Region filter: north, east, south, west or all")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportSVGPath, "svg", "", "Path to write SVG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write daily totals as CSV")
}
