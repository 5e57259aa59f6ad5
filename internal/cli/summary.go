package cli

import (
	"github.com/spf13/cobra"

	"sales-dashboard/internal/app"
)

var summaryRegion string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print average daily sales before and after the price increase",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SummaryOptions{
			Region:   summaryRegion,
			DataPath: dataPath,
		}
		return getApp().Summary(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	summaryCmd.Flags().StringVar(&summaryRegion, "region", "all", "Region filter: north, east, south, west or all")
}
