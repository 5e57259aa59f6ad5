package cli

import (
	"github.com/spf13/cobra"

	"sales-dashboard/internal/app"
)

var (
	importFile     string
	importTruncate bool
	importDryRun   bool
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load a sales CSV into PostgreSQL",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ImportOptions{
			File:     importFile,
			Truncate: importTruncate,
			DryRun:   importDryRun,
		}
		if len(args) == 1 {
			opts.File = args[0]
		}
		if opts.File == "" {
			opts.File = dataPath
		}
		return getApp().Import(cmd.Context(), opts)
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "Sales CSV to import (defaults to data.path)")
	importCmd.Flags().BoolVar(&importTruncate, "truncate", false, "Remove existing records before importing")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse the file without writing to the database")
}
