package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"time"

	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/render"
)

// Export renders the region's chart as PNG and/or SVG and the daily series as CSV.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" && opts.SVGPath == "" {
		return errors.New("at least one of --csv, --png or --svg must be provided")
	}

	dataset, err := a.loadDataset(ctx, opts.DataPath)
	if err != nil {
		return err
	}

	ctrl := dashboard.New(dataset, a.dashboardOptions(), a.Logger)
	view, err := ctrl.Select(opts.Region)
	if err != nil {
		return err
	}
	if view.Chart.Empty() {
		a.Logger.Info().Str("region", string(view.Filter.Region)).Msg("no sales found for export")
		return nil
	}

	a.Logger.Info().Str("region", string(view.Filter.Region)).Int("days", len(view.Chart.Points)).Msg("exporting daily sales")

	if opts.CSVPath != "" {
		if err := writeDailyCSV(opts.CSVPath, view.Chart); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := a.writeChart(opts.PNGPath, view.Chart, render.FormatPNG); err != nil {
			return err
		}
	}

	if opts.SVGPath != "" {
		if err := a.writeChart(opts.SVGPath, view.Chart, render.FormatSVG); err != nil {
			return err
		}
	}

	return nil
}

func writeDailyCSV(path string, spec dashboard.ChartSpec) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"date", "region", "total_sales"}); err != nil {
		return err
	}

	for _, p := range spec.Points {
		record := []string{
			p.Date.UTC().Format(time.DateOnly),
			string(spec.Region),
			p.Sales.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (a *App) writeChart(path string, spec dashboard.ChartSpec, format render.Format) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := render.Chart(file, spec, format, a.chartSize()); err != nil {
		return err
	}
	a.Logger.Debug().Str("path", path).Str("format", string(format)).Msg("chart written")
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
