package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/dashboard"
)

// Summary prints the before/after comparison and the daily series for a region.
func (a *App) Summary(ctx context.Context, out io.Writer, opts SummaryOptions) error {
	dataset, err := a.loadDataset(ctx, opts.DataPath)
	if err != nil {
		return err
	}

	ctrl := dashboard.New(dataset, a.dashboardOptions(), a.Logger)
	view, err := ctrl.Select(opts.Region)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n\n", view.Chart.Title)
	if view.Summary.Available {
		writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, line := range view.Summary.Lines {
			fmt.Fprintf(writer, "%s:\t%s\n", line.Label, line.Value)
		}
		writer.Flush()
	} else {
		fmt.Fprintln(out, view.Summary.Message)
	}
	fmt.Fprintln(out)

	if view.Chart.Empty() {
		fmt.Fprintln(out, "no sales recorded for this region")
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(writer, "Date\tSales\t")
	for _, p := range view.Chart.Points {
		fmt.Fprintf(writer, "%s\t%s\t\n", p.Date.UTC().Format(time.DateOnly), formatDecimal(p.Sales, 2))
	}
	return writer.Flush()
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
