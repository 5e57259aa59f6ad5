package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/sales"
)

// ChartPoint is one (date, total sales) sample of the line series.
type ChartPoint struct {
	Date  time.Time       `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}

// Marker is a vertical reference line. YFrom/YTo are fractions of the plot height.
type Marker struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	YFrom float64   `json:"y_from"`
	YTo   float64   `json:"y_to"`
}

// ChartSpec is a renderer independent description of the sales chart.
type ChartSpec struct {
	Title  string       `json:"title"`
	XLabel string       `json:"x_label"`
	YLabel string       `json:"y_label"`
	Region sales.Region `json:"region"`
	Points []ChartPoint `json:"points"`
	Marker Marker       `json:"marker"`
}

// Empty reports whether the chart has no data points.
func (c ChartSpec) Empty() bool {
	return len(c.Points) == 0
}

// SummaryLine is a labelled line of the summary block.
type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SummarySpec is the text summary shown under the chart.
type SummarySpec struct {
	Available bool          `json:"available"`
	Message   string        `json:"message,omitempty"`
	Lines     []SummaryLine `json:"lines"`
}

// BuildChartSpec describes the aggregates as a line series with a marker at cutoff.
func BuildChartSpec(aggs []sales.DailyAggregate, region sales.Region, opts Options) ChartSpec {
	points := make([]ChartPoint, 0, len(aggs))
	for _, agg := range aggs {
		points = append(points, ChartPoint{Date: agg.Date, Sales: agg.TotalSales})
	}

	title := opts.ChartTitle
	if !region.IsAll() {
		title = fmt.Sprintf("%s (%s)", title, region.Label())
	}

	return ChartSpec{
		Title:  title,
		XLabel: "Date",
		YLabel: "Sales ($)",
		Region: region,
		Points: points,
		Marker: Marker{
			Date:  sales.DateOf(opts.Cutoff),
			Label: opts.MarkerLabel,
			YFrom: 0,
			YTo:   1,
		},
	}
}

// BuildSummarySpec turns a threshold summary, or the error that prevented it, into text lines.
func BuildSummarySpec(summary sales.ThresholdSummary, err error, opts Options) SummarySpec {
	event := fmt.Sprintf("%s on %s", strings.ToLower(opts.EventName), opts.Cutoff.Format("January 2, 2006"))
	if err != nil {
		return SummarySpec{
			Available: false,
			Message:   fmt.Sprintf("Not enough data to compare average daily sales before and after the %s.", event),
			Lines:     []SummaryLine{},
		}
	}

	comparison := "were lower"
	if summary.Higher() {
		comparison = "were higher"
	}

	return SummarySpec{
		Available: true,
		Lines: []SummaryLine{
			{Label: fmt.Sprintf("Average Daily Sales Before %s", opts.EventName), Value: "$" + summary.MeanBefore.StringFixed(2)},
			{Label: fmt.Sprintf("Average Daily Sales After %s", opts.EventName), Value: "$" + summary.MeanAfter.StringFixed(2)},
			{Label: "Percentage Change", Value: fmt.Sprintf("%s%% %s", summary.PercentChange.StringFixed(2), summary.Direction)},
			{Label: "Conclusion", Value: fmt.Sprintf("Sales %s after the %s.", comparison, event)},
		},
	}
}
