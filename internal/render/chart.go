package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sales-dashboard/internal/dashboard"
)

// ErrNoData is returned when a chart has no points to draw.
var ErrNoData = errors.New("render: chart has no data points")

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat maps a file extension or name to a Format.
func ParseFormat(v string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v)), ".")) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q", v)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Size is the output canvas size in pixels.
type Size struct {
	Width  int
	Height int
}

var markerColor = drawing.ColorRed

// Chart draws spec to w as a line chart with a dashed vertical marker.
func Chart(w io.Writer, spec dashboard.ChartSpec, format Format, size Size) error {
	if spec.Empty() {
		return ErrNoData
	}
	if size.Width <= 0 {
		size.Width = 1024
	}
	if size.Height <= 0 {
		size.Height = 480
	}

	x := make([]time.Time, len(spec.Points))
	y := make([]float64, len(spec.Points))
	for i, p := range spec.Points {
		x[i] = p.Date
		y[i] = p.Sales.InexactFloat64()
	}

	xMin, xMax := xBounds(x, spec.Marker.Date)
	yMax := yUpper(y)
	markerX := chart.TimeToFloat64(spec.Marker.Date)

	salesFormatter := func(v interface{}) string {
		return "$" + chart.FloatValueFormatterWithFormat(v, "%.0f")
	}

	graph := chart.Chart{
		Title:  spec.Title,
		Width:  size.Width,
		Height: size.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           spec.XLabel,
			ValueFormatter: dateFormatter,
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			GridLines: []chart.GridLine{
				{Value: markerX},
			},
			GridMajorStyle: chart.Style{
				StrokeColor:     markerColor,
				StrokeWidth:     2,
				StrokeDashArray: []float64{6, 4},
			},
		},
		YAxis: chart.YAxis{
			Name:           spec.YLabel,
			ValueFormatter: salesFormatter,
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Sales",
				XValues: x,
				YValues: y,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
			chart.AnnotationSeries{
				Name: spec.Marker.Label,
				Style: chart.Style{
					FontColor:   markerColor,
					StrokeColor: markerColor,
				},
				Annotations: []chart.Value2{
					{XValue: markerX, YValue: yMax * spec.Marker.YTo, Label: spec.Marker.Label},
				},
			},
		},
	}

	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// xBounds widens the data range so the marker is always visible and a single point still has a span.
func xBounds(x []time.Time, marker time.Time) (float64, float64) {
	lo, hi := x[0], x[len(x)-1]
	if !marker.IsZero() {
		if marker.Before(lo) {
			lo = marker
		}
		if marker.After(hi) {
			hi = marker
		}
	}
	pad := 24 * time.Hour
	return chart.TimeToFloat64(lo.Add(-pad)), chart.TimeToFloat64(hi.Add(pad))
}

func dateFormatter(v interface{}) string {
	switch typed := v.(type) {
	case time.Time:
		return typed.UTC().Format(time.DateOnly)
	case float64:
		return chart.TimeFromFloat64(typed).UTC().Format(time.DateOnly)
	}
	return ""
}

func yUpper(y []float64) float64 {
	maxY := 0.0
	for _, v := range y {
		maxY = math.Max(maxY, v)
	}
	if maxY <= 0 {
		return 1
	}
	return maxY * 1.1
}
