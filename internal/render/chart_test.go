package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/sales"
)

func testSpec(n int) dashboard.ChartSpec {
	start := time.Date(2021, 1, 13, 0, 0, 0, 0, time.UTC)
	aggs := make([]sales.DailyAggregate, 0, n)
	for i := 0; i < n; i++ {
		aggs = append(aggs, sales.DailyAggregate{
			Date:       start.AddDate(0, 0, i),
			TotalSales: decimal.NewFromInt(int64(100 * (i + 1))),
		})
	}
	return dashboard.BuildChartSpec(aggs, sales.RegionAll, dashboard.DefaultOptions())
}

func TestChartSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, testSpec(5), FormatSVG, Size{Width: 800, Height: 400}); err != nil {
		t.Fatalf("SVG render failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("expected svg document")
	}
	if !strings.Contains(out, "Price Increase") {
		t.Fatalf("expected marker label in output")
	}
	if !strings.Contains(out, "Daily Pink Morsel Sales") {
		t.Fatalf("expected title in output")
	}
}

func TestChartPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, testSpec(3), FormatPNG, Size{}); err != nil {
		t.Fatalf("PNG render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected PNG signature")
	}
}

func TestChartSinglePoint(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, testSpec(1), FormatSVG, Size{}); err != nil {
		t.Fatalf("single point chart should render: %v", err)
	}
}

func TestChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Chart(&buf, testSpec(0), FormatSVG, Size{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"png": FormatPNG, ".SVG": FormatSVG, " svg ": FormatSVG}
	for input, want := range cases {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %s, %v", input, got, err)
		}
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatal("gif should be rejected")
	}
	if FormatSVG.ContentType() != "image/svg+xml" || FormatPNG.ContentType() != "image/png" {
		t.Fatal("unexpected content types")
	}
}

func TestXBoundsIncludeMarker(t *testing.T) {
	x := []time.Time{time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)}
	marker := time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)
	lo, hi := xBounds(x, marker)
	if lo >= float64(marker.UnixNano()) || hi <= float64(x[0].UnixNano()) {
		t.Fatalf("bounds %v..%v should cover marker and data", lo, hi)
	}
}
