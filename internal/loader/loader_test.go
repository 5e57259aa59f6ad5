package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestLoadSortsStably(t *testing.T) {
	input := strings.Join([]string{
		"sales,date,region",
		"$30.00,2021-01-16,south",
		"10,2021-01-14,north",
		"20,2021-01-16,east",
		"5,2021-01-14,west",
	}, "\n")

	records, err := Load(strings.NewReader(input), Options{Logger: noopLogger()})
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	wantRegions := []string{"north", "west", "south", "east"}
	for i, region := range wantRegions {
		if records[i].Region != region {
			t.Fatalf("record %d: expected region %s, got %s", i, region, records[i].Region)
		}
	}
	if !records[2].Sales.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected currency prefix to be stripped, got %s", records[2].Sales)
	}
	if !records[0].Date.Equal(time.Date(2021, 1, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", records[0].Date)
	}
}

func TestLoadOptionalRegionAndExtraColumns(t *testing.T) {
	input := "Product,Date,Sales\npink morsel,2021/01/15,\"1,250.50\"\npink morsel,01/16/2021,3\n"

	records, err := Load(strings.NewReader(input), Options{Logger: noopLogger()})
	if err != nil {
		t.Fatalf("Load should succeed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Region != "" {
		t.Fatalf("region should be empty when the column is absent")
	}
	if !records[0].Sales.Equal(decimal.RequireFromString("1250.50")) {
		t.Fatalf("expected thousands separator to be accepted, got %s", records[0].Sales)
	}
	if records[1].Date.Day() != 16 {
		t.Fatalf("expected US style date to parse, got %s", records[1].Date)
	}
}

func TestLoadRejectsMalformedDate(t *testing.T) {
	input := "date,sales,region\n2021-01-14,10,north\nnot-a-date,5,east\n2021-01-16,3,west\n"

	_, err := Load(strings.NewReader(input), Options{Policy: PolicyReject, Logger: noopLogger()})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Line != 3 || parseErr.Column != "date" || parseErr.Value != "not-a-date" {
		t.Fatalf("unexpected parse error details: %+v", parseErr)
	}
}

func TestLoadRejectsMalformedSales(t *testing.T) {
	cases := []string{"abc", "-4", ""}
	for _, amount := range cases {
		input := "date,sales\n2021-01-14," + amount + "\n"
		_, err := Load(strings.NewReader(input), Options{Logger: noopLogger()})
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("amount %q: expected ParseError, got %v", amount, err)
		}
		if parseErr.Column != "sales" {
			t.Fatalf("amount %q: expected sales column, got %q", amount, parseErr.Column)
		}
	}
}

func TestLoadSkipPolicyDropsOnlyMalformedRow(t *testing.T) {
	input := "date,sales,region\n2021-01-14,10,north\nnot-a-date,5,east\n2021-01-16,3,west\n"

	records, err := Load(strings.NewReader(input), Options{Policy: PolicySkip, Logger: noopLogger()})
	if err != nil {
		t.Fatalf("skip policy should not fail: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected exactly one row to be skipped, got %d records", len(records))
	}
	if records[0].Region != "north" || records[1].Region != "west" {
		t.Fatalf("unexpected surviving rows: %+v", records)
	}
}

func TestLoadMissingColumns(t *testing.T) {
	_, err := Load(strings.NewReader("day,amount\n2021-01-14,10\n"), Options{Logger: noopLogger()})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Line != 1 {
		t.Fatalf("expected header ParseError, got %v", err)
	}
}

func TestLoadEmptyInput(t *testing.T) {
	_, err := Load(strings.NewReader(""), Options{Logger: noopLogger()})
	if !errors.Is(err, ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{Logger: noopLogger()})
	if !errors.Is(err, ErrDataSource) {
		t.Fatalf("expected ErrDataSource, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte("date,sales,region\n2021-01-15T09:30:00Z,12.5,south\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := LoadFile(path, Options{Logger: noopLogger()})
	if err != nil {
		t.Fatalf("LoadFile should succeed: %v", err)
	}
	if len(records) != 1 || records[0].Date.Hour() != 0 {
		t.Fatalf("expected one record truncated to its date, got %+v", records)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != PolicyReject {
		t.Fatalf("empty policy should default to reject, got %s %v", p, err)
	}
	if p, err := ParsePolicy("SKIP"); err != nil || p != PolicySkip {
		t.Fatalf("expected skip, got %s %v", p, err)
	}
	if _, err := ParsePolicy("ignore"); err == nil {
		t.Fatal("unknown policy should fail")
	}
}

func TestSkippedRowsLoggedUnderLoaderComponent(t *testing.T) {
	var buf bytes.Buffer
	input := "date,sales\n2021-01-14,abc\n2021-01-15,10\n"
	if _, err := Load(strings.NewReader(input), Options{Policy: PolicySkip, Logger: zerolog.New(&buf)}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"component":"loader"`) {
		t.Fatalf("expected loader component tag in logs: %s", buf.String())
	}
}
