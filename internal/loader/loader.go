package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/logging"
	"sales-dashboard/internal/sales"
)

// ErrDataSource indicates the sales source is missing or unreadable.
var ErrDataSource = errors.New("loader: data source unavailable")

// Policy decides what happens to rows that fail to parse.
type Policy string

const (
	// PolicyReject fails the whole load on the first malformed row.
	PolicyReject Policy = "reject"
	// PolicySkip drops malformed rows and logs a warning for each.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(v string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(v))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown malformed row policy %q", v)
	}
}

// ParseError describes a row that could not be converted into a record.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options tune loading behaviour.
type Options struct {
	Policy Policy
	Logger zerolog.Logger
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// LoadFile reads records from a CSV file on disk.
func LoadFile(path string, opts Options) ([]sales.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataSource, err)
	}
	defer file.Close()

	records, err := Load(file, opts)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info().Str("path", path).Int("records", len(records)).Msg("sales data loaded")
	return records, nil
}

// Load parses CSV sales rows from r and returns them stably sorted by date.
func Load(r io.Reader, opts Options) ([]sales.Record, error) {
	policy := opts.Policy
	if policy == "" {
		policy = PolicyReject
	}
	logger := logging.Component(opts.Logger, "loader")

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrDataSource)
		}
		return nil, fmt.Errorf("%w: read header: %v", ErrDataSource, err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	records := make([]sales.Record, 0)
	skipped := 0
	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}

		var rec sales.Record
		if readErr != nil {
			var csvErr *csv.ParseError
			if !errors.As(readErr, &csvErr) {
				return nil, fmt.Errorf("%w: %v", ErrDataSource, readErr)
			}
			err = &ParseError{Line: csvErr.Line, Err: csvErr.Err}
		} else {
			line, _ := reader.FieldPos(0)
			rec, err = parseRow(row, cols, line)
		}

		if err != nil {
			if policy == PolicyReject {
				return nil, err
			}
			skipped++
			logger.Warn().Err(err).Msg("skipping malformed row")
			continue
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		logger.Warn().Int("skipped", skipped).Int("loaded", len(records)).Msg("malformed rows were skipped")
	}

	slices.SortStableFunc(records, func(a, b sales.Record) int { return a.Date.Compare(b.Date) })
	return records, nil
}

type columns struct {
	date   int
	sales  int
	region int
}

func locateColumns(header []string) (columns, error) {
	cols := columns{date: -1, sales: -1, region: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "date":
			cols.date = i
		case "sales":
			cols.sales = i
		case "region":
			cols.region = i
		}
	}
	if cols.date < 0 || cols.sales < 0 {
		return cols, errors.New("header must contain date and sales columns")
	}
	return cols, nil
}

func parseRow(row []string, cols columns, line int) (sales.Record, error) {
	if cols.date >= len(row) || cols.sales >= len(row) {
		return sales.Record{}, &ParseError{Line: line, Err: fmt.Errorf("expected at least %d fields, got %d", max(cols.date, cols.sales)+1, len(row))}
	}

	rawDate := strings.TrimSpace(row[cols.date])
	date, err := parseDate(rawDate)
	if err != nil {
		return sales.Record{}, &ParseError{Line: line, Column: "date", Value: rawDate, Err: err}
	}

	rawSales := strings.TrimSpace(row[cols.sales])
	amount, err := parseAmount(rawSales)
	if err != nil {
		return sales.Record{}, &ParseError{Line: line, Column: "sales", Value: rawSales, Err: err}
	}

	rec := sales.Record{Date: date, Sales: amount}
	if cols.region >= 0 && cols.region < len(row) {
		rec.Region = strings.ToLower(strings.TrimSpace(row[cols.region]))
	}
	return rec, nil
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return sales.DateOf(t), nil
		}
	}
	return time.Time{}, errors.New("unrecognised date format")
}

func parseAmount(v string) (decimal.Decimal, error) {
	cleaned := strings.TrimPrefix(v, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, errors.New("empty amount")
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, errors.New("amount must not be negative")
	}
	return amount, nil
}
