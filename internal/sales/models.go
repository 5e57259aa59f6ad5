package sales

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single loaded sales row.
type Record struct {
	Date   time.Time
	Sales  decimal.Decimal
	Region string
}

// DailyAggregate holds the summed sales for one calendar date.
type DailyAggregate struct {
	Date       time.Time
	TotalSales decimal.Decimal
}

// Direction reports whether sales moved up or down across the cutoff.
type Direction string

const (
	DirectionIncreased Direction = "increased"
	DirectionDecreased Direction = "decreased"
)

// ThresholdSummary compares mean daily sales before and after a cutoff date.
type ThresholdSummary struct {
	MeanBefore    decimal.Decimal
	MeanAfter     decimal.Decimal
	PercentChange decimal.Decimal
	Direction     Direction
}

// Higher reports whether the mean after the cutoff exceeds the mean before it.
func (s ThresholdSummary) Higher() bool {
	return s.MeanAfter.GreaterThan(s.MeanBefore)
}

// Dataset is the immutable record set loaded once per process.
type Dataset struct {
	records []Record
}

// NewDataset copies records into a dataset. Records must already be sorted by date.
func NewDataset(records []Record) *Dataset {
	return &Dataset{records: slices.Clone(records)}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// AggregateDaily runs AggregateDaily over the dataset without copying it.
func (d *Dataset) AggregateDaily(region Region) []DailyAggregate {
	if d == nil {
		return []DailyAggregate{}
	}
	return AggregateDaily(d.records, region)
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
