package sales

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientData signals that a before/after comparison has no defined mean.
var ErrInsufficientData = errors.New("sales: insufficient data")

var hundred = decimal.NewFromInt(100)

// AggregateDaily sums sales per date for the records matching region, ordered by date.
func AggregateDaily(records []Record, region Region) []DailyAggregate {
	totals := make(map[time.Time]decimal.Decimal)
	dates := make([]time.Time, 0)

	for _, rec := range records {
		if !region.Matches(rec.Region) {
			continue
		}
		day := DateOf(rec.Date)
		current, seen := totals[day]
		if !seen {
			dates = append(dates, day)
		}
		totals[day] = current.Add(rec.Sales)
	}

	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })

	result := make([]DailyAggregate, 0, len(dates))
	for _, day := range dates {
		result = append(result, DailyAggregate{Date: day, TotalSales: totals[day]})
	}
	return result
}

// SummarizeThreshold partitions aggregates at cutoff (before: date < cutoff) and compares the means.
func SummarizeThreshold(aggregates []DailyAggregate, cutoff time.Time) (ThresholdSummary, error) {
	cutoff = DateOf(cutoff)

	var sumBefore, sumAfter decimal.Decimal
	var nBefore, nAfter int64
	for _, agg := range aggregates {
		if DateOf(agg.Date).Before(cutoff) {
			sumBefore = sumBefore.Add(agg.TotalSales)
			nBefore++
			continue
		}
		sumAfter = sumAfter.Add(agg.TotalSales)
		nAfter++
	}

	if nBefore == 0 {
		return ThresholdSummary{}, fmt.Errorf("%w: no daily totals before %s", ErrInsufficientData, cutoff.Format(time.DateOnly))
	}
	if nAfter == 0 {
		return ThresholdSummary{}, fmt.Errorf("%w: no daily totals on or after %s", ErrInsufficientData, cutoff.Format(time.DateOnly))
	}

	before := sumBefore.Div(decimal.NewFromInt(nBefore))
	after := sumAfter.Div(decimal.NewFromInt(nAfter))
	if before.IsZero() {
		return ThresholdSummary{}, fmt.Errorf("%w: mean before %s is zero", ErrInsufficientData, cutoff.Format(time.DateOnly))
	}

	change := after.Sub(before).Div(before).Mul(hundred)

	// Exactly zero change counts as a decrease.
	direction := DirectionDecreased
	if change.IsPositive() {
		direction = DirectionIncreased
	}

	return ThresholdSummary{
		MeanBefore:    before,
		MeanAfter:     after,
		PercentChange: change,
		Direction:     direction,
	}, nil
}
