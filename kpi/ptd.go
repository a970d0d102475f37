package kpi

import (
	"github.com/shopspring/decimal"
	"github.com/warp/kpi-engine/period"
)

// =============================================================================
// PERIOD-TO-DATE - Pace per bucket
// =============================================================================
// Explicit mode: a comparison column resolved; Aggregate already summed it
// into Bucket.PTD and nothing else happens.
//
// Inferred mode: the current (last) bucket's label gives its period and
// the number of days elapsed as of today. Every bucket then sums the rows
// whose day offset inside its own period is within [1, elapsed], so each
// period is measured over the same elapsed-day window.
// =============================================================================

// ApplyPeriodToDate sets Bucket.PTD on every bucket. buckets must be
// ordered oldest first.
func ApplyPeriodToDate(buckets []*Bucket, r ResolvedEncoding, today period.Day) {
	if r.PTDCol != "" || len(buckets) == 0 {
		return
	}

	elapsed, ok := elapsedDays(buckets[len(buckets)-1].Label, today)
	for _, b := range buckets {
		b.PTD = decimal.NullDecimal{}
		if !ok || len(b.Rows) == 0 {
			continue
		}
		p, known := period.FromLabel(b.Label)
		if !known {
			continue
		}
		b.PTD = decimal.NewNullDecimal(sumWithin(b.Rows, p, elapsed))
	}
}

// elapsedDays is the 1-based day of today inside the labelled period.
// ok is false when the label has no known period or the period is over.
func elapsedDays(label string, today period.Day) (int, bool) {
	p, ok := period.FromLabel(label)
	if !ok {
		return 0, false
	}
	return p.ElapsedDays(today)
}

func sumWithin(rows []BucketRow, p period.Period, elapsed int) decimal.Decimal {
	sum := decimal.Zero
	for _, row := range rows {
		if !row.HasDate {
			continue
		}
		if offset := p.DayOffset(row.Date); offset >= 1 && offset <= elapsed {
			sum = sum.Add(row.Value)
		}
	}
	return sum
}
