package kpi

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/kpi-engine/period"
)

// MaxPeriods is how many of the most recent buckets are retained.
const MaxPeriods = 4

// =============================================================================
// PERIOD AGGREGATOR - Rows -> buckets
// =============================================================================
// Pipeline: filter -> group by period key -> sum -> sort -> keep last N.
//
// Period key is the row's display label for the date cell (the formatted
// value, else the raw value as text). The raw value only orders buckets.
// =============================================================================

// Aggregate groups rows into period buckets, oldest first, keeping at
// most the MaxPeriods most recent. It returns nil when no row carries a
// usable date.
func Aggregate(rows []Row, r ResolvedEncoding, loc *time.Location) []*Bucket {
	if r.DateCol == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	byKey := make(map[string]*Bucket)
	var order []*Bucket

	for _, row := range rows {
		cell, ok := row[r.DateCol]
		if !ok || isMissing(cell.Value) {
			continue
		}
		key := cell.FormattedValue
		if key == "" {
			key = stringify(cell.Value)
		}
		if key == "" || strings.EqualFold(key, "null") {
			continue
		}

		b, ok := byKey[key]
		if !ok {
			b = &Bucket{
				Key:     key,
				Label:   period.Normalize(key, r.DateFieldName),
				SortKey: NewSortKey(cell.Value),
			}
			byKey[key] = b
			order = append(order, b)
		}
		b.add(row, cell.Value, r, loc)
	}

	if len(order) == 0 {
		return nil
	}

	slices.SortStableFunc(order, func(a, b *Bucket) int {
		return a.SortKey.Compare(b.SortKey)
	})

	if len(order) > MaxPeriods {
		order = order[len(order)-MaxPeriods:]
	}
	return order
}

func (b *Bucket) add(row Row, rawDate any, r ResolvedEncoding, loc *time.Location) {
	br := BucketRow{
		Value: cellNumber(row, r.ValueCol),
		Goal:  cellNumber(row, r.GoalCol),
		Goal2: cellNumber(row, r.Goal2Col),
	}
	br.Date, br.HasDate = parseDay(rawDate, loc)
	b.Rows = append(b.Rows, br)

	b.Value = b.Value.Add(br.Value)
	b.Goal = b.Goal.Add(br.Goal)
	b.Goal2 = b.Goal2.Add(br.Goal2)
	if r.PTDCol != "" {
		b.PTD = decimal.NewNullDecimal(b.PTD.Decimal.Add(cellNumber(row, r.PTDCol)))
	}
}
