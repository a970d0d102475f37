package kpi_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/kpi-engine/kpi"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func columns(names ...string) []kpi.Column {
	cols := make([]kpi.Column, len(names))
	for i, n := range names {
		cols[i] = kpi.Column{FieldName: n}
	}
	return cols
}

func measure(name string) *kpi.FieldRef {
	return &kpi.FieldRef{Name: name, Role: kpi.RoleMeasure}
}

func dimension(name string) *kpi.FieldRef {
	return &kpi.FieldRef{Name: name, Role: kpi.RoleDimension}
}

// encodings builds an ordered map from id, field pairs.
func encodings(pairs ...any) kpi.EncodingMap {
	var m kpi.EncodingMap
	for i := 0; i+1 < len(pairs); i += 2 {
		field, _ := pairs[i+1].(*kpi.FieldRef)
		m = append(m, kpi.Encoding{ID: pairs[i].(string), Field: field})
	}
	return m
}

// periodRow is a row whose date cell is a period label.
func periodRow(label string, value float64) kpi.Row {
	return kpi.Row{
		"period": {Value: label},
		"value":  {Value: value},
	}
}

// datedRow is a row with a native date, labelled with its quarter.
func datedRow(date time.Time, label string, value float64) kpi.Row {
	return kpi.Row{
		"Order Date": {Value: date, FormattedValue: label},
		"Sales":      {Value: value},
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func labels(points []kpi.SeriesPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}

func values(points []kpi.SeriesPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Value.String()
	}
	return out
}
