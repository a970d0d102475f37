package kpi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/warp/kpi-engine/period"
)

// =============================================================================
// LOOSE VALUE COERCION
// =============================================================================
// Hosts send numbers as float64, json.Number, numeric strings, or not at
// all. Anything that is not a finite number counts as zero.
// =============================================================================

// cellNumber returns row[col] as a number, zero when absent or non-numeric.
func cellNumber(row Row, col string) decimal.Decimal {
	if col == "" {
		return decimal.Zero
	}
	cell, ok := row[col]
	if !ok {
		return decimal.Zero
	}
	return toDecimal(cell.Value)
}

func toDecimal(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case json.Number:
		return parseNumber(string(x))
	case string:
		return parseNumber(x)
	case bool:
		if x {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	case time.Time:
		return decimal.NewFromInt(x.UnixMilli())
	}

	if n, err := cast.ToInt64E(v); err == nil {
		return decimal.NewFromInt(n)
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return finite(f)
	}
	return decimal.Zero
}

func finite(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// LABELS AND DATES
// =============================================================================

// isMissing reports the "no date" spellings: nil, "" and "null" in any case.
func isMissing(v any) bool {
	if v == nil {
		return true
	}
	s := stringify(v)
	return s == "" || strings.EqualFold(s, "null")
}

// stringify renders a raw cell value as label text.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339)
	case json.Number:
		return x.String()
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// parseDay reads a raw date value as a calendar day in loc: native
// times, epoch milliseconds, or any string dateparse understands.
func parseDay(v any, loc *time.Location) (period.Day, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return period.Day{}, false
		}
		return period.DayOf(x.In(loc)), true

	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return period.Day{}, false
		}
		t, err := dateparse.ParseIn(s, loc)
		if err != nil {
			return period.Day{}, false
		}
		return period.DayOf(t.In(loc)), true

	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			if ferr != nil {
				return period.Day{}, false
			}
			ms = int64(f)
		}
		return period.DayOf(time.UnixMilli(ms).In(loc)), true

	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return period.Day{}, false
		}
		return period.DayOf(time.UnixMilli(int64(x)).In(loc)), true
	}

	if ms, err := cast.ToInt64E(v); err == nil {
		if _, isBool := v.(bool); !isBool {
			return period.DayOf(time.UnixMilli(ms).In(loc)), true
		}
	}
	return period.Day{}, false
}
