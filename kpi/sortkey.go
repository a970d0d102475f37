package kpi

import (
	"cmp"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// =============================================================================
// SORT KEY - Total order over raw date values
// =============================================================================
// A date column may be typed inconsistently across rows (times, epoch
// numbers, strings). Keys order as:
//
//   1. numeric keys (numbers, booleans, times as epoch milliseconds),
//      ascending by value
//   2. text keys, ascending by byte-wise string comparison
//
// Numeric keys always sort before text keys. Equal keys keep input order.
// =============================================================================

type sortKind int

const (
	sortNumeric sortKind = iota
	sortText
)

// SortKey orders buckets chronologically. It is never displayed.
type SortKey struct {
	kind sortKind
	num  float64
	text string
}

// NewSortKey classifies a raw date value.
func NewSortKey(v any) SortKey {
	switch x := v.(type) {
	case time.Time:
		return SortKey{kind: sortNumeric, num: float64(x.UnixMilli())}
	case string:
		return SortKey{kind: sortText, text: x}
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return SortKey{kind: sortNumeric, num: f}
		}
		return SortKey{kind: sortText, text: x.String()}
	case float64:
		if !math.IsNaN(x) {
			return SortKey{kind: sortNumeric, num: x}
		}
	}
	if f, err := cast.ToFloat64E(v); err == nil && !math.IsNaN(f) {
		return SortKey{kind: sortNumeric, num: f}
	}
	return SortKey{kind: sortText, text: stringify(v)}
}

// Compare returns -1, 0 or +1.
func (k SortKey) Compare(other SortKey) int {
	if k.kind != other.kind {
		return cmp.Compare(k.kind, other.kind)
	}
	if k.kind == sortNumeric {
		return cmp.Compare(k.num, other.num)
	}
	return strings.Compare(k.text, other.text)
}
