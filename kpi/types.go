/*
Package kpi computes a single KPI summary from a tabular query result.

PURPOSE:
  Dashboard widgets hand over rows, column metadata, the role -> field
  encoding map and the widget settings. The engine answers "what is the
  number, how did it move, how close is it to goal, and how does the pace
  compare with last period". It recomputes from scratch on every call.

PIPELINE:
  Resolve   (resolve.go)    roles -> concrete column names
  Aggregate (aggregate.go)  rows -> period buckets, last 4 kept
  PTD       (ptd.go)        pace value per bucket
  Deltas    (delta.go)      value, PTD and goal percentages
  Series    (series.go)     trend points for sparklines
  Engine    (engine.go)     composes the Result

DESIGN PRINCIPLES:
  1. Null is "not applicable", never zero: nullable numbers are
     decimal.NullDecimal
  2. Precision: measure sums use decimal.Decimal
  3. No state: inputs are never mutated, nothing is cached, no I/O
  4. Messy input is tolerated: a bad row or label never aborts a run

SEE ALSO:
  - period/: label normalization and period bounds
  - format/: number formatting
  - settings/: typed configuration
*/
package kpi

import (
	"github.com/shopspring/decimal"
	"github.com/warp/kpi-engine/format"
	"github.com/warp/kpi-engine/period"
)

// =============================================================================
// INPUT - Table, rows, columns
// =============================================================================

// Cell is one value of a row. FormattedValue is the host's display
// string; empty means the host did not provide one.
type Cell struct {
	Value          any    `json:"value"`
	FormattedValue string `json:"formattedValue,omitempty"`
}

// Row maps field name to cell.
type Row map[string]Cell

// Column describes one available field.
type Column struct {
	FieldName string `json:"fieldName"`
	DataType  string `json:"dataType,omitempty"`
}

// Table is the flattened query result.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// =============================================================================
// ENCODINGS - Role -> field
// =============================================================================

type FieldRole string

const (
	RoleMeasure   FieldRole = "measure"
	RoleDimension FieldRole = "dimension"
)

// FieldRef is a field placed on a visual role.
type FieldRef struct {
	Name string    `json:"name"`
	Role FieldRole `json:"role"`
}

// Encoding role ids.
const (
	EncValue = "value"
	EncGoal  = "goal"
	EncGoal2 = "goal2"
	EncDate  = "date"
)

// ResolvedEncoding holds the concrete column chosen for each role.
// An empty string means the role did not resolve.
type ResolvedEncoding struct {
	ValueCol string
	GoalCol  string
	Goal2Col string
	DateCol  string
	PTDCol   string

	// DateFieldName is the date field's name as placed on the encoding
	// (used for quarter-label detection), not necessarily DateCol.
	DateFieldName string

	ValueField *FieldRef
	Goal2Field *FieldRef
}

// HasValue reports whether a KPI can be produced at all.
func (r ResolvedEncoding) HasValue() bool { return r.ValueCol != "" }

// =============================================================================
// BUCKETS
// =============================================================================

// BucketRow is one input row kept for PTD day matching. HasDate is false
// when the row's date could not be parsed.
type BucketRow struct {
	Date    period.Day
	HasDate bool
	Value   decimal.Decimal
	Goal    decimal.Decimal
	Goal2   decimal.Decimal
}

// Bucket aggregates all rows sharing a period key.
type Bucket struct {
	Key     string
	Label   string
	SortKey SortKey
	Value   decimal.Decimal
	Goal    decimal.Decimal
	Goal2   decimal.Decimal
	PTD     decimal.NullDecimal
	Rows    []BucketRow
}

// =============================================================================
// OUTPUT
// =============================================================================

// SeriesPoint is one point of a trend series.
type SeriesPoint struct {
	Label string
	Value decimal.Decimal
}

// Result is the KPI summary. Nullable numbers use decimal.NullDecimal;
// string fields are empty when not applicable.
type Result struct {
	Label          string
	CurrentValue   decimal.Decimal
	FormattedValue string
	PreviousValue  decimal.NullDecimal
	Delta          decimal.NullDecimal
	PTDDelta       decimal.NullDecimal

	GoalValue     decimal.NullDecimal
	GoalPct       decimal.NullDecimal
	FormattedGoal string

	Goal2Value     decimal.NullDecimal
	Goal2Pct       decimal.NullDecimal
	FormattedGoal2 string
	Goal2Label     string

	// SparkData is nil when there is no date column. PTDSparkData is nil
	// unless every retained bucket has a PTD value.
	SparkData    []SeriesPoint
	PTDSparkData []SeriesPoint
	PeriodLabel  string

	Formatter format.Formatter
}

// DefaultGoal2Label names the secondary goal when no field name is known.
const DefaultGoal2Label = "Secondary Goal"
