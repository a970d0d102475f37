package kpi

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/kpi-engine/period"
	"github.com/warp/kpi-engine/settings"
)

// Engine computes KPI results. It holds only configuration (clock,
// location, logger) and is safe for concurrent use.
type Engine struct {
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

type Option func(*Engine)

// WithClock sets the source of "today" for PTD inference.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the zone used to turn instants into calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithLogger enables debug records about resolution and bucketing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine. Defaults: wall clock, local time zone, no logging.
func New(opts ...Option) *Engine {
	e := &Engine{
		now:    time.Now,
		loc:    time.Local,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Compute runs the default engine.
func Compute(t Table, enc EncodingMap, s settings.Settings) *Result {
	return defaultEngine.Compute(t, enc, s)
}

// Compute returns the KPI for the table, or nil when none can be shown.
func (e *Engine) Compute(t Table, enc EncodingMap, s settings.Settings) *Result {
	res, _ := e.Explain(t, enc, s)
	return res
}

// Explain is Compute plus the reason for a nil result.
func (e *Engine) Explain(t Table, enc EncodingMap, s settings.Settings) (*Result, error) {
	r := Resolve(enc, t.Columns, s)
	e.logger.Debug("kpi encodings resolved",
		"value", r.ValueCol, "goal", r.GoalCol, "goal2", r.Goal2Col,
		"date", r.DateCol, "ptd", r.PTDCol, "rows", len(t.Rows))

	if !r.HasValue() {
		return nil, ErrNoValueColumn
	}

	res := &Result{
		Label:      r.ValueCol,
		Goal2Label: DefaultGoal2Label,
		Formatter:  s.Formatter(),
	}
	if r.ValueField != nil && r.ValueField.Name != "" {
		res.Label = r.ValueField.Name
	}
	if r.Goal2Field != nil && r.Goal2Field.Name != "" {
		res.Goal2Label = r.Goal2Field.Name
	}

	if r.DateCol == "" {
		e.fillTotals(res, t.Rows, r)
		return res, nil
	}

	buckets := Aggregate(t.Rows, r, e.loc)
	e.logger.Debug("kpi periods aggregated", "buckets", len(buckets))
	if len(buckets) == 0 {
		return nil, ErrNoPeriods
	}

	current := buckets[len(buckets)-1]
	var previous *Bucket
	if len(buckets) > 1 {
		previous = buckets[len(buckets)-2]
	}

	ApplyPeriodToDate(buckets, r, period.Today(e.now(), e.loc))

	res.CurrentValue = current.Value
	res.FormattedValue = res.Formatter.FormatDecimal(current.Value)
	if previous != nil {
		res.PreviousValue = decimal.NewNullDecimal(previous.Value)
	}
	res.Delta = periodDelta(current, previous)
	res.PTDDelta = ptdDelta(current, previous, r.PTDCol != "")
	e.fillGoals(res, r, current.Value, current.Goal, current.Goal2)

	res.SparkData, res.PTDSparkData = BuildSeries(buckets)

	res.PeriodLabel = current.Label
	if previous != nil {
		res.PeriodLabel = buckets[0].Label + " — " + current.Label
	}
	return res, nil
}

// fillTotals handles tables without a date column: the KPI is the total
// over every row and there is nothing to compare against.
func (e *Engine) fillTotals(res *Result, rows []Row, r ResolvedEncoding) {
	var value, goal, goal2 decimal.Decimal
	for _, row := range rows {
		value = value.Add(cellNumber(row, r.ValueCol))
		goal = goal.Add(cellNumber(row, r.GoalCol))
		goal2 = goal2.Add(cellNumber(row, r.Goal2Col))
	}
	res.CurrentValue = value
	res.FormattedValue = res.Formatter.FormatDecimal(value)
	e.fillGoals(res, r, value, goal, goal2)
}

func (e *Engine) fillGoals(res *Result, r ResolvedEncoding, value, goal, goal2 decimal.Decimal) {
	if total, pct, ok := goalFields(r.GoalCol, value, goal); ok {
		res.GoalValue, res.GoalPct = total, pct
		res.FormattedGoal = res.Formatter.FormatDecimal(goal)
	}
	if total, pct, ok := goalFields(r.Goal2Col, value, goal2); ok {
		res.Goal2Value, res.Goal2Pct = total, pct
		res.FormattedGoal2 = res.Formatter.FormatDecimal(goal2)
	}
}
