package kpi

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.RequireFromString("0.5")
)

// PercentChange returns (current - previous) / |previous| * 100, or null
// when previous is zero. No rounding is applied.
func PercentChange(current, previous decimal.Decimal) decimal.NullDecimal {
	if previous.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(current.Sub(previous).Mul(hundred).Div(previous.Abs()))
}

// GoalPercent returns value / goal * 100 rounded half up to an integer,
// or null when goal is zero.
func GoalPercent(value, goal decimal.Decimal) decimal.NullDecimal {
	if goal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(roundHalfUp(value.Mul(hundred).Div(goal)))
}

// roundHalfUp rounds to the nearest integer, ties toward +Inf.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// periodDelta compares the current bucket with the previous one.
func periodDelta(current, previous *Bucket) decimal.NullDecimal {
	if previous == nil {
		return decimal.NullDecimal{}
	}
	return PercentChange(current.Value, previous.Value)
}

// ptdDelta compares pace. With an explicit comparison column the current
// full value is compared with the previous bucket's PTD sum; otherwise the
// two inferred PTD values are compared. The explicit branch is checked
// first.
func ptdDelta(current, previous *Bucket, explicit bool) decimal.NullDecimal {
	if previous == nil {
		return decimal.NullDecimal{}
	}
	if explicit && previous.PTD.Valid && !previous.PTD.Decimal.IsZero() {
		return PercentChange(current.Value, previous.PTD.Decimal)
	}
	if current.PTD.Valid && previous.PTD.Valid && !previous.PTD.Decimal.IsZero() {
		return PercentChange(current.PTD.Decimal, previous.PTD.Decimal)
	}
	return decimal.NullDecimal{}
}

// goalFields computes value/pct for one goal role. ok is false when the
// role did not resolve.
func goalFields(col string, value, goal decimal.Decimal) (total, pct decimal.NullDecimal, ok bool) {
	if col == "" {
		return decimal.NullDecimal{}, decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(goal), GoalPercent(value, goal), true
}
