package kpi

import "errors"

// Reasons a computation produced no KPI. Compute reports these as a nil
// Result; Explain returns them alongside.
var (
	// ErrNoValueColumn: no column could be resolved for the value role.
	// The widget should prompt the user to place a measure.
	ErrNoValueColumn = errors.New("no value column resolved")

	// ErrNoPeriods: a date column resolved but no row carried a usable date.
	ErrNoPeriods = errors.New("no data available")
)

// IsUserActionable reports whether the user can fix the cause by
// changing the encoding rather than the data.
func IsUserActionable(err error) bool {
	return errors.Is(err, ErrNoValueColumn)
}
