/*
Package period provides calendar-day values and the period-label rules
used to bucket KPI rows.

KEY CONCEPTS:
  - Day: a calendar day with no clock or zone component
  - Period: an inclusive [Start, End] range of days
  - Labels: the short display strings hosts emit for periods
    ("2026 Q1", "Q1 2026", "2026-Q1", "2026", "2026-03", "March 2026")

Days are stored as midnight UTC so that day arithmetic never crosses a
DST boundary. Converting an instant to a Day uses the instant's own
location; callers pick the location before converting.

SEE ALSO:
  - label.go: label normalization and previous-label inference
  - period.go: label -> period bounds
*/
package period

import "time"

// =============================================================================
// DAY - Calendar day (no time of day)
// =============================================================================

type Day struct {
	t time.Time
}

// NewDay builds a Day. Out-of-range values normalize the way time.Date does.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return DayOf(now.In(loc))
}

func (d Day) After(other Day) bool { return d.t.After(other.t) }

func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

func (d Day) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// DAY UTILITIES
// =============================================================================

// DaysBetween returns the signed number of days from "from" to "to".
func DaysBetween(from, to Day) int { return int(to.t.Sub(from.t).Hours() / 24) }

func StartOfYear(year int) Day                   { return NewDay(year, time.January, 1) }
func EndOfYear(year int) Day                     { return NewDay(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) Day { return NewDay(year, month, 1) }

// EndOfMonth returns the last day of the month.
func EndOfMonth(year int, month time.Month) Day {
	return NewDay(year, month+1, 1).AddDays(-1)
}

// StartOfQuarter returns the first day of quarter q (1-4).
func StartOfQuarter(year, q int) Day {
	return NewDay(year, time.Month((q-1)*3+1), 1)
}

// EndOfQuarter returns the last day of quarter q (1-4).
func EndOfQuarter(year, q int) Day {
	return EndOfMonth(year, time.Month(q*3))
}
