package period

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// PERIOD - Inclusive day range
// =============================================================================

// Period is the inclusive day range a label covers.
//
// Examples:
//   - "2026 Q1": Jan 1 - Mar 31 2026
//   - "2026":    Jan 1 - Dec 31 2026
//   - "2026-02": Feb 1 - Feb 28 2026
type Period struct {
	Start Day
	End   Day
}

// DayOffset returns the 1-based position of d inside the period. Days
// before Start give values below 1.
func (p Period) DayOffset(d Day) int {
	return DaysBetween(p.Start, d) + 1
}

// ElapsedDays returns how many days of the period have passed on today,
// counting today. ok is false once today is past End.
func (p Period) ElapsedDays(today Day) (days int, ok bool) {
	if today.After(p.End) {
		return 0, false
	}
	return p.DayOffset(today), true
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// LABEL -> PERIOD
// =============================================================================

var (
	reYearQuarterLoose = regexp.MustCompile(`(?i)^(\d{4})\s*Q(\d)$`)
	reQuarterYear      = regexp.MustCompile(`(?i)^Q(\d)\s+(\d{4})$`)
	reYearDashQuarter  = regexp.MustCompile(`(?i)^(\d{4})-Q(\d)$`)
	reYear             = regexp.MustCompile(`^(\d{4})$`)
	reYearMonth        = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	reMonthNameYear    = regexp.MustCompile(`^(\w+)\s+(\d{4})$`)
)

var monthLayouts = []string{"January 2006", "Jan 2006"}

// FromLabel derives the period a label covers. Recognized shapes are
// quarter labels (any of the three quarter spellings), bare years,
// "yyyy-mm" and "<Month name> yyyy". Anything else reports ok=false.
func FromLabel(label string) (Period, bool) {
	if year, q, ok := parseQuarter(label); ok {
		return Period{Start: StartOfQuarter(year, q), End: EndOfQuarter(year, q)}, true
	}

	if m := reYear.FindStringSubmatch(label); m != nil {
		year, _ := strconv.Atoi(m[1])
		if year == 0 {
			return Period{}, false
		}
		return Period{Start: StartOfYear(year), End: EndOfYear(year)}, true
	}

	if year, month, ok := parseMonth(label); ok {
		return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}, true
	}

	return Period{}, false
}

// parseQuarter accepts "2026 Q1", "2026Q1", "Q1 2026" and "2026-Q1".
func parseQuarter(label string) (year, quarter int, ok bool) {
	switch {
	case reYearQuarterLoose.MatchString(label):
		m := reYearQuarterLoose.FindStringSubmatch(label)
		year, _ = strconv.Atoi(m[1])
		quarter, _ = strconv.Atoi(m[2])
	case reQuarterYear.MatchString(label):
		m := reQuarterYear.FindStringSubmatch(label)
		quarter, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[2])
	case reYearDashQuarter.MatchString(label):
		m := reYearDashQuarter.FindStringSubmatch(label)
		year, _ = strconv.Atoi(m[1])
		quarter, _ = strconv.Atoi(m[2])
	default:
		return 0, 0, false
	}
	if year == 0 || quarter < 1 || quarter > 4 {
		return 0, 0, false
	}
	return year, quarter, true
}

func parseMonth(label string) (int, time.Month, bool) {
	if m := reYearMonth.FindStringSubmatch(label); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if year == 0 || month < 1 || month > 12 {
			return 0, 0, false
		}
		return year, time.Month(month), true
	}

	if m := reMonthNameYear.FindStringSubmatch(label); m != nil {
		name := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
		for _, layout := range monthLayouts {
			t, err := time.Parse(layout, name+" "+m[2])
			if err == nil && t.Year() != 0 {
				return t.Year(), t.Month(), true
			}
		}
	}
	return 0, 0, false
}
