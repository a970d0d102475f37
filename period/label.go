package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBareQuarterDigit = regexp.MustCompile(`^[1-4]$`)
	reYearQuarter      = regexp.MustCompile(`(?i)^(\d{4})\s+Q(\d)$`)
)

// IsQuarterField reports whether a date field name denotes a quarter
// part ("Quarter of Order Date", "QTR", ...).
func IsQuarterField(fieldName string) bool {
	n := strings.ToUpper(fieldName)
	return strings.Contains(n, "QUARTER") || strings.Contains(n, "QTR")
}

// Normalize turns a raw period label into its display form. First match wins:
//
//	Q<d> <yyyy>   -> <yyyy> Q<d>
//	<yyyy> Q<d>   -> unchanged
//	<yyyy>-Q<d>   -> <yyyy> Q<d>
//	<1-4>         -> Q<d>, only for quarter date fields
//	anything else -> unchanged
//
// The raw label is trimmed first.
func Normalize(raw, dateFieldName string) string {
	s := strings.TrimSpace(raw)

	if m := reQuarterYear.FindStringSubmatch(s); m != nil {
		return m[2] + " Q" + m[1]
	}
	if reYearQuarter.MatchString(s) {
		return s
	}
	if m := reYearDashQuarter.FindStringSubmatch(s); m != nil {
		return m[1] + " Q" + m[2]
	}
	if reBareQuarterDigit.MatchString(s) && IsQuarterField(dateFieldName) {
		return "Q" + s
	}
	return s
}

// UnknownPrevious is the label used when a label cannot be stepped back.
const UnknownPrevious = "Previous"

// Previous infers the label one step before label: quarters roll back a
// quarter (and a year from Q1), years decrement, "yyyy-mm" rolls back a
// month. Other shapes give UnknownPrevious.
func Previous(label string) string {
	s := strings.TrimSpace(label)

	if m := firstMatch(s, reYearQuarterLoose, reYearDashQuarter); m != nil {
		year, _ := strconv.Atoi(m[1])
		quarter, _ := strconv.Atoi(m[2])
		if quarter >= 1 && quarter <= 4 {
			if quarter == 1 {
				year--
				quarter = 4
			} else {
				quarter--
			}
			return fmt.Sprintf("%d Q%d", year, quarter)
		}
	}

	if m := reYear.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		return strconv.Itoa(year - 1)
	}

	if m := reYearMonth.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			if month == 1 {
				year--
				month = 12
			} else {
				month--
			}
			return fmt.Sprintf("%d-%02d", year, month)
		}
	}

	return UnknownPrevious
}

func firstMatch(s string, res ...*regexp.Regexp) []string {
	for _, re := range res {
		if m := re.FindStringSubmatch(s); m != nil {
			return m
		}
	}
	return nil
}
