/*
Package format renders KPI numbers for display.

PURPOSE:
  One Formatter is built per computation from the widget settings and is
  applied to every number the KPI shows (value, goals, tooltips), so a
  renderer formatting an ad hoc number gets the same prefix, suffix,
  precision and abbreviation as the headline value.

MODES:
  Abbreviated:  1500 -> "1.5K", 2500000 -> "2.5M", 999 -> "999"
  Grouped:      1234567.891 -> "1,234,568" (locale-aware, fixed decimals)

PRECISION:
  Grouped numbers with up to 15 significant digits go through the locale
  printer. Longer ones are grouped from the exact decimal string using
  the locale's separators, so no digit is lost to float64.

DECIMALS:
  AutoDecimals (-1) means "pick for me": one decimal when a K/M/B scale
  applies, none otherwise. Grouped mode treats auto as 0.

SEE ALSO:
  - delta.go: percentage badges
  - settings/settings.go: where Options come from
*/
package format

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// AutoDecimals lets the formatter choose the number of fraction digits.
const AutoDecimals = -1

// Options configure a Formatter. Prefix and Suffix are concatenated
// verbatim around the rendered number.
type Options struct {
	Prefix     string
	Suffix     string
	Decimals   int
	Abbreviate bool
	Locale     language.Tag
}

// Formatter renders numbers according to its Options. The zero value is
// not usable; build one with New.
type Formatter struct {
	opts    Options
	printer *message.Printer

	// Locale separators for numbers the printer cannot hold exactly.
	group, point string
}

// New builds a Formatter.
func New(opts Options) Formatter {
	if opts.Locale == language.Und {
		opts.Locale = language.AmericanEnglish
	}
	if opts.Decimals < AutoDecimals {
		opts.Decimals = AutoDecimals
	}
	f := Formatter{opts: opts, printer: message.NewPrinter(opts.Locale)}
	f.group, f.point = separators(f.printer)
	return f
}

// Options returns the options the formatter was built with.
func (f Formatter) Options() Options { return f.opts }

// Format renders n.
func (f Formatter) Format(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}
	return f.FormatDecimal(decimal.NewFromFloat(n))
}

// FormatNull renders d, or "" when d is null.
func (f Formatter) FormatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return f.FormatDecimal(d.Decimal)
}

// FormatDecimal renders d.
func (f Formatter) FormatDecimal(d decimal.Decimal) string {
	if f.printer == nil {
		f = New(f.opts)
	}
	if f.opts.Abbreviate {
		return abbreviate(d, f.opts.Decimals, f.opts.Prefix, f.opts.Suffix)
	}

	decimals := f.opts.Decimals
	if decimals < 0 {
		decimals = 0
	}
	return f.opts.Prefix + f.grouped(d.Round(int32(decimals)), decimals) + f.opts.Suffix
}

// =============================================================================
// GROUPING
// =============================================================================

// maxExactDigits is the number of significant digits float64 always
// carries through a decimal round trip.
var maxExactDigits = decimal.New(1, 15)

func (f Formatter) grouped(rounded decimal.Decimal, decimals int) string {
	if rounded.Shift(int32(decimals)).Abs().LessThan(maxExactDigits) {
		return f.printer.Sprintf("%v", number.Decimal(rounded.InexactFloat64(), number.Scale(decimals)))
	}

	s := rounded.StringFixed(int32(decimals))
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(f.point)
		b.WriteString(frac)
	}
	return b.String()
}

// separators reads the group and decimal separators off a sample
// rendering of 1234.5. Locales that print non-ASCII digits fall back to
// "," and ".".
func separators(p *message.Printer) (group, point string) {
	sample := p.Sprintf("%v", number.Decimal(1234.5, number.Scale(1)))
	one := strings.Index(sample, "1")
	rest := strings.Index(sample, "234")
	five := strings.LastIndex(sample, "5")
	if one < 0 || rest <= one || five <= rest+3 {
		return ",", "."
	}
	return sample[one+1 : rest], sample[rest+3 : five]
}

// =============================================================================
// ABBREVIATION
// =============================================================================

var reTrailingZeroFraction = regexp.MustCompile(`\.0+$`)

type scale struct {
	min   decimal.Decimal
	shift int32
	tag   string
}

var scales = []scale{
	{min: decimal.New(1, 9), shift: -9, tag: "B"},
	{min: decimal.New(1, 6), shift: -6, tag: "M"},
	{min: decimal.New(1, 3), shift: -3, tag: "K"},
}

// AbbreviateNumber renders n scaled to B/M/K. decimals may be AutoDecimals.
// A fraction made only of zeros is dropped ("2.0K" -> "2K").
func AbbreviateNumber(n float64, decimals int, prefix, suffix string) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}
	return abbreviate(decimal.NewFromFloat(n), decimals, prefix, suffix)
}

func abbreviate(d decimal.Decimal, decimals int, prefix, suffix string) string {
	short, tag := d, ""
	abs := d.Abs()
	for _, s := range scales {
		if abs.GreaterThanOrEqual(s.min) {
			short, tag = d.Shift(s.shift), s.tag
			break
		}
	}

	dec := decimals
	if dec < 0 {
		dec = 0
		if tag != "" {
			dec = 1
		}
	}
	num := reTrailingZeroFraction.ReplaceAllString(short.StringFixed(int32(dec)), "")
	return prefix + num + tag + suffix
}

// =============================================================================
// COMPACT - Axis labels
// =============================================================================

// Compact renders n for chart axes: M and K with at most one decimal,
// plain integers below a thousand, and up to two decimals otherwise.
func Compact(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ""
	}
	d := decimal.NewFromFloat(n)
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.New(1, 6)):
		return trimSingleZero(d.Shift(-6).StringFixed(1)) + "M"
	case abs.GreaterThanOrEqual(decimal.New(1, 3)):
		return trimSingleZero(d.Shift(-3).StringFixed(1)) + "K"
	case d.IsInteger():
		return d.String()
	default:
		return d.Round(2).String()
	}
}

func trimSingleZero(s string) string {
	if len(s) > 2 && s[len(s)-2:] == ".0" {
		return s[:len(s)-2]
	}
	return s
}
