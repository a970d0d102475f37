/*
Package settings converts the host's string-serialized widget options
into one typed Settings value.

PURPOSE:
  The host settings store keeps every option as a string under a
  "kpi_"-prefixed key. This package owns the key table and the default
  table, parses the raw map once at the boundary and hands the engine a
  validated Settings. Nothing downstream re-checks for missing keys.

KEY TABLE (bare name / host key):
  dateFieldName     kpi_dateFieldName     date-role override
  ptdFieldName      kpi_ptdFieldName      comparison (PTD) column
  fmtPrefix         kpi_fmtPrefix         text before every number
  fmtSuffix         kpi_fmtSuffix         text after every number
  fmtDecimals       kpi_fmtDecimals       int >= -1, -1 = auto
  fmtAbbreviate     kpi_fmtAbbreviate     K/M/B scaling
  fmtDeltaDecimals  kpi_fmtDeltaDecimals  int >= -1, -1 = auto (1)
  fmtLocale         kpi_fmtLocale         BCP 47 tag for digit grouping
  ...plus display labels and toggles, see keyTable.

PARSING RULES:
  - Keys are accepted bare ("fmtPrefix") or host-prefixed ("kpi_fmtPrefix")
  - Unknown keys are ignored
  - Booleans are "true"/"false" (strconv.ParseBool spellings)
  - Empty strings mean "use the default"

SEE ALSO:
  - format/number.go: consumes FormatOptions()
  - kpi/resolve.go: consumes DateFieldName / PTDFieldName
*/
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/warp/kpi-engine/format"
	"golang.org/x/text/language"
)

// HostKeyPrefix is prepended to every key in the host settings store.
const HostKeyPrefix = "kpi_"

// ErrInvalidSetting is wrapped by every ValidationError.
var ErrInvalidSetting = errors.New("invalid setting")

// ValidationError describes one rejected option.
type ValidationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("setting %s=%q: %s", e.Key, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSetting }

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is the typed widget configuration.
type Settings struct {
	// Field selection
	DateFieldName string
	PTDFieldName  string

	// Number format
	FmtPrefix        string
	FmtSuffix        string
	FmtDecimals      int
	FmtAbbreviate    bool
	FmtDeltaDecimals int
	FmtLocale        string

	// Labels
	TitleText  string
	ValueLabel string
	DeltaLabel string
	GoalLabel  string
	Goal2Label string
	PTDLabel   string

	// Comparison
	PTDEnabled   bool
	ReverseDelta bool

	// Visibility
	ShowDelta     bool
	ShowGoal      bool
	ShowGoal2     bool
	ShowSparkline bool
	ShowDateRange bool
}

// DefaultLocale is the number-format locale used when none is set.
const DefaultLocale = "en-US"

// Defaults returns the default table. Every option not present in the
// host map takes its value from here.
func Defaults() Settings {
	return Settings{
		FmtDecimals:      format.AutoDecimals,
		FmtDeltaDecimals: format.AutoDecimals,
		FmtLocale:        DefaultLocale,
		DeltaLabel:       "vs prev",
		PTDLabel:         "vs prev PTD",
		ShowDelta:        true,
		ShowGoal:         true,
		ShowGoal2:        true,
		ShowSparkline:    true,
		ShowDateRange:    true,
	}
}

// FormatOptions returns the number-format options for format.New.
// An unparseable locale falls back to American English.
func (s Settings) FormatOptions() format.Options {
	tag, err := language.Parse(s.FmtLocale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return format.Options{
		Prefix:     s.FmtPrefix,
		Suffix:     s.FmtSuffix,
		Decimals:   s.FmtDecimals,
		Abbreviate: s.FmtAbbreviate,
		Locale:     tag,
	}
}

// Formatter builds the number formatter for these settings.
func (s Settings) Formatter() format.Formatter {
	return format.New(s.FormatOptions())
}

// =============================================================================
// KEY TABLE
// =============================================================================

type kind int

const (
	kindString kind = iota
	kindBool
	kindDecimals
	kindLocale
)

type keySpec struct {
	name string
	kind kind
	str  func(*Settings) *string
	flag func(*Settings) *bool
	num  func(*Settings) *int
}

func str(name string, f func(*Settings) *string) keySpec {
	return keySpec{name: name, kind: kindString, str: f}
}

func flag(name string, f func(*Settings) *bool) keySpec {
	return keySpec{name: name, kind: kindBool, flag: f}
}

func decimals(name string, f func(*Settings) *int) keySpec {
	return keySpec{name: name, kind: kindDecimals, num: f}
}

var keyTable = []keySpec{
	str("dateFieldName", func(s *Settings) *string { return &s.DateFieldName }),
	str("ptdFieldName", func(s *Settings) *string { return &s.PTDFieldName }),
	str("fmtPrefix", func(s *Settings) *string { return &s.FmtPrefix }),
	str("fmtSuffix", func(s *Settings) *string { return &s.FmtSuffix }),
	decimals("fmtDecimals", func(s *Settings) *int { return &s.FmtDecimals }),
	flag("fmtAbbreviate", func(s *Settings) *bool { return &s.FmtAbbreviate }),
	decimals("fmtDeltaDecimals", func(s *Settings) *int { return &s.FmtDeltaDecimals }),
	{name: "fmtLocale", kind: kindLocale, str: func(s *Settings) *string { return &s.FmtLocale }},
	str("titleText", func(s *Settings) *string { return &s.TitleText }),
	str("valueLabel", func(s *Settings) *string { return &s.ValueLabel }),
	str("deltaLabel", func(s *Settings) *string { return &s.DeltaLabel }),
	str("goalLabel", func(s *Settings) *string { return &s.GoalLabel }),
	str("goal2Label", func(s *Settings) *string { return &s.Goal2Label }),
	str("ptdLabel", func(s *Settings) *string { return &s.PTDLabel }),
	flag("ptdEnabled", func(s *Settings) *bool { return &s.PTDEnabled }),
	flag("reverseDelta", func(s *Settings) *bool { return &s.ReverseDelta }),
	flag("showDelta", func(s *Settings) *bool { return &s.ShowDelta }),
	flag("showGoal", func(s *Settings) *bool { return &s.ShowGoal }),
	flag("showGoal2", func(s *Settings) *bool { return &s.ShowGoal2 }),
	flag("showSparkline", func(s *Settings) *bool { return &s.ShowSparkline }),
	flag("showDateRange", func(s *Settings) *bool { return &s.ShowDateRange }),
}

// Keys returns the bare names of all recognized options.
func Keys() []string {
	names := make([]string, len(keyTable))
	for i, k := range keyTable {
		names[i] = k.name
	}
	return names
}

// HostKey returns the host settings-store key for a bare option name.
func HostKey(name string) string { return HostKeyPrefix + name }

// =============================================================================
// PARSING
// =============================================================================

// Parse builds Settings from the host's string map. All invalid options
// are reported together; the returned Settings still carries every
// option that did parse, with defaults for the rest.
func Parse(raw map[string]string) (Settings, error) {
	s := Defaults()
	var errs []error

	for _, k := range keyTable {
		v, ok := lookup(raw, k.name)
		if !ok {
			continue
		}
		if err := k.apply(&s, v); err != nil {
			errs = append(errs, err)
		}
	}
	return s, errors.Join(errs...)
}

// ParseValues is Parse for loosely typed input (JSON bodies where
// booleans and numbers arrive unquoted).
func ParseValues(raw map[string]any) (Settings, error) {
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		sv, err := cast.ToStringE(v)
		if err != nil {
			return Defaults(), &ValidationError{Key: k, Value: fmt.Sprint(v), Reason: "unsupported value type"}
		}
		m[k] = sv
	}
	return Parse(m)
}

// MustParse is Parse that ignores validation errors. Invalid options
// keep their defaults.
func MustParse(raw map[string]string) Settings {
	s, _ := Parse(raw)
	return s
}

func lookup(raw map[string]string, name string) (string, bool) {
	if v, ok := raw[HostKey(name)]; ok {
		return v, true
	}
	v, ok := raw[name]
	return v, ok
}

func (k keySpec) apply(s *Settings, v string) error {
	switch k.kind {
	case kindString:
		*k.str(s) = v

	case kindLocale:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		if _, err := language.Parse(v); err != nil {
			return &ValidationError{Key: k.name, Value: v, Reason: "unknown locale"}
		}
		*k.str(s) = v

	case kindBool:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Key: k.name, Value: v, Reason: "expected true or false"}
		}
		*k.flag(s) = b

	case kindDecimals:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Key: k.name, Value: v, Reason: "expected an integer"}
		}
		if n < format.AutoDecimals {
			return &ValidationError{Key: k.name, Value: v, Reason: "must be -1 (auto) or greater"}
		}
		*k.num(s) = n
	}
	return nil
}

// =============================================================================
// ENCODING
// =============================================================================

// Encode returns the host-store map for s, keyed with HostKeyPrefix.
// An empty locale is written as DefaultLocale, the locale it formats
// with, so Parse(s.Encode()) yields s with FmtLocale filled in.
func (s Settings) Encode() map[string]string {
	out := make(map[string]string, len(keyTable))
	for _, k := range keyTable {
		switch k.kind {
		case kindString:
			out[HostKey(k.name)] = *k.str(&s)
		case kindLocale:
			v := *k.str(&s)
			if strings.TrimSpace(v) == "" {
				v = DefaultLocale
			}
			out[HostKey(k.name)] = v
		case kindBool:
			out[HostKey(k.name)] = strconv.FormatBool(*k.flag(&s))
		case kindDecimals:
			out[HostKey(k.name)] = strconv.Itoa(*k.num(&s))
		}
	}
	return out
}
