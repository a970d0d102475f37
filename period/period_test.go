package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-engine/period"
)

// =============================================================================
// LABEL NORMALIZATION
// =============================================================================

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw       string
		fieldName string
		want      string
	}{
		{"Q1 2026", "Order Date", "2026 Q1"},
		{"q4 2025", "Order Date", "2025 Q4"},
		{"2026-Q1", "Order Date", "2026 Q1"},
		{"2026 Q1", "Order Date", "2026 Q1"},
		{"  2026 Q2  ", "Order Date", "2026 Q2"},
		{"3", "Fiscal Quarter", "Q3"},
		{"3", "QTR(Order Date)", "Q3"},
		{"3", "Order Date", "3"},
		{"5", "Fiscal Quarter", "5"},
		{"2026-03", "Order Date", "2026-03"},
		{"March 2026", "Order Date", "March 2026"},
		{"something else", "", "something else"},
	}
	for _, tt := range tests {
		t.Run(tt.raw+"/"+tt.fieldName, func(t *testing.T) {
			assert.Equal(t, tt.want, period.Normalize(tt.raw, tt.fieldName))
		})
	}
}

func TestIsQuarterField(t *testing.T) {
	assert.True(t, period.IsQuarterField("Quarter of Order Date"))
	assert.True(t, period.IsQuarterField("fiscal qtr"))
	assert.False(t, period.IsQuarterField("Order Date"))
	assert.False(t, period.IsQuarterField(""))
}

// =============================================================================
// PREVIOUS LABEL
// =============================================================================

func TestPrevious(t *testing.T) {
	tests := map[string]string{
		"2026 Q1":    "2025 Q4",
		"2026 Q3":    "2026 Q2",
		"2026Q2":     "2026 Q1",
		"2026-Q1":    "2025 Q4",
		"2026":       "2025",
		"2026-01":    "2025-12",
		"2026-10":    "2026-09",
		"March 2026": period.UnknownPrevious,
		"Q3":         period.UnknownPrevious,
		"":           period.UnknownPrevious,
	}
	for label, want := range tests {
		assert.Equal(t, want, period.Previous(label), "Previous(%q)", label)
	}
}

func TestPrevious_Deterministic(t *testing.T) {
	assert.Equal(t, period.Previous("2026 Q1"), period.Previous("2026 Q1"))
}

// =============================================================================
// LABEL -> PERIOD
// =============================================================================

func TestFromLabel_Quarters(t *testing.T) {
	for _, label := range []string{"2026 Q1", "2026Q1", "Q1 2026", "2026-Q1", "2026 q1"} {
		p, ok := period.FromLabel(label)
		require.True(t, ok, label)
		assert.Equal(t, period.NewDay(2026, time.January, 1), p.Start, label)
		assert.Equal(t, period.NewDay(2026, time.March, 31), p.End, label)
	}

	p, ok := period.FromLabel("2025 Q4")
	require.True(t, ok)
	assert.Equal(t, "[2025-10-01, 2025-12-31]", p.String())
	assert.Equal(t, 92, p.DayOffset(p.End))
}

func TestFromLabel_YearAndMonth(t *testing.T) {
	p, ok := period.FromLabel("2024")
	require.True(t, ok)
	assert.Equal(t, "[2024-01-01, 2024-12-31]", p.String())

	p, ok = period.FromLabel("2024-02")
	require.True(t, ok)
	assert.Equal(t, "[2024-02-01, 2024-02-29]", p.String(), "leap year February")

	p, ok = period.FromLabel("March 2026")
	require.True(t, ok)
	assert.Equal(t, "[2026-03-01, 2026-03-31]", p.String())

	p, ok = period.FromLabel("sep 2025")
	require.True(t, ok)
	assert.Equal(t, "[2025-09-01, 2025-09-30]", p.String())
}

func TestFromLabel_Unrecognized(t *testing.T) {
	for _, label := range []string{"Q3", "2026 Q5", "2026-13", "Smarch 2026", "Previous", ""} {
		_, ok := period.FromLabel(label)
		assert.False(t, ok, label)
	}
}

func TestPeriod_ElapsedDays(t *testing.T) {
	p, _ := period.FromLabel("2026 Q1")

	days, ok := p.ElapsedDays(period.NewDay(2026, time.January, 1))
	require.True(t, ok)
	assert.Equal(t, 1, days)

	days, ok = p.ElapsedDays(period.NewDay(2026, time.February, 15))
	require.True(t, ok)
	assert.Equal(t, 46, days)

	_, ok = p.ElapsedDays(period.NewDay(2026, time.April, 1))
	assert.False(t, ok, "period already ended")
}

func TestPeriod_DayOffset(t *testing.T) {
	p, _ := period.FromLabel("2026-03")
	assert.Equal(t, 1, p.DayOffset(period.NewDay(2026, time.March, 1)))
	assert.Equal(t, 0, p.DayOffset(period.NewDay(2026, time.February, 28)))
	assert.Equal(t, 31, p.DayOffset(period.NewDay(2026, time.March, 31)))
	assert.Equal(t, 32, p.DayOffset(period.NewDay(2026, time.April, 1)))
}

func TestDayOf_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	instant := time.Date(2026, time.March, 31, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, period.NewDay(2026, time.March, 31), period.DayOf(instant))
	assert.Equal(t, period.NewDay(2026, time.April, 1), period.Today(instant, tokyo))
}
