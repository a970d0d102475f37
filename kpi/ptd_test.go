package kpi_test

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/settings"
)

// =============================================================================
// PERIOD-TO-DATE - Raw date shapes
// =============================================================================

// labelledRow is a row whose date cell carries any raw value plus the
// period label the host displays for it.
func labelledRow(raw any, label string, value float64) kpi.Row {
	return kpi.Row{
		"Order Date": {Value: raw, FormattedValue: label},
		"Sales":      {Value: value},
	}
}

func epochMillis(t time.Time) json.Number {
	return json.Number(strconv.FormatInt(t.UnixMilli(), 10))
}

func ptdEngine(today time.Time) *kpi.Engine {
	return kpi.New(kpi.WithClock(fixedClock(today)), kpi.WithLocation(time.UTC))
}

func salesTable(rows ...kpi.Row) kpi.Table {
	return kpi.Table{Columns: columns("Order Date", "Sales"), Rows: rows}
}

func TestPTD_DateStringsWithUnparseableRows(t *testing.T) {
	// GIVEN: string dates, one unparseable row per quarter; day 46 of 2026 Q1
	table := salesTable(
		labelledRow("2025-10-05", "2025 Q4", 50),
		labelledRow("2025-11-20", "2025 Q4", 30),
		labelledRow("not-a-date", "2025 Q4", 7),
		labelledRow("2026-01-10", "2026 Q1", 80),
		labelledRow("2026-02-15", "2026 Q1", 20),
		labelledRow("garbage", "2026 Q1", 3),
	)

	// WHEN
	res := ptdEngine(day(2026, time.February, 15)).Compute(table, ptdEncoding(), settings.Defaults())

	// THEN: totals count every row, PTD only the dated rows in the window
	require.NotNil(t, res)
	assert.True(t, res.CurrentValue.Equal(dec("103")), "current %s", res.CurrentValue)
	assertDecimal(t, "87", res.PreviousValue)
	assert.Equal(t, []string{"87", "103"}, values(res.SparkData))
	assert.Equal(t, []string{"50", "100"}, values(res.PTDSparkData))
	assertDecimal(t, "100", res.PTDDelta)
}

func TestPTD_EpochMillisecondDates(t *testing.T) {
	// GIVEN: json.Number and float64 epoch milliseconds, as hosts send them
	table := salesTable(
		labelledRow(epochMillis(day(2025, time.October, 5)), "2025 Q4", 50),
		labelledRow(float64(day(2025, time.December, 1).UnixMilli()), "2025 Q4", 30),
		labelledRow(epochMillis(day(2026, time.January, 10)), "2026 Q1", 60),
		labelledRow(float64(day(2026, time.February, 14).UnixMilli()), "2026 Q1", 15),
	)

	// WHEN
	res := ptdEngine(day(2026, time.February, 15)).Compute(table, ptdEncoding(), settings.Defaults())

	// THEN: Dec 1 is day 62 of Q4 and falls outside the 46-day window
	require.NotNil(t, res)
	assert.Equal(t, []string{"2025 Q4", "2026 Q1"}, labels(res.SparkData))
	assert.Equal(t, []string{"80", "75"}, values(res.SparkData))
	assert.Equal(t, []string{"50", "75"}, values(res.PTDSparkData))
	assertDecimal(t, "50", res.PTDDelta)
}

func TestPTD_EpochDatesUseEngineLocation(t *testing.T) {
	// GIVEN: 2026-01-31 23:30 UTC is already February 1 in Tokyo
	tokyo := time.FixedZone("JST", 9*3600)
	lateJanuary := time.Date(2026, time.January, 31, 23, 30, 0, 0, time.UTC)
	table := salesTable(
		labelledRow(epochMillis(day(2026, time.January, 1)), "2026-01", 10),
		labelledRow(epochMillis(lateJanuary), "2026-01", 5),
		labelledRow(epochMillis(day(2026, time.February, 1)), "2026-02", 20),
	)
	e := kpi.New(kpi.WithClock(fixedClock(day(2026, time.February, 1))), kpi.WithLocation(tokyo))

	// WHEN
	res := e.Compute(table, ptdEncoding(), settings.Defaults())

	// THEN: today is day 1 in Tokyo and the late row falls outside January's window
	require.NotNil(t, res)
	assert.Equal(t, []string{"10", "20"}, values(res.PTDSparkData))
}

func TestPTD_MonthBucketsOfDifferentLengths(t *testing.T) {
	// GIVEN: "yyyy-mm" buckets, today is day 15 of February
	table := salesTable(
		labelledRow("2026-01-03", "2026-01", 10),
		labelledRow("2026-01-15", "2026-01", 20),
		labelledRow("2026-01-16", "2026-01", 40),
		labelledRow("2026-01-31", "2026-01", 5),
		labelledRow("2026-02-01", "2026-02", 12),
		labelledRow("2026-02-15", "2026-02", 33),
	)

	// WHEN
	res := ptdEngine(day(2026, time.February, 15)).Compute(table, ptdEncoding(), settings.Defaults())

	// THEN: January is cut after its 15th day
	require.NotNil(t, res)
	assert.Equal(t, []string{"75", "45"}, values(res.SparkData))
	assert.Equal(t, []string{"30", "45"}, values(res.PTDSparkData))
	assertDecimal(t, "50", res.PTDDelta)
}

func TestPTD_MonthNameLabels(t *testing.T) {
	// GIVEN: "Month yyyy" buckets, today is day 30 of March; the shorter
	// February is covered in full
	table := salesTable(
		labelledRow("2026-02-10", "February 2026", 10),
		labelledRow("2026-02-28", "February 2026", 20),
		labelledRow("2026-03-05", "March 2026", 15),
		labelledRow("2026-03-30", "March 2026", 30),
		labelledRow("2026-03-31", "March 2026", 100),
	)

	// WHEN
	res := ptdEngine(day(2026, time.March, 30)).Compute(table, ptdEncoding(), settings.Defaults())

	// THEN: the row dated tomorrow counts in the total only
	require.NotNil(t, res)
	assert.Equal(t, []string{"February 2026", "March 2026"}, labels(res.SparkData))
	assert.Equal(t, []string{"30", "145"}, values(res.SparkData))
	assert.Equal(t, []string{"30", "45"}, values(res.PTDSparkData))
	assertDecimal(t, "50", res.PTDDelta)
}
