package kpi_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/kpi-engine/kpi"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     string // empty = null
	}{
		{"growth", "120", "100", "20"},
		{"decline", "75", "100", "-25"},
		{"negative base", "50", "-50", "200"},
		{"zero base", "10", "0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kpi.PercentChange(dec(tt.current), dec(tt.previous))
			if tt.want == "" {
				assert.False(t, got.Valid)
				return
			}
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestGoalPercent(t *testing.T) {
	assertDecimal(t, "50", kpi.GoalPercent(dec("50"), dec("100")))
	assertDecimal(t, "62", kpi.GoalPercent(dec("123"), dec("200")), "61.5 rounds up")
	assertDecimal(t, "-61", kpi.GoalPercent(dec("-123"), dec("200")), "-61.5 rounds toward +Inf")
	assertDecimal(t, "150", kpi.GoalPercent(dec("150"), dec("100")))
	assert.False(t, kpi.GoalPercent(dec("10"), decimal.Zero).Valid)
}

func TestBuildSeries(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		spark, ptd := kpi.BuildSeries(nil)
		assert.Nil(t, spark)
		assert.Nil(t, ptd)
	})

	t.Run("ptd only when every bucket has one", func(t *testing.T) {
		buckets := []*kpi.Bucket{
			{Label: "2025", Value: dec("1"), PTD: decimal.NewNullDecimal(dec("1"))},
			{Label: "2026", Value: dec("2")},
		}
		spark, ptd := kpi.BuildSeries(buckets)
		assert.Equal(t, []string{"2025", "2026"}, labels(spark))
		assert.Nil(t, ptd)
	})

	t.Run("single bucket padded in both series", func(t *testing.T) {
		buckets := []*kpi.Bucket{
			{Label: "2026-03", Value: dec("9"), PTD: decimal.NewNullDecimal(dec("4"))},
		}
		spark, ptd := kpi.BuildSeries(buckets)
		assert.Equal(t, []string{"2026-02", "2026-03"}, labels(spark))
		assert.Equal(t, []string{"0", "9"}, values(spark))
		assert.Equal(t, []string{"2026-02", "2026-03"}, labels(ptd))
		assert.Equal(t, []string{"0", "4"}, values(ptd))
	})
}
