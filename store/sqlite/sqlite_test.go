package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/store/sqlite"
	"github.com/warp/kpi-engine/widget"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func revenueWidget() widget.Widget {
	return widget.New("Revenue", kpi.EncodingMap{
		{ID: kpi.EncValue, Field: &kpi.FieldRef{Name: "Sales", Role: kpi.RoleMeasure}},
		{ID: kpi.EncGoal, Field: nil},
		{ID: "columns", Field: &kpi.FieldRef{Name: "Quarter", Role: kpi.RoleDimension}},
	}, map[string]string{
		"kpi_fmtPrefix":  "$",
		"kpi_customFlag": "kept",
	})
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	w := revenueWidget()

	require.NoError(t, s.Save(ctx, w))

	got, err := s.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revenue", got.Name)
	assert.Equal(t, w.Settings, got.Settings, "unknown keys round-trip")
	require.Len(t, got.Encodings, 3)
	assert.Equal(t, []string{"value", "goal", "columns"},
		[]string{got.Encodings[0].ID, got.Encodings[1].ID, got.Encodings[2].ID})
	assert.Nil(t, got.Encodings[1].Field)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestStore_GetMissing(t *testing.T) {
	_, err := newStore(t).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, widget.ErrWidgetNotFound)
}

func TestStore_SaveReplacesSettings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	w := revenueWidget()
	require.NoError(t, s.Save(ctx, w))

	// WHEN: saved again with a different settings map
	w.Name = "Net Revenue"
	w.Settings = map[string]string{"kpi_fmtSuffix": " USD"}
	require.NoError(t, s.Save(ctx, w))

	// THEN: old keys are gone
	got, err := s.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Net Revenue", got.Name)
	assert.Equal(t, map[string]string{"kpi_fmtSuffix": " USD"}, got.Settings)
}

func TestStore_SaveKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	w := revenueWidget()
	require.NoError(t, s.Save(ctx, w))
	first, err := s.Get(ctx, w.ID)
	require.NoError(t, err)

	w.CreatedAt = w.CreatedAt.AddDate(-1, 0, 0)
	require.NoError(t, s.Save(ctx, w))

	got, err := s.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))
	assert.False(t, got.UpdatedAt.Before(first.UpdatedAt))
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, name := range []string{"Margin", "Churn"} {
		w := revenueWidget()
		w.Name = name
		w.Settings = map[string]string{"kpi_titleText": name}
		require.NoError(t, s.Save(ctx, w))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "Churn", list[0].Name)
	assert.Equal(t, "Churn", list[0].Settings["kpi_titleText"])
	assert.Equal(t, "Margin", list[1].Settings["kpi_titleText"])
}

func TestStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	w := revenueWidget()
	require.NoError(t, s.Save(ctx, w))

	require.NoError(t, s.Delete(ctx, w.ID))

	_, err := s.Get(ctx, w.ID)
	assert.ErrorIs(t, err, widget.ErrWidgetNotFound)
	assert.ErrorIs(t, s.Delete(ctx, w.ID), widget.ErrWidgetNotFound)

	// re-creating with the same id starts with no stale settings
	w.Settings = nil
	require.NoError(t, s.Save(ctx, w))
	got, err := s.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Settings)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Save(ctx, revenueWidget()))

	require.NoError(t, s.Reset(ctx))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_ComputeFromStoredWidget(t *testing.T) {
	// GIVEN: a stored widget
	ctx := context.Background()
	s := newStore(t)
	w := revenueWidget()
	require.NoError(t, s.Save(ctx, w))

	// WHEN: it is loaded back and computed
	got, err := s.Get(ctx, w.ID)
	require.NoError(t, err)
	res, err := got.Compute(kpi.New(), kpi.Table{
		Columns: []kpi.Column{{FieldName: "Sales"}, {FieldName: "Quarter"}},
		Rows: []kpi.Row{
			{"Quarter": {Value: "2025 Q4"}, "Sales": {Value: 100.0}},
			{"Quarter": {Value: "2026 Q1"}, "Sales": {Value: 110.0}},
		},
	})

	// THEN
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "$110", res.FormattedValue)
	assert.Equal(t, "2025 Q4 — 2026 Q1", res.PeriodLabel)
}
