package widget_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/settings"
	"github.com/warp/kpi-engine/widget"
)

func salesEncodings() kpi.EncodingMap {
	return kpi.EncodingMap{
		{ID: kpi.EncValue, Field: &kpi.FieldRef{Name: "Sales", Role: kpi.RoleMeasure}},
		{ID: kpi.EncDate, Field: &kpi.FieldRef{Name: "Quarter", Role: kpi.RoleDimension}},
	}
}

func TestNew_AssignsIDAndTimestamps(t *testing.T) {
	a := widget.New("Revenue", salesEncodings(), nil)
	b := widget.New("Revenue", salesEncodings(), nil)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
}

func TestValidate(t *testing.T) {
	w := widget.New("Revenue", salesEncodings(), map[string]string{"kpi_fmtPrefix": "$"})
	require.NoError(t, w.Validate())

	noName := w
	noName.Name = "  "
	assert.ErrorIs(t, noName.Validate(), widget.ErrInvalidWidget)

	badSettings := w
	badSettings.Settings = map[string]string{"kpi_fmtDecimals": "many"}
	err := badSettings.Validate()
	assert.ErrorIs(t, err, widget.ErrInvalidWidget)
	assert.ErrorIs(t, err, settings.ErrInvalidSetting)
}

func TestMergeSettings(t *testing.T) {
	w := widget.New("Revenue", salesEncodings(), map[string]string{
		"kpi_fmtPrefix":   "$",
		"kpi_fmtDecimals": "2",
	})

	merged := w.MergeSettings(map[string]string{
		"kpi_fmtDecimals":  "",
		"kpi_reverseDelta": "true",
	})

	assert.Equal(t, map[string]string{"kpi_fmtPrefix": "$", "kpi_reverseDelta": "true"}, merged)
	assert.Equal(t, "2", w.Settings["kpi_fmtDecimals"], "original untouched")
}

func TestCompute_UsesStoredConfiguration(t *testing.T) {
	// GIVEN: a widget with a currency prefix
	w := widget.New("Revenue", salesEncodings(), map[string]string{"kpi_fmtPrefix": "$"})
	table := kpi.Table{
		Columns: []kpi.Column{{FieldName: "Sales"}, {FieldName: "Quarter"}},
		Rows: []kpi.Row{
			{"Quarter": {Value: "2025 Q4"}, "Sales": {Value: 100.0}},
			{"Quarter": {Value: "2026 Q1"}, "Sales": {Value: 150.0}},
		},
	}

	// WHEN
	res, err := w.Compute(kpi.New(), table)

	// THEN
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "$150", res.FormattedValue)
	assert.True(t, res.Delta.Valid)
}

func TestCompute_InvalidSettings(t *testing.T) {
	w := widget.New("Revenue", salesEncodings(), map[string]string{"kpi_showDelta": "maybe"})

	res, err := w.Compute(kpi.New(), kpi.Table{})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, settings.ErrInvalidSetting)
}
