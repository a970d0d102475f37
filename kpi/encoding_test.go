package kpi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-engine/kpi"
)

func TestEncodingMap_UnmarshalKeepsOrder(t *testing.T) {
	raw := `{
		"value": {"name": "Sales", "role": "measure"},
		"date": null,
		"columns": {"name": "Region", "role": "dimension"},
		"rows": {"name": "Quarter", "role": "dimension"}
	}`

	var m kpi.EncodingMap
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	require.Len(t, m, 4)
	assert.Equal(t, []string{"value", "date", "columns", "rows"}, []string{m[0].ID, m[1].ID, m[2].ID, m[3].ID})
	assert.Nil(t, m.Get(kpi.EncDate))
	assert.Equal(t, "Sales", m.Get(kpi.EncValue).Name)
	assert.Equal(t, kpi.RoleDimension, m[2].Field.Role)
}

func TestEncodingMap_MarshalKeepsOrder(t *testing.T) {
	m := encodings("rows", dimension("Quarter"), kpi.EncValue, measure("Sales"), kpi.EncGoal, nil)

	out, err := json.Marshal(m)

	require.NoError(t, err)
	assert.Equal(t,
		`{"rows":{"name":"Quarter","role":"dimension"},"value":{"name":"Sales","role":"measure"},"goal":null}`,
		string(out))
}

func TestEncodingMap_UnmarshalRejectsNonObject(t *testing.T) {
	var m kpi.EncodingMap
	assert.Error(t, json.Unmarshal([]byte(`["value"]`), &m))
}

func TestEncodingMap_With(t *testing.T) {
	m := encodings(kpi.EncValue, measure("Sales"), kpi.EncDate, nil)

	replaced := m.With(kpi.EncDate, dimension("Order Date"))
	appended := m.With(kpi.EncGoal, measure("Quota"))

	assert.Nil(t, m.Get(kpi.EncDate), "original untouched")
	assert.Equal(t, "Order Date", replaced.Get(kpi.EncDate).Name)
	assert.Len(t, replaced, 2)
	assert.Len(t, appended, 3)
	assert.Equal(t, kpi.EncGoal, appended[2].ID)
}
