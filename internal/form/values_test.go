package form

import (
	"encoding/json"
	"testing"

	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_Clone(t *testing.T) {
	v := Values{
		"tags":  []string{},
		"items": []entity.LineItem{},
		"notes": []string{"a"},
		"rows":  []entity.LineItem{{ID: "1", Description: "Patrol"}},
	}

	c := v.Clone()
	assert.Equal(t, v, c)
	assert.NotNil(t, c.List("tags"))
	assert.NotNil(t, c.Items("items"))

	data, err := json.Marshal(map[string]any{"tags": c["tags"], "items": c["items"]})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":[],"items":[]}`, string(data))

	c.List("notes")[0] = "b"
	c.Items("rows")[0].Description = "changed"
	assert.Equal(t, "a", v.List("notes")[0])
	assert.Equal(t, "Patrol", v.Items("rows")[0].Description)
}

func TestNormalizeItem_DecimalAmount(t *testing.T) {
	item := normalizeItem(entity.LineItem{Quantity: 3, UnitPrice: 0.1}, 0)
	assert.Equal(t, 0.3, item.Amount)
	assert.Equal(t, "1", item.ID)

	item = normalizeItem(entity.LineItem{Quantity: 1e200, UnitPrice: 1e200}, 1)
	assert.Equal(t, 0.0, item.Amount)
}
