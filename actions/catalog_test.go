package actions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/models"
)

func TestCatalogCoversEveryActionType(t *testing.T) {
	assert.Equal(t, models.ActionTypes(), Slugs())
	for _, slug := range models.ActionTypes() {
		a, ok := Lookup(slug)
		require.True(t, ok, slug)
		assert.NotEmpty(t, a.Description)
		assert.NotEmpty(t, a.WhenToUse)
		assert.NotEmpty(t, a.ExpectedContextToGenerateOutput)
	}
	_, ok := Lookup("throw-party")
	assert.False(t, ok)
}

func TestCatalogIsACopy(t *testing.T) {
	c := Catalog()
	c[0].Tags[0] = "mutated"
	c[0].Slug = "mutated"
	assert.Equal(t, models.ActionSendMessage, Catalog()[0].Slug)
	assert.NotEqual(t, "mutated", Catalog()[0].Tags[0])
}

func TestJSONAndEnum(t *testing.T) {
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(JSON()), &decoded))
	require.Len(t, decoded, 4)
	assert.Equal(t, "send-message", decoded[0]["slug"])
	assert.Contains(t, decoded[0], "whenToUse")

	assert.Equal(t, []any{"send-message", "share-content", "add-note", "buy-gift"}, Enum())
}
