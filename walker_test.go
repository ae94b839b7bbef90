package jsonschemallm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecurseIntoChildren_VisitsEveryCategory(t *testing.T) {
	node := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "string"},
		},
		"additionalProperties": map[string]any{"type": "string"},
		"allOf": []any{
			map[string]any{"type": "integer"},
		},
		"items": map[string]any{"type": "boolean"},
	}

	var visited []string
	out, err := recurseIntoChildren(node, "#", func(child any, path string) (any, error) {
		visited = append(visited, path)
		return child, nil
	})
	require.NoError(t, err)
	assert.NotNil(t, out)

	assert.ElementsMatch(t, []string{
		"#/properties/a",
		"#/additionalProperties",
		"#/allOf/0",
		"#/items",
	}, visited)
}

func TestRecurseIntoChildren_AdditionalPropertiesFalseIsLeaf(t *testing.T) {
	node := map[string]any{"additionalProperties": false}
	called := false
	out, err := recurseIntoChildren(node, "#", func(child any, path string) (any, error) {
		called = true
		return child, nil
	})
	require.NoError(t, err)
	assert.False(t, called, "additionalProperties: false is a leaf, visit must not be called")
	om := out.(map[string]any)
	assert.Equal(t, false, om["additionalProperties"])
}

func TestRecurseIntoChildren_TupleItemsArray(t *testing.T) {
	node := map[string]any{
		"items": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "integer"},
		},
	}
	var visited []string
	_, err := recurseIntoChildren(node, "#", func(child any, path string) (any, error) {
		visited = append(visited, path)
		return child, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"#/items/0", "#/items/1"}, visited)
}

func TestRecurseIntoChildren_ItemsBoolIsLeaf(t *testing.T) {
	node := map[string]any{"items": false}
	called := false
	out, err := recurseIntoChildren(node, "#", func(child any, path string) (any, error) {
		called = true
		return child, nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, false, out.(map[string]any)["items"])
}

func TestRecurseIntoChildren_NonObjectNodeIsNoop(t *testing.T) {
	out, err := recurseIntoChildren(true, "#", func(child any, path string) (any, error) {
		t.Fatal("visit should never be called on a non-object node")
		return child, nil
	})
	require.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestRecurseIntoChildren_PropagatesVisitError(t *testing.T) {
	node := map[string]any{"properties": map[string]any{"a": map[string]any{}}}
	wantErr := newSchemaError("#/properties/a", "boom")
	_, err := recurseIntoChildren(node, "#", func(child any, path string) (any, error) {
		return nil, wantErr
	})
	assert.Equal(t, wantErr, err)
}
