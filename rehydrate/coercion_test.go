package rehydrate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceTypes_StringToInteger(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"age": map[string]any{"type": "integer"}},
	}
	data := map[string]any{"age": "42"}

	got, warnings := coerceTypes(data, schema)
	out := got.(map[string]any)

	assert.Equal(t, json.Number("42"), out["age"])
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningConstraintViolation, warnings[0].Kind)
	assert.Equal(t, "type", warnings[0].Constraint)
	assert.Equal(t, "#/age", warnings[0].DataPath)
}

func TestCoerceTypes_IntegerNeedsNoCoercionForNumberType(t *testing.T) {
	schema := map[string]any{"type": "number"}
	got, warnings := coerceTypes(json.Number("3"), schema)

	assert.Equal(t, json.Number("3"), got)
	assert.Empty(t, warnings)
}

func TestCoerceTypes_NumberToString(t *testing.T) {
	schema := map[string]any{"type": "string"}
	got, warnings := coerceTypes(json.Number("3.5"), schema)

	assert.Equal(t, "3.5", got)
	require.Len(t, warnings, 1)
}

func TestCoerceTypes_BooleanToString(t *testing.T) {
	schema := map[string]any{"type": "string"}
	got, warnings := coerceTypes(true, schema)

	assert.Equal(t, "true", got)
	require.Len(t, warnings, 1)
}

func TestCoerceTypes_StringTrueToBoolean(t *testing.T) {
	schema := map[string]any{"type": "boolean"}
	got, warnings := coerceTypes("true", schema)

	assert.Equal(t, true, got)
	require.Len(t, warnings, 1)
}

func TestCoerceTypes_NullAllowedWhenSchemaPermitsNull(t *testing.T) {
	schema := map[string]any{"type": []any{"string", "null"}}
	got, warnings := coerceTypes(nil, schema)

	assert.Nil(t, got)
	assert.Empty(t, warnings)
}

func TestCoerceTypes_RecursesIntoProperties(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"nested": map[string]any{
				"type":       "object",
				"properties": map[string]any{"count": map[string]any{"type": "integer"}},
			},
		},
	}
	data := map[string]any{"nested": map[string]any{"count": "7"}}

	got, warnings := coerceTypes(data, schema)
	out := got.(map[string]any)
	nested := out["nested"].(map[string]any)

	assert.Equal(t, json.Number("7"), nested["count"])
	require.Len(t, warnings, 1)
	assert.Equal(t, "#/nested/count", warnings[0].DataPath)
}

func TestCoerceTypes_RecursesIntoArrayItems(t *testing.T) {
	schema := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "integer"},
	}
	data := []any{"1", "2", json.Number("3")}

	got, warnings := coerceTypes(data, schema)
	out := got.([]any)

	assert.Equal(t, json.Number("1"), out[0])
	assert.Equal(t, json.Number("2"), out[1])
	assert.Equal(t, json.Number("3"), out[2])
	assert.Len(t, warnings, 2)
}

func TestCoerceTypes_RecursesIntoPrefixItems(t *testing.T) {
	schema := map[string]any{
		"prefixItems": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "integer"},
		},
	}
	data := []any{"ok", "9"}

	got, warnings := coerceTypes(data, schema)
	out := got.([]any)

	assert.Equal(t, "ok", out[0])
	assert.Equal(t, json.Number("9"), out[1])
	require.Len(t, warnings, 1)
}

func TestCoerceTypes_AnyOfPicksMatchingVariantByType(t *testing.T) {
	schema := map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string"},
			map[string]any{
				"type":       "object",
				"properties": map[string]any{"count": map[string]any{"type": "integer"}},
			},
		},
	}
	data := map[string]any{"count": "5"}

	got, warnings := coerceTypes(data, schema)
	out := got.(map[string]any)

	assert.Equal(t, json.Number("5"), out["count"])
	require.Len(t, warnings, 1)
}

func TestCoerceTypes_UncoercibleMismatchPassesThroughUnchanged(t *testing.T) {
	schema := map[string]any{"type": "integer"}
	got, warnings := coerceTypes(map[string]any{"a": 1}, schema)

	assert.Equal(t, map[string]any{"a": 1}, got)
	assert.Empty(t, warnings)
}

func TestTryCoerce_NoCoercionWhenTypeAlreadyMatches(t *testing.T) {
	val, msg, coerced := tryCoerce("hello", []string{"string"})
	assert.Equal(t, "hello", val)
	assert.Empty(t, msg)
	assert.False(t, coerced)
}

func TestTryCoerce_IntegerSatisfiesNumberExpectation(t *testing.T) {
	_, _, coerced := tryCoerce(json.Number("4"), []string{"number"})
	assert.False(t, coerced)
}

func TestJSONTypeName(t *testing.T) {
	assert.Equal(t, "null", jsonTypeName(nil))
	assert.Equal(t, "boolean", jsonTypeName(true))
	assert.Equal(t, "integer", jsonTypeName(json.Number("3")))
	assert.Equal(t, "number", jsonTypeName(json.Number("3.5")))
	assert.Equal(t, "string", jsonTypeName("x"))
	assert.Equal(t, "array", jsonTypeName([]any{}))
	assert.Equal(t, "object", jsonTypeName(map[string]any{}))
}

func TestSchemaTypeNames(t *testing.T) {
	assert.Equal(t, []string{"string"}, schemaTypeNames("string"))
	assert.Equal(t, []string{"string", "null"}, schemaTypeNames([]any{"string", "null"}))
	assert.Nil(t, schemaTypeNames(nil))
}
