package jsonschemallm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec(t *testing.T) {
	c := NewCodec()
	assert.Equal(t, CodecSchemaURI, c.SchemaURI)
	assert.Empty(t, c.Transforms)
	assert.Empty(t, c.DroppedConstraints)
}

func TestCodec_AddTransformAndDropped(t *testing.T) {
	c := NewCodec()
	c.addTransform(MapToArray{Path: "#/properties/tags", KeyField: "key"})
	c.addDropped(DroppedConstraint{Path: "#/properties/name", Constraint: "pattern", Value: "^[a-z]+$"})

	require.Len(t, c.Transforms, 1)
	assert.Equal(t, TransformTypeMapToArray, c.Transforms[0].TransformType())
	require.Len(t, c.DroppedConstraints, 1)
	assert.Equal(t, "pattern", c.DroppedConstraints[0].Constraint)
}

func TestCodec_MarshalUnmarshalRoundTrip_AllVariants(t *testing.T) {
	c := NewCodec()
	c.addTransform(MapToArray{Path: "#/properties/tags", KeyField: "key"})
	c.addTransform(JSONStringParse{Path: "#/properties/payload"})
	c.addTransform(NullableOptional{Path: "#/properties/age", OriginalRequired: false})
	c.addTransform(ExtractAdditionalProperties{Path: "#/properties/extra", PropertyName: "_extra"})
	c.addTransform(RecursiveInflate{Path: "#/properties/children/items", OriginalRef: "#/$defs/Node"})
	c.addTransform(RootObjectWrapper{Path: "#", WrapperKey: "result"})
	c.addTransform(EnumStringify{Path: "#/properties/status", OriginalValues: []any{"a", "b"}})
	c.addTransform(DiscriminatorAnyOf{Path: "#/properties/shape", Discriminator: "kind", Variants: []string{"circle", "square"}})
	c.addDropped(DroppedConstraint{Path: "#/properties/name", Constraint: "pattern", Value: "^[a-z]+$"})

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var got Codec
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, c.SchemaURI, got.SchemaURI)
	require.Len(t, got.Transforms, 8)
	require.Len(t, got.DroppedConstraints, 1)

	assert.Equal(t, MapToArray{Path: "#/properties/tags", KeyField: "key"}, got.Transforms[0])
	assert.Equal(t, JSONStringParse{Path: "#/properties/payload"}, got.Transforms[1])
	assert.Equal(t, NullableOptional{Path: "#/properties/age", OriginalRequired: false}, got.Transforms[2])
	assert.Equal(t, ExtractAdditionalProperties{Path: "#/properties/extra", PropertyName: "_extra"}, got.Transforms[3])
	assert.Equal(t, RecursiveInflate{Path: "#/properties/children/items", OriginalRef: "#/$defs/Node"}, got.Transforms[4])
	assert.Equal(t, RootObjectWrapper{Path: "#", WrapperKey: "result"}, got.Transforms[5])
	assert.Equal(t, EnumStringify{Path: "#/properties/status", OriginalValues: []any{"a", "b"}}, got.Transforms[6])
	assert.Equal(t, DiscriminatorAnyOf{Path: "#/properties/shape", Discriminator: "kind", Variants: []string{"circle", "square"}}, got.Transforms[7])

	assert.Equal(t, DroppedConstraint{Path: "#/properties/name", Constraint: "pattern", Value: "^[a-z]+$"}, got.DroppedConstraints[0])
}

func TestCodec_MarshalJSON_EmitsTypeTag(t *testing.T) {
	c := NewCodec()
	c.addTransform(MapToArray{Path: "#/properties/tags", KeyField: "key"})

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))

	transforms := generic["transforms"].([]any)
	require.Len(t, transforms, 1)
	entry := transforms[0].(map[string]any)
	assert.Equal(t, "map_to_array", entry["type"])
	assert.Equal(t, "key", entry["keyField"])
}

func TestCodec_UnmarshalJSON_UnknownTransformType(t *testing.T) {
	raw := []byte(`{"$schema":"https://jsonschema-llm.dev/codec/v1","transforms":[{"type":"not_a_real_transform"}],"droppedConstraints":[]}`)

	var c Codec
	err := c.UnmarshalJSON(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_a_real_transform")
}

func TestCodec_UnmarshalJSON_EmptyTransformsIsNil(t *testing.T) {
	raw := []byte(`{"$schema":"https://jsonschema-llm.dev/codec/v1","transforms":[],"droppedConstraints":[]}`)

	var c Codec
	require.NoError(t, c.UnmarshalJSON(raw))
	assert.Nil(t, c.Transforms)
}
