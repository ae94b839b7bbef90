package jsonschemallm

import (
	"encoding/json"
	"fmt"
)

// CodecSchemaURI pins the codec wire format's major version. A codec read
// back with a different major version fails with ErrorCodeCodecVersionMismatch.
const CodecSchemaURI = "https://jsonschema-llm.dev/codec/v1"

// CodecMajorVersion is the integer major version embedded in CodecSchemaURI.
const CodecMajorVersion = 1

// TransformType tags a Transform variant on the wire, snake_case.
type TransformType string

const (
	TransformTypeMapToArray                 TransformType = "map_to_array"
	TransformTypeJSONStringParse            TransformType = "json_string_parse"
	TransformTypeNullableOptional           TransformType = "nullable_optional"
	TransformTypeExtractAdditionalProperties TransformType = "extract_additional_properties"
	TransformTypeRecursiveInflate           TransformType = "recursive_inflate"
	TransformTypeRootObjectWrapper          TransformType = "root_object_wrapper"
	TransformTypeEnumStringify              TransformType = "enum_stringify"
	TransformTypeDiscriminatorAnyOf         TransformType = "discriminator_any_of"
)

// Transform is one tagged, path-addressed codec entry. Every variant below
// implements it.
type Transform interface {
	TransformType() TransformType
	TransformPath() string
}

// MapToArray records that an object (a "pure map") was rewritten into an
// array of {key_field, value} pairs.
type MapToArray struct {
	Path     string `json:"path"`
	KeyField string `json:"keyField"`
}

func (t MapToArray) TransformType() TransformType { return TransformTypeMapToArray }
func (t MapToArray) TransformPath() string         { return t.Path }

// JSONStringParse records that the node's content was stringified; the
// rehydrator parses it back into JSON.
type JSONStringParse struct {
	Path string `json:"path"`
}

func (t JSONStringParse) TransformType() TransformType { return TransformTypeJSONStringParse }
func (t JSONStringParse) TransformPath() string         { return t.Path }

// NullableOptional records that null was stripped from an optional key the
// original schema did not require.
type NullableOptional struct {
	Path             string `json:"path"`
	OriginalRequired bool   `json:"originalRequired"`
}

func (t NullableOptional) TransformType() TransformType { return TransformTypeNullableOptional }
func (t NullableOptional) TransformPath() string         { return t.Path }

// ExtractAdditionalProperties records that a mixed object's dynamic entries
// were hoisted into a synthetic child property.
type ExtractAdditionalProperties struct {
	Path         string `json:"path"`
	PropertyName string `json:"propertyName"`
}

func (t ExtractAdditionalProperties) TransformType() TransformType {
	return TransformTypeExtractAdditionalProperties
}
func (t ExtractAdditionalProperties) TransformPath() string { return t.Path }

// RecursiveInflate records that a node is an opaque-string placeholder for
// an inlined cyclic type beyond the recursion limit.
type RecursiveInflate struct {
	Path        string `json:"path"`
	OriginalRef string `json:"originalRef"`
}

func (t RecursiveInflate) TransformType() TransformType { return TransformTypeRecursiveInflate }
func (t RecursiveInflate) TransformPath() string         { return t.Path }

// RootObjectWrapper records that the root schema was wrapped in a
// synthetic object to satisfy an object-root requirement.
type RootObjectWrapper struct {
	Path      string `json:"path"`
	WrapperKey string `json:"wrapperKey"`
}

func (t RootObjectWrapper) TransformType() TransformType { return TransformTypeRootObjectWrapper }
func (t RootObjectWrapper) TransformPath() string         { return t.Path }

// EnumStringify records that a mixed-type enum had all its values coerced
// to strings.
type EnumStringify struct {
	Path           string `json:"path"`
	OriginalValues []any  `json:"originalValues"`
}

func (t EnumStringify) TransformType() TransformType { return TransformTypeEnumStringify }
func (t EnumStringify) TransformPath() string         { return t.Path }

// DiscriminatorAnyOf is a rehydration-side polymorphism hint; it never
// mutates data. Reserved for forward-compatible rehydrator versions (spec
// §9, open question ii).
type DiscriminatorAnyOf struct {
	Path          string   `json:"path"`
	Discriminator string   `json:"discriminator"`
	Variants      []string `json:"variants"`
}

func (t DiscriminatorAnyOf) TransformType() TransformType { return TransformTypeDiscriminatorAnyOf }
func (t DiscriminatorAnyOf) TransformPath() string         { return t.Path }

// DroppedConstraint records a keyword P7 removed because the target
// provider does not support it.
type DroppedConstraint struct {
	Path       string `json:"path"`
	Constraint string `json:"constraint"`
	Value      any    `json:"value"`
}

// Codec is the ordered, path-addressed sidecar describing every lossy or
// shape-altering rewrite Convert applied.
type Codec struct {
	SchemaURI          string              `json:"$schema"`
	Transforms         []Transform         `json:"transforms"`
	DroppedConstraints []DroppedConstraint `json:"droppedConstraints"`
}

// NewCodec returns an empty codec stamped with the current schema URI.
func NewCodec() *Codec {
	return &Codec{SchemaURI: CodecSchemaURI}
}

func (c *Codec) addTransform(t Transform) {
	c.Transforms = append(c.Transforms, t)
}

func (c *Codec) addDropped(d DroppedConstraint) {
	c.DroppedConstraints = append(c.DroppedConstraints, d)
}

// transformEnvelope is the wire shape shared by every Transform variant:
// the tag plus that variant's own fields inlined. Marshal/unmarshal follow
// the teacher's lossless.go pattern of hand-merging known fields over a
// generic map, since encoding/json has no native tagged-union support.
type transformEnvelope struct {
	Type TransformType `json:"type"`
}

// MarshalJSON flattens the transform's own JSON tags alongside its "type"
// tag.
func (c Codec) MarshalJSON() ([]byte, error) {
	type alias struct {
		SchemaURI          string              `json:"$schema"`
		Transforms         []json.RawMessage   `json:"transforms"`
		DroppedConstraints []DroppedConstraint `json:"droppedConstraints"`
	}
	out := alias{SchemaURI: c.SchemaURI, DroppedConstraints: c.DroppedConstraints}
	for _, t := range c.Transforms {
		raw, err := marshalTransform(t)
		if err != nil {
			return nil, err
		}
		out.Transforms = append(out.Transforms, raw)
	}
	return json.Marshal(out)
}

func marshalTransform(t Transform) (json.RawMessage, error) {
	fieldBytes, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(fieldBytes, &fields); err != nil {
		return nil, err
	}
	fields["type"] = string(t.TransformType())
	return json.Marshal(fields)
}

// UnmarshalJSON reconstructs each transform by sniffing its "type" tag.
func (c *Codec) UnmarshalJSON(data []byte) error {
	type alias struct {
		SchemaURI          string              `json:"$schema"`
		Transforms         []json.RawMessage   `json:"transforms"`
		DroppedConstraints []DroppedConstraint `json:"droppedConstraints"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	c.SchemaURI = a.SchemaURI
	c.DroppedConstraints = a.DroppedConstraints
	c.Transforms = nil
	for _, raw := range a.Transforms {
		t, err := unmarshalTransform(raw)
		if err != nil {
			return err
		}
		c.Transforms = append(c.Transforms, t)
	}
	return nil
}

func unmarshalTransform(raw json.RawMessage) (Transform, error) {
	var env transformEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case TransformTypeMapToArray:
		var t MapToArray
		return t, json.Unmarshal(raw, &t)
	case TransformTypeJSONStringParse:
		var t JSONStringParse
		return t, json.Unmarshal(raw, &t)
	case TransformTypeNullableOptional:
		var t NullableOptional
		return t, json.Unmarshal(raw, &t)
	case TransformTypeExtractAdditionalProperties:
		var t ExtractAdditionalProperties
		return t, json.Unmarshal(raw, &t)
	case TransformTypeRecursiveInflate:
		var t RecursiveInflate
		return t, json.Unmarshal(raw, &t)
	case TransformTypeRootObjectWrapper:
		var t RootObjectWrapper
		return t, json.Unmarshal(raw, &t)
	case TransformTypeEnumStringify:
		var t EnumStringify
		return t, json.Unmarshal(raw, &t)
	case TransformTypeDiscriminatorAnyOf:
		var t DiscriminatorAnyOf
		return t, json.Unmarshal(raw, &t)
	default:
		return nil, fmt.Errorf("codec: unknown transform type %q", env.Type)
	}
}
