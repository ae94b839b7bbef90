package rehydrate

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschemallm "github.com/dotslashderek/jsonschema-llm"
)

// executeTransform applies one transform at its terminal data node, per
// spec §4.12 step 2. Grounded on original_source's
// rehydrator/transforms.rs execute_transform and its per-transform restore
// functions.
func executeTransform(data any, t jsonschemallm.Transform) (any, []Warning, error) {
	switch tt := t.(type) {
	case jsonschemallm.MapToArray:
		return restoreMap(data, tt.KeyField), nil, nil
	case jsonschemallm.JSONStringParse:
		v, err := parseJSONString(data, tt.Path)
		return v, nil, err
	case jsonschemallm.RecursiveInflate:
		v, err := parseJSONString(data, tt.Path)
		return v, nil, err
	case jsonschemallm.ExtractAdditionalProperties:
		return restoreAdditionalProperties(data, tt.PropertyName), nil, nil
	case jsonschemallm.NullableOptional:
		return data, nil, nil // handled during navigation, at the final "properties/<key>" hop
	case jsonschemallm.DiscriminatorAnyOf:
		return data, nil, nil // reserved, no data mutation (spec §9 open question ii)
	case jsonschemallm.RootObjectWrapper:
		return unwrapRootObject(data, tt.Path, tt.WrapperKey)
	case jsonschemallm.EnumStringify:
		return reverseEnumStringify(data, tt.OriginalValues), nil, nil
	default:
		return data, nil, nil
	}
}

// restoreMap turns an array of {keyField, value} pairs back into an
// object. Any malformed entry (not an object, missing keyField as a
// string, or missing "value") aborts the whole restore and preserves the
// original array, per spec §4.12 step 2.
func restoreMap(data any, keyField string) any {
	arr, ok := data.([]any)
	if !ok {
		return data
	}
	out := make(map[string]any, len(arr))
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			return data
		}
		k, ok := obj[keyField].(string)
		if !ok {
			return data
		}
		v, present := obj["value"]
		if !present {
			return data
		}
		out[k] = v // duplicate keys: last wins
	}
	return out
}

// parseJSONString parses a stringified JSON value back into Go's generic
// representation, using json.Number so numeric fidelity survives the
// roundtrip.
func parseJSONString(data any, path string) (any, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		preview := s
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return nil, &jsonschemallm.ConvertError{
			Code:    jsonschemallm.ErrorCodeRehydrationError,
			Path:    path,
			Message: fmt.Sprintf("failed to parse JSON string (%s): %s...", err, preview),
		}
	}
	return parsed, nil
}

// restoreAdditionalProperties splices propertyName's (already-restored)
// object entries back into the parent and drops the synthetic key. If
// propertyName is missing or not an object, it is left untouched: the
// transform is skipped silently rather than dropping data.
func restoreAdditionalProperties(data any, propertyName string) any {
	obj, ok := data.(map[string]any)
	if !ok {
		return data
	}
	extra, ok := obj[propertyName].(map[string]any)
	if !ok {
		return data
	}
	out := make(map[string]any, len(obj)+len(extra))
	for k, v := range obj {
		if k == propertyName {
			continue
		}
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// unwrapRootObject extracts data[wrapperKey] and promotes it to the root.
// Missing wrapper key is fatal (malformed LLM output); extra sibling keys
// are stripped with an advisory warning rather than failing, since the
// wrapped data is still usable. Grounded on original_source's
// rehydrator/transforms.rs root-wrapper unwrap, including its
// strip-extra-keys-with-a-warning behavior.
func unwrapRootObject(data any, path, wrapperKey string) (any, []Warning, error) {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, nil, &jsonschemallm.ConvertError{
			Code:    jsonschemallm.ErrorCodeRehydrationError,
			Message: fmt.Sprintf("expected root object with wrapper key %q but found non-object value", wrapperKey),
		}
	}
	inner, present := obj[wrapperKey]
	if !present {
		return nil, nil, &jsonschemallm.ConvertError{
			Code:    jsonschemallm.ErrorCodeRehydrationError,
			Message: fmt.Sprintf("expected wrapper key %q at root object but it was missing", wrapperKey),
		}
	}
	if len(obj) > 1 {
		extras := make([]string, 0, len(obj)-1)
		for k := range obj {
			if k != wrapperKey {
				extras = append(extras, k)
			}
		}
		return inner, []Warning{{
			DataPath:   path,
			SchemaPath: path,
			Kind:       WarningConstraintUnevaluable,
			Message:    fmt.Sprintf("dropped unexpected sibling key(s) alongside root wrapper %q: %v", wrapperKey, extras),
		}}, nil
	}
	return inner, nil, nil
}

// reverseEnumStringify matches a stringified enum value back to its
// original typed value. No match leaves the string as-is.
func reverseEnumStringify(data any, originalValues []any) any {
	s, ok := data.(string)
	if !ok {
		return data
	}
	for _, orig := range originalValues {
		if stringifiedMatches(orig, s) {
			return orig
		}
	}
	return data
}

func stringifiedMatches(orig any, s string) bool {
	switch o := orig.(type) {
	case string:
		return o == s
	case nil:
		return s == "null"
	case bool:
		if o {
			return s == "true"
		}
		return s == "false"
	default:
		b, err := json.Marshal(orig)
		if err != nil {
			return false
		}
		return string(b) == s
	}
}
