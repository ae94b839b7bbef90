package rehydrate

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dotslashderek/jsonschema-llm/internal/pointer"
)

// coerceTypes walks data in parallel with the original schema (after all
// transforms have been applied) and fixes safe, lossless type mismatches
// the LLM may have produced, per spec §4.12 step 3. Grounded on
// original_source's rehydrator/coercion.rs coerce_types/coerce_walk/
// try_coerce.
func coerceTypes(data any, schema any) (any, []Warning) {
	var warnings []Warning
	out := coerceWalk(data, schema, "#", &warnings)
	return out, warnings
}

func coerceWalk(data any, schema any, path string, warnings *[]Warning) any {
	schemaObj, ok := schema.(map[string]any)
	if !ok {
		return data
	}

	expected := schemaTypeNames(schemaObj["type"])

	if data == nil && containsStr(expected, "null") {
		return data
	}

	if len(expected) > 0 {
		if coerced, msg, ok := tryCoerce(data, expected); ok {
			*warnings = append(*warnings, Warning{
				DataPath:   path,
				SchemaPath: path,
				Kind:       WarningConstraintViolation,
				Constraint: "type",
				Message:    msg,
			})
			data = coerced
		}
	}

	_, hasProps := schemaObj["properties"]
	if containsStr(expected, "object") || hasProps {
		if dataObj, ok := data.(map[string]any); ok {
			if props, ok := schemaObj["properties"].(map[string]any); ok {
				out := make(map[string]any, len(dataObj))
				for k, v := range dataObj {
					out[k] = v
				}
				for k, v := range dataObj {
					if propSchema, ok := props[k]; ok {
						childPath := path + "/" + pointer.Escape(k)
						out[k] = coerceWalk(v, propSchema, childPath, warnings)
					}
				}
				data = out
			}
		}
	}

	_, hasItems := schemaObj["items"]
	_, hasPrefix := schemaObj["prefixItems"]
	if containsStr(expected, "array") || hasItems || hasPrefix {
		if dataArr, ok := data.([]any); ok {
			prefixItems, _ := schemaObj["prefixItems"].([]any)
			itemsSchema := schemaObj["items"]
			out := make([]any, len(dataArr))
			for i, item := range dataArr {
				childPath := fmt.Sprintf("%s/%d", path, i)
				if prefixItems != nil && i < len(prefixItems) {
					out[i] = coerceWalk(item, prefixItems[i], childPath, warnings)
				} else if itemsSchema != nil {
					out[i] = coerceWalk(item, itemsSchema, childPath, warnings)
				} else {
					out[i] = item
				}
			}
			data = out
		}
	}

	for _, kw := range []string{"anyOf", "oneOf"} {
		variants, ok := schemaObj[kw].([]any)
		if !ok {
			continue
		}
		dataType := jsonTypeName(data)
		for _, v := range variants {
			vm, ok := v.(map[string]any)
			if !ok {
				continue
			}
			variantTypes := schemaTypeNames(vm["type"])
			if containsStr(variantTypes, dataType) || (dataType == "integer" && containsStr(variantTypes, "number")) {
				data = coerceWalk(data, vm, path, warnings)
				break
			}
		}
	}

	return data
}

// tryCoerce attempts to coerce value to one of expected's types. Returns
// the coerced value, a human-readable message, and true if a coercion was
// applied.
func tryCoerce(value any, expected []string) (any, string, bool) {
	actual := jsonTypeName(value)
	if containsStr(expected, actual) || (actual == "integer" && containsStr(expected, "number")) {
		return value, "", false
	}

	for _, want := range expected {
		switch want {
		case "string":
			switch v := value.(type) {
			case json.Number:
				s := v.String()
				return s, fmt.Sprintf("coerced number %s to string %q", s, s), true
			case float64:
				s := strconv.FormatFloat(v, 'g', -1, 64)
				return s, fmt.Sprintf("coerced number %s to string %q", s, s), true
			case bool:
				s := strconv.FormatBool(v)
				return s, fmt.Sprintf("coerced boolean %t to string %q", v, s), true
			}
		case "integer":
			if s, ok := value.(string); ok {
				if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
					return json.Number(s), fmt.Sprintf("coerced string %q to integer %d", s, n), true
				}
			}
		case "number":
			if s, ok := value.(string); ok {
				if n, err := strconv.ParseFloat(s, 64); err == nil {
					if roundtripped, err2 := strconv.ParseFloat(strconv.FormatFloat(n, 'g', -1, 64), 64); err2 == nil && roundtripped == n {
						return json.Number(s), fmt.Sprintf("coerced string %q to number %s", s, s), true
					}
				}
			}
		case "boolean":
			if s, ok := value.(string); ok {
				switch s {
				case "true":
					return true, "coerced string \"true\" to boolean true", true
				case "false":
					return false, "coerced string \"false\" to boolean false", true
				}
			}
		}
	}
	return value, "", false
}

// jsonTypeName returns the JSON Schema type name for a decoded value.
// Numbers decoded via json.Number (the UseNumber() boundary this module
// expects) are classified "integer" when they carry no fractional/exponent
// part, matching the original's Number::is_i64()/is_u64() check.
func jsonTypeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return "integer"
		}
		return "number"
	case float64:
		if x == float64(int64(x)) {
			return "integer"
		}
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "object"
	}
}

func schemaTypeNames(v any) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func containsStr(arr []string, s string) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
