package jsonschemallm

import (
	"strconv"

	"github.com/dotslashderek/jsonschema-llm/internal/pointer"
)

// Keyword categories per spec §4.1. This table is the single source of
// truth for which keywords bear nested schemas; adding a new keyword is a
// one-place change, mirroring original_source's recurse_into_children and
// the teacher's own (narrower, hand-written) recursion in
// schemaprofile.normalizeAt.
var (
	mapOfSchemasKeywords = map[string]bool{
		"properties":        true,
		"patternProperties": true,
		"$defs":             true,
		"definitions":       true,
		"dependentSchemas":  true,
	}

	singleSchemaKeywords = map[string]bool{
		"additionalProperties":  true,
		"unevaluatedProperties": true,
		"propertyNames":         true,
		"unevaluatedItems":      true,
		"contains":              true,
		"not":                   true,
		"if":                    true,
		"then":                  true,
		"else":                  true,
		"additionalItems":       true,
	}

	arrayOfSchemasKeywords = map[string]bool{
		"anyOf":       true,
		"oneOf":       true,
		"allOf":       true,
		"prefixItems": true,
	}
)

// VisitFunc processes one schema-bearing child node and returns its
// replacement. Returning the node unchanged is a valid "continue"; passes
// that want to stop descent into a subtree simply don't recurse inside
// their own VisitFunc implementation (there's no separate Replace marker —
// Go idiom here is a plain function return, not a tagged Continue/Replace
// like the Rust original, since passes already control their own
// recursion).
type VisitFunc func(node any, path string) (any, error)

// recurseIntoChildren applies visit to every schema-bearing child of node
// (which must already have been processed by the caller at its own level)
// according to the keyword category table above, and returns node with
// those children replaced.
//
// node may be any JSON Schema node value; only map[string]any nodes have
// children to recurse into. Boolean schema nodes (true/false) are leaves.
func recurseIntoChildren(node any, path string, visit VisitFunc) (any, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return node, nil
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	for kw := range mapOfSchemasKeywords {
		v, present := out[kw]
		if !present {
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		nm := make(map[string]any, len(m))
		for propKey, propSchema := range m {
			childPath := pointer.Append(pointer.Append(path, kw), propKey)
			nv, err := visit(propSchema, childPath)
			if err != nil {
				return nil, err
			}
			nm[propKey] = nv
		}
		out[kw] = nm
	}

	for kw := range singleSchemaKeywords {
		v, present := out[kw]
		if !present {
			continue
		}
		if b, ok := v.(bool); ok {
			// additionalProperties:false etc. is a leaf, not a schema to descend into.
			out[kw] = b
			continue
		}
		childPath := pointer.Append(path, kw)
		nv, err := visit(v, childPath)
		if err != nil {
			return nil, err
		}
		out[kw] = nv
	}

	for kw := range arrayOfSchemasKeywords {
		v, present := out[kw]
		if !present {
			continue
		}
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		narr := make([]any, len(arr))
		for i, item := range arr {
			childPath := pointer.Append(path, kw) + "/" + strconv.Itoa(i)
			nv, err := visit(item, childPath)
			if err != nil {
				return nil, err
			}
			narr[i] = nv
		}
		out[kw] = narr
	}

	if items, present := out["items"]; present {
		switch x := items.(type) {
		case []any:
			// Draft <= 7 tuple form; P0 normalizes this to prefixItems, but
			// the walker tolerates it for callers that run before P0.
			narr := make([]any, len(x))
			for i, item := range x {
				childPath := pointer.Append(path, "items") + "/" + strconv.Itoa(i)
				nv, err := visit(item, childPath)
				if err != nil {
					return nil, err
				}
				narr[i] = nv
			}
			out["items"] = narr
		case bool:
			out["items"] = x
		default:
			childPath := pointer.Append(path, "items")
			nv, err := visit(items, childPath)
			if err != nil {
				return nil, err
			}
			out["items"] = nv
		}
	}

	return out, nil
}

