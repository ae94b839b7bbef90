package jsonschemallm

import (
	"encoding/json"
	"sort"

	"github.com/dotslashderek/jsonschema-llm/internal/canon"
)

// compositionPass is P1: flattens allOf into the intersection of its
// members with the surrounding object, per spec §4.3. Grounded on the
// teacher's schemaprofile/allof.go (flattenAllOf/mergeAllOfBranch), with
// the narrow compatibility-profile keyword restriction lifted since this
// pipeline handles the full JSON Schema keyword set.
type compositionPass struct {
	opts ConvertOptions
}

func newCompositionPass(opts ConvertOptions) *compositionPass { return &compositionPass{opts: opts} }

func (p *compositionPass) run(schema any) (any, error) {
	return p.processAt(schema, "#", 0)
}

func (p *compositionPass) processAt(node any, path string, depth int) (any, error) {
	if depth > p.opts.MaxDepth {
		return nil, newRecursionDepthExceededError(path, p.opts.MaxDepth)
	}
	if _, ok := node.(bool); ok {
		return node, nil
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return node, nil
	}

	if allOf, hasAllOf := obj["allOf"]; hasAllOf {
		merged, err := p.flattenAllOf(obj, allOf, path)
		if err != nil {
			return nil, err
		}
		return p.processAt(merged, path, depth+1)
	}

	return recurseIntoChildren(obj, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}

// flattenAllOf merges every allOf branch, plus any sibling keywords present
// alongside allOf on the same node, into a single accumulator.
func (p *compositionPass) flattenAllOf(node map[string]any, allOf any, path string) (map[string]any, error) {
	arr, ok := allOf.([]any)
	if !ok {
		return nil, newSchemaError(path, "allOf must be an array")
	}

	acc := map[string]any{}
	for k, v := range node {
		if k == "allOf" {
			continue
		}
		acc[k] = v
	}
	hadSiblings := len(acc) > 0

	branches := make([]map[string]any, 0, len(arr)+1)
	if hadSiblings {
		branches = append(branches, acc)
		acc = map[string]any{}
	}
	for idx, item := range arr {
		branch, ok := item.(map[string]any)
		if !ok {
			return nil, newSchemaError(path, "allOf[%d] must be an object", idx)
		}
		branches = append(branches, branch)
	}

	for _, branch := range branches {
		if err := mergeAllOfBranch(acc, branch, path); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func mergeAllOfBranch(acc, branch map[string]any, path string) error {
	if bt, ok := branch["type"]; ok {
		bTypes := asTypeSlice(bt)
		if at, ok := acc["type"]; ok {
			aTypes := asTypeSlice(at)
			inter := intersectTypeSlices(aTypes, bTypes)
			if len(inter) == 0 {
				return newSchemaError(path, "allOf type intersection is empty")
			}
			acc["type"] = inter
		} else {
			acc["type"] = bTypes
		}
	}

	if bp, ok := branch["properties"].(map[string]any); ok {
		aProps, _ := acc["properties"].(map[string]any)
		if aProps == nil {
			aProps = map[string]any{}
		} else {
			clone := make(map[string]any, len(aProps))
			for k, v := range aProps {
				clone[k] = v
			}
			aProps = clone
		}
		for k, bv := range bp {
			if av, exists := aProps[k]; exists {
				avm, _ := av.(map[string]any)
				bvm, _ := bv.(map[string]any)
				if avm == nil {
					avm = map[string]any{}
				}
				if bvm == nil {
					bvm = map[string]any{}
				}
				merged := make(map[string]any, len(avm))
				for k2, v2 := range avm {
					merged[k2] = v2
				}
				if err := mergeAllOfBranch(merged, bvm, path+"/properties/"+k); err != nil {
					return err
				}
				aProps[k] = merged
			} else {
				aProps[k] = bv
			}
		}
		acc["properties"] = aProps
	}

	if br, ok := branch["required"]; ok {
		bReq := asStringSlice(br)
		if ar, ok := acc["required"]; ok {
			acc["required"] = unionStrings(asStringSlice(ar), bReq)
		} else {
			acc["required"] = bReq
		}
	}

	if bap, ok := branch["additionalProperties"]; ok {
		switch bv := bap.(type) {
		case bool:
			if !bv {
				acc["additionalProperties"] = false
			} else if _, exists := acc["additionalProperties"]; !exists {
				acc["additionalProperties"] = true
			}
		case map[string]any:
			if aap, exists := acc["additionalProperties"]; exists {
				switch av := aap.(type) {
				case bool:
					if !av {
						// false wins, keep it
					} else {
						acc["additionalProperties"] = bv
					}
				case map[string]any:
					merged := make(map[string]any, len(av))
					for k, v := range av {
						merged[k] = v
					}
					if err := mergeAllOfBranch(merged, bv, path+"/additionalProperties"); err != nil {
						return err
					}
					acc["additionalProperties"] = merged
				}
			} else {
				acc["additionalProperties"] = bv
			}
		}
	}

	if be, ok := branch["enum"].([]any); ok {
		if ae, ok := acc["enum"].([]any); ok {
			inter := intersectEnumValues(ae, be)
			if len(inter) == 0 {
				return newSchemaError(path, "allOf enum intersection is empty")
			}
			acc["enum"] = inter
		} else {
			acc["enum"] = be
		}
	}

	if bc, ok := branch["const"]; ok {
		if ac, ok := acc["const"]; ok {
			if canonKey(ac) != canonKey(bc) {
				return newSchemaError(path, "allOf const conflict")
			}
		} else {
			acc["const"] = bc
		}
	}

	if bi, ok := branch["items"].(map[string]any); ok {
		if ai, ok := acc["items"].(map[string]any); ok {
			merged := make(map[string]any, len(ai))
			for k, v := range ai {
				merged[k] = v
			}
			if err := mergeAllOfBranch(merged, bi, path+"/items"); err != nil {
				return err
			}
			acc["items"] = merged
		} else {
			acc["items"] = bi
		}
	}

	for _, k := range []string{"minimum", "exclusiveMinimum", "minLength", "minItems", "minProperties"} {
		if bv, ok := branch[k]; ok {
			if av, ok := acc[k]; ok {
				if toFloat(bv) > toFloat(av) {
					acc[k] = bv
				}
			} else {
				acc[k] = bv
			}
		}
	}
	for _, k := range []string{"maximum", "exclusiveMaximum", "maxLength", "maxItems", "maxProperties"} {
		if bv, ok := branch[k]; ok {
			if av, ok := acc[k]; ok {
				if toFloat(bv) < toFloat(av) {
					acc[k] = bv
				}
			} else {
				acc[k] = bv
			}
		}
	}

	for k, v := range branch {
		switch k {
		case "type", "properties", "required", "additionalProperties", "enum", "const", "items",
			"minimum", "exclusiveMinimum", "minLength", "minItems", "minProperties",
			"maximum", "exclusiveMaximum", "maxLength", "maxItems", "maxProperties":
			continue
		default:
			if _, exists := acc[k]; !exists {
				acc[k] = v
			}
		}
	}

	return nil
}

func asTypeSlice(v any) []any {
	switch x := v.(type) {
	case string:
		return []any{x}
	case []any:
		return x
	default:
		return nil
	}
}

func asStringSlice(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return nil
}

// intersectTypeSlices computes the intersection of two JSON Schema type
// sets, treating "integer" as a subtype of "number" (teacher's
// intersectTypeSlices in allof.go).
func intersectTypeSlices(a, b []any) []any {
	aSet := map[string]bool{}
	for _, v := range a {
		if s, ok := v.(string); ok {
			aSet[s] = true
		}
	}
	bSet := map[string]bool{}
	for _, v := range b {
		if s, ok := v.(string); ok {
			bSet[s] = true
		}
	}

	result := map[string]bool{}
	for s := range aSet {
		if s == "number" || s == "integer" {
			continue
		}
		if bSet[s] {
			result[s] = true
		}
	}

	aNum, bNum := aSet["number"], bSet["number"]
	aInt, bInt := aSet["integer"], bSet["integer"]
	aAcceptsNumeric := aNum || aInt
	bAcceptsNumeric := bNum || bInt
	if aAcceptsNumeric && bAcceptsNumeric {
		if aNum && bNum {
			result["number"] = true
		} else {
			result["integer"] = true
		}
	}

	out := make([]any, 0, len(result))
	for s := range result {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].(string) < out[j].(string) })
	return out
}

func unionStrings(a, b []any) []any {
	set := map[string]bool{}
	for _, v := range a {
		if s, ok := v.(string); ok {
			set[s] = true
		}
	}
	for _, v := range b {
		if s, ok := v.(string); ok {
			set[s] = true
		}
	}
	out := make([]any, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].(string) < out[j].(string) })
	return out
}

func intersectEnumValues(a, b []any) []any {
	bSet := map[string]bool{}
	for _, v := range b {
		bSet[canonKey(v)] = true
	}
	var out []any
	for _, v := range a {
		if bSet[canonKey(v)] {
			out = append(out, v)
		}
	}
	return out
}

func canonKey(v any) string {
	b, err := canon.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	default:
		return 0
	}
}
