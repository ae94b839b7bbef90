package jsonschemallm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// adaptivePass is P8: stringifies constructs the provider will technically
// accept but tends to generate unreliably, per spec §4.10. Grounded on
// original_source's p8_adaptive_opaque.rs, including its test-pinned
// description text conventions ("(fixed length)", "One of: [...]").
//
// Runs only when target=OpenAI-strict and mode=strict (same gate as P6).
type adaptivePass struct {
	opts  ConvertOptions
	codec *Codec
}

func newAdaptivePass(opts ConvertOptions, codec *Codec) *adaptivePass {
	return &adaptivePass{opts: opts, codec: codec}
}

func (p *adaptivePass) run(schema any) (any, error) {
	if p.opts.Target != TargetOpenAIStrict || p.opts.Mode != ModeStrict {
		return schema, nil
	}
	return p.processAt(schema, "#", 0)
}

func (p *adaptivePass) processAt(node any, path string, depth int) (any, error) {
	if depth > p.opts.MaxDepth {
		return nil, newRecursionDepthExceededError(path, p.opts.MaxDepth)
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return node, nil
	}

	if hint, ok := unreliablePrefixItemsHint(obj); ok {
		return p.replaceOpaque(path, hint), nil
	}
	if hint, ok := unreliableEnumHint(obj); ok {
		return p.replaceOpaque(path, hint), nil
	}

	return recurseIntoChildren(obj, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}

func (p *adaptivePass) replaceOpaque(path, hint string) map[string]any {
	p.codec.addTransform(JSONStringParse{Path: path})
	return map[string]any{"type": "string", "description": hint}
}

// unreliablePrefixItemsHint reports whether node is a closed tuple
// (prefixItems with items:false), a mixed-type open tuple (a prefixItems
// entry's type disagrees with the uniform items type), or a
// contains-bearing array.
func unreliablePrefixItemsHint(obj map[string]any) (string, bool) {
	if _, ok := obj["contains"]; ok {
		return "An array with a containment constraint, encoded as a JSON string.", true
	}

	prefixItems, ok := obj["prefixItems"].([]any)
	if !ok {
		return "", false
	}

	if itemsVal, hasItems := obj["items"]; hasItems {
		if b, ok := itemsVal.(bool); ok && !b {
			return fmt.Sprintf("A tuple of %d elements (fixed length), encoded as a JSON string.", len(prefixItems)), true
		}
		if itemsSchema, ok := itemsVal.(map[string]any); ok {
			uniformType := asTypeSlice(itemsSchema["type"])
			for _, pfx := range prefixItems {
				pm, ok := pfx.(map[string]any)
				if !ok {
					continue
				}
				pfxType := asTypeSlice(pm["type"])
				if len(pfxType) > 0 && len(uniformType) > 0 && !typeSlicesOverlap(pfxType, uniformType) {
					return "A tuple with mixed element types, encoded as a JSON string.", true
				}
			}
		}
	}

	return "", false
}

func typeSlicesOverlap(a, b []any) bool {
	for _, v := range a {
		if s, ok := v.(string); ok && containsString(b, s) {
			return true
		}
	}
	return false
}

// unreliableEnumHint reports whether node's enum contains an object or null
// value, and if so renders the "One of: [...]" description convention.
func unreliableEnumHint(obj map[string]any) (string, bool) {
	enum, ok := obj["enum"].([]any)
	if !ok {
		return "", false
	}
	hasUnreliable := false
	for _, v := range enum {
		if v == nil {
			hasUnreliable = true
			break
		}
		if _, ok := v.(map[string]any); ok {
			hasUnreliable = true
			break
		}
	}
	if !hasUnreliable {
		return "", false
	}

	parts := make([]string, len(enum))
	for i, v := range enum {
		b, err := json.Marshal(v)
		if err != nil {
			b = []byte("null")
		}
		parts[i] = string(b)
	}
	return fmt.Sprintf("One of: [%s]", strings.Join(parts, ", ")), true
}
