package jsonschemallm

import "sort"

// strictPass is P6: seals every object node (and every implicit object — a
// node with properties but no type) with additionalProperties:false and
// required=all keys, wrapping optional properties as nullable, per spec
// §4.8. Grounded on original_source's pass_utils.rs (wrap_nullable,
// enforce_object_strict, is_implicit_object).
//
// Per spec §4.8 ("only runs at full strength when target=OpenAI-strict and
// mode=strict"), this pass is a full no-op for every other
// target/mode combination (DESIGN.md open-question decision).
type strictPass struct {
	opts  ConvertOptions
	codec *Codec
}

func newStrictPass(opts ConvertOptions, codec *Codec) *strictPass {
	return &strictPass{opts: opts, codec: codec}
}

func (p *strictPass) run(schema any) (any, error) {
	if p.opts.Target != TargetOpenAIStrict || p.opts.Mode != ModeStrict {
		return schema, nil
	}
	return p.processAt(schema, "#", 0)
}

func (p *strictPass) processAt(node any, path string, depth int) (any, error) {
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

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	if isObjectNode(out) {
		sealed, err := p.sealObject(out, path)
		if err != nil {
			return nil, err
		}
		out = sealed
	}

	return recurseIntoChildren(out, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}

// isObjectNode reports whether node should be treated as a strict-mode
// object target: explicitly typed "object", or implicitly one (it has a
// properties map but no type at all). A bare "required" with no
// "properties" does NOT count as implicit, matching
// original_source's is_implicit_object.
func isObjectNode(obj map[string]any) bool {
	types := asTypeSlice(obj["type"])
	if containsString(types, "object") {
		return true
	}
	if _, hasType := obj["type"]; hasType {
		return false
	}
	_, hasProps := obj["properties"]
	return hasProps
}

func (p *strictPass) sealObject(obj map[string]any, path string) (map[string]any, error) {
	obj["type"] = []any{"object"}

	props, _ := obj["properties"].(map[string]any)
	if props == nil {
		props = map[string]any{}
	}

	originalRequired := map[string]bool{}
	if req, ok := obj["required"].([]any); ok {
		for _, v := range req {
			if s, ok := v.(string); ok {
				originalRequired[s] = true
			}
		}
	}

	newProps := make(map[string]any, len(props))
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	// map[string]any has no insertion order to preserve; sort for
	// deterministic, reproducible codec/schema output (DESIGN.md open
	// question decision).
	sort.Strings(keys)

	for _, key := range keys {
		schema := props[key]
		wasRequired := originalRequired[key]
		newProps[key] = p.wrapOptionalIfNeeded(schema, wasRequired, path+"/properties/"+key)
	}

	obj["properties"] = newProps
	obj["required"] = stringKeysAsAny(keys)
	obj["additionalProperties"] = false
	delete(obj, "unevaluatedProperties")

	return obj, nil
}

// wrapOptionalIfNeeded wraps an optional property's schema as
// anyOf:[<original>, {type:"null"}] unless it is already nullable, and
// always emits a NullableOptional codec entry so the rehydrator knows to
// strip null at this path regardless of whether a physical wrap occurred.
func (p *strictPass) wrapOptionalIfNeeded(schema any, wasRequired bool, path string) any {
	if wasRequired {
		return schema
	}

	p.codec.addTransform(NullableOptional{Path: path, OriginalRequired: false})

	if isAlreadyNullable(schema) {
		return schema
	}

	obj, _ := schema.(map[string]any)
	wrapped := map[string]any{"anyOf": []any{schema, map[string]any{"type": "null"}}}
	if obj != nil {
		if desc, ok := obj["description"]; ok {
			wrapped["description"] = desc
		}
		if title, ok := obj["title"]; ok {
			wrapped["title"] = title
		}
	}
	return wrapped
}

func isAlreadyNullable(schema any) bool {
	obj, ok := schema.(map[string]any)
	if !ok {
		return false
	}
	if types := asTypeSlice(obj["type"]); containsString(types, "null") {
		return true
	}
	if anyOf, ok := obj["anyOf"].([]any); ok {
		for _, v := range anyOf {
			if vm, ok := v.(map[string]any); ok {
				if containsString(asTypeSlice(vm["type"]), "null") {
					return true
				}
			}
		}
	}
	return false
}

func stringKeysAsAny(keys []string) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
