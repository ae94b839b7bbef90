package jsonschemallm

// opaquePass is P4: replaces structurally meaningless schemas ({}, true,
// an object with no properties and no additionalProperties:Schema) with an
// opaque string placeholder, per spec §4.6.
//
// The exact rendered hint text is an implementer decision (spec §9, open
// question i) grounded in the register of original_source's
// p8_adaptive_opaque.rs description conventions.
type opaquePass struct {
	opts  ConvertOptions
	codec *Codec
}

func newOpaquePass(opts ConvertOptions, codec *Codec) *opaquePass {
	return &opaquePass{opts: opts, codec: codec}
}

func (p *opaquePass) run(schema any) (any, error) {
	return p.processAt(schema, "#", 0)
}

func (p *opaquePass) processAt(node any, path string, depth int) (any, error) {
	if depth > p.opts.MaxDepth {
		return nil, newRecursionDepthExceededError(path, p.opts.MaxDepth)
	}

	if isUnconstrainedSchema(node) {
		return p.replaceWithOpaque(node, path), nil
	}

	obj, ok := node.(map[string]any)
	if !ok {
		return node, nil
	}

	return recurseIntoChildren(obj, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}

// isUnconstrainedSchema reports whether node is structurally meaningless:
// the boolean true schema, an empty object, an object explicitly typed
// "any" (no type restriction and no constraining keywords), or a typed
// object with neither properties nor a schema-valued additionalProperties.
func isUnconstrainedSchema(node any) bool {
	if b, ok := node.(bool); ok {
		return b
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return false
	}
	if len(obj) == 0 {
		return true
	}
	if _, hasRef := obj["$ref"]; hasRef {
		// A surviving $ref is P0's recursive-cycle marker, reserved for P5 to
		// inline or collapse; it is meaningful structure, not an opaque leaf.
		return false
	}

	types := asTypeSlice(obj["type"])
	isObjectTyped := len(types) == 0 || containsString(types, "object") || containsString(types, "any")
	if !isObjectTyped {
		return false
	}

	props, hasProps := obj["properties"].(map[string]any)
	_, apIsSchema := obj["additionalProperties"].(map[string]any)
	if (hasProps && len(props) > 0) || apIsSchema {
		return false
	}

	// An object node that constrains via required/patternProperties/etc.
	// still carries structure worth preserving; only treat as opaque when
	// no other schema-bearing keyword is present either.
	for kw := range mapOfSchemasKeywords {
		if _, ok := obj[kw]; ok {
			return false
		}
	}
	for kw := range singleSchemaKeywords {
		if kw == "additionalProperties" {
			continue
		}
		if _, ok := obj[kw]; ok {
			return false
		}
	}
	for kw := range arrayOfSchemasKeywords {
		if _, ok := obj[kw]; ok {
			return false
		}
	}
	if _, ok := obj["enum"]; ok {
		return false
	}
	if _, ok := obj["const"]; ok {
		return false
	}

	return true
}

func (p *opaquePass) replaceWithOpaque(node any, path string) map[string]any {
	hint := renderStructuralHint(node)
	out := map[string]any{
		"type":        "string",
		"description": hint,
	}
	if obj, ok := node.(map[string]any); ok {
		if desc, ok := obj["description"].(string); ok && desc != "" {
			out["description"] = desc + " " + hint
		}
		if title, ok := obj["title"]; ok {
			out["title"] = title
		}
	}
	p.codec.addTransform(JSONStringParse{Path: path})
	return out
}

// renderStructuralHint produces a short human-readable note describing what
// the opaque string placeholder stands in for, so a provider's generation
// has something to anchor on beyond "a string".
func renderStructuralHint(node any) string {
	if b, ok := node.(bool); ok && b {
		return "Arbitrary JSON value, encoded as a JSON string."
	}
	obj, ok := node.(map[string]any)
	if !ok || len(obj) == 0 {
		return "Arbitrary JSON value, encoded as a JSON string."
	}
	if types := asTypeSlice(obj["type"]); containsString(types, "object") {
		return "An arbitrary JSON object, encoded as a JSON string."
	}
	return "Arbitrary JSON value, encoded as a JSON string."
}
