package jsonschemallm

// polymorphismPass is P2: rewrites oneOf to anyOf, per spec §4.4. Grounded
// on original_source's p2_polymorphism.rs (rename_oneof_to_anyof, including
// its collision-wrap-into-allOf behavior).
type polymorphismPass struct {
	opts ConvertOptions
}

func newPolymorphismPass(opts ConvertOptions) *polymorphismPass {
	return &polymorphismPass{opts: opts}
}

func (p *polymorphismPass) run(schema any) (any, error) {
	if p.opts.Target == TargetGemini {
		return schema, nil // Gemini supports oneOf natively.
	}
	if p.opts.Polymorphism == PolymorphismFlatten {
		return nil, newUnsupportedFeatureError("#", "polymorphism=flatten")
	}
	return p.processAt(schema, "#", 0)
}

func (p *polymorphismPass) processAt(node any, path string, depth int) (any, error) {
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

	oneOf, hasOneOf := out["oneOf"]
	anyOf, hasAnyOf := out["anyOf"]

	switch {
	case hasOneOf && hasAnyOf:
		delete(out, "oneOf")
		wrapped := []any{
			map[string]any{"anyOf": oneOf},
			map[string]any{"anyOf": anyOf},
		}
		delete(out, "anyOf")
		if existingAllOf, ok := out["allOf"].([]any); ok {
			wrapped = append(append([]any{}, existingAllOf...), wrapped...)
		}
		out["allOf"] = wrapped
	case hasOneOf:
		delete(out, "oneOf")
		out["anyOf"] = oneOf
	}

	return recurseIntoChildren(out, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}
