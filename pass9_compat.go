package jsonschemallm

// rootWrapperKey names the synthetic property used to wrap a non-object
// root schema into an object, per spec §4.11. Not specified by name in
// spec.md; chosen and kept stable (DESIGN.md open-question decision).
const rootWrapperKey = "result"

// providerDepthLimit is a conservative nesting-depth budget, used by P9's
// soft depth check. Not enumerated in spec.md; derived as a fraction of
// MaxDepth (the hard ceiling already enforced by every pass's processAt),
// since no concrete per-provider numbers are given and the soft budget must
// be strictly tighter than the hard one to ever fire.
func providerDepthLimit(opts ConvertOptions) int {
	limit := (opts.MaxDepth * 4) / 5
	if limit < 1 {
		limit = 1
	}
	return limit
}

// compatPass is P9: the final structural-compatibility gate, per spec
// §4.11. No Rust source for this pass was retrieved; built from spec prose
// plus the sibling passes' walk idiom (see pass5_recursion.go's note).
type compatPass struct {
	opts   ConvertOptions
	codec  *Codec
	errors []*ProviderCompatError
}

func newCompatPass(opts ConvertOptions, codec *Codec) *compatPass {
	return &compatPass{opts: opts, codec: codec}
}

// run returns the (possibly root-wrapped) schema and the accumulated,
// non-fatal ProviderCompatError findings.
func (p *compatPass) run(schema any) (any, []*ProviderCompatError, error) {
	schema, err := p.checkRoot(schema)
	if err != nil {
		return nil, nil, err
	}

	out, err := p.processAt(schema, "#", 0)
	if err != nil {
		return nil, nil, err
	}
	return out, p.errors, nil
}

func (p *compatPass) checkRoot(schema any) (any, error) {
	if p.opts.Target != TargetOpenAIStrict {
		return schema, nil
	}
	obj, ok := schema.(map[string]any)
	if !ok {
		p.errors = append(p.errors, &ProviderCompatError{
			Kind: CompatRootTypeIncompatible, Path: "#", Target: p.opts.Target,
			Hint: "root schema must be an object for OpenAI strict mode",
		})
		return schema, nil
	}
	types := asTypeSlice(obj["type"])
	// Array roots are left as-is: OpenAI's structured-output surface accepts
	// them directly, and wrapping would contradict the pure-map worked
	// example (spec §8.2), which keeps an array root unwrapped. Only scalar
	// roots (string/number/integer/boolean/null) get the synthetic wrapper.
	if containsString(types, "object") || containsString(types, "array") || len(types) == 0 {
		return schema, nil
	}

	p.codec.addTransform(RootObjectWrapper{Path: "#", WrapperKey: rootWrapperKey})
	wrapped := map[string]any{
		"type": []any{"object"},
		"properties": map[string]any{
			rootWrapperKey: obj,
		},
		"required":             []any{rootWrapperKey},
		"additionalProperties": false,
	}
	return wrapped, nil
}

func (p *compatPass) processAt(node any, path string, depth int) (any, error) {
	if depth > p.opts.MaxDepth {
		return nil, newRecursionDepthExceededError(path, p.opts.MaxDepth)
	}

	limit := providerDepthLimit(p.opts)
	if depth > limit {
		p.errors = append(p.errors, &ProviderCompatError{
			Kind: CompatDepthBudgetExceeded, Path: path, Target: p.opts.Target,
			Hint: "nesting depth exceeds provider budget", Limit: limit, Actual: depth,
		})
	}

	obj, ok := node.(map[string]any)
	if !ok {
		return node, nil
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = v
	}

	if enum, ok := out["enum"].([]any); ok {
		if isMixedTypeEnum(enum) {
			out["enum"] = stringifyEnumValues(enum)
			p.codec.addTransform(EnumStringify{Path: path, OriginalValues: enum})
			p.errors = append(p.errors, &ProviderCompatError{
				Kind: CompatMixedEnumTypes, Path: path, Target: p.opts.Target,
				Hint: "heterogeneous enum values were stringified",
			})
		}
	}

	if pp, ok := out["patternProperties"].(map[string]any); ok {
		_, hasProps := out["properties"]
		types := asTypeSlice(out["type"])
		isTyped := containsString(types, "object") || hasProps
		if isTyped {
			for kw := range pp {
				p.codec.addDropped(DroppedConstraint{Path: path + "/patternProperties", Constraint: "patternProperties", Value: kw})
			}
			delete(out, "patternProperties")
			p.errors = append(p.errors, &ProviderCompatError{
				Kind: CompatPatternPropertiesStripped, Path: path, Target: p.opts.Target,
				Hint: "patternProperties stripped from typed object",
			})
		} else {
			p.codec.addTransform(JSONStringParse{Path: path})
			p.errors = append(p.errors, &ProviderCompatError{
				Kind: CompatPatternPropertiesStringified, Path: path, Target: p.opts.Target,
				Hint: "pattern-only schema fully stringified",
			})
			return map[string]any{
				"type":        "string",
				"description": "An object matched only by key pattern, encoded as a JSON string.",
			}, nil
		}
	}

	if isUnconstrainedLeaf(out) {
		p.errors = append(p.errors, &ProviderCompatError{
			Kind: CompatUnconstrainedSchema, Path: path, Target: p.opts.Target,
			Hint: "leaf schema has no effective constraints",
		})
	}

	return recurseIntoChildren(out, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}

func isMixedTypeEnum(enum []any) bool {
	kinds := map[string]bool{}
	for _, v := range enum {
		kinds[jsonKindOf(v)] = true
	}
	return len(kinds) > 1
}

func jsonKindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case float64, int, int64:
		return "number"
	default:
		return "other"
	}
}

func stringifyEnumValues(enum []any) []any {
	out := make([]any, len(enum))
	for i, v := range enum {
		out[i] = stringifyScalar(v)
	}
	return out
}

func stringifyScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return canonKey(v)
	}
}

// isUnconstrainedLeaf flags a node that, after all prior passes, carries no
// effective constraint: no type, no enum/const, and no schema-bearing
// keyword.
func isUnconstrainedLeaf(obj map[string]any) bool {
	if _, ok := obj["type"]; ok {
		return false
	}
	if _, ok := obj["enum"]; ok {
		return false
	}
	if _, ok := obj["const"]; ok {
		return false
	}
	for kw := range mapOfSchemasKeywords {
		if _, ok := obj[kw]; ok {
			return false
		}
	}
	for kw := range singleSchemaKeywords {
		if _, ok := obj[kw]; ok {
			return false
		}
	}
	for kw := range arrayOfSchemasKeywords {
		if _, ok := obj[kw]; ok {
			return false
		}
	}
	return true
}
