package jsonschemallm

// Universal/per-target drop lists, grounded on original_source's
// p7_constraints.rs exactly (these are a table, not code branches, per
// spec §4.9).
var universalDrop = map[string]bool{
	"uniqueItems":        true,
	"default":            true,
	"not":                true,
	"if":                 true,
	"then":               true,
	"else":               true,
	"multipleOf":         true,
	"minProperties":      true,
	"maxProperties":      true,
	"propertyNames":      true,
	"dependentRequired":  true,
	"dependentSchemas":   true,
	"dependencies":       true,
	"contains":           true,
	"minContains":        true,
	"maxContains":        true,
	"format":             true,
}

var boundsDrop = map[string]bool{
	"minimum":          true,
	"maximum":          true,
	"exclusiveMinimum": true,
	"exclusiveMaximum": true,
	"minLength":        true,
	"maxLength":        true,
	"minItems":         true,
	"maxItems":         true,
}

func dropListFor(target Target) map[string]bool {
	switch target {
	case TargetGemini:
		return universalDrop
	case TargetClaude:
		out := mergeBoolMaps(universalDrop, boundsDrop)
		out["pattern"] = true
		return out
	default: // TargetOpenAIStrict
		return mergeBoolMaps(universalDrop, boundsDrop)
	}
}

func mergeBoolMaps(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// constraintsPass is P7: drops provider-unsupported keywords, normalizes
// const to enum, and sorts enum with the default value first, per spec
// §4.9.
type constraintsPass struct {
	opts     ConvertOptions
	codec    *Codec
	dropList map[string]bool
}

func newConstraintsPass(opts ConvertOptions, codec *Codec) *constraintsPass {
	return &constraintsPass{opts: opts, codec: codec, dropList: dropListFor(opts.Target)}
}

func (p *constraintsPass) run(schema any) (any, error) {
	return p.processAt(schema, "#", 0)
}

func (p *constraintsPass) processAt(node any, path string, depth int) (any, error) {
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

	if p.opts.Target != TargetGemini {
		if v, ok := out["const"]; ok {
			out["enum"] = []any{v}
			delete(out, "const")
		}
	}

	if enum, ok := out["enum"].([]any); ok {
		out["enum"] = sortEnumDefaultFirst(enum, out["default"])
	}

	for kw, v := range out {
		if p.dropList[kw] {
			p.codec.addDropped(DroppedConstraint{Path: path, Constraint: kw, Value: v})
			delete(out, kw)
		}
	}

	return recurseIntoChildren(out, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}

// sortEnumDefaultFirst moves the default value to index 0 if it appears in
// enum, preserving relative order of the rest.
func sortEnumDefaultFirst(enum []any, def any) []any {
	if def == nil {
		return enum
	}
	defKey := canonKey(def)
	idx := -1
	for i, v := range enum {
		if canonKey(v) == defKey {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return enum
	}
	out := make([]any, 0, len(enum))
	out = append(out, enum[idx])
	out = append(out, enum[:idx]...)
	out = append(out, enum[idx+1:]...)
	return out
}
