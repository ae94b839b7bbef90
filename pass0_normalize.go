package jsonschemallm

import (
	"sort"

	"github.com/dotslashderek/jsonschema-llm/internal/canon"
)

// metaKeywords are stripped everywhere once $ref inlining is complete; they
// have no semantics in the converted output and are rejected by strict
// targets (spec §4.2).
var metaKeywords = map[string]bool{
	"$anchor":       true,
	"$dynamicAnchor": true,
	"$dynamicRef":   true,
	"$id":           true,
	"$schema":       true,
}

// normalizeResult is P0's output: the normalized schema plus the set of
// "#/..." JSON Pointer targets (within the original input document) that
// were left as recursive $refs for P5 to handle.
type normalizeResult struct {
	schema        any
	recursiveRefs map[string]bool // "#/..." target pointer -> true
}

// normalizePass is P0: resolves $ref, folds draft variants, detects
// recursion cycles. Grounded on the teacher's normalizeAt (inline $ref with
// a cycle stack and cleanup closures) generalized beyond the narrow
// compatibility profile to the full keyword set via the walker.
type normalizePass struct {
	resolver      *resolverEngine
	onStack       map[string]bool // pointer fragments currently being inlined
	recursiveRefs map[string]bool
	opts          ConvertOptions
}

func newNormalizePass(root map[string]any, opts ConvertOptions) *normalizePass {
	return &normalizePass{
		resolver:      newResolverEngine(root),
		onStack:       map[string]bool{},
		recursiveRefs: map[string]bool{},
		opts:          opts,
	}
}

func (p *normalizePass) run(schema any) (*normalizeResult, error) {
	out, err := p.normalizeAt(schema, "#", 0)
	if err != nil {
		return nil, err
	}
	return &normalizeResult{schema: out, recursiveRefs: p.recursiveRefs}, nil
}

func (p *normalizePass) normalizeAt(node any, path string, depth int) (any, error) {
	if depth > p.opts.MaxDepth {
		return nil, newRecursionDepthExceededError(path, p.opts.MaxDepth)
	}

	if b, ok := node.(bool); ok {
		return b, nil
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, newSchemaError(path, "schema node must be an object or boolean")
	}

	if ref, ok := obj["$ref"].(string); ok {
		resolved := p.resolver.resolve(ref)
		if resolved.unresolvable {
			return nil, newUnresolvableRefError(path, ref)
		}
		targetPointer := "#" + resolved.pointerFragment
		if p.onStack[targetPointer] {
			// Recursive ref: leave it in place (stripped of everything
			// else) for P5 to inline/collapse, and record the target.
			p.recursiveRefs[targetPointer] = true
			return map[string]any{"$ref": targetPointer}, nil
		}
		target, err := p.resolver.navigate(resolved.pointerFragment)
		if err != nil {
			return nil, newUnresolvableRefError(path, ref)
		}
		p.onStack[targetPointer] = true
		defer delete(p.onStack, targetPointer)
		return p.normalizeAt(target, path, depth+1)
	}

	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if metaKeywords[k] {
			continue
		}
		out[k] = v
	}

	if defs, ok := out["definitions"]; ok {
		if existing, hasDefs := out["$defs"]; hasDefs {
			merged, ok1 := existing.(map[string]any)
			more, ok2 := defs.(map[string]any)
			if ok1 && ok2 {
				nm := make(map[string]any, len(merged)+len(more))
				for k, v := range more {
					nm[k] = v
				}
				for k, v := range merged {
					nm[k] = v
				}
				out["$defs"] = nm
			}
		} else {
			out["$defs"] = defs
		}
		delete(out, "definitions")
	}

	if items, ok := out["items"].([]any); ok {
		out["prefixItems"] = items
		delete(out, "items")
	}

	if t, ok := out["type"]; ok {
		out["type"] = normalizeTypeValue(t)
	}

	nv, err := recurseIntoChildren(out, path, func(child any, childPath string) (any, error) {
		return p.normalizeAt(child, childPath, depth+1)
	})
	if err != nil {
		return nil, err
	}
	out = nv.(map[string]any)

	for _, k := range []string{"oneOf", "anyOf"} {
		if arr, ok := out[k].([]any); ok {
			out[k] = sortVariantsCanonically(arr)
		}
	}

	return out, nil
}

// normalizeTypeValue converts a string or []any "type" value into a sorted,
// deduplicated []any of strings, matching the teacher's normalizeType.
func normalizeTypeValue(v any) any {
	switch x := v.(type) {
	case string:
		return []any{x}
	case []any:
		set := map[string]bool{}
		for _, it := range x {
			if s, ok := it.(string); ok {
				set[s] = true
			}
		}
		out := make([]any, 0, len(set))
		for s := range set {
			out = append(out, s)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].(string) < out[j].(string) })
		return out
	default:
		return v
	}
}

// sortVariantsCanonically sorts oneOf/anyOf members by canonical JSON
// string, giving deterministic output regardless of input order (teacher's
// normalizeAt does this for the same reason: stable diffs/golden tests).
func sortVariantsCanonically(arr []any) []any {
	type scored struct {
		key string
		v   any
	}
	sc := make([]scored, 0, len(arr))
	for _, v := range arr {
		b, err := canon.Marshal(v)
		key := ""
		if err == nil {
			key = string(b)
		}
		sc = append(sc, scored{key: key, v: v})
	}
	sort.SliceStable(sc, func(i, j int) bool { return sc[i].key < sc[j].key })
	out := make([]any, len(sc))
	for i, s := range sc {
		out[i] = s.v
	}
	return out
}
