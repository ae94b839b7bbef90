package jsonschemallm

// recursionPass is P5: inlines cyclic refs recorded by P0 up to
// RecursionLimit levels deep, then collapses the innermost occurrence to an
// opaque-string placeholder, per spec §4.7.
//
// No Rust source for this pass was retrieved alongside the spec; it is
// built from spec prose plus the sibling passes' gate-walk-replace idiom
// (especially P4/P8's processAt shape) and the teacher's ref-stack cycle
// bookkeeping pattern.
//
// Materializing an inlined copy of a ref target re-invokes P0's own
// normalizeAt on the raw (pre-normalization) node the resolver points at,
// rather than maintaining a second path index over the already-normalized
// tree: once P0 resolves a self-ref at the root (spec's TreeNode seed
// scenario, §8.3), the root's own $defs sibling is discarded per $ref
// precedence, so nothing in the P0-P4 output tree still contains it at a
// stable path. Re-running normalizeAt on demand is the one place that
// still has it, via the resolver's untouched root document.
type recursionPass struct {
	opts          ConvertOptions
	codec         *Codec
	recursiveRefs map[string]bool
	normalize     *normalizePass
	inlineDepth   map[string]int // ref target -> current inline depth along this DFS branch
}

func newRecursionPass(opts ConvertOptions, codec *Codec, recursiveRefs map[string]bool, normalize *normalizePass) *recursionPass {
	return &recursionPass{
		opts:          opts,
		codec:         codec,
		recursiveRefs: recursiveRefs,
		normalize:     normalize,
		inlineDepth:   map[string]int{},
	}
}

func (p *recursionPass) run(schema any) (any, error) {
	if len(p.recursiveRefs) == 0 {
		return schema, nil
	}
	return p.processAt(schema, "#", 0)
}

func (p *recursionPass) processAt(node any, path string, depth int) (any, error) {
	if depth > p.opts.MaxDepth {
		return nil, newRecursionDepthExceededError(path, p.opts.MaxDepth)
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return node, nil
	}

	if ref, ok := obj["$ref"].(string); ok && p.recursiveRefs[ref] {
		return p.inlineRef(ref, path, depth)
	}

	return recurseIntoChildren(obj, path, func(child any, childPath string) (any, error) {
		return p.processAt(child, childPath, depth+1)
	})
}

func (p *recursionPass) inlineRef(ref, path string, depth int) (any, error) {
	if p.inlineDepth[ref] >= p.opts.RecursionLimit {
		p.codec.addTransform(RecursiveInflate{Path: path, OriginalRef: ref})
		return map[string]any{
			"type":        "string",
			"description": "Recursive structure, encoded as a JSON string (depth limit reached).",
		}, nil
	}

	fragment := ref
	if len(fragment) > 0 && fragment[0] == '#' {
		fragment = fragment[1:]
	}
	raw, err := p.normalize.resolver.navigate(fragment)
	if err != nil {
		return nil, newUnresolvableRefError(path, ref)
	}

	p.inlineDepth[ref]++
	defer func() { p.inlineDepth[ref]-- }()

	// Pre-arm P0's cycle stack for this target before re-normalizing it, the
	// same way P0's own $ref branch does right before recursing into a
	// freshly resolved target: without this, a self-reference nested inside
	// the target (e.g. TreeNode.children[].items: $ref TreeNode) would not
	// find onStack[ref] already true and would try to resolve and expand
	// itself again instead of yielding a fresh $ref marker for the next
	// inlineRef call to pick up, unrolling without bound instead of by
	// exactly one level per call.
	p.normalize.onStack[ref] = true
	defer delete(p.normalize.onStack, ref)

	normalized, err := p.normalize.normalizeAt(raw, path, depth+1)
	if err != nil {
		return nil, err
	}

	return p.processAt(normalized, path, depth+1)
}
