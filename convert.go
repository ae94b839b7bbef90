package jsonschemallm

// ConvertResult is Convert's return envelope: the restricted schema, the
// codec sidecar describing every transform applied, and any non-fatal
// provider-compatibility findings from P9. Grounded on
// original_source's json-schema-llm-wasm/src/lib.rs convert envelope shape
// (schema + codec + provider_compat_errors).
type ConvertResult struct {
	Schema              any
	Codec               *Codec
	ProviderCompatErrors []*ProviderCompatError
}

// Convert runs the full P0-P9 pipeline described in spec §4, turning an
// arbitrary JSON Schema into one compliant with opts.Target's structured-
// output constraints, plus the codec sidecar a rehydrate.Rehydrate call
// needs to reconstruct the original shape from an LLM's output.
//
// schema must already be decoded into Go's generic JSON representation
// (map[string]any / []any / string / float64 / bool / nil, or json.Number
// where the caller decoded with UseNumber — see doc.go's Quick Start).
//
// Convert fails fast only on structural errors (malformed $ref, unresolvable
// recursion, allOf conflicts, disallowed polymorphism strategy, recursion
// depth exceeded). Provider-compatibility findings from P9 are returned
// alongside a valid result rather than failing the call; callers that want
// fatal-mode behavior should inspect result.ProviderCompatErrors themselves.
func Convert(schema any, opts ConvertOptions) (*ConvertResult, error) {
	root, ok := schema.(map[string]any)
	if !ok {
		return nil, newSchemaError("#", "root schema must be an object")
	}

	codec := NewCodec()

	p0 := newNormalizePass(root, opts)
	normalized, err := p0.run(root)
	if err != nil {
		return nil, err
	}

	p1 := newCompositionPass(opts)
	out, err := p1.run(normalized.schema)
	if err != nil {
		return nil, err
	}

	p2 := newPolymorphismPass(opts)
	out, err = p2.run(out)
	if err != nil {
		return nil, err
	}

	p3 := newDictionaryPass(opts, codec)
	out, err = p3.run(out)
	if err != nil {
		return nil, err
	}

	p4 := newOpaquePass(opts, codec)
	out, err = p4.run(out)
	if err != nil {
		return nil, err
	}

	p5 := newRecursionPass(opts, codec, normalized.recursiveRefs, p0)
	out, err = p5.run(out)
	if err != nil {
		return nil, err
	}

	p6 := newStrictPass(opts, codec)
	out, err = p6.run(out)
	if err != nil {
		return nil, err
	}

	p7 := newConstraintsPass(opts, codec)
	out, err = p7.run(out)
	if err != nil {
		return nil, err
	}

	p8 := newAdaptivePass(opts, codec)
	out, err = p8.run(out)
	if err != nil {
		return nil, err
	}

	p9 := newCompatPass(opts, codec)
	out, compatErrors, err := p9.run(out)
	if err != nil {
		return nil, err
	}

	return &ConvertResult{Schema: out, Codec: codec, ProviderCompatErrors: compatErrors}, nil
}
