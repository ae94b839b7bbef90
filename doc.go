// Package jsonschemallm compiles an arbitrary JSON Schema (Draft 7, 2019-09,
// or 2020-12) into a restricted JSON Schema that satisfies the structured-
// output grammar of a target LLM provider (OpenAI strict mode, Google
// Gemini, or Anthropic Claude), and emits a codec describing every
// shape-altering rewrite it applied.
//
// Schemas are represented as plain Go values: an object schema is
// map[string]any, a boolean schema is bool. There is no typed Schema struct
// — every pass walks and rewrites this representation directly.
//
// # Quick Start
//
//	schema := map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	        "name": map[string]any{"type": "string"},
//	        "age":  map[string]any{"type": "integer"},
//	    },
//	    "required": []any{"name"},
//	}
//	result, err := jsonschemallm.Convert(schema, jsonschemallm.DefaultConvertOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Schema, result.Codec)
//
// Rehydration reverses the codec against an LLM's output:
//
//	out, err := rehydrate.Rehydrate(llmOutput, result.Codec, schema)
//
// # Conversion pipeline
//
// Convert runs ten ordered passes (normalize, composition, polymorphism,
// dictionary, opaque, recursion, strict, constraints, adaptive opaque,
// provider compat). Each pass is a pure schema-to-schema rewrite; downstream
// passes assume upstream invariants hold. See SPEC_FULL.md for the full
// per-pass contract.
//
// # Concurrency
//
// Convert and rehydrate.Rehydrate do not share or mutate state outside their
// arguments and may be called concurrently on disjoint inputs without
// coordination.
//
// # Subpackages
//
//   - rehydrate: the inverse engine, reconstructing LLM output into the
//     original schema's shape using a codec.
//   - internal/canon: RFC 8785 (JCS) deterministic JSON serialization, used
//     for enum/const intersection keys and oneOf/anyOf variant ordering.
//   - internal/pointer: RFC 6901 JSON Pointer escape/split/build/navigate
//     helpers shared by the core and the rehydrator.
package jsonschemallm
