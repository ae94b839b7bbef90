package rehydrate

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	jsonschemallm "github.com/dotslashderek/jsonschema-llm"
)

// RehydrateResult is Rehydrate's return envelope: the reconstructed data
// plus every advisory Warning collected along the way. Grounded on
// original_source's json-schema-llm-wasm/src/lib.rs rehydrate envelope
// shape (data + warnings).
type RehydrateResult struct {
	Data     any
	Warnings []Warning
}

// Rehydrate consumes LLM-produced data, the codec sidecar Convert emitted,
// and the original (pre-conversion) schema, and reconstructs data in the
// original shape, per spec §4.12.
//
// Phases, in order: codec version check, path navigation + transform
// application (one pass per codec.Transforms entry, in emission order),
// type coercion against the original schema, and dropped-constraint
// advisory validation. Only structural failures (codec version mismatch,
// a JsonStringParse/RecursiveInflate parse failure, a missing
// RootObjectWrapper key) are fatal; everything else surfaces as a Warning.
func Rehydrate(data any, codec *jsonschemallm.Codec, originalSchema any) (*RehydrateResult, error) {
	if err := jsonschemallm.CheckCodecVersion(codec); err != nil {
		return nil, err
	}

	regexCache, failedPatterns := buildRegexCache(collectPatterns(codec))

	var warnings []Warning
	for _, pat := range failedPatterns {
		warnings = append(warnings, Warning{
			Kind:       WarningConstraintUnevaluable,
			Constraint: "pattern",
			Message:    "invalid regex pattern, skipped: " + pat,
		})
	}
	for _, t := range codec.Transforms {
		segments, err := pathSegments(t.TransformPath())
		if err != nil {
			warnings = append(warnings, Warning{
				SchemaPath: t.TransformPath(),
				Kind:       WarningPathNotFound,
				Message:    err.Error(),
			})
			continue
		}
		nv, transformWarnings, err := applyTransform(data, segments, t, regexCache)
		if err != nil {
			return nil, err
		}
		data = nv
		warnings = append(warnings, transformWarnings...)
	}

	data, coercionWarnings := coerceTypes(data, originalSchema)
	warnings = append(warnings, coercionWarnings...)

	warnings = append(warnings, validateDroppedConstraints(data, codec.DroppedConstraints, regexCache)...)

	return &RehydrateResult{Data: data, Warnings: warnings}, nil
}

// collectPatterns gathers every patternProperties regex literal referenced
// in the codec's transform and dropped-constraint paths, so
// buildRegexCache can compile each one exactly once per Rehydrate call.
func collectPatterns(codec *jsonschemallm.Codec) []string {
	var patterns []string
	seen := map[string]bool{}
	add := func(schemaPath string) {
		segs, err := pathSegments(schemaPath)
		if err != nil {
			return
		}
		for i, s := range segs {
			if s == "patternProperties" && i+1 < len(segs) {
				p := segs[i+1]
				if !seen[p] {
					seen[p] = true
					patterns = append(patterns, p)
				}
			}
		}
	}
	for _, t := range codec.Transforms {
		add(t.TransformPath())
	}
	for _, d := range codec.DroppedConstraints {
		add(d.Path)
		if d.Constraint == "pattern" {
			if pat, ok := d.Value.(string); ok && !seen[pat] {
				seen[pat] = true
				patterns = append(patterns, pat)
			}
		}
	}
	return patterns
}

// validateDroppedConstraints checks whether the final, rehydrated data
// appears to violate a constraint P7 dropped for provider compatibility,
// surfacing each violation as an advisory ConstraintViolation warning
// (never fatal, per spec §7).
func validateDroppedConstraints(data any, dropped []jsonschemallm.DroppedConstraint, regexCache map[string]*regexp.Regexp) []Warning {
	var warnings []Warning
	for _, d := range dropped {
		segments, err := pathSegments(d.Path)
		if err != nil {
			continue
		}
		node, ok := navigateData(data, segments)
		if !ok {
			continue
		}
		if msg, violated := checkConstraint(node, d.Constraint, d.Value, regexCache); violated {
			warnings = append(warnings, Warning{
				DataPath:   d.Path,
				SchemaPath: d.Path,
				Kind:       WarningConstraintViolation,
				Constraint: d.Constraint,
				Message:    msg,
			})
		}
	}
	return warnings
}

func checkConstraint(value any, constraint string, constraintValue any, regexCache map[string]*regexp.Regexp) (string, bool) {
	switch constraint {
	case "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum":
		n, ok := asFloat(value)
		bound, okBound := asFloat(constraintValue)
		if !ok || !okBound {
			return "", false
		}
		switch constraint {
		case "minimum":
			if n < bound {
				return "value is below the dropped minimum", true
			}
		case "maximum":
			if n > bound {
				return "value is above the dropped maximum", true
			}
		case "exclusiveMinimum":
			if n <= bound {
				return "value is at or below the dropped exclusiveMinimum", true
			}
		case "exclusiveMaximum":
			if n >= bound {
				return "value is at or above the dropped exclusiveMaximum", true
			}
		}
	case "minLength", "maxLength":
		s, ok := value.(string)
		bound, okBound := asFloat(constraintValue)
		if !ok || !okBound {
			return "", false
		}
		n := len([]rune(s))
		if constraint == "minLength" && n < int(bound) {
			return "string is shorter than the dropped minLength", true
		}
		if constraint == "maxLength" && n > int(bound) {
			return "string is longer than the dropped maxLength", true
		}
	case "minItems", "maxItems":
		arr, ok := value.([]any)
		bound, okBound := asFloat(constraintValue)
		if !ok || !okBound {
			return "", false
		}
		if constraint == "minItems" && len(arr) < int(bound) {
			return "array has fewer items than the dropped minItems", true
		}
		if constraint == "maxItems" && len(arr) > int(bound) {
			return "array has more items than the dropped maxItems", true
		}
	case "pattern":
		s, ok := value.(string)
		pat, okPat := constraintValue.(string)
		if !ok || !okPat {
			return "", false
		}
		re, cached := regexCache[pat]
		if !cached {
			return "", false
		}
		if !re.MatchString(s) {
			return "string does not match the dropped pattern", true
		}
	}
	return "", false
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
