package rehydrate

import (
	"regexp"
	"strconv"

	jsonschemallm "github.com/dotslashderek/jsonschema-llm"
	"github.com/dotslashderek/jsonschema-llm/internal/pointer"
)

// skipSingle keywords are schema-structural but consume no data segment:
// the data at this point is already the value the keyword constrains, not
// a nested container named after the keyword. Grounded on
// original_source's rehydrator/walker.rs SKIP_SINGLE set, generalized to
// the core package's full singleSchemaKeywords table.
var skipSingle = map[string]bool{
	"additionalProperties":  true,
	"unevaluatedProperties": true,
	"propertyNames":         true,
	"unevaluatedItems":      true,
	"contains":              true,
	"not":                   true,
	"if":                    true,
	"then":                  true,
	"else":                  true,
	"additionalItems":       true,
}

// skipPair keywords consume the keyword segment plus the following one
// (a $defs/definitions/dependentSchemas name, or an anyOf/oneOf/allOf
// variant index) without any corresponding data navigation: these
// keywords' variants validate the SAME data value, they don't wrap it in a
// container. Grounded on original_source's SKIP_PAIR set, extended with
// anyOf/oneOf/allOf (which this implementation's transform paths can pass
// through when a transform lands inside a composed variant).
var skipPair = map[string]bool{
	"$defs":            true,
	"definitions":      true,
	"dependentSchemas": true,
	"anyOf":            true,
	"oneOf":            true,
	"allOf":            true,
}

// pathSegments splits a codec schema pointer ("#/properties/age") into its
// raw, unescaped navigation segments.
func pathSegments(schemaPath string) ([]string, error) {
	return pointer.Split(schemaPath)
}

// buildRegexCache compiles every patternProperties pattern referenced
// across the codec's transforms and dropped constraints once per
// Rehydrate call, per spec §4.12 ("regexes cached in a local table;
// invalid regexes produce an advisory warning").
func buildRegexCache(patterns []string) (map[string]*regexp.Regexp, []string) {
	cache := make(map[string]*regexp.Regexp, len(patterns))
	var failed []string
	for _, pat := range patterns {
		if _, ok := cache[pat]; ok {
			continue
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			failed = append(failed, pat)
			continue
		}
		cache[pat] = re
	}
	return cache, failed
}

// applyTransform walks data following the transform's path segments,
// interpreted against data rather than schema (structural keywords are
// skipped or consumed per spec §4.12 step 1), and executes the transform
// at the terminal node. Returns the (possibly replaced) data plus any
// advisory warnings the transform itself raised (e.g. a RootObjectWrapper
// stripping unexpected sibling keys).
func applyTransform(data any, segments []string, t jsonschemallm.Transform, regexCache map[string]*regexp.Regexp) (any, []Warning, error) {
	if len(segments) == 0 {
		return executeTransform(data, t)
	}

	seg := segments[0]
	rest := segments[1:]

	if skipSingle[seg] {
		return applyTransform(data, rest, t, regexCache)
	}

	if skipPair[seg] {
		if len(rest) == 0 {
			return data, nil, nil
		}
		return applyTransform(data, rest[1:], t, regexCache)
	}

	if seg == "patternProperties" {
		if len(rest) == 0 {
			return data, nil, nil
		}
		pattern := rest[0]
		skipTo := rest[1:]
		re, ok := regexCache[pattern]
		if !ok {
			return data, nil, nil // invalid/uncompiled regex: skip, advisory only
		}
		obj, ok := data.(map[string]any)
		if !ok {
			return data, nil, nil
		}
		out := make(map[string]any, len(obj))
		var warnings []Warning
		for k, v := range obj {
			if re.MatchString(k) {
				nv, w, err := applyTransform(v, skipTo, t, regexCache)
				if err != nil {
					return nil, nil, err
				}
				out[k] = nv
				warnings = append(warnings, w...)
			} else {
				out[k] = v
			}
		}
		return out, warnings, nil
	}

	if seg == "properties" {
		if len(rest) == 0 {
			return data, nil, nil
		}
		key := rest[0]
		remaining := rest[1:]

		if nullable, ok := t.(jsonschemallm.NullableOptional); ok && len(remaining) == 0 {
			obj, ok := data.(map[string]any)
			if !ok {
				return data, nil, nil
			}
			if nullable.OriginalRequired {
				return data, nil, nil
			}
			if v, present := obj[key]; present && v == nil {
				out := make(map[string]any, len(obj))
				for k, vv := range obj {
					out[k] = vv
				}
				delete(out, key)
				return out, nil, nil
			}
			return data, nil, nil
		}

		obj, ok := data.(map[string]any)
		if !ok {
			return data, nil, nil
		}
		child, present := obj[key]
		if !present {
			return data, nil, nil
		}
		nv, warnings, err := applyTransform(child, remaining, t, regexCache)
		if err != nil {
			return nil, nil, err
		}
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			out[k] = v
		}
		out[key] = nv
		return out, warnings, nil
	}

	if seg == "items" {
		arr, ok := data.([]any)
		if !ok {
			return data, nil, nil
		}
		out := make([]any, len(arr))
		var warnings []Warning
		for i, item := range arr {
			nv, w, err := applyTransform(item, rest, t, regexCache)
			if err != nil {
				return nil, nil, err
			}
			out[i] = nv
			warnings = append(warnings, w...)
		}
		return out, warnings, nil
	}

	if seg == "prefixItems" {
		if len(rest) == 0 {
			return data, nil, nil
		}
		return applyTransform(data, rest, t, regexCache)
	}

	if idx, err := strconv.Atoi(seg); err == nil {
		arr, ok := data.([]any)
		if !ok || idx < 0 || idx >= len(arr) {
			return data, nil, nil
		}
		nv, warnings, err := applyTransform(arr[idx], rest, t, regexCache)
		if err != nil {
			return nil, nil, err
		}
		out := make([]any, len(arr))
		copy(out, arr)
		out[idx] = nv
		return out, warnings, nil
	}

	// Unknown segment: skip silently for forward compatibility, matching
	// original_source's walker.rs behavior for unrecognized keywords.
	return applyTransform(data, rest, t, regexCache)
}

// navigateData is the read-only counterpart of applyTransform, used to
// locate the data node a dropped constraint's schema path refers to when
// checking for advisory constraint violations.
func navigateData(data any, segments []string) (any, bool) {
	if len(segments) == 0 {
		return data, true
	}
	seg := segments[0]
	rest := segments[1:]

	if skipSingle[seg] {
		return navigateData(data, rest)
	}
	if skipPair[seg] {
		if len(rest) == 0 {
			return data, true
		}
		return navigateData(data, rest[1:])
	}
	if seg == "patternProperties" || seg == "prefixItems" {
		if len(rest) == 0 {
			return data, true
		}
		if seg == "prefixItems" {
			return navigateData(data, rest)
		}
		return navigateData(data, rest[1:])
	}
	if seg == "properties" {
		if len(rest) == 0 {
			return data, true
		}
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, false
		}
		child, present := obj[rest[0]]
		if !present {
			return nil, false
		}
		return navigateData(child, rest[1:])
	}
	if seg == "items" {
		// Returns the array itself: the constraint is then checked against
		// the array as a whole, so per-element constraints under items are
		// not evaluated.
		return data, true
	}
	if idx, err := strconv.Atoi(seg); err == nil {
		arr, ok := data.([]any)
		if !ok || idx < 0 || idx >= len(arr) {
			return nil, false
		}
		return navigateData(arr[idx], rest)
	}
	return navigateData(data, rest)
}
