// Package pointer implements RFC 6901 JSON Pointer escaping and navigation,
// generalized from the teacher package's ad hoc pointer helpers
// (schemaprofile.ptrJoin / resolveJSONPointer) into a standalone utility
// shared by the conversion core and the rehydrator.
package pointer

import (
	"fmt"
	"strconv"
	"strings"
)

// Escape escapes a single JSON Pointer reference-token per RFC 6901:
// "~" -> "~0", "/" -> "~1". Order matters: "~" must be escaped first.
func Escape(segment string) string {
	s := strings.ReplaceAll(segment, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

// Unescape reverses Escape.
func Unescape(segment string) string {
	s := strings.ReplaceAll(segment, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}

// Build joins a base ("#" or "") with raw (unescaped) path segments into a
// "#/a/b/c"-style pointer, escaping each segment.
func Build(base string, segments ...string) string {
	var b strings.Builder
	if base == "" {
		b.WriteString("#")
	} else {
		b.WriteString(base)
	}
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(Escape(s))
	}
	return b.String()
}

// Append returns a new pointer formed by appending one raw segment to an
// existing "#/..."-style pointer.
func Append(ptr, segment string) string {
	if ptr == "" || ptr == "#" {
		return "#/" + Escape(segment)
	}
	return ptr + "/" + Escape(segment)
}

// Split parses a "#/a/b/c" pointer into its unescaped segments. "#" and ""
// both yield an empty slice.
func Split(ptr string) ([]string, error) {
	if ptr == "" || ptr == "#" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "#/") {
		return nil, fmt.Errorf("pointer: %q must start with \"#/\"", ptr)
	}
	raw := strings.Split(ptr[2:], "/")
	out := make([]string, len(raw))
	for i, s := range raw {
		out[i] = Unescape(s)
	}
	return out, nil
}

// Navigate walks doc (nested map[string]any / []any) following the raw,
// unescaped segments of a JSON Pointer fragment (the part after "#"),
// mirroring the teacher's resolveJSONPointer.
func Navigate(doc any, fragment string) (any, error) {
	if fragment == "" {
		return doc, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, fmt.Errorf("pointer: unsupported fragment %q (must be JSON Pointer)", fragment)
	}
	toks := strings.Split(fragment, "/")[1:]
	cur := doc
	for _, tok := range toks {
		tok = Unescape(tok)
		switch x := cur.(type) {
		case map[string]any:
			nxt, ok := x[tok]
			if !ok {
				return nil, fmt.Errorf("pointer: not found: %q", tok)
			}
			cur = nxt
		case []any:
			if tok == "-" {
				return nil, fmt.Errorf("pointer: '-' is not valid for array lookup")
			}
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(x) {
				return nil, fmt.Errorf("pointer: array index out of range: %q", tok)
			}
			cur = x[idx]
		default:
			return nil, fmt.Errorf("pointer: traversed non-container at %q", tok)
		}
	}
	return cur, nil
}
