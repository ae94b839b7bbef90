package jsonschemallm

import (
	"fmt"
	"strconv"
	"strings"
)

// codecMajorVersion extracts the trailing "vN" major version segment from a
// codec $schema URI, e.g. "https://jsonschema-llm.dev/codec/v1" -> 1.
//
// Adapted from the teacher's semver parser (version.go): that parser
// compared three-component OpenBindings document versions against a
// supported range; here there is a single integer major version embedded
// in a URI, so parsing is simpler, but the "reject anything that doesn't
// parse cleanly" posture is kept.
func codecMajorVersion(schemaURI string) (int, error) {
	idx := strings.LastIndex(schemaURI, "/v")
	if idx < 0 {
		return 0, fmt.Errorf("codec $schema %q: missing /vN major version segment", schemaURI)
	}
	n, err := strconv.Atoi(schemaURI[idx+2:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("codec $schema %q: invalid major version segment", schemaURI)
	}
	return n, nil
}

// CheckCodecVersion reports whether codec's $schema major version matches
// the version this build of the library understands. It is the
// rehydrator's version gate: spec §6 says the "$schema URI is matched by
// major version on read; mismatch -> CodecVersionMismatch".
func CheckCodecVersion(c *Codec) error {
	if c == nil || c.SchemaURI == "" {
		return &ConvertError{Code: ErrorCodeCodecVersionMismatch, Message: "codec has no $schema URI"}
	}
	got, err := codecMajorVersion(c.SchemaURI)
	if err != nil {
		return &ConvertError{Code: ErrorCodeCodecVersionMismatch, Message: err.Error()}
	}
	if got != CodecMajorVersion {
		return &ConvertError{
			Code: ErrorCodeCodecVersionMismatch,
			Message: fmt.Sprintf("codec major version %d is not supported (expected %d)",
				got, CodecMajorVersion),
		}
	}
	return nil
}
