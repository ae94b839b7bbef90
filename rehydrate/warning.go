// Package rehydrate consumes a codec sidecar and an LLM-generated response
// and reconstructs data in the shape the original schema described, per
// spec §4.12.
package rehydrate

// WarningKind classifies an advisory finding surfaced during rehydration.
// Grounded on original_source's codec_warning.rs (tagged enum).
type WarningKind string

const (
	WarningConstraintViolation   WarningKind = "constraint_violation"
	WarningConstraintUnevaluable WarningKind = "constraint_unevaluable"
	WarningPathNotFound          WarningKind = "path_not_found"
)

// Warning is an advisory, non-fatal finding: a dropped constraint the LLM
// output appears to violate, an unevaluable pattern, or a codec path that
// could not be parsed as a JSON Pointer. A well-formed codec path that
// matches nothing in the data raises no warning. Never fatal, per spec §7.
type Warning struct {
	DataPath   string      `json:"dataPath"`
	SchemaPath string      `json:"schemaPath"`
	Kind       WarningKind `json:"kind"`
	Constraint string      `json:"constraint,omitempty"`
	Message    string      `json:"message"`
}
