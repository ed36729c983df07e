package model

import internalmodel "github.com/goliatone/go-formkit/internal/model"

// Text stores a string answer.
func Text(s string) Value { return internalmodel.Text(s) }

// Number stores a numeric answer exactly as entered.
func Number(raw string) Value { return internalmodel.Number(raw) }

// List stores a multi-choice answer.
func List(items ...string) Value { return internalmodel.List(items...) }

// Bool stores a toggle answer.
func Bool(b bool) Value { return internalmodel.Bool(b) }

// Blob stores an opaque upload or signature reference.
func Blob(ref string) Value { return internalmodel.Blob(ref) }

// CoerceValue maps a decoded JSON value onto the shape kind expects.
func CoerceValue(kind FieldKind, raw any) (Value, error) {
	return internalmodel.CoerceValue(kind, raw)
}

// NormalizeData converts a loosely typed response map into FormData.
func NormalizeData(schema FormSchema, raw map[string]any) (FormData, error) {
	return internalmodel.NormalizeData(schema, raw)
}

// ParseNumber converts text with browser Number() semantics.
func ParseNumber(raw string) float64 { return internalmodel.ParseNumber(raw) }

// ValidateSchema enforces id/label/kind presence and id uniqueness.
func ValidateSchema(schema FormSchema) error { return internalmodel.ValidateSchema(schema) }

// Lint reports dangling references, cycles and other non-fatal findings.
func Lint(schema FormSchema) []Issue { return internalmodel.Lint(schema) }

// DependencyCycles returns the conditional cycles of schema.
func DependencyCycles(schema FormSchema) [][]string { return internalmodel.DependencyCycles(schema) }

// DefaultLabeler turns identifiers into display labels.
func DefaultLabeler(name string) string { return internalmodel.DefaultLabeler(name) }

// Slug turns a title into a dash-separated lower-case name.
func Slug(title string) string { return internalmodel.Slug(title) }
