package visibility

import (
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Evaluator decides whether a field is visible against a snapshot of answers.
// Implementations must be pure: the same (field, data) always yields the same
// result and no call may depend on another.
type Evaluator interface {
	IsVisible(field model.Field, data model.FormData) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field model.Field, data model.FormData) bool

// IsVisible delegates to the underlying function.
func (fn EvaluatorFunc) IsVisible(field model.Field, data model.FormData) bool {
	return fn(field, data)
}

// IsVisible applies a field's conditional rule to data without schema
// context:
//
//   - no rule: visible
//   - controlling field unanswered: hidden
//   - equals / not_equals: string comparison of the coerced answer
//   - contains: substring test on the coerced answer
//   - greater_than / less_than: Number() coercion of both sides; NaN is never
//     greater or less than anything
//   - any other operator: visible
//
// Missing answers hide the field while unknown operators show it. Both
// behaviours are kept as they are; see DESIGN.md.
func IsVisible(field model.Field, data model.FormData) bool {
	rule := field.Conditional
	if rule == nil {
		return true
	}
	current, ok := data.Get(rule.DependsOn)
	if !ok {
		return false
	}
	return Compare(rule.Operator, current, rule.Comparand)
}

// Compare evaluates a single operator against an answer and the rule's
// comparand.
func Compare(operator string, current model.Value, comparand string) bool {
	switch operator {
	case model.OperatorEquals:
		return current.String() == comparand
	case model.OperatorNotEquals:
		return current.String() != comparand
	case model.OperatorContains:
		return strings.Contains(current.String(), comparand)
	case model.OperatorGreaterThan:
		left, right := current.Numeric(), model.ParseNumber(comparand)
		if math.IsNaN(left) || math.IsNaN(right) {
			return false
		}
		return left > right
	case model.OperatorLessThan:
		left, right := current.Numeric(), model.ParseNumber(comparand)
		if math.IsNaN(left) || math.IsNaN(right) {
			return false
		}
		return left < right
	default:
		return true
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger routes dangling-reference warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver evaluates visibility for the fields of one schema. Rules that
// reference ids missing from the schema never show their field, even when the
// answers carry a stray value under that key.
type Resolver struct {
	known    map[string]struct{}
	dangling map[string]string
	logger   *slog.Logger
}

var _ Evaluator = (*Resolver)(nil)

// NewResolver indexes schema and logs each dangling reference once.
func NewResolver(schema model.FormSchema, options ...Option) *Resolver {
	r := &Resolver{
		known:    make(map[string]struct{}, len(schema.Fields)),
		dangling: make(map[string]string),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	for _, field := range schema.Fields {
		r.known[field.ID] = struct{}{}
	}
	for _, field := range schema.Fields {
		if field.Conditional == nil {
			continue
		}
		target := field.Conditional.DependsOn
		if _, ok := r.known[target]; ok {
			continue
		}
		r.dangling[field.ID] = target
		r.logger.Warn("conditional rule references unknown field; field will never be visible",
			"schema", schema.Title,
			"field", field.ID,
			"dependsOn", target,
		)
	}
	return r
}

// IsVisible reports whether field is visible for data.
func (r *Resolver) IsVisible(field model.Field, data model.FormData) bool {
	if field.Conditional == nil {
		return true
	}
	if _, ok := r.known[field.Conditional.DependsOn]; !ok {
		return false
	}
	return IsVisible(field, data)
}

// Dangling returns the field id -> missing dependency pairs found at
// construction.
func (r *Resolver) Dangling() map[string]string {
	out := make(map[string]string, len(r.dangling))
	for k, v := range r.dangling {
		out[k] = v
	}
	return out
}

// Visibility evaluates every field of schema independently against data.
func Visibility(eval Evaluator, schema model.FormSchema, data model.FormData) map[string]bool {
	if eval == nil {
		eval = EvaluatorFunc(IsVisible)
	}
	out := make(map[string]bool, len(schema.Fields))
	for _, field := range schema.Fields {
		out[field.ID] = eval.IsVisible(field, data)
	}
	return out
}
