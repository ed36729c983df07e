package validation

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/visibility"
)

// Option configures ValidateAll.
type Option func(*config)

type config struct {
	evaluator visibility.Evaluator
	logger    *slog.Logger
}

// WithEvaluator overrides the visibility evaluator. By default a
// visibility.Resolver built from the schema is used.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(c *config) {
		if eval != nil {
			c.evaluator = eval
		}
	}
}

// WithLogger receives the per-pass summary.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Result is the outcome of a full validation pass.
type Result struct {
	// Errors holds one entry per failing field.
	Errors map[string]ErrorKind `json:"errors"`
	// Order lists failing field ids in schema order.
	Order []string `json:"order"`
	// Visible records the visibility each field was validated under.
	Visible map[string]bool `json:"visible"`
	Valid   bool            `json:"valid"`
	// Focus is the first failing field in schema order, or "" when valid.
	Focus string `json:"focus,omitempty"`
}

// ValidateAll evaluates visibility and validates every field of schema against
// a snapshot of data. The pass never stops at the first failure.
func ValidateAll(schema model.FormSchema, data model.FormData, opts ...Option) Result {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.evaluator == nil {
		cfg.evaluator = visibility.NewResolver(schema, visibility.WithLogger(cfg.logger))
	}

	snapshot := data.Clone()
	result := Result{
		Errors:  make(map[string]ErrorKind),
		Visible: visibility.Visibility(cfg.evaluator, schema, snapshot),
	}

	for _, field := range schema.Fields {
		kind := ValidateField(field, snapshot, result.Visible[field.ID])
		if kind == "" {
			continue
		}
		if _, dup := result.Errors[field.ID]; dup {
			continue
		}
		result.Errors[field.ID] = kind
		result.Order = append(result.Order, field.ID)
	}

	result.Valid = len(result.Order) == 0
	if !result.Valid {
		result.Focus = result.Order[0]
	}

	cfg.logger.Debug("form validated",
		"schema", schema.Title,
		"valid", result.Valid,
		"errors", len(result.Order),
		"focus", result.Focus,
	)
	return result
}

// Err converts the result into an error, or nil when the form is valid.
func (r Result) Err() error {
	if r.Valid || len(r.Order) == 0 {
		return nil
	}
	fe := &FormError{Fields: make([]FieldError, 0, len(r.Order))}
	for _, id := range r.Order {
		fe.Fields = append(fe.Fields, FieldError{FieldID: id, Kind: r.Errors[id]})
	}
	return fe
}

// FieldError pairs a field with its failure.
type FieldError struct {
	FieldID string    `json:"fieldId"`
	Kind    ErrorKind `json:"kind"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldID, e.Kind)
}

// FormError lists every failing field of a submit attempt in schema order.
type FormError struct {
	Fields []FieldError `json:"fields"`
}

func (e *FormError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation: form is invalid"
	}
	parts := make([]string, len(e.Fields))
	for i, fieldErr := range e.Fields {
		parts[i] = fieldErr.Error()
	}
	return "validation: form is invalid: " + strings.Join(parts, ", ")
}

// Focus returns the first failing field id.
func (e *FormError) Focus() string {
	if e == nil || len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].FieldID
}
