package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/validation"
	"github.com/goliatone/go-formkit/pkg/visibility"
)

var (
	// ErrUnknownField is returned when an answer targets an id the schema does
	// not define.
	ErrUnknownField = errors.New("session: unknown field")
	// ErrAlreadySubmitted is returned when answers change or Submit is called
	// again after a successful submit. Call Edit or Reset first.
	ErrAlreadySubmitted = errors.New("session: already submitted")
)

// State is the position of a session in its lifecycle.
type State int

const (
	StateEditing State = iota
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	default:
		return "editing"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithInitialData seeds the session with previously collected answers, for
// example a resumed draft or a submission being edited.
func WithInitialData(data model.FormData) Option {
	return func(s *Session) {
		if data != nil {
			s.data = data.Clone()
		}
	}
}

// WithClock overrides the clock used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger routes session events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEvaluator overrides the visibility evaluator.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(s *Session) {
		if eval != nil {
			s.evaluator = eval
		}
	}
}

// Session holds the answers for one fill-in of a form and drives the
// editing/submitted lifecycle. A Session is not safe for concurrent use; every
// evaluation works on a snapshot of the answers.
type Session struct {
	schema     model.FormSchema
	data       model.FormData
	errors     map[string]validation.ErrorKind
	state      State
	submission render.Submission
	evaluator  visibility.Evaluator
	now        func() time.Time
	logger     *slog.Logger
}

// New opens an editing session for schema. Schemas with missing ids, labels,
// unknown kinds or duplicate ids are rejected.
func New(schema model.FormSchema, opts ...Option) (*Session, error) {
	if err := model.ValidateSchema(schema); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s := &Session{
		schema: schema.Clone(),
		data:   make(model.FormData),
		errors: make(map[string]validation.ErrorKind),
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.evaluator == nil {
		s.evaluator = visibility.NewResolver(s.schema, visibility.WithLogger(s.logger))
	}
	for _, issue := range model.Lint(s.schema) {
		if issue.Kind == model.IssueCycle {
			s.logger.Warn("conditional cycle detected", "schema", s.schema.Title, "path", issue.Path)
		}
	}
	return s, nil
}

// Schema returns a copy of the session's schema.
func (s *Session) Schema() model.FormSchema { return s.schema.Clone() }

// State reports the lifecycle state.
func (s *Session) State() State { return s.state }

// Set stores an answer and drops any submit error recorded for that field.
func (s *Session) Set(id string, value model.Value) error {
	if s.state == StateSubmitted {
		return ErrAlreadySubmitted
	}
	if _, ok := s.schema.Field(id); !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, id)
	}
	if !value.Present() {
		delete(s.data, id)
	} else {
		s.data[id] = value
	}
	delete(s.errors, id)
	return nil
}

// SetRaw coerces raw onto the field's kind and stores it.
func (s *Session) SetRaw(id string, raw any) error {
	field, ok := s.schema.Field(id)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, id)
	}
	value, err := model.CoerceValue(field.Kind, raw)
	if err != nil {
		return fmt.Errorf("session: field %q: %w", id, err)
	}
	return s.Set(id, value)
}

// Clear removes the answer for id so the field counts as never touched.
func (s *Session) Clear(id string) error {
	return s.Set(id, model.Value{})
}

// Value returns the current answer for id.
func (s *Session) Value(id string) (model.Value, bool) {
	return s.data.Get(id)
}

// Data returns a snapshot of every stored answer.
func (s *Session) Data() model.FormData { return s.data.Clone() }

// Visible reports whether the field id is currently shown. Unknown ids are
// never visible.
func (s *Session) Visible(id string) bool {
	field, ok := s.schema.Field(id)
	if !ok {
		return false
	}
	return s.evaluator.IsVisible(field, s.data.Clone())
}

// Visibility evaluates every field against the current answers.
func (s *Session) Visibility() map[string]bool {
	return visibility.Visibility(s.evaluator, s.schema, s.data.Clone())
}

// VisibleFields returns the currently shown fields in schema order.
func (s *Session) VisibleFields() []model.Field {
	visible := s.Visibility()
	out := make([]model.Field, 0, len(s.schema.Fields))
	for _, field := range s.schema.Fields {
		if visible[field.ID] {
			out = append(out, field.Clone())
		}
	}
	return out
}

// Evaluate runs a full validation pass without changing the session state.
// Use it for live feedback; Submit is the gate.
func (s *Session) Evaluate() validation.Result {
	return validation.ValidateAll(s.schema, s.data,
		validation.WithEvaluator(s.evaluator),
		validation.WithLogger(s.logger),
	)
}

// Errors returns the field errors recorded by the last submit attempt, minus
// fields edited since.
func (s *Session) Errors() map[string]validation.ErrorKind {
	out := make(map[string]validation.ErrorKind, len(s.errors))
	for id, kind := range s.errors {
		out[id] = kind
	}
	return out
}

// Focus returns the first field in schema order with a recorded error.
func (s *Session) Focus() string {
	for _, field := range s.schema.Fields {
		if _, ok := s.errors[field.ID]; ok {
			return field.ID
		}
	}
	return ""
}

// Submit validates the answers. On failure the errors are recorded, the
// session stays in editing and a *validation.FormError is returned. On
// success the session moves to submitted and the submission record is
// returned.
func (s *Session) Submit() (render.Submission, error) {
	if s.state == StateSubmitted {
		return render.Submission{}, ErrAlreadySubmitted
	}

	result := s.Evaluate()
	s.errors = make(map[string]validation.ErrorKind, len(result.Errors))
	for id, kind := range result.Errors {
		s.errors[id] = kind
	}

	if !result.Valid {
		s.logger.Info("submit rejected",
			"schema", s.schema.Title,
			"errors", len(result.Order),
			"focus", result.Focus,
		)
		return render.Submission{}, result.Err()
	}

	s.state = StateSubmitted
	s.submission = render.NewSubmission(s.schema, s.data, s.now())
	s.logger.Info("form submitted",
		"schema", s.schema.Title,
		"responses", len(s.submission.Responses),
	)
	return s.submission, nil
}

// Submission returns the record of the last successful submit.
func (s *Session) Submission() (render.Submission, bool) {
	if s.state != StateSubmitted {
		return render.Submission{}, false
	}
	return s.submission, true
}

// Edit reopens a submitted session with its answers intact.
func (s *Session) Edit() {
	if s.state != StateSubmitted {
		return
	}
	s.state = StateEditing
	s.submission = render.Submission{}
	s.logger.Debug("submission reopened for editing", "schema", s.schema.Title)
}

// Reset starts a fresh response: answers and errors are dropped and the
// session returns to editing.
func (s *Session) Reset() {
	s.state = StateEditing
	s.data = make(model.FormData)
	s.errors = make(map[string]validation.ErrorKind)
	s.submission = render.Submission{}
	s.logger.Debug("session reset", "schema", s.schema.Title)
}
