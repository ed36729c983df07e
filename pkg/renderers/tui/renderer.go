package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/text"
	"github.com/goliatone/go-formkit/pkg/session"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// Name is the registry key of the renderer.
const Name = "tui"

const (
	dateLayout       = "2006-01-02"
	msgInvalidNumber = "Please enter a valid number"
	msgInvalidDate   = "Please enter a date as YYYY-MM-DD"
	msgFileNotFound  = "File not found"
	msgNoOptions     = "no options available, skipped"
	msgConfirmSubmit = "Submit form?"
)

// Renderer implements render.Renderer as an interactive terminal session. It
// prompts for every visible field, re-evaluating visibility after each
// answer, then submits and re-prompts invalid fields starting with the first
// one in schema order.
type Renderer struct {
	driver        PromptDriver
	outputFormat  OutputFormat
	maxAttempts   int
	confirmSubmit bool
	out           io.Writer
	logger        *slog.Logger
	now           func() time.Time
	theme         Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxAttempts:  defaultMaxAttempts,
		out:          os.Stdout,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:          time.Now,
		theme:        Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render runs the fill flow for schema. options.Values pre-fill the answers
// and are offered as prompt defaults.
func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	clock := r.now
	if !options.SubmittedAt.IsZero() || options.Now != nil {
		clock = options.Timestamp
	}
	sess, err := session.New(schema,
		session.WithInitialData(options.Values),
		session.WithClock(clock),
		session.WithLogger(r.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}

	f := &fill{
		r:       r,
		sess:    sess,
		display: render.LocalizeSchema(schema, options),
		asked:   make(map[string]bool, len(schema.Fields)),
	}
	submission, err := f.run(ctx)
	if err != nil {
		return nil, err
	}
	return r.serialize(ctx, schema, submission, options)
}

type fill struct {
	r       *Renderer
	sess    *session.Session
	display model.FormSchema
	asked   map[string]bool
}

func (f *fill) run(ctx context.Context) (render.Submission, error) {
	if err := f.askVisible(ctx); err != nil {
		return render.Submission{}, err
	}

	for attempt := 1; ; attempt++ {
		if f.r.confirmSubmit {
			ok, err := f.r.driver.Confirm(ctx, ConfirmConfig{Message: msgConfirmSubmit, Default: true})
			if err != nil {
				return render.Submission{}, err
			}
			if !ok {
				return render.Submission{}, ErrAborted
			}
		}

		submission, err := f.sess.Submit()
		if err == nil {
			return submission, nil
		}
		var formErr *validation.FormError
		if !errors.As(err, &formErr) {
			return render.Submission{}, fmt.Errorf("tui: submit: %w", err)
		}
		f.report(ctx, formErr)
		if attempt >= f.r.maxAttempts {
			return render.Submission{}, fmt.Errorf("%w: %w", ErrSubmitRejected, err)
		}

		for _, fieldErr := range formErr.Fields {
			field, ok := f.display.Field(fieldErr.FieldID)
			if !ok {
				continue
			}
			if err := f.ask(ctx, field); err != nil {
				return render.Submission{}, err
			}
		}
		if err := f.askVisible(ctx); err != nil {
			return render.Submission{}, err
		}
	}
}

// askVisible prompts every visible field not asked yet, repeating passes
// until a pass asks nothing. Fields revealed by a later answer are picked up
// by the next pass even when they come earlier in schema order.
func (f *fill) askVisible(ctx context.Context) error {
	for {
		progressed := false
		for _, field := range f.display.Fields {
			if f.asked[field.ID] || !f.sess.Visible(field.ID) {
				continue
			}
			if err := f.ask(ctx, field); err != nil {
				return err
			}
			f.asked[field.ID] = true
			progressed = true
		}
		if !progressed {
			return nil
		}
	}
}

func (f *fill) report(ctx context.Context, formErr *validation.FormError) {
	for _, fieldErr := range formErr.Fields {
		field, ok := f.display.Field(fieldErr.FieldID)
		if !ok {
			continue
		}
		f.info(ctx, f.r.theme.ErrorPrefix+field.Label+": "+render.Message(field, fieldErr.Kind))
	}
}

func (f *fill) info(ctx context.Context, msg string) {
	if err := f.r.driver.Info(ctx, msg); err != nil {
		f.r.logger.Debug("tui info message dropped", "error", err)
	}
}

// ask prompts a single field. field carries display text; stored answers use
// the untranslated options of the session schema.
func (f *fill) ask(ctx context.Context, field model.Field) error {
	original, _ := f.sess.Schema().Field(field.ID)
	current, _ := f.sess.Value(field.ID)

	message := field.Label
	if field.Required {
		message += " *"
	}
	help := field.Placeholder

	switch field.Kind {
	case model.KindToggle:
		answer, err := f.r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current.Bool(), Help: help})
		if err != nil {
			return err
		}
		return f.sess.Set(field.ID, model.Bool(answer))

	case model.KindSelect, model.KindRadio:
		if len(field.Options) == 0 {
			f.info(ctx, f.r.theme.InfoPrefix+field.Label+": "+msgNoOptions)
			return nil
		}
		idx, err := f.r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      field.Options,
			DefaultIndex: indexOf(original.Options, current.Text()),
			Help:         help,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(original.Options) {
			return f.sess.Clear(field.ID)
		}
		return f.sess.Set(field.ID, model.Text(original.Options[idx]))

	case model.KindCheckbox:
		if len(field.Options) == 0 {
			f.info(ctx, f.r.theme.InfoPrefix+field.Label+": "+msgNoOptions)
			return nil
		}
		picked, err := f.r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  field.Options,
			Defaults: indicesOf(original.Options, current.List()),
			Help:     help,
		})
		if err != nil {
			return err
		}
		selected := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(original.Options) {
				selected = append(selected, original.Options[idx])
			}
		}
		return f.sess.Set(field.ID, model.List(selected...))

	case model.KindLongText:
		answer, err := f.r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current.Text(), Help: help})
		if err != nil {
			return err
		}
		return f.sess.Set(field.ID, model.Text(answer))
	}

	for {
		answer, err := f.r.driver.Input(ctx, InputConfig{Message: message, Default: current.String(), Help: help})
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(answer)
		if problem := inlineProblem(field, answer); problem != "" {
			f.info(ctx, f.r.theme.ErrorPrefix+field.Label+": "+problem)
			continue
		}
		return f.sess.Set(field.ID, valueFor(field.Kind, answer))
	}
}

// inlineProblem rejects malformed single-line answers before they are stored.
// Empty answers pass; required checks happen at submit.
func inlineProblem(field model.Field, answer string) string {
	if answer == "" {
		return ""
	}
	switch field.Kind {
	case model.KindEmail:
		if !validation.IsEmail(answer) {
			return render.Message(field, validation.ErrInvalidEmail)
		}
	case model.KindPhone:
		if !validation.IsPhone(answer) {
			return render.Message(field, validation.ErrInvalidPhone)
		}
	case model.KindNumber:
		if math.IsNaN(model.ParseNumber(answer)) {
			return msgInvalidNumber
		}
	case model.KindDate:
		if _, err := time.Parse(dateLayout, answer); err != nil {
			return msgInvalidDate
		}
	case model.KindFile:
		if _, err := os.Stat(answer); err != nil {
			return msgFileNotFound
		}
	}
	return ""
}

func valueFor(kind model.FieldKind, answer string) model.Value {
	switch kind.Shape() {
	case model.ShapeNumber:
		if answer == "" {
			return model.Value{}
		}
		return model.Number(answer)
	case model.ShapeBlob:
		if answer == "" {
			return model.Value{}
		}
		return model.Blob(answer)
	default:
		return model.Text(answer)
	}
}

func (r *Renderer) serialize(ctx context.Context, schema model.FormSchema, submission render.Submission, options render.RenderOptions) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		values := url.Values{}
		for _, id := range submission.Responses.Keys() {
			value := submission.Responses[id]
			if value.Shape() == model.ShapeList {
				for _, item := range value.List() {
					values.Add(id, item)
				}
				continue
			}
			values.Set(id, value.String())
		}
		return []byte(values.Encode()), nil
	case OutputFormatPrettyText:
		return text.New().Render(ctx, schema, render.RenderOptions{
			Values:      submission.Responses,
			SubmittedAt: submission.SubmittedAt,
			Locale:      options.Locale,
			Translator:  options.Translator,
			OnMissing:   options.OnMissing,
		})
	default:
		out, err := submission.Encode()
		if err != nil {
			return nil, fmt.Errorf("tui: %w", err)
		}
		return out, nil
	}
}
