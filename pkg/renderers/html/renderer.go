// Package html renders a printable review page of a submission with pongo2.
// Answers pass through a bluemonday policy before they reach the page.
package html

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	rendertemplate "github.com/goliatone/go-formkit/pkg/render/template"
)

// Name is the registry key of the renderer.
const Name = "html"

const reviewTemplate = "templates/review.html"

//go:embed templates/*.html
var templatesFS embed.FS

// TemplatesFS exposes the built-in templates so callers can extend them.
func TemplatesFS() fs.FS {
	return templatesFS
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	policy           *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/review.html.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithPolicy replaces the sanitising policy applied to answers.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
	policy    *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), policy: bluemonday.UGCPolicy()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		source := rendertemplate.WithFS(cfg.templateFS)
		if cfg.templatesDir != "" {
			source = rendertemplate.WithBaseDir(cfg.templatesDir)
		}
		engine, err := rendertemplate.New(
			source,
			rendertemplate.WithExtension(".html"),
			rendertemplate.WithGlobalData(map[string]any{"lang": "en"}),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer, policy: cfg.policy}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

type viewEntry struct {
	FieldID string `json:"fieldId"`
	Label   string `json:"label"`
	Kind    string `json:"type"`
	Display string `json:"display"`
	Empty   bool   `json:"empty"`
}

type viewError struct {
	Label    string   `json:"label"`
	Messages []string `json:"messages"`
}

type view struct {
	Lang         string      `json:"lang,omitempty"`
	Title        string      `json:"title"`
	SubmittedAt  string      `json:"submittedAt"`
	DownloadName string      `json:"downloadName"`
	Entries      []viewEntry `json:"entries"`
	Errors       []viewError `json:"errors"`
	FormErrors   []string    `json:"formErrors"`
}

func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	display := render.LocalizeSchema(schema, options)
	data := view{
		Lang:         options.Locale,
		Title:        display.Title,
		SubmittedAt:  options.Timestamp().UTC().Format(render.SubmissionTimeLayout),
		DownloadName: render.DownloadName(schema.Title),
		Entries:      []viewEntry{},
		Errors:       []viewError{},
		FormErrors:   append([]string{}, options.FormErrors...),
	}
	for _, entry := range render.Review(display, options.Values) {
		data.Entries = append(data.Entries, viewEntry{
			FieldID: entry.FieldID,
			Label:   entry.Label,
			Kind:    string(entry.Kind),
			Display: r.sanitize(entry.Display),
			Empty:   entry.Empty,
		})
	}
	for _, field := range display.Fields {
		if msgs := options.Errors[field.ID]; len(msgs) > 0 {
			data.Errors = append(data.Errors, viewError{Label: field.Label, Messages: msgs})
		}
	}

	result, err := r.templates.RenderTemplate(reviewTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// sanitize keeps line breaks of long answers and strips markup the policy
// does not allow. The template prints the result with |safe.
func (r *Renderer) sanitize(value string) string {
	withBreaks := strings.ReplaceAll(strings.ReplaceAll(value, "\r\n", "\n"), "\n", "<br>")
	return strings.TrimSpace(r.policy.Sanitize(withBreaks))
}

