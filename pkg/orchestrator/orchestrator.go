package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	internalloader "github.com/goliatone/go-formkit/internal/loader"
	"github.com/goliatone/go-formkit/pkg/catalog"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/openapi"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/renderers/html"
	"github.com/goliatone/go-formkit/pkg/renderers/jsonexport"
	"github.com/goliatone/go-formkit/pkg/renderers/text"
	"github.com/goliatone/go-formkit/pkg/schema"
)

const defaultRendererName = jsonexport.Name

var (
	// ErrEmptyRequest is returned when a request names no schema source.
	ErrEmptyRequest = errors.New("orchestrator: request names no schema source")
	// ErrConflictingRequest is returned when a request names more than one
	// schema source.
	ErrConflictingRequest = errors.New("orchestrator: request names more than one schema source")
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithCatalog replaces the embedded template catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = c
	}
}

// WithImporter injects the OpenAPI importer.
func WithImporter(importer *openapi.Importer) Option {
	return func(o *Orchestrator) {
		o.importer = importer
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when Render is called
// without a name.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSchemaTransformer registers a Transformer that runs on every resolved
// schema before it is validated.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithLogger routes lint warnings and pipeline events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator turns a Request into a validated FormSchema and renders
// schemas through a name-keyed registry. Defaults cover the embedded catalog,
// file and fs loading, and the json, text and html renderers.
type Orchestrator struct {
	loader          schema.Loader
	catalog         *catalog.Catalog
	importer        *openapi.Importer
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	logger          *slog.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// OpenAPIRequest selects an operation of an OpenAPI document. Raw wins over
// Source when both are set.
type OpenAPIRequest struct {
	Raw         []byte
	Source      schema.Source
	OperationID string
}

// Request names exactly one place a form schema comes from.
type Request struct {
	// TemplateID picks a catalog template.
	TemplateID string
	// Description is matched against the catalog keyword rules.
	Description string
	// Source points at a JSON or YAML form definition.
	Source schema.Source
	// Document is an already loaded form definition.
	Document *schema.Document
	// OpenAPI imports the request body of an operation.
	OpenAPI *OpenAPIRequest
}

func (r Request) count() int {
	n := 0
	for _, set := range []bool{
		strings.TrimSpace(r.TemplateID) != "",
		strings.TrimSpace(r.Description) != "",
		r.Source != nil,
		r.Document != nil,
		r.OpenAPI != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Resolve produces the schema described by req. The result passes
// model.ValidateSchema; lint findings are logged as warnings.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (model.FormSchema, error) {
	if ctx == nil {
		return model.FormSchema{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.FormSchema{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.FormSchema{}, err
	}

	switch req.count() {
	case 0:
		return model.FormSchema{}, ErrEmptyRequest
	case 1:
	default:
		return model.FormSchema{}, ErrConflictingRequest
	}

	form, err := o.resolve(ctx, req)
	if err != nil {
		return model.FormSchema{}, err
	}
	if err := o.applyTransformer(ctx, &form); err != nil {
		return model.FormSchema{}, err
	}
	if err := model.ValidateSchema(form); err != nil {
		return model.FormSchema{}, fmt.Errorf("orchestrator: %w", err)
	}
	for _, issue := range model.Lint(form) {
		o.logger.Warn("schema lint", "schema", form.Title, "kind", issue.Kind, "field", issue.FieldID, "message", issue.Message)
	}
	return form, nil
}

func (o *Orchestrator) resolve(ctx context.Context, req Request) (model.FormSchema, error) {
	switch {
	case strings.TrimSpace(req.TemplateID) != "":
		tpl, err := o.catalog.Get(strings.TrimSpace(req.TemplateID))
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("orchestrator: %w", err)
		}
		return tpl.Schema(), nil

	case strings.TrimSpace(req.Description) != "":
		form := o.catalog.FromDescription(req.Description)
		o.logger.Debug("schema generated", "family", catalog.Family(req.Description), "fields", len(form.Fields))
		return form, nil

	case req.Document != nil:
		return documentSchema(*req.Document)

	case req.Source != nil:
		doc, err := o.load(ctx, req.Source)
		if err != nil {
			return model.FormSchema{}, err
		}
		return documentSchema(doc)

	default:
		raw := req.OpenAPI.Raw
		if len(raw) == 0 {
			if req.OpenAPI.Source == nil {
				return model.FormSchema{}, errors.New("orchestrator: openapi request needs raw bytes or a source")
			}
			doc, err := o.load(ctx, req.OpenAPI.Source)
			if err != nil {
				return model.FormSchema{}, err
			}
			raw = doc.Raw()
		}
		form, err := o.importer.Import(ctx, raw, req.OpenAPI.OperationID)
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("orchestrator: %w", err)
		}
		return form, nil
	}
}

func (o *Orchestrator) load(ctx context.Context, src schema.Source) (schema.Document, error) {
	doc, err := o.loader.Load(ctx, src)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func documentSchema(doc schema.Document) (model.FormSchema, error) {
	form, err := doc.Schema()
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("orchestrator: %w", err)
	}
	return form, nil
}

// Render hands schema to the named renderer, or the default one when name is
// empty.
func (o *Orchestrator) Render(ctx context.Context, form model.FormSchema, name string, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	renderer, err := o.rendererFor(name)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, form, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Generate resolves req and renders the result in one call.
func (o *Orchestrator) Generate(ctx context.Context, req Request, rendererName string, options render.RenderOptions) ([]byte, error) {
	form, err := o.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return o.Render(ctx, form, rendererName, options)
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

// Catalog exposes the template catalog in use.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormSchema) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform schema: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalloader.New(schema.NewLoaderOptions(), o.logger)
	}
	if o.catalog == nil {
		o.catalog = catalog.Default()
	}
	if o.importer == nil {
		o.importer = openapi.NewImporter(openapi.WithLogger(o.logger))
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		o.registry.MustRegister(jsonexport.New())
		o.registry.MustRegister(text.New())
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
