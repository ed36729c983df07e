package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formkit/pkg/model"
)

var (
	ErrOperationNotFound = errors.New("openapi: operation not found")
	ErrNoRequestBody     = errors.New("openapi: operation has no request body schema")
	ErrAmbiguous         = errors.New("openapi: operation id required")
	errEmptyDocument     = errors.New("openapi: document payload is empty")
)

// Operation summarises an operation found in a document.
type Operation struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Summary string `json:"summary,omitempty"`
	HasBody bool   `json:"hasBody"`
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger routes importer diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithValidation toggles kin-openapi document validation before import.
func WithValidation(enabled bool) Option {
	return func(i *Importer) {
		i.validate = enabled
	}
}

// WithExternalRefs allows $ref pointers to other files or URLs.
func WithExternalRefs(enabled bool) Option {
	return func(i *Importer) {
		i.externalRefs = enabled
	}
}

// Importer maps OpenAPI operations onto form schemas.
type Importer struct {
	logger       *slog.Logger
	validate     bool
	externalRefs bool
}

// NewImporter constructs an Importer. Validation is on by default.
func NewImporter(opts ...Option) *Importer {
	i := &Importer{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

type operationEntry struct {
	Operation
	op *openapi3.Operation
}

func (i *Importer) load(ctx context.Context, raw []byte) ([]operationEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errEmptyDocument
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = i.externalRefs

	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	var entries []operationEntry
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			entries = append(entries, operationEntry{
				Operation: Operation{
					ID:      id,
					Method:  strings.ToUpper(method),
					Path:    path,
					Summary: op.Summary,
					HasBody: requestSchema(op) != nil,
				},
				op: op,
			})
		}
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].ID < entries[b].ID })
	return entries, nil
}

// Operations lists the operations of a document ordered by id.
func (i *Importer) Operations(ctx context.Context, raw []byte) ([]Operation, error) {
	entries, err := i.load(ctx, raw)
	if err != nil {
		return nil, err
	}
	out := make([]Operation, len(entries))
	for idx, entry := range entries {
		out[idx] = entry.Operation
	}
	return out, nil
}

// Import builds a form from the request body of operationID. When
// operationID is empty the document must hold exactly one operation with a
// request body.
func (i *Importer) Import(ctx context.Context, raw []byte, operationID string) (model.FormSchema, error) {
	entries, err := i.load(ctx, raw)
	if err != nil {
		return model.FormSchema{}, err
	}

	entry, err := pickOperation(entries, operationID)
	if err != nil {
		return model.FormSchema{}, err
	}

	body := requestSchema(entry.op)
	if body == nil {
		return model.FormSchema{}, fmt.Errorf("%w: %s", ErrNoRequestBody, entry.ID)
	}

	title := strings.TrimSpace(entry.op.Summary)
	if title == "" {
		title = model.DefaultLabeler(entry.ID)
	}

	m := &mapper{logger: i.logger, visiting: make(map[*openapi3.Schema]bool)}
	fields := m.fields("", body)
	form := model.FormSchema{Title: title, Fields: fields}
	if form.Fields == nil {
		form.Fields = []model.Field{}
	}
	if err := model.ValidateSchema(form); err != nil {
		return model.FormSchema{}, fmt.Errorf("openapi: %s: %w", entry.ID, err)
	}
	for _, issue := range model.Lint(form) {
		i.logger.Warn("imported schema issue", "operation", entry.ID, "field", issue.FieldID, "kind", issue.Kind, "message", issue.Message)
	}
	i.logger.Debug("operation imported", "operation", entry.ID, "fields", len(form.Fields))
	return form, nil
}

func pickOperation(entries []operationEntry, operationID string) (operationEntry, error) {
	if operationID != "" {
		for _, entry := range entries {
			if entry.ID == operationID {
				return entry, nil
			}
		}
		return operationEntry{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	var candidates []operationEntry
	for _, entry := range entries {
		if entry.HasBody {
			candidates = append(candidates, entry)
		}
	}
	switch len(candidates) {
	case 0:
		return operationEntry{}, ErrNoRequestBody
	case 1:
		return candidates[0], nil
	default:
		ids := make([]string, len(candidates))
		for idx, c := range candidates {
			ids[idx] = c.ID
		}
		return operationEntry{}, fmt.Errorf("%w: choose one of %s", ErrAmbiguous, strings.Join(ids, ", "))
	}
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}
