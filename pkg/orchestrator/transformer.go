package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Transformer mutates a resolved FormSchema before it is validated.
// Implementations can relabel fields, rename ids or inject options.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormSchema) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormSchema) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormSchema) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// Chain runs transformers in order, stopping at the first error.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, form *model.FormSchema) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := t.Transform(ctx, form); err != nil {
				return err
			}
		}
		return nil
	})
}

// JSONPresetTransformer applies declarative overrides loaded from a JSON file:
//
//	{
//	  "title": "Clinic Intake",
//	  "fields": {
//	    "full-name": {"label": "Patient name", "required": true},
//	    "services": {"options": ["OT", "PT"], "rename": "requested-services"}
//	  }
//	}
//
// Renames also rewrite conditional rules that point at the old id.
type JSONPresetTransformer struct {
	document jsonTransformDocument
}

type jsonTransformDocument struct {
	Title  string                    `json:"title"`
	Fields map[string]jsonFieldPatch `json:"fields"`
}

type jsonFieldPatch struct {
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder"`
	Required    *bool    `json:"required"`
	Options     []string `json:"options"`
	Rows        *int     `json:"rows"`
	Rename      string   `json:"rename"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonTransformDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a JSON transformer document from the
// provided filesystem path.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the declarative patches onto the supplied schema. Patches
// run in field id order so renames are deterministic.
func (t *JSONPresetTransformer) Transform(ctx context.Context, form *model.FormSchema) error {
	if form == nil {
		return errors.New("json preset transformer: schema is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if strings.TrimSpace(t.document.Title) != "" {
		form.Title = strings.TrimSpace(t.document.Title)
	}

	ids := make([]string, 0, len(t.document.Fields))
	for id := range t.document.Fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx := fieldIndex(form.Fields, id)
		if idx < 0 {
			return fmt.Errorf("json preset transformer: field %q not found", id)
		}
		patch := t.document.Fields[id]
		applyFieldPatch(&form.Fields[idx], patch)
		if rename := strings.TrimSpace(patch.Rename); rename != "" && rename != id {
			if fieldIndex(form.Fields, rename) >= 0 {
				return fmt.Errorf("json preset transformer: rename %q to %q: id already in use", id, rename)
			}
			renameField(form, idx, rename)
		}
	}
	return nil
}

func applyFieldPatch(field *model.Field, patch jsonFieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Required != nil {
		field.Required = *patch.Required
	}
	if len(patch.Options) > 0 {
		field.Options = append([]string(nil), patch.Options...)
	}
	if patch.Rows != nil {
		field.Rows = *patch.Rows
	}
}

func renameField(form *model.FormSchema, idx int, to string) {
	from := form.Fields[idx].ID
	form.Fields[idx].ID = to
	for i := range form.Fields {
		rule := form.Fields[i].Conditional
		if rule == nil || rule.DependsOn != from {
			continue
		}
		updated := *rule
		updated.DependsOn = to
		form.Fields[i].Conditional = &updated
	}
}

func fieldIndex(fields []model.Field, id string) int {
	for i := range fields {
		if fields[i].ID == id {
			return i
		}
	}
	return -1
}
