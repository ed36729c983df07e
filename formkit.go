// Package formkit is the top-level entry point of the form engine. It wraps
// the orchestrator, the document loader and the validation pass for callers
// that want a single import.
package formkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	internalloader "github.com/goliatone/go-formkit/internal/loader"
	"github.com/goliatone/go-formkit/pkg/catalog"
	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/orchestrator"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// Request aliases orchestrator.Request for callers of NewOrchestrator.
type Request = orchestrator.Request

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader constructs a document loader for files, an fs.FS or URLs while
// keeping the concrete type hidden from consumers.
func NewLoader(logger *slog.Logger, options ...schema.LoaderOption) schema.Loader {
	return internalloader.New(schema.NewLoaderOptions(options...), logger)
}

// SchemaFromDescription builds a form from free text using the embedded
// catalog keyword rules.
func SchemaFromDescription(description string) model.FormSchema {
	return catalog.Default().FromDescription(description)
}

// DecodeData reads answers from JSON. Both a submission file
// ({formTitle, submittedAt, responses}) and a bare id-to-answer object are
// accepted; answers are coerced onto the kinds declared by form.
func DecodeData(form model.FormSchema, raw []byte) (model.FormData, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("formkit: decode data: %w", err)
	}
	if _, ok := probe["responses"]; ok {
		if _, titled := probe["formTitle"]; titled {
			submission, err := render.ParseSubmission(form, raw)
			if err != nil {
				return nil, fmt.Errorf("formkit: %w", err)
			}
			return submission.Responses, nil
		}
	}

	var answers map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&answers); err != nil {
		return nil, fmt.Errorf("formkit: decode data: %w", err)
	}
	data, err := model.NormalizeData(form, answers)
	if err != nil {
		return nil, fmt.Errorf("formkit: %w", err)
	}
	return data, nil
}

// ValidateJSON imports a JSON form definition, decodes the answers with
// DecodeData and runs the full validation pass. Field failures are reported
// in the Result; the error covers malformed input only.
func ValidateJSON(schemaJSON, dataJSON []byte, opts ...validation.Option) (validation.Result, error) {
	form, err := schema.ImportJSON(schemaJSON)
	if err != nil {
		return validation.Result{}, fmt.Errorf("formkit: %w", err)
	}
	data, err := DecodeData(form, dataJSON)
	if err != nil {
		return validation.Result{}, err
	}
	return validation.ValidateAll(form, data, opts...), nil
}
