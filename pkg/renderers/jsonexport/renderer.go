// Package jsonexport renders the downloadable submission record.
package jsonexport

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
)

// Name is the registry key of the renderer.
const Name = "json"

// Renderer encodes {formTitle, submittedAt, responses} as indented JSON.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render stamps the submission with options.Timestamp and encodes it.
func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	submission := render.NewSubmission(schema, options.Values, options.Timestamp())
	out, err := submission.Encode()
	if err != nil {
		return nil, fmt.Errorf("jsonexport renderer: encode: %w", err)
	}
	return out, nil
}
