package render

import (
	"context"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Renderer converts a form schema plus its answers into a byte representation
// (submission JSON, printable HTML, plain text, an interactive session).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, schema model.FormSchema, options RenderOptions) ([]byte, error)
}
