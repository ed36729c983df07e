// Package text renders a plain-text review of a submission.
package text

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
)

// Name is the registry key of the renderer.
const Name = "text"

type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes the title, the submission time, one "Label: answer" line per
// answered field and, when present, the error messages in schema order.
func (r *Renderer) Render(ctx context.Context, schema model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	display := render.LocalizeSchema(schema, options)

	var buf bytes.Buffer
	fmt.Fprintln(&buf, display.Title)
	fmt.Fprintln(&buf, strings.Repeat("=", len([]rune(display.Title))))
	fmt.Fprintf(&buf, "Submitted at: %s\n", options.Timestamp().UTC().Format(render.SubmissionTimeLayout))

	entries := render.Review(display, options.Values)
	buf.WriteString("\n")
	if len(entries) == 0 {
		fmt.Fprintln(&buf, render.NoResponse)
	}
	for _, entry := range entries {
		fmt.Fprintf(&buf, "%s: %s\n", entry.Label, entry.Display)
	}

	lines := errorLines(display, options)
	if len(lines) > 0 {
		buf.WriteString("\nErrors:\n")
		for _, line := range lines {
			fmt.Fprintf(&buf, "- %s\n", line)
		}
	}
	return buf.Bytes(), nil
}

func errorLines(schema model.FormSchema, options render.RenderOptions) []string {
	var lines []string
	for _, field := range schema.Fields {
		for _, msg := range options.Errors[field.ID] {
			lines = append(lines, field.Label+": "+msg)
		}
	}
	return append(lines, options.FormErrors...)
}
