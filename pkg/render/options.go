package render

import (
	"time"

	"github.com/goliatone/go-formkit/pkg/model"
)

// RenderOptions describe per-request data that renderers use to customise
// their output without touching the schema.
type RenderOptions struct {
	// Values are the current answers keyed by field id.
	Values model.FormData
	// Errors carries field-level messages keyed by field id, usually built
	// with ErrorMessages.
	Errors map[string][]string
	// FormErrors are messages not tied to a single field.
	FormErrors []string
	// SubmittedAt stamps submission output. The zero value means "now".
	SubmittedAt time.Time
	// Now is the clock used when SubmittedAt is zero. Defaults to time.Now.
	Now func() time.Time
	// Locale and Translator localise labels and messages. A nil Translator
	// keeps the built-in English text.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// Timestamp returns SubmittedAt, falling back to the configured clock.
func (o RenderOptions) Timestamp() time.Time {
	if !o.SubmittedAt.IsZero() {
		return o.SubmittedAt
	}
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
