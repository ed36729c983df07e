package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when a key is
// looked up without a Translator configured.
var ErrMissingTranslator = errors.New("render: translator is not configured")

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls fn.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler decides the text used when a key cannot be
// translated. args carries {"default": fallback} as its first element.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// Translation keys. Field keys are built per field id.
const (
	KeyFormTitle = "form.title"

	fieldLabelKeyFormat       = "fields.%s.label"
	fieldPlaceholderKeyFormat = "fields.%s.placeholder"
	fieldOptionKeyFormat      = "fields.%s.options.%d"
)

// LocalizeSchema returns a copy of schema with the title, labels and
// placeholders translated. Options are translated for display only; callers
// must keep the untranslated schema for evaluation because conditional rules
// compare against the original option text.
func LocalizeSchema(schema model.FormSchema, opts RenderOptions) model.FormSchema {
	out := schema.Clone()
	if opts.Translator == nil && opts.OnMissing == nil {
		return out
	}

	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	out.Title = translate(opts.Locale, KeyFormTitle, out.Title, opts.Translator, onMissing)
	for i := range out.Fields {
		field := &out.Fields[i]
		field.Label = translate(opts.Locale, fieldKey(fieldLabelKeyFormat, field.ID), field.Label, opts.Translator, onMissing)
		if field.Placeholder != "" {
			field.Placeholder = translate(opts.Locale, fieldKey(fieldPlaceholderKeyFormat, field.ID), field.Placeholder, opts.Translator, onMissing)
		}
		for j := range field.Options {
			field.Options[j] = translate(opts.Locale, optionKey(field.ID, j), field.Options[j], opts.Translator, onMissing)
		}
	}
	return out
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// missingTranslationDefault prefers the built-in text and falls back to the
// key itself.
func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	if len(args) > 0 {
		if defaults, ok := args[0].(map[string]any); ok {
			if fallback, ok := defaults["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

func fieldKey(format, id string) string {
	return fmt.Sprintf(format, id)
}

func optionKey(id string, index int) string {
	return fmt.Sprintf(fieldOptionKeyFormat, id, index)
}
