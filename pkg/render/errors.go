package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/validation"
)

// Message keys for validation errors.
const (
	KeyErrRequired          = "errors.required"
	KeyErrRequiredSelection = "errors.required_selection"
	KeyErrInvalidEmail      = "errors.invalid_email"
	KeyErrInvalidPhone      = "errors.invalid_phone"
)

var defaultMessages = map[string]string{
	KeyErrRequired:          "This field is required",
	KeyErrRequiredSelection: "Please select at least one option",
	KeyErrInvalidEmail:      "Please enter a valid email address",
	KeyErrInvalidPhone:      "Please enter a valid phone number",
}

// ErrorMapping splits messages into field-level entries keyed by field id and
// form-level entries.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// ErrorMessages turns a validation result into display messages. Required
// checkbox groups read "Please select at least one option".
func ErrorMessages(schema model.FormSchema, result validation.Result, opts RenderOptions) ErrorMapping {
	mapping := ErrorMapping{}
	if len(result.Order) == 0 {
		return mapping
	}

	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	mapping.Fields = make(map[string][]string, len(result.Order))
	for _, id := range result.Order {
		field, _ := schema.Field(id)
		key := messageKey(field, result.Errors[id])
		msg := translate(opts.Locale, key, defaultMessages[key], opts.Translator, onMissing)
		mapping.Fields[id] = []string{msg}
	}
	return mapping
}

// Message returns the English text for a single error kind on field.
func Message(field model.Field, kind validation.ErrorKind) string {
	return defaultMessages[messageKey(field, kind)]
}

func messageKey(field model.Field, kind validation.ErrorKind) string {
	switch kind {
	case validation.ErrRequired:
		if field.Kind == model.KindCheckbox {
			return KeyErrRequiredSelection
		}
		return KeyErrRequired
	case validation.ErrInvalidEmail:
		return KeyErrInvalidEmail
	case validation.ErrInvalidPhone:
		return KeyErrInvalidPhone
	default:
		return string(kind)
	}
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload maps an external error payload onto field ids. Keys may be
// bare ids, dotted paths or JSON pointers such as "/responses/email"; wrapper
// segments and array indexes are ignored. Keys that match no field become
// form-level messages so nothing is lost.
func MapErrorPayload(schema model.FormSchema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		return mapping
	}

	index := schema.Index()
	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		id, formLevel := mapErrorPath(rawPath, index)
		if formLevel {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[id] = normalizeMessages(append(mapping.Fields[id], normalized...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, index map[string]int) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}
	if _, ok := index[trimmed]; ok {
		return trimmed, false
	}

	for _, segment := range dropWrapperSegments(parsePathSegments(trimmed)) {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if _, ok := index[segment]; ok {
			return segment, false
		}
		break
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$.")
	clean = strings.TrimLeft(clean, "#/.$")

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":      {},
		"request":   {},
		"payload":   {},
		"data":      {},
		"responses": {},
		"fields":    {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
