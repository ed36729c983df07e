package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-formkit/pkg/model"
)

// NoResponse is shown for answered fields whose display text is empty.
const NoResponse = "No response"

// ReviewEntry is one line of the submission review.
type ReviewEntry struct {
	FieldID string          `json:"fieldId"`
	Label   string          `json:"label"`
	Kind    model.FieldKind `json:"type"`
	Display string          `json:"display"`
	// Empty is set when Display fell back to NoResponse.
	Empty bool `json:"empty,omitempty"`
}

// Review lists the answered fields of schema in schema order with their
// display text. Fields never touched are skipped.
func Review(schema model.FormSchema, data model.FormData) []ReviewEntry {
	entries := make([]ReviewEntry, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		value, ok := data.Get(field.ID)
		if !ok {
			continue
		}
		display := DisplayValue(field, value)
		entry := ReviewEntry{
			FieldID: field.ID,
			Label:   field.Label,
			Kind:    field.Kind,
			Display: display,
		}
		if display == "" {
			entry.Display = NoResponse
			entry.Empty = true
		}
		entries = append(entries, entry)
	}
	return entries
}

// DisplayValue formats a single answer for review output. It returns "" when
// there is nothing to show.
func DisplayValue(field model.Field, value model.Value) string {
	switch field.Kind {
	case model.KindCheckbox:
		if value.Shape() == model.ShapeList {
			return strings.Join(value.List(), ", ")
		}
	case model.KindToggle:
		if truthy(value) {
			return "Yes"
		}
		return "No"
	case model.KindDate:
		if text := value.String(); text != "" {
			return formatDate(text)
		}
	case model.KindFile:
		if !value.IsEmpty() {
			return "File uploaded"
		}
	case model.KindSignature:
		if !value.IsEmpty() {
			return "Signature captured"
		}
	}
	return value.String()
}

// formatDate renders a date answer as M/D/YYYY. Answers that do not parse are
// shown as entered.
func formatDate(raw string) string {
	layouts := []string{"2006-01-02", time.RFC3339Nano, "2006-01-02T15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
		}
	}
	return raw
}

func truthy(value model.Value) bool {
	switch value.Shape() {
	case model.ShapeBool:
		return value.Bool()
	case model.ShapeList:
		return true
	case model.ShapeNumber:
		n := value.Numeric()
		return !math.IsNaN(n) && n != 0
	default:
		return value.Text() != ""
	}
}
