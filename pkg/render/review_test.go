package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
)

func TestReview_DisplayFormatting(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{
		Title: "Review",
		Fields: []model.Field{
			{ID: "name", Kind: model.KindShortText, Label: "Name"},
			{ID: "skipped", Kind: model.KindShortText, Label: "Never touched"},
			{ID: "notes", Kind: model.KindLongText, Label: "Notes"},
			{ID: "services", Kind: model.KindCheckbox, Label: "Services", Options: []string{"OT", "ABA"}},
			{ID: "none", Kind: model.KindCheckbox, Label: "None", Options: []string{"x"}},
			{ID: "consent", Kind: model.KindToggle, Label: "Consent"},
			{ID: "dob", Kind: model.KindDate, Label: "Date of Birth"},
			{ID: "odd-date", Kind: model.KindDate, Label: "Odd Date"},
			{ID: "upload", Kind: model.KindFile, Label: "Upload"},
			{ID: "sig", Kind: model.KindSignature, Label: "Signature"},
		},
	}
	data := model.FormData{
		"name":     model.Text("Sam"),
		"notes":    model.Text(""),
		"services": model.List("OT", "ABA"),
		"none":     model.List(),
		"consent":  model.Bool(false),
		"dob":      model.Text("2018-07-04"),
		"odd-date": model.Text("sometime"),
		"upload":   model.Blob("report.pdf"),
		"sig":      model.Blob("data:image/png;base64,AAAA"),
	}

	got := render.Review(schema, data)
	want := []render.ReviewEntry{
		{FieldID: "name", Label: "Name", Kind: model.KindShortText, Display: "Sam"},
		{FieldID: "notes", Label: "Notes", Kind: model.KindLongText, Display: render.NoResponse, Empty: true},
		{FieldID: "services", Label: "Services", Kind: model.KindCheckbox, Display: "OT, ABA"},
		{FieldID: "none", Label: "None", Kind: model.KindCheckbox, Display: render.NoResponse, Empty: true},
		{FieldID: "consent", Label: "Consent", Kind: model.KindToggle, Display: "No"},
		{FieldID: "dob", Label: "Date of Birth", Kind: model.KindDate, Display: "7/4/2018"},
		{FieldID: "odd-date", Label: "Odd Date", Kind: model.KindDate, Display: "sometime"},
		{FieldID: "upload", Label: "Upload", Kind: model.KindFile, Display: "File uploaded"},
		{FieldID: "sig", Label: "Signature", Kind: model.KindSignature, Display: "Signature captured"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("review mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayValue_ToggleYes(t *testing.T) {
	t.Parallel()

	field := model.Field{ID: "t", Kind: model.KindToggle, Label: "T"}
	if got := render.DisplayValue(field, model.Bool(true)); got != "Yes" {
		t.Fatalf("DisplayValue = %q, want Yes", got)
	}
}
