package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/schema"
)

func sampleSchema() model.FormSchema {
	return model.FormSchema{
		Title: "ABA Assessment",
		Fields: []model.Field{
			{ID: "client-name", Kind: model.KindShortText, Label: "Client Name", Placeholder: "Full name", Required: true},
			{
				ID:       "diagnosis",
				Kind:     model.KindSelect,
				Label:    "Primary Diagnosis",
				Required: true,
				Options:  []string{"Autism Spectrum Disorder", "ADHD", "Developmental Delay", "Other (please specify)"},
			},
			{
				ID:       "diagnosis-other",
				Kind:     model.KindShortText,
				Label:    "Please specify diagnosis",
				Required: true,
				Conditional: &model.ConditionalRule{
					DependsOn: "diagnosis",
					Operator:  model.OperatorEquals,
					Comparand: "Other (please specify)",
				},
			},
			{ID: "notes", Kind: model.KindLongText, Label: "Notes", Rows: 4},
			{ID: "tags", Kind: model.KindCheckbox, Label: "Tags", Options: []string{}},
			{
				ID:    "age-note",
				Kind:  model.KindShortText,
				Label: "Age note",
				Conditional: &model.ConditionalRule{
					DependsOn: "age",
					Operator:  "between",
					Comparand: "",
				},
			},
		},
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	want := sampleSchema()
	encoded, err := schema.Export(want)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, err := schema.Import(encoded)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_Format(t *testing.T) {
	t.Parallel()

	encoded, err := schema.Export(model.FormSchema{
		Title:  "Tiny",
		Fields: []model.Field{{ID: "a", Kind: model.KindToggle, Label: "A & B"}},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := `{
  "title": "Tiny",
  "fields": [
    {
      "id": "a",
      "type": "toggle",
      "label": "A & B",
      "conditionalLogic": null
    }
  ]
}`
	if diff := cmp.Diff(want, string(encoded)); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_EmptyFields(t *testing.T) {
	t.Parallel()

	encoded, err := schema.Export(model.FormSchema{Title: "Empty"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(string(encoded), `"fields": []`) {
		t.Fatalf("expected empty fields array, got %s", encoded)
	}
}

func TestImportJSON_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		kind schema.ImportErrorKind
		msg  string
	}{
		{"malformed", `{"title":`, schema.ImportMalformed, "Invalid JSON format: Could not parse the file"},
		{"array root", `[1,2]`, schema.ImportNotObject, "Invalid JSON format: File does not contain a valid JSON object"},
		{"string root", `"form"`, schema.ImportNotObject, ""},
		{"missing title", `{"fields":[]}`, schema.ImportShape, "Invalid JSON format: File must contain a title string and fields array"},
		{"numeric title", `{"title":5,"fields":[]}`, schema.ImportShape, ""},
		{"fields object", `{"title":"x","fields":{}}`, schema.ImportShape, ""},
		{"missing label", `{"title":"x","fields":[{"id":"a","type":"text"}]}`, schema.ImportFieldProps, "Invalid JSON format: Some fields are missing required properties (id, type, or label)"},
		{"numeric id", `{"title":"x","fields":[{"id":1,"type":"text","label":"A"}]}`, schema.ImportFieldProps, ""},
		{"unknown type", `{"title":"x","fields":[{"id":"a","type":"slider","label":"A"}]}`, schema.ImportUnknownType, ""},
		{"duplicate id", `{"title":"x","fields":[{"id":"a","type":"text","label":"A"},{"id":"a","type":"text","label":"B"}]}`, schema.ImportDuplicateID, ""},
		{"bad options", `{"title":"x","fields":[{"id":"a","type":"select","label":"A","options":"x"}]}`, schema.ImportInvalidProperty, ""},
		{"bad rule", `{"title":"x","fields":[{"id":"a","type":"text","label":"A","conditionalLogic":"yes"}]}`, schema.ImportInvalidProperty, ""},
		{"trailing data", `{"title":"x","fields":[]} {}`, schema.ImportMalformed, ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := schema.ImportJSON([]byte(tc.raw))
			var importErr *schema.ImportError
			if !errors.As(err, &importErr) {
				t.Fatalf("expected *ImportError, got %v", err)
			}
			if importErr.Kind != tc.kind {
				t.Fatalf("kind = %q, want %q (%v)", importErr.Kind, tc.kind, err)
			}
			if tc.msg != "" && importErr.Message() != tc.msg {
				t.Fatalf("message = %q, want %q", importErr.Message(), tc.msg)
			}
			if got.Title != "" || got.Fields != nil {
				t.Fatalf("no partial schema may be returned, got %+v", got)
			}
		})
	}
}

func TestImportJSON_Normalisation(t *testing.T) {
	t.Parallel()

	raw := `{
		"title": "Loose",
		"fields": [
			{"id": "age", "type": "number", "label": "Age"},
			{"id": "note", "type": "text", "label": "Note", "conditionalLogic": {"fieldId": "age", "operator": "greater_than", "value": 5}},
			{"id": "falsy", "type": "text", "label": "Falsy", "conditionalLogic": false},
			{"id": "rows", "type": "textarea", "label": "Rows", "rows": 3, "extra": "ignored"}
		]
	}`
	got, err := schema.ImportJSON([]byte(raw))
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}

	want := model.FormSchema{
		Title: "Loose",
		Fields: []model.Field{
			{ID: "age", Kind: model.KindNumber, Label: "Age"},
			{
				ID: "note", Kind: model.KindShortText, Label: "Note",
				Conditional: &model.ConditionalRule{DependsOn: "age", Operator: model.OperatorGreaterThan, Comparand: "5"},
			},
			{ID: "falsy", Kind: model.KindShortText, Label: "Falsy"},
			{ID: "rows", Kind: model.KindLongText, Label: "Rows", Rows: 3},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestImportYAML(t *testing.T) {
	t.Parallel()

	raw := `
title: Consent
fields:
  - id: agree
    type: toggle
    label: I agree
    required: true
  - id: reason
    type: textarea
    label: Why not?
    rows: 2
    conditionalLogic:
      fieldId: agree
      operator: equals
      value: false
`
	got, err := schema.Import([]byte(raw))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	want := model.FormSchema{
		Title: "Consent",
		Fields: []model.Field{
			{ID: "agree", Kind: model.KindToggle, Label: "I agree", Required: true},
			{
				ID: "reason", Kind: model.KindLongText, Label: "Why not?", Rows: 2,
				Conditional: &model.ConditionalRule{DependsOn: "agree", Operator: model.OperatorEquals, Comparand: "false"},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}

	if _, err := schema.ImportYAML([]byte("title: [unclosed")); err == nil {
		t.Fatalf("expected malformed YAML to fail")
	}
}

func TestParseSource(t *testing.T) {
	t.Parallel()

	src, err := schema.ParseSource("https://example.com/form.json")
	if err != nil || src.Kind() != schema.SourceKindURL {
		t.Fatalf("ParseSource(url) = %v, %v", src, err)
	}
	src, err = schema.ParseSource("./forms/../forms/intake.json")
	if err != nil || src.Kind() != schema.SourceKindFile || src.Location() != "forms/intake.json" {
		t.Fatalf("ParseSource(file) = %v, %v", src, err)
	}
	if _, err := schema.ParseSource("  "); err == nil {
		t.Fatalf("expected empty location to fail")
	}
}
