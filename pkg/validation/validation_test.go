package validation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/validation"
	"github.com/goliatone/go-formkit/pkg/visibility"
)

func TestValidateField_HiddenNeverFails(t *testing.T) {
	t.Parallel()

	field := model.Field{ID: "email", Kind: model.KindEmail, Label: "Email", Required: true}
	for _, data := range []model.FormData{
		nil,
		{"email": model.Text("")},
		{"email": model.Text("not-an-email")},
	} {
		if got := validation.ValidateField(field, data, false); got != "" {
			t.Fatalf("hidden field returned %q for %v", got, data)
		}
	}
}

func TestValidateField_Required(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field model.Field
		data  model.FormData
		want  validation.ErrorKind
	}{
		{
			name:  "absent",
			field: model.Field{ID: "name", Kind: model.KindShortText, Label: "Name", Required: true},
			data:  model.FormData{},
			want:  validation.ErrRequired,
		},
		{
			name:  "empty string",
			field: model.Field{ID: "name", Kind: model.KindShortText, Label: "Name", Required: true},
			data:  model.FormData{"name": model.Text("")},
			want:  validation.ErrRequired,
		},
		{
			name:  "whitespace is an answer",
			field: model.Field{ID: "name", Kind: model.KindShortText, Label: "Name", Required: true},
			data:  model.FormData{"name": model.Text(" ")},
			want:  "",
		},
		{
			name:  "empty checkbox list",
			field: model.Field{ID: "b", Kind: model.KindCheckbox, Label: "B", Required: true, Options: []string{"x"}},
			data:  model.FormData{"b": model.List()},
			want:  validation.ErrRequired,
		},
		{
			name:  "false toggle is answered",
			field: model.Field{ID: "t", Kind: model.KindToggle, Label: "T", Required: true},
			data:  model.FormData{"t": model.Bool(false)},
			want:  "",
		},
		{
			name:  "required email wins over format",
			field: model.Field{ID: "e", Kind: model.KindEmail, Label: "E", Required: true},
			data:  model.FormData{"e": model.Text("")},
			want:  validation.ErrRequired,
		},
		{
			name:  "optional empty email passes",
			field: model.Field{ID: "e", Kind: model.KindEmail, Label: "E"},
			data:  model.FormData{"e": model.Text("")},
			want:  "",
		},
		{
			name:  "signature blob",
			field: model.Field{ID: "s", Kind: model.KindSignature, Label: "S", Required: true},
			data:  model.FormData{"s": model.Blob("data:image/png;base64,AAAA")},
			want:  "",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := validation.ValidateField(tc.field, tc.data, true); got != tc.want {
				t.Fatalf("ValidateField() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateField_EmailAndPhone(t *testing.T) {
	t.Parallel()

	email := model.Field{ID: "email", Kind: model.KindEmail, Label: "Email"}
	phone := model.Field{ID: "phone", Kind: model.KindPhone, Label: "Phone"}

	cases := []struct {
		field model.Field
		input string
		want  validation.ErrorKind
	}{
		{email, "a@b", validation.ErrInvalidEmail},
		{email, "a@b.com", ""},
		{email, "first.last@clinic.example.org", ""},
		{email, "a b@c.com", validation.ErrInvalidEmail},
		{email, "@b.com", validation.ErrInvalidEmail},
		{phone, "123", validation.ErrInvalidPhone},
		{phone, "+1 (555) 123-4567", ""},
		{phone, "5551234567", ""},
		{phone, "555-CALL-NOW", validation.ErrInvalidPhone},
		{phone, "123456789012345678901", validation.ErrInvalidPhone},
	}

	for _, tc := range cases {
		data := model.FormData{tc.field.ID: model.Text(tc.input)}
		if got := validation.ValidateField(tc.field, data, true); got != tc.want {
			t.Fatalf("%s %q: got %q, want %q", tc.field.Kind, tc.input, got, tc.want)
		}
	}
}

func diagnosisSchema() model.FormSchema {
	return model.FormSchema{
		Title: "ABA Assessment",
		Fields: []model.Field{
			{ID: "client-name", Kind: model.KindShortText, Label: "Client Name", Required: true},
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
			{ID: "parent-email", Kind: model.KindEmail, Label: "Parent Email"},
		},
	}
}

func TestValidateAll_DiagnosisScenario(t *testing.T) {
	t.Parallel()

	schema := diagnosisSchema()

	t.Run("other selected and empty", func(t *testing.T) {
		t.Parallel()
		data := model.FormData{
			"client-name": model.Text("Sam"),
			"diagnosis":   model.Text("Other (please specify)"),
		}
		result := validation.ValidateAll(schema, data)
		if result.Valid {
			t.Fatalf("expected invalid result")
		}
		want := map[string]validation.ErrorKind{"diagnosis-other": validation.ErrRequired}
		if diff := cmp.Diff(want, result.Errors); diff != "" {
			t.Fatalf("errors mismatch (-want +got):\n%s", diff)
		}
		if result.Focus != "diagnosis-other" {
			t.Fatalf("focus = %q, want diagnosis-other", result.Focus)
		}
	})

	t.Run("other field hidden", func(t *testing.T) {
		t.Parallel()
		data := model.FormData{
			"client-name": model.Text("Sam"),
			"diagnosis":   model.Text("ADHD"),
		}
		result := validation.ValidateAll(schema, data)
		if !result.Valid {
			t.Fatalf("expected valid result, got %v", result.Errors)
		}
		if result.Visible["diagnosis-other"] {
			t.Fatalf("diagnosis-other should be hidden")
		}
		if result.Err() != nil {
			t.Fatalf("Err() = %v, want nil", result.Err())
		}
	})

	t.Run("other filled", func(t *testing.T) {
		t.Parallel()
		data := model.FormData{
			"client-name":     model.Text("Sam"),
			"diagnosis":       model.Text("Other (please specify)"),
			"diagnosis-other": model.Text("Rett syndrome"),
		}
		if result := validation.ValidateAll(schema, data); !result.Valid {
			t.Fatalf("expected valid result, got %v", result.Errors)
		}
	})
}

func TestValidateAll_FullPassInSchemaOrder(t *testing.T) {
	t.Parallel()

	data := model.FormData{
		"diagnosis":    model.Text("Other (please specify)"),
		"parent-email": model.Text("a@b"),
	}
	result := validation.ValidateAll(diagnosisSchema(), data)

	wantOrder := []string{"client-name", "diagnosis-other", "parent-email"}
	if diff := cmp.Diff(wantOrder, result.Order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if result.Focus != "client-name" {
		t.Fatalf("focus = %q, want client-name", result.Focus)
	}

	err := result.Err()
	var formErr *validation.FormError
	if !errors.As(err, &formErr) {
		t.Fatalf("expected *FormError, got %T", err)
	}
	wantFields := []validation.FieldError{
		{FieldID: "client-name", Kind: validation.ErrRequired},
		{FieldID: "diagnosis-other", Kind: validation.ErrRequired},
		{FieldID: "parent-email", Kind: validation.ErrInvalidEmail},
	}
	if diff := cmp.Diff(wantFields, formErr.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if formErr.Focus() != "client-name" {
		t.Fatalf("FormError.Focus() = %q", formErr.Focus())
	}
}

func TestValidateAll_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	data := model.FormData{"diagnosis": model.Text("ADHD")}
	before := data.Clone()
	validation.ValidateAll(diagnosisSchema(), data)
	if len(data) != len(before) || !data["diagnosis"].Equal(before["diagnosis"]) {
		t.Fatalf("input data mutated: %v", data)
	}
}

func TestValidateAll_CustomEvaluator(t *testing.T) {
	t.Parallel()

	hideAll := visibility.EvaluatorFunc(func(model.Field, model.FormData) bool { return false })
	result := validation.ValidateAll(diagnosisSchema(), nil, validation.WithEvaluator(hideAll))
	if !result.Valid {
		t.Fatalf("all-hidden form should be valid, got %v", result.Errors)
	}
}
