package visibility_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/visibility"
)

func ruleField(dependsOn, operator, comparand string) model.Field {
	return model.Field{
		ID:    "target",
		Kind:  model.KindShortText,
		Label: "Target",
		Conditional: &model.ConditionalRule{
			DependsOn: dependsOn,
			Operator:  operator,
			Comparand: comparand,
		},
	}
}

func TestIsVisible_NoRuleAlwaysVisible(t *testing.T) {
	t.Parallel()

	field := model.Field{ID: "name", Kind: model.KindShortText, Label: "Name"}
	for _, data := range []model.FormData{
		nil,
		{},
		{"name": model.Text("")},
		{"other": model.List("a", "b")},
	} {
		if !visibility.IsVisible(field, data) {
			t.Fatalf("expected field without rule to be visible for %v", data)
		}
	}
}

func TestIsVisible_MissingControllerHides(t *testing.T) {
	t.Parallel()

	operators := []string{
		model.OperatorEquals,
		model.OperatorNotEquals,
		model.OperatorContains,
		model.OperatorGreaterThan,
		model.OperatorLessThan,
		"matches_regex",
	}
	for _, op := range operators {
		field := ruleField("controller", op, "")
		if visibility.IsVisible(field, model.FormData{"unrelated": model.Text("x")}) {
			t.Fatalf("operator %q: expected hidden when controller is unanswered", op)
		}
	}
}

func TestIsVisible_Operators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		operator  string
		comparand string
		value     model.Value
		want      bool
	}{
		{"equals match", model.OperatorEquals, "Yes", model.Text("Yes"), true},
		{"equals case sensitive", model.OperatorEquals, "Yes", model.Text("yes"), false},
		{"equals coerces bool", model.OperatorEquals, "true", model.Bool(true), true},
		{"equals coerces number", model.OperatorEquals, "5", model.Number("5"), true},
		{"equals number as entered", model.OperatorEquals, "5", model.Number("5.0"), false},
		{"equals coerces list", model.OperatorEquals, "a,b", model.List("a", "b"), true},
		{"not equals differs", model.OperatorNotEquals, "No", model.Text("Yes"), true},
		{"not equals same", model.OperatorNotEquals, "Yes", model.Text("Yes"), false},
		{"not equals empty answer", model.OperatorNotEquals, "Yes", model.Text(""), true},
		{"contains substring", model.OperatorContains, "Other", model.Text("Other (please specify)"), true},
		{"contains list member", model.OperatorContains, "Elopement", model.List("Aggression", "Elopement"), true},
		{"contains missing", model.OperatorContains, "zzz", model.Text("abc"), false},
		{"contains empty needle", model.OperatorContains, "", model.Text("abc"), true},
		{"greater numeric", model.OperatorGreaterThan, "5", model.Number("10"), true},
		{"greater not lexical", model.OperatorGreaterThan, "5", model.Text("10"), true},
		{"greater equal", model.OperatorGreaterThan, "5", model.Number("5"), false},
		{"greater NaN answer", model.OperatorGreaterThan, "5", model.Text("abc"), false},
		{"greater NaN comparand", model.OperatorGreaterThan, "abc", model.Number("10"), false},
		{"greater empty is zero", model.OperatorGreaterThan, "-1", model.Text(""), true},
		{"greater bool is one", model.OperatorGreaterThan, "0", model.Bool(true), true},
		{"less numeric", model.OperatorLessThan, "18", model.Number("4"), true},
		{"less whitespace trimmed", model.OperatorLessThan, " 18 ", model.Text(" 4 "), true},
		{"less NaN answer", model.OperatorLessThan, "5", model.Text("abc"), false},
		{"less single item list", model.OperatorLessThan, "5", model.List("3"), true},
		{"less multi item list is NaN", model.OperatorLessThan, "5", model.List("1", "2"), false},
		{"unknown operator fails open", "between", "1", model.Text("whatever"), true},
		{"empty operator fails open", "", "1", model.Text("whatever"), true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			field := ruleField("controller", tc.operator, tc.comparand)
			got := visibility.IsVisible(field, model.FormData{"controller": tc.value})
			if got != tc.want {
				t.Fatalf("IsVisible(%s %q, %q) = %v, want %v", tc.operator, tc.comparand, tc.value.String(), got, tc.want)
			}
		})
	}
}

func TestIsVisible_Idempotent(t *testing.T) {
	t.Parallel()

	field := ruleField("controller", model.OperatorGreaterThan, "3")
	data := model.FormData{"controller": model.Number("4")}
	first := visibility.IsVisible(field, data)
	for i := 0; i < 5; i++ {
		if got := visibility.IsVisible(field, data); got != first {
			t.Fatalf("call %d returned %v, first call returned %v", i, got, first)
		}
	}
	if _, ok := data["target"]; ok {
		t.Fatalf("evaluation must not write to the data")
	}
}

func TestResolver_DanglingReferenceNeverVisible(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	schema := model.FormSchema{
		Title: "Dangling",
		Fields: []model.Field{
			{ID: "a", Kind: model.KindShortText, Label: "A"},
			{
				ID:    "b",
				Kind:  model.KindShortText,
				Label: "B",
				Conditional: &model.ConditionalRule{
					DependsOn: "ghost",
					Operator:  model.OperatorNotEquals,
					Comparand: "x",
				},
			},
		},
	}

	resolver := visibility.NewResolver(schema, visibility.WithLogger(logger))

	// stray data under the missing id does not resurrect the field
	data := model.FormData{"ghost": model.Text("y")}
	if resolver.IsVisible(schema.Fields[1], data) {
		t.Fatalf("expected dangling reference to stay hidden")
	}
	if !visibility.IsVisible(schema.Fields[1], data) {
		t.Fatalf("schema-less evaluation should still apply the rule")
	}

	if diff := cmp.Diff(map[string]string{"b": "ghost"}, resolver.Dangling()); diff != "" {
		t.Fatalf("dangling mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "dependsOn=ghost") {
		t.Fatalf("expected dangling reference to be logged, got %q", buf.String())
	}
}

func TestVisibility_ChainsResolveIndependently(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{
		Title: "Chain",
		Fields: []model.Field{
			{
				ID: "c", Kind: model.KindShortText, Label: "C",
				Conditional: &model.ConditionalRule{DependsOn: "b", Operator: model.OperatorEquals, Comparand: "go"},
			},
			{
				ID: "b", Kind: model.KindShortText, Label: "B",
				Conditional: &model.ConditionalRule{DependsOn: "a", Operator: model.OperatorEquals, Comparand: "yes"},
			},
			{ID: "a", Kind: model.KindRadio, Label: "A", Options: []string{"yes", "no"}},
		},
	}
	resolver := visibility.NewResolver(schema)

	// b is hidden but still holds a value; c only looks at b's value.
	data := model.FormData{"a": model.Text("no"), "b": model.Text("go")}
	got := visibility.Visibility(resolver, schema, data)
	want := map[string]bool{"a": true, "b": false, "c": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("visibility mismatch (-want +got):\n%s", diff)
	}
}

func TestVisibility_CycleIsSinglePass(t *testing.T) {
	t.Parallel()

	schema := model.FormSchema{
		Title: "Cycle",
		Fields: []model.Field{
			{
				ID: "a", Kind: model.KindShortText, Label: "A",
				Conditional: &model.ConditionalRule{DependsOn: "b", Operator: model.OperatorEquals, Comparand: "1"},
			},
			{
				ID: "b", Kind: model.KindShortText, Label: "B",
				Conditional: &model.ConditionalRule{DependsOn: "a", Operator: model.OperatorEquals, Comparand: "2"},
			},
		},
	}
	resolver := visibility.NewResolver(schema)

	data := model.FormData{"a": model.Text("2"), "b": model.Text("0")}
	want := map[string]bool{"a": false, "b": true}
	for i := 0; i < 3; i++ {
		got := visibility.Visibility(resolver, schema, data)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("pass %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}
