package catalog_test

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/catalog"
	"github.com/goliatone/go-formkit/pkg/model"
)

func TestDefault_ListsEmbeddedGallery(t *testing.T) {
	t.Parallel()

	var ids []string
	for _, tpl := range catalog.Default().List() {
		ids = append(ids, tpl.ID)
		if err := model.ValidateSchema(tpl.Schema()); err != nil {
			t.Fatalf("%s: %v", tpl.ID, err)
		}
	}
	want := []string{"aba-assessment", "autism-screening", "hipaa-consent"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tpl, err := catalog.Default().Get("hipaa-consent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tpl.Title != "HIPAA Consent Form" || tpl.Category != "Legal & Compliance" {
		t.Fatalf("unexpected template %q / %q", tpl.Title, tpl.Category)
	}

	_, err = catalog.Default().Get("nope")
	if !errors.Is(err, catalog.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestGet_ReturnsCopies(t *testing.T) {
	t.Parallel()

	first, _ := catalog.Default().Get("aba-assessment")
	first.Fields[0].Label = "mutated"
	second, _ := catalog.Default().Get("aba-assessment")
	if second.Fields[0].Label == "mutated" {
		t.Fatalf("catalog template was mutated through a returned copy")
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"aba-assessment", "autism-screening", "hipaa-consent"}},
		{"HIPAA", []string{"hipaa-consent"}},
		{"legal", []string{"hipaa-consent"}},
		{"behavioral therapy", []string{"aba-assessment"}},
		{"zzz", nil},
	}
	for _, tc := range cases {
		var got []string
		for _, tpl := range catalog.Default().Search(tc.query) {
			got = append(got, tpl.ID)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Search(%q) mismatch (-want +got):\n%s", tc.query, diff)
		}
	}
}

func TestFromDescription_Rules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		description string
		family      string
		title       string
	}{
		{"ABA intake for a new client", catalog.FamilyABA, "ABA Assessment Form"},
		{"Applied Behavior Analysis referral", catalog.FamilyABA, "ABA Assessment Form"},
		{"privacy consent for records", catalog.FamilyHIPAA, "HIPAA Consent Form"},
		{"parent questionnaire", catalog.FamilyAutism, "Autism Screening Questionnaire"},
		{"yearly evaluation", catalog.FamilyAssessment, "Patient Assessment Form"},
		{"new patient registration", catalog.FamilyIntake, "Patient Intake Form"},
		{"something else entirely", catalog.FamilyAssessment, "Patient Assessment Form"},
	}
	for _, tc := range cases {
		if got := catalog.Family(tc.description); got != tc.family {
			t.Fatalf("Family(%q) = %q, want %q", tc.description, got, tc.family)
		}
		form := catalog.Default().FromDescription(tc.description)
		if form.Title != tc.title {
			t.Fatalf("FromDescription(%q).Title = %q, want %q", tc.description, form.Title, tc.title)
		}
		if err := model.ValidateSchema(form); err != nil {
			t.Fatalf("FromDescription(%q): %v", tc.description, err)
		}
	}
}

func TestFromDescription_ABAHasConditionalDiagnosis(t *testing.T) {
	t.Parallel()

	form := catalog.Default().FromDescription("aba")
	field, ok := form.Field("diagnosis-other")
	if !ok {
		t.Fatalf("diagnosis-other missing")
	}
	want := &model.ConditionalRule{DependsOn: "diagnosis", Operator: model.OperatorEquals, Comparand: "Other (please specify)"}
	if diff := cmp.Diff(want, field.Conditional); diff != "" {
		t.Fatalf("rule mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	at := time.UnixMilli(1700000000123)
	got := catalog.Default().Suggest("Patient Intake Form", at)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(got))
	}
	if got[0].ID != "field-1700000000123-1" || got[1].ID != "field-1700000000123-2" {
		t.Fatalf("unexpected ids %q, %q", got[0].ID, got[1].ID)
	}
	if got[0].Label != "Preferred Language" || got[1].Kind != model.KindToggle {
		t.Fatalf("unexpected intake suggestions %+v", got)
	}

	other := catalog.Default().Suggest("Weekly check-in", at)
	if other[0].Label != "Additional Notes" || other[1].Label != "Follow-up Required" {
		t.Fatalf("unexpected default suggestions %+v", other)
	}
}

func TestLoad_CustomFS(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"gallery/visit.yaml": &fstest.MapFile{Data: []byte(`
title: Visit Log
category: Admin
description: Log a visit
keywords: [visit]
fields:
  - id: when
    type: date
    label: When
`)},
	}
	c, err := catalog.Load(files)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tpl, err := c.Get("visit")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tpl.Title != "Visit Log" {
		t.Fatalf("unexpected title %q", tpl.Title)
	}

	form := c.FromDescription("log a visit")
	if form.Title != "Visit Log" {
		t.Fatalf("expected keyword fallback to gallery, got %q", form.Title)
	}
	if got := c.Suggest("anything", time.Now()); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %d", len(got))
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	if _, err := catalog.Load(fstest.MapFS{}); err == nil {
		t.Fatalf("expected empty gallery to fail")
	}
	bad := fstest.MapFS{
		"gallery/bad.yaml": &fstest.MapFile{Data: []byte("title: Bad\nfields:\n  - id: a\n    type: slider\n    label: A\n")},
	}
	if _, err := catalog.Load(bad); err == nil {
		t.Fatalf("expected unknown field type to fail")
	}
}
