package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/model"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/validation"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	prompts      []string
	infoMessages []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.confirm) == 0 {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[0]
	s.confirm = s.confirm[1:]
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.selectIdx) == 0 {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[0]
	s.selectIdx = s.selectIdx[1:]
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.multiIdx) == 0 {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[0]
	s.multiIdx = s.multiIdx[1:]
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if len(s.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

var fixedTime = time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC)

func newRenderer(t *testing.T, driver *stubDriver, opts ...Option) *Renderer {
	t.Helper()
	opts = append([]Option{WithPromptDriver(driver), WithClock(func() time.Time { return fixedTime })}, opts...)
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func diagnosisSchema() model.FormSchema {
	return model.FormSchema{
		Title: "ABA Assessment",
		Fields: []model.Field{
			{ID: "diagnosis", Kind: model.KindSelect, Label: "Primary Diagnosis", Required: true, Options: []string{"ADHD", "Other (please specify)"}},
			{
				ID: "diagnosis-other", Kind: model.KindShortText, Label: "Please specify", Required: true,
				Conditional: &model.ConditionalRule{DependsOn: "diagnosis", Operator: model.OperatorEquals, Comparand: "Other (please specify)"},
			},
			{ID: "email", Kind: model.KindEmail, Label: "Email"},
		},
	}
}

func TestRender_ConditionalFieldAppearsAfterAnswer(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{"Rett syndrome", "bad", "a@b.com"},
	}
	r := newRenderer(t, driver)

	out, err := r.Render(context.Background(), diagnosisSchema(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `{
  "formTitle": "ABA Assessment",
  "submittedAt": "2024-03-01T09:30:00.000Z",
  "responses": {
    "diagnosis": "Other (please specify)",
    "diagnosis-other": "Rett syndrome",
    "email": "a@b.com"
  }
}`
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Primary Diagnosis *", "Please specify *", "Email", "Email"}, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "Please enter a valid email address") {
		t.Fatalf("expected one inline email message, got %v", driver.infoMessages)
	}
}

func TestRender_HiddenFieldIsNotPrompted(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0},
		inputs:    []string{""},
	}
	r := newRenderer(t, driver)

	if _, err := r.Render(context.Background(), diagnosisSchema(), render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"Primary Diagnosis *", "Email"}, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_ForwardReferenceAskedOnNextPass(t *testing.T) {
	schema := model.FormSchema{
		Title: "Follow up",
		Fields: []model.Field{
			{
				ID: "details", Kind: model.KindShortText, Label: "Details",
				Conditional: &model.ConditionalRule{DependsOn: "more", Operator: model.OperatorEquals, Comparand: "true"},
			},
			{ID: "more", Kind: model.KindToggle, Label: "More?"},
		},
	}
	driver := &stubDriver{confirm: []bool{true}, inputs: []string{"extra"}}
	r := newRenderer(t, driver, WithOutputFormat(OutputFormatFormURLEncoded))

	out, err := r.Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "details=extra&more=true" {
		t.Fatalf("unexpected output %q", got)
	}
	if diff := cmp.Diff([]string{"More?", "Details"}, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SubmitRefocusesFirstError(t *testing.T) {
	schema := model.FormSchema{
		Title: "Intake",
		Fields: []model.Field{
			{ID: "name", Kind: model.KindShortText, Label: "Name", Required: true},
			{ID: "services", Kind: model.KindCheckbox, Label: "Services", Required: true, Options: []string{"OT", "ABA"}},
		},
	}
	driver := &stubDriver{
		inputs:   []string{"", "Ada"},
		multiIdx: [][]int{{}, {0, 1}},
	}
	r := newRenderer(t, driver, WithOutputFormat(OutputFormatFormURLEncoded))

	out, err := r.Render(context.Background(), schema, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "name=Ada&services=OT&services=ABA" {
		t.Fatalf("unexpected output %q", got)
	}
	wantInfo := []string{
		"! Name: This field is required",
		"! Services: Please select at least one option",
	}
	if diff := cmp.Diff(wantInfo, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Name *", "Services *", "Name *", "Services *"}, driver.prompts); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SubmitRejectedAfterMaxAttempts(t *testing.T) {
	schema := model.FormSchema{
		Title:  "Intake",
		Fields: []model.Field{{ID: "name", Kind: model.KindShortText, Label: "Name", Required: true}},
	}
	driver := &stubDriver{inputs: []string{""}}
	r := newRenderer(t, driver, WithMaxAttempts(1))

	_, err := r.Render(context.Background(), schema, render.RenderOptions{})
	if !errors.Is(err, ErrSubmitRejected) {
		t.Fatalf("expected ErrSubmitRejected, got %v", err)
	}
	var formErr *validation.FormError
	if !errors.As(err, &formErr) || formErr.Focus() != "name" {
		t.Fatalf("expected wrapped FormError focused on name, got %v", err)
	}
}

func TestRender_PrefillAndPrettyOutput(t *testing.T) {
	schema := model.FormSchema{
		Title: "Visit",
		Fields: []model.Field{
			{ID: "when", Kind: model.KindDate, Label: "Visit date"},
			{ID: "notes", Kind: model.KindLongText, Label: "Notes"},
		},
	}
	driver := &stubDriver{inputs: []string{"03/01/2024", "2024-03-01"}, textAreas: []string{"all good"}}
	r := newRenderer(t, driver, WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), schema, render.RenderOptions{
		Values: model.FormData{"notes": model.Text("draft")},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Visit\n=====\nSubmitted at: 2024-03-01T09:30:00.000Z\n\nVisit date: 3/1/2024\nNotes: all good\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.Contains(driver.infoMessages[0], "YYYY-MM-DD") {
		t.Fatalf("expected date format message, got %v", driver.infoMessages)
	}
}

func TestRender_DeclinedSubmitAborts(t *testing.T) {
	schema := model.FormSchema{
		Title:  "Consent",
		Fields: []model.Field{{ID: "agree", Kind: model.KindToggle, Label: "I agree"}},
	}
	driver := &stubDriver{confirm: []bool{true, false}}
	r := newRenderer(t, driver, WithConfirmSubmit(true))

	if _, err := r.Render(context.Background(), schema, render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected unknown output format to fail")
	}
}
