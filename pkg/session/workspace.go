package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Tab names the builder view currently in front.
type Tab string

const (
	TabGenerate  Tab = "generate"
	TabTemplates Tab = "templates"
	TabEdit      Tab = "edit"
	TabPreview   Tab = "preview"
	TabJSON      Tab = "json"
	TabSubmit    Tab = "submit"
)

// Tabs lists the builder views in display order.
var Tabs = []Tab{TabGenerate, TabTemplates, TabEdit, TabPreview, TabJSON, TabSubmit}

// DefaultTitle is the title of a workspace before any form is loaded.
const DefaultTitle = "New Form"

var errUnknownTab = errors.New("session: unknown tab")

// Workspace is the state of one form-building session: which view is active,
// which template (if any) the current form came from, the form itself, and
// the fill-in session bound to it. Callers own the Workspace and pass it to
// whatever needs it; nothing here is global.
type Workspace struct {
	tab        Tab
	templateID string
	schema     model.FormSchema
	session    *Session
	opts       []Option
}

// NewWorkspace starts on the generate view with an empty form. opts are
// applied to every Session the workspace opens.
func NewWorkspace(opts ...Option) *Workspace {
	return &Workspace{
		tab:    TabGenerate,
		schema: model.FormSchema{Title: DefaultTitle, Fields: []model.Field{}},
		opts:   opts,
	}
}

// Tab returns the active view.
func (w *Workspace) Tab() Tab { return w.tab }

// SelectTab switches the active view.
func (w *Workspace) SelectTab(tab Tab) error {
	for _, known := range Tabs {
		if known == tab {
			w.tab = tab
			return nil
		}
	}
	return fmt.Errorf("%w %q", errUnknownTab, tab)
}

// TemplateID returns the id of the template the form was loaded from, or ""
// when the form came from elsewhere.
func (w *Workspace) TemplateID() string { return w.templateID }

// Schema returns a copy of the current form.
func (w *Workspace) Schema() model.FormSchema { return w.schema.Clone() }

// UseTemplate loads a catalog template and moves to the edit view.
func (w *Workspace) UseTemplate(id string, schema model.FormSchema) error {
	if err := w.load(schema); err != nil {
		return err
	}
	w.templateID = strings.TrimSpace(id)
	w.tab = TabEdit
	return nil
}

// UseGenerated loads a form produced from a description and moves to the
// edit view.
func (w *Workspace) UseGenerated(schema model.FormSchema) error {
	if err := w.load(schema); err != nil {
		return err
	}
	w.templateID = ""
	w.tab = TabEdit
	return nil
}

// UpdateSchema replaces the form in place, as the JSON view does, without
// changing the active view. Existing answers are kept for ids that survive.
func (w *Workspace) UpdateSchema(schema model.FormSchema) error {
	var carry model.FormData
	if w.session != nil {
		carry = w.session.Data()
	}
	if err := w.load(schema); err != nil {
		return err
	}
	if len(carry) == 0 {
		return nil
	}
	for id, value := range carry {
		if _, ok := w.schema.Field(id); !ok {
			continue
		}
		if err := w.session.Set(id, value); err != nil {
			return err
		}
	}
	return nil
}

// Session returns the fill-in session for the current form, opening one on
// first use.
func (w *Workspace) Session() (*Session, error) {
	if w.session != nil {
		return w.session, nil
	}
	sess, err := New(w.schema, w.opts...)
	if err != nil {
		return nil, err
	}
	w.session = sess
	return sess, nil
}

func (w *Workspace) load(schema model.FormSchema) error {
	sess, err := New(schema, w.opts...)
	if err != nil {
		return err
	}
	w.schema = schema.Clone()
	w.session = sess
	return nil
}
