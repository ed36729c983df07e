package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/model"
)

//go:embed templates
var embedded embed.FS

const (
	galleryDir      = "gallery"
	generateDir     = "generate"
	suggestionsFile = "suggestions.yaml"
)

var (
	ErrTemplateNotFound = errors.New("catalog: template not found")
	errNoTemplates      = errors.New("catalog: no gallery templates found")
)

// Template is a named, ready-to-use form offered by the gallery.
type Template struct {
	ID          string        `yaml:"id" json:"id"`
	Title       string        `yaml:"title" json:"title"`
	Category    string        `yaml:"category" json:"category"`
	Description string        `yaml:"description" json:"description"`
	Keywords    []string      `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Fields      []model.Field `yaml:"fields" json:"fields"`
}

// Schema returns a copy of the template as a form schema.
func (t Template) Schema() model.FormSchema {
	return model.FormSchema{Title: t.Title, Fields: t.Fields}.Clone()
}

type blueprint struct {
	Family string        `yaml:"family"`
	Title  string        `yaml:"title"`
	Fields []model.Field `yaml:"fields"`
}

// Catalog holds the gallery templates, the description blueprints keyed by
// family and the suggested fields keyed by family.
type Catalog struct {
	templates   []Template
	index       map[string]int
	blueprints  map[string]model.FormSchema
	suggestions map[string][]model.Field
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded templates.
func Default() *Catalog {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			panic(fmt.Errorf("catalog: embedded templates: %w", err))
		}
		defaultCatalog, err = Load(sub)
		if err != nil {
			panic(err)
		}
	})
	return defaultCatalog
}

// Load reads a catalog laid out as gallery/*.yaml, generate/*.yaml and
// suggestions.yaml at the root of fsys. Only the gallery is mandatory.
func Load(fsys fs.FS) (*Catalog, error) {
	if fsys == nil {
		return nil, errors.New("catalog: nil filesystem")
	}

	c := &Catalog{
		index:       make(map[string]int),
		blueprints:  make(map[string]model.FormSchema),
		suggestions: make(map[string][]model.Field),
	}

	galleryFiles, err := yamlFiles(fsys, galleryDir)
	if err != nil {
		return nil, err
	}
	for _, name := range galleryFiles {
		var tpl Template
		if err := decodeFile(fsys, name, &tpl); err != nil {
			return nil, err
		}
		if strings.TrimSpace(tpl.ID) == "" {
			tpl.ID = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		if _, exists := c.index[tpl.ID]; exists {
			return nil, fmt.Errorf("catalog: %s: duplicate template id %q", name, tpl.ID)
		}
		if err := model.ValidateSchema(tpl.Schema()); err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", name, err)
		}
		c.index[tpl.ID] = len(c.templates)
		c.templates = append(c.templates, tpl)
	}
	if len(c.templates) == 0 {
		return nil, errNoTemplates
	}

	blueprintFiles, err := yamlFiles(fsys, generateDir)
	if err != nil {
		return nil, err
	}
	for _, name := range blueprintFiles {
		var bp blueprint
		if err := decodeFile(fsys, name, &bp); err != nil {
			return nil, err
		}
		if bp.Family == "" {
			bp.Family = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}
		form := model.FormSchema{Title: bp.Title, Fields: bp.Fields}
		if err := model.ValidateSchema(form); err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", name, err)
		}
		c.blueprints[bp.Family] = form
	}

	if _, err := fs.Stat(fsys, suggestionsFile); err == nil {
		if err := decodeFile(fsys, suggestionsFile, &c.suggestions); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("catalog: %s: %w", suggestionsFile, err)
	}

	return c, nil
}

func yamlFiles(fsys fs.FS, dir string) ([]string, error) {
	var names []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := fs.Glob(fsys, path.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("catalog: glob %s: %w", dir, err)
		}
		names = append(names, matches...)
	}
	sort.Strings(names)
	return names, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", name, err)
	}
	return nil
}

// List returns every gallery template ordered by id.
func (c *Catalog) List() []Template {
	out := make([]Template, 0, len(c.templates))
	for _, tpl := range c.templates {
		out = append(out, cloneTemplate(tpl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the gallery template with the given id.
func (c *Catalog) Get(id string) (Template, error) {
	i, ok := c.index[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return cloneTemplate(c.templates[i]), nil
}

// Search filters the gallery by a case-insensitive substring of the title,
// category or description. An empty query returns the whole gallery.
func (c *Catalog) Search(query string) []Template {
	query = strings.ToLower(strings.TrimSpace(query))
	all := c.List()
	if query == "" {
		return all
	}
	out := all[:0]
	for _, tpl := range all {
		if strings.Contains(strings.ToLower(tpl.Title), query) ||
			strings.Contains(strings.ToLower(tpl.Category), query) ||
			strings.Contains(strings.ToLower(tpl.Description), query) {
			out = append(out, tpl)
		}
	}
	return out
}

func cloneTemplate(tpl Template) Template {
	out := tpl
	out.Keywords = append([]string(nil), tpl.Keywords...)
	out.Fields = tpl.Schema().Fields
	return out
}
