package schema

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Source identifies where a document (form definition or OpenAPI file)
// originated so loaders can read files, fs.FS entries or URLs alike.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }
func (s source) Location() string { return s.location }

// SourceFromFile points at a path on disk.
func SourceFromFile(path string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS points at a name inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: name}
}

// SourceFromURL points at an http(s) URL.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, errors.New("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	return source{kind: SourceKindURL, location: raw}, nil
}

// ParseSource maps a CLI-style location onto a Source: http(s) URLs become URL
// sources and everything else is a file path.
func ParseSource(location string) (Source, error) {
	trimmed := strings.TrimSpace(location)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return SourceFromURL(trimmed)
	}
	if trimmed == "" {
		return nil, errors.New("schema: empty source location")
	}
	return SourceFromFile(trimmed), nil
}

// Document is a raw payload plus its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw and pairs it with src.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, fmt.Errorf("schema: document %s is empty", src.Location())
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns the origin of the document.
func (d Document) Source() Source { return d.source }

// Raw returns a copy of the payload.
func (d Document) Raw() []byte { return append([]byte(nil), d.raw...) }

// Location returns the origin's identifier.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Schema imports the document as a form definition. YAML is accepted for
// .yaml/.yml locations and as a fallback for anything that is not JSON.
func (d Document) Schema() (model.FormSchema, error) {
	var (
		out model.FormSchema
		err error
	)
	switch strings.ToLower(filepath.Ext(d.Location())) {
	case ".yaml", ".yml":
		out, err = ImportYAML(d.raw)
	default:
		out, err = Import(d.raw)
	}
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("%s: %w", d.Location(), err)
	}
	return out, nil
}
