package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/model"
)

// ImportErrorKind classifies why a document could not be imported.
type ImportErrorKind string

const (
	ImportMalformed       ImportErrorKind = "malformed"
	ImportNotObject       ImportErrorKind = "not_object"
	ImportShape           ImportErrorKind = "shape"
	ImportFieldProps      ImportErrorKind = "field_properties"
	ImportUnknownType     ImportErrorKind = "unknown_type"
	ImportDuplicateID     ImportErrorKind = "duplicate_id"
	ImportInvalidProperty ImportErrorKind = "invalid_property"
)

var importMessages = map[ImportErrorKind]string{
	ImportMalformed:       "Could not parse the file",
	ImportNotObject:       "File does not contain a valid JSON object",
	ImportShape:           "File must contain a title string and fields array",
	ImportFieldProps:      "Some fields are missing required properties (id, type, or label)",
	ImportUnknownType:     "Some fields use an unsupported type",
	ImportDuplicateID:     "Some fields share the same id",
	ImportInvalidProperty: "Some fields have properties of the wrong type",
}

// ImportError reports a rejected document. No partial schema is ever returned
// alongside it.
type ImportError struct {
	Kind ImportErrorKind
	// Index is the offending field position, or -1 for document-level errors.
	Index int
	// Detail names the property or value at fault.
	Detail string
	Err    error
}

// Message returns the user-facing text, e.g. "Invalid JSON format: Could not
// parse the file".
func (e *ImportError) Message() string {
	return "Invalid JSON format: " + importMessages[e.Kind]
}

func (e *ImportError) Error() string {
	var b strings.Builder
	b.WriteString("schema: import: ")
	b.WriteString(importMessages[e.Kind])
	if e.Index >= 0 {
		fmt.Fprintf(&b, " (fields[%d]", e.Index)
		if e.Detail != "" {
			b.WriteString(": ")
			b.WriteString(e.Detail)
		}
		b.WriteString(")")
	} else if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ImportError) Unwrap() error { return e.Err }

func docError(kind ImportErrorKind, detail string, err error) *ImportError {
	return &ImportError{Kind: kind, Index: -1, Detail: detail, Err: err}
}

func fieldError(kind ImportErrorKind, index int, detail string) *ImportError {
	return &ImportError{Kind: kind, Index: index, Detail: detail}
}

// Import decodes a JSON document, falling back to YAML when the payload is not
// valid JSON.
func Import(raw []byte) (model.FormSchema, error) {
	if json.Valid(raw) {
		return ImportJSON(raw)
	}
	return ImportYAML(raw)
}

// ImportJSON decodes and validates a form definition. Missing conditionalLogic
// is normalised to null.
func ImportJSON(raw []byte) (model.FormSchema, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return model.FormSchema{}, docError(ImportMalformed, "", err)
	}
	if dec.More() {
		return model.FormSchema{}, docError(ImportMalformed, "trailing data after document", nil)
	}
	return fromDocument(parsed)
}

// ImportYAML accepts the same document shape written as YAML.
func ImportYAML(raw []byte) (model.FormSchema, error) {
	var parsed any
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return model.FormSchema{}, docError(ImportMalformed, "", err)
	}
	return fromDocument(normalizeYAML(parsed))
}

// Export encodes schema as two-space indented JSON. Import(Export(s)) yields
// a schema equal to s.
func Export(schema model.FormSchema) ([]byte, error) {
	out := schema
	if out.Fields == nil {
		out.Fields = []model.Field{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("schema: export: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func fromDocument(parsed any) (model.FormSchema, error) {
	root, ok := parsed.(map[string]any)
	if !ok {
		return model.FormSchema{}, docError(ImportNotObject, "", nil)
	}
	title, titleOK := root["title"].(string)
	rawFields, fieldsOK := root["fields"].([]any)
	if !titleOK || !fieldsOK {
		return model.FormSchema{}, docError(ImportShape, "", nil)
	}

	// required properties are checked for every field before anything else
	for i, entry := range rawFields {
		obj, ok := entry.(map[string]any)
		if !ok {
			return model.FormSchema{}, fieldError(ImportFieldProps, i, "field is not an object")
		}
		for _, key := range []string{"id", "type", "label"} {
			if _, ok := obj[key].(string); !ok {
				return model.FormSchema{}, fieldError(ImportFieldProps, i, key)
			}
		}
	}

	fields := make([]model.Field, 0, len(rawFields))
	seen := make(map[string]int, len(rawFields))
	for i, entry := range rawFields {
		field, err := decodeField(i, entry.(map[string]any))
		if err != nil {
			return model.FormSchema{}, err
		}
		if prev, dup := seen[field.ID]; dup {
			return model.FormSchema{}, fieldError(ImportDuplicateID, i, fmt.Sprintf("id %q first defined at fields[%d]", field.ID, prev))
		}
		seen[field.ID] = i
		fields = append(fields, field)
	}

	return model.FormSchema{Title: title, Fields: fields}, nil
}

func decodeField(index int, obj map[string]any) (model.Field, error) {
	field := model.Field{
		ID:    obj["id"].(string),
		Kind:  model.FieldKind(obj["type"].(string)),
		Label: obj["label"].(string),
	}
	if !field.Kind.Valid() {
		return model.Field{}, fieldError(ImportUnknownType, index, fmt.Sprintf("type %q", field.Kind))
	}

	if raw, ok := obj["placeholder"]; ok && raw != nil {
		text, ok := raw.(string)
		if !ok {
			return model.Field{}, fieldError(ImportInvalidProperty, index, "placeholder must be a string")
		}
		field.Placeholder = text
	}
	if raw, ok := obj["required"]; ok && raw != nil {
		flag, ok := raw.(bool)
		if !ok {
			return model.Field{}, fieldError(ImportInvalidProperty, index, "required must be a boolean")
		}
		field.Required = flag
	}
	if raw, ok := obj["rows"]; ok && raw != nil {
		rows, ok := toInt(raw)
		if !ok {
			return model.Field{}, fieldError(ImportInvalidProperty, index, "rows must be an integer")
		}
		field.Rows = rows
	}
	if raw, ok := obj["options"]; ok && raw != nil {
		items, ok := raw.([]any)
		if !ok {
			return model.Field{}, fieldError(ImportInvalidProperty, index, "options must be an array")
		}
		field.Options = make([]string, 0, len(items))
		for _, item := range items {
			text, ok := scalarString(item)
			if !ok {
				return model.Field{}, fieldError(ImportInvalidProperty, index, "options must contain strings")
			}
			field.Options = append(field.Options, text)
		}
	}
	if raw, ok := obj["conditionalLogic"]; ok && raw != nil {
		rule, err := decodeRule(index, raw)
		if err != nil {
			return model.Field{}, err
		}
		field.Conditional = rule
	}
	return field, nil
}

func decodeRule(index int, raw any) (*model.ConditionalRule, error) {
	if flag, ok := raw.(bool); ok && !flag {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fieldError(ImportInvalidProperty, index, "conditionalLogic must be an object or null")
	}
	dependsOn, ok := obj["fieldId"].(string)
	if !ok {
		return nil, fieldError(ImportInvalidProperty, index, "conditionalLogic.fieldId must be a string")
	}
	operator, ok := obj["operator"].(string)
	if !ok {
		return nil, fieldError(ImportInvalidProperty, index, "conditionalLogic.operator must be a string")
	}
	comparand := ""
	if rawValue, present := obj["value"]; present && rawValue != nil {
		text, ok := scalarString(rawValue)
		if !ok {
			return nil, fieldError(ImportInvalidProperty, index, "conditionalLogic.value must be a scalar")
		}
		comparand = text
	}
	return &model.ConditionalRule{DependsOn: dependsOn, Operator: operator, Comparand: comparand}, nil
}

func scalarString(raw any) (string, bool) {
	switch typed := raw.(type) {
	case string:
		return typed, true
	case json.Number:
		return typed.String(), true
	case bool:
		if typed {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

func toInt(raw any) (int, bool) {
	num, ok := raw.(json.Number)
	if !ok {
		return 0, false
	}
	n, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// normalizeYAML rewrites YAML decoder output into the shapes produced by the
// JSON decoder: string-keyed maps and json.Number scalars.
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = normalizeYAML(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeYAML(v)
		}
		return out
	case int:
		return json.Number(fmt.Sprint(typed))
	case int64:
		return json.Number(fmt.Sprint(typed))
	case uint64:
		return json.Number(fmt.Sprint(typed))
	case float64:
		return json.Number(fmt.Sprint(typed))
	default:
		return typed
	}
}
