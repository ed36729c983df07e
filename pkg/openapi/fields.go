package openapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formkit/pkg/model"
)

const (
	extensionNamespace = "x-formkit"

	// Strings allowed to be longer than this render as a textarea.
	longTextThreshold = 255
	defaultLongRows   = 4
)

type mapper struct {
	logger   *slog.Logger
	visiting map[*openapi3.Schema]bool
}

type property struct {
	name   string
	schema *openapi3.Schema
	order  int
	hasPos bool
}

// fields flattens an object schema into fields. Nested objects contribute
// their own properties with ids prefixed by the parent name.
func (m *mapper) fields(prefix string, schema *openapi3.Schema) []model.Field {
	if schema == nil || m.visiting[schema] {
		return nil
	}
	m.visiting[schema] = true
	defer delete(m.visiting, schema)

	required := make(map[string]bool)
	props := make(map[string]*openapi3.Schema)
	collectProperties(schema, props, required, make(map[*openapi3.Schema]bool))

	ordered := make([]property, 0, len(props))
	for name, prop := range props {
		p := property{name: name, schema: prop}
		if order, ok := toInt(extension(prop)["order"]); ok {
			p.order, p.hasPos = order, true
		}
		ordered = append(ordered, p)
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		pa, pb := ordered[a], ordered[b]
		if pa.hasPos != pb.hasPos {
			return pa.hasPos
		}
		if pa.hasPos && pa.order != pb.order {
			return pa.order < pb.order
		}
		return pa.name < pb.name
	})

	var out []model.Field
	for _, p := range ordered {
		id := p.name
		if prefix != "" {
			id = prefix + "-" + p.name
		}
		if isObject(p.schema) {
			out = append(out, m.fields(id, p.schema)...)
			continue
		}
		field, ok := m.field(id, p.name, p.schema, required[p.name])
		if !ok {
			continue
		}
		out = append(out, field)
	}
	return out
}

func collectProperties(schema *openapi3.Schema, props map[string]*openapi3.Schema, required map[string]bool, seen map[*openapi3.Schema]bool) {
	if schema == nil || seen[schema] {
		return
	}
	seen[schema] = true
	for _, ref := range schema.AllOf {
		if ref != nil {
			collectProperties(ref.Value, props, required, seen)
		}
	}
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil {
			continue
		}
		props[name] = ref.Value
	}
	for _, name := range schema.Required {
		required[name] = true
	}
}

func (m *mapper) field(id, name string, schema *openapi3.Schema, required bool) (model.Field, bool) {
	ext := extension(schema)
	if hidden, _ := ext["hidden"].(bool); hidden || schema.ReadOnly {
		return model.Field{}, false
	}

	kind := kindOf(schema)
	if widget, ok := ext["widget"].(string); ok {
		if override := model.FieldKind(strings.ToLower(widget)); override.Valid() {
			kind = override
		} else {
			m.logger.Warn("unknown widget ignored", "field", id, "widget", widget)
		}
	}

	field := model.Field{
		ID:       id,
		Kind:     kind,
		Label:    labelOf(name, schema, ext),
		Required: required,
	}
	if placeholder, ok := ext["placeholder"].(string); ok {
		field.Placeholder = placeholder
	} else if schema.Description != "" {
		field.Placeholder = schema.Description
	}
	if rows, ok := toInt(ext["rows"]); ok && rows > 0 {
		field.Rows = rows
	} else if kind == model.KindLongText {
		field.Rows = defaultLongRows
	}
	if kind.Selectable() {
		field.Options = optionsOf(schema)
	}
	if rule, ok := ruleOf(ext["conditionalLogic"]); ok {
		field.Conditional = rule
	}
	return field, true
}

func kindOf(schema *openapi3.Schema) model.FieldKind {
	switch {
	case schemaIs(schema, openapi3.TypeBoolean):
		return model.KindToggle
	case schemaIs(schema, openapi3.TypeInteger), schemaIs(schema, openapi3.TypeNumber):
		return model.KindNumber
	case schemaIs(schema, openapi3.TypeArray):
		if schema.Items != nil && schema.Items.Value != nil && len(schema.Items.Value.Enum) > 0 {
			return model.KindCheckbox
		}
		if schema.Items != nil && schema.Items.Value != nil && isBinary(schema.Items.Value) {
			return model.KindFile
		}
		return model.KindLongText
	}

	if len(schema.Enum) > 0 {
		return model.KindSelect
	}
	switch strings.ToLower(schema.Format) {
	case "email":
		return model.KindEmail
	case "date", "date-time":
		return model.KindDate
	case "phone", "tel":
		return model.KindPhone
	case "binary", "byte":
		return model.KindFile
	}
	if schema.MaxLength != nil && *schema.MaxLength > longTextThreshold {
		return model.KindLongText
	}
	return model.KindShortText
}

func isBinary(schema *openapi3.Schema) bool {
	format := strings.ToLower(schema.Format)
	return format == "binary" || format == "byte"
}

func isObject(schema *openapi3.Schema) bool {
	if schemaIs(schema, openapi3.TypeObject) {
		return true
	}
	return schema.Type == nil && (len(schema.Properties) > 0 || len(schema.AllOf) > 0)
}

func schemaIs(schema *openapi3.Schema, typ string) bool {
	return schema != nil && schema.Type != nil && schema.Type.Includes(typ)
}

func labelOf(name string, schema *openapi3.Schema, ext map[string]any) string {
	if label, ok := ext["label"].(string); ok && strings.TrimSpace(label) != "" {
		return label
	}
	if strings.TrimSpace(schema.Title) != "" {
		return schema.Title
	}
	return model.DefaultLabeler(name)
}

func optionsOf(schema *openapi3.Schema) []string {
	enum := schema.Enum
	if schemaIs(schema, openapi3.TypeArray) && schema.Items != nil && schema.Items.Value != nil {
		enum = schema.Items.Value.Enum
	}
	out := make([]string, 0, len(enum))
	for _, value := range enum {
		if value == nil {
			continue
		}
		out = append(out, stringify(value))
	}
	return out
}

func ruleOf(raw any) (*model.ConditionalRule, bool) {
	values, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	dependsOn, _ := values["fieldId"].(string)
	if dependsOn == "" {
		return nil, false
	}
	operator, _ := values["operator"].(string)
	if operator == "" {
		operator = model.OperatorEquals
	}
	comparand := ""
	if value, ok := values["value"]; ok && value != nil {
		comparand = stringify(value)
	}
	return &model.ConditionalRule{DependsOn: dependsOn, Operator: operator, Comparand: comparand}, true
}

func extension(schema *openapi3.Schema) map[string]any {
	if schema == nil || len(schema.Extensions) == 0 {
		return nil
	}
	values, _ := schema.Extensions[extensionNamespace].(map[string]any)
	return values
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
