package model

// FieldKind is the closed set of input kinds a form field can take. The string
// values match the `type` property of the JSON import/export format.
type FieldKind string

const (
	KindShortText FieldKind = "text"
	KindLongText  FieldKind = "textarea"
	KindNumber    FieldKind = "number"
	KindEmail     FieldKind = "email"
	KindPhone     FieldKind = "phone"
	KindDate      FieldKind = "date"
	KindSelect    FieldKind = "select"
	KindRadio     FieldKind = "radio"
	KindCheckbox  FieldKind = "checkbox"
	KindToggle    FieldKind = "toggle"
	KindSignature FieldKind = "signature"
	KindFile      FieldKind = "file"
)

// Kinds lists every supported kind in a stable order.
var Kinds = []FieldKind{
	KindShortText,
	KindLongText,
	KindNumber,
	KindEmail,
	KindPhone,
	KindDate,
	KindSelect,
	KindRadio,
	KindCheckbox,
	KindToggle,
	KindSignature,
	KindFile,
}

// Valid reports whether k belongs to the closed kind set.
func (k FieldKind) Valid() bool {
	switch k {
	case KindShortText, KindLongText, KindNumber, KindEmail, KindPhone, KindDate,
		KindSelect, KindRadio, KindCheckbox, KindToggle, KindSignature, KindFile:
		return true
	default:
		return false
	}
}

// Selectable reports whether the kind renders its Options as choices.
func (k FieldKind) Selectable() bool {
	return k == KindSelect || k == KindRadio || k == KindCheckbox
}

// Shape returns the value shape a field of this kind stores.
func (k FieldKind) Shape() Shape {
	switch k {
	case KindCheckbox:
		return ShapeList
	case KindToggle:
		return ShapeBool
	case KindSignature, KindFile:
		return ShapeBlob
	case KindNumber:
		return ShapeNumber
	default:
		return ShapeText
	}
}

const (
	OperatorEquals      = "equals"
	OperatorNotEquals   = "not_equals"
	OperatorContains    = "contains"
	OperatorGreaterThan = "greater_than"
	OperatorLessThan    = "less_than"
)

// ConditionalRule gates a field's visibility on another field's current value.
// Operators outside the Operator* constants are kept verbatim; the visibility
// resolver treats them as always visible.
type ConditionalRule struct {
	DependsOn string `json:"fieldId" yaml:"fieldId"`
	Operator  string `json:"operator" yaml:"operator"`
	Comparand string `json:"value" yaml:"value"`
}

// Field is a single input of a form. Conditional is nil when the field is
// always visible; it is serialised as an explicit null in that case.
type Field struct {
	ID          string           `json:"id" yaml:"id"`
	Kind        FieldKind        `json:"type" yaml:"type"`
	Label       string           `json:"label" yaml:"label"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []string         `json:"options,omitzero" yaml:"options,omitempty"`
	Rows        int              `json:"rows,omitempty" yaml:"rows,omitempty"`
	Conditional *ConditionalRule `json:"conditionalLogic" yaml:"conditionalLogic"`
}

// FormSchema is the ordered, immutable definition of a form. Field order is
// display order.
type FormSchema struct {
	Title  string  `json:"title" yaml:"title"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Field returns the field with the given id.
func (s FormSchema) Field(id string) (Field, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}

// Index maps field ids to their position in the schema. On duplicate ids the
// first occurrence wins; ValidateSchema rejects such schemas.
func (s FormSchema) Index() map[string]int {
	index := make(map[string]int, len(s.Fields))
	for i, field := range s.Fields {
		if _, exists := index[field.ID]; exists {
			continue
		}
		index[field.ID] = i
	}
	return index
}

// Clone returns a deep copy of the schema.
func (s FormSchema) Clone() FormSchema {
	out := FormSchema{Title: s.Title}
	if s.Fields == nil {
		return out
	}
	out.Fields = make([]Field, len(s.Fields))
	for i, field := range s.Fields {
		out.Fields[i] = field.Clone()
	}
	return out
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	if f.Options != nil {
		out.Options = append([]string{}, f.Options...)
	}
	if f.Conditional != nil {
		rule := *f.Conditional
		out.Conditional = &rule
	}
	return out
}
