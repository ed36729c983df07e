package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Shape tags the variant held by a Value.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeText
	ShapeNumber
	ShapeList
	ShapeBool
	ShapeBlob
)

func (s Shape) String() string {
	switch s {
	case ShapeText:
		return "text"
	case ShapeNumber:
		return "number"
	case ShapeList:
		return "list"
	case ShapeBool:
		return "bool"
	case ShapeBlob:
		return "blob"
	default:
		return "none"
	}
}

// Value is the tagged variant stored per field in FormData. The zero Value has
// ShapeNone and is treated as absent.
type Value struct {
	shape Shape
	text  string
	list  []string
	flag  bool
}

// Text stores a string answer (text, textarea, email, phone, date, select,
// radio).
func Text(s string) Value { return Value{shape: ShapeText, text: s} }

// Number stores a numeric answer exactly as entered.
func Number(raw string) Value { return Value{shape: ShapeNumber, text: raw} }

// List stores a multi-choice answer.
func List(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	return Value{shape: ShapeList, list: append([]string{}, items...)}
}

// Bool stores a toggle answer.
func Bool(b bool) Value { return Value{shape: ShapeBool, flag: b} }

// Blob stores an opaque reference to uploaded content (file name, data URL,
// storage key). The content itself never passes through this package.
func Blob(ref string) Value { return Value{shape: ShapeBlob, text: ref} }

// Shape reports the variant held by v.
func (v Value) Shape() Shape { return v.shape }

// Present reports whether v holds any variant.
func (v Value) Present() bool { return v.shape != ShapeNone }

// Text returns the string payload for text, number and blob shapes.
func (v Value) Text() string { return v.text }

// List returns a copy of the list payload.
func (v Value) List() []string { return append([]string(nil), v.list...) }

// Bool returns the toggle payload.
func (v Value) Bool() bool { return v.flag }

// IsEmpty reports whether the value counts as "no answer" for requiredness:
// absent, an empty string, or an empty list. A false toggle is an answer.
func (v Value) IsEmpty() bool {
	switch v.shape {
	case ShapeNone:
		return true
	case ShapeText, ShapeNumber, ShapeBlob:
		return v.text == ""
	case ShapeList:
		return len(v.list) == 0
	default:
		return false
	}
}

// String coerces the value to the string used by conditional comparisons.
// Lists join with "," and booleans render as "true"/"false".
func (v Value) String() string {
	switch v.shape {
	case ShapeText, ShapeNumber, ShapeBlob:
		return v.text
	case ShapeList:
		return strings.Join(v.list, ",")
	case ShapeBool:
		return strconv.FormatBool(v.flag)
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and payload.
func (v Value) Equal(other Value) bool {
	if v.shape != other.shape || v.text != other.text || v.flag != other.flag {
		return false
	}
	if len(v.list) != len(other.list) {
		return false
	}
	for i := range v.list {
		if v.list[i] != other.list[i] {
			return false
		}
	}
	return true
}

// Any returns the plain Go representation used by serialisers.
func (v Value) Any() any {
	switch v.shape {
	case ShapeText, ShapeBlob:
		return v.text
	case ShapeNumber:
		if isJSONNumber(v.text) {
			return json.Number(v.text)
		}
		return v.text
	case ShapeList:
		return v.List()
	case ShapeBool:
		return v.flag
	default:
		return nil
	}
}

// MarshalJSON encodes the payload without the shape tag, matching the
// `responses` object of the submission export format.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.shape == ShapeList && v.list == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Any())
}

// UnmarshalJSON infers the shape from the JSON type. Use CoerceValue or
// NormalizeData to align the shape with a field kind.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	decoded, err := valueFromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func valueFromAny(raw any) (Value, error) {
	switch typed := raw.(type) {
	case nil:
		return Value{}, nil
	case string:
		return Text(typed), nil
	case json.Number:
		return Number(typed.String()), nil
	case float64:
		return Number(strconv.FormatFloat(typed, 'f', -1, 64)), nil
	case int:
		return Number(strconv.Itoa(typed)), nil
	case int64:
		return Number(strconv.FormatInt(typed, 10)), nil
	case bool:
		return Bool(typed), nil
	case []string:
		return List(typed...), nil
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprint(item))
		}
		return List(items...), nil
	case Value:
		return typed, nil
	default:
		return Value{}, fmt.Errorf("model: unsupported value type %T", raw)
	}
}

// CoerceValue maps a decoded value onto the shape expected by kind. Strings
// become blobs for file/signature fields and numbers for number fields; a
// scalar given to a checkbox field becomes a one-element list.
func CoerceValue(kind FieldKind, raw any) (Value, error) {
	value, err := valueFromAny(raw)
	if err != nil {
		return Value{}, err
	}
	if !value.Present() {
		return value, nil
	}
	switch kind.Shape() {
	case ShapeBlob:
		if value.shape == ShapeText {
			return Blob(value.text), nil
		}
	case ShapeNumber:
		if value.shape == ShapeText {
			return Number(value.text), nil
		}
	case ShapeList:
		switch value.shape {
		case ShapeText, ShapeNumber:
			if value.text == "" {
				return List(), nil
			}
			return List(value.text), nil
		}
	case ShapeText:
		if value.shape == ShapeNumber {
			return Text(value.text), nil
		}
	case ShapeBool:
		if value.shape == ShapeText {
			if parsed, err := strconv.ParseBool(strings.TrimSpace(value.text)); err == nil {
				return Bool(parsed), nil
			}
		}
	}
	return value, nil
}

// FormData maps field ids to their current answers. A missing key means the
// field was never touched.
type FormData map[string]Value

// Get returns the value stored for id.
func (d FormData) Get(id string) (Value, bool) {
	if d == nil {
		return Value{}, false
	}
	v, ok := d[id]
	if !ok || !v.Present() {
		return Value{}, false
	}
	return v, true
}

// Clone returns an independent snapshot of d.
func (d FormData) Clone() FormData {
	out := make(FormData, len(d))
	for id, v := range d {
		if v.list != nil {
			v.list = append([]string{}, v.list...)
		}
		out[id] = v
	}
	return out
}

// Keys returns the stored ids sorted lexically.
func (d FormData) Keys() []string {
	keys := make([]string, 0, len(d))
	for id := range d {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeData converts a loosely typed response map (for example a decoded
// submission file) into FormData, coercing each entry by the kind of the
// schema field it belongs to. Keys unknown to the schema keep their inferred
// shape; null entries are dropped.
func NormalizeData(schema FormSchema, raw map[string]any) (FormData, error) {
	out := make(FormData, len(raw))
	index := schema.Index()
	for id, entry := range raw {
		var (
			value Value
			err   error
		)
		if pos, ok := index[id]; ok {
			value, err = CoerceValue(schema.Fields[pos].Kind, entry)
		} else {
			value, err = valueFromAny(entry)
		}
		if err != nil {
			return nil, fmt.Errorf("model: field %q: %w", id, err)
		}
		if !value.Present() {
			continue
		}
		out[id] = value
	}
	return out, nil
}

func isJSONNumber(raw string) bool {
	if raw == "" {
		return false
	}
	return json.Valid([]byte(raw)) && jsonNumberPattern.MatchString(raw)
}
