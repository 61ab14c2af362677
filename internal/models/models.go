package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies which variant of a JSON value a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Object
	Array
)

// String returns the JSON type name of the kind.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "null"
	}
}

// Member is a single key/value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is JSON null.
// Objects keep their keys in insertion order.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string contents or number literal
	members []Member
	items   []Value
}

// NullValue returns JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// NumberValue wraps a number, keeping its literal form.
func NumberValue(n json.Number) Value { return Value{kind: Number, text: string(n)} }

// IntValue is a convenience for building numbers from Go integers.
func IntValue(i int64) Value { return Value{kind: Number, text: strconv.FormatInt(i, 10)} }

// ObjectValue builds an object from members. A repeated key replaces the
// earlier value but keeps the position of its first occurrence.
func ObjectValue(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{kind: Object, members: out}
}

// ArrayValue builds an array from items.
func ArrayValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: Array, items: cp}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == Null }

// IsObject reports whether v is a JSON object.
func (v Value) IsObject() bool { return v.kind == Object }

// IsArray reports whether v is a JSON array.
func (v Value) IsArray() bool { return v.kind == Array }

// IsScalar reports whether v is a string, number or boolean.
func (v Value) IsScalar() bool {
	return v.kind == String || v.kind == Number || v.kind == Bool
}

// Bool returns the boolean held by v, false for other kinds.
func (v Value) Bool() bool { return v.boolean }

// Str returns the string held by v, empty for other kinds.
func (v Value) Str() string {
	if v.kind != String {
		return ""
	}
	return v.text
}

// Number returns the number literal held by v, empty for other kinds.
func (v Value) Number() json.Number {
	if v.kind != Number {
		return ""
	}
	return json.Number(v.text)
}

// Members returns the object members of v in insertion order.
// The returned slice must not be modified.
func (v Value) Members() []Member { return v.members }

// Items returns the array elements of v. The returned slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Len returns the number of members or items, 0 for scalars and null.
func (v Value) Len() int {
	switch v.kind {
	case Object:
		return len(v.members)
	case Array:
		return len(v.items)
	}
	return 0
}

// Get looks up key on an object.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether the object v carries key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Without returns a copy of the object v with key removed.
func (v Value) Without(key string) Value {
	if v.kind != Object {
		return v
	}
	out := make([]Member, 0, len(v.members))
	for _, m := range v.members {
		if m.Key != key {
			out = append(out, m)
		}
	}
	return Value{kind: Object, members: out}
}

// DeeperThan reports whether v nests more than limit objects and arrays
// deep. Scalars and null have depth 0. The walk never descends more than
// limit+1 levels.
func (v Value) DeeperThan(limit int) bool {
	if v.kind != Object && v.kind != Array {
		return limit < 0
	}
	if limit <= 0 {
		return true
	}
	for _, m := range v.members {
		if m.Value.DeeperThan(limit - 1) {
			return true
		}
	}
	for _, item := range v.items {
		if item.DeeperThan(limit - 1) {
			return true
		}
	}
	return false
}

// Text returns the plain text form of v: strings unquoted, numbers as
// written, booleans as true/false, null as "null", and containers as
// compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return "null"
	case Bool:
		return strconv.FormatBool(v.boolean)
	case Number, String:
		return v.text
	default:
		return v.CompactJSON()
	}
}

// CompactJSON serialises v without insignificant whitespace and without
// HTML escaping, keeping object key order.
func (v Value) CompactJSON() string {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.String()
}

// IndentJSON serialises v with the given indent, keeping object key order.
func (v Value) IndentJSON(indent string) string {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(v.CompactJSON()), "", indent); err != nil {
		return v.CompactJSON()
	}
	return out.String()
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		buf.WriteString(v.text)
	case String:
		writeJSONString(buf, v.text)
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, m.Key)
			buf.WriteByte(':')
			m.Value.writeJSON(buf)
		}
		buf.WriteByte('}')
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeJSON(buf)
		}
		buf.WriteByte(']')
	}
}

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)
}

// Document holds the parsed JSON input handed to the renderer.
type Document struct {
	Root Value
}

// RootIsArray reports whether the document root is a JSON array.
func (d Document) RootIsArray() bool { return d.Root.IsArray() }

// RootIsObject reports whether the document root is a JSON object.
func (d Document) RootIsObject() bool { return d.Root.IsObject() }
