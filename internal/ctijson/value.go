// Package ctijson holds the ordered value model every CTI record is decoded into.
// Object fields keep their source order, which encoding/json maps cannot do.
package ctijson

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one key/value pair of an object.
type Field struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind   Kind
	b      bool
	num    string // raw number text as it appeared in the source
	str    string
	items  []Value
	fields []Field
}

func NullValue() Value { return Value{} }

func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps raw number text. The text is kept verbatim for display.
func NumberValue(raw string) Value { return Value{kind: Number, num: strings.TrimSpace(raw)} }

func StringValue(s string) Value { return Value{kind: String, str: s} }

func ArrayValue(items ...Value) Value {
	return Value{kind: Array, items: items}
}

// ObjectValue builds an object from fields in order. A repeated key keeps the
// position of its first occurrence and the value of its last.
func ObjectValue(fields ...Field) Value {
	out := make([]Field, 0, len(fields))
	index := make(map[string]int, len(fields))
	for _, f := range fields {
		if i, ok := index[f.Key]; ok {
			out[i].Value = f.Value
			continue
		}
		index[f.Key] = len(out)
		out = append(out, f)
	}
	return Value{kind: Object, fields: out}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == Null }
func (v Value) IsArray() bool  { return v.kind == Array }
func (v Value) IsObject() bool { return v.kind == Object }
func (v Value) IsString() bool { return v.kind == String }

// Bool returns the boolean payload; false for other kinds.
func (v Value) Bool() bool { return v.kind == Bool && v.b }

// Str returns the string payload; empty for other kinds.
func (v Value) Str() string {
	if v.kind != String {
		return ""
	}
	return v.str
}

// Float parses a Number. ok is false for other kinds or unparsable text.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.num, 64)
	return f, err == nil
}

// Items returns array elements, nil for other kinds.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.items
}

// Fields returns object fields in source order, nil for other kinds.
func (v Value) Fields() []Field {
	if v.kind != Object {
		return nil
	}
	return v.fields
}

// Len is the element or field count of a container, zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.fields)
	}
	return 0
}

// Get returns the value stored under key when v is an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Lookup is Get without the presence flag; missing keys read as null.
func (v Value) Lookup(key string) Value {
	val, _ := v.Get(key)
	return val
}

// Has reports key presence, regardless of the stored value.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Index returns the i-th array element or null when out of range.
func (v Value) Index(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

// Truthy follows the usual dynamic-language rule: null, false, 0, "" and
// empty containers are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		f, ok := v.Float()
		return !ok || f != 0
	case String:
		return v.str != ""
	case Array:
		return len(v.items) > 0
	case Object:
		return len(v.fields) > 0
	}
	return false
}

// Text is the display form: strings unquoted, numbers as written, booleans
// as True/False, null as "", containers as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		if v.b {
			return "True"
		}
		return "False"
	case Number:
		return v.num
	case String:
		return v.str
	}
	return v.JSON()
}

// JSON encodes v compactly, preserving field order.
func (v Value) JSON() string {
	var buf bytes.Buffer
	v.appendJSON(&buf)
	return buf.String()
}

// Contains reports whether sub occurs anywhere in the encoded form of v,
// keys included.
func (v Value) Contains(sub string) bool {
	return strings.Contains(v.JSON(), sub)
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.appendJSON(&buf)
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		buf.WriteString(v.num)
	case String:
		appendString(buf, v.str)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.appendJSON(buf)
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendString(buf, f.Key)
			buf.WriteByte(':')
			f.Value.appendJSON(buf)
		}
		buf.WriteByte('}')
	}
}

func appendString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode terminates with a newline.
	buf.Truncate(buf.Len() - 1)
}
