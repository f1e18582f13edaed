// Package jsondoc provides an ordered JSON tree. Objects keep the order in
// which their keys were first inserted so that documents read from the
// metadata services are written back to launchers in the same shape.
package jsondoc

import (
	"strconv"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the JSON value kinds. Numbers keep their
// literal text so integers and decimals round-trip unchanged.
type Value struct {
	kind   Kind
	flag   bool
	text   string
	items  []*Value
	fields *linkedhashmap.Map
}

func Null() *Value {
	return &Value{kind: KindNull}
}

func Bool(value bool) *Value {
	return &Value{kind: KindBool, flag: value}
}

func String(value string) *Value {
	return &Value{kind: KindString, text: value}
}

// Number wraps a JSON number literal. The literal is not validated.
func Number(literal string) *Value {
	return &Value{kind: KindNumber, text: literal}
}

func Int(value int64) *Value {
	return Number(strconv.FormatInt(value, 10))
}

func Array(items ...*Value) *Value {
	out := &Value{kind: KindArray, items: make([]*Value, 0, len(items))}
	out.items = append(out.items, items...)
	return out
}

func Object() *Value {
	return &Value{kind: KindObject, fields: linkedhashmap.New()}
}

// Strings builds an array of string values.
func Strings(values ...string) *Value {
	out := Array()
	for _, value := range values {
		out.Append(String(value))
	}
	return out
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsObject() bool { return v.Kind() == KindObject }
func (v *Value) IsArray() bool  { return v.Kind() == KindArray }
func (v *Value) IsString() bool { return v.Kind() == KindString }

// Str returns the string payload when the value is a JSON string.
func (v *Value) Str() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.text, true
}

func (v *Value) BoolValue() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.flag, true
}

// NumberLiteral returns the literal text of a JSON number.
func (v *Value) NumberLiteral() (string, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return v.text, true
}

func (v *Value) IntValue() (int64, bool) {
	literal, ok := v.NumberLiteral()
	if !ok {
		return 0, false
	}
	parsed, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// Get returns the field stored under key on an object value.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != KindObject {
		return nil, false
	}
	raw, found := v.fields.Get(key)
	if !found {
		return nil, false
	}
	return raw.(*Value), true
}

func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Lookup walks nested objects following keys.
func (v *Value) Lookup(keys ...string) (*Value, bool) {
	current := v
	for _, key := range keys {
		next, ok := current.Get(key)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Set stores value under key. A new key is appended after the existing
// keys; replacing an existing key keeps its position.
func (v *Value) Set(key string, value *Value) *Value {
	if v.Kind() != KindObject {
		return v
	}
	if value == nil {
		value = Null()
	}
	v.fields.Put(key, value)
	return v
}

func (v *Value) Delete(key string) {
	if v.Kind() != KindObject {
		return
	}
	v.fields.Remove(key)
}

func (v *Value) Keys() []string {
	if v.Kind() != KindObject {
		return nil
	}
	raw := v.fields.Keys()
	keys := make([]string, 0, len(raw))
	for _, key := range raw {
		keys = append(keys, key.(string))
	}
	return keys
}

// Len reports the number of fields of an object or items of an array.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindObject:
		return v.fields.Size()
	case KindArray:
		return len(v.items)
	default:
		return 0
	}
}

func (v *Value) Items() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.items
}

func (v *Value) Append(items ...*Value) *Value {
	if v.Kind() != KindArray {
		return v
	}
	v.items = append(v.items, items...)
	return v
}

// Filter keeps the array items for which keep returns true.
func (v *Value) Filter(keep func(item *Value) bool) *Value {
	if v.Kind() != KindArray {
		return v
	}
	kept := v.items[:0]
	for _, item := range v.items {
		if keep(item) {
			kept = append(kept, item)
		}
	}
	for idx := len(kept); idx < len(v.items); idx++ {
		v.items[idx] = nil
	}
	v.items = kept
	return v
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}
	switch v.kind {
	case KindArray:
		out := &Value{kind: KindArray, items: make([]*Value, 0, len(v.items))}
		for _, item := range v.items {
			out.items = append(out.items, item.Clone())
		}
		return out
	case KindObject:
		out := Object()
		for _, key := range v.Keys() {
			field, _ := v.Get(key)
			out.Set(key, field.Clone())
		}
		return out
	default:
		copied := *v
		return &copied
	}
}

// Equal reports deep equality. Object key order is not significant, array
// order is. Numbers compare by value when their literals differ.
func (v *Value) Equal(other *Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindBool:
		return v.flag == other.flag
	case KindString:
		return v.text == other.text
	case KindNumber:
		if v.text == other.text {
			return true
		}
		left, errLeft := strconv.ParseFloat(v.text, 64)
		right, errRight := strconv.ParseFloat(other.text, 64)
		return errLeft == nil && errRight == nil && left == right
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for idx := range v.items {
			if !v.items[idx].Equal(other.items[idx]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.Len() != other.Len() {
			return false
		}
		for _, key := range v.Keys() {
			mine, _ := v.Get(key)
			theirs, ok := other.Get(key)
			if !ok || !mine.Equal(theirs) {
				return false
			}
		}
		return true
	}
	return false
}
