package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Parse decodes a single JSON document.
func Parse(data []byte) (*Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one JSON document from r and rejects trailing content.
func Decode(r io.Reader) (*Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("unexpected content after document at offset %d", dec.InputOffset())
		}
		return nil, err
	}
	return value, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	token, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch typed := token.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(typed), nil
	case json.Number:
		return Number(typed.String()), nil
	case string:
		return String(typed), nil
	case json.Delim:
		switch typed {
		case '{':
			out := Object()
			for dec.More() {
				keyToken, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string at offset %d", dec.InputOffset())
				}
				field, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				out.Set(key, field)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		case '[':
			out := Array()
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				out.Append(item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v at offset %d", token, dec.InputOffset())
}

// Marshal encodes the value compactly, keeping object key order.
func Marshal(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, "", ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent encodes the value with one line per field or item.
func MarshalIndent(v *Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, "\n", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v *Value, prefix string, indent string) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.flag {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if !json.Valid([]byte(v.text)) {
			return fmt.Errorf("invalid number literal %q", v.text)
		}
		buf.WriteString(v.text)
	case KindString:
		writeString(buf, v.text)
	case KindArray:
		if len(v.items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		inner := prefix + indent
		buf.WriteByte('[')
		for idx, item := range v.items {
			if idx > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(inner)
			if err := encode(buf, item, inner, indent); err != nil {
				return err
			}
		}
		buf.WriteString(prefix)
		buf.WriteByte(']')
	case KindObject:
		keys := v.Keys()
		if len(keys) == 0 {
			buf.WriteString("{}")
			return nil
		}
		inner := prefix + indent
		buf.WriteByte('{')
		for idx, key := range keys {
			if idx > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(inner)
			writeString(buf, key)
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			field, _ := v.Get(key)
			if err := encode(buf, field, inner, indent); err != nil {
				return err
			}
		}
		buf.WriteString(prefix)
		buf.WriteByte('}')
	}
	return nil
}

func writeString(buf *bytes.Buffer, value string) {
	var scratch bytes.Buffer
	enc := json.NewEncoder(&scratch)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(value)
	buf.WriteString(strings.TrimSuffix(scratch.String(), "\n"))
}

func (v *Value) MarshalJSON() ([]byte, error) {
	return Marshal(v)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// String renders the value compactly; invalid number literals render as null.
func (v *Value) String() string {
	data, err := Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
