package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	j "github.com/goccy/go-json"

	"github.com/reoring/schemagen/internal/orderedjson"
)

// ErrNotSchema is returned when a JSON value is neither a boolean nor an object.
var ErrNotSchema = errors.New("jsonschema: value is not a schema (want boolean or object)")

// MarshalJSON writes s with keywords in insertion order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	b := &bytes.Buffer{}
	if err := s.encode(b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// UnmarshalJSON parses data into s, keeping keyword order.
func (s *Schema) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// MarshalIndent is MarshalJSON followed by indentation.
func MarshalIndent(s *Schema, prefix, indent string) ([]byte, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	out := &bytes.Buffer{}
	if err := j.Indent(out, raw, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (s *Schema) encode(b *bytes.Buffer) error {
	switch {
	case s == nil:
		b.WriteString("null")
	case s.obj == nil:
		if s.val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	default:
		return encodeObject(b, s.obj)
	}
	return nil
}

func encodeObject(b *bytes.Buffer, o *Object) error {
	b.WriteByte('{')
	first := true
	for p := o.Oldest(); p != nil; p = p.Next() {
		if !first {
			b.WriteByte(',')
		}
		first = false
		if err := encodeKey(b, p.Key); err != nil {
			return err
		}
		if err := encodeValue(b, p.Value); err != nil {
			return fmt.Errorf("%s: %w", p.Key, err)
		}
	}
	b.WriteByte('}')
	return nil
}

func encodeKey(b *bytes.Buffer, k string) error {
	kb, err := j.Marshal(k)
	if err != nil {
		return err
	}
	b.Write(kb)
	b.WriteByte(':')
	return nil
}

func encodeValue(b *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case *Schema:
		return t.encode(b)
	case []*Schema:
		b.WriteByte('[')
		for i, s := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := s.encode(b); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case *Schemas:
		b.WriteByte('{')
		i := 0
		for p := t.Oldest(); p != nil; p = p.Next() {
			if i > 0 {
				b.WriteByte(',')
			}
			i++
			if err := encodeKey(b, p.Key); err != nil {
				return err
			}
			if err := p.Value.encode(b); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case *Object:
		return encodeObject(b, t)
	case []any:
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := encodeValue(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := encodeKey(b, k); err != nil {
				return err
			}
			if err := encodeValue(b, t[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		raw, err := j.Marshal(v)
		if err != nil {
			return err
		}
		b.Write(raw)
	}
	return nil
}

// Parse decodes a JSON document into a Schema, keeping keyword order.
func Parse(data []byte) (*Schema, error) {
	v, err := orderedjson.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}
	return FromValue(v)
}

// FromValue converts a decoded JSON value into a Schema. Values under
// subschema keywords become *Schema, []*Schema or *Schemas; everything else
// is kept as decoded. A keyword whose value is not schema-shaped is kept
// verbatim.
func FromValue(v any) (*Schema, error) {
	switch t := v.(type) {
	case bool:
		return Bool(t), nil
	case *Object:
		s := New()
		for p := t.Oldest(); p != nil; p = p.Next() {
			s.obj.Set(p.Key, convertKeyword(p.Key, p.Value))
		}
		return s, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		s := New()
		for _, k := range keys {
			s.obj.Set(k, convertKeyword(k, t[k]))
		}
		return s, nil
	}
	return nil, ErrNotSchema
}

func convertKeyword(key string, v any) any {
	switch {
	case key == "type" || key == "required":
		if list, ok := v.([]any); ok {
			if names, ok := stringList(list); ok {
				return names
			}
		}
		return v
	case key == "items":
		if list, ok := v.([]any); ok {
			if subs, ok := schemaList(list); ok {
				return subs
			}
			return v
		}
		if s, err := FromValue(v); err == nil {
			return s
		}
	case slices.Contains(singleKeywords, key):
		if s, err := FromValue(v); err == nil {
			return s
		}
	case slices.Contains(listKeywords, key):
		if list, ok := v.([]any); ok {
			if subs, ok := schemaList(list); ok {
				return subs
			}
		}
	case slices.Contains(mapKeywords, key):
		if m, ok := schemaMap(v); ok {
			return m
		}
	}
	return v
}

func schemaList(list []any) ([]*Schema, bool) {
	out := make([]*Schema, 0, len(list))
	for _, e := range list {
		s, err := FromValue(e)
		if err != nil {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func schemaMap(v any) (*Schemas, bool) {
	o, ok := v.(*Object)
	if !ok {
		return nil, false
	}
	out := NewSchemas()
	for p := o.Oldest(); p != nil; p = p.Next() {
		s, err := FromValue(p.Value)
		if err != nil {
			return nil, false
		}
		out.Set(p.Key, s)
	}
	return out, true
}

// ToValue converts arbitrary Go data (defaults, examples, enum members)
// into a JSON value by round-tripping it through the encoder. Channels,
// functions and non-finite floats are rejected.
func ToValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, j.Number:
		return v, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("non-finite number %v is not representable", t)
		}
		return v, nil
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return nil, fmt.Errorf("non-finite number %v is not representable", t)
		}
		return v, nil
	case *Schema:
		return t.Clone(), nil
	}
	raw, err := j.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value of type %T is not representable as JSON: %w", v, err)
	}
	out, err := orderedjson.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("value of type %T is not representable as JSON: %w", v, err)
	}
	return out, nil
}
