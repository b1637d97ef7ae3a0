package jsonschema

import (
	"fmt"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is an ordered JSON object. Schema keyword maps and any
// non-schema object values that must keep their member order use it.
type Object = orderedmap.OrderedMap[string, any]

// Schemas is an ordered name -> subschema map, used for properties,
// patternProperties, $defs, definitions and dependentSchemas.
type Schemas = orderedmap.OrderedMap[string, *Schema]

// NewObject returns an empty ordered JSON object.
func NewObject() *Object { return orderedmap.New[string, any]() }

// NewSchemas returns an empty ordered subschema map.
func NewSchemas() *Schemas { return orderedmap.New[string, *Schema]() }

// Schema is one JSON Schema value: either a boolean schema or an object
// schema holding an ordered keyword map. A reference is an object schema
// whose only keyword is "$ref".
//
// Keyword values are JSON values. Subschemas are stored as *Schema,
// subschema lists as []*Schema and subschema maps as *Schemas.
type Schema struct {
	obj *Object // nil for boolean schemas
	val bool
}

// Bool returns a boolean schema.
func Bool(b bool) *Schema { return &Schema{val: b} }

// True returns the schema that accepts everything.
func True() *Schema { return Bool(true) }

// False returns the schema that rejects everything.
func False() *Schema { return Bool(false) }

// New returns an empty object schema ({}).
func New() *Schema { return &Schema{obj: NewObject()} }

// NewRef returns {"$ref": pointer}.
func NewRef(pointer string) *Schema {
	s := New()
	s.obj.Set("$ref", pointer)
	return s
}

// Of builds an object schema from alternating key/value arguments, keeping
// argument order. It panics on an odd argument count or a non-string key.
func Of(kv ...any) *Schema {
	if len(kv)%2 != 0 {
		panic("jsonschema.Of: odd number of arguments")
	}
	s := New()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("jsonschema.Of: key %v is %T, want string", kv[i], kv[i]))
		}
		s.obj.Set(k, kv[i+1])
	}
	return s
}

// AsBool reports the boolean value of a boolean schema. ok is false for
// object schemas.
func (s *Schema) AsBool() (value, ok bool) {
	if s == nil || s.obj != nil {
		return false, false
	}
	return s.val, true
}

// IsObject reports whether s is an object schema.
func (s *Schema) IsObject() bool { return s != nil && s.obj != nil }

// Object exposes the keyword map. It is nil for boolean schemas.
func (s *Schema) Object() *Object {
	if s == nil {
		return nil
	}
	return s.obj
}

// EnsureObject converts a boolean schema into its object equivalent in
// place (true -> {}, false -> {"not": {}}) and returns s.
func (s *Schema) EnsureObject() *Schema {
	if s.obj != nil {
		return s
	}
	s.obj = NewObject()
	if !s.val {
		s.obj.Set("not", New())
	}
	return s
}

// Get returns the value of a keyword.
func (s *Schema) Get(key string) (any, bool) {
	if s == nil || s.obj == nil {
		return nil, false
	}
	return s.obj.Get(key)
}

// Has reports whether a keyword is present.
func (s *Schema) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Set assigns a keyword. A boolean schema is first converted with
// EnsureObject. Existing keywords keep their position.
func (s *Schema) Set(key string, v any) {
	s.EnsureObject()
	s.obj.Set(key, v)
}

// SetValue converts v with ToValue before assigning it, so metadata that
// has no JSON representation fails here rather than at encode time.
func (s *Schema) SetValue(key string, v any) error {
	jv, err := ToValue(v)
	if err != nil {
		return fmt.Errorf("jsonschema: keyword %q: %w", key, err)
	}
	s.Set(key, jv)
	return nil
}

// Delete removes a keyword and returns its previous value.
func (s *Schema) Delete(key string) (any, bool) {
	if s == nil || s.obj == nil {
		return nil, false
	}
	return s.obj.Delete(key)
}

// Len returns the number of keywords (0 for boolean schemas).
func (s *Schema) Len() int {
	if s == nil || s.obj == nil {
		return 0
	}
	return s.obj.Len()
}

// Keys returns keywords in order.
func (s *Schema) Keys() []string {
	if s == nil || s.obj == nil {
		return nil
	}
	keys := make([]string, 0, s.obj.Len())
	for p := s.obj.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Ref returns the "$ref" pointer when present.
func (s *Schema) Ref() (string, bool) {
	v, ok := s.Get("$ref")
	if !ok {
		return "", false
	}
	r, ok := v.(string)
	return r, ok
}

// IsRef reports whether s is a bare reference ({"$ref": ...} and nothing else).
func (s *Schema) IsRef() bool {
	_, ok := s.Ref()
	return ok && s.Len() == 1
}

// Subschema returns the keyword value when it holds a single subschema.
func (s *Schema) Subschema(key string) *Schema {
	v, _ := s.Get(key)
	sub, _ := v.(*Schema)
	return sub
}

// Subschemas returns the keyword value when it holds a subschema list.
func (s *Schema) Subschemas(key string) []*Schema {
	v, _ := s.Get(key)
	list, _ := v.([]*Schema)
	return list
}

// Properties returns the "properties" map, creating it when absent.
func (s *Schema) Properties() *Schemas {
	if v, ok := s.Get("properties"); ok {
		if m, ok := v.(*Schemas); ok {
			return m
		}
	}
	m := NewSchemas()
	s.Set("properties", m)
	return m
}

// Types returns the "type" keyword as a list. ok is false when the keyword
// is absent or not a string / list of strings.
func (s *Schema) Types() (types []string, ok bool) {
	v, present := s.Get("type")
	if !present {
		return nil, false
	}
	return stringList(v)
}

// SetTypes writes "type", using the bare string form for one entry.
func (s *Schema) SetTypes(types []string) {
	if len(types) == 1 {
		s.Set("type", types[0])
		return
	}
	s.Set("type", append([]string(nil), types...))
}

// HasType reports whether "type" lists t.
func (s *Schema) HasType(t string) bool {
	types, _ := s.Types()
	return slices.Contains(types, t)
}

// Required returns the "required" names.
func (s *Schema) Required() []string {
	v, _ := s.Get("required")
	names, _ := stringList(v)
	return names
}

// AppendRequired adds names to "required", skipping names already listed.
func (s *Schema) AppendRequired(names ...string) {
	if len(names) == 0 {
		return
	}
	cur := s.Required()
	for _, n := range names {
		if !slices.Contains(cur, n) {
			cur = append(cur, n)
		}
	}
	s.Set("required", cur)
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	if s.obj == nil {
		return Bool(s.val)
	}
	return &Schema{obj: cloneObject(s.obj)}
}

func cloneObject(o *Object) *Object {
	out := NewObject()
	for p := o.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, cloneValue(p.Value))
	}
	return out
}

func cloneSchemas(m *Schemas) *Schemas {
	out := NewSchemas()
	for p := m.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, p.Value.Clone())
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Schema:
		return t.Clone()
	case []*Schema:
		out := make([]*Schema, len(t))
		for i, s := range t {
			out[i] = s.Clone()
		}
		return out
	case *Schemas:
		return cloneSchemas(t)
	case *Object:
		return cloneObject(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case string:
		return []string{t}, true
	case []string:
		return append([]string(nil), t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
