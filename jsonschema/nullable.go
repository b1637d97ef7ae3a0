package jsonschema

import "slices"

// NullOptions selects how AddNull widens a schema.
type NullOptions struct {
	// AddNullType adds "null" to the accepted types, by extending "type"
	// where possible and by an anyOf union otherwise.
	AddNullType bool
	// Union always uses the anyOf form, even where "type" could be extended.
	Union bool
	// Nullable sets the legacy OpenAPI "nullable": true flag on the result.
	Nullable bool
}

// NullSchema returns {"type": "null"}.
func NullSchema() *Schema { return Of("type", "null") }

// AddNull widens s so it also accepts null. s may be modified and the
// result may be s itself or a new wrapper around it.
func AddNull(s *Schema, opts NullOptions) *Schema {
	out := s
	if opts.AddNullType {
		out = addNullType(s, opts.Union)
	}
	if opts.Nullable {
		if b, ok := out.AsBool(); ok && b {
			out = New()
		}
		out.Set("nullable", true)
	}
	return out
}

func addNullType(s *Schema, union bool) *Schema {
	if b, ok := s.AsBool(); ok {
		if b {
			return s
		}
		return NullSchema()
	}
	if s.Len() == 0 {
		return s
	}
	types, _ := s.Types()
	if slices.Contains(types, "null") {
		return s
	}
	if union || needsUnion(s) {
		return Of("anyOf", []*Schema{s, NullSchema()})
	}
	s.SetTypes(append(types, "null"))
	if enum, ok := s.Get("enum"); ok {
		if list, ok := enum.([]any); ok && !containsNull(list) {
			s.Set("enum", append(list, nil))
		}
	}
	return s
}

func needsUnion(s *Schema) bool {
	for _, k := range []string{"$ref", "oneOf", "anyOf", "allOf", "const"} {
		if s.Has(k) {
			return true
		}
	}
	_, ok := s.Types()
	return !ok
}

func containsNull(list []any) bool {
	for _, e := range list {
		if e == nil {
			return true
		}
	}
	return false
}
