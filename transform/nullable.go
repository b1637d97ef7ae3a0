package transform

import js "github.com/reoring/schemagen/jsonschema"

// AddNullable sets the OpenAPI 3.0 "nullable" flag on every schema whose
// "type" admits "null".
type AddNullable struct {
	// RemoveNullType drops "null" from "type" once the flag is set.
	RemoveNullType bool
	// AddConstNull adds "const": null when "null" was the only type and
	// RemoveNullType left "type" empty.
	AddConstNull bool
}

func (t AddNullable) Transform(s *js.Schema) {
	Recurse(t, s)
	types, ok := s.Types()
	if !ok {
		return
	}
	rest := make([]string, 0, len(types))
	for _, ty := range types {
		if ty != "null" {
			rest = append(rest, ty)
		}
	}
	if len(rest) == len(types) {
		return
	}
	s.Set("nullable", true)
	if !t.RemoveNullType {
		return
	}
	if len(rest) == 0 {
		s.Delete("type")
		if t.AddConstNull {
			s.Set("const", nil)
		}
		return
	}
	s.SetTypes(rest)
}
