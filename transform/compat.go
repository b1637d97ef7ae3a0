package transform

import js "github.com/reoring/schemagen/jsonschema"

// ReplaceBoolSchemas turns boolean subschemas into object equivalents
// (true -> {}, false -> {"not": {}}) for consumers that only accept objects.
type ReplaceBoolSchemas struct {
	// SkipAdditionalProperties keeps a boolean "additionalProperties",
	// which OpenAPI 3.0 allows.
	SkipAdditionalProperties bool
}

func (t ReplaceBoolSchemas) Transform(s *js.Schema) {
	if _, ok := s.AsBool(); ok {
		s.EnsureObject()
		return
	}
	var keep *js.Schema
	if t.SkipAdditionalProperties {
		if ap := s.Subschema("additionalProperties"); ap != nil {
			if _, isBool := ap.AsBool(); isBool {
				keep = ap
			}
		}
	}
	js.VisitSubschemas(s, func(sub *js.Schema) {
		if sub == keep {
			return
		}
		t.Transform(sub)
	})
}

// ReplaceConstValue rewrites "const": x as "enum": [x].
type ReplaceConstValue struct{}

func (t ReplaceConstValue) Transform(s *js.Schema) {
	Recurse(t, s)
	if s.Has("enum") {
		return
	}
	if v, ok := s.Delete("const"); ok {
		s.Set("enum", []any{v})
	}
}

// SetSingleExample rewrites "examples": [a, ...] as "example": a.
type SetSingleExample struct{}

func (t SetSingleExample) Transform(s *js.Schema) {
	Recurse(t, s)
	v, ok := s.Delete("examples")
	if !ok {
		return
	}
	if list, ok := v.([]any); ok && len(list) > 0 {
		s.Set("example", list[0])
	}
}
