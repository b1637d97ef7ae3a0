package transform

import js "github.com/reoring/schemagen/jsonschema"

// RemoveRefSiblings moves a "$ref" that shares its object with other
// keywords into "allOf", for dialects where siblings of "$ref" are ignored.
type RemoveRefSiblings struct{}

func (t RemoveRefSiblings) Transform(s *js.Schema) {
	Recurse(t, s)
	if s.Len() <= 1 {
		return
	}
	ref, ok := s.Ref()
	if !ok {
		return
	}
	s.Delete("$ref")
	allOf := append([]*js.Schema{js.NewRef(ref)}, s.Subschemas("allOf")...)
	s.Set("allOf", allOf)
}
