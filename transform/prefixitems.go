package transform

import js "github.com/reoring/schemagen/jsonschema"

// ReplacePrefixItems rewrites "prefixItems" as the list form of "items".
// A pre-existing "items" schema becomes "additionalItems".
type ReplacePrefixItems struct{}

func (t ReplacePrefixItems) Transform(s *js.Schema) {
	Recurse(t, s)
	prefix, ok := s.Delete("prefixItems")
	if !ok {
		return
	}
	if items, ok := s.Delete("items"); ok {
		s.Set("additionalItems", items)
	}
	s.Set("items", prefix)
}
