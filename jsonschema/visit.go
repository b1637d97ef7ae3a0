package jsonschema

import "slices"

// Keywords whose value is a single subschema. "items" is handled apart
// since it may hold a single schema or a list.
var singleKeywords = []string{
	"not", "if", "then", "else", "contains",
	"additionalItems", "unevaluatedItems",
	"additionalProperties", "unevaluatedProperties", "propertyNames",
	"contentSchema",
}

// Keywords whose value is a list of subschemas.
var listKeywords = []string{"allOf", "anyOf", "oneOf", "prefixItems"}

// Keywords whose value maps names to subschemas.
var mapKeywords = []string{"properties", "patternProperties", "$defs", "definitions", "dependentSchemas"}

// IsSubschemaKeyword reports whether key holds subschemas.
func IsSubschemaKeyword(key string) bool {
	return key == "items" ||
		slices.Contains(singleKeywords, key) ||
		slices.Contains(listKeywords, key) ||
		slices.Contains(mapKeywords, key)
}

// VisitSubschemas calls fn for every direct subschema of s, in keyword
// order. fn may modify the subschema in place; it must not modify s.
func VisitSubschemas(s *Schema, fn func(*Schema)) {
	if s == nil || s.obj == nil {
		return
	}
	for p := s.obj.Oldest(); p != nil; p = p.Next() {
		if !IsSubschemaKeyword(p.Key) {
			continue
		}
		switch v := p.Value.(type) {
		case *Schema:
			fn(v)
		case []*Schema:
			for _, sub := range v {
				fn(sub)
			}
		case *Schemas:
			for sp := v.Oldest(); sp != nil; sp = sp.Next() {
				fn(sp.Value)
			}
		}
	}
}
