package transform

import (
	"slices"

	js "github.com/reoring/schemagen/jsonschema"
)

// ReplaceUnevaluatedProperties rewrites "unevaluatedProperties" as
// "additionalProperties" for dialects that predate it. Property names
// declared by nested alternatives (allOf/anyOf/oneOf/if/then/else) are
// lifted into the schema's own "properties" as true-schemas so the flat
// keyword still admits them.
type ReplaceUnevaluatedProperties struct{}

func (t ReplaceUnevaluatedProperties) Transform(s *js.Schema) {
	Recurse(t, s)
	up, ok := s.Delete("unevaluatedProperties")
	if !ok {
		return
	}
	if !s.Has("additionalProperties") {
		s.Set("additionalProperties", up)
	}
	if sub, ok := up.(*js.Schema); ok {
		if b, isBool := sub.AsBool(); isBool && b {
			return
		}
	}
	names := gatherPropertyNames(s, nil)
	if len(names) == 0 {
		return
	}
	props := s.Properties()
	for _, n := range names {
		if _, exists := props.Get(n); !exists {
			props.Set(n, js.True())
		}
	}
}

var alternativeKeywords = []string{"allOf", "anyOf", "oneOf", "if", "then", "else"}

func gatherPropertyNames(s *js.Schema, acc []string) []string {
	for _, key := range alternativeKeywords {
		v, ok := s.Get(key)
		if !ok {
			continue
		}
		var subs []*js.Schema
		switch t := v.(type) {
		case *js.Schema:
			subs = []*js.Schema{t}
		case []*js.Schema:
			subs = t
		}
		for _, sub := range subs {
			if v, ok := sub.Get("properties"); ok {
				if m, ok := v.(*js.Schemas); ok {
					for p := m.Oldest(); p != nil; p = p.Next() {
						if !slices.Contains(acc, p.Key) {
							acc = append(acc, p.Key)
						}
					}
				}
			}
			acc = gatherPropertyNames(sub, acc)
		}
	}
	return acc
}
