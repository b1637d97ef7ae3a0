// Package transform rewrites finished JSON Schema documents in place.
//
// A Transform recurses into subschemas itself, usually by calling Recurse
// before or after touching the current node. Transforms are total: a
// transform whose target keyword is absent leaves the schema untouched.
package transform

import js "github.com/reoring/schemagen/jsonschema"

// Transform mutates a schema in place.
type Transform interface {
	Transform(s *js.Schema)
}

// Func adapts a function to Transform.
type Func func(s *js.Schema)

// Transform calls f(s).
func (f Func) Transform(s *js.Schema) { f(s) }

// Pipeline applies transforms in order. It is itself a Transform.
type Pipeline []Transform

// Transform runs every transform of p over s.
func (p Pipeline) Transform(s *js.Schema) {
	for _, t := range p {
		t.Transform(s)
	}
}

// Recurse applies t to every direct subschema of s.
func Recurse(t Transform, s *js.Schema) {
	js.VisitSubschemas(s, t.Transform)
}
