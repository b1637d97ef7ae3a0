// Package schematest checks JSON instances against generated documents in
// tests. Documents are validated as JSON Schema 2020-12.
package schematest

import (
	"testing"

	j "github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"

	js "github.com/reoring/schemagen/jsonschema"
)

// Compile resolves s for validation. The "$schema" keyword is dropped so
// documents stamped with another dialect URI still load.
func Compile(t testing.TB, s *js.Schema) *jsonschema.Resolved {
	t.Helper()
	doc := s.Clone()
	doc.Delete("$schema")
	raw, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	var sch jsonschema.Schema
	if err := j.Unmarshal(raw, &sch); err != nil {
		t.Fatalf("load schema %s: %v", raw, err)
	}
	rs, err := sch.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve schema %s: %v", raw, err)
	}
	return rs
}

// Accepts reports whether the JSON text instance is valid against s.
func Accepts(t testing.TB, s *js.Schema, instance string) bool {
	t.Helper()
	var v any
	if err := j.Unmarshal([]byte(instance), &v); err != nil {
		t.Fatalf("bad instance %s: %v", instance, err)
	}
	return Compile(t, s).Validate(v) == nil
}

// AssertAccepts fails t unless every instance is valid against s.
func AssertAccepts(t testing.TB, s *js.Schema, instances ...string) {
	t.Helper()
	for _, in := range instances {
		if !Accepts(t, s, in) {
			t.Errorf("expected %s to be accepted by %s", in, render(s))
		}
	}
}

// AssertRejects fails t if any instance is valid against s.
func AssertRejects(t testing.TB, s *js.Schema, instances ...string) {
	t.Helper()
	for _, in := range instances {
		if Accepts(t, s, in) {
			t.Errorf("expected %s to be rejected by %s", in, render(s))
		}
	}
}

func render(s *js.Schema) string {
	b, err := s.MarshalJSON()
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(b)
}
