package transform

import (
	"strings"

	js "github.com/reoring/schemagen/jsonschema"
)

var draft07Formats = []string{
	"date-time", "date", "time", "email", "idn-email", "hostname", "idn-hostname",
	"ipv4", "ipv6", "uri", "uri-reference", "iri", "iri-reference", "uri-template",
	"json-pointer", "relative-json-pointer", "regex",
}

var draft201909Formats = append(append([]string(nil), draft07Formats...), "duration", "uuid")

// OpenAPI3Formats are the formats defined by the OpenAPI 3.0 data types.
var OpenAPI3Formats = []string{"int32", "int64", "float", "double", "byte", "binary", "date", "date-time", "password"}

// FormatsFor returns the formats defined by the dialect identified by a
// "$schema" URI, or nil when the URI is not recognised.
func FormatsFor(metaSchema string) []string {
	switch {
	case strings.Contains(metaSchema, "draft-07"):
		return draft07Formats
	case strings.Contains(metaSchema, "draft/2019-09"), strings.Contains(metaSchema, "draft/2020-12"):
		return draft201909Formats
	case strings.Contains(metaSchema, "spec.openapis.org/oas/3.0"):
		return OpenAPI3Formats
	}
	return nil
}

// RestrictFormats removes "format" values the target dialect does not
// define. The allow-list is Allowed plus, with InferFromMetaSchema, the
// formats of the nearest enclosing "$schema". A nested "$schema" re-infers
// the list for its subtree. With an empty allow-list nothing is removed.
type RestrictFormats struct {
	InferFromMetaSchema bool
	Allowed             []string
}

func (t RestrictFormats) Transform(s *js.Schema) {
	t.apply(s, t.allowSet(nil))
}

func (t RestrictFormats) allowSet(inferred []string) map[string]struct{} {
	set := make(map[string]struct{}, len(t.Allowed)+len(inferred))
	for _, f := range t.Allowed {
		set[f] = struct{}{}
	}
	for _, f := range inferred {
		set[f] = struct{}{}
	}
	return set
}

func (t RestrictFormats) apply(s *js.Schema, allowed map[string]struct{}) {
	if !s.IsObject() {
		return
	}
	if t.InferFromMetaSchema {
		if v, ok := s.Get("$schema"); ok {
			if uri, ok := v.(string); ok {
				allowed = t.allowSet(FormatsFor(uri))
			}
		}
	}
	if len(allowed) > 0 {
		if v, ok := s.Get("format"); ok {
			if f, ok := v.(string); ok {
				if _, keep := allowed[f]; !keep {
					s.Delete("format")
				}
			}
		}
	}
	js.VisitSubschemas(s, func(sub *js.Schema) { t.apply(sub, allowed) })
}
