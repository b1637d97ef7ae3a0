package schemagen

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	js "github.com/reoring/schemagen/jsonschema"
	"github.com/reoring/schemagen/transform"
)

// Contract selects which direction of the wire format a schema describes.
type Contract int

const (
	Deserialize Contract = iota // Values accepted as input.
	Serialize                   // Values produced as output.
)

func (c Contract) String() string {
	if c == Serialize {
		return "serialize"
	}
	return "deserialize"
}

// ParseContract accepts "serialize" or "deserialize" (case-insensitive).
func ParseContract(s string) (Contract, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deserialize", "de", "input":
		return Deserialize, nil
	case "serialize", "ser", "output":
		return Serialize, nil
	}
	return Deserialize, fmt.Errorf("%w: unknown contract %q", ErrInvalidSettings, s)
}

// Meta-schema URIs of the built-in dialects.
const (
	MetaSchemaDraft07     = "http://json-schema.org/draft-07/schema#"
	MetaSchemaDraft201909 = "https://json-schema.org/draft/2019-09/schema"
	MetaSchemaDraft202012 = "https://json-schema.org/draft/2020-12/schema"
	MetaSchemaOpenAPI3    = "https://spec.openapis.org/oas/3.0/schema/2021-09-28#/definitions/Schema"
)

// Settings configures a Generator.
type Settings struct {
	// DefinitionsPath is the JSON Pointer (relative to the document root)
	// where named definitions are embedded, e.g. "/$defs".
	DefinitionsPath string
	// MetaSchema is written as the root "$schema" when non-empty.
	MetaSchema string
	// Contract selects serialize or deserialize semantics.
	Contract Contract
	// Transforms run over the assembled root document, in order.
	Transforms []transform.Transform
	// InlineSubschemas inlines every referenceable descriptor except where
	// recursion forces a reference.
	InlineSubschemas bool
	// OptionNullable sets "nullable": true on optional values.
	OptionNullable bool
	// OptionAddNullType adds "null" to the accepted types of optional values.
	OptionAddNullType bool
	// OptionNullUnion makes OptionAddNullType always wrap optional values as
	// anyOf [value, {"type": "null"}] instead of extending "type".
	OptionNullUnion bool
}

// Draft07 targets JSON Schema draft-07.
func Draft07() Settings {
	return Settings{
		DefinitionsPath:   "/definitions",
		MetaSchema:        MetaSchemaDraft07,
		OptionAddNullType: true,
		Transforms: []transform.Transform{
			transform.ReplaceUnevaluatedProperties{},
			transform.RemoveRefSiblings{},
			transform.ReplacePrefixItems{},
		},
	}
}

// Draft201909 targets JSON Schema 2019-09.
func Draft201909() Settings {
	return Settings{
		DefinitionsPath:   "/$defs",
		MetaSchema:        MetaSchemaDraft201909,
		OptionAddNullType: true,
		Transforms:        []transform.Transform{transform.ReplacePrefixItems{}},
	}
}

// Draft202012 targets JSON Schema 2020-12. No transforms are needed.
func Draft202012() Settings {
	return Settings{
		DefinitionsPath:   "/$defs",
		MetaSchema:        MetaSchemaDraft202012,
		OptionAddNullType: true,
	}
}

// OpenAPI3 targets the OpenAPI 3.0 schema object.
func OpenAPI3() Settings {
	return Settings{
		DefinitionsPath:   "/components/schemas",
		MetaSchema:        MetaSchemaOpenAPI3,
		OptionAddNullType: true,
		Transforms: []transform.Transform{
			transform.ReplaceUnevaluatedProperties{},
			transform.ReplaceBoolSchemas{SkipAdditionalProperties: true},
			transform.RemoveRefSiblings{},
			transform.ReplacePrefixItems{},
			transform.AddNullable{RemoveNullType: true, AddConstNull: true},
			transform.ReplaceConstValue{},
			transform.SetSingleExample{},
			transform.RestrictFormats{Allowed: transform.OpenAPI3Formats},
		},
	}
}

var dialects = map[string]func() Settings{
	"draft-07": Draft07,
	"2019-09":  Draft201909,
	"2020-12":  Draft202012,
	"openapi3": OpenAPI3,
}

var dialectAliases = map[string]string{
	"draft07":       "draft-07",
	"7":             "draft-07",
	"draft2019-09":  "2019-09",
	"draft-2019-09": "2019-09",
	"draft2020-12":  "2020-12",
	"draft-2020-12": "2020-12",
	"openapi":       "openapi3",
	"openapi-3":     "openapi3",
	"openapi3.0":    "openapi3",

	MetaSchemaDraft07:     "draft-07",
	MetaSchemaDraft201909: "2019-09",
	MetaSchemaDraft202012: "2020-12",
	MetaSchemaOpenAPI3:    "openapi3",
}

// Dialect returns the preset registered under name. Aliases such as
// "draft07", "draft2020-12" and the meta-schema URIs are accepted.
func Dialect(name string) (Settings, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := dialectAliases[key]; ok {
		key = alias
	} else if alias, ok := dialectAliases[name]; ok {
		key = alias
	}
	if f, ok := dialects[key]; ok {
		return f(), nil
	}
	return Settings{}, fmt.Errorf("%w: unknown dialect %q (known: %s)", ErrInvalidSettings, name, strings.Join(Dialects(), ", "))
}

// Dialects lists the canonical preset names.
func Dialects() []string {
	names := make([]string, 0, len(dialects))
	for n := range dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that DefinitionsPath is an absolute JSON Pointer with at
// least one non-empty token.
func (s Settings) Validate() error {
	toks, err := js.SplitPointer(s.DefinitionsPath)
	if err != nil {
		return fmt.Errorf("%w: definitions path %q: %v", ErrInvalidSettings, s.DefinitionsPath, err)
	}
	if len(toks) == 0 || slices.Contains(toks, "") {
		return fmt.Errorf("%w: definitions path %q must name at least one non-empty token", ErrInvalidSettings, s.DefinitionsPath)
	}
	return nil
}

// NullOptions maps the optional-value settings onto js.AddNull.
func (s Settings) NullOptions() js.NullOptions {
	return js.NullOptions{AddNullType: s.OptionAddNullType, Union: s.OptionNullUnion, Nullable: s.OptionNullable}
}

// WithContract returns a copy of s using contract c.
func (s Settings) WithContract(c Contract) Settings {
	s.Contract = c
	return s
}

// WithInlineSubschemas returns a copy of s with inlining set to v.
func (s Settings) WithInlineSubschemas(v bool) Settings {
	s.InlineSubschemas = v
	return s
}

// WithTransforms returns a copy of s with ts appended to its transforms.
func (s Settings) WithTransforms(ts ...transform.Transform) Settings {
	s.Transforms = append(slices.Clone(s.Transforms), ts...)
	return s
}

// definitionsVisited reports whether transforms reach the definitions
// container on their own, i.e. it is a $defs/definitions keyword at the root.
func (s Settings) definitionsVisited() bool {
	return s.DefinitionsPath == "/$defs" || s.DefinitionsPath == "/definitions"
}
