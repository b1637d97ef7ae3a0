// Package variant builds schemas for tagged unions.
//
// Each strategy takes the cases of a variant type in declaration order and
// returns one schema describing every case. The strategies correspond to
// the four usual wire conventions:
//
//	External:  {"Case": payload}  or  "Case"
//	Internal:  {"kind": "Case", ...payload fields}
//	Adjacent:  {"t": "Case", "c": payload}
//	Untagged:  payload
//
// When the tags of all alternatives are pairwise distinct the alternatives
// are combined with oneOf, otherwise with anyOf. A variant without cases
// yields the false schema and a single alternative is returned unwrapped.
package variant

import (
	js "github.com/reoring/schemagen/jsonschema"
)

// Case is one alternative of a variant type.
type Case struct {
	// Name is the tag value identifying the case on the wire.
	Name string
	// Payload is the schema of the case content. nil marks a payload-free
	// (unit) case.
	Payload *js.Schema
	// Description is stamped on the case schema when non-empty.
	Description string
}

// Options controls the tag layout.
type Options struct {
	// DenyUnknownFields forbids members other than the tag (and content)
	// on object-shaped alternatives that the payload does not constrain.
	DenyUnknownFields bool
	// Tag names the tag member for Internal and Adjacent.
	Tag string
	// Content names the content member for Adjacent.
	Content string
}

// Literal returns the schema matching exactly the string name.
func Literal(name string) *js.Schema {
	return js.Of("type", "string", "const", name)
}

// External encodes payload-free cases as bare strings and every other case
// as a single-member object keyed by the case name.
func External(cases []Case, _ Options) *js.Schema {
	var units []string
	unitIdx := -1
	alts := make([]*js.Schema, 0, len(cases))
	for _, c := range cases {
		if c.Payload == nil && c.Description == "" {
			if unitIdx < 0 {
				unitIdx = len(alts)
				alts = append(alts, nil)
			}
			units = append(units, c.Name)
			continue
		}
		var s *js.Schema
		if c.Payload == nil {
			s = Literal(c.Name)
		} else {
			props := js.NewSchemas()
			props.Set(c.Name, c.Payload)
			s = js.Of(
				"type", "object",
				"properties", props,
				"required", []string{c.Name},
				"additionalProperties", js.False(),
			)
		}
		describe(s, c.Description)
		alts = append(alts, s)
	}
	if unitIdx >= 0 {
		alts[unitIdx] = unitEnum(units)
	}
	return combine(alts, distinct(cases))
}

// Internal merges the tag member into each case's object payload. Payloads
// must be object-shaped or absent.
func Internal(cases []Case, opts Options) *js.Schema {
	alts := make([]*js.Schema, 0, len(cases))
	for _, c := range cases {
		s := tagObject(opts.Tag, c.Name)
		if c.Payload == nil {
			if opts.DenyUnknownFields {
				s.Set("additionalProperties", js.False())
			}
		} else {
			js.Flatten(s, c.Payload)
		}
		describe(s, c.Description)
		alts = append(alts, s)
	}
	return combine(alts, distinct(cases))
}

// Adjacent wraps each case as {tag: name, content: payload}.
func Adjacent(cases []Case, opts Options) *js.Schema {
	alts := make([]*js.Schema, 0, len(cases))
	for _, c := range cases {
		s := tagObject(opts.Tag, c.Name)
		if c.Payload != nil {
			s.Properties().Set(opts.Content, c.Payload)
			s.AppendRequired(opts.Content)
		}
		if opts.DenyUnknownFields {
			s.Set("additionalProperties", js.False())
		}
		describe(s, c.Description)
		alts = append(alts, s)
	}
	return combine(alts, distinct(cases))
}

// Untagged uses each payload verbatim; a payload-free case matches null.
// Alternatives are always combined with anyOf since nothing on the wire
// tells them apart.
func Untagged(cases []Case, _ Options) *js.Schema {
	alts := make([]*js.Schema, 0, len(cases))
	for _, c := range cases {
		s := c.Payload
		if s == nil {
			s = js.NullSchema()
		}
		describe(s, c.Description)
		alts = append(alts, s)
	}
	return combine(alts, false)
}

func tagObject(tag, name string) *js.Schema {
	props := js.NewSchemas()
	props.Set(tag, Literal(name))
	return js.Of(
		"type", "object",
		"properties", props,
		"required", []string{tag},
	)
}

func unitEnum(names []string) *js.Schema {
	if len(names) == 1 {
		return Literal(names[0])
	}
	enum := make([]any, len(names))
	for i, n := range names {
		enum[i] = n
	}
	return js.Of("type", "string", "enum", enum)
}

func describe(s *js.Schema, d string) {
	if d != "" {
		s.Set("description", d)
	}
}

// distinct reports whether no two cases share a tag.
func distinct(cases []Case) bool {
	seen := make(map[string]struct{}, len(cases))
	for _, c := range cases {
		if _, dup := seen[c.Name]; dup {
			return false
		}
		seen[c.Name] = struct{}{}
	}
	return true
}

func combine(alts []*js.Schema, exclusive bool) *js.Schema {
	switch len(alts) {
	case 0:
		return js.False()
	case 1:
		return alts[0]
	}
	if exclusive {
		return js.Of("oneOf", alts)
	}
	return js.Of("anyOf", alts)
}
