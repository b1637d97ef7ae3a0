package desc

import (
	"fmt"

	sg "github.com/reoring/schemagen"
	js "github.com/reoring/schemagen/jsonschema"
	"github.com/reoring/schemagen/variant"
)

// Tagging selects how a Variant marks its active case on the wire.
type Tagging int

const (
	External Tagging = iota // {"Case": payload} or "Case"
	Internal                // {"tag": "Case", ...payload members}
	Adjacent                // {"tag": "Case", "content": payload}
	Untagged                // payload
)

func (t Tagging) String() string {
	switch t {
	case External:
		return "external"
	case Internal:
		return "internal"
	case Adjacent:
		return "adjacent"
	case Untagged:
		return "untagged"
	}
	return fmt.Sprintf("Tagging(%d)", int(t))
}

// ParseTagging returns the Tagging named s.
func ParseTagging(s string) (Tagging, error) {
	for _, t := range []Tagging{External, Internal, Adjacent, Untagged} {
		if t.String() == s {
			return t, nil
		}
	}
	return External, fmt.Errorf("desc: unknown tagging %q", s)
}

// Shape is the payload form of a variant case.
type Shape int

const (
	ShapeUnit    Shape = iota // no payload
	ShapeNewtype              // one unnamed payload value, Case.Inner
	ShapeTuple                // positional payload, Case.Elems
	ShapeRecord               // named payload members, Case.Fields
)

// Variant describes a tagged union.
type Variant struct {
	Name    string
	ID      string // defaults to "variant:" + Name
	Tagging Tagging
	// Tag names the tag member (Internal, Adjacent).
	Tag string
	// Content names the payload member (Adjacent).
	Content           string
	DenyUnknownFields bool
	Cases             []Case
	Inline            bool
	Description       string
}

// Case is one alternative of a Variant.
type Case struct {
	// Name is the tag value when serializing.
	Name string
	// DeserializeName overrides Name when deserializing.
	DeserializeName string
	Shape           Shape
	Inner           sg.Descriptor
	Elems           []sg.Descriptor
	Fields          []Field
	SkipSerialize   bool
	SkipDeserialize bool
	Description     string
}

func (v *Variant) SchemaName() string { return v.Name }

func (v *Variant) SchemaID() string {
	if v.ID != "" {
		return v.ID
	}
	return "variant:" + v.Name
}

func (v *Variant) AlwaysInline() bool { return v.Inline }

func (v *Variant) JSONSchema(g *sg.Generator) *js.Schema {
	c := g.Contract()
	cases := make([]variant.Case, 0, len(v.Cases))
	for _, vc := range v.Cases {
		if vc.skipped(c) {
			continue
		}
		cases = append(cases, variant.Case{
			Name:        vc.wireName(c),
			Payload:     v.payload(g, vc),
			Description: vc.Description,
		})
	}
	opts := variant.Options{DenyUnknownFields: v.DenyUnknownFields, Tag: v.Tag, Content: v.Content}

	var s *js.Schema
	switch v.Tagging {
	case Internal:
		s = variant.Internal(cases, opts)
	case Adjacent:
		s = variant.Adjacent(cases, opts)
	case Untagged:
		s = variant.Untagged(cases, opts)
	default:
		s = variant.External(cases, opts)
	}
	if v.Description != "" {
		s.Set("description", v.Description)
	}
	return s
}

// payload resolves the content schema of one case. Internally tagged
// payloads are resolved inline so the tag member merges into their
// members; a payload already under construction comes back as a
// reference, which Flatten handles through unevaluatedProperties.
func (v *Variant) payload(g *sg.Generator, vc Case) *js.Schema {
	switch vc.Shape {
	case ShapeNewtype:
		if v.Tagging == Internal {
			return g.ResolveInline(vc.Inner)
		}
		return g.Resolve(vc.Inner)
	case ShapeTuple:
		return Tuple{Elems: vc.Elems}.JSONSchema(g)
	case ShapeRecord:
		s := js.New()
		objectBody(g, s, vc.Fields, v.DenyUnknownFields)
		return s
	}
	return nil
}

func (v *Variant) Children() []sg.Descriptor {
	var out []sg.Descriptor
	for _, c := range v.Cases {
		switch c.Shape {
		case ShapeNewtype:
			out = append(out, c.Inner)
		case ShapeTuple:
			out = append(out, c.Elems...)
		case ShapeRecord:
			out = append(out, fieldTypes(c.Fields)...)
		}
	}
	return out
}

func (v *Variant) CheckShape() sg.Issues {
	var iss sg.Issues
	switch v.Tagging {
	case Internal:
		if v.Tag == "" {
			iss = append(iss, sg.IssueAt("/tag", sg.CodeMissingTag, "internally tagged variant needs a tag name"))
		}
	case Adjacent:
		if v.Tag == "" {
			iss = append(iss, sg.IssueAt("/tag", sg.CodeMissingTag, "adjacently tagged variant needs a tag name"))
		}
		if v.Content == "" {
			iss = append(iss, sg.IssueAt("/content", sg.CodeMissingTag, "adjacently tagged variant needs a content name"))
		}
		if v.Tag != "" && v.Tag == v.Content {
			iss = append(iss, sg.IssueAt("/content", sg.CodeTagContentClash, "tag and content both named %q", v.Tag))
		}
	case External, Untagged:
	default:
		iss = append(iss, sg.IssueAt("/tagging", sg.CodeInvalidShape, "unknown tagging %d", int(v.Tagging)))
	}

	if v.Tagging != Untagged {
		for _, c := range []sg.Contract{sg.Deserialize, sg.Serialize} {
			seen := map[string]bool{}
			for _, vc := range v.Cases {
				if vc.skipped(c) {
					continue
				}
				name := vc.wireName(c)
				if seen[name] {
					iss = append(iss, sg.IssueAt("/cases/"+js.EscapeToken(name), sg.CodeDuplicateName,
						"case %q declared twice when %s", name, c))
				}
				seen[name] = true
			}
		}
	}

	for i, vc := range v.Cases {
		iss = append(iss, v.checkCase(i, vc)...)
	}
	return iss
}

func (v *Variant) checkCase(i int, vc Case) sg.Issues {
	path := "/cases/" + js.EscapeToken(vc.Name)
	if vc.Name == "" {
		path = fmt.Sprintf("/cases/%d", i)
	}
	var iss sg.Issues
	switch vc.Shape {
	case ShapeUnit:
	case ShapeNewtype:
		switch {
		case vc.Inner == nil:
			iss = append(iss, sg.IssueAt(path, sg.CodeNilDescriptor, "newtype case payload is nil"))
		case v.Tagging == Internal && !objectShaped(vc.Inner):
			iss = append(iss, sg.IssueAt(path, sg.CodeNonObjectPayload,
				"internally tagged case payload %s is not object-shaped", vc.Inner.SchemaName()))
		}
	case ShapeTuple:
		if v.Tagging == Internal {
			iss = append(iss, sg.IssueAt(path, sg.CodeNonObjectPayload, "internally tagged case cannot carry a tuple"))
		}
		for j, e := range vc.Elems {
			if e == nil {
				iss = append(iss, sg.IssueAt(fmt.Sprintf("%s/prefixItems/%d", path, j), sg.CodeNilDescriptor, "tuple element type is nil"))
			}
		}
	case ShapeRecord:
		iss = append(iss, checkFields(path, vc.Fields)...)
		if v.Tagging == Internal {
			for _, f := range vc.Fields {
				if f.Name == v.Tag || f.DeserializeName == v.Tag {
					iss = append(iss, sg.IssueAt(path+"/properties/"+js.EscapeToken(v.Tag), sg.CodeTagContentClash,
						"field collides with tag %q", v.Tag))
				}
			}
		}
	default:
		iss = append(iss, sg.IssueAt(path, sg.CodeInvalidShape, "unknown case shape %d", int(vc.Shape)))
	}
	return iss
}

func (c Case) skipped(contract sg.Contract) bool {
	if contract == sg.Serialize {
		return c.SkipSerialize
	}
	return c.SkipDeserialize
}

func (c Case) wireName(contract sg.Contract) string {
	if contract == sg.Deserialize && c.DeserializeName != "" {
		return c.DeserializeName
	}
	return c.Name
}
