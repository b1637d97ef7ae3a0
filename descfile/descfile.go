// Package descfile loads descriptor graphs from YAML (or JSON) documents.
//
// A document declares named types and optionally the dialect and root:
//
//	dialect: 2020-12
//	root: Drawing
//	types:
//	  Drawing:
//	    denyUnknownFields: true
//	    fields:
//	      - {name: color, type: string, required: true}
//	      - {name: shape, type: Shape, flatten: true}
//	      - {name: parent, type: "Drawing?"}
//	  Shape:
//	    kind: variant
//	    tagging: internal
//	    tag: kind
//	    cases:
//	      - {name: Circle, fields: [{name: r, type: number, required: true}]}
//	      - {name: Empty}
//	  UserID:
//	    kind: alias
//	    target: {type: string, format: uuid}
//
// Type expressions are primitive names (string, integer, number, boolean,
// null, any), declared type names, and the composites "[]T", "map[string]T",
// "*T" and "T?". Inside a flow mapping "T?" must be quoted, since a bare
// "?" there starts a YAML mapping key. The mapping forms {optional: T}, {sequence: T, unique: true},
// {map: T}, {tuple: [T, ...]} and {type: string, format: F} are also
// accepted. Types may reference each other in any order, recursively.
package descfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	sg "github.com/reoring/schemagen"
	"github.com/reoring/schemagen/desc"
)

// Error locates a problem in the source document.
type Error struct {
	Line, Column int
	Msg          string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Msg)
}

func errorAt(n *yaml.Node, format string, args ...any) *Error {
	e := &Error{Msg: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

// Document is a loaded descriptor document.
type Document struct {
	// Dialect names the settings preset; empty means the caller decides.
	Dialect string
	// Root names the default root type.
	Root string
	// Types lists the declared type names in document order.
	Types []string

	descriptors map[string]sg.Descriptor
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Load parses the document read from r.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a document. Unknown keys, duplicate keys, unknown type
// names and malformed type expressions are errors.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if err := checkDuplicates(&root); err != nil {
		return nil, err
	}

	var raw fileDef
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	doc := &Document{
		Dialect:     raw.Dialect,
		Root:        raw.Root,
		Types:       mappingKeys(&root, "types"),
		descriptors: make(map[string]sg.Descriptor, len(raw.Types)),
	}
	b := &builder{doc: doc, defs: raw.Types}
	b.declare()
	b.define()
	if doc.Root != "" {
		if _, ok := doc.descriptors[doc.Root]; !ok {
			b.fail(errorAt(nil, "root type %q is not declared", doc.Root))
		}
	}
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return doc, nil
}

// Lookup returns the descriptor declared under name.
func (d *Document) Lookup(name string) (sg.Descriptor, bool) {
	found, ok := d.descriptors[name]
	return found, ok
}

// RootDescriptor returns the descriptor for name, falling back to the
// document root and then to the first declared type.
func (d *Document) RootDescriptor(name string) (sg.Descriptor, error) {
	if name == "" {
		name = d.Root
	}
	if name == "" && len(d.Types) > 0 {
		name = d.Types[0]
	}
	if name == "" {
		return nil, errors.New("descfile: document declares no types")
	}
	found, ok := d.descriptors[name]
	if !ok {
		return nil, fmt.Errorf("descfile: unknown type %q", name)
	}
	return found, nil
}

// Settings returns the preset named by the document, or fallback when the
// document names none.
func (d *Document) Settings(fallback sg.Settings) (sg.Settings, error) {
	if d.Dialect == "" {
		return fallback, nil
	}
	return sg.Dialect(d.Dialect)
}

type fileDef struct {
	Dialect string             `yaml:"dialect"`
	Root    string             `yaml:"root"`
	Types   map[string]typeDef `yaml:"types"`
}

type typeDef struct {
	Kind              string      `yaml:"kind"` // record, variant or alias
	Title             string      `yaml:"title"`
	Description       string      `yaml:"description"`
	DenyUnknownFields bool        `yaml:"denyUnknownFields"`
	Inline            bool        `yaml:"inline"`
	Deprecated        bool        `yaml:"deprecated"`
	Examples          []yaml.Node `yaml:"examples"`
	Fields            []fieldDef  `yaml:"fields"`
	Tagging           string      `yaml:"tagging"`
	Tag               string      `yaml:"tag"`
	Content           string      `yaml:"content"`
	Cases             []caseDef   `yaml:"cases"`
	Target            *typeExpr   `yaml:"target"`
}

type fieldDef struct {
	Name            string    `yaml:"name"`
	DeserializeName string    `yaml:"deserializeName"`
	Type            *typeExpr `yaml:"type"`
	Required        bool      `yaml:"required"`
	Default         yaml.Node `yaml:"default"` // zero Kind when absent
	SkipSerialize   bool      `yaml:"skipSerialize"`
	SkipDeserialize bool      `yaml:"skipDeserialize"`
	Flatten         bool      `yaml:"flatten"`
	Description     string    `yaml:"description"`
}

type caseDef struct {
	Name            string     `yaml:"name"`
	DeserializeName string     `yaml:"deserializeName"`
	Shape           string     `yaml:"shape"` // unit, newtype, tuple or record; inferred when empty
	Type            *typeExpr  `yaml:"type"`
	Elems           []typeExpr `yaml:"elems"`
	Fields          []fieldDef `yaml:"fields"`
	SkipSerialize   bool       `yaml:"skipSerialize"`
	SkipDeserialize bool       `yaml:"skipDeserialize"`
	Description     string     `yaml:"description"`
}

// typeExpr keeps the raw node of a type expression; it is resolved once
// every declared name is known.
type typeExpr struct {
	node yaml.Node
}

func (t *typeExpr) UnmarshalYAML(n *yaml.Node) error {
	t.node = *n
	return nil
}

type builder struct {
	doc  *Document
	defs map[string]typeDef
	errs []error
}

func (b *builder) fail(err error) { b.errs = append(b.errs, err) }

func (b *builder) declare() {
	for _, name := range b.doc.Types {
		td := b.defs[name]
		switch kindOf(td) {
		case "record":
			b.doc.descriptors[name] = &desc.Record{Name: name, ID: "types/" + name}
		case "variant":
			b.doc.descriptors[name] = &desc.Variant{Name: name, ID: "types/" + name}
		case "alias":
			b.doc.descriptors[name] = &desc.Named{Name: name, ID: "types/" + name}
		default:
			b.fail(errorAt(nil, "type %q: unknown kind %q (want record, variant or alias)", name, td.Kind))
		}
	}
}

func kindOf(td typeDef) string {
	switch {
	case td.Kind != "":
		return td.Kind
	case len(td.Cases) > 0:
		return "variant"
	case td.Target != nil:
		return "alias"
	}
	return "record"
}

func (b *builder) define() {
	for _, name := range b.doc.Types {
		td := b.defs[name]
		switch d := b.doc.descriptors[name].(type) {
		case *desc.Record:
			d.Title = td.Title
			d.Description = td.Description
			d.DenyUnknownFields = td.DenyUnknownFields
			d.Inline = td.Inline
			d.Deprecated = td.Deprecated
			d.Fields = b.fields(td.Fields)
			for i := range td.Examples {
				v, err := nodeValue(&td.Examples[i])
				if err != nil {
					b.fail(err)
					continue
				}
				d.Examples = append(d.Examples, v)
			}
		case *desc.Variant:
			d.Description = td.Description
			d.DenyUnknownFields = td.DenyUnknownFields
			d.Inline = td.Inline
			d.Tag = td.Tag
			d.Content = td.Content
			if td.Tagging != "" {
				t, err := desc.ParseTagging(td.Tagging)
				if err != nil {
					b.fail(fmt.Errorf("type %q: %w", name, err))
				}
				d.Tagging = t
			}
			for _, c := range td.Cases {
				d.Cases = append(d.Cases, b.variantCase(name, c))
			}
		case *desc.Named:
			d.Description = td.Description
			if td.Target == nil {
				b.fail(errorAt(nil, "alias %q has no target", name))
				continue
			}
			d.Target = b.resolve(td.Target)
		}
	}
}

func (b *builder) fields(defs []fieldDef) []desc.Field {
	out := make([]desc.Field, 0, len(defs))
	for _, fd := range defs {
		f := desc.Field{
			Name:            fd.Name,
			DeserializeName: fd.DeserializeName,
			Required:        fd.Required,
			SkipSerialize:   fd.SkipSerialize,
			SkipDeserialize: fd.SkipDeserialize,
			Flatten:         fd.Flatten,
			Description:     fd.Description,
		}
		if fd.Type == nil {
			b.fail(errorAt(nil, "field %q has no type", fd.Name))
			continue
		}
		f.Type = b.resolve(fd.Type)
		if fd.Default.Kind != 0 {
			v, err := nodeValue(&fd.Default)
			if err != nil {
				b.fail(err)
			}
			f.HasDefault = true
			f.Default = v
		}
		out = append(out, f)
	}
	return out
}

func (b *builder) variantCase(variant string, cd caseDef) desc.Case {
	c := desc.Case{
		Name:            cd.Name,
		DeserializeName: cd.DeserializeName,
		SkipSerialize:   cd.SkipSerialize,
		SkipDeserialize: cd.SkipDeserialize,
		Description:     cd.Description,
	}
	shape := cd.Shape
	if shape == "" {
		switch {
		case cd.Type != nil:
			shape = "newtype"
		case len(cd.Elems) > 0:
			shape = "tuple"
		case len(cd.Fields) > 0:
			shape = "record"
		default:
			shape = "unit"
		}
	}
	switch shape {
	case "unit":
		c.Shape = desc.ShapeUnit
	case "newtype":
		c.Shape = desc.ShapeNewtype
		if cd.Type == nil {
			b.fail(errorAt(nil, "variant %q case %q: newtype case needs a type", variant, cd.Name))
			break
		}
		c.Inner = b.resolve(cd.Type)
	case "tuple":
		c.Shape = desc.ShapeTuple
		for i := range cd.Elems {
			c.Elems = append(c.Elems, b.resolve(&cd.Elems[i]))
		}
	case "record":
		c.Shape = desc.ShapeRecord
		c.Fields = b.fields(cd.Fields)
	default:
		b.fail(errorAt(nil, "variant %q case %q: unknown shape %q", variant, cd.Name, shape))
	}
	return c
}

// resolve turns a type expression into a descriptor. Failures are recorded
// and yield desc.Any so building can continue and report further errors.
func (b *builder) resolve(t *typeExpr) sg.Descriptor {
	d, err := b.expr(&t.node)
	if err != nil {
		b.fail(err)
		return desc.Any()
	}
	return d
}

func (b *builder) expr(n *yaml.Node) (sg.Descriptor, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return b.parseExpr(n, strings.TrimSpace(n.Value))
	case yaml.MappingNode:
		return b.mappingExpr(n)
	case yaml.AliasNode:
		return b.expr(n.Alias)
	}
	return nil, errorAt(n, "type expression must be a string or a mapping")
}

func (b *builder) parseExpr(n *yaml.Node, s string) (sg.Descriptor, error) {
	switch {
	case s == "":
		return nil, errorAt(n, "empty type expression")
	case strings.HasSuffix(s, "?"):
		inner, err := b.parseExpr(n, strings.TrimSpace(s[:len(s)-1]))
		if err != nil {
			return nil, err
		}
		return desc.Optional{Inner: inner}, nil
	case strings.HasPrefix(s, "*"):
		inner, err := b.parseExpr(n, strings.TrimSpace(s[1:]))
		if err != nil {
			return nil, err
		}
		return desc.Optional{Inner: inner}, nil
	case strings.HasPrefix(s, "[]"):
		elem, err := b.parseExpr(n, strings.TrimSpace(s[2:]))
		if err != nil {
			return nil, err
		}
		return desc.Sequence{Elem: elem}, nil
	case strings.HasPrefix(s, "map["):
		key, rest, ok := strings.Cut(s[len("map["):], "]")
		if !ok || strings.TrimSpace(key) != "string" {
			return nil, errorAt(n, "map type %q must have string keys", s)
		}
		val, err := b.parseExpr(n, strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return desc.Map{Value: val}, nil
	}
	if k, ok := desc.ParseKind(s); ok {
		return desc.Primitive{Kind: k}, nil
	}
	if d, ok := b.doc.descriptors[s]; ok {
		return d, nil
	}
	return nil, errorAt(n, "unknown type %q", s)
}

func (b *builder) mappingExpr(n *yaml.Node) (sg.Descriptor, error) {
	fields := map[string]*yaml.Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		fields[n.Content[i].Value] = n.Content[i+1]
	}
	only := func(allowed ...string) error {
		for k := range fields {
			ok := false
			for _, a := range allowed {
				ok = ok || k == a
			}
			if !ok {
				return errorAt(n, "unexpected key %q in type expression", k)
			}
		}
		return nil
	}

	switch {
	case fields["optional"] != nil:
		if err := only("optional"); err != nil {
			return nil, err
		}
		inner, err := b.expr(fields["optional"])
		if err != nil {
			return nil, err
		}
		return desc.Optional{Inner: inner}, nil
	case fields["sequence"] != nil:
		if err := only("sequence", "unique"); err != nil {
			return nil, err
		}
		elem, err := b.expr(fields["sequence"])
		if err != nil {
			return nil, err
		}
		seq := desc.Sequence{Elem: elem}
		if u := fields["unique"]; u != nil {
			if err := u.Decode(&seq.Unique); err != nil {
				return nil, errorAt(u, "unique: %v", err)
			}
		}
		return seq, nil
	case fields["map"] != nil:
		if err := only("map"); err != nil {
			return nil, err
		}
		val, err := b.expr(fields["map"])
		if err != nil {
			return nil, err
		}
		return desc.Map{Value: val}, nil
	case fields["tuple"] != nil:
		if err := only("tuple"); err != nil {
			return nil, err
		}
		list := fields["tuple"]
		if list.Kind != yaml.SequenceNode {
			return nil, errorAt(list, "tuple must list element types")
		}
		var tup desc.Tuple
		for _, e := range list.Content {
			d, err := b.expr(e)
			if err != nil {
				return nil, err
			}
			tup.Elems = append(tup.Elems, d)
		}
		return tup, nil
	case fields["type"] != nil:
		if err := only("type", "format"); err != nil {
			return nil, err
		}
		k, ok := desc.ParseKind(fields["type"].Value)
		if !ok {
			return nil, errorAt(fields["type"], "unknown primitive %q", fields["type"].Value)
		}
		p := desc.Primitive{Kind: k}
		if f := fields["format"]; f != nil {
			p.Format = f.Value
		}
		return p, nil
	}
	return nil, errorAt(n, "type expression needs one of optional, sequence, map, tuple or type")
}
