package desc

import (
	"strconv"
	"strings"

	sg "github.com/reoring/schemagen"
	js "github.com/reoring/schemagen/jsonschema"
)

// Kind is the JSON type of a Primitive.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
	KindAny     Kind = "any" // no constraint
)

var knownKinds = []Kind{KindString, KindInteger, KindNumber, KindBoolean, KindNull, KindAny}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, bool) {
	for _, k := range knownKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Primitive describes a scalar JSON value.
type Primitive struct {
	Kind            Kind
	Format          string // e.g. "date-time", "uuid"
	ContentEncoding string // e.g. "base64"
	Minimum         *float64
}

// String returns the string primitive.
func String() Primitive { return Primitive{Kind: KindString} }

// Integer returns the integer primitive.
func Integer() Primitive { return Primitive{Kind: KindInteger} }

// Number returns the number primitive.
func Number() Primitive { return Primitive{Kind: KindNumber} }

// Boolean returns the boolean primitive.
func Boolean() Primitive { return Primitive{Kind: KindBoolean} }

// Null returns the null primitive.
func Null() Primitive { return Primitive{Kind: KindNull} }

// Any returns the unconstrained primitive.
func Any() Primitive { return Primitive{Kind: KindAny} }

// Formatted returns a string primitive with the given format.
func Formatted(format string) Primitive { return Primitive{Kind: KindString, Format: format} }

func (p Primitive) SchemaName() string {
	if p.Format != "" {
		return string(p.Kind) + "_" + p.Format
	}
	return string(p.Kind)
}

func (p Primitive) SchemaID() string {
	id := "primitive:" + string(p.Kind)
	if p.Format != "" {
		id += ":format=" + p.Format
	}
	if p.ContentEncoding != "" {
		id += ":encoding=" + p.ContentEncoding
	}
	if p.Minimum != nil {
		id += ":min=" + strconv.FormatFloat(*p.Minimum, 'g', -1, 64)
	}
	return id
}

func (Primitive) AlwaysInline() bool { return true }

func (p Primitive) JSONSchema(*sg.Generator) *js.Schema {
	if p.Kind == KindAny {
		return js.True()
	}
	s := js.Of("type", string(p.Kind))
	if p.Format != "" {
		s.Set("format", p.Format)
	}
	if p.ContentEncoding != "" {
		s.Set("contentEncoding", p.ContentEncoding)
	}
	if p.Minimum != nil {
		s.Set("minimum", *p.Minimum)
	}
	return s
}

func (p Primitive) CheckShape() sg.Issues {
	if _, ok := ParseKind(string(p.Kind)); !ok {
		return sg.Issues{sg.IssueAt("", sg.CodeInvalidShape, "unknown primitive kind %q", p.Kind)}
	}
	return nil
}

// Sequence describes a JSON array with elements of one type.
type Sequence struct {
	Elem   sg.Descriptor
	Unique bool // set semantics
}

func (s Sequence) SchemaName() string {
	if s.Unique {
		return "Set_of_" + nameOf(s.Elem)
	}
	return "Array_of_" + nameOf(s.Elem)
}

func (s Sequence) SchemaID() string {
	if s.Unique {
		return "set(" + idOf(s.Elem) + ")"
	}
	return "seq(" + idOf(s.Elem) + ")"
}

func (Sequence) AlwaysInline() bool { return true }

func (s Sequence) JSONSchema(g *sg.Generator) *js.Schema {
	out := js.Of("type", "array", "items", g.Resolve(s.Elem))
	if s.Unique {
		out.Set("uniqueItems", true)
	}
	return out
}

func (s Sequence) Children() []sg.Descriptor { return []sg.Descriptor{s.Elem} }

func (s Sequence) CheckShape() sg.Issues {
	if s.Elem == nil {
		return sg.Issues{sg.IssueAt("/items", sg.CodeNilDescriptor, "sequence element type is nil")}
	}
	return nil
}

// Map describes a JSON object with arbitrary keys and values of one type.
type Map struct {
	Value sg.Descriptor
}

func (m Map) SchemaName() string { return "Map_of_" + nameOf(m.Value) }
func (m Map) SchemaID() string   { return "map(" + idOf(m.Value) + ")" }
func (Map) AlwaysInline() bool   { return true }

func (m Map) JSONSchema(g *sg.Generator) *js.Schema {
	return js.Of("type", "object", "additionalProperties", g.Resolve(m.Value))
}

func (m Map) Children() []sg.Descriptor { return []sg.Descriptor{m.Value} }

func (m Map) CheckShape() sg.Issues {
	if m.Value == nil {
		return sg.Issues{sg.IssueAt("/additionalProperties", sg.CodeNilDescriptor, "map value type is nil")}
	}
	return nil
}

// Optional describes a value that may also be null.
type Optional struct {
	Inner sg.Descriptor
}

func (o Optional) SchemaName() string { return "Nullable_" + nameOf(o.Inner) }
func (o Optional) SchemaID() string   { return "optional(" + idOf(o.Inner) + ")" }
func (Optional) AlwaysInline() bool   { return true }

func (o Optional) JSONSchema(g *sg.Generator) *js.Schema {
	return js.AddNull(g.Resolve(o.Inner), g.Settings().NullOptions())
}

func (o Optional) Children() []sg.Descriptor { return []sg.Descriptor{o.Inner} }

func (o Optional) CheckShape() sg.Issues {
	if o.Inner == nil {
		return sg.Issues{sg.IssueAt("", sg.CodeNilDescriptor, "optional inner type is nil")}
	}
	return nil
}

// Tuple describes a fixed-length JSON array.
type Tuple struct {
	Elems []sg.Descriptor
}

func (t Tuple) SchemaName() string {
	names := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		names[i] = nameOf(e)
	}
	return "Tuple_of_" + strings.Join(names, "_and_")
}

func (t Tuple) SchemaID() string {
	ids := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		ids[i] = idOf(e)
	}
	return "tuple(" + strings.Join(ids, ",") + ")"
}

func (Tuple) AlwaysInline() bool { return true }

func (t Tuple) JSONSchema(g *sg.Generator) *js.Schema {
	s := js.Of("type", "array")
	if len(t.Elems) > 0 {
		items := make([]*js.Schema, len(t.Elems))
		for i, e := range t.Elems {
			items[i] = g.Resolve(e)
		}
		s.Set("prefixItems", items)
		s.Set("minItems", len(t.Elems))
	}
	s.Set("maxItems", len(t.Elems))
	return s
}

func (t Tuple) Children() []sg.Descriptor { return t.Elems }

func (t Tuple) CheckShape() sg.Issues {
	var iss sg.Issues
	for i, e := range t.Elems {
		if e == nil {
			iss = append(iss, sg.IssueAt("/prefixItems/"+strconv.Itoa(i), sg.CodeNilDescriptor, "tuple element type is nil"))
		}
	}
	return iss
}

func nameOf(d sg.Descriptor) string {
	if d == nil {
		return "nil"
	}
	return d.SchemaName()
}

func idOf(d sg.Descriptor) string {
	if d == nil {
		return "nil"
	}
	return d.SchemaID()
}
