package desc

import (
	"go.uber.org/zap"

	sg "github.com/reoring/schemagen"
	js "github.com/reoring/schemagen/jsonschema"
)

// Record describes a JSON object with named fields.
type Record struct {
	Name        string
	ID          string // defaults to "record:" + Name
	Title       string
	Description string
	Fields      []Field
	// DenyUnknownFields rejects members not declared by any field.
	DenyUnknownFields bool
	// Inline embeds the record body instead of referencing a definition.
	Inline     bool
	Deprecated bool
	Examples   []any
}

// Field is one member of a Record, or of a record-shaped variant case.
type Field struct {
	// Name is the member name when serializing.
	Name string
	// DeserializeName overrides Name when deserializing.
	DeserializeName string
	Type            sg.Descriptor
	// Required marks the member as always present. Under the deserialize
	// contract a field with a default is never required.
	Required   bool
	HasDefault bool
	Default    any
	// SkipSerialize omits the field from output, SkipDeserialize from input.
	SkipSerialize   bool
	SkipDeserialize bool
	// Flatten splices the members of Type into the enclosing object.
	Flatten     bool
	Description string
}

func (r *Record) SchemaName() string { return r.Name }

func (r *Record) SchemaID() string {
	if r.ID != "" {
		return r.ID
	}
	return "record:" + r.Name
}

func (r *Record) AlwaysInline() bool { return r.Inline }

func (r *Record) JSONSchema(g *sg.Generator) *js.Schema {
	s := js.New()
	if r.Title != "" {
		s.Set("title", r.Title)
	}
	if r.Description != "" {
		s.Set("description", r.Description)
	}
	objectBody(g, s, r.Fields, r.DenyUnknownFields)
	if r.Deprecated {
		s.Set("deprecated", true)
	}
	if len(r.Examples) > 0 {
		if err := s.SetValue("examples", r.Examples); err != nil {
			g.Logger().Warn("examples not JSON-encodable, omitted",
				zap.String("record", r.Name), zap.Error(err))
		}
	}
	return s
}

func (r *Record) Children() []sg.Descriptor { return fieldTypes(r.Fields) }

func (r *Record) CheckShape() sg.Issues {
	iss := checkFields("", r.Fields)
	if len(r.Examples) > 0 {
		if _, err := js.ToValue(r.Examples); err != nil {
			iss = append(iss, sg.IssueAt("/examples", sg.CodeInvalidDefault, "%v", err))
		}
	}
	return iss
}

// objectBody writes the object keywords for fields into s under the
// active contract, then merges flattened fields.
func objectBody(g *sg.Generator, s *js.Schema, fields []Field, deny bool) {
	c := g.Contract()
	s.Set("type", "object")

	props := js.NewSchemas()
	var required []string
	var flattened []*js.Schema
	for _, f := range fields {
		if f.skipped(c) {
			continue
		}
		if f.Flatten {
			flattened = append(flattened, flattenBody(g, f))
			continue
		}
		name := f.wireName(c)
		props.Set(name, fieldSchema(g, f, c))
		if f.required(c) {
			required = append(required, name)
		}
	}
	if props.Len() > 0 {
		s.Set("properties", props)
	}
	if len(required) > 0 {
		s.Set("required", required)
	}
	if deny {
		s.Set("additionalProperties", js.False())
	}
	for _, fb := range flattened {
		js.Flatten(s, fb)
	}
}

func fieldSchema(g *sg.Generator, f Field, c sg.Contract) *js.Schema {
	s := g.Resolve(f.Type)
	if f.Description != "" {
		s.Set("description", f.Description)
	}
	if f.HasDefault {
		if err := s.SetValue("default", f.Default); err != nil {
			g.Logger().Warn("default not JSON-encodable, omitted",
				zap.String("field", f.Name), zap.Error(err))
		}
	}
	switch {
	case c == sg.Serialize && f.SkipDeserialize:
		s.Set("readOnly", true)
	case c == sg.Deserialize && f.SkipSerialize:
		s.Set("writeOnly", true)
	}
	return s
}

// flattenBody resolves the inline body of a flattened field. An optional
// field contributes its members without requiring them.
func flattenBody(g *sg.Generator, f Field) *js.Schema {
	t := f.Type
	opt, optional := t.(Optional)
	if optional {
		t = opt.Inner
	}
	body := g.ResolveInline(t)
	if optional {
		body.Delete("required")
	}
	return body
}

func (f Field) skipped(c sg.Contract) bool {
	if c == sg.Serialize {
		return f.SkipSerialize
	}
	return f.SkipDeserialize
}

func (f Field) wireName(c sg.Contract) string {
	if c == sg.Deserialize && f.DeserializeName != "" {
		return f.DeserializeName
	}
	return f.Name
}

func (f Field) required(c sg.Contract) bool {
	if c == sg.Serialize {
		return f.Required
	}
	return f.Required && !f.HasDefault
}

func fieldTypes(fields []Field) []sg.Descriptor {
	out := make([]sg.Descriptor, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Type)
	}
	return out
}

// checkFields reports nil and non-object flattened types, defaults with no
// JSON form, and member names reused under either contract.
func checkFields(prefix string, fields []Field) sg.Issues {
	var iss sg.Issues
	for _, c := range []sg.Contract{sg.Deserialize, sg.Serialize} {
		seen := map[string]bool{}
		for _, f := range fields {
			if f.skipped(c) || f.Flatten {
				continue
			}
			name := f.wireName(c)
			if seen[name] {
				iss = append(iss, sg.IssueAt(prefix+"/properties/"+js.EscapeToken(name), sg.CodeDuplicateName,
					"member %q declared twice when %s", name, c))
			}
			seen[name] = true
		}
	}
	for _, f := range fields {
		path := prefix + "/properties/" + js.EscapeToken(f.Name)
		if f.Type == nil {
			iss = append(iss, sg.IssueAt(path, sg.CodeNilDescriptor, "field type is nil"))
			continue
		}
		if f.Flatten && !objectShaped(f.Type) {
			iss = append(iss, sg.IssueAt(path, sg.CodeNonObjectPayload,
				"flattened field type %s is not object-shaped", f.Type.SchemaName()))
		}
		if f.HasDefault {
			if _, err := js.ToValue(f.Default); err != nil {
				iss = append(iss, sg.IssueAt(path+"/default", sg.CodeInvalidDefault, "%v", err))
			}
		}
	}
	return iss
}

// objectShaped reports whether d produces a schema whose instances are
// objects, so its members can be merged into another object.
func objectShaped(d sg.Descriptor) bool {
	switch t := d.(type) {
	case *Record, Map:
		return true
	case *Variant:
		switch t.Tagging {
		case Internal, Adjacent:
			return true
		case External:
			for _, c := range t.Cases {
				if c.Shape == ShapeUnit {
					return false
				}
			}
			return true
		}
		return false
	case *Named:
		return t.Target != nil && objectShaped(t.Target)
	case Optional:
		return t.Inner != nil && objectShaped(t.Inner)
	case Primitive:
		return t.Kind == KindAny
	}
	return false
}
