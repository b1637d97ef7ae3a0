package desc

import (
	sg "github.com/reoring/schemagen"
	js "github.com/reoring/schemagen/jsonschema"
)

// Named gives another type its own definition, for example a defined type
// over a primitive:
//
//	userID := &desc.Named{Name: "UserID", Target: desc.Formatted("uuid")}
type Named struct {
	Name        string
	ID          string // defaults to "named:" + Name
	Description string
	Target      sg.Descriptor
}

func (n *Named) SchemaName() string { return n.Name }

func (n *Named) SchemaID() string {
	if n.ID != "" {
		return n.ID
	}
	return "named:" + n.Name
}

func (n *Named) AlwaysInline() bool { return false }

func (n *Named) JSONSchema(g *sg.Generator) *js.Schema {
	s := g.Resolve(n.Target)
	if n.Description != "" {
		s.Set("description", n.Description)
	}
	return s
}

func (n *Named) Children() []sg.Descriptor { return []sg.Descriptor{n.Target} }

func (n *Named) CheckShape() sg.Issues {
	if n.Target == nil {
		return sg.Issues{sg.IssueAt("", sg.CodeNilDescriptor, "named type %q has no target", n.Name)}
	}
	return nil
}
