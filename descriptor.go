package schemagen

import js "github.com/reoring/schemagen/jsonschema"

// Descriptor is the reflective description of one type's shape.
type Descriptor interface {
	// SchemaName is the preferred display name of the definition.
	SchemaName() string
	// SchemaID identifies the described type. Descriptors with equal IDs
	// must describe the same type.
	SchemaID() string
	// AlwaysInline reports that the schema is never referenced by name.
	AlwaysInline() bool
	// JSONSchema produces the schema body, resolving nested descriptors
	// through g.
	JSONSchema(g *Generator) *js.Schema
}

// Parent is implemented by descriptors that refer to other descriptors.
// Validate walks the graph through it.
type Parent interface {
	Children() []Descriptor
}

// ShapeChecker is implemented by descriptors that can detect shape errors
// local to themselves. Issue paths are relative to the descriptor.
type ShapeChecker interface {
	CheckShape() Issues
}
