// Package desc provides the concrete type descriptors consumed by the
// schemagen Generator.
//
// Primitive, Sequence, Map, Optional and Tuple are structural and always
// inlined. Record, Variant and Named are referenceable: unless marked
// Inline they become named definitions and are embedded by reference.
//
// Descriptors are plain values that may form cycles through pointers:
//
//	node := &desc.Record{Name: "Node", ID: "example.Node"}
//	node.Fields = []desc.Field{
//		{Name: "value", Type: desc.Integer(), Required: true},
//		{Name: "next", Type: desc.Optional{Inner: node}},
//	}
//	doc, err := schemagen.RootSchemaFor(node, schemagen.Draft202012())
//
// Reflect and For derive descriptors from Go types.
package desc
