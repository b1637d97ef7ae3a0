// Package schemagen provides:
//
// - JSON Schema synthesis from Type Descriptors (Generator.Resolve / ResolveRoot)
// - Deduplicated, cycle-safe named definitions embedded at a configurable JSON Pointer
// - Dialect presets (draft-07, 2019-09, 2020-12, OpenAPI 3.0) with post-processing transforms
// - A stable error model for descriptor-shape problems via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep the generator and settings in the root package; the schema value model lives in
//   jsonschema/, dialect rewrites in transform/, tagging strategies in variant/.
// - Concrete descriptors and the Go type front end live in desc/; YAML descriptor documents
//   in descfile/; the CLI under cmd/schemagen.
// - Generation is a pure function of (descriptor graph, settings): no I/O, no goroutines.
//
// Typical usage:
//
//	node := &desc.Record{Name: "Node"}
//	node.Fields = []desc.Field{
//		{Name: "value", Type: desc.Integer(), Required: true},
//		{Name: "next", Type: desc.Optional{Inner: node}},
//	}
//	doc, err := schemagen.RootSchemaFor(node, schemagen.Draft202012())
package schemagen
