package schemagen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	sg "github.com/reoring/schemagen"
	js "github.com/reoring/schemagen/jsonschema"
	"github.com/reoring/schemagen/transform"
)

// testDesc is a minimal descriptor whose body is produced by a callback.
type testDesc struct {
	name, id string
	inline   bool
	body     func(g *sg.Generator) *js.Schema
	children []sg.Descriptor
	issues   sg.Issues
}

func (d *testDesc) SchemaName() string { return d.name }
func (d *testDesc) SchemaID() string { return d.id }
func (d *testDesc) AlwaysInline() bool { return d.inline }
func (d *testDesc) JSONSchema(g *sg.Generator) *js.Schema { return d.body(g) }
func (d *testDesc) Children() []sg.Descriptor { return d.children }
func (d *testDesc) CheckShape() sg.Issues { return d.issues }

func str() *testDesc {
	return &testDesc{name: "string", id: "string", inline: true, body: func(*sg.Generator) *js.Schema {
		return js.Of("type", "string")
	}}
}

// record builds an object descriptor whose properties resolve fields in order.
func record(name, id string, fields ...any) *testDesc {
	d := &testDesc{name: name, id: id}
	d.body = func(g *sg.Generator) *js.Schema {
		s := js.Of("type", "object")
		props := s.Properties()
		for i := 0; i < len(fields); i += 2 {
			props.Set(fields[i].(string), g.Resolve(fields[i+1].(sg.Descriptor)))
		}
		return s
	}
	for i := 1; i < len(fields); i += 2 {
		d.children = append(d.children, fields[i].(sg.Descriptor))
	}
	return d
}

func render(t *testing.T, s *js.Schema) string {
	t.Helper()
	b, err := s.MarshalJSON()
	require.NoError(t, err)
	return string(b)
}

func TestResolveRoot_SelfReference(t *testing.T) {
	node := &testDesc{name: "Node", id: "pkg.Node"}
	node.body = func(g *sg.Generator) *js.Schema {
		s := js.Of("type", "object")
		next := g.Resolve(node)
		s.Properties().Set("next", js.AddNull(next, g.Settings().NullOptions()))
		return s
	}

	g := sg.NewGenerator(sg.Draft202012())
	root := g.ResolveRoot(node)

	assert.Equal(t,
		`{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Node","type":"object",`+
			`"properties":{"next":{"anyOf":[{"$ref":"#/$defs/Node"},{"type":"null"}]}},`+
			`"$defs":{"Node":{"type":"object","properties":{"next":{"anyOf":[{"$ref":"#/$defs/Node"},{"type":"null"}]}}}}}`,
		render(t, root))
	assert.Equal(t, 1, g.Definitions().Len())
}

func TestResolve_NameDeduplication(t *testing.T) {
	a := record("Widget", "a.Widget")
	b := record("Widget", "b.Widget")
	c := record("Widget", "c.Widget")

	g := sg.NewGenerator(sg.Draft202012())
	refs := []*js.Schema{g.Resolve(a), g.Resolve(b), g.Resolve(c), g.Resolve(a)}

	got := make([]string, len(refs))
	for i, r := range refs {
		got[i], _ = r.Ref()
	}
	assert.Equal(t, []string{"#/$defs/Widget", "#/$defs/Widget2", "#/$defs/Widget3", "#/$defs/Widget"}, got)

	defs := g.Definitions()
	var names []string
	for p := defs.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	assert.Equal(t, []string{"Widget", "Widget2", "Widget3"}, names)
}

func TestResolve_ContractIsPartOfIdentity(t *testing.T) {
	r := record("Thing", "pkg.Thing", "s", str())
	g := sg.NewGenerator(sg.Draft202012())

	de := g.Resolve(r)
	g.SetContract(sg.Serialize)
	ser := g.Resolve(r)

	deRef, _ := de.Ref()
	serRef, _ := ser.Ref()
	assert.Equal(t, "#/$defs/Thing", deRef)
	assert.Equal(t, "#/$defs/Thing2", serRef)
	assert.Equal(t, sg.Serialize, g.Contract())
}

func TestResolve_InlineSubschemas(t *testing.T) {
	inner := record("Inner", "pkg.Inner", "s", str())
	outer := record("Outer", "pkg.Outer", "in", inner)

	g := sg.NewGenerator(sg.Draft202012().WithInlineSubschemas(true))
	root := g.ResolveRoot(outer)
	assert.Equal(t,
		`{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Outer","type":"object",`+
			`"properties":{"in":{"type":"object","properties":{"s":{"type":"string"}}}}}`,
		render(t, root))
}

func TestResolve_InlineStillReferencesCycles(t *testing.T) {
	node := &testDesc{name: "Tree", id: "pkg.Tree"}
	node.body = func(g *sg.Generator) *js.Schema {
		s := js.Of("type", "object")
		s.Properties().Set("kids", js.Of("type", "array", "items", g.Resolve(node)))
		return s
	}
	g := sg.NewGenerator(sg.Draft202012().WithInlineSubschemas(true))
	root := g.ResolveRoot(node)

	defs, ok := root.Get("$defs")
	require.True(t, ok)
	tree, ok := defs.(*js.Schemas).Get("Tree")
	require.True(t, ok)
	assert.Equal(t, `{"type":"object","properties":{"kids":{"type":"array","items":{"$ref":"#/$defs/Tree"}}}}`, render(t, tree))
}

func TestResolveRoot_OpenAPIComponents(t *testing.T) {
	pet := record("Pet", "pkg.Pet", "name", str())
	owner := record("Owner", "pkg.Owner", "pet", pet)

	g := sg.NewGenerator(sg.OpenAPI3())
	root := g.ResolveRoot(owner)

	assert.Equal(t,
		`{"$schema":"https://spec.openapis.org/oas/3.0/schema/2021-09-28#/definitions/Schema","title":"Owner","type":"object",`+
			`"properties":{"pet":{"$ref":"#/components/schemas/Pet"}},`+
			`"components":{"schemas":{"Pet":{"type":"object","properties":{"name":{"type":"string"}}}}}}`,
		render(t, root))
}

func TestResolveRoot_TransformsReachNonStandardDefinitions(t *testing.T) {
	opt := &testDesc{name: "Opt", id: "pkg.Opt"}
	opt.body = func(g *sg.Generator) *js.Schema { return js.Of("type", []string{"string", "null"}) }
	holder := record("Holder", "pkg.Holder", "o", opt)

	root := sg.NewGenerator(sg.OpenAPI3()).ResolveRoot(holder)
	comps, _ := root.Get("components")
	schemas, _ := comps.(*js.Object).Get("schemas")
	def, _ := schemas.(*js.Schemas).Get("Opt")
	assert.Equal(t, `{"type":"string","nullable":true}`, render(t, def))
}

func TestResolveRoot_KeepsBodyTitle(t *testing.T) {
	d := &testDesc{name: "X", id: "x", body: func(*sg.Generator) *js.Schema {
		return js.Of("title", "Custom", "type", "integer")
	}}
	root := sg.NewGenerator(sg.Draft202012()).ResolveRoot(d)
	assert.Equal(t, `{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Custom","type":"integer"}`, render(t, root))
}

func TestResolveRoot_BooleanBody(t *testing.T) {
	d := &testDesc{name: "Any", id: "any", inline: true, body: func(*sg.Generator) *js.Schema { return js.True() }}
	root := sg.NewGenerator(sg.Draft202012()).ResolveRoot(d)
	assert.Equal(t, `{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Any"}`, render(t, root))
}

func TestResolveRoot_Draft07(t *testing.T) {
	leaf := record("Leaf", "pkg.Leaf", "s", str())
	withSibling := &testDesc{name: "Wrap", id: "pkg.Wrap", children: []sg.Descriptor{leaf}}
	withSibling.body = func(g *sg.Generator) *js.Schema {
		s := js.Of("type", "object")
		ref := g.Resolve(leaf)
		ref.Set("description", "the leaf")
		s.Properties().Set("leaf", ref)
		return s
	}

	root := sg.NewGenerator(sg.Draft07()).ResolveRoot(withSibling)
	assert.Equal(t,
		`{"$schema":"http://json-schema.org/draft-07/schema#","title":"Wrap","type":"object",`+
			`"properties":{"leaf":{"description":"the leaf","allOf":[{"$ref":"#/definitions/Leaf"}]}},`+
			`"definitions":{"Leaf":{"type":"object","properties":{"s":{"type":"string"}}}}}`,
		render(t, root))
}

func TestTakeDefinitions(t *testing.T) {
	g := sg.NewGenerator(sg.Draft202012())
	g.Resolve(record("A", "a"))
	taken := g.TakeDefinitions()
	assert.Equal(t, 1, taken.Len())
	assert.Equal(t, 0, g.Definitions().Len())

	// Names stay reserved for their identity.
	ref, _ := g.Resolve(record("A", "a2")).Ref()
	assert.Equal(t, "#/$defs/A2", ref)
}

func TestDefinitionsReturnsCopy(t *testing.T) {
	g := sg.NewGenerator(sg.Draft202012())
	g.Resolve(record("A", "a", "s", str()))
	d, _ := g.Definitions().Get("A")
	d.Set("mutated", true)
	again, _ := g.Definitions().Get("A")
	assert.False(t, again.Has("mutated"))
}

func TestRefPointerEscapesName(t *testing.T) {
	g := sg.NewGenerator(sg.Draft202012())
	ref, _ := g.Resolve(record("a/b~c", "weird")).Ref()
	assert.Equal(t, "#/$defs/a~1b~0c", ref)
}

func TestGenerate_ValidationErrors(t *testing.T) {
	bad := record("Bad", "bad")
	bad.issues = sg.Issues{sg.IssueAt("/fields/x", sg.CodeNilDescriptor, "field type is nil")}
	outer := record("Outer", "outer", "bad", bad)

	_, err := sg.NewGenerator(sg.Draft202012()).Generate(outer)
	require.Error(t, err)
	iss, ok := sg.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "/Outer/Bad/fields/x", iss[0].Path)
}

func TestGenerate_InvalidSettings(t *testing.T) {
	s := sg.Draft202012()
	s.DefinitionsPath = "defs"
	_, err := sg.RootSchemaFor(str(), s)
	assert.ErrorIs(t, err, sg.ErrInvalidSettings)
}

func TestGenerate_Deterministic(t *testing.T) {
	build := func() string {
		a := record("A", "a", "s", str())
		b := record("B", "b", "a", a)
		root, err := sg.RootSchemaFor(record("Root", "root", "b", b, "a", a), sg.Draft202012())
		require.NoError(t, err)
		return render(t, root)
	}
	assert.Equal(t, build(), build())
}

func TestGenerator_LogsRegistrationAndCollisions(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	g := sg.NewGenerator(sg.Draft202012(), sg.WithLogger(zap.New(core)))
	g.Resolve(record("W", "w1"))
	g.Resolve(record("W", "w2"))

	assert.Equal(t, 2, logs.FilterMessage("registering definition").Len())
	assert.Equal(t, 1, logs.FilterMessage("definition name taken, using suffix").Len())
}

func TestGenerator_CustomTransforms(t *testing.T) {
	stamp := transform.Func(func(s *js.Schema) { s.Set("x-stamped", true) })
	root := sg.NewGenerator(sg.Draft202012().WithTransforms(stamp)).ResolveRoot(str())
	v, ok := root.Get("x-stamped")
	assert.True(t, ok)
	assert.Equal(t, true, v)
}

func TestResolveInline_SelfUnderConstructionIsReferenced(t *testing.T) {
	node := &testDesc{name: "Node", id: "pkg.Node"}
	node.body = func(g *sg.Generator) *js.Schema {
		s := js.Of("type", "object")
		s.Properties().Set("self", g.ResolveInline(node))
		return s
	}

	g := sg.NewGenerator(sg.Draft202012())
	root := g.ResolveRoot(node)

	assert.Equal(t,
		`{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Node","type":"object",`+
			`"properties":{"self":{"$ref":"#/$defs/Node"}},`+
			`"$defs":{"Node":{"type":"object","properties":{"self":{"$ref":"#/$defs/Node"}}}}}`,
		render(t, root))
}

func TestValidate_InlineCycle(t *testing.T) {
	a := &testDesc{name: "A", id: "a", inline: true}
	b := &testDesc{name: "B", id: "b", inline: true, children: []sg.Descriptor{a}}
	a.children = []sg.Descriptor{b}

	err := sg.Validate(a)
	iss, ok := sg.AsIssues(err)
	require.True(t, ok, "got %v", err)
	require.Len(t, iss, 1)
	assert.Equal(t, sg.CodeInlineCycle, iss[0].Code)
	assert.Equal(t, "/A", iss[0].Path)

	_, err = sg.RootSchemaFor(a, sg.Draft202012())
	assert.Error(t, err)
}

func TestValidate_CycleThroughReferenceIsFine(t *testing.T) {
	a := &testDesc{name: "A", id: "a", inline: true}
	b := &testDesc{name: "B", id: "b", children: []sg.Descriptor{a}}
	a.children = []sg.Descriptor{b}
	assert.NoError(t, sg.Validate(a))
}

func TestApplyTransforms_ParsedComponents(t *testing.T) {
	doc, err := js.Parse([]byte(`{"type":"object",` +
		`"components":{"schemas":{"Tag":{"type":["string","null"]}}}}`))
	require.NoError(t, err)

	n := sg.ApplyTransforms(doc, sg.OpenAPI3())
	assert.Equal(t, 1, n)
	assert.Equal(t,
		`{"type":"object","components":{"schemas":{"Tag":{"type":"string","nullable":true}}}}`,
		render(t, doc))
}
