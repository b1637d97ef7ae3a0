package schemagen

import (
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	js "github.com/reoring/schemagen/jsonschema"
	"github.com/reoring/schemagen/transform"
)

// defKey is the registry identity of a definition: the same type may need
// different schemas per contract.
type defKey struct {
	id       string
	contract Contract
}

type definition struct {
	name string
	body *js.Schema
}

// Generator resolves descriptors into schemas. It owns the definition
// registry and the set of identities under construction, so one instance
// deduplicates definitions across calls. A Generator is not safe for
// concurrent use.
type Generator struct {
	settings Settings
	log      *zap.Logger

	defs      *orderedmap.OrderedMap[defKey, *definition]
	names     map[defKey]string
	usedNames map[string]defKey
	pending   map[defKey]struct{}
}

// NewGenerator returns a Generator for settings.
func NewGenerator(settings Settings, opts ...Option) *Generator {
	g := &Generator{
		settings:  settings,
		log:       zap.NewNop(),
		defs:      orderedmap.New[defKey, *definition](),
		names:     map[defKey]string{},
		usedNames: map[string]defKey{},
		pending:   map[defKey]struct{}{},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// RootSchemaFor validates settings and the descriptor graph, then returns
// the root document for d produced by a fresh Generator.
func RootSchemaFor(d Descriptor, settings Settings, opts ...Option) (*js.Schema, error) {
	return NewGenerator(settings, opts...).Generate(d)
}

// Settings returns the generator settings.
func (g *Generator) Settings() Settings { return g.settings }

// Logger returns the logger set with WithLogger.
func (g *Generator) Logger() *zap.Logger { return g.log }

// Contract returns the active contract.
func (g *Generator) Contract() Contract { return g.settings.Contract }

// SetContract switches the contract for subsequent calls. Definitions
// already registered under the other contract are kept.
func (g *Generator) SetContract(c Contract) { g.settings.Contract = c }

// Generate validates settings and the descriptor graph, then calls
// ResolveRoot.
func (g *Generator) Generate(d Descriptor) (*js.Schema, error) {
	if err := g.settings.Validate(); err != nil {
		return nil, err
	}
	if err := Validate(d); err != nil {
		return nil, err
	}
	return g.ResolveRoot(d), nil
}

// Resolve returns the schema for d to embed in a parent schema: a
// reference to a named definition, or the body itself when d is always
// inline or inlining is requested and d is not already under construction.
//
// A referenceable descriptor is registered with a placeholder before its
// body is computed, so a self-reference reached during computation yields
// a reference instead of recursing.
func (g *Generator) Resolve(d Descriptor) *js.Schema {
	key := g.key(d)
	_, pending := g.pending[key]
	if d.AlwaysInline() || (g.settings.InlineSubschemas && !pending) {
		// A cycle made only of always-inline descriptors never reaches a
		// reference; Validate reports it as CodeInlineCycle.
		return g.produce(d, key)
	}

	name := g.nameFor(key, d)
	if _, ok := g.defs.Get(key); !ok {
		def := &definition{name: name, body: js.True()}
		g.defs.Set(key, def)
		g.log.Debug("registering definition",
			zap.String("name", name),
			zap.String("id", key.id),
			zap.Stringer("contract", key.contract))
		def.body = g.produce(d, key)
	}
	return js.NewRef(g.refPointer(name))
}

// ResolveInline computes the body of d directly, tracking it as under
// construction so nested self-references become references. When d is
// itself already under construction it falls back to Resolve, which
// registers d and returns a reference.
func (g *Generator) ResolveInline(d Descriptor) *js.Schema {
	key := g.key(d)
	if _, pending := g.pending[key]; pending && !d.AlwaysInline() {
		g.log.Debug("inline request for a schema under construction, referencing instead",
			zap.String("id", key.id))
		return g.Resolve(d)
	}
	return g.produce(d, key)
}

// ResolveRoot assembles the root document for d: "$schema", "title", the
// body of d, and the registry embedded at the definitions path. The
// transform pipeline then runs over the whole document.
func (g *Generator) ResolveRoot(d Descriptor) *js.Schema {
	body := g.ResolveInline(d).EnsureObject()

	root := js.New()
	if g.settings.MetaSchema != "" {
		root.Set("$schema", g.settings.MetaSchema)
	}
	if name := d.SchemaName(); name != "" && !body.Has("title") {
		root.Set("title", name)
	}
	for p := body.Object().Oldest(); p != nil; p = p.Next() {
		root.Set(p.Key, p.Value)
	}
	g.embedDefinitions(root)
	g.applyTransforms(root)
	return root
}

// Definitions returns a copy of the registry contents keyed by definition
// name, in registration order.
func (g *Generator) Definitions() *js.Schemas {
	out := js.NewSchemas()
	for p := g.defs.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Value.name, p.Value.body.Clone())
	}
	return out
}

// TakeDefinitions returns the registry contents and empties the registry.
// Names already assigned stay reserved.
func (g *Generator) TakeDefinitions() *js.Schemas {
	out := js.NewSchemas()
	for p := g.defs.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Value.name, p.Value.body)
	}
	g.defs = orderedmap.New[defKey, *definition]()
	return out
}

func (g *Generator) key(d Descriptor) defKey {
	return defKey{id: d.SchemaID(), contract: g.settings.Contract}
}

func (g *Generator) produce(d Descriptor, key defKey) *js.Schema {
	if _, already := g.pending[key]; !already {
		g.pending[key] = struct{}{}
		defer delete(g.pending, key)
	}
	return d.JSONSchema(g)
}

// nameFor assigns a unique definition name to key, suffixing 2, 3, ...
// when the preferred name belongs to another identity.
func (g *Generator) nameFor(key defKey, d Descriptor) string {
	if n, ok := g.names[key]; ok {
		return n
	}
	preferred := d.SchemaName()
	if preferred == "" {
		preferred = key.id
	}
	if preferred == "" {
		preferred = "Schema"
	}
	name := preferred
	for i := 2; ; i++ {
		owner, taken := g.usedNames[name]
		if !taken || owner == key {
			break
		}
		name = preferred + strconv.Itoa(i)
	}
	if name != preferred {
		g.log.Debug("definition name taken, using suffix",
			zap.String("preferred", preferred),
			zap.String("name", name),
			zap.String("id", key.id))
	}
	g.names[key] = name
	g.usedNames[name] = key
	return name
}

func (g *Generator) refPointer(name string) string {
	return "#" + g.settings.DefinitionsPath + "/" + js.EscapeToken(name)
}

// embedDefinitions places the registry at the definitions path, creating
// missing intermediate objects. An existing container is extended.
func (g *Generator) embedDefinitions(root *js.Schema) {
	if g.defs.Len() == 0 {
		return
	}
	toks, err := js.SplitPointer(g.settings.DefinitionsPath)
	if err != nil || len(toks) == 0 {
		g.log.Warn("definitions path is not a usable JSON Pointer; definitions dropped",
			zap.String("path", g.settings.DefinitionsPath))
		return
	}
	parent := root.Object()
	for _, tok := range toks[:len(toks)-1] {
		next, _ := parent.Get(tok)
		switch t := next.(type) {
		case *js.Object:
			parent = t
		case *js.Schema:
			parent = t.EnsureObject().Object()
		default:
			obj := js.NewObject()
			parent.Set(tok, obj)
			parent = obj
		}
	}
	last := toks[len(toks)-1]
	defs := g.Definitions()
	if existing, ok := parent.Get(last); ok {
		if m, ok := existing.(*js.Schemas); ok {
			for p := defs.Oldest(); p != nil; p = p.Next() {
				if _, dup := m.Get(p.Key); !dup {
					m.Set(p.Key, p.Value)
				}
			}
			return
		}
	}
	parent.Set(last, defs)
}

// applyTransforms runs the settings' pipeline over root.
func (g *Generator) applyTransforms(root *js.Schema) {
	if n := ApplyTransforms(root, g.settings); n > 0 {
		g.log.Debug("transformed definitions outside the subschema walk", zap.Int("count", n))
	}
}

// ApplyTransforms runs the transform pipeline of s over root. Definitions
// stored at s.DefinitionsPath outside the reach of the subschema visitor
// are transformed separately; the count of those is returned.
func ApplyTransforms(root *js.Schema, s Settings) int {
	if len(s.Transforms) == 0 {
		return 0
	}
	p := transform.Pipeline(s.Transforms)
	p.Transform(root)
	if s.definitionsVisited() {
		return 0
	}
	defs := definitionsAt(root, s.DefinitionsPath)
	if defs == nil {
		return 0
	}
	for d := defs.Oldest(); d != nil; d = d.Next() {
		p.Transform(d.Value)
	}
	return defs.Len()
}

// definitionsAt returns the definitions container at ptr. A container
// decoded as a plain JSON object is converted to subschemas and stored
// back in place.
func definitionsAt(root *js.Schema, ptr string) *js.Schemas {
	toks, err := js.SplitPointer(ptr)
	if err != nil || len(toks) == 0 {
		return nil
	}
	var (
		cur    any = root
		parent *js.Object
	)
	for _, tok := range toks {
		parent = nil
		switch t := cur.(type) {
		case *js.Schema:
			parent = t.Object()
		case *js.Object:
			parent = t
		}
		if parent == nil {
			return nil
		}
		cur, _ = parent.Get(tok)
	}
	switch t := cur.(type) {
	case *js.Schemas:
		return t
	case *js.Object:
		m := js.NewSchemas()
		for p := t.Oldest(); p != nil; p = p.Next() {
			s, err := js.FromValue(p.Value)
			if err != nil {
				return nil
			}
			m.Set(p.Key, s)
		}
		parent.Set(toks[len(toks)-1], m)
		return m
	}
	return nil
}
