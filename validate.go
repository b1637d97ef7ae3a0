package schemagen

import js "github.com/reoring/schemagen/jsonschema"

// Validate walks the descriptor graph reachable from d and collects shape
// issues. It terminates on cyclic graphs, and reports cycles that never
// pass through a referenceable descriptor, since those cannot be rendered.
// The returned error is an Issues value when non-nil.
func Validate(d Descriptor) error {
	if d == nil {
		return Issues{IssueAt("/", CodeNilDescriptor, "root descriptor is nil")}
	}
	v := &validator{seen: map[string]bool{}, paths: map[string]string{}}
	v.walk(d, "")
	v.inlineCycles()
	if len(v.issues) == 0 {
		return nil
	}
	return v.issues
}

type validator struct {
	seen   map[string]bool
	nodes  []Descriptor
	paths  map[string]string
	issues Issues
}

func (v *validator) walk(d Descriptor, parentPath string) {
	id := d.SchemaID()
	if v.seen[id] {
		return
	}
	v.seen[id] = true

	path := parentPath + "/" + js.EscapeToken(d.SchemaName())
	v.nodes = append(v.nodes, d)
	v.paths[id] = path
	if sc, ok := d.(ShapeChecker); ok {
		for _, it := range sc.CheckShape() {
			if it.Path == "/" {
				it.Path = ""
			}
			it.Path = path + it.Path
			v.issues = append(v.issues, it)
		}
	}
	p, ok := d.(Parent)
	if !ok {
		return
	}
	for _, c := range p.Children() {
		if c == nil {
			// CheckShape of the parent reports the nil reference with its
			// precise location.
			continue
		}
		v.walk(c, path)
	}
}

// inlineCycles looks for cycles in the subgraph of always-inline
// descriptors. Each one is reported once, at the descriptor that closes it.
func (v *validator) inlineCycles() {
	const (
		onStack = iota + 1
		done
	)
	state := map[string]int{}
	var visit func(d Descriptor)
	visit = func(d Descriptor) {
		id := d.SchemaID()
		switch state[id] {
		case onStack:
			v.issues = append(v.issues, IssueAt(v.paths[id], CodeInlineCycle,
				"%s refers to itself through inline schemas only", d.SchemaName()))
			return
		case done:
			return
		}
		state[id] = onStack
		if p, ok := d.(Parent); ok {
			for _, c := range p.Children() {
				if c != nil && c.AlwaysInline() {
					visit(c)
				}
			}
		}
		state[id] = done
	}
	for _, d := range v.nodes {
		if d.AlwaysInline() {
			visit(d)
		}
	}
}
