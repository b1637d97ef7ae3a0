package jsonschema

// Flatten merges child into parent in place, splicing the child's
// constraints into the parent's own keyword set. child is not modified.
//
// Rules:
//   - child true, or a child that only matches null, is a no-op;
//   - properties / patternProperties merge shallowly, parent wins on collision;
//   - required and allOf concatenate;
//   - additionalProperties / unevaluatedProperties: true on either side wins,
//     a parent false yields to a child schema; when the child carries
//     alternatives or a $ref both sides switch to unevaluatedProperties;
//   - oneOf / anyOf present on both sides move into allOf as two entries;
//   - any other keyword is copied when absent, otherwise the parent value stays.
func Flatten(parent, child *Schema) {
	if child == nil {
		return
	}
	if b, ok := child.AsBool(); ok && b {
		return
	}
	if matchesOnlyNull(child) {
		return
	}
	parent.EnsureObject()
	c := child.Clone().EnsureObject()

	if isComplex(c) {
		useUnevaluated(parent)
		useUnevaluated(c)
	} else if isComplex(parent) {
		useUnevaluated(c)
	}

	for _, key := range []string{"oneOf", "anyOf"} {
		pv, pok := parent.Get(key)
		cv, cok := c.Get(key)
		if !pok || !cok {
			continue
		}
		parent.Delete(key)
		c.Delete(key)
		appendAllOf(parent, Of(key, pv), Of(key, cv))
	}

	for p := c.obj.Oldest(); p != nil; p = p.Next() {
		switch p.Key {
		case "properties", "patternProperties":
			mergeSchemaMaps(parent, p.Key, p.Value)
		case "required":
			names, _ := stringList(p.Value)
			parent.AppendRequired(names...)
		case "allOf":
			if list, ok := p.Value.([]*Schema); ok {
				appendAllOf(parent, list...)
			} else if !parent.Has(p.Key) {
				parent.Set(p.Key, p.Value)
			}
		case "additionalProperties", "unevaluatedProperties":
			mergeAdditional(parent, p.Key, p.Value)
		default:
			if !parent.Has(p.Key) {
				parent.Set(p.Key, p.Value)
			}
		}
	}
}

// isComplex reports keywords whose alternatives a flat additionalProperties
// on the same object cannot see into.
func isComplex(s *Schema) bool {
	for _, k := range []string{"oneOf", "anyOf", "allOf", "if", "$ref"} {
		if s.Has(k) {
			return true
		}
	}
	return false
}

func useUnevaluated(s *Schema) {
	v, ok := s.Delete("additionalProperties")
	if !ok {
		return
	}
	if _, exists := s.Get("unevaluatedProperties"); !exists {
		s.Set("unevaluatedProperties", v)
	}
}

func matchesOnlyNull(s *Schema) bool {
	if s.Len() != 1 {
		return false
	}
	types, ok := s.Types()
	return ok && len(types) == 1 && types[0] == "null"
}

func appendAllOf(s *Schema, subs ...*Schema) {
	cur := s.Subschemas("allOf")
	s.Set("allOf", append(cur, subs...))
}

func mergeSchemaMaps(parent *Schema, key string, cv any) {
	pv, ok := parent.Get(key)
	if !ok {
		parent.Set(key, cv)
		return
	}
	pm, pok := pv.(*Schemas)
	cm, cok := cv.(*Schemas)
	if !pok || !cok {
		return
	}
	for p := cm.Oldest(); p != nil; p = p.Next() {
		if _, exists := pm.Get(p.Key); !exists {
			pm.Set(p.Key, p.Value)
		}
	}
}

func mergeAdditional(parent *Schema, key string, cv any) {
	pv, ok := parent.Get(key)
	if !ok {
		parent.Set(key, cv)
		return
	}
	pb, pIsBool := boolValue(pv)
	cb, cIsBool := boolValue(cv)
	switch {
	case pIsBool && pb:
	case cIsBool && cb:
		parent.Set(key, True())
	case pIsBool && !pb && !cIsBool:
		parent.Set(key, cv)
	}
}

func boolValue(v any) (value, ok bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case *Schema:
		return t.AsBool()
	}
	return false, false
}
