package desc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sg "github.com/reoring/schemagen"
	"github.com/reoring/schemagen/desc"
	"github.com/reoring/schemagen/internal/schematest"
)

func point() *desc.Record {
	return &desc.Record{Name: "Point", ID: "example.Point", Fields: []desc.Field{
		{Name: "x", Type: desc.Integer(), Required: true},
	}}
}

func TestVariant_External(t *testing.T) {
	v := &desc.Variant{Name: "Msg", Tagging: desc.External, Cases: []desc.Case{
		{Name: "A"},
		{Name: "B", Shape: desc.ShapeRecord, Fields: []desc.Field{{Name: "x", Type: desc.Integer(), Required: true}}},
	}}
	root := generate(t, v, sg.Draft202012())

	schematest.AssertAccepts(t, root, `"A"`, `{"B":{"x":1}}`)
	schematest.AssertRejects(t, root, `{"A":null}`, `{"B":{"x":1},"extra":true}`)
}

func TestVariant_InternalDenyUnknown(t *testing.T) {
	v := &desc.Variant{Name: "Cmd", Tagging: desc.Internal, Tag: "kind", DenyUnknownFields: true, Cases: []desc.Case{
		{Name: "C"},
	}}
	root := generate(t, v, sg.Draft202012())

	schematest.AssertAccepts(t, root, `{"kind":"C"}`)
	schematest.AssertRejects(t, root, `{"kind":"C","y":1}`)
}

func TestVariant_InternalNewtypeInlinesPayload(t *testing.T) {
	p := point()
	p.DenyUnknownFields = true
	v := &desc.Variant{Name: "Geo", Tagging: desc.Internal, Tag: "type", Cases: []desc.Case{
		{Name: "Point", Shape: desc.ShapeNewtype, Inner: p},
		{Name: "Empty"},
	}}
	root := generate(t, v, sg.Draft202012())

	assert.Equal(t,
		`{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Geo","oneOf":[`+
			`{"type":"object","properties":{"type":{"type":"string","const":"Point"},"x":{"type":"integer"}},"required":["type","x"],"additionalProperties":false},`+
			`{"type":"object","properties":{"type":{"type":"string","const":"Empty"}},"required":["type"]}]}`,
		render(t, root))
	schematest.AssertAccepts(t, root, `{"type":"Point","x":1}`)
	schematest.AssertRejects(t, root, `{"type":"Point","x":1,"y":2}`)
}

func TestVariant_InternalNewtypeRecursion(t *testing.T) {
	expr := &desc.Variant{Name: "Expr", Tagging: desc.Internal, Tag: "op"}
	expr.Cases = []desc.Case{
		{Name: "Lit", Shape: desc.ShapeRecord, Fields: []desc.Field{{Name: "value", Type: desc.Integer(), Required: true}}},
		{Name: "Not", Shape: desc.ShapeNewtype, Inner: expr},
	}
	root := generate(t, expr, sg.Draft202012())

	assert.Equal(t, 1, mustDefs(t, root).Len())
	assert.Contains(t, render(t, def(t, root, "Expr")),
		`{"type":"object","properties":{"op":{"type":"string","const":"Not"}},"required":["op"],"$ref":"#/$defs/Expr"}`)
	assert.Contains(t, render(t, root), `"$ref":"#/$defs/Expr"`)
}

func TestVariant_AdjacentDenyUnknown(t *testing.T) {
	v := &desc.Variant{Name: "Env", Tagging: desc.Adjacent, Tag: "t", Content: "c", DenyUnknownFields: true, Cases: []desc.Case{
		{Name: "U"},
		{Name: "P", Shape: desc.ShapeNewtype, Inner: point()},
		{Name: "T", Shape: desc.ShapeTuple, Elems: []sg.Descriptor{desc.String(), desc.Integer()}},
	}}
	root := generate(t, v, sg.Draft202012())

	schematest.AssertAccepts(t, root, `{"t":"U"}`, `{"t":"P","c":{"x":3}}`, `{"t":"T","c":["a",1]}`)
	schematest.AssertRejects(t, root, `{"t":"U","extra":1}`, `{"t":"T","c":["a"]}`, `{"t":"T","c":["a",1,2]}`)
	assert.Equal(t, 1, mustDefs(t, root).Len(), "newtype payload is referenced")
}

func TestVariant_Untagged(t *testing.T) {
	v := &desc.Variant{Name: "Value", Tagging: desc.Untagged, Cases: []desc.Case{
		{Name: "Text", Shape: desc.ShapeNewtype, Inner: desc.String()},
		{Name: "Count", Shape: desc.ShapeNewtype, Inner: desc.Integer()},
		{Name: "Nothing"},
	}}
	root := generate(t, v, sg.Draft202012())
	assert.Equal(t,
		`{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Value","anyOf":[{"type":"string"},{"type":"integer"},{"type":"null"}]}`,
		render(t, root))
}

func TestVariant_ContractNamesAndSkips(t *testing.T) {
	v := &desc.Variant{Name: "Status", Cases: []desc.Case{
		{Name: "Active", DeserializeName: "active"},
		{Name: "Legacy", SkipSerialize: true},
		{Name: "Computed", SkipDeserialize: true},
	}}
	de := generate(t, v, sg.Draft202012())
	assert.Equal(t, `{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Status","type":"string","enum":["active","Legacy"]}`, render(t, de))

	ser := generate(t, v, sg.Draft202012().WithContract(sg.Serialize))
	assert.Equal(t, `{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Status","type":"string","enum":["Active","Computed"]}`, render(t, ser))
}

func TestVariant_NoCasesIsFalse(t *testing.T) {
	v := &desc.Variant{Name: "Never"}
	holder := &desc.Record{Name: "Holder", Fields: []desc.Field{{Name: "n", Type: v}}}
	root := generate(t, holder, sg.Draft202012())
	assert.Equal(t, "false", render(t, def(t, root, "Never")))
}

func TestVariant_CheckShape(t *testing.T) {
	cases := []struct {
		name string
		v    *desc.Variant
		path string
		code string
	}{
		{
			name: "internal tuple",
			v: &desc.Variant{Name: "V", Tagging: desc.Internal, Tag: "k", Cases: []desc.Case{
				{Name: "T", Shape: desc.ShapeTuple, Elems: []sg.Descriptor{desc.String()}},
			}},
			path: "/V/cases/T", code: sg.CodeNonObjectPayload,
		},
		{
			name: "internal newtype over primitive",
			v: &desc.Variant{Name: "V", Tagging: desc.Internal, Tag: "k", Cases: []desc.Case{
				{Name: "S", Shape: desc.ShapeNewtype, Inner: desc.String()},
			}},
			path: "/V/cases/S", code: sg.CodeNonObjectPayload,
		},
		{
			name: "missing tag",
			v:    &desc.Variant{Name: "V", Tagging: desc.Internal, Cases: []desc.Case{{Name: "A"}}},
			path: "/V/tag", code: sg.CodeMissingTag,
		},
		{
			name: "tag equals content",
			v:    &desc.Variant{Name: "V", Tagging: desc.Adjacent, Tag: "x", Content: "x", Cases: []desc.Case{{Name: "A"}}},
			path: "/V/content", code: sg.CodeTagContentClash,
		},
		{
			name: "duplicate case",
			v:    &desc.Variant{Name: "V", Cases: []desc.Case{{Name: "A"}, {Name: "B", DeserializeName: "A"}}},
			path: "/V/cases/A", code: sg.CodeDuplicateName,
		},
		{
			name: "nil newtype",
			v:    &desc.Variant{Name: "V", Cases: []desc.Case{{Name: "N", Shape: desc.ShapeNewtype}}},
			path: "/V/cases/N", code: sg.CodeNilDescriptor,
		},
		{
			name: "field shadows tag",
			v: &desc.Variant{Name: "V", Tagging: desc.Internal, Tag: "k", Cases: []desc.Case{
				{Name: "R", Shape: desc.ShapeRecord, Fields: []desc.Field{{Name: "k", Type: desc.String()}}},
			}},
			path: "/V/cases/R/properties/k", code: sg.CodeTagContentClash,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := sg.Validate(tc.v)
			iss, ok := sg.AsIssues(err)
			require.True(t, ok, "expected issues, got %v", err)
			require.Len(t, iss, 1, "%v", iss)
			assert.Equal(t, tc.path, iss[0].Path)
			assert.Equal(t, tc.code, iss[0].Code)
		})
	}
}

func TestNamed(t *testing.T) {
	userID := &desc.Named{Name: "UserID", Description: "opaque user key", Target: desc.Formatted("uuid")}
	rec := &desc.Record{Name: "Session", Fields: []desc.Field{
		{Name: "user", Type: userID, Required: true},
		{Name: "impersonator", Type: desc.Optional{Inner: userID}},
	}}
	root := generate(t, rec, sg.Draft202012())

	assert.Equal(t,
		`{"$schema":"https://json-schema.org/draft/2020-12/schema","title":"Session","type":"object","properties":{`+
			`"user":{"$ref":"#/$defs/UserID"},"impersonator":{"anyOf":[{"$ref":"#/$defs/UserID"},{"type":"null"}]}},"required":["user"],`+
			`"$defs":{"UserID":{"type":"string","format":"uuid","description":"opaque user key"}}}`,
		render(t, root))
}

func TestOptional_NullableStyles(t *testing.T) {
	opt := &desc.Record{Name: "R", Fields: []desc.Field{{Name: "s", Type: desc.Optional{Inner: desc.String()}}}}

	augmented := generate(t, opt, sg.Draft202012())
	assert.Equal(t, `{"type":["string","null"]}`, render(t, property(t, augmented, "s")))
	schematest.AssertAccepts(t, augmented, `{"s":null}`, `{"s":"x"}`)

	union := sg.Draft202012()
	union.OptionNullUnion = true
	unioned := generate(t, opt, union)
	assert.Equal(t, `{"anyOf":[{"type":"string"},{"type":"null"}]}`, render(t, property(t, unioned, "s")))
	schematest.AssertAccepts(t, unioned, `{"s":null}`, `{"s":"x"}`)
	schematest.AssertRejects(t, unioned, `{"s":1}`)

	openapi := generate(t, opt, sg.OpenAPI3())
	assert.Equal(t, `{"type":"string","nullable":true}`, render(t, property(t, openapi, "s")))
}
