package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pets = `
root: Pet
types:
  Pet:
    fields:
      - {name: name, type: string, required: true}
      - {name: owner, type: "Owner?"}
  Owner:
    fields:
      - {name: id, type: integer, required: true, skipDeserialize: true}
      - {name: email, type: {type: string, format: email}}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate(t *testing.T) {
	path := writeFile(t, "pets.yaml", pets)

	out, err := run(t, "", "generate", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"$schema": "https://json-schema.org/draft/2020-12/schema"`)
	assert.Contains(t, out, `"$ref": "#/$defs/Owner"`)
	assert.NotContains(t, out, `"id"`)

	out, err = run(t, "", "generate", path, "--dialect", "openapi3", "--contract", "serialize", "--root", "Owner")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": {`)
	assert.Contains(t, out, `"readOnly": true`)
}

func TestGenerate_Inline(t *testing.T) {
	path := writeFile(t, "pets.yaml", pets)
	out, err := run(t, "", "generate", path, "--inline")
	require.NoError(t, err)
	assert.NotContains(t, out, `$defs`)
	assert.Contains(t, out, `"email"`)
}

func TestGenerate_YAMLToFile(t *testing.T) {
	path := writeFile(t, "pets.yaml", pets)
	target := filepath.Join(t.TempDir(), "nested", "pet.yaml")

	_, err := run(t, "", "generate", path, "--yaml", "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "$schema: https://json-schema.org/draft/2020-12/schema\ntitle: Pet\ntype: object\n"), string(data))
}

func TestGenerate_Errors(t *testing.T) {
	path := writeFile(t, "pets.yaml", pets)

	_, err := run(t, "", "generate", path, "--dialect", "draft-03")
	assert.ErrorContains(t, err, "unknown dialect")

	_, err = run(t, "", "generate", path, "--contract", "both")
	assert.Error(t, err)

	_, err = run(t, "", "generate", path, "--root", "Cat")
	assert.ErrorContains(t, err, `unknown type "Cat"`)

	_, err = run(t, "", "generate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTransform_Stdin(t *testing.T) {
	in := `{"$schema":"https://json-schema.org/draft/2020-12/schema","prefixItems":[{"type":"string"}],"const":1}`
	out, err := run(t, in, "transform", "-", "--dialect", "draft-07")
	require.NoError(t, err)
	assert.Contains(t, out, `"items": [`)
	assert.NotContains(t, out, "prefixItems")
}

func TestTransform_DefinitionsAtComponents(t *testing.T) {
	in := `{"type":"object","properties":{"pet":{"$ref":"#/components/schemas/Pet"}},` +
		`"components":{"schemas":{"Pet":{"type":"object","properties":{"tag":{"type":["string","null"]}}}}}}`
	path := writeFile(t, "pet.json", in)

	out, err := run(t, "", "transform", path, "--dialect", "openapi3")
	require.NoError(t, err)
	assert.Contains(t, out, `"nullable": true`)
	assert.NotContains(t, out, `"null"`)
}

func TestCheck(t *testing.T) {
	good := writeFile(t, "good.yaml", pets)
	out, err := run(t, "", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "2 types ok")

	bad := writeFile(t, "bad.yaml", `
types:
  V:
    tagging: internal
    cases: [{name: A}]
`)
	out, err = run(t, "", "check", bad)
	assert.ErrorContains(t, err, "1 of 1 types failed")
	assert.Contains(t, out, "V: /V/tag: tag member name is missing")

	out, err = run(t, "", "check", bad, "--lang", "ja")
	assert.Error(t, err)
	assert.Contains(t, out, "V: /V/tag: タグのメンバー名がありません")
	run(t, "", "check", good, "--lang", "en")
}

func TestDialects(t *testing.T) {
	out, err := run(t, "", "dialects")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "2019-09"))
	assert.Contains(t, out, "/definitions")
}
