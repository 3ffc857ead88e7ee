package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.cue", "")
	writeFile(t, dir, "a.cue", "")
	writeFile(t, dir, "nested/c.cue", "")
	writeFile(t, dir, "notes.txt", "")

	files, err := FindFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.cue"),
		filepath.Join(dir, "b.cue"),
		filepath.Join(dir, "nested", "c.cue"),
	}, files)
}

func TestLoadFiles_MergesInOrder(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.cue", `
prefix: ex: "http://ex.org/"
class: Person: uri: "ex:Person"
property: firstName: {
	uri:    "foaf:firstName"
	domain: "ex:Person"
}
`)
	data := writeFile(t, dir, "data.cue", `
resource: alice: {
	uri:  "ex:alice"
	type: "ex:Person"
	values: "foaf:firstName": "Alice"
}
`)

	o, err := LoadFiles(schema, data)
	require.NoError(t, err)
	assert.Len(t, o.Prefixes, 1)
	assert.Len(t, o.Classes, 1)
	assert.Len(t, o.Properties, 1)
	require.Len(t, o.Resources, 1)
	assert.Equal(t, "ex:alice", o.Resources[0].URI)
	assert.False(t, o.Empty())

	bindings := o.Bindings()
	require.Len(t, bindings, 1)
	assert.Equal(t, "Person", bindings[0].Type.Name())
	assert.True(t, bindings[0].Type.IsClassScoped())
	assert.Equal(t, "ex:Person", bindings[0].URI)
}

func TestLoadFiles_Errors(t *testing.T) {
	_, err := LoadFiles(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.cue", `class: Person: {`)
	_, err = LoadFiles(bad)
	require.Error(t, err)
}

func TestOntology_Empty(t *testing.T) {
	o, err := LoadFiles()
	require.NoError(t, err)
	assert.True(t, o.Empty())
}
