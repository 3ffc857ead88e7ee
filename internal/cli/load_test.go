package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Memory(t *testing.T) {
	out, err := execute(t, "load", peopleOntology)
	require.NoError(t, err)
	assert.Equal(t, "✓ Loaded 23 statement(s) from 1 file(s); store holds 23\n", out)
}

func TestLoad_SQLitePersists(t *testing.T) {
	db := filepath.Join(t.TempDir(), "people.db")

	out, err := execute(t, "--format", "json", "--adapter", "sqlite", "--db", db, "load", peopleOntology)
	require.NoError(t, err)
	var resp struct {
		Data LoadOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, LoadOutput{Files: 1, Added: 23, Statements: 23}, resp.Data)

	// Loading again adds nothing.
	out, err = execute(t, "--adapter", "sqlite", "--db", db, "load", peopleOntology)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 0 statement(s)")

	// Later commands see the stored classes by name without --ontology.
	out, err = execute(t, "--adapter", "sqlite", "--db", db, "find", "Employee", "firstName=Carol")
	require.NoError(t, err)
	assert.Equal(t, "ex:carol\n", out)
}

func TestLoad_AnonymousResourceGetsUUIDSubject(t *testing.T) {
	file := filepath.Join(t.TempDir(), "places.cue")
	require.NoError(t, os.WriteFile(file, []byte(`
prefix: ex: "http://ex.org/"
class: Place: uri: "ex:Place"
property: city: { uri: "ex:city", domain: "ex:Place" }
resource: home: {
	type: "ex:Place"
	values: "ex:city": "Berlin"
}
`), 0644))

	out, err := execute(t, "find", "Place", "city=Berlin", "-o", file)
	require.NoError(t, err)

	subject, ok := strings.CutPrefix(strings.TrimSpace(out), "urn:uuid:")
	require.True(t, ok, "anonymous subject %q", out)
	id, err := uuid.Parse(subject)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestLoad_ContextsAreSeparate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "people.db")

	_, err := execute(t, "--adapter", "sqlite", "--db", db, "--context", "http://ex.org/g1", "load", peopleOntology)
	require.NoError(t, err)

	out, err := execute(t, "--adapter", "sqlite", "--db", db, "--context", "http://ex.org/g2", "load", peopleOntology)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 23 statement(s)")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		out, err := execute(t, "load", "/nonexistent/ontology")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E005]")
	})

	t.Run("no files", func(t *testing.T) {
		out, err := execute(t, "load", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, out, "Error [E003]")
	})

	t.Run("bad cue", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte("class: {"), 0644))
		out, err := execute(t, "load", dir)
		require.Error(t, err)
		assert.Contains(t, out, "Error [E006]")
	})
}

func TestLoadOntology(t *testing.T) {
	res, err := LoadOntology(peopleOntology)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FileCount)
	assert.Len(t, res.Ontology.Classes, 2)
	assert.Len(t, res.Ontology.Properties, 4)
	assert.Len(t, res.Ontology.Resources, 3)

	file := filepath.Join(peopleOntology, "people.cue")
	res, err = LoadOntology(file, file)
	require.NoError(t, err)
	assert.Equal(t, []string{file, file}, res.Files)
}

func TestLoadOntology_MissingField(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte(`class: Person: label: "Person"`), 0644))

	_, err := LoadOntology(dir)
	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeMissingField, loadErr.Code)
	assert.Contains(t, loadErr.Message, "uri is required")
}

func TestLoadError_Format(t *testing.T) {
	err := &LoadError{Code: ErrCodeNoFiles, Message: "no CUE files"}
	assert.Equal(t, "E003: no CUE files", err.Error())
}
