package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/activegraph/internal/ir"
)

func res(uri string) *ir.Resource {
	return ir.NewResource(uri, ir.KindBasic, nil)
}

var (
	alice     = res("http://ex.org/alice")
	bob       = res("http://ex.org/bob")
	person    = res("http://ex.org/Person")
	rdfType   = res("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")
	firstName = res("http://xmlns.com/foaf/0.1/firstName")
	knows     = res("http://xmlns.com/foaf/0.1/knows")

	aliceType  = ir.NewTriple(alice, rdfType, person)
	aliceName  = ir.NewTriple(alice, firstName, ir.NewLiteral("Alice"))
	bobType    = ir.NewTriple(bob, rdfType, person)
	bobName    = ir.NewTriple(bob, firstName, ir.NewLiteral("Bob"))
	aliceKnows = ir.NewTriple(alice, knows, bob)
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createMemoryStore creates a new in-memory store for testing.
func createMemoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
