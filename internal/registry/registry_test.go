package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
)

const personURI = "http://ex.org/Person"

func TestRegister_RoundTrip(t *testing.T) {
	resolver := identity.New()
	r := New(resolver)
	person := ir.NewType("Person", nil)

	require.NoError(t, r.Register(person, personURI))

	assert.Same(t, resolver.MustBasic(personURI), r.ClassURI(person))
	typ, ok := r.TypeFor(personURI)
	require.True(t, ok)
	assert.Equal(t, person, typ)
	assert.True(t, r.IsRegistered(person))
}

func TestClassURI_UnregisteredDefaultsToTop(t *testing.T) {
	r := New(identity.New())

	assert.Equal(t, namespace.RDFSResource, r.ClassURI(ir.NewType("Ghost", nil)).URI())
	assert.Equal(t, namespace.RDFSResource, r.ClassURI(nil).URI())
	assert.Equal(t, namespace.RDFSResource, r.ClassURI(ir.RootType).URI())
	assert.Same(t, r.ClassURI(nil), r.ClassURI(ir.IdentifiedType))
}

func TestTypeFor_UnknownURI(t *testing.T) {
	r := New(identity.New())

	typ, ok := r.TypeFor("http://ex.org/Unknown")
	assert.False(t, ok)
	assert.Nil(t, typ)

	root, ok := r.TypeFor(namespace.RDFSResource)
	assert.True(t, ok)
	assert.Equal(t, ir.RootType, root)
}

func TestRegister_LastWriteWins(t *testing.T) {
	r := New(identity.New())
	person := ir.NewType("Person", nil)

	require.NoError(t, r.Register(person, "http://ex.org/Human"))
	require.NoError(t, r.Register(person, personURI))

	assert.Equal(t, personURI, r.ClassURI(person).URI())
	_, ok := r.TypeFor("http://ex.org/Human")
	assert.False(t, ok, "old URI must be released")
}

func TestRegister_URIMovesToNewType(t *testing.T) {
	r := New(identity.New())
	person := ir.NewType("Person", nil)
	human := ir.NewType("Human", nil)

	require.NoError(t, r.Register(person, personURI))
	require.NoError(t, r.Register(human, personURI))

	typ, _ := r.TypeFor(personURI)
	assert.Equal(t, human, typ)
	assert.False(t, r.IsRegistered(person))
	assert.Equal(t, namespace.RDFSResource, r.ClassURI(person).URI())
}

func TestRegister_Errors(t *testing.T) {
	r := New(identity.New())

	assert.ErrorIs(t, r.Register(ir.NewType("X", nil), ""), ir.ErrInvalidURI)
	assert.ErrorIs(t, r.Register(nil, personURI), ir.ErrNilResource)
}

func TestClassURIs_Sorted(t *testing.T) {
	r := New(identity.New())
	require.NoError(t, r.Register(ir.NewType("B", nil), "http://ex.org/B"))
	require.NoError(t, r.Register(ir.NewType("A", nil), "http://ex.org/A"))

	assert.Equal(t, []string{"http://ex.org/A", "http://ex.org/B", namespace.RDFSResource}, r.ClassURIs())
	assert.Equal(t, "A", r.Bindings()["http://ex.org/A"])
}
