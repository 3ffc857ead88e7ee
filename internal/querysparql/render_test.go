package querysparql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
	"github.com/roach88/activegraph/internal/queryir"
)

func res(uri string) *ir.Resource {
	return ir.NewResource(uri, ir.KindBasic, nil)
}

var (
	person    = res("http://ex.org/Person")
	alice     = res("http://ex.org/alice")
	rdfType   = res(namespace.RDFType)
	firstName = res(namespace.FOAF + "firstName")
)

func exRegistry(t *testing.T) *namespace.Registry {
	t.Helper()
	reg := namespace.New()
	require.NoError(t, reg.Bind("ex", "http://ex.org/"))
	return reg
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRender_ScopedFind(t *testing.T) {
	q := queryir.Query{Scope: person}
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), rdfType, person)
	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("Alice"))

	out, err := NewRenderer(exRegistry(t)).Render(q)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "find_scoped", []byte(out))
}

func TestRender_KeywordSearch(t *testing.T) {
	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("ali"))
	q.ActivateKeywordSearch()

	out, err := NewRenderer(exRegistry(t)).Render(q)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "keyword", []byte(out))
}

func TestRender_WithoutRegistryUsesFullURIs(t *testing.T) {
	var q queryir.Query
	q.AddBindings("o")
	q.AddCondition(alice, firstName, ir.Variable("o"))

	out, err := NewRenderer(nil).Render(q)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT DISTINCT ?o\n"+
			"WHERE {\n"+
			"  <http://ex.org/alice> <http://xmlns.com/foaf/0.1/firstName> ?o .\n"+
			"}\n",
		out)
}

func TestRender_NoBindingsSelectsAll(t *testing.T) {
	var q queryir.Query
	q.AddCondition(ir.Variable("s"), ir.Variable("p"), ir.Variable("o"))

	out, err := NewRenderer(nil).Render(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nWHERE {\n  ?s ?p ?o .\n}\n", out)
}

func TestRender_TypedLiteral(t *testing.T) {
	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), res("http://ex.org/age"), ir.Literal{Value: "30", Datatype: ir.XSDInteger})

	out, err := NewRenderer(exRegistry(t)).Render(q)
	require.NoError(t, err)
	assert.Contains(t, out, "PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>\n")
	assert.Contains(t, out, `?s ex:age "30"^^xsd:integer .`)
}

func TestRender_EscapesStrings(t *testing.T) {
	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("say \"hi\"\n"))

	out, err := NewRenderer(nil).Render(q)
	require.NoError(t, err)
	assert.Contains(t, out, `"say \"hi\"\n"`)
}

func TestRender_UnsafeLocalNamesStayFull(t *testing.T) {
	var q queryir.Query
	q.AddBindings("o")
	q.AddCondition(res("http://ex.org/people/alice"), firstName, ir.Variable("o"))

	out, err := NewRenderer(exRegistry(t)).Render(q)
	require.NoError(t, err)
	assert.Contains(t, out, "<http://ex.org/people/alice> foaf:firstName ?o .")
	assert.NotContains(t, out, "PREFIX ex:")
}

func TestRender_InvalidQuery(t *testing.T) {
	_, err := NewRenderer(nil).Render(queryir.Query{})
	assert.ErrorIs(t, err, ir.ErrNilResource)
}

func TestPlainLocal(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"firstName", true},
		{"first-name", true},
		{"v1.2", true},
		{"123", true},
		{"", false},
		{"-x", false},
		{"x.", false},
		{"a/b", false},
		{"a#b", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, plainLocal(tt.in))
		})
	}
}
