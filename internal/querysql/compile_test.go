package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/queryir"
)

const (
	rdfType   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	foafFirst = "http://xmlns.com/foaf/0.1/firstName"
)

var (
	alice     = ir.NewResource("http://ex.org/alice", ir.KindBasic, nil)
	person    = ir.NewResource("http://ex.org/Person", ir.KindBasic, nil)
	typePred  = ir.NewResource(rdfType, ir.KindBasic, nil)
	firstName = ir.NewResource(foafFirst, ir.KindBasic, nil)
)

func TestCompile_SingleCondition(t *testing.T) {
	var q queryir.Query
	q.AddBindings("o")
	q.AddCondition(alice, firstName, ir.Variable("o"))

	sql, params, err := NewSQLCompiler("").Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT t0.object AS "o", t0.object_kind AS "o__kind", t0.datatype AS "o__datatype" `+
			`FROM triples AS t0 `+
			`WHERE t0.context = ? AND t0.subject = ? AND t0.predicate = ? `+
			`ORDER BY t0.seq ASC`,
		sql)
	assert.Equal(t, []any{"", "http://ex.org/alice", foafFirst}, params)
}

func TestCompile_JoinOnSharedSubject(t *testing.T) {
	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), typePred, person)
	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("Alice"))

	sql, params, err := NewSQLCompiler("people").Compile(q)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT t0.subject AS "s", 'resource' AS "s__kind", '' AS "s__datatype" `+
			`FROM triples AS t0, triples AS t1 `+
			`WHERE t0.context = ? AND t0.predicate = ? AND t0.object = ? AND t0.object_kind = ? `+
			`AND t1.context = ? AND t1.subject = t0.subject AND t1.predicate = ? `+
			`AND t1.object_kind = ? AND t1.object = ? AND t1.datatype = ? `+
			`ORDER BY t0.seq ASC, t1.seq ASC`,
		sql)
	assert.Equal(t, []any{
		"people", rdfType, "http://ex.org/Person", KindResource,
		"people", foafFirst,
		KindLiteral, "Alice", ir.XSDString,
	}, params)
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("Robert'); DROP TABLE triples;--"))

	sql, params, err := NewSQLCompiler("").Compile(q)
	require.NoError(t, err)

	assert.NotContains(t, sql, "DROP TABLE")
	assert.Contains(t, params, "Robert'); DROP TABLE triples;--")
	assert.Contains(t, sql, "ORDER BY")
}

func TestCompile_KeywordSearchUsesLike(t *testing.T) {
	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), firstName, ir.NewLiteral("50%_off"))
	q.ActivateKeywordSearch()

	sql, params, err := NewSQLCompiler("").Compile(q)
	require.NoError(t, err)

	assert.Contains(t, sql, `t0.object LIKE ? ESCAPE '\'`)
	assert.NotContains(t, sql, "t0.datatype = ?")
	assert.Equal(t, `%50\%\_off%`, params[len(params)-1])
}

func TestCompile_ObjectVariableJoinedAsSubject(t *testing.T) {
	// ?s knows ?friend . ?friend firstName ?name
	knows := ir.NewResource("http://xmlns.com/foaf/0.1/knows", ir.KindBasic, nil)

	var q queryir.Query
	q.AddBindings("friend", "name")
	q.AddCondition(alice, knows, ir.Variable("friend"))
	q.AddCondition(ir.Variable("friend"), firstName, ir.Variable("name"))

	sql, _, err := NewSQLCompiler("").Compile(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "t0.object_kind = ?")
	assert.Contains(t, sql, "t1.subject = t0.object")
	assert.Contains(t, sql, `t0.object AS "friend"`)
	assert.Contains(t, sql, `t1.object AS "name"`)
}

func TestCompile_ObjectVariableJoinedAsObject(t *testing.T) {
	lastName := ir.NewResource("http://xmlns.com/foaf/0.1/lastName", ir.KindBasic, nil)

	var q queryir.Query
	q.AddBindings("s")
	q.AddCondition(ir.Variable("s"), firstName, ir.Variable("n"))
	q.AddCondition(ir.Variable("s"), lastName, ir.Variable("n"))

	sql, _, err := NewSQLCompiler("").Compile(q)
	require.NoError(t, err)

	assert.Contains(t, sql, "t1.object = t0.object")
	assert.Contains(t, sql, "t1.object_kind = t0.object_kind")
	assert.Contains(t, sql, "t1.datatype = t0.datatype")
}

func TestCompile_NoBindings(t *testing.T) {
	var q queryir.Query
	q.AddCondition(alice, ir.Variable("p"), ir.Variable("o"))

	sql, _, err := NewSQLCompiler("").Compile(q)
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT 1 AS matched FROM")
}

func TestCompile_RejectsInvalidQuery(t *testing.T) {
	var q queryir.Query
	q.AddBindings("o")
	q.AddCondition(ir.NewLiteral("oops"), firstName, ir.Variable("o"))

	_, _, err := NewSQLCompiler("").Compile(q)
	assert.ErrorIs(t, err, ir.ErrTypeMismatch)

	_, _, err = NewSQLCompiler("").Compile(queryir.Query{})
	assert.ErrorIs(t, err, ir.ErrNilResource)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}

func TestCompile_ParamsAreNFC(t *testing.T) {
	var q queryir.Query
	q.AddCondition(ir.NewResource("http://ex.org/cafe\u0301", ir.KindBasic, nil), firstName, ir.NewLiteral("Zoe\u0308"))

	_, params, err := NewSQLCompiler("").Compile(q)
	require.NoError(t, err)
	assert.Contains(t, params, "http://ex.org/caf\u00e9")
	assert.Contains(t, params, "Zo\u00eb")
	assert.NotContains(t, params, "Zoe\u0308")
}
