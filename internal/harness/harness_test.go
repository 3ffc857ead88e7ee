package harness

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cycleOntology = `
prefix: ex: "http://ex.org/"

class: A: {
	uri:        "ex:A"
	subClassOf: "ex:B"
}

class: B: {
	uri:        "ex:B"
	subClassOf: "ex:A"
}

property: a: {
	uri:    "ex:a"
	domain: "ex:A"
}

property: b: {
	uri:    "ex:b"
	domain: "ex:B"
}
`

func TestRun_CyclePolicy(t *testing.T) {
	dir := t.TempDir()
	onto := writeOntology(t, dir, "cycle.cue", cycleOntology)

	t.Run("fail", func(t *testing.T) {
		result, err := Run(&Scenario{
			Name:     "cycle_fail",
			Ontology: []string{onto},
			Steps: []Step{
				{Op: OpPredicates, Class: "A", Expect: Expect{Error: "SCHEMA_CYCLE"}},
			},
		})
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
		assert.Equal(t, "error SCHEMA_CYCLE", result.Trace[0].Outcome())
	})

	t.Run("tolerate", func(t *testing.T) {
		result, err := Run(&Scenario{
			Name:        "cycle_tolerate",
			Ontology:    []string{onto},
			CyclePolicy: "tolerate",
			Steps: []Step{
				{Op: OpPredicates, Class: "A", Expect: Expect{Names: []string{"a", "b"}}},
			},
		})
		require.NoError(t, err)
		assert.True(t, result.Pass, "errors: %v", result.Errors)
		assert.Equal(t, []string{"a=ex:a", "b=ex:b"}, result.Trace[0].Values)
	})
}

func TestRun_ExpectationMismatchFailsResult(t *testing.T) {
	dir := t.TempDir()
	onto := writeOntology(t, dir, "people.cue", minimalOntology)

	result, err := Run(&Scenario{
		Name:     "mismatch",
		Ontology: []string{onto},
		Steps: []Step{
			{
				Op:    OpFind,
				Class: "Person",
				Where: []ConditionDef{{Attr: "firstName", Values: []any{"Alice"}}},
				Expect: Expect{
					Kind:   "scalar",
					Values: []string{"ex:alice"},
				},
			},
			{
				Op:     OpFind,
				Class:  "Person",
				Where:  []ConditionDef{{Attr: "nickname", Values: []any{"Al"}}},
				Expect: Expect{Kind: "absent"},
			},
		},
		Assertions: []Assertion{{Type: AssertTripleCount, Count: 99}},
	})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "expected kind scalar, got absent")
	assert.Contains(t, result.Errors[1], "expected values [ex:alice], got []")
	assert.Contains(t, result.Errors[2], `expected error "", got "UNKNOWN_ATTRIBUTE"`)
	assert.Contains(t, result.Errors[3], "99 statements")
}

func TestRun_UnknownClassIsScenarioError(t *testing.T) {
	dir := t.TempDir()
	onto := writeOntology(t, dir, "people.cue", minimalOntology)

	_, err := Run(&Scenario{
		Name:     "unknown_class",
		Ontology: []string{onto},
		Steps:    []Step{{Op: OpPredicates, Class: "Robot"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `step 0: unknown class "Robot"`)
}

func TestRun_BadOntology(t *testing.T) {
	dir := t.TempDir()
	onto := writeOntology(t, dir, "broken.cue", "class: {")

	_, err := Run(&Scenario{
		Name:     "broken",
		Ontology: []string{onto},
		Steps:    []Step{{Op: OpPredicates}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load ontology")
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("../../testdata/scenarios/people_schema.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, TraceBytes(scenario.Name, first.Trace), TraceBytes(scenario.Name, second.Trace))
}

func TestTraceEvent_Outcome(t *testing.T) {
	yes := true
	tests := []struct {
		name string
		ev   TraceEvent
		want string
	}{
		{"error wins", TraceEvent{Error: "UNKNOWN_ATTRIBUTE", Kind: "absent"}, "error UNKNOWN_ATTRIBUTE"},
		{"exists", TraceEvent{Exists: &yes}, "exists true"},
		{"identify", TraceEvent{Values: []string{"ex:carol"}, Type: "Employee"}, "ex:carol Employee"},
		{"scalar", TraceEvent{Kind: "scalar", Values: []string{"Alice"}}, "scalar Alice"},
		{"absent", TraceEvent{Kind: "absent"}, "absent"},
		{"predicates", TraceEvent{Values: []string{"a=ex:a", "b=ex:b"}}, "a=ex:a b=ex:b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.Outcome())
		})
	}
}

func TestWriteTrace(t *testing.T) {
	trace := []TraceEvent{
		{Seq: 1, Op: OpGet, Class: "Resource", Query: "SELECT DISTINCT ?o\nWHERE {\n  ?s ?p ?o .\n}\n", Kind: "absent"},
		{Seq: 2, Op: OpPredicates, Class: "Person", Values: []string{"firstName=foaf:firstName"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrace(&buf, "demo", trace))

	assert.Equal(t,
		"scenario: demo\n"+
			"\n[1] get Resource\n"+
			"  SELECT DISTINCT ?o\n"+
			"  WHERE {\n"+
			"    ?s ?p ?o .\n"+
			"  }\n"+
			"  => absent\n"+
			"\n[2] predicates Person\n"+
			"  => firstName=foaf:firstName\n",
		buf.String())
}

func TestSameSet(t *testing.T) {
	assert.True(t, sameSet([]string{"b", "a"}, []string{"a", "b"}))
	assert.True(t, sameSet(nil, []string{}))
	assert.False(t, sameSet([]string{"a"}, []string{"a", "a"}))
	assert.False(t, sameSet([]string{"a", "b"}, []string{"a", "c"}))
}
