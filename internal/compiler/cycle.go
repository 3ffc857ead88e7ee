package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
)

// CycleWarning represents a cycle in the rdfs:subClassOf hierarchy.
//
// A class that is its own subclass is legal RDFS and reported at "info"
// level. Longer cycles make attribute discovery fail or stop early and are
// reported as "warning".
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["ex:A", "ex:B", "ex:A"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeHierarchy performs static cycle analysis on subClassOf statements.
//
// The algorithm:
//  1. Build class → superclass graph from rdfs:subClassOf statements
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle warning
//
// Other statements are ignored. A hierarchy without cycles returns an
// empty warning list. Output order follows statement order.
func AnalyzeHierarchy(triples []ir.Triple) []CycleWarning {
	graph := buildHierarchyGraph(triples)
	if len(graph.nodes) == 0 {
		return []CycleWarning{}
	}

	sccs := tarjanSCC(graph)

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	return warnings
}

// hierarchyGraph maps class URI → direct superclass URIs. nodes keeps
// first-seen order so results are deterministic.
type hierarchyGraph struct {
	nodes []string
	edges map[string][]string
}

func (g *hierarchyGraph) addNode(n string) {
	if _, ok := g.edges[n]; !ok {
		g.edges[n] = []string{}
		g.nodes = append(g.nodes, n)
	}
}

func buildHierarchyGraph(triples []ir.Triple) *hierarchyGraph {
	g := &hierarchyGraph{edges: make(map[string][]string)}
	for _, t := range triples {
		if t.Predicate == nil || t.Predicate.URI() != namespace.RDFSSubClassOf {
			continue
		}
		super, ok := t.Object.(*ir.Resource)
		if !ok || t.Subject == nil {
			continue
		}
		from, to := t.Subject.URI(), super.URI()
		g.addNode(from)
		g.addNode(to)
		g.edges[from] = append(g.edges[from], to)
	}
	return g
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, g *hierarchyGraph) bool {
	for _, neighbor := range g.edges[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of class URIs.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(g *hierarchyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
func cycleSCCToWarning(scc []string, g *hierarchyGraph) CycleWarning {
	if len(scc) == 1 {
		class := scc[0]
		return CycleWarning{
			Path:    []string{class, class},
			Message: fmt.Sprintf("Class is declared a subclass of itself: %s", class),
			Level:   "info",
		}
	}

	path := reconstructCyclePath(scc, g)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("subClassOf cycle detected: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Starts at the SCC member seen first in the statements and follows edges
// to other members until it returns to the start.
func reconstructCyclePath(scc []string, g *hierarchyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	for _, n := range g.nodes {
		if sccSet[n] {
			start = n
			break
		}
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range g.edges[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
