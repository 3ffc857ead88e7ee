// Package querysparql renders Query IR as SPARQL 1.1 text.
//
// Rendering is used for explain output and for handing queries to a remote
// SPARQL endpoint. The output is deterministic: prefixes are sorted and
// conditions keep their builder order.
package querysparql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/namespace"
	"github.com/roach88/activegraph/internal/queryir"
)

// Renderer renders queries, compacting URIs through a namespace registry.
type Renderer struct {
	prefixes *namespace.Registry
}

// NewRenderer creates a renderer. A nil registry renders full URIs only.
func NewRenderer(prefixes *namespace.Registry) *Renderer {
	return &Renderer{prefixes: prefixes}
}

// Render converts a query to SPARQL.
//
// Projections become SELECT DISTINCT, since folded results are distinct
// anyway. A query with no bindings renders as SELECT *. Under keyword
// search each literal object is replaced by a fresh variable and a
// case-insensitive CONTAINS filter.
func (r *Renderer) Render(q queryir.Query) (string, error) {
	if err := q.Check(); err != nil {
		return "", err
	}

	w := &writer{renderer: r, used: make(map[string]string)}

	var body strings.Builder
	var filters []string
	for i, c := range q.Conditions {
		object := w.term(c.Object)
		if lit, ok := c.Object.(ir.Literal); ok && q.KeywordSearch {
			kw := ir.Variable(fmt.Sprintf("kw%d", i))
			object = kw.String()
			filters = append(filters, fmt.Sprintf("FILTER(CONTAINS(LCASE(STR(%s)), LCASE(%s)))",
				kw, quote(lit.Value)))
		}
		fmt.Fprintf(&body, "  %s %s %s .\n", w.term(c.Subject), w.term(c.Predicate), object)
	}
	for _, f := range filters {
		fmt.Fprintf(&body, "  %s\n", f)
	}

	var out strings.Builder
	if q.Scope != nil {
		fmt.Fprintf(&out, "# scope: %s\n", q.Scope)
	}
	names := make([]string, 0, len(w.used))
	for p := range w.used {
		names = append(names, p)
	}
	sort.Strings(names)
	for _, p := range names {
		fmt.Fprintf(&out, "PREFIX %s: <%s>\n", p, w.used[p])
	}
	if len(names) > 0 {
		out.WriteString("\n")
	}

	if len(q.Bindings) == 0 {
		out.WriteString("SELECT *\n")
	} else {
		vars := make([]string, len(q.Bindings))
		for i, v := range q.Bindings {
			vars[i] = v.String()
		}
		fmt.Fprintf(&out, "SELECT DISTINCT %s\n", strings.Join(vars, " "))
	}
	out.WriteString("WHERE {\n")
	out.WriteString(body.String())
	out.WriteString("}\n")

	return out.String(), nil
}

// writer tracks which prefixes a rendering uses.
type writer struct {
	renderer *Renderer
	used     map[string]string
}

func (w *writer) term(t ir.Term) string {
	switch v := t.(type) {
	case *ir.Resource:
		return w.uri(v.URI())
	case ir.Literal:
		if v.Datatype == "" || v.Datatype == ir.XSDString {
			return quote(v.Value)
		}
		return quote(v.Value) + "^^" + w.uri(v.Datatype)
	case ir.Variable:
		return v.String()
	default:
		return t.String()
	}
}

// uri renders a URI as a prefixed name when the local part is a plain
// name, and as <uri> otherwise.
func (w *writer) uri(uri string) string {
	if w.renderer.prefixes != nil {
		compact := w.renderer.prefixes.Compact(uri)
		if prefix, local, ok := strings.Cut(compact, ":"); ok && compact != uri && plainLocal(local) {
			ns, _ := w.renderer.prefixes.Lookup(prefix)
			w.used[prefix] = ns
			return compact
		}
	}
	return "<" + uri + ">"
}

// plainLocal reports whether s can be written as a prefixed-name local
// part without escapes.
func plainLocal(s string) bool {
	if s == "" || strings.HasSuffix(s, ".") {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		case (c == '-' || c == '.') && i > 0:
		default:
			return false
		}
	}
	return true
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// quote renders a SPARQL string literal.
func quote(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}
