// Package querysql compiles Query IR to parameterized SQL over the
// store's triples table.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/queryir"
)

// Object kinds stored in the object_kind column.
const (
	KindResource = "resource"
	KindLiteral  = "literal"
)

// ColumnsPerBinding is the number of result columns emitted for each
// projected variable: value, object kind, datatype.
const ColumnsPerBinding = 3

// slot identifies a column family of one condition alias.
type slot int

const (
	slotSubject slot = iota
	slotPredicate
	slotObject
)

func (s slot) column() string {
	switch s {
	case slotSubject:
		return "subject"
	case slotPredicate:
		return "predicate"
	default:
		return "object"
	}
}

// ref is the first place a variable appears.
type ref struct {
	alias string
	slot  slot
}

func (r ref) value() string { return r.alias + "." + r.slot.column() }

// SQLCompiler compiles Query IR to parameterized SQL for SQLite.
//
// Each condition becomes one alias of the triples table; variables shared
// between conditions become join predicates.
//
// CRITICAL: ALL queries include ORDER BY on insertion sequence for
// deterministic results.
// CRITICAL: All values are parameterized (never interpolated).
type SQLCompiler struct {
	// Table is the triples table name.
	Table string

	// Context restricts every condition to one named graph.
	Context string
}

// NewSQLCompiler creates a compiler for the default triples table.
func NewSQLCompiler(context string) *SQLCompiler {
	return &SQLCompiler{Table: "triples", Context: context}
}

// Compile converts a query to parameterized SQL.
// Returns (sql, params, error) tuple.
//
// The result has ColumnsPerBinding columns per projected variable, in
// q.Bindings order. A query with no bindings selects a single constant
// column so callers can still count matches.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if err := q.Check(); err != nil {
		return "", nil, err
	}

	b := &builder{
		compiler: c,
		refs:     make(map[ir.Variable]ref),
		objVars:  make(map[ir.Variable]bool),
	}

	// A variable used as subject or predicate anywhere can only bind to
	// resources, so its object occurrences are restricted to resources.
	for _, cond := range q.Conditions {
		for _, t := range []ir.Term{cond.Subject, cond.Predicate} {
			if v, ok := t.(ir.Variable); ok {
				b.objVars[v] = true
			}
		}
	}

	aliases := make([]string, len(q.Conditions))
	for i, cond := range q.Conditions {
		alias := fmt.Sprintf("t%d", i)
		aliases[i] = alias
		if err := b.condition(alias, cond, q.KeywordSearch); err != nil {
			return "", nil, fmt.Errorf("compile condition %d: %w", i, err)
		}
	}

	selectClause, err := b.selectClause(q.Bindings)
	if err != nil {
		return "", nil, err
	}

	from := make([]string, len(aliases))
	order := make([]string, len(aliases))
	for i, alias := range aliases {
		from[i] = fmt.Sprintf("%s AS %s", c.Table, alias)
		order[i] = alias + ".seq ASC"
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s",
		selectClause,
		strings.Join(from, ", "),
		strings.Join(b.where, " AND "),
		strings.Join(order, ", "))

	return sql, b.params, nil
}

// builder accumulates WHERE fragments and parameters.
type builder struct {
	compiler *SQLCompiler
	refs     map[ir.Variable]ref
	objVars  map[ir.Variable]bool
	where    []string
	params   []any
}

func (b *builder) add(clause string, params ...any) {
	b.where = append(b.where, clause)
	b.params = append(b.params, params...)
}

func (b *builder) condition(alias string, cond queryir.Condition, keyword bool) error {
	b.add(alias+".context = ?", b.compiler.Context)

	slots := cond.Terms()
	for i, term := range slots {
		s := slot(i)
		col := alias + "." + s.column()

		switch t := term.(type) {
		case *ir.Resource:
			b.add(col+" = ?", ir.NormalizeURI(t.URI()))
			if s == slotObject {
				b.add(alias+".object_kind = ?", KindResource)
			}
		case ir.Literal:
			if s != slotObject {
				return ir.Errorf(ir.CodeTypeMismatch, "literal in %s position", s.column())
			}
			b.literal(alias, t, keyword)
		case ir.Variable:
			b.variable(t, ref{alias: alias, slot: s})
		default:
			return fmt.Errorf("unsupported term type: %T", term)
		}
	}
	return nil
}

// literal matches a literal object by equality, or by substring when
// keyword search is active. Values are compared in NFC, as stored.
func (b *builder) literal(alias string, lit ir.Literal, keyword bool) {
	b.add(alias+".object_kind = ?", KindLiteral)
	if keyword {
		b.add(alias+`.object LIKE ? ESCAPE '\'`, "%"+escapeLike(ir.NormalizeText(lit.Value))+"%")
		return
	}
	dt := lit.Datatype
	if dt == "" {
		dt = ir.XSDString
	}
	b.add(alias+".object = ?", ir.NormalizeText(lit.Value))
	b.add(alias+".datatype = ?", dt)
}

// variable records the first occurrence of v or joins on it.
func (b *builder) variable(v ir.Variable, at ref) {
	if at.slot == slotObject && b.objVars[v] {
		b.add(at.alias+".object_kind = ?", KindResource)
	}

	first, seen := b.refs[v]
	if !seen {
		b.refs[v] = at
		return
	}

	b.add(at.value() + " = " + first.value())
	if at.slot == slotObject && first.slot == slotObject {
		b.add(at.alias + ".object_kind = " + first.alias + ".object_kind")
		b.add(at.alias + ".datatype = " + first.alias + ".datatype")
	}
}

func (b *builder) selectClause(bindings []ir.Variable) (string, error) {
	if len(bindings) == 0 {
		return "1 AS matched", nil
	}

	parts := make([]string, 0, len(bindings)*ColumnsPerBinding)
	for _, v := range bindings {
		r, ok := b.refs[v]
		if !ok {
			return "", ir.Errorf(ir.CodeTypeMismatch, "projected variable %s is not bound", v)
		}
		name := v.Name()
		parts = append(parts, fmt.Sprintf("%s AS %s", r.value(), quoteIdent(name)))
		if r.slot == slotObject {
			parts = append(parts,
				fmt.Sprintf("%s.object_kind AS %s", r.alias, quoteIdent(name+"__kind")),
				fmt.Sprintf("%s.datatype AS %s", r.alias, quoteIdent(name+"__datatype")))
		} else {
			parts = append(parts,
				fmt.Sprintf("'%s' AS %s", KindResource, quoteIdent(name+"__kind")),
				fmt.Sprintf("'' AS %s", quoteIdent(name+"__datatype")))
		}
	}
	return strings.Join(parts, ", "), nil
}

// quoteIdent quotes a column alias. Variable names come from callers.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// escapeLike escapes LIKE wildcards with a backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
