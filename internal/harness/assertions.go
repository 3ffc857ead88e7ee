package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/queryir"
	"github.com/roach88/activegraph/internal/resource"
	"github.com/roach88/activegraph/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext provides what assertions query.
type AssertionContext struct {
	Ctx     context.Context
	Store   *store.Store
	Session *resource.Session
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertHolds:
			err = assertStatement(actx, a, true)
		case AssertAbsent:
			err = assertStatement(actx, a, false)
		case AssertTripleCount:
			err = assertTripleCount(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

// assertStatement checks whether (subject predicate object) is stored.
func assertStatement(actx *AssertionContext, a Assertion, want bool) error {
	s, err := actx.Session.Resource(a.Subject)
	if err != nil {
		return err
	}
	p, err := actx.Session.Resource(a.Predicate)
	if err != nil {
		return err
	}
	o, err := assertionObject(actx.Session, a.Object)
	if err != nil {
		return err
	}

	var q queryir.Query
	q.AddCondition(s, p, o)
	found := false
	err = actx.Store.Each(actx.Ctx, q, func(queryir.Row) error {
		found = true
		return queryir.ErrStop
	})
	if err != nil {
		return err
	}

	if found != want {
		stmt := ir.NewTriple(s, p, o).String()
		expected, actual := "statement present", "not found"
		if !want {
			expected, actual = "statement absent", "found"
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s: %s", expected, stmt),
			Actual:   actual,
		}
	}
	return nil
}

func assertTripleCount(actx *AssertionContext, a Assertion) error {
	n, err := actx.Store.Count(actx.Ctx)
	if err != nil {
		return err
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertTripleCount,
			Expected: fmt.Sprintf("%d statements", a.Count),
			Actual:   fmt.Sprintf("%d statements", n),
		}
	}
	return nil
}

// assertionObject converts a YAML object: {ref: name} is a resource,
// anything else a literal via the default coercer.
func assertionObject(session *resource.Session, v any) (ir.Term, error) {
	if m, ok := v.(map[string]any); ok {
		ref, ok := m["ref"].(string)
		if !ok || len(m) != 1 {
			return nil, fmt.Errorf("object map must be {ref: name}, got %v", m)
		}
		r, err := session.Resource(ref)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	lit, err := ir.XSDCoercer{}.Coerce(v)
	if err != nil {
		return nil, err
	}
	return lit, nil
}
