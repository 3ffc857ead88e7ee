package harness

import (
	"fmt"
	"io"
	"strings"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq   int64  `json:"seq"`
	Op    string `json:"op"`
	Class string `json:"class"`

	// Query is the rendered SPARQL of the built query, if the op builds one.
	Query string `json:"query,omitempty"`

	// Kind is the folded result kind for get and find.
	Kind string `json:"kind,omitempty"`

	// Values are the outcome rendered as compact strings, sorted.
	Values []string `json:"values,omitempty"`

	// Exists is set by exists steps.
	Exists *bool `json:"exists,omitempty"`

	// Type is the model type chosen by identify.
	Type string `json:"type,omitempty"`

	// Error is the error code when the step failed.
	Error string `json:"error,omitempty"`
}

// Outcome renders the result part of the event on one line.
func (e TraceEvent) Outcome() string {
	switch {
	case e.Error != "":
		return "error " + e.Error
	case e.Exists != nil:
		return fmt.Sprintf("exists %t", *e.Exists)
	case e.Type != "":
		return strings.TrimSpace(strings.Join(e.Values, " ") + " " + e.Type)
	case e.Kind != "":
		return strings.TrimSpace(e.Kind + " " + strings.Join(e.Values, " "))
	default:
		return strings.Join(e.Values, " ")
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// WriteTrace writes the trace in its golden text form:
//
//	scenario: <name>
//
//	[1] find Person
//	  <query lines, indented>
//	  => scalar ex:alice
func WriteTrace(w io.Writer, name string, trace []TraceEvent) error {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	for _, ev := range trace {
		fmt.Fprintf(&b, "\n[%d] %s %s\n", ev.Seq, ev.Op, ev.Class)
		for _, line := range strings.Split(strings.TrimSuffix(ev.Query, "\n"), "\n") {
			if line == "" {
				if ev.Query != "" {
					b.WriteString("\n")
				}
				continue
			}
			fmt.Fprintf(&b, "  %s\n", line)
		}
		fmt.Fprintf(&b, "  => %s\n", ev.Outcome())
	}
	_, err := io.WriteString(w, b.String())
	return err
}
