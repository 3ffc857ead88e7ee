package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/activegraph/internal/querysparql"
	"github.com/roach88/activegraph/internal/querysql"
	"github.com/roach88/activegraph/internal/resource"
)

// ExplainOutput shows a find query in both target languages.
type ExplainOutput struct {
	SPARQL string `json:"sparql"`
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <class> [attr[=value] ...]",
		Short: "Show the query a find would run",
		Long: `Build the query for a find without running it, and print it as
SPARQL and as the SQL the sqlite adapter executes.

Conditions use the same syntax as find.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], args[1:], cmd)
		},
	}
	addOntologyFlag(cmd, opts)
	cmd.Flags().BoolVar(&opts.Keyword, "keyword", false, "match literal values by case-insensitive substring")
	return cmd
}

func runExplain(opts *QueryOptions, className string, condArgs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ws, err := openWorkspace(opts.RootOptions, cmd, opts.Ontology)
	if err != nil {
		return reportError(formatter, err)
	}
	defer ws.Close()

	class, conds, err := ws.findArgs(className, condArgs)
	if err != nil {
		return reportError(formatter, err)
	}
	q, err := class.BuildFind(ws.ctx, conds, resource.FindOptions{KeywordSearch: opts.Keyword})
	if err != nil {
		return reportError(formatter, err)
	}

	sparql, err := querysparql.NewRenderer(ws.namespaces).Render(q)
	if err != nil {
		return reportError(formatter, err)
	}
	sql, params, err := querysql.NewSQLCompiler(ws.cfg.Context).Compile(q)
	if err != nil {
		return reportError(formatter, err)
	}

	out := ExplainOutput{SPARQL: sparql, SQL: sql, Params: params}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	fmt.Fprintln(formatter.Writer, "# SPARQL")
	fmt.Fprint(formatter.Writer, out.SPARQL)
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintln(formatter.Writer, "# SQL")
	fmt.Fprintln(formatter.Writer, out.SQL)
	fmt.Fprintf(formatter.Writer, "-- params: %v\n", out.Params)
	return nil
}
