package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/activegraph/internal/ir"
	"github.com/roach88/activegraph/internal/resource"
	"github.com/roach88/activegraph/internal/result"
)

// QueryOptions holds flags shared by the query commands.
type QueryOptions struct {
	*RootOptions
	Ontology []string // CUE files or directories loaded before the query
	Class    string   // class name or prefixed URI; empty is the untyped root
	Keyword  bool     // substring match on literal values
}

// QueryOutput is the folded result of a get or find.
type QueryOutput struct {
	Kind   string   `json:"kind"`
	Values []string `json:"values"`
}

// PredicatesOutput lists the attribute names discovered for a class.
type PredicatesOutput struct {
	Class      string            `json:"class"`
	Predicates map[string]string `json:"predicates"`
}

// ClassesOutput maps each bound class URI to its model type name.
type ClassesOutput struct {
	Classes map[string]string `json:"classes"`
}

// IdentifyOutput reports the model type chosen for a resource.
type IdentifyOutput struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

func addOntologyFlag(cmd *cobra.Command, opts *QueryOptions) {
	cmd.Flags().StringSliceVarP(&opts.Ontology, "ontology", "o", nil, "CUE ontology file or directory to load first (repeatable)")
}

func addClassFlag(cmd *cobra.Command, opts *QueryOptions) {
	cmd.Flags().StringVarP(&opts.Class, "class", "c", "", "class name or prefixed URI (default: untyped)")
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <class> [attr[=value] ...]",
		Short: "Find resources of a class by attribute values",
		Long: `Find resources whose attributes match every condition.

A condition is attr=value, or attr alone to require the attribute with
any value. attr is an attribute name discovered for the class or a
prefixed predicate. Values are literals; <ex:bob> is a resource.

Examples:
  activegraph find Person firstName=Alice -o ./ontology
  activegraph find Person knows=<ex:bob>
  activegraph find Person firstName=ali --keyword`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args[0], args[1:], cmd)
		},
	}
	addOntologyFlag(cmd, opts)
	cmd.Flags().BoolVar(&opts.Keyword, "keyword", false, "match literal values by case-insensitive substring")
	return cmd
}

func runFind(opts *QueryOptions, className string, condArgs []string, cmd *cobra.Command) error {
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
	formatter.VerboseLog("Finding %s with %d condition(s)", class.URI().URI(), len(conds))

	res, err := class.FindWith(ws.ctx, conds, resource.FindOptions{KeywordSearch: opts.Keyword})
	if err != nil {
		return reportError(formatter, err)
	}
	return outputResult(formatter, ws, res)
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <subject> <predicate>",
		Short: "Get the values of a predicate on a resource",
		Long: `Get the objects of (subject predicate ?o).

One value prints as a scalar, several as a collection, none as absent.

Examples:
  activegraph get ex:alice foaf:firstName
  activegraph get ex:alice foaf:knows --class Person`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], args[1], cmd)
		},
	}
	addOntologyFlag(cmd, opts)
	addClassFlag(cmd, opts)
	return cmd
}

func runGet(opts *QueryOptions, subjectArg, predicateArg string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ws, err := openWorkspace(opts.RootOptions, cmd, opts.Ontology)
	if err != nil {
		return reportError(formatter, err)
	}
	defer ws.Close()

	class, err := ws.class(opts.Class)
	if err != nil {
		return reportError(formatter, err)
	}
	subject, err := ws.session.Resource(subjectArg)
	if err != nil {
		return reportError(formatter, err)
	}
	predicate, err := ws.session.Resource(predicateArg)
	if err != nil {
		return reportError(formatter, err)
	}

	res, err := class.Get(ws.ctx, subject, predicate)
	if err != nil {
		return reportError(formatter, err)
	}
	return outputResult(formatter, ws, res)
}

// NewExistsCommand creates the exists command.
func NewExistsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exists <subject>",
		Short: "Report whether the store holds any statement about a resource",
		Long: `Report whether the store holds any statement about a resource.

With --class the resource must also carry that class.

Exit codes:
  0 - The resource exists
  1 - The resource does not exist
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExists(opts, args[0], cmd)
		},
	}
	addOntologyFlag(cmd, opts)
	addClassFlag(cmd, opts)
	return cmd
}

func runExists(opts *QueryOptions, subject string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ws, err := openWorkspace(opts.RootOptions, cmd, opts.Ontology)
	if err != nil {
		return reportError(formatter, err)
	}
	defer ws.Close()

	class, err := ws.class(opts.Class)
	if err != nil {
		return reportError(formatter, err)
	}
	ok, err := class.Exists(ws.ctx, subject)
	if err != nil {
		return reportError(formatter, err)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(map[string]bool{"exists": ok}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(formatter.Writer, ok)
	}
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("%s does not exist", subject))
	}
	return nil
}

// NewPredicatesCommand creates the predicates command.
func NewPredicatesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "predicates <class>",
		Short: "List the attribute names discovered for a class",
		Long: `List the attribute names discovered for a class.

A class's predicates are those whose rdfs:domain is the class, then
those inherited along rdfs:subClassOf, then those with domain owl:Thing.
An earlier source wins when two share a local name.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredicates(opts, args[0], cmd)
		},
	}
	addOntologyFlag(cmd, opts)
	return cmd
}

func runPredicates(opts *QueryOptions, className string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ws, err := openWorkspace(opts.RootOptions, cmd, opts.Ontology)
	if err != nil {
		return reportError(formatter, err)
	}
	defer ws.Close()

	class, err := ws.class(className)
	if err != nil {
		return reportError(formatter, err)
	}
	preds, err := class.Predicates(ws.ctx)
	if err != nil {
		return reportError(formatter, err)
	}

	out := PredicatesOutput{
		Class:      ws.namespaces.Compact(class.URI().URI()),
		Predicates: make(map[string]string, len(preds)),
	}
	for name, p := range preds {
		out.Predicates[name] = ws.namespaces.Compact(p.URI())
	}
	lines := make([]string, 0, len(preds))
	for _, name := range preds.Names() {
		lines = append(lines, name+"\t"+out.Predicates[name])
	}
	return formatter.List(lines, out)
}

// NewClassesCommand creates the classes command.
func NewClassesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List the class bindings of the store",
		Long: `List every class URI bound to a model type, in URI order.

Classes declared in loaded ontologies or stored as rdfs:Class are bound
by their local name. The untyped root is always bound to rdfs:Resource.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses(opts, cmd)
		},
	}
	addOntologyFlag(cmd, opts)
	return cmd
}

func runClasses(opts *QueryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ws, err := openWorkspace(opts.RootOptions, cmd, opts.Ontology)
	if err != nil {
		return reportError(formatter, err)
	}
	defer ws.Close()

	classes := ws.session.Classes()
	names := classes.Bindings()
	out := ClassesOutput{Classes: make(map[string]string, len(names))}
	lines := make([]string, 0, len(names))
	for _, uri := range classes.ClassURIs() {
		compact := ws.namespaces.Compact(uri)
		out.Classes[compact] = names[uri]
		lines = append(lines, compact+"\t"+names[uri])
	}
	return formatter.List(lines, out)
}

// NewIdentifyCommand creates the identify command.
func NewIdentifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "identify <uri>",
		Short: "Show the model type chosen for a resource",
		Long: `Show the model type chosen for a resource from its rdf:type
statements. Resources with no registered class are Identified.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(opts, args[0], cmd)
		},
	}
	addOntologyFlag(cmd, opts)
	return cmd
}

func runIdentify(opts *QueryOptions, uri string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ws, err := openWorkspace(opts.RootOptions, cmd, opts.Ontology)
	if err != nil {
		return reportError(formatter, err)
	}
	defer ws.Close()

	r, err := ws.session.Identify(ws.ctx, uri)
	if err != nil {
		return reportError(formatter, err)
	}
	out := IdentifyOutput{URI: ws.namespaces.Compact(r.URI()), Type: r.Type().Name()}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}
	fmt.Fprintf(formatter.Writer, "%s %s\n", out.URI, out.Type)
	return nil
}

// findArgs resolves the class argument and parses conditions.
func (ws *workspace) findArgs(className string, args []string) (*resource.Class, resource.Conditions, error) {
	class, err := ws.class(className)
	if err != nil {
		return nil, nil, err
	}
	conds := make(resource.Conditions, 0, len(args))
	for _, arg := range args {
		cond, err := ws.parseCondition(arg)
		if err != nil {
			return nil, nil, err
		}
		conds = append(conds, cond)
	}
	return class, conds, nil
}

// parseCondition parses attr or attr=value. A value written <name> is a
// resource, anything else a string literal.
func (ws *workspace) parseCondition(arg string) (resource.Condition, error) {
	attr, value, hasValue := strings.Cut(arg, "=")
	if attr == "" {
		return resource.Condition{}, fmt.Errorf("condition %q has no attribute", arg)
	}
	if !hasValue {
		return resource.Where(attr), nil
	}
	if strings.HasPrefix(value, "<") && strings.HasSuffix(value, ">") {
		r, err := ws.session.Resource(strings.TrimSuffix(strings.TrimPrefix(value, "<"), ">"))
		if err != nil {
			return resource.Condition{}, err
		}
		return resource.Where(attr, r), nil
	}
	return resource.Where(attr, value), nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// outputResult prints a folded result: one value per line in text
// format, sorted.
func outputResult(formatter *OutputFormatter, ws *workspace, res result.Result) error {
	out := QueryOutput{Kind: res.Kind().String(), Values: []string{}}
	switch {
	case res.IsAbsent():
		formatter.VerboseLog("no match")
	case res.Kind() == result.Scalar:
		if t, ok := res.Term(); ok {
			out.Values = append(out.Values, ws.compact(t))
		}
	default:
		for _, t := range res.Terms() {
			out.Values = append(out.Values, ws.compact(t))
		}
		sort.Strings(out.Values)
	}

	formatter.VerboseLog("%s result: %d row(s) binding %v", out.Kind, res.Len(), res.Vars())
	return formatter.List(out.Values, out)
}

// reportError prints err through the formatter and returns it with an
// exit code: load and configuration errors are command errors, query
// errors are failures.
func reportError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return WrapExitError(ExitCommandError, "failed to load ontology", err)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		_ = formatter.Error(ErrCodeGeneric, exitErr.Error(), nil)
		return err
	}

	code := ErrCodeQuery
	var details any
	if c := ir.CodeOf(err); c != "" {
		code = string(c)
		var irErr *ir.Error
		if errors.As(err, &irErr) && len(irErr.Path) > 0 {
			details = &QueryErrorDetails{Path: irErr.Path}
		}
	}
	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(ExitFailure, "query failed", err)
}
