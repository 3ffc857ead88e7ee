package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/activegraph/internal/compiler"
	"github.com/roach88/activegraph/internal/identity"
	"github.com/roach88/activegraph/internal/namespace"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate ontologies without loading them",
		Long: `Validate CUE ontology files without touching the store.

Checks CUE syntax, required fields, prefixes, URIs and attribute name
clashes, then reports subClassOf cycles as warnings. Cycles are legal
RDFS but make attribute discovery fail or stop early.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loadResult, err := LoadOntology(paths...)
	if err != nil {
		var loadErr *LoadError
		if !errors.As(err, &loadErr) {
			return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		// A file that does not compile is a validation failure; a missing
		// path is a command error.
		if !loadErr.Pos.IsValid() {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidationErrors(formatter, []compiler.ValidationError{{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    loadErr.Pos.Line(),
		}})
	}

	formatter.VerboseLog("Found %d CUE file(s)", loadResult.FileCount)

	onto := loadResult.Ontology
	if errs := compiler.Validate(onto); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	warnings, err := hierarchyWarnings(onto)
	if err != nil {
		return outputValidationErrors(formatter, []compiler.ValidationError{{
			Field:   "emit",
			Message: err.Error(),
			Code:    ErrCodeBadValue,
		}})
	}
	for _, w := range warnings {
		formatter.VerboseLog("%s: %s", w.Level, w.Message)
	}

	return outputValidateSuccess(formatter, onto, warnings)
}

// hierarchyWarnings emits the ontology in isolation and analyzes its
// subClassOf statements.
func hierarchyWarnings(onto *compiler.Ontology) ([]compiler.CycleWarning, error) {
	triples, err := compiler.NewEmitter(namespace.New(), identity.New(), nil).Triples(onto)
	if err != nil {
		return nil, err
	}
	return compiler.AnalyzeHierarchy(triples), nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, onto *compiler.Ontology, warnings []compiler.CycleWarning) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true, Warnings: warnings}
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Ontology valid (%d classes, %d properties, %d resources)\n",
		len(onto.Classes), len(onto.Properties), len(onto.Resources))
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", w.Level, w.Message)
	}
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Validation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Errors: errs,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
