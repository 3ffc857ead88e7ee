package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/activegraph/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Metrics bool   // dump query metrics to stderr after the command

	viper  *viper.Viper
	config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config returns the resolved configuration. Commands built without the
// root command (as in tests) get flag defaults, environment and any
// ./activegraph config file.
func (o *RootOptions) Config() (*config.Config, error) {
	if o.config != nil {
		return o.config, nil
	}
	vcfg := o.viper
	if vcfg == nil {
		vcfg = config.Init(pflag.NewFlagSet("defaults", pflag.ContinueOnError))
	}
	cfg, err := config.Load(vcfg)
	if err != nil {
		return nil, err
	}
	o.config = cfg
	return cfg, nil
}

// NewRootCommand creates the root command for the activegraph CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "activegraph",
		Short: "activegraph - object access to RDF graphs",
		Long: `Map model types to RDF classes and query a triple store through them.

Ontologies are CUE files declaring prefixes, classes, properties and
resources. Attribute names resolve to predicates through rdfs:domain,
inherited along rdfs:subClassOf.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := opts.Config(); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "print query metrics to stderr")
	opts.viper = config.Init(cmd.PersistentFlags())

	// Add subcommands
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewExistsCommand(opts))
	cmd.AddCommand(NewPredicatesCommand(opts))
	cmd.AddCommand(NewClassesCommand(opts))
	cmd.AddCommand(NewIdentifyCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
