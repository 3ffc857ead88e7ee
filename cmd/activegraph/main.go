// Command activegraph loads CUE ontologies into a triple store and
// queries it through class-scoped attribute names.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/activegraph/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
