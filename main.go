// Command goqubo compiles, checks and solves QUBO models.
//
// Inputs are recognized by their extension: compiled models in JSON (.json),
// YAML (.yaml, .yml) or qbsolv (.qubo) format, weighted MAXSAT problems in
// DIMACS WCNF format (.wcnf), and boolean formulas (.bf).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	verbose bool
}

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	o := globalOptions{}
	cmd := &cobra.Command{
		Use:          "goqubo",
		Short:        "Compiles, checks and solves QUBO models",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if o.verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "use debug log level")
	cmd.AddCommand(newSolveCmd(logger), newCheckCmd(logger), newConvertCmd(logger))
	return cmd
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := newRootCmd(logger).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "goqubo: %v\n", err)
		os.Exit(1)
	}
}
