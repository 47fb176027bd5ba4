package main

import (
	"fmt"
	"strings"

	"github.com/crillab/goqubo/compile"
	"github.com/crillab/goqubo/explain"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newCheckCmd(logger *logrus.Logger) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Checks whether the constraints of a model can hold together",
		Long: `Checks whether the constraints of a model can hold together.
When they cannot, a minimal set of conflicting constraints is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			in, err := readModel(args[0], compile.WithOptions(file.Compile), compile.WithLogger(logger))
			if err != nil {
				return err
			}
			report, err := explain.Check(in.model)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, label := range report.Skipped {
				logger.WithField("constraint", label).Warn("constraint too large to be checked")
			}
			if !report.Satisfiable {
				fmt.Fprintln(out, "UNSATISFIABLE")
				fmt.Fprintf(out, "conflict: %s\n", strings.Join(report.Conflict, ", "))
				return nil
			}
			fmt.Fprintln(out, "SATISFIABLE")
			sol := in.model.Solution(report.State, 0)
			fmt.Fprintln(out, sol)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	return cmd
}
