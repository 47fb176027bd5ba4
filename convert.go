package main

import (
	"github.com/crillab/goqubo/compile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newConvertCmd(logger *logrus.Logger) *cobra.Command {
	var (
		configPath string
		ising      bool
	)
	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "Compiles or converts a model",
		Long: `Compiles or converts a model.
The format of OUTPUT is given by its extension: .json, .yaml, .yml or .qubo.
With --ising, the Ising form of the model is written, in JSON or YAML.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			in, err := readModel(args[0], compile.WithOptions(file.Compile), compile.WithLogger(logger))
			if err != nil {
				return err
			}
			if ising {
				return writeIsing(in.model.ToIsing(), args[1])
			}
			return writeModel(in.model, args[1])
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().BoolVar(&ising, "ising", false, "write the Ising form of the model")
	return cmd
}
