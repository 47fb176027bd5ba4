package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/crillab/goqubo/anneal"
	"github.com/crillab/goqubo/classical"
	"github.com/crillab/goqubo/compile"
	"github.com/crillab/goqubo/solver"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type solveOptions struct {
	backend    string
	configPath string
	output     string
	reads      int
	sweeps     int
	seed       int64
	timeout    time.Duration
	workers    int
	maxIter    int64
	earlyStop  bool
	initial    string
	schedule   string
}

func newBackend(name string) (solver.Interface, error) {
	switch name {
	case "classical":
		return classical.New(), nil
	case "anneal":
		return anneal.New(), nil
	default:
		return nil, errors.Errorf("unknown backend %q", name)
	}
}

// solverConfig returns the configuration of the file, overridden by the flags set on cmd.
func (o *solveOptions) solverConfig(cmd *cobra.Command, file solver.Config) solver.Config {
	cfg := file
	flags := cmd.Flags()
	if flags.Changed("reads") {
		cfg.Reads = o.reads
	}
	if flags.Changed("sweeps") {
		cfg.Sweeps = o.sweeps
	}
	if flags.Changed("seed") {
		seed := o.seed
		cfg.Seed = &seed
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = o.maxIter
	}
	if flags.Changed("early-stop") {
		cfg.EarlyStop = o.earlyStop
	}
	if flags.Changed("initial") {
		cfg.Initial = solver.Initial(o.initial)
	}
	if flags.Changed("schedule") {
		cfg.Schedule = solver.Schedule(o.schedule)
	}
	return cfg
}

func newSolveCmd(logger *logrus.Logger) *cobra.Command {
	o := solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Solves a model, a WCNF problem or a boolean formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadConfig(o.configPath)
			if err != nil {
				return err
			}
			cfg := o.solverConfig(cmd, file.Config)
			if err := cfg.Validate(); err != nil {
				return err
			}
			cfg.Logger = logger
			backend, err := newBackend(o.backend)
			if err != nil {
				return err
			}
			in, err := readModel(args[0], compile.WithOptions(file.Compile), compile.WithLogger(logger))
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"file": args[0], "variables": in.model.NumVars, "terms": len(in.model.Terms)}).Debug("model loaded")
			out := cmd.OutOrStdout()
			if in.problem != nil {
				model, cost, err := in.problem.SolveWith(cmd.Context(), backend, cfg)
				if err != nil {
					return err
				}
				if model == nil {
					fmt.Fprintln(out, "UNKNOWN")
					return nil
				}
				fmt.Fprintf(out, "o %d\n", cost)
				printBindings(out, model)
				return nil
			}
			res, err := backend.Solve(cmd.Context(), in.model, cfg)
			if err != nil {
				return err
			}
			if in.formula != nil {
				printFormulaResult(out, res)
				return nil
			}
			return printResult(out, res, o.output)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&o.backend, "backend", "b", "classical", "solver backend: classical or anneal")
	flags.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVarP(&o.output, "output", "o", "yaml", "output format: yaml or json")
	flags.IntVar(&o.reads, "reads", 0, "number of reads")
	flags.IntVar(&o.sweeps, "sweeps", 0, "number of sweeps per read")
	flags.Int64Var(&o.seed, "seed", 0, "random seed")
	flags.DurationVar(&o.timeout, "timeout", 0, "time limit, 0 for none")
	flags.IntVar(&o.workers, "workers", 0, "number of concurrent workers, 0 for one per CPU")
	flags.Int64Var(&o.maxIter, "max-iterations", 0, "iteration limit, 0 for none")
	flags.BoolVar(&o.earlyStop, "early-stop", false, "stop as soon as a feasible solution is found")
	flags.StringVar(&o.initial, "initial", "", "initial states of the annealer: random, zero or feasible")
	flags.StringVar(&o.schedule, "schedule", "", "annealing schedule: geometric or linear")
	return cmd
}

func printBindings(w io.Writer, model map[string]bool) {
	keys := make(sort.StringSlice, 0, len(model))
	for k := range model {
		keys = append(keys, k)
	}
	sort.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: %t\n", k, model[k])
	}
}

func printFormulaResult(w io.Writer, res *solver.Result) {
	best := res.Best()
	switch {
	case best.Feasible():
		fmt.Fprintln(w, "SATISFIABLE")
		model := make(map[string]bool, len(best.Values))
		for name, v := range best.Values {
			model[name] = v.Number == 1
		}
		printBindings(w, model)
	case res.Optimality == solver.Proven:
		fmt.Fprintln(w, "UNSATISFIABLE")
	default:
		fmt.Fprintln(w, "UNKNOWN")
	}
}

func printResult(w io.Writer, res *solver.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(res), "could not write result")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, "could not write result")
		}
		return errors.Wrap(enc.Close(), "could not write result")
	default:
		return errors.Errorf("unknown output format %q", format)
	}
}
