// Package classical provides a deterministic QUBO solver.
//
// Models with at most Config.ExhaustiveLimit variables are solved by
// enumerating all assignments in Gray-code order, which proves optimality.
// Larger models are solved by a steepest descent with random restarts and
// perturbations whose sizes follow the Luby sequence.
package classical

import (
	"context"

	"github.com/crillab/goqubo/qubo"
	"github.com/crillab/goqubo/solver"
)

const backendName = "classical"

// Solver is the classical backend. The zero value is ready to use.
type Solver struct{}

// New returns a classical solver.
func New() *Solver {
	return &Solver{}
}

var _ solver.Interface = (*Solver)(nil)

// Solve implements solver.Interface.
func (s *Solver) Solve(ctx context.Context, m *qubo.Model, cfg solver.Config) (*solver.Result, error) {
	return solver.Run(ctx, backendName, m, cfg, search)
}

func search(ctx context.Context, m *qubo.Model, cfg solver.Config) (*solver.Result, error) {
	if m.NumVars <= cfg.ExhaustiveLimit {
		cfg.Logger.WithField("variables", m.NumVars).Debug("exhaustive search")
		return exhaustive(ctx, m, cfg)
	}
	cfg.Logger.WithField("variables", m.NumVars).Debug("local search")
	return descent(ctx, m, cfg)
}

// ignored lists the options set in cfg that have no effect on the search.
func ignored(cfg solver.Config, exhaustive bool) []string {
	var res []string
	if cfg.BetaMin != 0 || cfg.BetaMax != 0 {
		res = append(res, "beta_min", "beta_max")
	}
	if cfg.Schedule != solver.Geometric {
		res = append(res, "schedule")
	}
	if exhaustive {
		if cfg.EarlyStop {
			res = append(res, "early_stop")
		}
		if cfg.Initial != solver.Random {
			res = append(res, "initial")
		}
		res = append(res, "seed", "sweeps")
	} else if cfg.Initial == solver.Feasible {
		res = append(res, "initial")
	}
	return res
}
