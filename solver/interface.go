package solver

import (
	"context"

	"github.com/crillab/goqubo/qubo"
	"github.com/google/uuid"
)

// Interface is any type implementing a QUBO solver.
// The classical and anneal packages provide implementations; an adapter
// to an external annealer only needs to implement it, too.
type Interface interface {
	// Solve searches for low energy assignments of m.
	// On success, the returned Result holds at least one solution.
	// An expired budget is not an error.
	Solve(ctx context.Context, m *qubo.Model, cfg Config) (*Result, error)
}

// Stats are figures about a solver run.
type Stats struct {
	Duration   float64 `json:"duration_seconds" yaml:"duration_seconds"`
	Reads      int     `json:"reads" yaml:"reads"`
	Iterations int64   `json:"iterations" yaml:"iterations"`
}

// A Result is the outcome of a solver run.
type Result struct {
	RunID uuid.UUID `json:"run_id" yaml:"run_id"`
	// Solutions are sorted by increasing energy, then by read index.
	Solutions   []*qubo.Solution `json:"solutions" yaml:"solutions"`
	Optimality  Optimality       `json:"optimality" yaml:"optimality"`
	Termination Termination      `json:"termination" yaml:"termination"`
	// Config is the effective configuration of the run.
	Config Config `json:"config" yaml:"config"`
	// Ignored lists the options the backend did not honor.
	Ignored []string `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	Stats   Stats    `json:"stats" yaml:"stats"`
}

// Best returns the best solution of r.
func (r *Result) Best() *qubo.Solution {
	return r.Solutions[0]
}

// Feasible returns the feasible solutions of r, best first.
func (r *Result) Feasible() []*qubo.Solution {
	var res []*qubo.Solution
	for _, s := range r.Solutions {
		if s.Feasible() {
			res = append(res, s)
		}
	}
	return res
}
