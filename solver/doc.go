/*
Package solver defines the contract every QUBO search backend satisfies, and
the plumbing they share.

A backend implements Interface:

    type Interface interface {
        Solve(ctx context.Context, m *qubo.Model, cfg Config) (*Result, error)
    }

It is given a compiled model, which it must not modify, and a Config.
Options a backend cannot honor are ignored rather than rejected: they are
listed in Result.Ignored, and Result.Config echoes the effective configuration.
A model without variables never reaches a backend: Run returns its empty
state as the only solution, with a proven optimality.

Budgets

A run stops when its context is cancelled, when Config.Timeout expires or when
Config.MaxIterations is reached. This is not an error: the best solutions found
so far are returned, and Result.Termination says why the run stopped.

Writing a backend

Backends usually delegate to Run, which validates the configuration, fills its
defaults, applies the timeout, logs, records metrics and sorts the solutions:

    func (b *Backend) Solve(ctx context.Context, m *qubo.Model, cfg solver.Config) (*solver.Result, error) {
        return solver.Run(ctx, "mybackend", m, cfg, b.search)
    }

Solutions are sorted by increasing energy, ties being broken by read index, so
that runs with the same seed yield the same sequence.
*/
package solver
