// Package anneal provides a simulated annealing QUBO solver.
//
// Each read is an independent Metropolis walk over the assignments of the model,
// flipping one variable at a time. The inverse temperature beta increases from
// Config.BetaMin to Config.BetaMax over Config.Sweeps sweeps, a sweep being one
// flip attempt per variable. Reads run concurrently; each one has its own
// random source, seeded with Config.Seed plus the read index, so that results
// do not depend on scheduling.
package anneal

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/crillab/goqubo/explain"
	"github.com/crillab/goqubo/qubo"
	"github.com/crillab/goqubo/solver"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const backendName = "anneal"

// Sampler is the simulated annealing backend. The zero value is ready to use.
type Sampler struct{}

// New returns a simulated annealing sampler.
func New() *Sampler {
	return &Sampler{}
}

var _ solver.Interface = (*Sampler)(nil)

// Solve implements solver.Interface.
func (s *Sampler) Solve(ctx context.Context, m *qubo.Model, cfg solver.Config) (*solver.Result, error) {
	return solver.Run(ctx, backendName, m, cfg, search)
}

// walker holds the state of a read.
type walker struct {
	m      *qubo.Model
	rng    *rand.Rand
	state  []bool
	field  []float64 // field[i] is the linear bias of i plus the weights of its set neighbors.
	energy float64
}

func newWalker(m *qubo.Model, rng *rand.Rand, state []bool) *walker {
	w := &walker{m: m, rng: rng, state: state, field: make([]float64, m.NumVars), energy: m.Energy(state)}
	for i := range w.field {
		w.field[i] = m.LocalField(state, i)
	}
	return w
}

func (w *walker) delta(i int) float64 {
	if w.state[i] {
		return -w.field[i]
	}
	return w.field[i]
}

func (w *walker) flip(i int, delta float64) {
	w.energy += delta
	w.state[i] = !w.state[i]
	sign := 1.0
	if !w.state[i] {
		sign = -1
	}
	for _, nb := range w.m.Neighbors(i) {
		w.field[nb.J] += sign * nb.W
	}
}

// sweep attempts to flip every variable once, in index order.
func (w *walker) sweep(beta float64) {
	for i := range w.state {
		d := w.delta(i)
		if d <= 0 || w.rng.Float64() < math.Exp(-beta*d) {
			w.flip(i, d)
		}
	}
}

// anneal runs one read and returns its best assignment, and false if a budget interrupted it.
func anneal(ctx context.Context, m *qubo.Model, cfg solver.Config, idx int, betas []float64, init []bool, budget *solver.IterationBudget) (*qubo.Solution, bool) {
	rng := rand.New(rand.NewSource(*cfg.Seed + int64(idx)))
	state := make([]bool, m.NumVars)
	switch {
	case init != nil:
		copy(state, init)
	case cfg.Initial != solver.Zero:
		for i := range state {
			state[i] = rng.Intn(2) == 1
		}
	}
	w := newWalker(m, rng, state)
	best := make([]bool, m.NumVars)
	copy(best, state)
	bestEnergy := w.energy
	complete := true
	nbSweeps := 0
	for _, beta := range betas {
		if ctx.Err() != nil || !budget.Spend(int64(m.NumVars)) {
			complete = false
			break
		}
		w.sweep(beta)
		nbSweeps++
		if w.energy < bestEnergy-qubo.Tolerance {
			copy(best, w.state)
			bestEnergy = w.energy
		}
	}
	sweepsTotal.Add(float64(nbSweeps))
	return m.Solution(best, idx), complete
}

// initialState returns the assignment every read starts from, or nil if reads
// start from their own random or zero assignment.
func initialState(m *qubo.Model, cfg solver.Config) []bool {
	if cfg.Initial != solver.Feasible {
		return nil
	}
	report, err := explain.Check(m)
	if err != nil || !report.Satisfiable {
		cfg.Logger.WithError(err).Warn("no feasible initial state, starting from random states")
		return nil
	}
	return report.State
}

func search(ctx context.Context, m *qubo.Model, cfg solver.Config) (*solver.Result, error) {
	betaMin, betaMax := betaRange(m, cfg)
	betas := Schedule(cfg.Schedule, betaMin, betaMax, cfg.Sweeps)
	cfg.Logger.WithFields(logrus.Fields{"beta_min": betaMin, "beta_max": betaMax, "max_degree": m.MaxDegree()}).Debug("annealing")
	init := initialState(m, cfg)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		sols        = make([]*qubo.Solution, cfg.Reads)
		budget      = solver.NewIterationBudget(cfg.MaxIterations)
		done        atomic.Int32
		interrupted atomic.Bool
		earlyStop   atomic.Bool
	)
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i := range sols {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil && done.Load() > 0 {
				interrupted.Store(true)
				return nil
			}
			sol, complete := anneal(ctx, m, cfg, i, betas, init, budget)
			sols[i] = sol
			done.Add(1)
			if !complete {
				interrupted.Store(true)
			}
			if cfg.EarlyStop && sol.Feasible() && earlyStop.CompareAndSwap(false, true) {
				cfg.Logger.WithField("read", i).Debug("feasible solution found, stopping")
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()
	res := &solver.Result{
		Optimality: solver.Heuristic,
		Stats:      solver.Stats{Iterations: budget.Used()},
	}
	if cfg.ExhaustiveLimit != solver.DefaultExhaustiveLimit {
		res.Ignored = append(res.Ignored, "exhaustive_limit")
	}
	for _, sol := range sols {
		if sol != nil {
			res.Solutions = append(res.Solutions, sol)
		}
	}
	res.Stats.Reads = len(res.Solutions)
	switch {
	case earlyStop.Load():
		res.Termination = solver.EarlyStop
	case interrupted.Load():
		res.Termination = solver.Budget
		if term, ok := solver.Stopped(ctx); ok {
			res.Termination = term
		}
	}
	return res, nil
}
