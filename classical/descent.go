package classical

import (
	"context"
	"math/rand"
	"sync/atomic"

	"github.com/crillab/goqubo/qubo"
	"github.com/crillab/goqubo/solver"
	"golang.org/x/sync/errgroup"
)

// A descender performs steepest descents over the assignments of a model.
type descender struct {
	m      *qubo.Model
	state  []bool
	energy float64
	gain   []float64 // gain[i] is the energy decrease obtained by flipping i.
	q      queue
}

func newDescender(m *qubo.Model, state []bool) *descender {
	d := &descender{
		m:      m,
		state:  state,
		energy: m.Energy(state),
		gain:   make([]float64, m.NumVars),
	}
	for i := range d.gain {
		d.gain[i] = -m.FlipDelta(state, i)
	}
	d.q = newQueue(d.gain)
	return d
}

func (d *descender) flip(i int) {
	d.energy -= d.gain[i]
	d.state[i] = !d.state[i]
	d.gain[i] = -d.gain[i]
	d.q.update(i)
	for _, nb := range d.m.Neighbors(i) {
		d.gain[nb.J] = -d.m.FlipDelta(d.state, nb.J)
		d.q.update(nb.J)
	}
}

// descend flips the best variable until no flip decreases the energy.
// It returns the number of flips.
func (d *descender) descend() int {
	nb := 0
	for !d.q.empty() && d.gain[d.q.top()] > qubo.Tolerance {
		d.flip(d.q.top())
		nb++
	}
	return nb
}

// moveTo flips the variables whose value differ in state.
func (d *descender) moveTo(state []bool) {
	for i, v := range state {
		if d.state[i] != v {
			d.flip(i)
		}
	}
}

func initialState(rng *rand.Rand, n int, init solver.Initial) []bool {
	state := make([]bool, n)
	if init == solver.Zero {
		return state
	}
	for i := range state {
		state[i] = rng.Intn(2) == 1
	}
	return state
}

// read runs an iterated local search: a first descent, then cfg.Sweeps rounds
// that perturb the best assignment with a Luby-sized random move and descend again.
// It returns the best solution found and false if a budget interrupted it.
func read(ctx context.Context, m *qubo.Model, cfg solver.Config, idx int, budget *solver.IterationBudget) (*qubo.Solution, bool) {
	rng := rand.New(rand.NewSource(*cfg.Seed + int64(idx)))
	n := m.NumVars
	d := newDescender(m, initialState(rng, n, cfg.Initial))
	flips := d.descend()
	best := make([]bool, n)
	copy(best, d.state)
	bestEnergy := d.energy
	complete := true
	for round := 1; round <= cfg.Sweeps; round++ {
		if ctx.Err() != nil || !budget.Spend(int64(flips)) {
			complete = false
			break
		}
		d.moveTo(best)
		size := int(luby(uint(round)))
		if size > n {
			size = n
		}
		for i := 0; i < size; i++ {
			d.flip(rng.Intn(n))
		}
		flips = size + d.descend()
		if d.energy < bestEnergy-qubo.Tolerance {
			copy(best, d.state)
			bestEnergy = d.energy
		}
	}
	return m.Solution(best, idx), complete
}

// descent runs cfg.Reads independent local searches.
func descent(ctx context.Context, m *qubo.Model, cfg solver.Config) (*solver.Result, error) {
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
			sol, complete := read(ctx, m, cfg, i, budget)
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
		Ignored:    ignored(cfg, false),
		Stats:      solver.Stats{Iterations: budget.Used()},
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
