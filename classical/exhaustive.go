package classical

import (
	"context"
	"math"
	"math/bits"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/crillab/goqubo/qubo"
	"github.com/crillab/goqubo/solver"
	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of assignments enumerated between two budget checks.
const chunkSize = 4096

// candidate is an assignment whose bit i is the value of variable i.
type candidate struct {
	energy float64
	code   uint64
}

// less orders candidates by energy, then lexicographically, variable 0 first.
func (c candidate) less(c2 candidate) bool {
	if math.Abs(c.energy-c2.energy) > qubo.Tolerance {
		return c.energy < c2.energy
	}
	diff := c.code ^ c2.code
	if diff == 0 {
		return false
	}
	return c.code&(diff&-diff) == 0
}

// topK keeps the k best candidates it is given, sorted.
type topK struct {
	k    int
	best []candidate
}

func (t *topK) add(c candidate) {
	if len(t.best) == t.k && !c.less(t.best[len(t.best)-1]) {
		return
	}
	i := sort.Search(len(t.best), func(i int) bool { return c.less(t.best[i]) })
	if len(t.best) < t.k {
		t.best = append(t.best, candidate{})
	}
	copy(t.best[i+1:], t.best[i:])
	t.best[i] = c
}

// bestEnergy is an energy shared by all workers, that can only decrease.
type bestEnergy struct {
	bits atomic.Uint64
}

func newBestEnergy() *bestEnergy {
	var b bestEnergy
	b.bits.Store(math.Float64bits(math.Inf(1)))
	return &b
}

func (b *bestEnergy) load() float64 {
	return math.Float64frombits(b.bits.Load())
}

// improve lowers the shared energy to e if e is lower. It returns the new shared energy.
func (b *bestEnergy) improve(e float64) float64 {
	for {
		old := b.bits.Load()
		if math.Float64frombits(old) <= e {
			return math.Float64frombits(old)
		}
		if b.bits.CompareAndSwap(old, math.Float64bits(e)) {
			return e
		}
	}
}

func decodeState(code uint64, n int) []bool {
	state := make([]bool, n)
	for i := range state {
		state[i] = code&(1<<i) != 0
	}
	return state
}

// exhaustive enumerates all assignments of m. The 2^n assignments are split into
// parts whose highest variables are fixed; each part is enumerated in Gray-code order.
func exhaustive(ctx context.Context, m *qubo.Model, cfg solver.Config) (*solver.Result, error) {
	n := m.NumVars
	fixed := bits.Len(uint(cfg.Workers*4)) - 1
	if fixed > n {
		fixed = n
	}
	free := n - fixed
	var (
		mu      sync.Mutex
		merged  = topK{k: cfg.Reads}
		best    = newBestEnergy()
		budget  = solver.NewIterationBudget(cfg.MaxIterations)
		stopped atomic.Bool
	)
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for part := uint64(0); part < 1<<fixed; part++ {
		part := part
		g.Go(func() error {
			if part > 0 && (ctx.Err() != nil || budget.Exhausted()) {
				stopped.Store(true)
				return nil
			}
			local, complete := enumerate(ctx, m, part<<free, free, cfg.Reads, best, budget)
			mu.Lock()
			defer mu.Unlock()
			for _, c := range local.best {
				merged.add(c)
			}
			if !complete {
				stopped.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()
	res := &solver.Result{
		Optimality: solver.Proven,
		Ignored:    ignored(cfg, true),
		Stats:      solver.Stats{Reads: 1, Iterations: budget.Used()},
	}
	if stopped.Load() {
		res.Optimality = solver.Heuristic
		res.Termination = solver.Budget
		if term, ok := solver.Stopped(ctx); ok {
			res.Termination = term
		}
	}
	for rank, c := range merged.best {
		res.Solutions = append(res.Solutions, m.Solution(decodeState(c.code, n), rank))
	}
	cfg.Logger.WithField("energy", best.load()).Debug("enumeration done")
	return res, nil
}

// enumerate goes through the 2^free assignments whose lowest free bits vary, the
// other ones being those of base. It returns the k best ones, and false if the
// enumeration was interrupted.
func enumerate(ctx context.Context, m *qubo.Model, base uint64, free, k int, best *bestEnergy, budget *solver.IterationBudget) (topK, bool) {
	top := topK{k: k}
	state := decodeState(base, m.NumVars)
	code := base
	energy := m.Energy(state)
	best.improve(energy)
	top.add(candidate{energy: energy, code: code})
	total := uint64(1) << free
	for i := uint64(1); i < total; i++ {
		if i%chunkSize == 0 {
			if ctx.Err() != nil || !budget.Spend(chunkSize) {
				return top, false
			}
		}
		v := bits.TrailingZeros64(i)
		energy += m.FlipDelta(state, v)
		state[v] = !state[v]
		code ^= 1 << v
		// When a single assignment is wanted, only the ones as good as the
		// best known one matter.
		if k == 1 && energy > best.load()+qubo.Tolerance {
			continue
		}
		if len(top.best) == k && energy > top.best[k-1].energy+qubo.Tolerance {
			continue
		}
		// Resynchronize to avoid accumulating rounding errors.
		energy = m.Energy(state)
		best.improve(energy)
		top.add(candidate{energy: energy, code: code})
	}
	budget.Spend(int64(total % chunkSize))
	return top, true
}
