package classical

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/crillab/goqubo/compile"
	"github.com/crillab/goqubo/encode"
	"github.com/crillab/goqubo/expr"
	"github.com/crillab/goqubo/qubo"
	"github.com/crillab/goqubo/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomModel(rng *rand.Rand, n int) *qubo.Model {
	var terms []qubo.Term
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if rng.Intn(3) == 0 {
				terms = append(terms, qubo.Term{I: i, J: j, Coeff: float64(rng.Intn(21) - 10)})
			}
		}
	}
	return &qubo.Model{NumVars: n, Terms: qubo.Canonicalize(terms)}
}

// bruteForce returns the minimal energy of m and the lexicographically smallest optimal state.
func bruteForce(m *qubo.Model) (float64, []bool) {
	best := math.Inf(1)
	var bestState []bool
	for code := uint64(0); code < 1<<m.NumVars; code++ {
		state := decodeState(code, m.NumVars)
		e := m.Energy(state)
		switch {
		case e < best-qubo.Tolerance:
			best, bestState = e, state
		case math.Abs(e-best) <= qubo.Tolerance && qubo.LexLess(state, bestState):
			bestState = state
		}
	}
	return best, bestState
}

func seeded(seed int64) solver.Config {
	return solver.Config{Seed: &seed}
}

func TestExhaustiveOptimality(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 1; n <= 10; n++ {
		m := randomModel(rng, n)
		energy, state := bruteForce(m)
		res, err := New().Solve(context.Background(), m, solver.Config{Reads: 1})
		require.NoError(t, err)
		assert.Equal(t, solver.Proven, res.Optimality, "n=%d", n)
		assert.Equal(t, solver.Completed, res.Termination)
		assert.InDelta(t, energy, res.Best().Energy, qubo.Tolerance, "n=%d", n)
		assert.Equal(t, state, res.Best().State, "n=%d", n)
	}
}

func TestExhaustiveTopK(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	m := randomModel(rng, 8)
	res, err := New().Solve(context.Background(), m, solver.Config{Reads: 5, Workers: 3})
	require.NoError(t, err)
	require.Len(t, res.Solutions, 5)
	var energies []float64
	for code := uint64(0); code < 1<<8; code++ {
		energies = append(energies, m.Energy(decodeState(code, 8)))
	}
	for i, sol := range res.Solutions {
		nbBetter := 0
		for _, e := range energies {
			if e < sol.Energy-qubo.Tolerance {
				nbBetter++
			}
		}
		assert.LessOrEqual(t, nbBetter, i, "solution #%d is not among the best ones", i)
		if i > 0 {
			assert.False(t, solver.Less(sol, res.Solutions[i-1]))
		}
	}
	assert.Contains(t, res.Ignored, "sweeps")
}

func TestExactlyOneScenario(t *testing.T) {
	g := expr.New()
	x, y := g.Ref(g.Binary("x")), g.Ref(g.Binary("y"))
	sum := g.Add(x, y)
	root := g.Add(sum, g.Constraint("one", expr.Equal{LHS: sum, RHS: g.Const(1)}, g.Const(10)))
	m, err := compile.Compile(g, root, nil)
	require.NoError(t, err)
	res, err := New().Solve(context.Background(), m, solver.Config{Reads: 4})
	require.NoError(t, err)
	require.Len(t, res.Solutions, 4)
	for _, sol := range res.Solutions[:2] {
		assert.Equal(t, 1.0, sol.Energy)
		assert.True(t, sol.Constraints["one"])
	}
	assert.Equal(t, encode.Value{Number: 0, Valid: true}, res.Best().Values["x"])
	assert.Equal(t, encode.Value{Number: 1, Valid: true}, res.Best().Values["y"])
	last := res.Solutions[3]
	assert.Equal(t, []bool{true, true}, last.State)
	assert.Equal(t, 12.0, last.Energy)
	assert.False(t, last.Constraints["one"])
}

func TestIntegerScenario(t *testing.T) {
	g := expr.New()
	v := g.Integer("v", 0, 3)
	root := g.Pow(g.Sub(g.Ref(v), g.Const(2)), 2)
	m, err := compile.Compile(g, root, nil)
	require.NoError(t, err)
	res, err := New().Solve(context.Background(), m, solver.Config{})
	require.NoError(t, err)
	best := res.Best()
	assert.InDelta(t, 0, best.Energy, qubo.Tolerance)
	assert.Equal(t, 2, best.Values["v"].Number)
	assert.True(t, best.Constraints["onehot(v)"])
}

func TestDescent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for k := 0; k < 5; k++ {
		m := randomModel(rng, 12)
		energy, _ := bruteForce(m)
		cfg := seeded(int64(k))
		cfg.ExhaustiveLimit = 4
		cfg.Reads = 20
		cfg.Sweeps = 200
		res, err := New().Solve(context.Background(), m, cfg)
		require.NoError(t, err)
		assert.Equal(t, solver.Heuristic, res.Optimality)
		assert.Equal(t, solver.Completed, res.Termination)
		assert.Len(t, res.Solutions, 20)
		assert.InDelta(t, energy, res.Best().Energy, qubo.Tolerance, "model #%d", k)
	}
}

func TestDescentDeterminism(t *testing.T) {
	m := randomModel(rand.New(rand.NewSource(4)), 25)
	var states [][]bool
	for _, workers := range []int{1, 4} {
		cfg := seeded(42)
		cfg.Workers = workers
		cfg.Sweeps = 50
		res, err := New().Solve(context.Background(), m, cfg)
		require.NoError(t, err)
		var all []bool
		for _, sol := range res.Solutions {
			all = append(all, sol.State...)
		}
		states = append(states, all)
	}
	assert.Equal(t, states[0], states[1])
}

func TestDescentEarlyStop(t *testing.T) {
	g := expr.New()
	var refs []expr.NodeID
	for i := 0; i < 6; i++ {
		refs = append(refs, g.Ref(g.Binary(fmt.Sprintf("x%d", i))))
	}
	sum := g.Add(refs...)
	root := g.Add(sum, g.Constraint("one", expr.Equal{LHS: sum, RHS: g.Const(1)}, g.Const(10)))
	m, err := compile.Compile(g, root, nil)
	require.NoError(t, err)
	cfg := seeded(1)
	cfg.ExhaustiveLimit = 1
	cfg.Reads = 50
	cfg.Workers = 1
	cfg.EarlyStop = true
	res, err := New().Solve(context.Background(), m, cfg)
	require.NoError(t, err)
	assert.Equal(t, solver.EarlyStop, res.Termination)
	assert.Less(t, res.Stats.Reads, 50)
	assert.True(t, res.Best().Feasible())
}

func TestBudget(t *testing.T) {
	m := randomModel(rand.New(rand.NewSource(5)), 16)
	res, err := New().Solve(context.Background(), m, solver.Config{MaxIterations: 1, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, solver.Budget, res.Termination)
	assert.Equal(t, solver.Heuristic, res.Optimality)
	assert.NotEmpty(t, res.Solutions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err = New().Solve(ctx, m, solver.Config{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, solver.Cancelled, res.Termination)
	assert.NotEmpty(t, res.Solutions)

	cfg := seeded(1)
	cfg.ExhaustiveLimit = 4
	cfg.MaxIterations = 1
	res, err = New().Solve(context.Background(), m, cfg)
	require.NoError(t, err)
	assert.Equal(t, solver.Budget, res.Termination)
}

func TestQueue(t *testing.T) {
	gain := []float64{1, 5, 3, 5}
	q := newQueue(gain)
	assert.Equal(t, 1, q.top())
	gain[1] = 0
	q.update(1)
	assert.Equal(t, 3, q.top())
	gain[0] = 10
	q.update(0)
	assert.Equal(t, 0, q.top())
}

func TestCandidateOrder(t *testing.T) {
	// 0b01 is x0=1, x1=0; 0b10 is x0=0, x1=1, which is lexicographically smaller.
	c1 := candidate{energy: 1, code: 0b01}
	c2 := candidate{energy: 1, code: 0b10}
	assert.True(t, c2.less(c1))
	assert.False(t, c1.less(c2))
	assert.False(t, c1.less(c1))
	assert.True(t, candidate{energy: 0, code: 0b11}.less(c2))
}
