package anneal

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
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed int64) solver.Config {
	return solver.Config{Seed: &seed}
}

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

func minEnergy(m *qubo.Model) float64 {
	best := math.Inf(1)
	state := make([]bool, m.NumVars)
	for code := 0; code < 1<<m.NumVars; code++ {
		for i := range state {
			state[i] = code&(1<<i) != 0
		}
		best = math.Min(best, m.Energy(state))
	}
	return best
}

// exactlyOne returns a model whose objective is the number of set variables,
// all of them being constrained so that exactly one is set.
func exactlyOne(t *testing.T, n int) *qubo.Model {
	g := expr.New()
	var refs []expr.NodeID
	for i := 0; i < n; i++ {
		refs = append(refs, g.Ref(g.Binary(fmt.Sprintf("x%d", i))))
	}
	sum := g.Add(refs...)
	root := g.Add(sum, g.Constraint("one", expr.Equal{LHS: sum, RHS: g.Const(1)}, g.Const(10)))
	m, err := compile.Compile(g, root, nil)
	require.NoError(t, err)
	return m
}

func TestConvergence(t *testing.T) {
	m := &qubo.Model{NumVars: 1, Terms: []qubo.Term{{I: 0, J: 0, Coeff: -1}}}
	cfg := seeded(7)
	cfg.Reads = 100
	res, err := New().Solve(context.Background(), m, cfg)
	require.NoError(t, err)
	require.Len(t, res.Solutions, 100)
	nbOptimal := 0
	for _, sol := range res.Solutions {
		if math.Abs(sol.Energy+1) <= qubo.Tolerance {
			nbOptimal++
		}
	}
	assert.GreaterOrEqual(t, nbOptimal, 95)
	assert.Equal(t, solver.Heuristic, res.Optimality)
	assert.Equal(t, solver.Completed, res.Termination)
}

func TestExactlyOneScenario(t *testing.T) {
	m := exactlyOne(t, 2)
	res, err := New().Solve(context.Background(), m, seeded(1))
	require.NoError(t, err)
	best := res.Best()
	assert.InDelta(t, 1, best.Energy, qubo.Tolerance)
	assert.True(t, best.Feasible())
	assert.Equal(t, 1, best.Values["x0"].Number+best.Values["x1"].Number)
}

func TestIntegerScenario(t *testing.T) {
	g := expr.New()
	v := g.Integer("v", 0, 3)
	root := g.Pow(g.Sub(g.Ref(v), g.Const(2)), 2)
	m, err := compile.Compile(g, root, nil)
	require.NoError(t, err)
	res, err := New().Solve(context.Background(), m, seeded(2))
	require.NoError(t, err)
	best := res.Best()
	assert.InDelta(t, 0, best.Energy, qubo.Tolerance)
	assert.Equal(t, encode.Value{Number: 2, Valid: true}, best.Values["v"])
}

func TestRandomModels(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for k := 0; k < 5; k++ {
		m := randomModel(rng, 10)
		cfg := seeded(int64(k))
		cfg.Reads = 20
		cfg.Sweeps = 500
		res, err := New().Solve(context.Background(), m, cfg)
		require.NoError(t, err)
		assert.InDelta(t, minEnergy(m), res.Best().Energy, qubo.Tolerance, "model #%d", k)
		for _, sol := range res.Solutions {
			assert.InDelta(t, m.Energy(sol.State), sol.Energy, qubo.Tolerance)
		}
	}
}

func TestDeterminism(t *testing.T) {
	m := randomModel(rand.New(rand.NewSource(4)), 30)
	var states [][]bool
	for _, workers := range []int{1, 4} {
		cfg := seeded(42)
		cfg.Workers = workers
		cfg.Sweeps = 100
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

func TestSchedule(t *testing.T) {
	tests := []struct {
		kind     solver.Schedule
		min, max float64
		n        int
		expected []float64
	}{
		{solver.Geometric, 0.1, 10, 3, []float64{0.1, 1, 10}},
		{solver.Linear, 1, 3, 3, []float64{1, 2, 3}},
		{solver.Linear, 1, 3, 5, []float64{1, 1.5, 2, 2.5, 3}},
		{solver.Geometric, 1, 3, 1, []float64{3}},
		{solver.Geometric, 1, 3, 0, []float64{}},
	}
	for _, test := range tests {
		betas := Schedule(test.kind, test.min, test.max, test.n)
		require.Len(t, betas, len(test.expected))
		for i := range betas {
			assert.InDelta(t, test.expected[i], betas[i], 1e-12, "%s schedule, sweep %d", test.kind, i)
		}
	}
}

func TestBetaRange(t *testing.T) {
	m := &qubo.Model{NumVars: 2, Terms: []qubo.Term{{I: 0, J: 0, Coeff: 2}, {I: 0, J: 1, Coeff: -4}, {I: 1, J: 1, Coeff: 1}}}
	betaMin, betaMax := betaRange(m, solver.Config{})
	assert.InDelta(t, math.Ln2/6, betaMin, 1e-12)
	assert.InDelta(t, math.Log(100), betaMax, 1e-12)

	betaMin, betaMax = betaRange(m, solver.Config{BetaMin: 0.5})
	assert.Equal(t, 0.5, betaMin)
	assert.InDelta(t, math.Log(100), betaMax, 1e-12)

	betaMin, betaMax = betaRange(m, solver.Config{BetaMin: 10})
	assert.Equal(t, 10.0, betaMin)
	assert.Equal(t, 10.0, betaMax)

	betaMin, betaMax = betaRange(&qubo.Model{NumVars: 3}, solver.Config{})
	assert.InDelta(t, math.Ln2, betaMin, 1e-12)
	assert.InDelta(t, math.Log(100), betaMax, 1e-12)
}

func TestInitialFeasible(t *testing.T) {
	m := exactlyOne(t, 6)
	cfg := seeded(5)
	cfg.Initial = solver.Feasible
	cfg.Sweeps = 1
	cfg.BetaMin, cfg.BetaMax = 50, 50
	res, err := New().Solve(context.Background(), m, cfg)
	require.NoError(t, err)
	for _, sol := range res.Solutions {
		assert.True(t, sol.Feasible(), "read #%d", sol.Read)
		assert.InDelta(t, 1, sol.Energy, qubo.Tolerance)
	}

	// Unsatisfiable constraints: reads start from random states.
	g := expr.New()
	x := g.Ref(g.Binary("x"))
	root := g.Add(
		g.Constraint("set", expr.Equal{LHS: x, RHS: g.Const(1)}, g.Const(1)),
		g.Constraint("unset", expr.Equal{LHS: x, RHS: g.Const(0)}, g.Const(1)),
	)
	m, err = compile.Compile(g, root, nil)
	require.NoError(t, err)
	res, err = New().Solve(context.Background(), m, cfg)
	require.NoError(t, err)
	assert.False(t, res.Best().Feasible())
}

func TestEarlyStop(t *testing.T) {
	m := exactlyOne(t, 6)
	cfg := seeded(1)
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
	m := randomModel(rand.New(rand.NewSource(6)), 16)
	cfg := seeded(1)
	cfg.MaxIterations = 1
	res, err := New().Solve(context.Background(), m, cfg)
	require.NoError(t, err)
	assert.Equal(t, solver.Budget, res.Termination)
	assert.NotEmpty(t, res.Solutions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg = seeded(1)
	cfg.Workers = 1
	res, err = New().Solve(ctx, m, cfg)
	require.NoError(t, err)
	assert.Equal(t, solver.Cancelled, res.Termination)
	assert.NotEmpty(t, res.Solutions)
}

func TestSweepsMetric(t *testing.T) {
	m := randomModel(rand.New(rand.NewSource(8)), 5)
	cfg := seeded(1)
	cfg.Reads = 2
	cfg.Sweeps = 10
	cfg.Workers = 1
	before := testutil.ToFloat64(sweepsTotal)
	res, err := New().Solve(context.Background(), m, cfg)
	require.NoError(t, err)
	assert.Equal(t, 20.0, testutil.ToFloat64(sweepsTotal)-before)
	assert.Equal(t, int64(20*5), res.Stats.Iterations)
}

func TestIgnored(t *testing.T) {
	m := randomModel(rand.New(rand.NewSource(9)), 4)
	cfg := seeded(1)
	cfg.ExhaustiveLimit = 3
	res, err := New().Solve(context.Background(), m, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"exhaustive_limit"}, res.Ignored)
}
