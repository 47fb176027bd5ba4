package solver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/crillab/goqubo/qubo"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoVars() *qubo.Model {
	return &qubo.Model{NumVars: 2, Terms: []qubo.Term{{I: 0, J: 0, Coeff: -1}, {I: 0, J: 1, Coeff: 2}, {I: 1, J: 1, Coeff: -1}}}
}

// enumerate is a search returning every assignment of m, in binary order.
func enumerate(ctx context.Context, m *qubo.Model, cfg Config) (*Result, error) {
	var res Result
	for bits := 0; bits < 1<<m.NumVars; bits++ {
		state := make([]bool, m.NumVars)
		for i := range state {
			state[i] = bits&(1<<i) != 0
		}
		res.Solutions = append(res.Solutions, m.Solution(state, bits))
	}
	res.Stats.Reads = len(res.Solutions)
	res.Optimality = Proven
	return &res, nil
}

func TestRun(t *testing.T) {
	before := testutil.ToFloat64(runTotal.WithLabelValues("enumerate", string(Completed)))
	seed := int64(42)
	res, err := Run(context.Background(), "enumerate", twoVars(), Config{Seed: &seed}, enumerate)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.RunID)
	require.Len(t, res.Solutions, 4)
	// Both optima have energy -1, read 1 comes first.
	assert.Equal(t, -1.0, res.Best().Energy)
	assert.Equal(t, 1, res.Best().Read)
	assert.Equal(t, 2, res.Solutions[1].Read)
	assert.Equal(t, 0.0, res.Solutions[2].Energy)
	assert.Equal(t, Proven, res.Optimality)
	assert.Equal(t, Completed, res.Termination)
	assert.Equal(t, int64(42), *res.Config.Seed)
	assert.Equal(t, 10, res.Config.Reads)
	assert.Equal(t, Geometric, res.Config.Schedule)
	assert.Equal(t, before+1, testutil.ToFloat64(runTotal.WithLabelValues("enumerate", string(Completed))))
	assert.Len(t, res.Feasible(), 4)
}

func TestRunConstantModel(t *testing.T) {
	fail := func(ctx context.Context, m *qubo.Model, cfg Config) (*Result, error) {
		return nil, errors.New("searched a constant model")
	}
	res, err := Run(context.Background(), "constant", &qubo.Model{Offset: 3}, Config{}, fail)
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, 3.0, res.Best().Energy)
	assert.Empty(t, res.Best().State)
	assert.True(t, res.Best().Feasible())
	assert.Equal(t, Proven, res.Optimality)
	assert.Equal(t, Completed, res.Termination)
	assert.Equal(t, 1, res.Stats.Reads)
}

func TestRunErrors(t *testing.T) {
	_, err := Run(context.Background(), "enumerate", nil, Config{}, enumerate)
	assert.ErrorIs(t, err, ErrNilModel)

	_, err = Run(context.Background(), "enumerate", twoVars(), Config{Reads: -1}, enumerate)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)

	empty := func(ctx context.Context, m *qubo.Model, cfg Config) (*Result, error) { return &Result{}, nil }
	_, err = Run(context.Background(), "empty", twoVars(), Config{}, empty)
	assert.Error(t, err)

	bad := &qubo.Model{NumVars: 1, Terms: []qubo.Term{{I: 0, J: 3, Coeff: 1}}}
	_, err = Run(context.Background(), "enumerate", bad, Config{}, enumerate)
	assert.Error(t, err)
}

func TestRunTimeout(t *testing.T) {
	wait := func(ctx context.Context, m *qubo.Model, cfg Config) (*Result, error) {
		<-ctx.Done()
		term, ok := Stopped(ctx)
		require.True(t, ok)
		return &Result{Solutions: []*qubo.Solution{m.Solution(make([]bool, m.NumVars), 0)}, Termination: term}, nil
	}
	res, err := Run(context.Background(), "wait", twoVars(), Config{Timeout: 10 * time.Millisecond}, wait)
	require.NoError(t, err)
	assert.Equal(t, Budget, res.Termination)
	assert.Equal(t, Heuristic, res.Optimality)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err = Run(ctx, "wait", twoVars(), Config{}, wait)
	require.NoError(t, err)
	assert.Equal(t, Cancelled, res.Termination)
}

func TestStopped(t *testing.T) {
	_, ok := Stopped(context.Background())
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	valid := []Config{
		{},
		DefaultConfig(),
		{BetaMin: 0.1, BetaMax: 10, Schedule: Linear, Initial: Feasible},
	}
	for _, cfg := range valid {
		assert.NoError(t, cfg.Validate(), "%+v", cfg)
	}
	invalid := []Config{
		{Reads: -1},
		{Timeout: -time.Second},
		{Schedule: "exponential"},
		{Initial: "ones"},
		{ExhaustiveLimit: 64},
		{BetaMin: 2, BetaMax: 1},
	}
	for _, cfg := range invalid {
		err := cfg.Validate()
		var ce *ConfigError
		assert.ErrorAs(t, err, &ce, "%+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("reads: 5\nsweeps: 200\ntimeout: 1m30s\nseed: 7\nschedule: linear\nearly_stop: true\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Reads)
	assert.Equal(t, 200, cfg.Sweeps)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(7), *cfg.Seed)
	assert.Equal(t, Linear, cfg.Schedule)
	assert.True(t, cfg.EarlyStop)

	cfg, err = LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Reads)

	_, err = LoadConfig(strings.NewReader("reads: -2\n"))
	assert.Error(t, err)
	_, err = LoadConfig(strings.NewReader("unknown: 1\n"))
	assert.Error(t, err)
}

func TestWithDefaults(t *testing.T) {
	cfg := Config{Reads: 3}.WithDefaults()
	assert.Equal(t, 3, cfg.Reads)
	assert.Equal(t, 1000, cfg.Sweeps)
	assert.NotNil(t, cfg.Seed)
	assert.NotNil(t, cfg.Logger)
	assert.Equal(t, DefaultExhaustiveLimit, cfg.ExhaustiveLimit)
	assert.Positive(t, cfg.Workers)
}

func TestIterationBudget(t *testing.T) {
	b := NewIterationBudget(10)
	assert.True(t, b.Spend(6))
	assert.False(t, b.Exhausted())
	assert.False(t, b.Spend(6))
	assert.True(t, b.Exhausted())
	assert.Equal(t, int64(12), b.Used())

	unlimited := NewIterationBudget(0)
	assert.True(t, unlimited.Spend(1<<40))
	assert.False(t, unlimited.Exhausted())
}

func TestSortSolutions(t *testing.T) {
	sols := []*qubo.Solution{
		{Energy: 1, Read: 0, State: []bool{false}},
		{Energy: 0.5, Read: 3, State: []bool{true}},
		{Energy: 0.5 + 1e-12, Read: 2, State: []bool{true}},
		{Energy: 0.5, Read: 2, State: []bool{false}},
	}
	SortSolutions(sols)
	assert.Equal(t, 2, sols[0].Read)
	assert.Equal(t, []bool{false}, sols[0].State)
	assert.Equal(t, 2, sols[1].Read)
	assert.Equal(t, 3, sols[2].Read)
	assert.Equal(t, 1.0, sols[3].Energy)
}
