package solver

import (
	"context"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/crillab/goqubo/qubo"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrNilModel is returned when no model is given.
var ErrNilModel = errors.New("nil model")

// A Search explores the assignments of m. It returns a partial Result:
// Solutions, Optimality, Termination, Ignored and Stats.Iterations.
// cfg has no zero value left but MaxIterations and Timeout.
type Search func(ctx context.Context, m *qubo.Model, cfg Config) (*Result, error)

// Run validates cfg, fills its defaults, then calls search within the
// time budget of cfg. It completes and sorts the result of search.
// A model without variables is not searched: its only solution, the empty
// state, is returned as proven optimal.
func Run(ctx context.Context, backend string, m *qubo.Model, cfg Config, search Search) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNilModel
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	cfg = cfg.WithDefaults()
	id := uuid.New()
	log := cfg.Logger.WithFields(logrus.Fields{"run": id.String(), "backend": backend})
	cfg.Logger = log
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	log.WithFields(logrus.Fields{"variables": m.NumVars, "terms": len(m.Terms), "seed": *cfg.Seed}).Debug("solver run started")
	start := time.Now()
	var (
		res *Result
		err error
	)
	if m.NumVars == 0 {
		res = constantResult(m)
	} else {
		res, err = search(ctx, m, cfg)
	}
	elapsed := time.Since(start)
	runDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
	if err != nil {
		runTotal.WithLabelValues(backend, "error").Inc()
		return nil, errors.Wrapf(err, "%s solver failed", backend)
	}
	if len(res.Solutions) == 0 {
		runTotal.WithLabelValues(backend, "error").Inc()
		return nil, errors.Errorf("%s solver returned no solution", backend)
	}
	SortSolutions(res.Solutions)
	res.RunID = id
	res.Config = cfg
	res.Stats.Duration = elapsed.Seconds()
	if res.Termination == "" {
		res.Termination = Completed
	}
	if res.Optimality == "" {
		res.Optimality = Heuristic
	}
	runTotal.WithLabelValues(backend, string(res.Termination)).Inc()
	readsTotal.WithLabelValues(backend).Add(float64(res.Stats.Reads))
	best := res.Best()
	log.WithFields(logrus.Fields{
		"energy":      best.Energy,
		"feasible":    best.Feasible(),
		"optimality":  res.Optimality,
		"termination": res.Termination,
		"duration":    elapsed,
	}).Info("solver run finished")
	for _, opt := range res.Ignored {
		log.WithField("option", opt).Debug("option ignored")
	}
	return res, nil
}

func constantResult(m *qubo.Model) *Result {
	return &Result{
		Solutions:  []*qubo.Solution{m.Solution(nil, 0)},
		Optimality: Proven,
		Stats:      Stats{Reads: 1},
	}
}

// Less is the order of solutions in results: increasing energy,
// then increasing read index, then lexicographic bit pattern.
func Less(s1, s2 *qubo.Solution) bool {
	if math.Abs(s1.Energy-s2.Energy) > qubo.Tolerance {
		return s1.Energy < s2.Energy
	}
	if s1.Read != s2.Read {
		return s1.Read < s2.Read
	}
	return qubo.LexLess(s1.State, s2.State)
}

// SortSolutions sorts sols with Less.
func SortSolutions(sols []*qubo.Solution) {
	sort.SliceStable(sols, func(i, j int) bool { return Less(sols[i], sols[j]) })
}

// Stopped returns the termination caused by ctx, if it is done.
func Stopped(ctx context.Context) (Termination, bool) {
	switch ctx.Err() {
	case nil:
		return "", false
	case context.DeadlineExceeded:
		return Budget, true
	default:
		return Cancelled, true
	}
}

// An IterationBudget counts the elementary steps of a run.
// It is safe for concurrent use.
type IterationBudget struct {
	max  int64 // 0 means no cap
	used atomic.Int64
}

// NewIterationBudget returns a budget of max iterations. 0 means no cap.
func NewIterationBudget(max int64) *IterationBudget {
	return &IterationBudget{max: max}
}

// Spend records n more iterations. It is false once the budget is exhausted.
func (b *IterationBudget) Spend(n int64) bool {
	used := b.used.Add(n)
	return b.max == 0 || used <= b.max
}

// Exhausted is true iff no iteration is left.
func (b *IterationBudget) Exhausted() bool {
	return b.max != 0 && b.used.Load() >= b.max
}

// Used is the number of iterations spent so far.
func (b *IterationBudget) Used() int64 {
	return b.used.Load()
}
