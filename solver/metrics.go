package solver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goqubo_solver_runs_total",
		Help: "Total solver runs by backend and termination",
	}, []string{"backend", "termination"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goqubo_solver_run_duration_seconds",
		Help:    "Solver run duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"backend"})

	readsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goqubo_solver_reads_total",
		Help: "Total reads performed by backend",
	}, []string{"backend"})
)
