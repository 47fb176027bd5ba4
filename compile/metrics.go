package compile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	compileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goqubo_compile_total",
		Help: "Total compilations by result",
	}, []string{"result"})

	compileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "goqubo_compile_duration_seconds",
		Help:    "Compilation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	auxVariables = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "goqubo_compile_auxiliary_variables",
		Help:    "Number of auxiliary variables created by degree reduction",
		Buckets: []float64{0, 1, 10, 100, 1000, 10000},
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goqubo_compile_cache_lookups_total",
		Help: "Compilation cache lookups by result",
	}, []string{"result"})
)
