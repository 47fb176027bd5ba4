package anneal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "goqubo_anneal_sweeps_total",
	Help: "Total annealing sweeps",
})
