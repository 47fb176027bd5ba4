package anneal

import (
	"math"

	"github.com/crillab/goqubo/qubo"
	"github.com/crillab/goqubo/solver"
)

// betaRange returns the inverse temperatures of the first and last sweeps.
// Unset bounds are derived from the coefficients of m: at beta min, the largest
// possible uphill move is accepted with probability 1/2; at beta max, the
// smallest one is accepted with probability 1/100.
func betaRange(m *qubo.Model, cfg solver.Config) (betaMin, betaMax float64) {
	betaMin, betaMax = cfg.BetaMin, cfg.BetaMax
	if betaMin > 0 && betaMax > 0 {
		return betaMin, betaMax
	}
	maxField, minCoeff := 0.0, math.Inf(1)
	for i, h := range m.Linear() {
		field := math.Abs(h)
		for _, nb := range m.Neighbors(i) {
			field += math.Abs(nb.W)
		}
		maxField = math.Max(maxField, field)
	}
	for _, t := range m.Terms {
		if c := math.Abs(t.Coeff); c > qubo.Tolerance {
			minCoeff = math.Min(minCoeff, c)
		}
	}
	if maxField == 0 {
		maxField, minCoeff = 1, 1
	}
	if betaMin == 0 {
		betaMin = math.Ln2 / maxField
	}
	if betaMax == 0 {
		betaMax = math.Log(100) / minCoeff
	}
	if betaMax < betaMin {
		betaMax = betaMin
	}
	return betaMin, betaMax
}

// Schedule returns the inverse temperature of each of the n sweeps,
// going from betaMin to betaMax.
func Schedule(kind solver.Schedule, betaMin, betaMax float64, n int) []float64 {
	betas := make([]float64, n)
	if n == 1 {
		betas[0] = betaMax
		return betas
	}
	for k := range betas {
		r := float64(k) / float64(n-1)
		if kind == solver.Linear {
			betas[k] = betaMin + r*(betaMax-betaMin)
		} else {
			betas[k] = betaMin * math.Pow(betaMax/betaMin, r)
		}
	}
	return betas
}
