package compile

import (
	"fmt"
	"math"

	"github.com/crillab/goqubo/poly"
	"github.com/crillab/goqubo/qubo"
)

// ReductionGadget returns strength*(3y + ab - 2ay - 2by).
// It is 0 when y == ab, and at least strength otherwise.
func ReductionGadget(a, b, y int, strength float64) *poly.Poly {
	g := poly.New()
	g.AddTerm(poly.NewMonomial(y), 3)
	g.AddTerm(poly.NewMonomial(a, b), 1)
	g.AddTerm(poly.NewMonomial(a, y), -2)
	g.AddTerm(poly.NewMonomial(b, y), -2)
	return g.Scale(strength)
}

type varPair struct {
	a, b int
}

func (p varPair) less(p2 varPair) bool {
	return p.a < p2.a || (p.a == p2.a && p.b < p2.b)
}

// mostFrequentPair returns the pair of variables appearing in the largest
// number of terms of degree > 2, the smallest one in case of a tie.
func mostFrequentPair(terms []poly.Term) varPair {
	counts := make(map[varPair]int)
	var (
		best   varPair
		bestNb int
	)
	for _, t := range terms {
		if len(t.Vars) <= 2 {
			continue
		}
		for i, a := range t.Vars {
			for _, b := range t.Vars[i+1:] {
				pair := varPair{a, b}
				counts[pair]++
				nb := counts[pair]
				if nb > bestNb || (nb == bestNb && pair.less(best)) {
					best, bestNb = pair, nb
				}
			}
		}
	}
	return best
}

// substitute replaces the pair by y in every term of degree > 2 containing it.
// It returns the new polynomial and the sum of the absolute values of the
// coefficients of substituted terms.
func substitute(terms []poly.Term, pair varPair, y int) (*poly.Poly, float64) {
	res := poly.New()
	var weight float64
	for _, t := range terms {
		if len(t.Vars) <= 2 || !t.Vars.Contains(pair.a) || !t.Vars.Contains(pair.b) {
			res.AddTerm(t.Vars, t.Coeff)
			continue
		}
		vars := make([]int, 0, len(t.Vars)-1)
		for _, v := range t.Vars {
			if v != pair.a && v != pair.b {
				vars = append(vars, v)
			}
		}
		res.AddTerm(poly.NewMonomial(append(vars, y)...), t.Coeff)
		weight += math.Abs(t.Coeff)
	}
	return res, weight
}

// reduce returns a quadratic polynomial whose minimum over auxiliary
// variables is p, for every assignment of the variables of p.
func (c *compiler) reduce(p *poly.Poly) (*poly.Poly, error) {
	for {
		terms := p.Terms()
		var high *poly.Term
		for i := range terms {
			if len(terms[i].Vars) > 2 {
				high = &terms[i]
				break
			}
		}
		if high == nil {
			break
		}
		if c.nbAux >= c.opts.MaxAuxiliary {
			return nil, &ReductionOverflowError{Max: c.opts.MaxAuxiliary, Term: c.describe(poly.New().AddTerm(high.Vars, high.Coeff))}
		}
		pair := mostFrequentPair(terms)
		y := c.alloc(fmt.Sprintf("aux:%d", c.nbAux), qubo.RoleAuxiliary)
		c.nbAux++
		var weight float64
		p, weight = substitute(terms, pair, y)
		strength := c.opts.ReductionStrength
		if strength == 0 {
			strength = 1 + weight
		}
		p.Add(ReductionGadget(pair.a, pair.b, y, strength))
		c.log.WithField("pair", c.names[pair.a]+"*"+c.names[pair.b]).WithField("aux", c.names[y]).Trace("substituted pair")
	}
	auxVariables.Observe(float64(c.nbAux))
	return p, nil
}
