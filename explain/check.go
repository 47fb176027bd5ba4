// Package explain checks whether the constraints of a compiled model can hold
// together, and explains why when they cannot.
//
// Constraint conditions are translated into a boolean circuit over the encoding
// variables of the model, then solved by a SAT solver. Each constraint is
// represented by a literal that is true iff its condition holds; all those
// literals are assumed true. When the problem is unsatisfiable, a minimal
// subset of constraints that cannot hold together is extracted.
//
// Linear conditions whose coefficients are all 1 or -1 are translated with
// sorting networks. Other conditions are translated by enumerating their
// assignments, as long as they involve at most MaxTableVars variables; larger
// ones are ignored and reported as skipped.
package explain

import (
	"math"

	"github.com/crillab/goqubo/qubo"
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// MaxTableVars is the maximum number of variables of a non-cardinality condition.
const MaxTableVars = 12

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// A Report is the result of a check.
type Report struct {
	// Satisfiable is true iff all translated constraints can hold together.
	Satisfiable bool
	// State is an assignment of all variables of the model satisfying every
	// translated constraint, when Satisfiable is true.
	// Auxiliary and slack variables are set so as to lower the energy.
	State []bool
	// Conflict is a minimal set of constraint labels that cannot hold together,
	// when Satisfiable is false.
	Conflict []string
	// Skipped lists the labels of the constraints that could not be translated.
	Skipped []string
}

// A translation is the circuit associated with a model.
type translation struct {
	m    *qubo.Model
	c    *logic.C
	vars []z.Lit // vars[i] is the literal of encoding variable i.
	// sels[i] is true iff constraint i holds. It is z.LitNull if constraint i was skipped.
	sels    []z.Lit
	skipped []string
}

func newTranslation(m *qubo.Model) *translation {
	t := &translation{
		m:    m,
		c:    logic.NewCCap(m.NumVars),
		vars: make([]z.Lit, m.NumVars),
		sels: make([]z.Lit, len(m.Constraints)),
	}
	for i := range t.vars {
		t.vars[i] = t.c.Lit()
	}
	for i, cons := range m.Constraints {
		sel, ok := t.cardinality(cons.Condition)
		if !ok {
			sel, ok = t.table(cons.Condition)
		}
		if !ok {
			t.skipped = append(t.skipped, cons.Label)
			sel = z.LitNull
		}
		t.sels[i] = sel
	}
	return t
}

// cardinality translates cond if it is a cardinality condition:
// a sum of variables or negated variables compared with a constant.
func (t *translation) cardinality(cond qubo.Condition) (z.Lit, bool) {
	if cond.Poly == nil || cond.Poly.Degree() > 1 {
		return z.LitNull, false
	}
	var lits []z.Lit
	k := cond.RHS
	for _, term := range cond.Poly.Terms() {
		switch {
		case len(term.Vars) == 0:
			k -= term.Coeff
		case term.Coeff == 1:
			lits = append(lits, t.vars[term.Vars[0]])
		case term.Coeff == -1:
			// -x == (1-x) - 1
			lits = append(lits, t.vars[term.Vars[0]].Not())
			k++
		default:
			return z.LitNull, false
		}
	}
	if len(lits) == 0 {
		return t.constant(cond), true
	}
	cs := t.c.CardSort(lits)
	n := len(lits)
	leq := func(k float64) z.Lit {
		w := int(math.Floor(k + qubo.Tolerance))
		switch {
		case w < 0:
			return t.c.F
		case w >= n:
			return t.c.T
		default:
			return cs.Leq(w)
		}
	}
	geq := func(k float64) z.Lit {
		w := int(math.Ceil(k - qubo.Tolerance))
		switch {
		case w <= 0:
			return t.c.T
		case w > n:
			return t.c.F
		default:
			return cs.Geq(w)
		}
	}
	switch cond.Op {
	case qubo.OpLe:
		return leq(k), true
	case qubo.OpGe:
		return geq(k), true
	case qubo.OpEq:
		if math.Abs(k-math.Round(k)) > qubo.Tolerance {
			return t.c.F, true
		}
		return t.c.And(leq(k), geq(k)), true
	default:
		return z.LitNull, false
	}
}

// table translates cond by forbidding each assignment of its variables that violates it.
func (t *translation) table(cond qubo.Condition) (z.Lit, bool) {
	if cond.Poly == nil {
		return z.LitNull, false
	}
	vars := cond.Poly.Vars()
	if len(vars) > MaxTableVars {
		return z.LitNull, false
	}
	state := make([]bool, t.m.NumVars)
	var forbidden []z.Lit
	for code := 0; code < 1<<len(vars); code++ {
		for i, v := range vars {
			state[v] = code&(1<<i) != 0
		}
		if cond.Holds(state) {
			continue
		}
		clause := make([]z.Lit, len(vars))
		for i, v := range vars {
			if state[v] {
				clause[i] = t.vars[v].Not()
			} else {
				clause[i] = t.vars[v]
			}
		}
		if len(clause) == 0 {
			return t.c.F, true
		}
		forbidden = append(forbidden, t.c.Ors(clause...))
	}
	if len(forbidden) == 0 {
		return t.c.T, true
	}
	return t.c.Ands(forbidden...), true
}

func (t *translation) constant(cond qubo.Condition) z.Lit {
	if cond.Holds(make([]bool, t.m.NumVars)) {
		return t.c.T
	}
	return t.c.F
}

// assumptions returns the selectors of the given constraints.
func (t *translation) assumptions(idx []int) []z.Lit {
	res := make([]z.Lit, len(idx))
	for i, j := range idx {
		res[i] = t.sels[j]
	}
	return res
}

// translated returns the indices of the constraints that were not skipped.
func (t *translation) translated() []int {
	var res []int
	for i, sel := range t.sels {
		if sel != z.LitNull {
			res = append(res, i)
		}
	}
	return res
}

// state reads the assignment found by g, then lowers the energy by flipping
// the variables that do not appear in constraint conditions.
func (t *translation) state(g *gini.Gini) []bool {
	state := make([]bool, t.m.NumVars)
	maxVar := g.MaxVar()
	for i, lit := range t.vars {
		// Variables that appear in no clause are unknown to g.
		if lit.Var() <= maxVar {
			state[i] = g.Value(lit)
		}
	}
	free := make([]bool, t.m.NumVars)
	for i := range free {
		free[i] = i < len(t.m.Roles) && t.m.Roles[i] != qubo.RoleEncoding
	}
	for pass := 0; pass < t.m.NumVars; pass++ {
		improved := false
		for i := range state {
			if free[i] && t.m.FlipDelta(state, i) < -qubo.Tolerance {
				state[i] = !state[i]
				improved = true
			}
		}
		if !improved {
			break
		}
	}
	return state
}

// Check translates the constraints of m and looks for an assignment satisfying all of them.
func Check(m *qubo.Model) (*Report, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "cannot check model")
	}
	t := newTranslation(m)
	g := gini.New()
	t.c.ToCnf(g)
	idx := t.translated()
	report := &Report{Skipped: t.skipped}
	g.Assume(t.assumptions(idx)...)
	switch g.Solve() {
	case satisfiable:
		report.Satisfiable = true
		report.State = t.state(g)
	case unsatisfiable:
		core := minimalConflict(g, t, t.core(g, idx))
		for _, i := range core {
			report.Conflict = append(report.Conflict, m.Constraints[i].Label)
		}
	default:
		return nil, errors.New("could not decide satisfiability")
	}
	return report, nil
}
