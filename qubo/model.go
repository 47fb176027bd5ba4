// Package qubo holds compiled models: quadratic energies over binary variables,
// along with everything needed to decode and evaluate assignments.
//
// A Model is immutable once built. It is safe to share a Model between any
// number of concurrent solver runs.
package qubo

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/crillab/goqubo/encode"
	"github.com/crillab/goqubo/poly"
	"github.com/pkg/errors"
)

// Tolerance is the precision used when comparing energies and evaluating conditions.
const Tolerance = 1e-9

// Role is the reason why an encoding variable exists.
type Role string

const (
	// RoleEncoding marks the bits of user variables.
	RoleEncoding Role = "encoding"
	// RoleAuxiliary marks variables introduced by degree reduction.
	RoleAuxiliary Role = "aux"
	// RoleSlack marks the bits of inequality slack variables.
	RoleSlack Role = "slack"
)

// A Term is the coefficient of x_I*x_J, with I <= J.
// When I == J, it is the linear coefficient of x_I.
type Term struct {
	I     int     `json:"i" yaml:"i"`
	J     int     `json:"j" yaml:"j"`
	Coeff float64 `json:"coeff" yaml:"coeff"`
}

// Canonicalize returns the canonical version of terms: I <= J, no duplicate
// pairs (coefficients are summed), no zero coefficient, sorted by (I, J).
func Canonicalize(terms []Term) []Term {
	sorted := make([]Term, len(terms))
	for i, t := range terms {
		if t.I > t.J {
			t.I, t.J = t.J, t.I
		}
		sorted[i] = t
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].I != sorted[j].I {
			return sorted[i].I < sorted[j].I
		}
		return sorted[i].J < sorted[j].J
	})
	res := sorted[:0]
	for _, t := range sorted {
		if n := len(res); n > 0 && res[n-1].I == t.I && res[n-1].J == t.J {
			res[n-1].Coeff += t.Coeff
			continue
		}
		res = append(res, t)
	}
	final := res[:0]
	for _, t := range res {
		if t.Coeff != 0 {
			final = append(final, t)
		}
	}
	return final
}

// Op is a comparison operator.
type Op string

// Possible operators.
const (
	OpEq Op = "=="
	OpLe Op = "<="
	OpGe Op = ">="
)

// A Condition is a relation between a polynomial over encoding variables and a constant.
type Condition struct {
	Poly *poly.Poly `json:"poly" yaml:"poly"`
	Op   Op         `json:"op" yaml:"op"`
	RHS  float64    `json:"rhs" yaml:"rhs"`
}

// Holds is true iff the condition is true on state.
func (c Condition) Holds(state []bool) bool {
	v := c.Poly.EvalState(state)
	switch c.Op {
	case OpEq:
		return math.Abs(v-c.RHS) <= Tolerance
	case OpLe:
		return v <= c.RHS+Tolerance
	case OpGe:
		return v >= c.RHS-Tolerance
	default:
		return false
	}
}

func (c Condition) String() string {
	return fmt.Sprintf("%v %s %v", c.Poly, c.Op, c.RHS)
}

// A Constraint is a named condition that was turned into a penalty.
// Satisfaction is evaluated on Condition, never on Penalty.
type Constraint struct {
	Label       string    `json:"label" yaml:"label"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Condition   Condition `json:"condition" yaml:"condition"`
	// Penalty is the unscaled penalty polynomial, before degree reduction.
	Penalty  *poly.Poly `json:"penalty" yaml:"penalty"`
	Strength float64    `json:"strength" yaml:"strength"`
	// Vars are the encoding variables involved in the condition or the penalty.
	Vars []int `json:"vars" yaml:"vars,flow"`
}

// A Subexpression is a named part of the objective, before degree reduction.
type Subexpression struct {
	Label string     `json:"label" yaml:"label"`
	Poly  *poly.Poly `json:"poly" yaml:"poly"`
}

// A Model is a compiled QUBO model.
type Model struct {
	NumVars     int                `json:"num_vars" yaml:"num_vars"`
	Names       []string           `json:"names" yaml:"names"`
	Roles       []Role             `json:"roles" yaml:"roles"`
	Terms       []Term             `json:"terms" yaml:"terms"`
	Offset      float64            `json:"offset" yaml:"offset"`
	Variables   []*encode.Encoding `json:"variables,omitempty" yaml:"variables,omitempty"`
	Constraints []Constraint       `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Labels      []Subexpression    `json:"labels,omitempty" yaml:"labels,omitempty"`

	once sync.Once
	adj  adjacency
}

// A Neighbor is a variable sharing a quadratic term with another one.
type Neighbor struct {
	J int
	W float64
}

type adjacency struct {
	linear []float64
	nbrs   [][]Neighbor
}

func (m *Model) adjacency() *adjacency {
	m.once.Do(func() {
		m.adj.linear = make([]float64, m.NumVars)
		m.adj.nbrs = make([][]Neighbor, m.NumVars)
		for _, t := range m.Terms {
			if t.I == t.J {
				m.adj.linear[t.I] += t.Coeff
				continue
			}
			m.adj.nbrs[t.I] = append(m.adj.nbrs[t.I], Neighbor{J: t.J, W: t.Coeff})
			m.adj.nbrs[t.J] = append(m.adj.nbrs[t.J], Neighbor{J: t.I, W: t.Coeff})
		}
	})
	return &m.adj
}

// Linear returns the linear coefficient of each variable. It must not be modified.
func (m *Model) Linear() []float64 {
	return m.adjacency().linear
}

// Neighbors returns the quadratic couplings of variable i. It must not be modified.
func (m *Model) Neighbors(i int) []Neighbor {
	return m.adjacency().nbrs[i]
}

// Energy returns the energy of state. Terms are always summed in the same
// order, so the same state always yields the same energy.
func (m *Model) Energy(state []bool) float64 {
	e := m.Offset
	for _, t := range m.Terms {
		if state[t.I] && state[t.J] {
			e += t.Coeff
		}
	}
	return e
}

// LocalField returns the energy variation caused by setting variable i to 1,
// when it is 0, all other variables keeping their value in state.
func (m *Model) LocalField(state []bool, i int) float64 {
	adj := m.adjacency()
	f := adj.linear[i]
	for _, n := range adj.nbrs[i] {
		if state[n.J] {
			f += n.W
		}
	}
	return f
}

// FlipDelta returns the energy variation caused by flipping variable i in state.
func (m *Model) FlipDelta(state []bool, i int) float64 {
	f := m.LocalField(state, i)
	if state[i] {
		return -f
	}
	return f
}

// MaxDegree returns the highest number of neighbors of any variable.
func (m *Model) MaxDegree() int {
	res := 0
	for i := 0; i < m.NumVars; i++ {
		if n := len(m.Neighbors(i)); n > res {
			res = n
		}
	}
	return res
}

// Satisfied is true iff every constraint of m holds on state.
func (m *Model) Satisfied(state []bool) bool {
	invalid := m.invalidBits(state)
	for _, c := range m.Constraints {
		if !c.holds(state, invalid) {
			return false
		}
	}
	return true
}

// invalidBits returns the bits of the encodings that do not decode to a valid value in state.
func (m *Model) invalidBits(state []bool) map[int]bool {
	var res map[int]bool
	bit := func(i int) bool { return state[i] }
	for _, v := range m.Variables {
		if v.Decode(bit).Valid {
			continue
		}
		if res == nil {
			res = make(map[int]bool)
		}
		for _, b := range v.Bits {
			res[b] = true
		}
	}
	return res
}

// holds is true iff the condition of c holds on state and none of its
// variables belongs to an invalid encoding.
func (c Constraint) holds(state []bool, invalid map[int]bool) bool {
	for _, v := range c.Vars {
		if invalid[v] {
			return false
		}
	}
	return c.Condition.Holds(state)
}

// Validate checks that m is well-formed: canonical terms, consistent metadata.
func (m *Model) Validate() error {
	if m.NumVars < 0 {
		return errors.Errorf("negative variable count %d", m.NumVars)
	}
	if m.Names != nil && len(m.Names) != m.NumVars {
		return errors.Errorf("%d names for %d variables", len(m.Names), m.NumVars)
	}
	if m.Roles != nil && len(m.Roles) != m.NumVars {
		return errors.Errorf("%d roles for %d variables", len(m.Roles), m.NumVars)
	}
	for k, t := range m.Terms {
		if t.I < 0 || t.J >= m.NumVars || t.I > t.J {
			return errors.Errorf("invalid term #%d (%d, %d)", k, t.I, t.J)
		}
		if k > 0 {
			prev := m.Terms[k-1]
			if prev.I > t.I || (prev.I == t.I && prev.J >= t.J) {
				return errors.Errorf("terms #%d and #%d are not in canonical order", k-1, k)
			}
		}
	}
	for _, v := range m.Variables {
		if v == nil {
			return errors.New("nil variable encoding")
		}
		for _, b := range v.Bits {
			if b < 0 || b >= m.NumVars {
				return errors.Errorf("variable %q uses out of range bit %d", v.Name, b)
			}
		}
	}
	for _, c := range m.Constraints {
		if c.Condition.Poly == nil || c.Penalty == nil {
			return errors.Errorf("constraint %q lacks its condition or penalty", c.Label)
		}
	}
	return nil
}

// Name returns the name of variable i.
func (m *Model) Name(i int) string {
	if i < len(m.Names) {
		return m.Names[i]
	}
	return fmt.Sprintf("x%d", i)
}

// Equal is true iff m and m2 hold the same data.
func (m *Model) Equal(m2 *Model) bool {
	return m.NumVars == m2.NumVars && m.Offset == m2.Offset &&
		equalSlices(m.Names, m2.Names) && equalSlices(m.Roles, m2.Roles) && equalSlices(m.Terms, m2.Terms) &&
		equalEncodings(m.Variables, m2.Variables) && equalConstraints(m.Constraints, m2.Constraints) &&
		equalLabels(m.Labels, m2.Labels)
}

func equalSlices[T comparable](s1, s2 []T) bool {
	if len(s1) != len(s2) {
		return false
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			return false
		}
	}
	return true
}

func equalEncodings(e1, e2 []*encode.Encoding) bool {
	if len(e1) != len(e2) {
		return false
	}
	for i := range e1 {
		a, b := e1[i], e2[i]
		if a.Name != b.Name || a.Kind != b.Kind || a.Scheme != b.Scheme || a.Lo != b.Lo || a.Hi != b.Hi || a.Strength != b.Strength ||
			!equalSlices(a.Labels, b.Labels) || !equalSlices(a.Bits, b.Bits) || !equalSlices(a.Weights, b.Weights) {
			return false
		}
	}
	return true
}

func equalConstraints(c1, c2 []Constraint) bool {
	if len(c1) != len(c2) {
		return false
	}
	for i := range c1 {
		a, b := c1[i], c2[i]
		if a.Label != b.Label || a.Description != b.Description || a.Strength != b.Strength ||
			a.Condition.Op != b.Condition.Op || a.Condition.RHS != b.Condition.RHS ||
			!a.Condition.Poly.Equal(b.Condition.Poly) || !a.Penalty.Equal(b.Penalty) || !equalSlices(a.Vars, b.Vars) {
			return false
		}
	}
	return true
}

func equalLabels(l1, l2 []Subexpression) bool {
	if len(l1) != len(l2) {
		return false
	}
	for i := range l1 {
		if l1[i].Label != l2[i].Label || !l1[i].Poly.Equal(l2[i].Poly) {
			return false
		}
	}
	return true
}
