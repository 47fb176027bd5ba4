// Package poly implements multilinear polynomials over binary variables.
//
// Variables are identified by non-negative integer indices. Since every
// variable is binary, x*x == x: a monomial is a sorted set of distinct
// indices and multiplying two monomials is a set union.
//
// All iterations that may influence floating point results are performed
// in canonical order (by degree, then lexicographically on indices), so that
// two polynomials built by the same sequence of calls are bit-for-bit equal.
package poly

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// A Monomial is a product of distinct binary variables, stored as a sorted
// slice of indices. The empty monomial is the constant 1.
type Monomial []int

// NewMonomial returns the monomial made of the given variables.
// Duplicates are removed since x*x == x.
func NewMonomial(vars ...int) Monomial {
	m := make(Monomial, len(vars))
	copy(m, vars)
	sort.Ints(m)
	j := 0
	for i, v := range m {
		if i == 0 || v != m[j-1] {
			m[j] = v
			j++
		}
	}
	return m[:j]
}

// Degree is the number of variables in m.
func (m Monomial) Degree() int { return len(m) }

// Contains is true iff v appears in m.
func (m Monomial) Contains(v int) bool {
	i := sort.SearchInts(m, v)
	return i < len(m) && m[i] == v
}

// Times returns the product of m and m2.
func (m Monomial) Times(m2 Monomial) Monomial {
	res := make(Monomial, 0, len(m)+len(m2))
	i, j := 0, 0
	for i < len(m) && j < len(m2) {
		switch {
		case m[i] < m2[j]:
			res = append(res, m[i])
			i++
		case m[i] > m2[j]:
			res = append(res, m2[j])
			j++
		default:
			res = append(res, m[i])
			i++
			j++
		}
	}
	res = append(res, m[i:]...)
	return append(res, m2[j:]...)
}

// Less is the canonical order on monomials: by degree, then lexicographically.
func (m Monomial) Less(m2 Monomial) bool {
	if len(m) != len(m2) {
		return len(m) < len(m2)
	}
	for i := range m {
		if m[i] != m2[i] {
			return m[i] < m2[i]
		}
	}
	return false
}

func (m Monomial) key() string {
	var sb strings.Builder
	for i, v := range m {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

func (m Monomial) String() string {
	if len(m) == 0 {
		return "1"
	}
	strs := make([]string, len(m))
	for i, v := range m {
		strs[i] = "x" + strconv.Itoa(v)
	}
	return strings.Join(strs, "*")
}

// A Term is a monomial associated with a non-zero coefficient.
type Term struct {
	Vars  Monomial `json:"vars" yaml:"vars,flow"`
	Coeff float64  `json:"coeff" yaml:"coeff"`
}

type entry struct {
	vars  Monomial
	coeff float64
}

// A Poly is a multilinear polynomial. The zero value is the zero polynomial,
// ready to use.
type Poly struct {
	entries map[string]*entry
}

// New returns the zero polynomial.
func New() *Poly {
	return &Poly{}
}

// Const returns the constant polynomial c.
func Const(c float64) *Poly {
	return New().AddTerm(nil, c)
}

// Var returns the polynomial made of the single variable v.
func Var(v int) *Poly {
	return New().AddTerm(Monomial{v}, 1)
}

// Sum returns a new polynomial, the sum of all ps.
func Sum(ps ...*Poly) *Poly {
	res := New()
	for _, p := range ps {
		res.Add(p)
	}
	return res
}

// Clone returns a deep copy of p.
func (p *Poly) Clone() *Poly {
	res := New()
	for _, t := range p.Terms() {
		res.AddTerm(t.Vars, t.Coeff)
	}
	return res
}

// AddTerm adds c*m to p and returns p.
// Terms whose coefficient becomes exactly 0 are dropped.
func (p *Poly) AddTerm(m Monomial, c float64) *Poly {
	if c == 0 {
		return p
	}
	if p.entries == nil {
		p.entries = make(map[string]*entry)
	}
	k := m.key()
	if e, ok := p.entries[k]; ok {
		e.coeff += c
		if e.coeff == 0 {
			delete(p.entries, k)
		}
		return p
	}
	vars := make(Monomial, len(m))
	copy(vars, m)
	p.entries[k] = &entry{vars: vars, coeff: c}
	return p
}

// Add adds q to p and returns p.
func (p *Poly) Add(q *Poly) *Poly {
	for _, t := range q.Terms() {
		p.AddTerm(t.Vars, t.Coeff)
	}
	return p
}

// AddScaled adds c*q to p and returns p.
func (p *Poly) AddScaled(q *Poly, c float64) *Poly {
	if c == 0 {
		return p
	}
	for _, t := range q.Terms() {
		p.AddTerm(t.Vars, c*t.Coeff)
	}
	return p
}

// Scale multiplies p by c and returns p.
func (p *Poly) Scale(c float64) *Poly {
	if c == 0 {
		p.entries = nil
		return p
	}
	for _, e := range p.entries {
		e.coeff *= c
	}
	return p
}

// Mul returns a new polynomial, the product of p and q.
func Mul(p, q *Poly) *Poly {
	res := New()
	qTerms := q.Terms()
	for _, t1 := range p.Terms() {
		for _, t2 := range qTerms {
			res.AddTerm(t1.Vars.Times(t2.Vars), t1.Coeff*t2.Coeff)
		}
	}
	return res
}

// Product returns a new polynomial, the product of all ps.
// The product of no polynomial is the constant 1.
func Product(ps ...*Poly) *Poly {
	res := Const(1)
	for _, p := range ps {
		res = Mul(res, p)
	}
	return res
}

// Pow returns p^n. It panics if n < 0.
func Pow(p *Poly, n int) *Poly {
	if n < 0 {
		panic(fmt.Errorf("negative exponent %d", n))
	}
	res := Const(1)
	for i := 0; i < n; i++ {
		res = Mul(res, p)
	}
	return res
}

// Square returns p^2.
func Square(p *Poly) *Poly {
	return Mul(p, p)
}

// Len is the number of non-zero terms in p, including the constant.
func (p *Poly) Len() int {
	return len(p.entries)
}

// IsZero is true iff p has no term.
func (p *Poly) IsZero() bool {
	return len(p.entries) == 0
}

// Degree is the highest degree among the terms of p, 0 for a constant.
func (p *Poly) Degree() int {
	deg := 0
	for _, e := range p.entries {
		if len(e.vars) > deg {
			deg = len(e.vars)
		}
	}
	return deg
}

// Constant returns the coefficient of the empty monomial.
func (p *Poly) Constant() float64 {
	return p.Coeff(nil)
}

// Coeff returns the coefficient associated with m, 0 if there is none.
func (p *Poly) Coeff(m Monomial) float64 {
	if e, ok := p.entries[m.key()]; ok {
		return e.coeff
	}
	return 0
}

// Terms returns all terms of p in canonical order.
// The returned monomials must not be modified.
func (p *Poly) Terms() []Term {
	res := make([]Term, 0, len(p.entries))
	for _, e := range p.entries {
		res = append(res, Term{Vars: e.vars, Coeff: e.coeff})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Vars.Less(res[j].Vars) })
	return res
}

// Vars returns the sorted list of variables appearing in p.
func (p *Poly) Vars() []int {
	seen := make(map[int]struct{})
	for _, e := range p.entries {
		for _, v := range e.vars {
			seen[v] = struct{}{}
		}
	}
	res := make([]int, 0, len(seen))
	for v := range seen {
		res = append(res, v)
	}
	sort.Ints(res)
	return res
}

// Eval evaluates p, given the value of each variable.
func (p *Poly) Eval(value func(v int) bool) float64 {
	res := 0.0
	for _, t := range p.Terms() {
		on := true
		for _, v := range t.Vars {
			if !value(v) {
				on = false
				break
			}
		}
		if on {
			res += t.Coeff
		}
	}
	return res
}

// EvalState evaluates p on a dense assignment.
func (p *Poly) EvalState(state []bool) float64 {
	return p.Eval(func(v int) bool { return state[v] })
}

// Bounds returns a lower and an upper bound of p over all assignments.
// Both are exact for linear polynomials.
func (p *Poly) Bounds() (lo, hi float64) {
	for _, e := range p.entries {
		switch {
		case len(e.vars) == 0:
			lo += e.coeff
			hi += e.coeff
		case e.coeff < 0:
			lo += e.coeff
		default:
			hi += e.coeff
		}
	}
	return lo, hi
}

// IsIntegral is true iff all coefficients of p are integers.
func (p *Poly) IsIntegral() bool {
	for _, e := range p.entries {
		if e.coeff != math.Trunc(e.coeff) {
			return false
		}
	}
	return true
}

// Equal is true iff p and q have exactly the same terms and coefficients.
func (p *Poly) Equal(q *Poly) bool {
	if p.Len() != q.Len() {
		return false
	}
	for k, e := range p.entries {
		e2, ok := q.entries[k]
		if !ok || e2.coeff != e.coeff {
			return false
		}
	}
	return true
}

func (p *Poly) String() string {
	terms := p.Terms()
	if len(terms) == 0 {
		return "0"
	}
	strs := make([]string, len(terms))
	for i, t := range terms {
		if len(t.Vars) == 0 {
			strs[i] = strconv.FormatFloat(t.Coeff, 'g', -1, 64)
		} else {
			strs[i] = strconv.FormatFloat(t.Coeff, 'g', -1, 64) + "*" + t.Vars.String()
		}
	}
	return strings.Join(strs, " + ")
}
