package bf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crillab/goqubo/poly"
	"github.com/pkg/errors"
)

// A Formula is any kind of boolean formula over named binary variables.
type Formula interface {
	String() string
	Eval(model map[string]bool) bool
	// indicator returns the polynomial that equals 1 on the assignments
	// satisfying the formula, and 0 on the other ones.
	indicator(r Resolver) (*poly.Poly, error)
	vars(dst map[string]struct{})
}

// A Resolver associates a variable name with the polynomial that is 1 when
// the variable is true and 0 otherwise.
type Resolver func(name string) (*poly.Poly, error)

// Indicator returns the satisfaction indicator of f: a multilinear
// polynomial equal to 1 when f is true and to 0 when f is false.
func Indicator(f Formula, r Resolver) (*poly.Poly, error) {
	return f.indicator(r)
}

// Penalty returns 1 - Indicator(f), i.e a polynomial that is 0 iff f holds.
func Penalty(f Formula, r Resolver) (*poly.Poly, error) {
	ind, err := f.indicator(r)
	if err != nil {
		return nil, err
	}
	return poly.Const(1).AddScaled(ind, -1), nil
}

// Vars returns the sorted names of the variables appearing in f.
func Vars(f Formula) []string {
	set := make(map[string]struct{})
	f.vars(set)
	res := make([]string, 0, len(set))
	for name := range set {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// AsUnique returns the variable names of f if f is a plain Unique constraint.
func AsUnique(f Formula) ([]string, bool) {
	u, ok := f.(unique)
	if !ok {
		return nil, false
	}
	names := make([]string, len(u))
	for i, v := range u {
		names[i] = string(v)
	}
	return names, true
}

// The "true" constant.
type trueConst struct{}

// True is the constant denoting a tautology.
var True Formula = trueConst{}

func (t trueConst) String() string                           { return "⊤" }
func (t trueConst) Eval(model map[string]bool) bool          { return true }
func (t trueConst) indicator(r Resolver) (*poly.Poly, error) { return poly.Const(1), nil }
func (t trueConst) vars(dst map[string]struct{})             {}

// The "false" constant.
type falseConst struct{}

// False is the constant denoting a contradiction.
var False Formula = falseConst{}

func (f falseConst) String() string                           { return "⊥" }
func (f falseConst) Eval(model map[string]bool) bool          { return false }
func (f falseConst) indicator(r Resolver) (*poly.Poly, error) { return poly.New(), nil }
func (f falseConst) vars(dst map[string]struct{})             {}

// Var generates a named boolean variable in a formula.
func Var(name string) Formula {
	return variable(name)
}

type variable string

func (v variable) String() string {
	return string(v)
}

func (v variable) Eval(model map[string]bool) bool {
	b, ok := model[string(v)]
	if !ok {
		panic(fmt.Errorf("model lacks binding for variable %s", string(v)))
	}
	return b
}

func (v variable) indicator(r Resolver) (*poly.Poly, error) {
	p, err := r(string(v))
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve variable %q", string(v))
	}
	return p, nil
}

func (v variable) vars(dst map[string]struct{}) {
	dst[string(v)] = struct{}{}
}

// Not represents a negation. It negates the given subformula.
func Not(f Formula) Formula {
	return not{f}
}

type not [1]Formula

func (n not) String() string {
	return "not(" + n[0].String() + ")"
}

func (n not) Eval(model map[string]bool) bool {
	return !n[0].Eval(model)
}

func (n not) indicator(r Resolver) (*poly.Poly, error) {
	sub, err := n[0].indicator(r)
	if err != nil {
		return nil, err
	}
	return poly.Const(1).AddScaled(sub, -1), nil
}

func (n not) vars(dst map[string]struct{}) {
	n[0].vars(dst)
}

// And generates a conjunction of subformulas.
// The conjunction of no formula is true.
func And(subs ...Formula) Formula {
	return and(subs)
}

type and []Formula

func (a and) String() string {
	return "and(" + join(a) + ")"
}

func (a and) Eval(model map[string]bool) bool {
	for _, s := range a {
		if !s.Eval(model) {
			return false
		}
	}
	return true
}

func (a and) indicator(r Resolver) (*poly.Poly, error) {
	res := poly.Const(1)
	for _, s := range a {
		sub, err := s.indicator(r)
		if err != nil {
			return nil, err
		}
		res = poly.Mul(res, sub)
	}
	return res, nil
}

func (a and) vars(dst map[string]struct{}) {
	for _, s := range a {
		s.vars(dst)
	}
}

// Or generates a disjunction of subformulas.
// The disjunction of no formula is false.
func Or(subs ...Formula) Formula {
	return or(subs)
}

type or []Formula

func (o or) String() string {
	return "or(" + join(o) + ")"
}

func (o or) Eval(model map[string]bool) bool {
	for _, s := range o {
		if s.Eval(model) {
			return true
		}
	}
	return false
}

// The indicator of a disjunction is 1 - prod(1 - I(sub)).
func (o or) indicator(r Resolver) (*poly.Poly, error) {
	none := poly.Const(1)
	for _, s := range o {
		sub, err := s.indicator(r)
		if err != nil {
			return nil, err
		}
		none = poly.Mul(none, poly.Const(1).AddScaled(sub, -1))
	}
	return poly.Const(1).AddScaled(none, -1), nil
}

func (o or) vars(dst map[string]struct{}) {
	for _, s := range o {
		s.vars(dst)
	}
}

// Implies indicates a subformula implies another one.
func Implies(f1, f2 Formula) Formula {
	return or{not{f1}, f2}
}

// Eq indicates a subformula is equivalent to another one.
func Eq(f1, f2 Formula) Formula {
	return eq{f1, f2}
}

type eq [2]Formula

func (e eq) String() string {
	return "eq(" + e[0].String() + ", " + e[1].String() + ")"
}

func (e eq) Eval(model map[string]bool) bool {
	return e[0].Eval(model) == e[1].Eval(model)
}

// 1 - a - b + 2ab
func (e eq) indicator(r Resolver) (*poly.Poly, error) {
	a, b, err := pair(e, r)
	if err != nil {
		return nil, err
	}
	return poly.Const(1).AddScaled(a, -1).AddScaled(b, -1).AddScaled(poly.Mul(a, b), 2), nil
}

func (e eq) vars(dst map[string]struct{}) {
	e[0].vars(dst)
	e[1].vars(dst)
}

// Xor indicates exactly one of the two given subformulas is true.
func Xor(f1, f2 Formula) Formula {
	return xor{f1, f2}
}

type xor [2]Formula

func (x xor) String() string {
	return "xor(" + x[0].String() + ", " + x[1].String() + ")"
}

func (x xor) Eval(model map[string]bool) bool {
	return x[0].Eval(model) != x[1].Eval(model)
}

// a + b - 2ab
func (x xor) indicator(r Resolver) (*poly.Poly, error) {
	a, b, err := pair(x, r)
	if err != nil {
		return nil, err
	}
	return poly.Sum(a, b).AddScaled(poly.Mul(a, b), -2), nil
}

func (x xor) vars(dst map[string]struct{}) {
	x[0].vars(dst)
	x[1].vars(dst)
}

func pair(fs [2]Formula, r Resolver) (a, b *poly.Poly, err error) {
	if a, err = fs[0].indicator(r); err != nil {
		return nil, nil, err
	}
	if b, err = fs[1].indicator(r); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Unique indicates exactly one of the given variables must be true.
func Unique(vars ...string) Formula {
	u := make(unique, len(vars))
	for i, v := range vars {
		u[i] = variable(v)
	}
	return u
}

type unique []variable

func (u unique) String() string {
	strs := make([]string, len(u))
	for i, v := range u {
		strs[i] = string(v)
	}
	return "unique(" + strings.Join(strs, ", ") + ")"
}

func (u unique) Eval(model map[string]bool) bool {
	nb := 0
	for _, v := range u {
		if v.Eval(model) {
			nb++
		}
	}
	return nb == 1
}

// sum over i of x_i * prod(1 - x_j), j != i.
func (u unique) indicator(r Resolver) (*poly.Poly, error) {
	subs := make([]*poly.Poly, len(u))
	for i, v := range u {
		sub, err := v.indicator(r)
		if err != nil {
			return nil, err
		}
		subs[i] = sub
	}
	res := poly.New()
	for i := range subs {
		term := subs[i].Clone()
		for j := range subs {
			if j != i {
				term = poly.Mul(term, poly.Const(1).AddScaled(subs[j], -1))
			}
		}
		res.Add(term)
	}
	return res, nil
}

func (u unique) vars(dst map[string]struct{}) {
	for _, v := range u {
		dst[string(v)] = struct{}{}
	}
}

func join(fs []Formula) string {
	strs := make([]string, len(fs))
	for i, f := range fs {
		strs[i] = f.String()
	}
	return strings.Join(strs, ", ")
}
