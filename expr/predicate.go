package expr

import (
	"fmt"

	"github.com/crillab/goqubo/bf"
)

// A Predicate is a condition a constraint enforces.
// The set of predicates is closed: Equal, LessEq, GreaterEq and Logic.
type Predicate interface {
	fmt.Stringer
	// Operands returns the expression nodes the predicate refers to.
	Operands() []NodeID
	isPredicate()
}

// Equal holds iff LHS == RHS.
type Equal struct {
	LHS, RHS NodeID
}

// LessEq holds iff LHS <= RHS. Both sides must have integer coefficients.
type LessEq struct {
	LHS, RHS NodeID
}

// GreaterEq holds iff LHS >= RHS. Both sides must have integer coefficients.
type GreaterEq struct {
	LHS, RHS NodeID
}

// Logic holds iff the boolean formula holds.
// Formula variables are the names of binary or spin variables, a spin being
// true when it is +1.
type Logic struct {
	Formula bf.Formula
}

func (Equal) isPredicate()     {}
func (LessEq) isPredicate()    {}
func (GreaterEq) isPredicate() {}
func (Logic) isPredicate()     {}

// Operands implements Predicate.
func (p Equal) Operands() []NodeID { return []NodeID{p.LHS, p.RHS} }

// Operands implements Predicate.
func (p LessEq) Operands() []NodeID { return []NodeID{p.LHS, p.RHS} }

// Operands implements Predicate.
func (p GreaterEq) Operands() []NodeID { return []NodeID{p.LHS, p.RHS} }

// Operands implements Predicate.
func (p Logic) Operands() []NodeID { return nil }

func (p Equal) String() string     { return fmt.Sprintf("#%d == #%d", p.LHS, p.RHS) }
func (p LessEq) String() string    { return fmt.Sprintf("#%d <= #%d", p.LHS, p.RHS) }
func (p GreaterEq) String() string { return fmt.Sprintf("#%d >= #%d", p.LHS, p.RHS) }

func (p Logic) String() string {
	if p.Formula == nil {
		return "<nil formula>"
	}
	return p.Formula.String()
}
