// Package bf offers facilities to express generic boolean formulas over
// binary variables, and to turn them into penalty polynomials.
//
// A QUBO solver only knows about quadratic energies over 0/1 variables, so a
// logical constraint has to be expressed as a polynomial that is minimal when
// the constraint holds. For any formula f, Indicator(f) is a multilinear
// polynomial that equals 1 on the assignments satisfying f and 0 elsewhere,
// and Penalty(f) = 1 - Indicator(f).
//
// The indicator is built structurally:
//
//	I(not f)     = 1 - I(f)
//	I(f and g)   = I(f) * I(g)
//	I(f or g)    = 1 - (1 - I(f)) * (1 - I(g))
//	I(f = g)     = 1 - I(f) - I(g) + 2 I(f) I(g)
//	I(f xor g)   = I(f) + I(g) - 2 I(f) I(g)
//
// For example, the following boolean formula:
//
// !(a & b) -> ((c | !d) & !(c & (e <-> !c)) & !(a xor b))
//
// Will be defined with the following code:
//
// f := Not(Implies(And(Var("a"), Var("b")), And(Or(Var("c"), Not(Var("d"))), Not(And(Var("c"), Eq(Var("e"), Not(Var("c"))))), Not(Xor(Var("a"), Var("b"))))))
//
// Formulas can also be parsed from text with Parse. The indicator of a formula
// may have degree higher than 2; the compiler is in charge of reducing it.
package bf
