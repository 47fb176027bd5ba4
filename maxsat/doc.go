// Package maxsat provides an optimization front-end for weighted partial MAXSAT
// and pseudo-boolean problems.
//
// Definition
//
// A MAXSAT problem is a problem where, contrary to "plain-old" SAT decision problems,
// the user is not looking at whether the problem can be solved at all, but, if it cannot be solved,
// if at least a subset of it can be solved, with that subset being as big as important.
// In other words, the MAXSAT solver is trying to find a model that satisfies as many clauses as possible,
// ideally all of them.
//
// Generally, the user wants two more things:
// - a subset of the problem must be satisfied, no matter what; these are called *hard clauses*,
// - other clauses (called *soft clauses*) are optional, but some of them are deemed more important than
// others: they are associated with a cost.
//
// That problem is called weighted partial MAXSAT (WP-MAXSAT). Clauses are generalized
// here to pseudo-boolean constraints: weighted sums of literals that must reach a given value.
//
// Resolution
//
// A problem is compiled into a QUBO model, then solved by any solver.Interface.
// Each violated soft constraint costs its weight; hard constraints are penalized
// strongly enough never to be traded against soft ones. The classical backend,
// used by Problem.Solve, proves the optimality of the models of small problems.
package maxsat
