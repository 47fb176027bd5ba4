// Package expr describes symbolic optimization models.
//
// A model is a Graph: an arena of immutable expression nodes over declared
// variables. Variables have a Domain (Binary, Spin, IntegerRange or OneHot);
// expressions combine constants, variable references, placeholders, sums and
// products; Constraint nodes hold a Predicate, a label and a strength, and
// contribute their scaled penalty to the objective; Label nodes name a
// subexpression so that its energy can be reported after solving.
//
// Since nodes are addressed by NodeID, a node can be used by several parents:
// the graph is a DAG, and the compiler expands every shared node only once.
//
// Errors detected while building (conflicting declarations, unknown labels,
// duplicate constraint names) do not interrupt construction. They are
// gathered and returned by Err, and reported when the graph is compiled.
//
// For instance, minimizing x+y under the constraint that exactly one of them
// is set is written:
//
//	g := expr.New()
//	x, y := g.Ref(g.Binary("x")), g.Ref(g.Binary("y"))
//	one := g.Constraint("one", expr.Equal{LHS: g.Add(x, y), RHS: g.Const(1)}, g.Const(10))
//	obj := g.Add(x, y, one)
package expr
