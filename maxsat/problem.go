package maxsat

import (
	"context"
	"fmt"

	"github.com/crillab/goqubo/classical"
	"github.com/crillab/goqubo/compile"
	"github.com/crillab/goqubo/expr"
	"github.com/crillab/goqubo/qubo"
	"github.com/crillab/goqubo/solver"
	"github.com/pkg/errors"
)

// A Model associates variable names with a binding.
type Model map[string]bool

// A Problem is a set of constraints.
type Problem struct {
	constrs []Constr
	vars    []string // user variables, in order of appearance
	g       *expr.Graph
	root    expr.NodeID
	err     error
}

// New returns a new problem associated with the given constraints.
//
// Each constraint is a GreaterEq constraint of the resulting QUBO model.
// A soft constraint gets a relax variable, whose weighted value is part of
// the objective: when it is set, the constraint trivially holds.
// Hard constraints are given a strength above the total weight of soft constraints,
// so that no tradeoff between soft constraints can make a hard one worth violating.
func New(constrs ...Constr) *Problem {
	pb := &Problem{constrs: constrs, g: expr.New()}
	for i, constr := range constrs {
		if constr.Coeffs != nil && len(constr.Coeffs) != len(constr.Lits) {
			pb.err = errors.Errorf("constraint #%d has %d literals but %d coefficients", i, len(constr.Lits), len(constr.Coeffs))
			return pb
		}
	}
	refs := make(map[string]expr.NodeID)
	ref := func(name string) expr.NodeID {
		if id, ok := refs[name]; ok {
			return id
		}
		pb.vars = append(pb.vars, name)
		refs[name] = pb.g.Ref(pb.g.Binary(name))
		return refs[name]
	}
	hardStrength := 1
	for _, constr := range constrs {
		hardStrength += constr.Weight
	}
	var cost []expr.NodeID
	var penalties []expr.NodeID
	for i, constr := range constrs {
		terms := make([]expr.NodeID, len(constr.Lits))
		for j, lit := range constr.Lits {
			x := ref(lit.Var)
			if lit.Negated {
				x = pb.g.Sub(pb.g.Const(1), x)
			}
			terms[j] = pb.g.Scale(float64(constr.coeff(j)), x)
		}
		strength := hardStrength
		if constr.Weight != 0 {
			relax := pb.g.Ref(pb.g.Binary(relaxName(i)))
			terms = append(terms, pb.g.Scale(float64(constr.AtLeast), relax))
			cost = append(cost, pb.g.Scale(float64(constr.Weight), relax))
			strength = constr.Weight
		}
		pred := expr.GreaterEq{LHS: pb.g.Add(terms...), RHS: pb.g.Const(float64(constr.AtLeast))}
		penalties = append(penalties, pb.g.Constraint(constrLabel(i), pred, pb.g.Const(float64(strength))))
	}
	pb.root = pb.g.Add(pb.g.Label("cost", pb.g.Add(cost...)), pb.g.Add(penalties...))
	return pb
}

func constrLabel(i int) string {
	return fmt.Sprintf("constr#%d", i)
}

func relaxName(i int) string {
	return fmt.Sprintf("relax#%d", i)
}

// QUBO compiles the problem into a QUBO model.
func (pb *Problem) QUBO(opts ...compile.Option) (*qubo.Model, error) {
	if pb.err != nil {
		return nil, pb.err
	}
	return compile.Compile(pb.g, pb.root, nil, opts...)
}

// Cost returns the sum of the weights of the soft constraints model violates.
// It is -1 if model violates a hard constraint.
func (pb *Problem) Cost(model Model) int {
	cost := 0
	for _, constr := range pb.constrs {
		if constr.satisfied(model) {
			continue
		}
		if constr.Weight == 0 {
			return -1
		}
		cost += constr.Weight
	}
	return cost
}

// Solve returns an optimal Model for the problem and the associated cost.
// If the model is nil, the problem was not satisfiable (i.e hard clauses could not be satisfied),
// or could not be solved at all.
// Problems small enough to be solved exhaustively are guaranteed to get an optimal model.
func (pb *Problem) Solve() (Model, int) {
	model, cost, err := pb.SolveWith(context.Background(), classical.New(), solver.Config{Reads: 1})
	if err != nil {
		return nil, -1
	}
	return model, cost
}

// SolveWith solves the problem with the given backend and returns the best model
// it found, along with its cost. The model is nil and the cost is -1 if no
// solution satisfies all hard constraints.
func (pb *Problem) SolveWith(ctx context.Context, backend solver.Interface, cfg solver.Config) (Model, int, error) {
	if pb.err != nil {
		return nil, -1, pb.err
	}
	if len(pb.vars) == 0 {
		if cost := pb.Cost(Model{}); cost >= 0 {
			return Model{}, cost, nil
		}
		return nil, -1, nil
	}
	m, err := pb.QUBO()
	if err != nil {
		return nil, -1, errors.Wrap(err, "could not compile problem")
	}
	res, err := backend.Solve(ctx, m, cfg)
	if err != nil {
		return nil, -1, errors.Wrap(err, "could not solve problem")
	}
	var (
		best     Model
		bestCost = -1
	)
	for _, sol := range res.Solutions {
		model := pb.decode(sol)
		cost := pb.Cost(model)
		if cost >= 0 && (bestCost == -1 || cost < bestCost) {
			best, bestCost = model, cost
		}
	}
	return best, bestCost, nil
}

func (pb *Problem) decode(sol *qubo.Solution) Model {
	model := make(Model, len(pb.vars))
	for _, name := range pb.vars {
		model[name] = sol.Values[name].Number == 1
	}
	return model
}
