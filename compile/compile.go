// Package compile turns symbolic models into QUBO models.
//
// Compilation is a pure, deterministic function of a frozen expression graph,
// a root node and placeholder bindings. It runs the following passes:
//
//  1. placeholder resolution,
//  2. variable materialization, which also injects the exactly-one
//     constraints of one-hot encodings,
//  3. lowering of expressions and constraints to multilinear polynomials,
//     constraints contributing strength*penalty to the objective,
//  4. degree reduction, until no term has degree higher than 2,
//  5. assembly of the QUBO terms.
package compile

import (
	"sort"
	"time"

	"github.com/crillab/goqubo/bf"
	"github.com/crillab/goqubo/encode"
	"github.com/crillab/goqubo/expr"
	"github.com/crillab/goqubo/poly"
	"github.com/crillab/goqubo/qubo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Bindings associates placeholder names with their values.
type Bindings map[string]float64

type compiler struct {
	g        *expr.Graph
	bindings Bindings
	opts     Options
	log      logrus.FieldLogger

	names []string
	roles []qubo.Role

	encodings   map[expr.VarID]*encode.Encoding
	variables   []*encode.Encoding
	memo        map[expr.NodeID]*poly.Poly
	constraints []qubo.Constraint
	labels      []qubo.Subexpression
	used        map[string]bool // labels of constraints and subexpressions
	nbAux       int
}

// Compile compiles the expression rooted at root into a QUBO model.
// The graph is frozen first: it cannot be modified afterwards.
func Compile(g *expr.Graph, root expr.NodeID, bindings Bindings, opts ...Option) (*qubo.Model, error) {
	start := time.Now()
	m, err := compile(g, root, bindings, newOptions(opts))
	compileDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		compileTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	compileTotal.WithLabelValues("ok").Inc()
	return m, nil
}

func compile(g *expr.Graph, root expr.NodeID, bindings Bindings, opts Options) (*qubo.Model, error) {
	g.Freeze()
	if err := g.Err(); err != nil {
		return nil, err
	}
	if root < 0 || int(root) >= g.Len() {
		return nil, errors.Errorf("invalid root node %d", root)
	}
	c := &compiler{
		g:         g,
		bindings:  bindings,
		opts:      opts,
		log:       opts.Logger.WithField("root", root),
		encodings: make(map[expr.VarID]*encode.Encoding),
		memo:      make(map[expr.NodeID]*poly.Poly),
		used:      make(map[string]bool),
	}
	reached, err := c.resolve(root)
	if err != nil {
		return nil, err
	}
	objective := poly.New()
	if err := c.materialize(reached, objective); err != nil {
		return nil, err
	}
	lowered, err := c.lower(root)
	if err != nil {
		return nil, err
	}
	objective.Add(lowered)
	degree := objective.Degree()
	reduced, err := c.reduce(objective)
	if err != nil {
		return nil, err
	}
	m := c.assemble(reduced)
	c.log.WithFields(logrus.Fields{
		"variables":   m.NumVars,
		"terms":       len(m.Terms),
		"constraints": len(m.Constraints),
		"degree":      degree,
		"auxiliary":   c.nbAux,
	}).Debug("compiled model")
	return m, nil
}

// reach lists every node reachable from root, in depth-first order.
func (c *compiler) reach(root expr.NodeID) []expr.NodeID {
	seen := make(map[expr.NodeID]bool)
	var res []expr.NodeID
	stack := []expr.NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		res = append(res, id)
		n := c.g.Node(id)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
		if n.Kind == expr.KindConstraint {
			stack = append(stack, n.Strength)
			ops := n.Predicate.Operands()
			for i := len(ops) - 1; i >= 0; i-- {
				stack = append(stack, ops[i])
			}
		}
	}
	return res
}

// resolve checks every reachable placeholder is bound.
func (c *compiler) resolve(root expr.NodeID) ([]expr.NodeID, error) {
	reached := c.reach(root)
	missing := make(map[string]struct{})
	for _, id := range reached {
		n := c.g.Node(id)
		if n.Kind != expr.KindPlaceholder {
			continue
		}
		if _, ok := c.bindings[n.Name]; !ok {
			missing[n.Name] = struct{}{}
		}
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, &MissingBindingError{Names: names}
	}
	return reached, nil
}

// alloc creates a new encoding variable.
func (c *compiler) alloc(name string, role qubo.Role) int {
	c.names = append(c.names, name)
	c.roles = append(c.roles, role)
	return len(c.names) - 1
}

// materialize encodes every variable used by the reachable nodes, in declaration order.
func (c *compiler) materialize(reached []expr.NodeID, objective *poly.Poly) error {
	set := make(map[expr.VarID]struct{})
	for _, id := range reached {
		n := c.g.Node(id)
		switch n.Kind {
		case expr.KindVar:
			set[n.Var] = struct{}{}
		case expr.KindConstraint:
			logic, ok := n.Predicate.(expr.Logic)
			if !ok {
				continue
			}
			if logic.Formula == nil {
				return &expr.MalformedPredicateError{Label: n.Name, Reason: "nil formula"}
			}
			for _, name := range bf.Vars(logic.Formula) {
				v, ok := c.g.Lookup(name)
				if !ok {
					return &expr.MalformedPredicateError{Label: n.Name, Reason: "unknown variable " + name}
				}
				set[v.ID] = struct{}{}
			}
		}
	}
	ids := make([]expr.VarID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	encOpts := encode.Options{Integer: c.opts.IntegerEncoding, OneHotStrength: c.opts.OneHotStrength}
	for _, id := range ids {
		v := c.g.Var(id)
		enc, err := encode.New(v, func(name string) int { return c.alloc(name, qubo.RoleEncoding) }, encOpts)
		if err != nil {
			return err
		}
		c.encodings[id] = enc
		c.variables = append(c.variables, enc)
		if !enc.IsOneHot() {
			continue
		}
		sum := enc.Sum()
		penalty := poly.Square(poly.Sum(sum, poly.Const(-1)))
		if err := c.record(qubo.Constraint{
			Label:       enc.ConstraintLabel(),
			Description: "exactly one of " + c.describe(sum) + " is set",
			Condition:   qubo.Condition{Poly: sum, Op: qubo.OpEq, RHS: 1},
			Penalty:     penalty,
			Strength:    enc.Strength,
		}); err != nil {
			return err
		}
		objective.AddScaled(penalty, enc.Strength)
	}
	return nil
}

// record adds a constraint to the model.
func (c *compiler) record(cons qubo.Constraint) error {
	if c.used[cons.Label] {
		return expr.DuplicateLabelError(cons.Label)
	}
	c.used[cons.Label] = true
	cons.Vars = cons.Condition.Poly.Vars()
	for _, v := range cons.Penalty.Vars() {
		cons.Vars = insertSorted(cons.Vars, v)
	}
	c.constraints = append(c.constraints, cons)
	return nil
}

func insertSorted(vars []int, v int) []int {
	i := sort.SearchInts(vars, v)
	if i < len(vars) && vars[i] == v {
		return vars
	}
	vars = append(vars, 0)
	copy(vars[i+1:], vars[i:])
	vars[i] = v
	return vars
}

// assemble flattens the quadratic polynomial p into a model.
func (c *compiler) assemble(p *poly.Poly) *qubo.Model {
	m := &qubo.Model{
		NumVars:     len(c.names),
		Names:       c.names,
		Roles:       c.roles,
		Variables:   c.variables,
		Constraints: c.constraints,
		Labels:      c.labels,
	}
	terms := make([]qubo.Term, 0, p.Len())
	for _, t := range p.Terms() {
		switch len(t.Vars) {
		case 0:
			m.Offset = t.Coeff
		case 1:
			terms = append(terms, qubo.Term{I: t.Vars[0], J: t.Vars[0], Coeff: t.Coeff})
		default:
			terms = append(terms, qubo.Term{I: t.Vars[0], J: t.Vars[1], Coeff: t.Coeff})
		}
	}
	m.Terms = qubo.Canonicalize(terms)
	return m
}
