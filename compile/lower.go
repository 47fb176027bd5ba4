package compile

import (
	"fmt"
	"math"
	"strings"

	"github.com/crillab/goqubo/bf"
	"github.com/crillab/goqubo/encode"
	"github.com/crillab/goqubo/expr"
	"github.com/crillab/goqubo/poly"
	"github.com/crillab/goqubo/qubo"
	"github.com/pkg/errors"
)

// lower returns the polynomial standing for node id.
// Returned polynomials are shared through the memo and must not be modified.
func (c *compiler) lower(id expr.NodeID) (*poly.Poly, error) {
	if p, ok := c.memo[id]; ok {
		return p, nil
	}
	n := c.g.Node(id)
	var (
		p   *poly.Poly
		err error
	)
	switch n.Kind {
	case expr.KindConst:
		p = poly.Const(n.Value)
	case expr.KindPlaceholder:
		p = poly.Const(c.bindings[n.Name])
	case expr.KindVar:
		p, err = c.lowerVar(n)
	case expr.KindAdd:
		p = poly.New()
		for _, child := range n.Children {
			q, err := c.lower(child)
			if err != nil {
				return nil, err
			}
			p.Add(q)
		}
	case expr.KindMul:
		p = poly.Const(1)
		for _, child := range n.Children {
			if k := c.g.Node(child).Kind; k == expr.KindConstraint {
				return nil, &expr.MalformedPredicateError{Label: c.g.Node(child).Name, Reason: "constraint used as a factor"}
			}
			q, err := c.lower(child)
			if err != nil {
				return nil, err
			}
			p = poly.Mul(p, q)
		}
	case expr.KindLabel:
		p, err = c.lower(n.Children[0])
		if err == nil {
			err = c.label(n.Name, p)
		}
	case expr.KindConstraint:
		p, err = c.lowerConstraint(n)
	default:
		err = errors.Errorf("unknown node kind %v", n.Kind)
	}
	if err != nil {
		return nil, err
	}
	c.memo[id] = p
	return p, nil
}

func (c *compiler) label(label string, p *poly.Poly) error {
	if c.used[label] {
		return expr.DuplicateLabelError(label)
	}
	c.used[label] = true
	c.labels = append(c.labels, qubo.Subexpression{Label: label, Poly: p.Clone()})
	return nil
}

func (c *compiler) lowerVar(n expr.Node) (*poly.Poly, error) {
	enc, ok := c.encodings[n.Var]
	if !ok {
		return nil, errors.Errorf("variable #%d was not materialized", n.Var)
	}
	if n.Selector == expr.NoSelector {
		return enc.Value(), nil
	}
	return enc.Indicator(n.Selector)
}

// strength returns the constant value of a constraint strength.
func (c *compiler) strength(n expr.Node) (float64, error) {
	p, err := c.lower(n.Strength)
	if err != nil {
		return 0, err
	}
	if p.Degree() > 0 {
		return 0, &expr.MalformedPredicateError{Label: n.Name, Reason: "strength is not a constant"}
	}
	s := p.Constant()
	if !(s > 0) || math.IsInf(s, 0) {
		return 0, &expr.MalformedPredicateError{Label: n.Name, Reason: fmt.Sprintf("strength %v is not positive", s)}
	}
	return s, nil
}

// lowerConstraint records the constraint of node n and returns its scaled penalty.
func (c *compiler) lowerConstraint(n expr.Node) (*poly.Poly, error) {
	strength, err := c.strength(n)
	if err != nil {
		return nil, err
	}
	cons := qubo.Constraint{Label: n.Name, Strength: strength}
	switch pred := n.Predicate.(type) {
	case expr.Equal:
		err = c.lowerEqual(&cons, pred)
	case expr.LessEq:
		err = c.lowerInequality(&cons, pred.LHS, pred.RHS, qubo.OpLe)
	case expr.GreaterEq:
		err = c.lowerInequality(&cons, pred.LHS, pred.RHS, qubo.OpGe)
	case expr.Logic:
		err = c.lowerLogic(&cons, pred)
	default:
		err = &expr.MalformedPredicateError{Label: n.Name, Reason: fmt.Sprintf("unknown predicate type %T", n.Predicate)}
	}
	if err != nil {
		return nil, err
	}
	if err := c.record(cons); err != nil {
		return nil, err
	}
	return cons.Penalty.Clone().Scale(strength), nil
}

// difference returns lhs - rhs and the condition it must satisfy,
// its constant part being moved to the right-hand side.
func (c *compiler) difference(lhs, rhs expr.NodeID, op qubo.Op) (*poly.Poly, qubo.Condition, error) {
	l, err := c.lower(lhs)
	if err != nil {
		return nil, qubo.Condition{}, err
	}
	r, err := c.lower(rhs)
	if err != nil {
		return nil, qubo.Condition{}, err
	}
	d := poly.Sum(l).AddScaled(r, -1)
	k := d.Constant()
	cond := qubo.Condition{Poly: d.Clone().AddTerm(nil, -k), Op: op, RHS: -k}
	return d, cond, nil
}

func (c *compiler) lowerEqual(cons *qubo.Constraint, pred expr.Equal) error {
	d, cond, err := c.difference(pred.LHS, pred.RHS, qubo.OpEq)
	if err != nil {
		return err
	}
	cons.Condition = cond
	cons.Penalty = poly.Square(d)
	cons.Description = c.describeCondition(cond)
	return nil
}

// lowerInequality lowers lhs <= rhs, or lhs >= rhs, with a slack variable s:
// the penalty is (d + s)^2, d being lhs - rhs (resp. rhs - lhs) and s ranging
// over [0, -min(d)].
func (c *compiler) lowerInequality(cons *qubo.Constraint, lhs, rhs expr.NodeID, op qubo.Op) error {
	d, cond, err := c.difference(lhs, rhs, op)
	if err != nil {
		return err
	}
	cons.Condition = cond
	cons.Description = c.describeCondition(cond)
	if !d.IsIntegral() {
		return &expr.MalformedPredicateError{Label: cons.Label, Reason: "inequality with non integer coefficients"}
	}
	if op == qubo.OpGe {
		d.Scale(-1)
	}
	lo, hi := d.Bounds()
	switch {
	case hi <= 0:
		cons.Penalty = poly.New()
	case lo > 0:
		c.log.WithField("constraint", cons.Label).Warn("constraint cannot be satisfied")
		cons.Penalty = poly.Square(d)
	default:
		v := expr.Variable{
			Name:   "slack(" + cons.Label + ")",
			Domain: expr.IntegerRange{Lo: 0, Hi: int(-lo), Encoding: expr.LogEncoding},
		}
		slack, err := encode.New(v, func(name string) int { return c.alloc(name, qubo.RoleSlack) }, encode.Options{})
		if err != nil {
			return err
		}
		cons.Penalty = poly.Square(d.Add(slack.Value()))
	}
	return nil
}

func (c *compiler) lowerLogic(cons *qubo.Constraint, pred expr.Logic) error {
	if pred.Formula == nil {
		return &expr.MalformedPredicateError{Label: cons.Label, Reason: "nil formula"}
	}
	resolve := func(name string) (*poly.Poly, error) {
		v, ok := c.g.Lookup(name)
		if !ok {
			return nil, &expr.MalformedPredicateError{Label: cons.Label, Reason: "unknown variable " + name}
		}
		p, err := c.encodings[v.ID].Truth()
		if err != nil {
			return nil, &expr.MalformedPredicateError{Label: cons.Label, Reason: err.Error()}
		}
		return p, nil
	}
	cons.Description = pred.Formula.String()
	if names, ok := bf.AsUnique(pred.Formula); ok {
		sum := poly.New()
		for _, name := range names {
			p, err := resolve(name)
			if err != nil {
				return err
			}
			sum.Add(p)
		}
		cons.Condition = qubo.Condition{Poly: sum, Op: qubo.OpEq, RHS: 1}
		cons.Penalty = poly.Square(poly.Sum(sum, poly.Const(-1)))
		return nil
	}
	penalty, err := bf.Penalty(pred.Formula, resolve)
	if err != nil {
		return err
	}
	cons.Condition = qubo.Condition{Poly: poly.Const(1).AddScaled(penalty, -1), Op: qubo.OpEq, RHS: 1}
	cons.Penalty = penalty
	return nil
}

// describe writes p with variable names instead of indices.
func (c *compiler) describe(p *poly.Poly) string {
	terms := p.Terms()
	if len(terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range terms {
		if i > 0 {
			sb.WriteString(" + ")
		}
		if len(t.Vars) == 0 || t.Coeff != 1 {
			fmt.Fprintf(&sb, "%v", t.Coeff)
			if len(t.Vars) > 0 {
				sb.WriteByte('*')
			}
		}
		for j, v := range t.Vars {
			if j > 0 {
				sb.WriteByte('*')
			}
			sb.WriteString(c.names[v])
		}
	}
	return sb.String()
}

func (c *compiler) describeCondition(cond qubo.Condition) string {
	return fmt.Sprintf("%s %s %v", c.describe(cond.Poly), cond.Op, cond.RHS)
}
