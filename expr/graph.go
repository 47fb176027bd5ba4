package expr

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

// A NodeID is the index of a node in its Graph.
type NodeID int32

// Kind is the kind of an expression node.
type Kind uint8

const (
	// KindConst is a numeric constant.
	KindConst Kind = iota
	// KindVar is a reference to a variable, or to one label of a categorical variable.
	KindVar
	// KindPlaceholder is a named value bound at compile time.
	KindPlaceholder
	// KindAdd is the sum of its children.
	KindAdd
	// KindMul is the product of its children.
	KindMul
	// KindConstraint is a named predicate, worth its scaled penalty in the objective.
	KindConstraint
	// KindLabel is a named subexpression, used for energy breakdowns.
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	case KindPlaceholder:
		return "placeholder"
	case KindAdd:
		return "add"
	case KindMul:
		return "mul"
	case KindConstraint:
		return "constraint"
	case KindLabel:
		return "label"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// NoSelector is the Selector of a node referring to the numeric value of a variable.
const NoSelector = -1

// A Node is an immutable expression node. Its fields are meaningful depending on its Kind.
type Node struct {
	Kind      Kind
	Value     float64   // KindConst
	Var       VarID     // KindVar
	Selector  int       // KindVar: index of the selected label, or NoSelector
	Name      string    // KindPlaceholder: name; KindConstraint, KindLabel: label
	Children  []NodeID  // KindAdd, KindMul, KindLabel
	Predicate Predicate // KindConstraint
	Strength  NodeID    // KindConstraint
}

// A Graph is an arena of expression nodes and of the variables they refer to.
// Nodes are addressed by NodeID and never modified once added, so a node can be
// shared by several parents. Once frozen, a graph cannot be modified anymore
// and is safe for concurrent use.
type Graph struct {
	nodes  []Node
	vars   []Variable
	byName map[string]VarID
	labels map[string]NodeID
	consts map[float64]NodeID
	errs   BuildErrors
	frozen atomic.Bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		byName: make(map[string]VarID),
		labels: make(map[string]NodeID),
		consts: make(map[float64]NodeID),
	}
}

func (g *Graph) mutable() {
	if g.frozen.Load() {
		panic("expr: graph is frozen")
	}
}

func (g *Graph) add(n Node) NodeID {
	g.mutable()
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

func (g *Graph) fail(err error) {
	g.errs = append(g.errs, err)
}

// valid checks ids belong to g. Invalid ids are recorded as errors.
func (g *Graph) valid(ids ...NodeID) bool {
	for _, id := range ids {
		if id < 0 || int(id) >= len(g.nodes) {
			g.fail(errors.Errorf("invalid node id %d", id))
			return false
		}
	}
	return true
}

// Freeze makes g immutable. Any later attempt to modify g panics.
// It may be called concurrently, and several times.
func (g *Graph) Freeze() {
	g.frozen.Store(true)
}

// Frozen is true iff g was frozen.
func (g *Graph) Frozen() bool {
	return g.frozen.Load()
}

// Err returns the errors encountered while building g, if any.
func (g *Graph) Err() error {
	if len(g.errs) == 0 {
		return nil
	}
	return g.errs
}

// Len is the number of nodes in g.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node associated with id. Its Children must not be modified.
func (g *Graph) Node(id NodeID) Node {
	return g.nodes[id]
}

// Var returns the variable associated with id.
func (g *Graph) Var(id VarID) Variable {
	return g.vars[id]
}

// Vars returns all variables of g, in declaration order.
func (g *Graph) Vars() []Variable {
	res := make([]Variable, len(g.vars))
	copy(res, g.vars)
	return res
}

// Lookup returns the variable with the given name.
func (g *Graph) Lookup(name string) (Variable, bool) {
	id, ok := g.byName[name]
	if !ok {
		return Variable{}, false
	}
	return g.vars[id], true
}

// Declare declares a variable named name over the domain d.
// Declaring the same name twice with the same domain returns the same variable.
func (g *Graph) Declare(name string, d Domain) VarID {
	g.mutable()
	if id, ok := g.byName[name]; ok {
		if prev := g.vars[id].Domain; !SameDomain(prev, d) {
			g.fail(&ConflictingDeclarationError{Var: name, Previous: prev, Domain: d})
		}
		return id
	}
	if oh, ok := d.(OneHot); ok {
		oh.Labels = append([]string(nil), oh.Labels...)
		d = oh
	}
	id := VarID(len(g.vars))
	g.vars = append(g.vars, Variable{ID: id, Name: name, Domain: d})
	g.byName[name] = id
	return id
}

// Binary declares a {0, 1} variable.
func (g *Graph) Binary(name string) VarID {
	return g.Declare(name, Binary{})
}

// Spin declares a {-1, +1} variable.
func (g *Graph) Spin(name string) VarID {
	return g.Declare(name, Spin{})
}

// Integer declares a variable ranging over [lo, hi].
func (g *Graph) Integer(name string, lo, hi int) VarID {
	return g.Declare(name, IntegerRange{Lo: lo, Hi: hi})
}

// Category declares a categorical variable whose value is one of labels.
func (g *Graph) Category(name string, labels ...string) VarID {
	return g.Declare(name, OneHot{Labels: labels})
}

// Ref returns a node standing for the value of v.
// The value of a categorical variable is the index of its selected label.
func (g *Graph) Ref(v VarID) NodeID {
	if int(v) < 0 || int(v) >= len(g.vars) {
		g.mutable()
		g.fail(errors.Errorf("invalid variable id %d", v))
		return g.Const(0)
	}
	return g.add(Node{Kind: KindVar, Var: v, Selector: NoSelector})
}

// Is returns a node worth 1 when the categorical variable v takes the value label, 0 otherwise.
func (g *Graph) Is(v VarID, label string) NodeID {
	g.mutable()
	if int(v) < 0 || int(v) >= len(g.vars) {
		g.fail(errors.Errorf("invalid variable id %d", v))
		return g.Const(0)
	}
	variable := g.vars[v]
	d, ok := variable.Domain.(OneHot)
	if !ok {
		g.fail(&UnsupportedDomainError{Var: variable.Name, Domain: variable.Domain, Reason: "label selection requires a categorical variable"})
		return g.Const(0)
	}
	idx := d.LabelIndex(label)
	if idx < 0 {
		g.fail(&UnknownLabelError{Var: variable.Name, Label: label})
		return g.Const(0)
	}
	return g.add(Node{Kind: KindVar, Var: v, Selector: idx})
}

// Const returns a constant node. Equal constants share the same node.
func (g *Graph) Const(c float64) NodeID {
	if id, ok := g.consts[c]; ok {
		return id
	}
	id := g.add(Node{Kind: KindConst, Value: c})
	g.consts[c] = id
	return id
}

// Placeholder returns a node whose value is bound at compile time.
func (g *Graph) Placeholder(name string) NodeID {
	return g.add(Node{Kind: KindPlaceholder, Name: name})
}

func (g *Graph) nary(k Kind, xs []NodeID) NodeID {
	g.mutable()
	if !g.valid(xs...) {
		return g.Const(0)
	}
	children := make([]NodeID, len(xs))
	copy(children, xs)
	return g.add(Node{Kind: k, Children: children})
}

// Add returns the sum of xs. The sum of no term is 0.
func (g *Graph) Add(xs ...NodeID) NodeID {
	return g.nary(KindAdd, xs)
}

// Mul returns the product of xs. The product of no factor is 1.
func (g *Graph) Mul(xs ...NodeID) NodeID {
	return g.nary(KindMul, xs)
}

// Neg returns -x.
func (g *Graph) Neg(x NodeID) NodeID {
	return g.Mul(g.Const(-1), x)
}

// Sub returns x - y.
func (g *Graph) Sub(x, y NodeID) NodeID {
	return g.Add(x, g.Neg(y))
}

// Scale returns c * x.
func (g *Graph) Scale(c float64, x NodeID) NodeID {
	return g.Mul(g.Const(c), x)
}

// Pow returns x^n. n must be non-negative.
func (g *Graph) Pow(x NodeID, n int) NodeID {
	if n < 0 {
		g.mutable()
		g.fail(errors.Errorf("negative exponent %d", n))
		return g.Const(0)
	}
	xs := make([]NodeID, n)
	for i := range xs {
		xs[i] = x
	}
	return g.Mul(xs...)
}

func (g *Graph) register(label string, id NodeID) {
	if _, ok := g.labels[label]; ok {
		g.fail(DuplicateLabelError(label))
		return
	}
	g.labels[label] = id
}

// Constraint returns a node standing for the penalty of the predicate p,
// scaled by strength. The label must be unique in the graph.
func (g *Graph) Constraint(label string, p Predicate, strength NodeID) NodeID {
	g.mutable()
	if p == nil {
		g.fail(&MalformedPredicateError{Label: label, Reason: "nil predicate"})
		return g.Const(0)
	}
	if !g.valid(append(p.Operands(), strength)...) {
		return g.Const(0)
	}
	id := g.add(Node{Kind: KindConstraint, Name: label, Predicate: p, Strength: strength})
	g.register(label, id)
	return id
}

// Label names the subexpression x so that its contribution to the energy
// can be reported after solving. The label must be unique in the graph.
func (g *Graph) Label(label string, x NodeID) NodeID {
	g.mutable()
	if !g.valid(x) {
		return g.Const(0)
	}
	id := g.add(Node{Kind: KindLabel, Name: label, Children: []NodeID{x}})
	g.register(label, id)
	return id
}
