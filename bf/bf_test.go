package bf

import (
	"fmt"
	"testing"

	"github.com/crillab/goqubo/poly"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexResolver maps each name to a distinct binary variable, in order.
func indexResolver(names []string) Resolver {
	idx := make(map[string]int, len(names))
	for i, name := range names {
		idx[name] = i
	}
	return func(name string) (*poly.Poly, error) {
		i, ok := idx[name]
		if !ok {
			return nil, errors.Errorf("unknown variable %q", name)
		}
		return poly.Var(i), nil
	}
}

// checkIndicator verifies that the indicator of f matches f.Eval on every assignment.
func checkIndicator(t *testing.T, f Formula) {
	t.Helper()
	names := Vars(f)
	ind, err := Indicator(f, indexResolver(names))
	require.NoError(t, err)
	pen, err := Penalty(f, indexResolver(names))
	require.NoError(t, err)
	for bits := 0; bits < 1<<len(names); bits++ {
		model := make(map[string]bool)
		state := make([]bool, len(names))
		for i, name := range names {
			state[i] = bits&(1<<i) != 0
			model[name] = state[i]
		}
		expected := 0.0
		if f.Eval(model) {
			expected = 1
		}
		assert.Equal(t, expected, ind.EvalState(state), "indicator of %v on %v", f, model)
		assert.Equal(t, 1-expected, pen.EvalState(state), "penalty of %v on %v", f, model)
	}
}

func TestIndicator(t *testing.T) {
	formulas := []Formula{
		True,
		False,
		Var("a"),
		Not(Var("a")),
		And(Var("a"), Var("b"), Not(Var("c"))),
		Or(Var("a"), Not(Var("b")), Var("c")),
		Implies(Var("a"), Var("b")),
		Eq(Var("a"), Not(Var("b"))),
		Xor(Var("a"), Var("b")),
		Unique("a", "b", "c", "d"),
		Not(Implies(
			And(Var("a"), Var("b")), And(Or(Var("c"), Not(Var("d"))),
				Not(And(Var("c"), Eq(Var("e"), Not(Var("c"))))), Not(Xor(Var("a"), Var("b")))))),
		And(),
		Or(),
	}
	for _, f := range formulas {
		checkIndicator(t, f)
	}
}

func TestIndicatorUnknownVar(t *testing.T) {
	_, err := Indicator(And(Var("a"), Var("z")), indexResolver([]string{"a"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"z"`)
}

func TestUnique(t *testing.T) {
	f := Unique("a", "b", "c")
	names, ok := AsUnique(f)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, names)
	_, ok = AsUnique(And(f))
	assert.False(t, ok)
	assert.True(t, f.Eval(map[string]bool{"a": false, "b": true, "c": false}))
	assert.False(t, f.Eval(map[string]bool{"a": true, "b": true, "c": false}))
}

func TestString(t *testing.T) {
	f := And(Or(Var("a"), Not(Var("b"))), Not(Var("c")))
	const expected = "and(or(a, not(b)), not(c))"
	if f.String() != expected {
		t.Errorf("string representation of formula not as expected: wanted %q, got %q", expected, f.String())
	}
}

func TestEvalMissingBinding(t *testing.T) {
	assert.Panics(t, func() { Var("a").Eval(map[string]bool{}) })
}

func ExampleIndicator() {
	f := Or(Var("a"), Var("b"))
	ind, err := Indicator(f, indexResolver([]string{"a", "b"}))
	if err != nil {
		fmt.Printf("could not compute indicator: %v", err)
		return
	}
	fmt.Println(ind)
	// Output: 1*x0 + 1*x1 + -1*x0*x1
}
