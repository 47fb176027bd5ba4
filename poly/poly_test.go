package poly

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewMonomial(t *testing.T) {
	assert.Equal(t, Monomial{1, 3, 4}, NewMonomial(4, 1, 3, 4, 1))
	assert.Equal(t, Monomial{}, NewMonomial())
}

func TestMonomialTimes(t *testing.T) {
	m := NewMonomial(0, 2).Times(NewMonomial(1, 2, 5))
	assert.Equal(t, Monomial{0, 1, 2, 5}, m)
	assert.True(t, m.Contains(5))
	assert.False(t, m.Contains(3))
}

func TestIdempotentSquare(t *testing.T) {
	x := Var(0)
	sq := Square(x)
	assert.True(t, sq.Equal(x), "x^2 should be x, got %v", sq)
}

func TestMulCancellation(t *testing.T) {
	// (x0 - x1)(x0 + x1) = x0 - x1 since x^2 == x and cross terms cancel.
	p := Sum(Var(0), Var(1).Scale(-1))
	q := Sum(Var(0), Var(1))
	res := Mul(p, q)
	expected := Sum(Var(0), Var(1).Scale(-1))
	assert.True(t, res.Equal(expected), "got %v", res)
	assert.Equal(t, 1, res.Degree())
}

func TestSquareOfSum(t *testing.T) {
	// (x0 + x1 - 1)^2 = 1 - x0 - x1 + 2 x0 x1
	p := Sum(Var(0), Var(1), Const(-1))
	sq := Square(p)
	assert.Equal(t, 1.0, sq.Constant())
	assert.Equal(t, -1.0, sq.Coeff(Monomial{0}))
	assert.Equal(t, -1.0, sq.Coeff(Monomial{1}))
	assert.Equal(t, 2.0, sq.Coeff(Monomial{0, 1}))
	for _, state := range [][]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
		v := p.EvalState(state)
		assert.Equal(t, v*v, sq.EvalState(state))
	}
}

func TestTermsCanonicalOrder(t *testing.T) {
	p := New().
		AddTerm(Monomial{2, 3}, 1).
		AddTerm(Monomial{1}, 2).
		AddTerm(nil, 3).
		AddTerm(Monomial{0, 4}, 4).
		AddTerm(Monomial{0, 1, 2}, 5)
	var got []string
	for _, term := range p.Terms() {
		got = append(got, term.Vars.String())
	}
	assert.Equal(t, []string{"1", "x1", "x0*x4", "x2*x3", "x0*x1*x2"}, got)
	assert.Equal(t, 3, p.Degree())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, p.Vars())
}

func TestBounds(t *testing.T) {
	p := New().AddTerm(nil, 1).AddTerm(Monomial{0}, -2).AddTerm(Monomial{1}, 3)
	lo, hi := p.Bounds()
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 4.0, hi)
	assert.True(t, p.IsIntegral())
	assert.False(t, p.AddTerm(Monomial{2}, 0.5).IsIntegral())
}

func TestPow(t *testing.T) {
	p := Sum(Var(0), Var(1))
	cube := Pow(p, 3)
	for _, state := range [][]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
		v := p.EvalState(state)
		assert.Equal(t, v*v*v, cube.EvalState(state))
	}
	assert.True(t, Pow(p, 0).Equal(Const(1)))
	assert.Panics(t, func() { Pow(p, -1) })
}

func TestCodec(t *testing.T) {
	p := New().AddTerm(nil, 1.5).AddTerm(Monomial{0, 2}, -2).AddTerm(Monomial{1}, 3)
	data, err := json.Marshal(p)
	require.NoError(t, err)
	var p2 Poly
	require.NoError(t, json.Unmarshal(data, &p2))
	assert.True(t, p.Equal(&p2))

	data, err = yaml.Marshal(p)
	require.NoError(t, err)
	var p3 Poly
	require.NoError(t, yaml.Unmarshal(data, &p3))
	assert.True(t, p.Equal(&p3), "yaml round trip gave %v from\n%s", &p3, data)
}

func ExampleMul() {
	a := Sum(Var(0), Const(-1))
	fmt.Println(Mul(a, a))
	// Output: 1 + -1*x0
}
