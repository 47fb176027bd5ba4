package encode

import (
	"fmt"
	"testing"

	"github.com/crillab/goqubo/expr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter allocates consecutive indices and remembers their names.
type counter struct {
	names []string
}

func (c *counter) alloc(name string) int {
	c.names = append(c.names, name)
	return len(c.names) - 1
}

func encodeVar(t *testing.T, name string, d expr.Domain, opts Options) (*Encoding, *counter) {
	t.Helper()
	var c counter
	enc, err := New(expr.Variable{Name: name, Domain: d}, c.alloc, opts)
	require.NoError(t, err)
	return enc, &c
}

func TestLogWeights(t *testing.T) {
	tests := []struct {
		n       int
		weights []int
	}{
		{0, []int{0}},
		{1, []int{1}},
		{2, []int{1, 1}},
		{3, []int{1, 2}},
		{4, []int{1, 2, 1}},
		{7, []int{1, 2, 4}},
		{10, []int{1, 2, 4, 3}},
	}
	for _, test := range tests {
		assert.Equal(t, test.weights, logWeights(test.n), "weights for [0, %d]", test.n)
	}
}

func TestRoundTrip(t *testing.T) {
	domains := []expr.Domain{
		expr.Binary{},
		expr.Spin{},
		expr.IntegerRange{Lo: 0, Hi: 3},
		expr.IntegerRange{Lo: -2, Hi: 5, Encoding: expr.LogEncoding},
		expr.IntegerRange{Lo: 4, Hi: 4, Encoding: expr.LogEncoding},
		expr.IntegerRange{Lo: 1, Hi: 11, Encoding: expr.LogEncoding},
		expr.OneHot{Labels: []string{"red", "green", "blue"}},
	}
	for _, d := range domains {
		enc, _ := encodeVar(t, "v", d, Options{})
		value := enc.Value()
		for _, n := range enc.Values() {
			bits, err := enc.Assignment(n)
			require.NoError(t, err, "domain %v, value %d", d, n)
			decoded := enc.Decode(func(i int) bool { return bits[i] })
			assert.True(t, decoded.Valid, "domain %v, value %d", d, n)
			assert.Equal(t, n, decoded.Number, "domain %v", d)
			assert.Equal(t, float64(n), value.Eval(func(i int) bool { return bits[i] }), "value polynomial for %v", d)
			if enc.IsOneHot() {
				assert.Equal(t, 1.0, enc.Sum().Eval(func(i int) bool { return bits[i] }))
			}
		}
	}
}

func TestOneHotInteger(t *testing.T) {
	enc, c := encodeVar(t, "v", expr.IntegerRange{Lo: 0, Hi: 3}, Options{})
	assert.Equal(t, OneHotScheme, enc.Scheme)
	assert.Equal(t, []int{0, 1, 2, 3}, enc.Bits)
	assert.Equal(t, []string{"v[0]", "v[1]", "v[2]", "v[3]"}, c.names)
	assert.Equal(t, DefaultOneHotStrength, enc.Strength)
	assert.Equal(t, "onehot(v)", enc.ConstraintLabel())
}

func TestIntegerEncodingOption(t *testing.T) {
	enc, c := encodeVar(t, "v", expr.IntegerRange{Lo: 0, Hi: 5}, Options{Integer: expr.LogEncoding})
	assert.Equal(t, LogScheme, enc.Scheme)
	assert.Equal(t, []string{"v.0", "v.1", "v.2"}, c.names)
	assert.False(t, enc.IsOneHot())

	enc, _ = encodeVar(t, "v", expr.IntegerRange{Lo: 0, Hi: 5, Encoding: expr.OneHotEncoding}, Options{Integer: expr.LogEncoding})
	assert.Equal(t, OneHotScheme, enc.Scheme)
}

func TestStrength(t *testing.T) {
	enc, _ := encodeVar(t, "c", expr.OneHot{Labels: []string{"a", "b"}}, Options{OneHotStrength: 12})
	assert.Equal(t, 12.0, enc.Strength)
	enc, _ = encodeVar(t, "c", expr.OneHot{Labels: []string{"a", "b"}, Strength: 3}, Options{OneHotStrength: 12})
	assert.Equal(t, 3.0, enc.Strength)
}

func TestBitNamesArePure(t *testing.T) {
	v := expr.Variable{Name: "color", Domain: expr.OneHot{Labels: []string{"red", "green"}}}
	n1, err := BitNames(v, Options{})
	require.NoError(t, err)
	n2, err := BitNames(v, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"color[red]", "color[green]"}, n1)
	assert.Equal(t, n1, n2)
}

func TestDecodeInvalid(t *testing.T) {
	enc, _ := encodeVar(t, "c", expr.OneHot{Labels: []string{"a", "b", "c"}}, Options{})
	v := enc.Decode(func(i int) bool { return i != 0 })
	assert.Equal(t, Value{Number: 1, Label: "b", Valid: false}, v)
	v = enc.Decode(func(i int) bool { return false })
	assert.Equal(t, Value{}, v)
	assert.Equal(t, "0 (invalid)", v.String())
}

func TestIndicator(t *testing.T) {
	enc, _ := encodeVar(t, "c", expr.OneHot{Labels: []string{"a", "b"}}, Options{})
	p, err := enc.Indicator(1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, p.Vars())
	_, err = enc.Indicator(2)
	require.Error(t, err)

	bin, _ := encodeVar(t, "x", expr.Binary{}, Options{})
	_, err = bin.Indicator(0)
	require.Error(t, err)
	_, err = bin.Truth()
	require.NoError(t, err)
}

func TestUnsupported(t *testing.T) {
	domains := []expr.Domain{
		expr.IntegerRange{Lo: 3, Hi: 2},
		expr.IntegerRange{Lo: 0, Hi: 2, Encoding: "unary"},
		expr.IntegerRange{Lo: 0, Hi: 2, Strength: -1},
		expr.OneHot{},
		expr.OneHot{Labels: []string{"a", "a"}},
	}
	for _, d := range domains {
		_, err := New(expr.Variable{Name: "v", Domain: d}, func(string) int { return 0 }, Options{})
		var unsupported *expr.UnsupportedDomainError
		require.True(t, errors.As(err, &unsupported), "domain %v: got %v", d, err)
		assert.True(t, expr.IsUserError(err))
	}
}

func TestAssignmentOutOfRange(t *testing.T) {
	enc, _ := encodeVar(t, "v", expr.IntegerRange{Lo: 0, Hi: 3, Encoding: expr.LogEncoding}, Options{})
	_, err := enc.Assignment(4)
	require.Error(t, err)
	spin, _ := encodeVar(t, "s", expr.Spin{}, Options{})
	_, err = spin.Assignment(0)
	require.Error(t, err)
}

func ExampleNew() {
	next := 0
	alloc := func(name string) int {
		next++
		return next - 1
	}
	enc, err := New(expr.Variable{Name: "v", Domain: expr.IntegerRange{Lo: 2, Hi: 7, Encoding: expr.LogEncoding}}, alloc, Options{})
	if err != nil {
		fmt.Printf("could not encode: %v", err)
		return
	}
	fmt.Println(enc.Weights)
	fmt.Println(enc.Value())
	// Output:
	// [1 2 2]
	// 2 + 1*x0 + 2*x1 + 2*x2
}
