// Package encode maps variable domains to binary encoding variables.
//
// Every variable of a model is materialized as an ordered list of binary
// encoding variables (bits), along with:
//
//   - the polynomial, over those bits, that stands for the value of the variable,
//   - for one-hot schemes, the exactly-one condition the bits must satisfy,
//   - a total decoding function from bit assignments back to domain values.
//
// The mapping is pure: a given variable name and domain always yields the same
// bit names, in the same order.
package encode

import (
	"fmt"
	"math/bits"

	"github.com/crillab/goqubo/expr"
	"github.com/crillab/goqubo/poly"
	"github.com/pkg/errors"
)

// DefaultOneHotStrength is the strength of injected exactly-one constraints
// when neither the domain nor the compiler options provide one.
const DefaultOneHotStrength = 5.0

// Kind is the kind of domain an encoding was built for.
type Kind string

// Possible kinds.
const (
	KindBinary   Kind = "binary"
	KindSpin     Kind = "spin"
	KindInteger  Kind = "integer"
	KindCategory Kind = "category"
)

// Scheme is the way a domain is represented with bits.
type Scheme string

// Possible schemes.
const (
	Identity     Scheme = "identity"
	SpinScheme   Scheme = "spin"
	OneHotScheme Scheme = "onehot"
	LogScheme    Scheme = "log"
)

// Options tune the way domains are encoded.
type Options struct {
	// Integer is the encoding of integer ranges that do not specify one.
	// The default is one-hot.
	Integer expr.IntegerEncoding
	// OneHotStrength is the strength of exactly-one constraints for domains
	// that do not specify one. 0 means DefaultOneHotStrength.
	OneHotStrength float64
}

// An Allocator returns the index of a fresh encoding variable with the given name.
type Allocator func(name string) int

// An Encoding describes how a variable is represented with bits.
// It only holds data, so that it can be serialized along with a compiled model.
type Encoding struct {
	Name     string   `json:"name" yaml:"name"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Scheme   Scheme   `json:"scheme" yaml:"scheme"`
	Lo       int      `json:"lo,omitempty" yaml:"lo,omitempty"`
	Hi       int      `json:"hi,omitempty" yaml:"hi,omitempty"`
	Labels   []string `json:"labels,omitempty" yaml:"labels,omitempty,flow"`
	Bits     []int    `json:"bits" yaml:"bits,flow"`
	Weights  []int    `json:"weights,omitempty" yaml:"weights,omitempty,flow"`
	Strength float64  `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// New encodes the variable v, allocating its bits with alloc.
func New(v expr.Variable, alloc Allocator, opts Options) (*Encoding, error) {
	enc, names, err := plan(v, opts)
	if err != nil {
		return nil, err
	}
	enc.Bits = make([]int, len(names))
	for i, name := range names {
		enc.Bits[i] = alloc(name)
	}
	return enc, nil
}

// BitNames returns the names of the bits v would be encoded with.
func BitNames(v expr.Variable, opts Options) ([]string, error) {
	_, names, err := plan(v, opts)
	return names, err
}

func unsupported(v expr.Variable, format string, args ...interface{}) error {
	return &expr.UnsupportedDomainError{Var: v.Name, Domain: v.Domain, Reason: fmt.Sprintf(format, args...)}
}

func strength(own float64, opts Options) float64 {
	switch {
	case own > 0:
		return own
	case opts.OneHotStrength > 0:
		return opts.OneHotStrength
	default:
		return DefaultOneHotStrength
	}
}

// plan computes everything but the bit indices.
func plan(v expr.Variable, opts Options) (*Encoding, []string, error) {
	switch d := v.Domain.(type) {
	case expr.Binary:
		return &Encoding{Name: v.Name, Kind: KindBinary, Scheme: Identity}, []string{v.Name}, nil
	case expr.Spin:
		return &Encoding{Name: v.Name, Kind: KindSpin, Scheme: SpinScheme, Lo: -1, Hi: 1}, []string{v.Name}, nil
	case expr.IntegerRange:
		if d.Hi < d.Lo {
			return nil, nil, unsupported(v, "empty range")
		}
		if d.Strength < 0 {
			return nil, nil, unsupported(v, "negative strength %v", d.Strength)
		}
		encoding := d.Encoding
		if encoding == expr.DefaultEncoding {
			encoding = opts.Integer
		}
		switch encoding {
		case expr.DefaultEncoding, expr.OneHotEncoding:
			enc := &Encoding{Name: v.Name, Kind: KindInteger, Scheme: OneHotScheme, Lo: d.Lo, Hi: d.Hi, Strength: strength(d.Strength, opts)}
			names := make([]string, d.Hi-d.Lo+1)
			for i := range names {
				names[i] = fmt.Sprintf("%s[%d]", v.Name, d.Lo+i)
			}
			return enc, names, nil
		case expr.LogEncoding:
			enc := &Encoding{Name: v.Name, Kind: KindInteger, Scheme: LogScheme, Lo: d.Lo, Hi: d.Hi, Weights: logWeights(d.Hi - d.Lo)}
			names := make([]string, len(enc.Weights))
			for i := range names {
				names[i] = fmt.Sprintf("%s.%d", v.Name, i)
			}
			return enc, names, nil
		default:
			return nil, nil, unsupported(v, "unknown integer encoding %q", encoding)
		}
	case expr.OneHot:
		if len(d.Labels) == 0 {
			return nil, nil, unsupported(v, "no label")
		}
		if d.Strength < 0 {
			return nil, nil, unsupported(v, "negative strength %v", d.Strength)
		}
		seen := make(map[string]struct{}, len(d.Labels))
		names := make([]string, len(d.Labels))
		for i, label := range d.Labels {
			if _, ok := seen[label]; ok {
				return nil, nil, unsupported(v, "duplicate label %q", label)
			}
			seen[label] = struct{}{}
			names[i] = fmt.Sprintf("%s[%s]", v.Name, label)
		}
		labels := make([]string, len(d.Labels))
		copy(labels, d.Labels)
		enc := &Encoding{Name: v.Name, Kind: KindCategory, Scheme: OneHotScheme, Lo: 0, Hi: len(labels) - 1, Labels: labels, Strength: strength(d.Strength, opts)}
		return enc, names, nil
	default:
		return nil, nil, unsupported(v, "unknown domain type %T", v.Domain)
	}
}

// logWeights returns the weights of a bounded-coefficient binary encoding of [0, n]:
// 1, 2, 4, ..., 2^(k-2), then n - (2^(k-1) - 1), so that every sum of weights is
// within the range and every value of the range is reachable.
func logWeights(n int) []int {
	if n == 0 {
		return []int{0}
	}
	k := bits.Len(uint(n))
	weights := make([]int, k)
	for i := 0; i < k-1; i++ {
		weights[i] = 1 << i
	}
	weights[k-1] = n - (1<<(k-1) - 1)
	return weights
}

// IsOneHot is true iff the bits of e must satisfy an exactly-one condition.
func (e *Encoding) IsOneHot() bool {
	return e.Scheme == OneHotScheme
}

// ConstraintLabel is the label of the exactly-one constraint of a one-hot encoding.
func (e *Encoding) ConstraintLabel() string {
	return "onehot(" + e.Name + ")"
}

// Value returns the polynomial over the bits of e that equals the value of the variable.
// The value of a categorical variable is the index of its selected label.
func (e *Encoding) Value() *poly.Poly {
	res := poly.New()
	switch e.Scheme {
	case Identity:
		res.AddTerm(poly.Monomial{e.Bits[0]}, 1)
	case SpinScheme:
		res.AddTerm(poly.Monomial{e.Bits[0]}, 2).AddTerm(nil, -1)
	case OneHotScheme:
		for i, b := range e.Bits {
			res.AddTerm(poly.Monomial{b}, float64(e.Lo+i))
		}
	case LogScheme:
		res.AddTerm(nil, float64(e.Lo))
		for i, b := range e.Bits {
			res.AddTerm(poly.Monomial{b}, float64(e.Weights[i]))
		}
	}
	return res
}

// Indicator returns the polynomial that is 1 iff the label of index idx is selected.
func (e *Encoding) Indicator(idx int) (*poly.Poly, error) {
	if e.Kind != KindCategory {
		return nil, errors.Errorf("variable %q is not categorical", e.Name)
	}
	if idx < 0 || idx >= len(e.Bits) {
		return nil, errors.Errorf("variable %q has no label #%d", e.Name, idx)
	}
	return poly.Var(e.Bits[idx]), nil
}

// Truth returns the polynomial that is 1 iff a binary variable is 1 or a spin is +1.
func (e *Encoding) Truth() (*poly.Poly, error) {
	if e.Kind != KindBinary && e.Kind != KindSpin {
		return nil, errors.Errorf("variable %q is neither binary nor spin", e.Name)
	}
	return poly.Var(e.Bits[0]), nil
}

// Sum returns the sum of the bits of e. One-hot encodings require it to be 1.
func (e *Encoding) Sum() *poly.Poly {
	res := poly.New()
	for _, b := range e.Bits {
		res.AddTerm(poly.Monomial{b}, 1)
	}
	return res
}

// A Value is a decoded domain value.
type Value struct {
	Number int    `json:"number" yaml:"number"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	// Valid is false when the bits violate the exactly-one condition of the encoding.
	Valid bool `json:"valid" yaml:"valid"`
}

func (v Value) String() string {
	var s string
	if v.Label != "" {
		s = v.Label
	} else {
		s = fmt.Sprint(v.Number)
	}
	if !v.Valid {
		s += " (invalid)"
	}
	return s
}

// Decode returns the value of the variable given the value of each bit.
// It never fails: when several bits of a one-hot encoding are set, the first one wins;
// when none is set, the zero Value is returned. In both cases, the Value is not Valid.
func (e *Encoding) Decode(bit func(i int) bool) Value {
	switch e.Scheme {
	case Identity:
		if bit(e.Bits[0]) {
			return Value{Number: 1, Valid: true}
		}
		return Value{Number: 0, Valid: true}
	case SpinScheme:
		if bit(e.Bits[0]) {
			return Value{Number: 1, Valid: true}
		}
		return Value{Number: -1, Valid: true}
	case LogScheme:
		n := e.Lo
		for i, b := range e.Bits {
			if bit(b) {
				n += e.Weights[i]
			}
		}
		return Value{Number: n, Valid: true}
	case OneHotScheme:
		first, nb := -1, 0
		for i, b := range e.Bits {
			if bit(b) {
				nb++
				if first == -1 {
					first = i
				}
			}
		}
		if first == -1 {
			return Value{}
		}
		v := Value{Number: e.Lo + first, Valid: nb == 1}
		if e.Kind == KindCategory {
			v.Label = e.Labels[first]
		}
		return v
	default:
		return Value{}
	}
}

// Values returns every value of the domain, in increasing order.
func (e *Encoding) Values() []int {
	switch e.Scheme {
	case Identity:
		return []int{0, 1}
	case SpinScheme:
		return []int{-1, 1}
	default:
		res := make([]int, e.Hi-e.Lo+1)
		for i := range res {
			res[i] = e.Lo + i
		}
		return res
	}
}

// Assignment returns the value of each bit of e representing the domain value n.
// For categorical variables, n is the index of the label.
func (e *Encoding) Assignment(n int) (map[int]bool, error) {
	res := make(map[int]bool, len(e.Bits))
	for _, b := range e.Bits {
		res[b] = false
	}
	switch e.Scheme {
	case Identity:
		if n != 0 && n != 1 {
			return nil, errors.Errorf("value %d out of binary domain for %q", n, e.Name)
		}
		res[e.Bits[0]] = n == 1
	case SpinScheme:
		if n != -1 && n != 1 {
			return nil, errors.Errorf("value %d out of spin domain for %q", n, e.Name)
		}
		res[e.Bits[0]] = n == 1
	case OneHotScheme:
		if n < e.Lo || n > e.Hi {
			return nil, errors.Errorf("value %d out of range [%d, %d] for %q", n, e.Lo, e.Hi, e.Name)
		}
		res[e.Bits[n-e.Lo]] = true
	case LogScheme:
		if n < e.Lo || n > e.Hi {
			return nil, errors.Errorf("value %d out of range [%d, %d] for %q", n, e.Lo, e.Hi, e.Name)
		}
		r := n - e.Lo
		k := len(e.Weights)
		if k == 1 {
			res[e.Bits[0]] = r > 0
			break
		}
		// The k-1 first weights reach any value up to 2^(k-1) - 1.
		if r > 1<<(k-1)-1 {
			res[e.Bits[k-1]] = true
			r -= e.Weights[k-1]
		}
		for i := 0; i < k-1; i++ {
			if r&(1<<i) != 0 {
				res[e.Bits[i]] = true
			}
		}
	default:
		return nil, errors.Errorf("unknown scheme %q for %q", e.Scheme, e.Name)
	}
	return res, nil
}
