package expr

import (
	"fmt"
	"strings"
)

// A Domain is the set of values a variable can take.
// The set of domains is closed: Binary, Spin, IntegerRange and OneHot.
type Domain interface {
	fmt.Stringer
	isDomain()
}

// Binary is the {0, 1} domain.
type Binary struct{}

// Spin is the {-1, +1} domain.
type Spin struct{}

// IntegerEncoding describes how an integer range is turned into binary variables.
type IntegerEncoding string

const (
	// DefaultEncoding lets the compiler choose the encoding of the range.
	DefaultEncoding IntegerEncoding = ""
	// OneHotEncoding uses one binary per value, exactly one of them being set.
	OneHotEncoding IntegerEncoding = "onehot"
	// LogEncoding uses about log2(hi-lo+1) binaries with bounded weights.
	LogEncoding IntegerEncoding = "log"
)

// IntegerRange is the set of integers in [Lo, Hi].
type IntegerRange struct {
	Lo, Hi   int
	Encoding IntegerEncoding
	// Strength of the injected exactly-one constraint for one-hot encodings.
	// 0 means the compiler default.
	Strength float64
}

// OneHot is a categorical domain: exactly one of the labels is selected.
// The numeric value of such a variable is the index of the selected label.
type OneHot struct {
	Labels []string
	// Strength of the injected exactly-one constraint, 0 means the compiler default.
	Strength float64
}

func (Binary) isDomain()       {}
func (Spin) isDomain()         {}
func (IntegerRange) isDomain() {}
func (OneHot) isDomain()       {}

func (Binary) String() string { return "binary" }
func (Spin) String() string   { return "spin" }

func (d IntegerRange) String() string {
	if d.Encoding == DefaultEncoding {
		return fmt.Sprintf("integer[%d..%d]", d.Lo, d.Hi)
	}
	return fmt.Sprintf("integer[%d..%d]/%s", d.Lo, d.Hi, d.Encoding)
}

func (d OneHot) String() string {
	return "onehot{" + strings.Join(d.Labels, ", ") + "}"
}

// LabelIndex returns the index of label in d, or -1.
func (d OneHot) LabelIndex(label string) int {
	for i, l := range d.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// SameDomain is true iff d1 and d2 describe the same domain.
func SameDomain(d1, d2 Domain) bool {
	switch d1 := d1.(type) {
	case OneHot:
		d2, ok := d2.(OneHot)
		if !ok || len(d1.Labels) != len(d2.Labels) || d1.Strength != d2.Strength {
			return false
		}
		for i := range d1.Labels {
			if d1.Labels[i] != d2.Labels[i] {
				return false
			}
		}
		return true
	default:
		return d1 == d2
	}
}

// A VarID identifies a variable in a Graph.
type VarID int32

// A Variable is a named decision variable, with its domain.
type Variable struct {
	ID     VarID
	Name   string
	Domain Domain
}
