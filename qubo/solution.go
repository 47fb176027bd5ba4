package qubo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crillab/goqubo/encode"
)

// A Solution is an assignment of every encoding variable of a model,
// annotated with its energy, the decoded variable values and the status
// of every constraint.
type Solution struct {
	State  []bool  `json:"state" yaml:"state,flow"`
	Energy float64 `json:"energy" yaml:"energy"`
	// Read is the index of the read that produced the solution.
	Read        int                     `json:"read" yaml:"read"`
	Values      map[string]encode.Value `json:"values" yaml:"values"`
	Constraints map[string]bool         `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	// Breakdown associates each label with its share of the energy.
	// For constraints, this is the scaled penalty.
	Breakdown map[string]float64 `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

// Solution decodes state. The energy is recomputed from the terms of m.
// state is copied.
func (m *Model) Solution(state []bool, read int) *Solution {
	s := &Solution{
		State:  make([]bool, len(state)),
		Energy: m.Energy(state),
		Read:   read,
		Values: make(map[string]encode.Value, len(m.Variables)),
	}
	copy(s.State, state)
	bit := func(i int) bool { return state[i] }
	for _, v := range m.Variables {
		s.Values[v.Name] = v.Decode(bit)
	}
	if len(m.Constraints) > 0 {
		invalid := m.invalidBits(state)
		s.Constraints = make(map[string]bool, len(m.Constraints))
		s.Breakdown = make(map[string]float64, len(m.Constraints)+len(m.Labels))
		for _, c := range m.Constraints {
			s.Constraints[c.Label] = c.holds(state, invalid)
			s.Breakdown[c.Label] = c.Strength * c.Penalty.EvalState(state)
		}
	}
	if len(m.Labels) > 0 {
		if s.Breakdown == nil {
			s.Breakdown = make(map[string]float64, len(m.Labels))
		}
		for _, l := range m.Labels {
			s.Breakdown[l.Label] = l.Poly.EvalState(state)
		}
	}
	return s
}

// Feasible is true iff all constraints are satisfied.
func (s *Solution) Feasible() bool {
	for _, ok := range s.Constraints {
		if !ok {
			return false
		}
	}
	return true
}

// Broken returns the sorted labels of the broken constraints.
func (s *Solution) Broken() []string {
	var res []string
	for label, ok := range s.Constraints {
		if !ok {
			res = append(res, label)
		}
	}
	sort.Strings(res)
	return res
}

// Bits returns the state as a string of 0s and 1s.
func (s *Solution) Bits() string {
	var sb strings.Builder
	for _, b := range s.State {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (s *Solution) String() string {
	names := make([]string, 0, len(s.Values))
	for name := range s.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	vals := make([]string, len(names))
	for i, name := range names {
		vals[i] = fmt.Sprintf("%s=%v", name, s.Values[name])
	}
	return fmt.Sprintf("energy=%v {%s}", s.Energy, strings.Join(vals, ", "))
}

// LexLess is true iff the state of s1 is lexicographically smaller than the state of s2,
// variable 0 being the most significant one and false < true.
func LexLess(s1, s2 []bool) bool {
	for i := range s1 {
		if i >= len(s2) {
			return false
		}
		if s1[i] != s2[i] {
			return !s1[i]
		}
	}
	return len(s1) < len(s2)
}
