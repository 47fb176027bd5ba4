package explain

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// core returns the constraints, among idx, whose selectors are in the last
// unsatisfiable core found by g. The core is not necessarily minimal.
func (t *translation) core(g *gini.Gini, idx []int) []int {
	why := make(map[z.Lit]bool)
	for _, lit := range g.Why(nil) {
		why[lit] = true
	}
	var res []int
	for _, i := range idx {
		if why[t.sels[i]] {
			res = append(res, i)
		}
	}
	if len(res) == 0 {
		return idx
	}
	return res
}

// minimalConflict shrinks core, an unsatisfiable set of constraints, into a minimal one
// using the deletion method: each constraint is removed in turn, and put back
// if the remaining ones become satisfiable.
// A minimal conflict is such that, if any of its constraints is removed,
// the other ones can hold together. It is not necessarily the smallest one.
func minimalConflict(g *gini.Gini, t *translation, core []int) []int {
	kept := make([]bool, len(core))
	for i := range kept {
		kept[i] = true
	}
	for i := range core {
		kept[i] = false
		var rest []int
		for j, k := range kept {
			if k {
				rest = append(rest, core[j])
			}
		}
		g.Assume(t.assumptions(rest)...)
		if g.Solve() == satisfiable {
			kept[i] = true
		}
	}
	var res []int
	for i, k := range kept {
		if k {
			res = append(res, core[i])
		}
	}
	return res
}
