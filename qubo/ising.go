package qubo

// An Ising model is the equivalent of a QUBO model over spins s in {-1, +1},
// with x = (1 + s) / 2.
type Ising struct {
	NumVars int       `json:"num_vars" yaml:"num_vars"`
	H       []float64 `json:"h" yaml:"h,flow"`
	J       []Term    `json:"j" yaml:"j"`
	Offset  float64   `json:"offset" yaml:"offset"`
}

// ToIsing returns the Ising model equivalent to m: for every state,
// the Ising energy of the spins is the QUBO energy of the bits.
func (m *Model) ToIsing() *Ising {
	res := &Ising{NumVars: m.NumVars, H: make([]float64, m.NumVars), Offset: m.Offset}
	var couplings []Term
	for _, t := range m.Terms {
		if t.I == t.J {
			// c x = c/2 + c/2 s
			res.Offset += t.Coeff / 2
			res.H[t.I] += t.Coeff / 2
			continue
		}
		// c x_i x_j = c/4 (1 + s_i + s_j + s_i s_j)
		q := t.Coeff / 4
		res.Offset += q
		res.H[t.I] += q
		res.H[t.J] += q
		couplings = append(couplings, Term{I: t.I, J: t.J, Coeff: q})
	}
	res.J = Canonicalize(couplings)
	return res
}

// Energy returns the energy of the given spins, true meaning +1.
func (is *Ising) Energy(spins []bool) float64 {
	sign := func(b bool) float64 {
		if b {
			return 1
		}
		return -1
	}
	e := is.Offset
	for i, h := range is.H {
		e += h * sign(spins[i])
	}
	for _, t := range is.J {
		e += t.Coeff * sign(spins[t.I]) * sign(spins[t.J])
	}
	return e
}
