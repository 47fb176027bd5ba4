package qubo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crillab/goqubo/encode"
	"github.com/pkg/errors"
)

// WriteQbsolv writes the terms of m on w in the qbsolv ".qubo" text format.
// The offset and variable names, which the format cannot hold, are written
// as comments that ReadQbsolv understands.
func (m *Model) WriteQbsolv(w io.Writer) error {
	bw := bufio.NewWriter(w)
	var nbDiag, nbElems int
	for _, t := range m.Terms {
		if t.I == t.J {
			nbDiag++
		} else {
			nbElems++
		}
	}
	fmt.Fprintf(bw, "c offset %s\n", strconv.FormatFloat(m.Offset, 'g', -1, 64))
	for i, name := range m.Names {
		fmt.Fprintf(bw, "c name %d %s\n", i, name)
	}
	fmt.Fprintf(bw, "p qubo 0 %d %d %d\n", m.NumVars, nbDiag, nbElems)
	for _, diag := range []bool{true, false} {
		for _, t := range m.Terms {
			if (t.I == t.J) == diag {
				fmt.Fprintf(bw, "%d %d %s\n", t.I, t.J, strconv.FormatFloat(t.Coeff, 'g', -1, 64))
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "could not write qbsolv output")
	}
	return nil
}

func parseQbsolvHeader(fields []string) (nbVars, nbDiag, nbElems int, err error) {
	if len(fields) != 6 || fields[1] != "qubo" {
		return 0, 0, 0, errors.Errorf("invalid syntax %q in header", strings.Join(fields, " "))
	}
	vals := make([]int, 3)
	for i, field := range fields[3:] {
		if vals[i], err = strconv.Atoi(field); err != nil || vals[i] < 0 {
			return 0, 0, 0, errors.Errorf("%q is not a valid count in header", field)
		}
	}
	return vals[0], vals[1], vals[2], nil
}

// ReadQbsolv parses a qbsolv ".qubo" file and returns the corresponding model.
// Every variable is considered as a plain binary variable.
func ReadQbsolv(r io.Reader) (*Model, error) {
	var (
		m                 Model
		nbDiag, nbElems   int
		gotDiag, gotElems int
		headerSeen        bool
		names             = make(map[int]string)
		terms             []Term
		lineNb            int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNb++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "c":
			if len(fields) == 3 && fields[1] == "offset" {
				off, err := strconv.ParseFloat(fields[2], 64)
				if err != nil {
					return nil, errors.Errorf("line %d: invalid offset %q", lineNb, fields[2])
				}
				m.Offset = off
			} else if len(fields) == 4 && fields[1] == "name" {
				idx, err := strconv.Atoi(fields[2])
				if err != nil {
					return nil, errors.Errorf("line %d: invalid variable index %q", lineNb, fields[2])
				}
				names[idx] = fields[3]
			}
		case "p":
			if headerSeen {
				return nil, errors.Errorf("line %d: duplicate header", lineNb)
			}
			var err error
			m.NumVars, nbDiag, nbElems, err = parseQbsolvHeader(fields)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNb)
			}
			headerSeen = true
		default:
			if !headerSeen {
				return nil, errors.Errorf("line %d: term found before header", lineNb)
			}
			if len(fields) != 3 {
				return nil, errors.Errorf("line %d: expected 3 fields, got %d", lineNb, len(fields))
			}
			i, err1 := strconv.Atoi(fields[0])
			j, err2 := strconv.Atoi(fields[1])
			c, err3 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, errors.Errorf("line %d: invalid term %q", lineNb, sc.Text())
			}
			if i < 0 || j < 0 || i >= m.NumVars || j >= m.NumVars {
				return nil, errors.Errorf("line %d: invalid variable in term for problem with %d vars only", lineNb, m.NumVars)
			}
			if i == j {
				gotDiag++
			} else {
				gotElems++
			}
			terms = append(terms, Term{I: i, J: j, Coeff: c})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read qbsolv input")
	}
	if !headerSeen {
		return nil, errors.New("no header found")
	}
	if gotDiag != nbDiag || gotElems != nbElems {
		return nil, errors.Errorf("header announced %d diagonal and %d off-diagonal terms, found %d and %d", nbDiag, nbElems, gotDiag, gotElems)
	}
	m.Terms = Canonicalize(terms)
	m.Names = make([]string, m.NumVars)
	m.Roles = make([]Role, m.NumVars)
	m.Variables = make([]*encode.Encoding, m.NumVars)
	for i := range m.Names {
		name, ok := names[i]
		if !ok {
			name = fmt.Sprintf("x%d", i)
		}
		m.Names[i] = name
		m.Roles[i] = RoleEncoding
		m.Variables[i] = &encode.Encoding{Name: name, Kind: encode.KindBinary, Scheme: encode.Identity, Bits: []int{i}}
	}
	return &m, nil
}
