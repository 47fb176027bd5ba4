package maxsat

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VarName is the name given to the DIMACS variable v by ParseWCNF.
func VarName(v int) string {
	return fmt.Sprintf("x%d", v)
}

// ParseWCNF parses a weighted partial MAXSAT problem in the DIMACS WCNF format.
// Clauses whose weight is at least the top weight of the header are hard clauses.
// When the header has no top weight, all clauses are soft.
// Variable v is named VarName(v).
func ParseWCNF(f io.Reader) (*Problem, error) {
	scanner := bufio.NewScanner(f)
	var (
		nbVars    int
		nbClauses int
		topWeight int // weight of hard clauses
		header    bool
		constrs   []Constr
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		if line[0] == 'p' {
			fields := strings.Fields(line)
			if len(fields) < 4 || fields[1] != "wcnf" {
				return nil, errors.Errorf("invalid syntax %q in WCNF file", line)
			}
			var err error
			if nbVars, err = strconv.Atoi(fields[2]); err != nil {
				return nil, errors.Errorf("nbvars not an int: %q", fields[2])
			}
			if nbClauses, err = strconv.Atoi(fields[3]); err != nil {
				return nil, errors.Errorf("nbClauses not an int: %q", fields[3])
			}
			if len(fields) == 5 {
				if topWeight, err = strconv.Atoi(fields[4]); err != nil {
					return nil, errors.Errorf("top weight not an int: %q", fields[4])
				}
			}
			constrs = make([]Constr, 0, nbClauses)
			header = true
			continue
		}
		if !header {
			return nil, errors.Errorf("clause %q before header in WCNF file", line)
		}
		lits, weight, err := parseWCNFClause(line, nbVars)
		if err != nil {
			return nil, err
		}
		if topWeight != 0 && weight >= topWeight {
			constrs = append(constrs, HardClause(lits...))
		} else {
			constrs = append(constrs, WeightedClause(lits, weight))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read WCNF file")
	}
	if !header {
		return nil, errors.New("no header in WCNF file")
	}
	if len(constrs) != nbClauses {
		return nil, errors.Errorf("expected %d clauses, got %d", nbClauses, len(constrs))
	}
	return New(constrs...), nil
}

// Parses a WCNF line containing a clause and returns its literals and its weight.
func parseWCNFClause(line string, nbVars int) (lits []Lit, weight int, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[len(fields)-1] != "0" {
		return nil, 0, errors.Errorf("clause %q is not terminated by 0", line)
	}
	for i, field := range fields[:len(fields)-1] {
		val, err := strconv.Atoi(field)
		if err != nil {
			return nil, 0, errors.Errorf("invalid integer %q in WCNF clause %q", field, line)
		}
		if i == 0 {
			if val <= 0 {
				return nil, 0, errors.Errorf("invalid weight %d in WCNF clause %q", val, line)
			}
			weight = val
			continue
		}
		switch {
		case val == 0 || val > nbVars || -val > nbVars:
			return nil, 0, errors.Errorf("invalid literal %d in WCNF clause %q", val, line)
		case val > 0:
			lits = append(lits, Var(VarName(val)))
		default:
			lits = append(lits, Not(VarName(-val)))
		}
	}
	return lits, weight, nil
}
