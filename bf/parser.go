package bf

import (
	"io"
	"text/scanner"

	"github.com/pkg/errors"
)

type parser struct {
	s     scanner.Scanner
	eof   bool   // Have we reached eof yet?
	token string // Last token read
}

// Parse parses the formula from the given input Reader.
// It returns the corresponding Formula.
// Formulas are written using the following operators (from lowest to highest priority) :
//
// - a ";" separates formulas that must all hold,
// - for an equivalence, the "=" operator,
// - for an exclusive or, the "!=" operator,
// - for an implication, the "->" operator,
// - for a disjunction ("or"), the "|" operator,
// - for a conjunction ("and"), the "&" operator,
// - for a negation, the "^" unary operator.
//
// Parentheses can be used to group subformulas, and "{a, b, c}" means
// exactly one of a, b and c is true.
func Parse(r io.Reader) (Formula, error) {
	var s scanner.Scanner
	s.Init(r)
	s.Error = func(*scanner.Scanner, string) {}
	p := parser{s: s}
	p.scan()
	var fs []Formula
	for {
		f, err := p.parseEquiv()
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
		if p.eof {
			break
		}
		if p.token != ";" {
			return nil, errors.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
		}
		p.scan()
		if p.eof { // trailing separator
			break
		}
	}
	if len(fs) == 1 {
		return fs[0], nil
	}
	return And(fs...), nil
}

func isOperator(token string) bool {
	switch token {
	case "=", "->", "|", "&", ";", "!=":
		return true
	}
	return false
}

func (p *parser) scan() {
	if p.eof {
		return
	}
	p.eof = (p.s.Scan() == scanner.EOF)
	p.token = p.s.TokenText()
}

// expect consumes the given token, possibly made of two scanner tokens.
func (p *parser) expect(op string) error {
	for _, r := range op {
		if p.eof {
			return errors.Errorf("expected %q, found EOF", op)
		}
		if p.token != string(r) {
			return errors.Errorf("invalid token %q at %v, expected %q", p.token, p.s.Pos(), op)
		}
		p.scan()
	}
	if p.eof {
		return errors.Errorf("unexpected EOF after %q", op)
	}
	return nil
}

type binaryOp struct {
	token string
	build func(f1, f2 Formula) Formula
	next  func(p *parser) (Formula, error)
}

// parseBinary parses a right-associative chain of subformulas joined by op.
func (p *parser) parseBinary(op binaryOp) (Formula, error) {
	f, err := op.next(p)
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != op.token[:1] {
		return f, nil
	}
	if len(op.token) == 2 && p.s.Peek() != rune(op.token[1]) {
		return f, nil
	}
	if err := p.expect(op.token); err != nil {
		return nil, err
	}
	f2, err := p.parseBinary(op)
	if err != nil {
		return nil, err
	}
	return op.build(f, f2), nil
}

func (p *parser) parseEquiv() (Formula, error) {
	if p.eof {
		return nil, errors.Errorf("at position %v, expected expression, found EOF", p.s.Pos())
	}
	if isOperator(p.token) {
		return nil, errors.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	return p.parseBinary(binaryOp{token: "=", build: Eq, next: (*parser).parseXor})
}

func (p *parser) parseXor() (Formula, error) {
	return p.parseBinary(binaryOp{token: "!=", build: Xor, next: (*parser).parseImplies})
}

func (p *parser) parseImplies() (Formula, error) {
	return p.parseBinary(binaryOp{token: "->", build: Implies, next: (*parser).parseOr})
}

func (p *parser) parseOr() (Formula, error) {
	return p.parseBinary(binaryOp{
		token: "|",
		build: func(f1, f2 Formula) Formula { return Or(f1, f2) },
		next:  (*parser).parseAnd,
	})
}

func (p *parser) parseAnd() (Formula, error) {
	return p.parseBinary(binaryOp{
		token: "&",
		build: func(f1, f2 Formula) Formula { return And(f1, f2) },
		next:  (*parser).parseNot,
	})
}

func (p *parser) parseNot() (Formula, error) {
	if p.eof {
		return nil, errors.New("unexpected EOF")
	}
	if isOperator(p.token) {
		return nil, errors.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	if p.token == "^" {
		p.scan()
		if p.eof {
			return nil, errors.New("unexpected EOF")
		}
		f, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not(f), nil
	}
	return p.parseBasic()
}

func (p *parser) parseBasic() (Formula, error) {
	switch p.token {
	case ")", "}", ",":
		return nil, errors.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	case "(":
		p.scan()
		f, err := p.parseEquiv()
		if err != nil {
			return nil, err
		}
		if p.eof {
			return nil, errors.Errorf("expected closing parenthesis, found EOF at %s", p.s.Pos())
		}
		if p.token != ")" {
			return nil, errors.Errorf("expected closing parenthesis, found %q at %s", p.token, p.s.Pos())
		}
		p.scan()
		return f, nil
	case "{":
		return p.parseUnique()
	}
	defer p.scan()
	return Var(p.token), nil
}

func (p *parser) parseUnique() (Formula, error) {
	var names []string
	p.scan()
	for !p.eof && p.token != "}" {
		if isOperator(p.token) || p.token == "," || p.token == "{" || p.token == "(" || p.token == ")" {
			return nil, errors.Errorf("expected variable name, found %q at %s", p.token, p.s.Pos())
		}
		names = append(names, p.token)
		p.scan()
		if !p.eof && p.token == "," {
			p.scan()
		}
	}
	if p.eof {
		return nil, errors.Errorf("expected closing brace, found EOF at %s", p.s.Pos())
	}
	p.scan()
	if len(names) == 0 {
		return nil, errors.Errorf("empty unique constraint at %s", p.s.Pos())
	}
	return Unique(names...), nil
}
