package bf

import (
	"fmt"
	"strings"
	"testing"
)

// To each formula, associate an expected string input.
var exprToFormula = map[string]string{
	"foo":                  "foo",
	"^foo":                 "not(foo)",
	"^^foo":                "not(not(foo))",
	"(foo)":                "foo",
	"a | b":                "or(a, b)",
	"a & b":                "and(a, b)",
	"a -> b":               "or(not(a), b)",
	"a = b":                "eq(a, b)",
	"a != b":               "xor(a, b)",
	"^(a|  b)":             "not(or(a, b))",
	"a & b & c":            "and(a, and(b, c))",
	"a & (b & c) & d":      "and(a, and(and(b, c), d))",
	"a = b |c -> ^(d&e)":   "eq(a, or(not(or(b, c)), not(and(d, e))))",
	"(a|^b|c) & ^(a|^b|c)": "and(or(a, or(not(b), c)), not(or(a, or(not(b), c))))",
	"{a, b, c}":            "unique(a, b, c)",
	"a | b; ^a | ^b":       "and(or(a, b), or(not(a), not(b)))",
	"a;":                   "a",
}

func TestParse(t *testing.T) {
	for expr, expected := range exprToFormula {
		r := strings.NewReader(expr)
		f, err := Parse(r)
		if err != nil {
			t.Errorf("Could not parse expression %q: %v", expr, err)
		} else if f.String() != expected {
			t.Errorf("For expression %q, expected formula %q, got %q", expr, expected, f.String())
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"", "a ->", ")", "a &", "(a | b", "{a, b", "{}", "a - b", "a b"} {
		if f, err := Parse(strings.NewReader(expr)); err == nil {
			t.Errorf("expected error when parsing %q, got %v", expr, f)
		}
	}
}

func ExampleParse() {
	expr := "a & ^(b -> c) & (c = d | ^a)"
	f, err := Parse(strings.NewReader(expr))
	if err != nil {
		fmt.Printf("Could not parse expression %q: %v", expr, err)
		return
	}
	fmt.Println(f)
	fmt.Println(Vars(f))
	// Output:
	// and(a, and(not(or(not(b), c)), eq(c, or(d, not(a)))))
	// [a b c d]
}
