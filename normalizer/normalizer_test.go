package normalizer

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "function shorthand with letter", input: "sinx", want: "sin(x)"},
		{name: "function shorthand with digit", input: "sin2", want: "sin(2)"},
		{name: "digit letter", input: "2x", want: "2*x"},
		{name: "letter letter", input: "ax", want: "a*x"},
		{name: "letter digit", input: "x2", want: "x*2"},
		{name: "pi lower", input: "pi", want: "PI"},
		{name: "pi mixed case", input: "Pi", want: "PI"},
		{name: "pi symbol", input: "π", want: "PI"},
		{name: "pi coefficient", input: "2π", want: "2*PI"},
		{name: "whitespace stripped", input: " 2 x + 1 ", want: "2*x+1"},
		{name: "uppercase axes", input: "Y > X^2", want: "y>x^2"},
		{name: "other capitals kept", input: "Ax", want: "A*x"},
		{name: "existing call untouched", input: "sin(x)", want: "sin(x)"},
		{name: "longest function wins", input: "asinx", want: "asin(x)"},
		{name: "nested shorthand", input: "sinsinx", want: "sin(sin(x))"},
		{name: "function of pi", input: "cospi", want: "cos(PI)"},
		{name: "call followed by variable", input: "sin2x", want: "sin(2)*x"},
		{name: "digit before paren", input: "2(x+1)", want: "2*(x+1)"},
		{name: "close paren before letter", input: "(x+1)x", want: "(x+1)*x"},
		{name: "close paren before open paren", input: "(x+1)(x-1)", want: "(x+1)*(x-1)"},
		{name: "close paren before digit", input: "(x)2", want: "(x)*2"},
		{name: "letter before paren untouched", input: "a(x+1)", want: "a(x+1)"},
		{name: "euler kept", input: "2e", want: "2*e"},
		{name: "coefficient polynomial", input: "ax^2+bx+c", want: "a*x^2+b*x+c"},
		{name: "auto balance", input: "sin(x", want: "sin(x)"},
		{name: "auto balance nested", input: "sqrt((x+1", want: "sqrt((x+1))"},
		{name: "excess close kept", input: "x)", want: "x)"},
		{name: "compound inequality", input: "y < x && y > -x", want: "y<x&&y>-x"},
		{name: "decimal coefficient", input: "2.5x", want: "2.5*x"},
		{name: "implicit circle", input: "x^2 + y^2 = 25", want: "x^2+y^2=25"},
		{name: "bare function name", input: "sin+1", want: "sin+1"},
		{name: "ln shorthand", input: "lnx", want: "ln(x)"},
		{name: "function of explicit call", input: "sincos(x)", want: "sin(cos(x))"},
		{name: "function of explicit call then operator", input: "sincos(x+1)+1", want: "sin(cos(x+1))+1"},
		{name: "function of unclosed call", input: "sincos(x", want: "sin(cos(x))"},
		{name: "nested function of explicit call", input: "sinsincos(x)", want: "sin(sin(cos(x)))"},
		{name: "shorthand inside explicit call", input: "sqrtabs(sinx)", want: "sqrt(abs(sin(x)))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "sinx", "2x", "ax", "x2", "pi", "π", "PIx", "sinsinx", "sin2x",
		"y<x&&y>-x", "x^2+y^2=25", "((x", "x))", "abs(x", "2(3)(4)x",
		"a b c", "sqrtx+cosy", "ePI", "1.5.5x", "sin", "X+Y", "3ln2", "αx",
		"sincos(x)", "sincos(x", "sqrtabs(sinx)+2x",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once := Normalize(in)
			assert.Equal(t, once, Normalize(once))
		})
	}
}

func TestNormalize_Balance(t *testing.T) {
	inputs := []string{"(", "((x+1", "sin(cos(x", "sinx", "(a)(b", "x"}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			out := Normalize(in)
			assert.Equal(t, strings.Count(out, "("), strings.Count(out, ")"))
			assert.True(t, strings.Count(out, ")") >= strings.Count(in, ")"))
		})
	}
}

func TestIsFunction(t *testing.T) {
	assert.True(t, IsFunction("sqrt"))
	assert.True(t, IsFunction("ln"))
	assert.False(t, IsFunction("exp"))
	assert.False(t, IsFunction("PI"))
}
