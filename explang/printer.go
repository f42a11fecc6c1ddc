package explang

import (
	"strconv"
	"strings"
)

// PrintOptions controls how Format spells operators that target languages
// disagree on.
type PrintOptions struct {
	// PowerFunc, when set, prints a^b as PowerFunc(a, b) instead of (a^b).
	PowerFunc string
	// ModFunc, when set, prints a%b as ModFunc(a, b) instead of (a%b).
	ModFunc string
	// Rename maps identifier and function names to target spellings.
	Rename map[string]string
}

// Format prints n fully parenthesized so the output does not depend on the
// target language's precedence rules. Number literals always carry a
// decimal point so they are read as floating point.
func Format(n Node, opts PrintOptions) string {
	var b strings.Builder
	format(&b, n, opts)

	return b.String()
}

func format(b *strings.Builder, n Node, opts PrintOptions) {
	switch v := n.(type) {
	case *Number:
		b.WriteString(floatLiteral(v.Value))
	case *Ident:
		b.WriteString(rename(v.Name, opts))
	case *Unary:
		b.WriteString("(")
		b.WriteString(v.Op)
		format(b, v.Operand, opts)
		b.WriteString(")")
	case *Binary:
		switch {
		case v.Op == "^" && opts.PowerFunc != "":
			formatCall(b, opts.PowerFunc, []Node{v.Left, v.Right}, opts)
		case v.Op == "%" && opts.ModFunc != "":
			formatCall(b, opts.ModFunc, []Node{v.Left, v.Right}, opts)
		default:
			b.WriteString("(")
			format(b, v.Left, opts)
			b.WriteString(v.Op)
			format(b, v.Right, opts)
			b.WriteString(")")
		}
	case *Call:
		formatCall(b, rename(v.Name, opts), v.Args, opts)
	}
}

func formatCall(b *strings.Builder, name string, args []Node, opts PrintOptions) {
	b.WriteString(name)
	b.WriteString("(")

	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}

		format(b, arg, opts)
	}

	b.WriteString(")")
}

func rename(name string, opts PrintOptions) string {
	if to, ok := opts.Rename[name]; ok {
		return to
	}

	return name
}

func floatLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
