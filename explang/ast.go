package explang

import "github.com/shibukawa/snapplot/tokenizer"

// Position represents the start offset of a node within the original expression.
// Offset is the rune index (0-based), Line/Column are 1-based for error reporting.
type Position struct {
	Offset int
	Line   int
	Column int
	Length int
}

func positionOf(tok tokenizer.Token) Position {
	return Position{
		Offset: tok.Position.Offset,
		Line:   tok.Position.Line,
		Column: tok.Position.Column,
		Length: len([]rune(tok.Value)),
	}
}

// Node is an arithmetic expression tree node.
type Node interface {
	Pos() Position
	node()
}

// Number is a numeric literal.
type Number struct {
	Value float64
	Raw   string
	At    Position
}

// Ident is a variable or constant reference.
type Ident struct {
	Name string
	At   Position
}

// Unary is a prefix sign applied to an operand.
type Unary struct {
	Op      string // "-" or "+"
	Operand Node
	At      Position
}

// Binary is an infix arithmetic operation.
type Binary struct {
	Op    string // one of + - * / % ^
	Left  Node
	Right Node
	At    Position
}

// Call is a function application.
type Call struct {
	Name string
	Args []Node
	At   Position
}

func (n *Number) Pos() Position { return n.At }
func (n *Ident) Pos() Position  { return n.At }
func (n *Unary) Pos() Position  { return n.At }
func (n *Binary) Pos() Position { return n.At }
func (n *Call) Pos() Position   { return n.At }

func (*Number) node() {}
func (*Ident) node()  {}
func (*Unary) node()  {}
func (*Binary) node() {}
func (*Call) node()   {}

// Walk visits n and its children depth-first. Returning false from fn stops
// descent into the current node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	switch v := n.(type) {
	case *Unary:
		Walk(v.Operand, fn)
	case *Binary:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *Call:
		for _, arg := range v.Args {
			Walk(arg, fn)
		}
	}
}

// Identifiers returns the distinct identifier names referenced by n in
// first-appearance order. Function names are not included.
func Identifiers(n Node) []string {
	var (
		names []string
		seen  = map[string]bool{}
	)

	Walk(n, func(node Node) bool {
		if id, ok := node.(*Ident); ok && !seen[id.Name] {
			seen[id.Name] = true
			names = append(names, id.Name)
		}

		return true
	})

	return names
}
