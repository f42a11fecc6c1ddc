// Package relation classifies a normalized expression into the kind of
// mathematical object it denotes.
//
// Classification is a pure function of the text. It runs an ordered table of
// structural predicates over the expression's tokens and the first predicate
// that matches decides the kind; anything unmatched is an explicit function
// of x.
package relation

import "fmt"

// Kind enumerates relation kinds.
type Kind int

const (
	KindExplicit Kind = iota
	KindYInequality
	KindCompoundInequality
	KindXInequality
	KindImplicit
)

func (k Kind) String() string {
	switch k {
	case KindExplicit:
		return "explicit"
	case KindYInequality:
		return "y-inequality"
	case KindCompoundInequality:
		return "compound-inequality"
	case KindXInequality:
		return "x-inequality"
	case KindImplicit:
		return "implicit"
	default:
		return "unknown"
	}
}

// Comparator is an inequality operator.
type Comparator int

const (
	LessThan Comparator = iota
	LessEqual
	GreaterThan
	GreaterEqual
)

func (c Comparator) String() string {
	switch c {
	case LessThan:
		return "<"
	case LessEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Strict reports whether the boundary itself is excluded.
func (c Comparator) Strict() bool {
	return c == LessThan || c == GreaterThan
}

// Below reports whether the region lies below (or left of) the boundary.
func (c Comparator) Below() bool {
	return c == LessThan || c == LessEqual
}

// Holds evaluates lhs <op> rhs.
func (c Comparator) Holds(lhs, rhs float64) bool {
	switch c {
	case LessThan:
		return lhs < rhs
	case LessEqual:
		return lhs <= rhs
	case GreaterThan:
		return lhs > rhs
	case GreaterEqual:
		return lhs >= rhs
	default:
		return false
	}
}

// Relation is the tagged variant produced by Classify. The concrete types
// are Explicit, YInequality, CompoundInequality, XInequality and Implicit.
type Relation interface {
	Kind() Kind
	fmt.Stringer
}

// Explicit is y = Expr(x).
type Explicit struct {
	Expr string
}

// YInequality is y <Op> RHS(x).
type YInequality struct {
	Op  Comparator
	RHS string
}

// Clause is one side of a compound inequality.
type Clause struct {
	Op   Comparator
	Expr string
}

// CompoundInequality is y <First.Op> First.Expr && y <Second.Op> Second.Expr.
type CompoundInequality struct {
	First  Clause
	Second Clause
}

// XInequality is x <Op> Threshold, where Threshold references neither axis.
type XInequality struct {
	Op        Comparator
	Threshold string
}

// Implicit is the zero set of Residual(x, y).
type Implicit struct {
	Residual string
}

func (Explicit) Kind() Kind           { return KindExplicit }
func (YInequality) Kind() Kind        { return KindYInequality }
func (CompoundInequality) Kind() Kind { return KindCompoundInequality }
func (XInequality) Kind() Kind        { return KindXInequality }
func (Implicit) Kind() Kind           { return KindImplicit }

func (r Explicit) String() string    { return "y=" + r.Expr }
func (r YInequality) String() string { return "y" + r.Op.String() + r.RHS }
func (r CompoundInequality) String() string {
	return "y" + r.First.Op.String() + r.First.Expr + "&&y" + r.Second.Op.String() + r.Second.Expr
}
func (r XInequality) String() string { return "x" + r.Op.String() + r.Threshold }
func (r Implicit) String() string    { return r.Residual + "=0" }
