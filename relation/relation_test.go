package relation

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Relation
	}{
		{name: "explicit", input: "sin(x)", want: Explicit{Expr: "sin(x)"}},
		{name: "empty", input: "", want: Explicit{Expr: ""}},
		{name: "y inequality", input: "y>x^2", want: YInequality{Op: GreaterThan, RHS: "x^2"}},
		{name: "y inequality inclusive", input: "y<=2*x+1", want: YInequality{Op: LessEqual, RHS: "2*x+1"}},
		{
			name:  "compound beats y inequality",
			input: "y<x&&y>-x",
			want:  CompoundInequality{First: Clause{Op: LessThan, Expr: "x"}, Second: Clause{Op: GreaterThan, Expr: "-x"}},
		},
		{name: "x inequality", input: "x>=2*PI", want: XInequality{Op: GreaterEqual, Threshold: "2*PI"}},
		{name: "x inequality with parameter", input: "x<a", want: XInequality{Op: LessThan, Threshold: "a"}},
		{name: "x threshold referencing y is not a band", input: "x<y", want: Explicit{Expr: "x<y"}},
		{name: "circle", input: "x^2+y^2=25", want: Implicit{Residual: "(x^2+y^2)-(25)"}},
		{name: "double equals", input: "x*y==1", want: Implicit{Residual: "(x*y)-(1)"}},
		{name: "y equals f of x", input: "y=x^2", want: Explicit{Expr: "x^2"}},
		{name: "y on both sides", input: "y=y^2+x", want: Implicit{Residual: "(y)-(y^2+x)"}},
		{name: "vertical line", input: "x=3", want: Implicit{Residual: "(x)-(3)"}},
		{name: "degenerate", input: "0=0", want: Implicit{Residual: "(0)-(0)"}},
		{name: "parameter only equation", input: "a=2", want: Implicit{Residual: "(a)-(2)"}},
		{name: "bare residual", input: "x^2+y^2-25", want: Implicit{Residual: "x^2+y^2-25"}},
		{name: "two equals", input: "x=y=1", want: Explicit{Expr: "x=y=1"}},
		{name: "equality with comparator", input: "x=y<1", want: Explicit{Expr: "x=y<1"}},
		{name: "missing side", input: "y=", want: Explicit{Expr: "y="}},
		{name: "untokenizable", input: "x#2", want: Explicit{Expr: "x#2"}},
		{name: "trailing clause ignored", input: "y<x&&", want: Explicit{Expr: "y<x&&"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicatesInIsolation(t *testing.T) {
	byKind := map[Kind]Predicate{}
	for _, p := range Predicates() {
		byKind[p.Kind] = p
	}

	tests := []struct {
		kind  Kind
		input string
		match bool
	}{
		{KindCompoundInequality, "y<x&&y>-x", true},
		{KindCompoundInequality, "y<x", false},
		{KindCompoundInequality, "y<x&&x>1", false},
		{KindYInequality, "y<x", true},
		{KindYInequality, "y<x&&y>-x", false},
		{KindYInequality, "x<y", false},
		{KindXInequality, "x>1", true},
		{KindXInequality, "x>y", false},
		{KindXInequality, "x>x", false},
		{KindImplicit, "x^2+y^2=25", true},
		{KindImplicit, "x+1", false},
		{KindImplicit, "y<1", false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.input, func(t *testing.T) {
			_, ok := byKind[tt.kind].Match(tt.input)
			assert.Equal(t, tt.match, ok)
		})
	}
}

func TestPredicateOrder(t *testing.T) {
	var kinds []Kind
	for _, p := range Predicates() {
		kinds = append(kinds, p.Kind)
	}

	assert.Equal(t, []Kind{KindCompoundInequality, KindYInequality, KindXInequality, KindImplicit}, kinds)
}

func TestComparator(t *testing.T) {
	assert.True(t, LessThan.Holds(1, 2))
	assert.False(t, LessThan.Holds(2, 2))
	assert.True(t, LessEqual.Holds(2, 2))
	assert.True(t, GreaterThan.Holds(3, 2))
	assert.True(t, GreaterEqual.Holds(2, 2))
	assert.True(t, LessThan.Strict())
	assert.False(t, GreaterEqual.Strict())
	assert.True(t, LessEqual.Below())
	assert.False(t, GreaterThan.Below())
	assert.Equal(t, ">=", GreaterEqual.String())
}

func TestRelationString(t *testing.T) {
	assert.Equal(t, "y=sin(x)", Explicit{Expr: "sin(x)"}.String())
	assert.Equal(t, "y<x&&y>-x", Classify("y<x&&y>-x").String())
	assert.Equal(t, "(x)-(3)=0", Classify("x=3").String())
	assert.Equal(t, "compound-inequality", KindCompoundInequality.String())
}
