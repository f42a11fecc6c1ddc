// Package evaluator compiles normalized arithmetic expressions and evaluates
// them with IEEE-754 double semantics.
//
// Expressions are parsed and checked by explang first, so every backend sees
// the same grammar and reports the same error kinds. The checked tree is then
// printed in the backend's own syntax and compiled by it.
package evaluator

import (
	"fmt"
	"math"
	"slices"

	"github.com/shibukawa/snapplot/explang"
)

// Bindings maps variable names to values for one evaluation.
type Bindings map[string]float64

// Evaluator compiles expressions. names lists the variables the program will
// be bound with; any other identifier except the built-in constants is an
// ErrUnknownIdentifier.
type Evaluator interface {
	Name() string
	Compile(expr string, names []string) (Program, error)
}

// Program is a compiled expression.
type Program interface {
	Eval(bindings Bindings) (float64, error)
}

// Built-in constants.
var Constants = map[string]float64{
	"PI": math.Pi,
	"e":  math.E,
}

type function struct {
	arity explang.Arity
	call  func(args []float64) float64
}

func unary(fn func(float64) float64) function {
	return function{
		arity: explang.Arity{Min: 1, Max: 1},
		call:  func(args []float64) float64 { return fn(args[0]) },
	}
}

// functions is the user-facing vocabulary. log is the natural logarithm;
// log(x, b) is the logarithm of x in base b.
var functions = map[string]function{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"sec":  unary(func(v float64) float64 { return 1 / math.Cos(v) }),
	"csc":  unary(func(v float64) float64 { return 1 / math.Sin(v) }),
	"cot":  unary(func(v float64) float64 { return 1 / math.Tan(v) }),
	"ln":   unary(math.Log),
	"sqrt": unary(math.Sqrt),
	"abs":  unary(math.Abs),
	"asin": unary(math.Asin),
	"acos": unary(math.Acos),
	"atan": unary(math.Atan),
	"log": {
		arity: explang.Arity{Min: 1, Max: 2},
		call: func(args []float64) float64 {
			if len(args) == 2 {
				return math.Log(args[0]) / math.Log(args[1])
			}

			return math.Log(args[0])
		},
	},
}

// operator helpers the printers target; never reachable from user text
// because validation only admits the vocabulary above.
const (
	powFunc = "pow"
	modFunc = "fmod"
)

var operators = map[string]func(a, b float64) float64{
	powFunc: math.Pow,
	modFunc: math.Mod,
}

// FunctionNames returns the vocabulary in sorted order.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// New returns the backend registered under name: "expr" (default when
// name is empty) or "cel".
func New(name string) (Evaluator, error) {
	switch name {
	case "", "expr":
		return NewExprLang(), nil
	case "cel":
		return NewCEL()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}

// Evaluate compiles expr against the names in bindings and evaluates it once.
func Evaluate(ev Evaluator, expr string, bindings Bindings) (float64, error) {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}

	slices.Sort(names)

	prg, err := ev.Compile(expr, names)
	if err != nil {
		return 0, err
	}

	return prg.Eval(bindings)
}

// checked is the backend-independent result of compiling: the tree and the
// variable names the program must be bound with.
type checked struct {
	expr  string
	tree  explang.Node
	names []string
}

func check(expr string, names []string) (*checked, error) {
	tree, err := explang.Parse(expr)
	if err != nil {
		return nil, newError(expr, ErrSyntax, err.Error())
	}

	arities := make(map[string]explang.Arity, len(functions))
	for name, fn := range functions {
		arities[name] = fn.arity
	}

	allowed := slices.Clone(names)
	for name := range Constants {
		allowed = append(allowed, name)
	}

	if errs := explang.Validate(tree, explang.NewScope(allowed, arities)); len(errs) > 0 {
		first := errs[0]
		if first.Kind == explang.ErrArity {
			return nil, newError(expr, ErrArity, first.Message)
		}

		return nil, newError(expr, ErrUnknownIdentifier, first.Message)
	}

	return &checked{expr: expr, tree: tree, names: slices.Clone(names)}, nil
}

// activation merges constants and bindings, failing when a declared name
// is not bound.
func (c *checked) activation(bindings Bindings) (map[string]any, error) {
	vars := make(map[string]any, len(c.names)+len(Constants))
	for name, v := range Constants {
		vars[name] = v
	}

	for _, name := range c.names {
		v, ok := bindings[name]
		if !ok {
			return nil, newError(c.expr, ErrMissingBinding, fmt.Sprintf("no value bound for %q", name))
		}

		vars[name] = v
	}

	return vars, nil
}

func (c *checked) source() string {
	return explang.Format(c.tree, explang.PrintOptions{PowerFunc: powFunc, ModFunc: modFunc})
}

func toFloat(expr string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, newError(expr, ErrNotNumeric, fmt.Sprintf("got %T", v))
	}
}
