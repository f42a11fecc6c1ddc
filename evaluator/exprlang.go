package evaluator

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprLang evaluates through github.com/expr-lang/expr.
type ExprLang struct {
	options []expr.Option
}

// NewExprLang creates the expr-lang backend.
func NewExprLang() *ExprLang {
	opts := []expr.Option{
		expr.AsFloat64(),
		expr.DisableAllBuiltins(),
	}

	for name, fn := range functions {
		opts = append(opts, expr.Function(name, variadic(fn.call)))
	}

	for name, op := range operators {
		opts = append(opts, expr.Function(name, variadic(func(args []float64) float64 {
			return op(args[0], args[1])
		})))
	}

	return &ExprLang{options: opts}
}

func (e *ExprLang) Name() string { return "expr" }

func (e *ExprLang) Compile(src string, names []string) (Program, error) {
	c, err := check(src, names)
	if err != nil {
		return nil, err
	}

	env, _ := c.activation(zeroBindings(names))

	opts := append([]expr.Option{expr.Env(env)}, e.options...)

	program, err := expr.Compile(c.source(), opts...)
	if err != nil {
		return nil, newError(src, ErrSyntax, err.Error())
	}

	return &exprProgram{checked: c, program: program}, nil
}

type exprProgram struct {
	*checked
	program *vm.Program
}

func (p *exprProgram) Eval(bindings Bindings) (float64, error) {
	env, err := p.activation(bindings)
	if err != nil {
		return 0, err
	}

	out, err := expr.Run(p.program, env)
	if err != nil {
		return 0, newError(p.expr, ErrSyntax, err.Error())
	}

	return toFloat(p.expr, out)
}

// variadic adapts a float function to expr-lang's untyped function signature.
func variadic(fn func(args []float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		args := make([]float64, len(params))

		for i, param := range params {
			v, err := toFloat("", param)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}

			args[i] = v
		}

		return fn(args), nil
	}
}

func zeroBindings(names []string) Bindings {
	b := make(Bindings, len(names))
	for _, name := range names {
		b[name] = 0
	}

	return b
}
