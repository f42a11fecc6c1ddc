package evaluator

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CEL evaluates through github.com/google/cel-go with the math vocabulary
// installed as a library.
type CEL struct {
	base *cel.Env
}

// NewCEL creates the CEL backend.
func NewCEL() (*CEL, error) {
	env, err := cel.NewEnv(MathLibrary())
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	return &CEL{base: env}, nil
}

func (c *CEL) Name() string { return "cel" }

func (c *CEL) Compile(src string, names []string) (Program, error) {
	chk, err := check(src, names)
	if err != nil {
		return nil, err
	}

	decls := make([]cel.EnvOption, 0, len(names)+len(Constants))
	for name := range Constants {
		decls = append(decls, cel.Variable(name, cel.DoubleType))
	}

	for _, name := range names {
		decls = append(decls, cel.Variable(name, cel.DoubleType))
	}

	env, err := c.base.Extend(decls...)
	if err != nil {
		return nil, newError(src, ErrSyntax, err.Error())
	}

	ast, iss := env.Compile(chk.source())
	if iss.Err() != nil {
		return nil, newError(src, ErrSyntax, iss.Err().Error())
	}

	if !ast.OutputType().IsExactType(cel.DoubleType) {
		return nil, newError(src, ErrNotNumeric, "expression type is "+ast.OutputType().String())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, newError(src, ErrSyntax, err.Error())
	}

	return &celProgram{checked: chk, program: prg}, nil
}

type celProgram struct {
	*checked
	program cel.Program
}

func (p *celProgram) Eval(bindings Bindings) (float64, error) {
	vars, err := p.activation(bindings)
	if err != nil {
		return 0, err
	}

	out, _, err := p.program.Eval(vars)
	if err != nil {
		return 0, newError(p.expr, ErrSyntax, err.Error())
	}

	return toFloat(p.expr, out.Value())
}

// MathLibrary returns a cel.EnvOption declaring the calculator's functions
// over doubles.
//
//	sin(double) -> double    (likewise cos tan sec csc cot ln sqrt abs asin acos atan)
//	log(double) -> double
//	log(double, double) -> double
//	pow(double, double) -> double
//	fmod(double, double) -> double
func MathLibrary() cel.EnvOption {
	return cel.Lib(&mathLib{})
}

type mathLib struct{}

// LibraryName implements the cel.SingletonLibrary interface method.
func (l *mathLib) LibraryName() string {
	return "snapplot.lib.math"
}

// CompileOptions implements the cel.Library interface method.
func (l *mathLib) CompileOptions() []cel.EnvOption {
	opts := make([]cel.EnvOption, 0, len(functions)+len(operators))

	for name, fn := range functions {
		overloads := make([]cel.FunctionOpt, 0, 2)

		if fn.arity.Min <= 1 && fn.arity.Max >= 1 {
			overloads = append(overloads, cel.Overload(name+"_double",
				[]*cel.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(unaryDouble(fn.call)),
			))
		}

		if fn.arity.Min <= 2 && fn.arity.Max >= 2 {
			overloads = append(overloads, cel.Overload(name+"_double_double",
				[]*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(binaryDouble(fn.call)),
			))
		}

		opts = append(opts, cel.Function(name, overloads...))
	}

	for name, op := range operators {
		call := func(args []float64) float64 { return op(args[0], args[1]) }
		opts = append(opts, cel.Function(name,
			cel.Overload(name+"_double_double",
				[]*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(binaryDouble(call)),
			),
		))
	}

	return opts
}

// ProgramOptions implements the cel.Library interface method.
func (l *mathLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

func unaryDouble(fn func([]float64) float64) func(ref.Val) ref.Val {
	return func(v ref.Val) ref.Val {
		d, ok := v.(types.Double)
		if !ok {
			return types.MaybeNoSuchOverloadErr(v)
		}

		return types.Double(fn([]float64{float64(d)}))
	}
}

func binaryDouble(fn func([]float64) float64) func(ref.Val, ref.Val) ref.Val {
	return func(lhs, rhs ref.Val) ref.Val {
		l, lok := lhs.(types.Double)
		r, rok := rhs.(types.Double)

		if !lok {
			return types.MaybeNoSuchOverloadErr(lhs)
		}

		if !rok {
			return types.MaybeNoSuchOverloadErr(rhs)
		}

		return types.Double(fn([]float64{float64(l), float64(r)}))
	}
}
