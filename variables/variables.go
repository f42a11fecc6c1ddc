// Package variables maintains the slider environment: the free parameters
// referenced by the current expression set and their values.
package variables

import (
	"math"
	"slices"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/shibukawa/snapplot/evaluator"
	"github.com/shibukawa/snapplot/normalizer"
	"github.com/shibukawa/snapplot/tokenizer"
)

// Reserved names are never bindable variables.
var Reserved = []string{"x", "y", "e", normalizer.ConstantPI}

// Range is the slider domain.
type Range struct {
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// DefaultRange is [-10, 10] in steps of 0.1, new variables starting at 1.
var DefaultRange = Range{Min: -10, Max: 10, Step: 0.1, Default: 1}

// Valid reports whether the range can hold values.
func (r Range) Valid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && r.Min < r.Max &&
		r.Step > 0 && !math.IsInf(r.Step, 0)
}

// Quantize clamps v into the range and rounds it to the nearest step.
// NaN maps to the default value.
func (r Range) Quantize(v float64) float64 {
	if math.IsNaN(v) {
		v = r.Default
	}

	v = min(max(v, r.Min), r.Max)

	step := decimal.NewFromFloat(r.Step)
	q := decimal.NewFromFloat(v).Div(step).Round(0).Mul(step)

	lo := decimal.NewFromFloat(r.Min)
	hi := decimal.NewFromFloat(r.Max)

	if q.LessThan(lo) {
		q = lo
	}

	if q.GreaterThan(hi) {
		q = hi
	}

	return q.InexactFloat64()
}

// Environment is an immutable name to value mapping. The zero value is an
// empty environment over DefaultRange.
type Environment struct {
	values map[string]float64
	rng    *Range
}

// New returns an empty environment over r. An invalid range falls back to
// DefaultRange.
func New(r Range) Environment {
	if !r.Valid() {
		r = DefaultRange
	}

	return Environment{rng: &r}
}

// FromMap builds an environment holding values, each quantized into r.
func FromMap(r Range, values map[string]float64) Environment {
	env := New(r)
	for name, v := range values {
		env = env.With(name, v)
	}

	return env
}

// Range returns the slider domain.
func (e Environment) Range() Range {
	if e.rng == nil {
		return DefaultRange
	}

	return *e.rng
}

// Get returns the value bound to name.
func (e Environment) Get(name string) (float64, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Len returns the number of variables.
func (e Environment) Len() int {
	return len(e.values)
}

// Names returns the variable names in sorted order.
func (e Environment) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// With returns a copy of e with name set to v, clamped and quantized.
func (e Environment) With(name string, v float64) Environment {
	values := make(map[string]float64, len(e.values)+1)
	for k, old := range e.values {
		values[k] = old
	}

	values[name] = e.Range().Quantize(v)

	return Environment{values: values, rng: e.rng}
}

// Bindings returns a fresh binding map for the evaluator.
func (e Environment) Bindings() evaluator.Bindings {
	b := make(evaluator.Bindings, len(e.values)+2)
	for k, v := range e.values {
		b[k] = v
	}

	return b
}

// Extract returns the variable names referenced by raw after normalization,
// sorted. Names are single letters; the plot axes, e, PI and function names
// are excluded. Names are case-sensitive.
func Extract(raw string) []string {
	tokens, _ := tokenizer.NewMathTokenizer(normalizer.Normalize(raw)).AllTokens()

	var names []string

	for _, t := range tokens {
		if t.Type != tokenizer.IDENTIFIER || utf8.RuneCountInString(t.Value) != 1 {
			continue
		}

		if slices.Contains(Reserved, t.Value) || slices.Contains(names, t.Value) {
			continue
		}

		names = append(names, t.Value)
	}

	slices.Sort(names)

	return names
}

// Recompute derives the environment for a new expression set: names still
// referenced keep their previous value, new names start at the range default
// and names no longer referenced are dropped.
func Recompute(prev Environment, raws []string) Environment {
	next := Environment{values: map[string]float64{}, rng: prev.rng}
	def := prev.Range().Quantize(prev.Range().Default)

	for _, raw := range raws {
		for _, name := range Extract(raw) {
			if _, ok := next.values[name]; ok {
				continue
			}

			if v, ok := prev.values[name]; ok {
				next.values[name] = v
			} else {
				next.values[name] = def
			}
		}
	}

	return next
}
