// Package sampler turns raw expressions into renderable series.
//
// Each expression is normalized, classified and sampled over the viewport
// with the evaluator. A render pass recomputes every row from scratch; an
// expression that fails becomes a sentinel series and never affects the
// other rows.
package sampler

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shibukawa/snapplot/evaluator"
	"github.com/shibukawa/snapplot/normalizer"
	"github.com/shibukawa/snapplot/relation"
	"github.com/shibukawa/snapplot/variables"
)

// Defaults for Options.
const (
	DefaultSamples         = 1000
	DefaultGridSize        = 150
	DefaultToleranceFactor = 4.0
)

// Options tune sampling density.
type Options struct {
	// Samples is the number of x positions for one-dimensional curves.
	Samples int
	// GridSize is the number of nodes per axis for implicit relations.
	GridSize int
	// ToleranceFactor scales the implicit on-curve tolerance with the node
	// spacing: a node is on the curve when |F| <= ToleranceFactor * h.
	ToleranceFactor float64
	Logger          LoggerFunc
	Observer        Observer
}

func (o Options) withDefaults() Options {
	if o.Samples < 2 {
		o.Samples = DefaultSamples
	}

	if o.GridSize < 2 {
		o.GridSize = DefaultGridSize
	}

	if o.ToleranceFactor <= 0 || math.IsNaN(o.ToleranceFactor) || math.IsInf(o.ToleranceFactor, 0) {
		o.ToleranceFactor = DefaultToleranceFactor
	}

	return o
}

// Row is one expression of a render pass.
type Row struct {
	Text  string
	Color string
}

// Sampler samples expressions with an evaluator.
type Sampler struct {
	ev   evaluator.Evaluator
	opts Options
}

// New creates a Sampler. Zero option fields take the package defaults.
func New(ev evaluator.Evaluator, opts Options) *Sampler {
	return &Sampler{ev: ev, opts: opts.withDefaults()}
}

// Options returns the effective options.
func (s *Sampler) Options() Options {
	return s.opts
}

// Render samples every non-empty row. Series come back in row order; a
// compound inequality contributes two series, a failed row one sentinel.
func (s *Sampler) Render(rows []Row, env variables.Environment, vp Viewport) []Series {
	var out []Series

	for _, row := range rows {
		if strings.TrimSpace(row.Text) == "" {
			continue
		}

		series := s.Sample(row.Text, env, vp)
		for i := range series {
			series[i].Color = row.Color
		}

		out = append(out, series...)
	}

	return out
}

// Sample normalizes, classifies and samples one raw expression. It never
// fails: evaluator errors yield a single sentinel series carrying the error.
func (s *Sampler) Sample(raw string, env variables.Environment, vp Viewport) []Series {
	normalized := normalizer.Normalize(raw)
	logger := s.startLog(raw, normalized)

	rel := relation.Classify(normalized)

	series, err := s.sample(rel, env, vp.OrDefault())
	if err != nil {
		series = []Series{sentinel(err)}
	}

	for i := range series {
		series[i].Kind = rel.Kind()
		series[i].Label = raw
		series[i].Normalized = normalized
	}

	logger.finish(rel.Kind(), series)

	return series
}

func (s *Sampler) sample(rel relation.Relation, env variables.Environment, vp Viewport) ([]Series, error) {
	switch r := rel.(type) {
	case relation.YInequality:
		boundary, err := s.curve(r.RHS, env, vp)
		if err != nil {
			return nil, err
		}

		boundary.Display = DisplayRegion
		boundary.Fill = FillToBaseline
		boundary.Op, boundary.HasOp, boundary.Dashed = r.Op, true, r.Op.Strict()

		return []Series{boundary}, nil
	case relation.CompoundInequality:
		first, err := s.curve(r.First.Expr, env, vp)
		if err != nil {
			return nil, err
		}

		second, err := s.curve(r.Second.Expr, env, vp)
		if err != nil {
			return nil, err
		}

		first.Op, first.HasOp, first.Dashed = r.First.Op, true, r.First.Op.Strict()
		second.Display = DisplayRegion
		second.Fill = FillToPrevious
		second.Op, second.HasOp, second.Dashed = r.Second.Op, true, r.Second.Op.Strict()

		return []Series{first, second}, nil
	case relation.XInequality:
		band, err := s.band(r, env, vp)
		if err != nil {
			return nil, err
		}

		return []Series{band}, nil
	case relation.Implicit:
		locus, err := s.implicit(r.Residual, env, vp)
		if err != nil {
			return nil, err
		}

		return []Series{locus}, nil
	case relation.Explicit:
		line, err := s.curve(r.Expr, env, vp)
		if err != nil {
			return nil, err
		}

		return []Series{line}, nil
	default:
		return nil, fmt.Errorf("unsupported relation %T", rel)
	}
}

func (s *Sampler) compile(expr string, env variables.Environment, axes ...string) (evaluator.Program, evaluator.Bindings, error) {
	names := env.Names()
	for _, axis := range axes {
		if !slices.Contains(names, axis) {
			names = append(names, axis)
		}
	}

	prg, err := s.ev.Compile(expr, names)
	if err != nil {
		return nil, nil, err
	}

	return prg, env.Bindings(), nil
}

// curve samples y = expr(x) at Samples evenly spaced x positions.
func (s *Sampler) curve(expr string, env variables.Environment, vp Viewport) (Series, error) {
	prg, bindings, err := s.compile(expr, env, "x")
	if err != nil {
		return Series{}, err
	}

	xs := linspace(vp.XMin, vp.XMax, s.opts.Samples)
	ys := make([]float64, len(xs))
	finite := 0

	for i, x := range xs {
		bindings["x"] = x

		y, err := prg.Eval(bindings)
		if err != nil {
			return Series{}, err
		}

		if math.IsNaN(y) || math.IsInf(y, 0) {
			y = math.NaN()
		} else {
			finite++
		}

		ys[i] = y
	}

	if finite == 0 {
		return Series{}, fmt.Errorf("%w: %s", ErrNonFinite, expr)
	}

	return Series{Display: DisplayLine, X: xs, Y: ys}, nil
}

// band evaluates the threshold once and marks the x positions that satisfy
// the comparison. Inside points sit at the top of the viewport so a fill to
// the baseline covers the band; outside points are gaps.
func (s *Sampler) band(r relation.XInequality, env variables.Environment, vp Viewport) (Series, error) {
	prg, bindings, err := s.compile(r.Threshold, env)
	if err != nil {
		return Series{}, err
	}

	threshold, err := prg.Eval(bindings)
	if err != nil {
		return Series{}, err
	}

	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return Series{}, fmt.Errorf("%w: %s", ErrNonFinite, r.Threshold)
	}

	xs := linspace(vp.XMin, vp.XMax, s.opts.Samples)
	ys := make([]float64, len(xs))
	mask := make([]bool, len(xs))

	for i, x := range xs {
		mask[i] = r.Op.Holds(x, threshold)
		if mask[i] {
			ys[i] = vp.YMax
		} else {
			ys[i] = math.NaN()
		}
	}

	return Series{
		Display: DisplayBand,
		Fill:    FillBand,
		Op:      r.Op,
		HasOp:   true,
		Dashed:  r.Op.Strict(),
		X:       xs,
		Y:       ys,
		Mask:    mask,
	}, nil
}

// IsValid is the cheap pre-check for an input row. Empty text and
// non-explicit relations are valid; an explicit expression is valid when it
// evaluates without error at x = 0.
func (s *Sampler) IsValid(raw string, env variables.Environment) bool {
	normalized := normalizer.Normalize(raw)
	if normalized == "" {
		return true
	}

	r, ok := relation.Classify(normalized).(relation.Explicit)
	if !ok {
		return true
	}

	prg, bindings, err := s.compile(r.Expr, env, "x")
	if err != nil {
		return false
	}

	bindings["x"] = 0
	_, err = prg.Eval(bindings)

	return err == nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNonFinite):
		return "non_finite"
	case errors.Is(err, evaluator.ErrUnknownIdentifier):
		return "unknown_identifier"
	case errors.Is(err, evaluator.ErrArity):
		return "arity"
	case errors.Is(err, evaluator.ErrSyntax):
		return "syntax"
	case errors.Is(err, evaluator.ErrNotNumeric):
		return "not_numeric"
	case errors.Is(err, evaluator.ErrMissingBinding):
		return "missing_binding"
	default:
		return "other"
	}
}
