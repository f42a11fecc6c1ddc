package sampler

import (
	"math"

	"github.com/shibukawa/snapplot/variables"
)

// implicit samples the zero set of residual on a GridSize x GridSize node
// grid. A node is on the curve when |F| is within ToleranceFactor times the
// node spacing, or when F changes sign towards its right or upper neighbour
// and the node is the closer of the two to zero. The tolerance follows the
// spacing so the locus keeps the same visual thickness at any resolution.
//
// An empty locus and an everywhere-true relation are both ordinary results.
func (s *Sampler) implicit(residual string, env variables.Environment, vp Viewport) (Series, error) {
	prg, bindings, err := s.compile(residual, env, "x", "y")
	if err != nil {
		return Series{}, err
	}

	n := s.opts.GridSize
	xs := linspace(vp.XMin, vp.XMax, n)
	ys := linspace(vp.YMin, vp.YMax, n)

	h := max((vp.XMax-vp.XMin)/float64(n-1), (vp.YMax-vp.YMin)/float64(n-1))
	tolerance := s.opts.ToleranceFactor * h

	values := make([][]float64, n)
	on := make([][]bool, n)

	for j, y := range ys {
		values[j] = make([]float64, n)
		on[j] = make([]bool, n)
		bindings["y"] = y

		for i, x := range xs {
			bindings["x"] = x

			f, err := prg.Eval(bindings)
			if err != nil {
				return Series{}, err
			}

			values[j][i] = f
			on[j][i] = finite(f) && math.Abs(f) <= tolerance
		}
	}

	for j := range n {
		for i := range n {
			f := values[j][i]
			if !finite(f) {
				continue
			}

			if i+1 < n {
				markCrossing(on, values, j, i, j, i+1)
			}

			if j+1 < n {
				markCrossing(on, values, j, i, j+1, i)
			}
		}
	}

	grid := &Grid{X: xs, Y: ys, On: on}
	count := grid.Count()
	px := make([]float64, 0, count)
	py := make([]float64, 0, count)

	for j, y := range ys {
		for i, x := range xs {
			if on[j][i] {
				px = append(px, x)
				py = append(py, y)
			}
		}
	}

	return Series{Display: DisplayScatter, X: px, Y: py, Grid: grid}, nil
}

func markCrossing(on [][]bool, values [][]float64, j1, i1, j2, i2 int) {
	a, b := values[j1][i1], values[j2][i2]
	if !finite(b) || !(a < 0 && b > 0 || a > 0 && b < 0) {
		return
	}

	if math.Abs(a) <= math.Abs(b) {
		on[j1][i1] = true
	} else {
		on[j2][i2] = true
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
