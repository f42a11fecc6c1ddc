package sampler

import (
	"iter"
	"math"

	"github.com/shibukawa/snapplot/relation"
)

// DisplayKind tells the chart how to draw a series.
type DisplayKind int

const (
	DisplayLine DisplayKind = iota
	DisplayRegion
	DisplayBand
	DisplayScatter
	DisplaySentinel
)

func (d DisplayKind) String() string {
	switch d {
	case DisplayLine:
		return "line"
	case DisplayRegion:
		return "region"
	case DisplayBand:
		return "band"
	case DisplayScatter:
		return "scatter"
	case DisplaySentinel:
		return "sentinel"
	default:
		return "unknown"
	}
}

// FillHint says which area a region series shades.
type FillHint int

const (
	FillNone FillHint = iota
	FillToBaseline
	FillToPrevious
	FillBand
)

func (f FillHint) String() string {
	switch f {
	case FillNone:
		return "none"
	case FillToBaseline:
		return "tozeroy"
	case FillToPrevious:
		return "tonexty"
	case FillBand:
		return "band"
	default:
		return "unknown"
	}
}

// Grid is the node grid of an implicit relation. On[j][i] is true when the
// node at (X[i], Y[j]) lies on the curve.
type Grid struct {
	X  []float64
	Y  []float64
	On [][]bool
}

// Count returns the number of nodes on the curve.
func (g *Grid) Count() int {
	n := 0

	for _, row := range g.On {
		for _, on := range row {
			if on {
				n++
			}
		}
	}

	return n
}

// Series is one renderable result. X and Y have equal length; NaN entries
// are gaps.
type Series struct {
	Display    DisplayKind
	Fill       FillHint
	Kind       relation.Kind
	Op         relation.Comparator
	HasOp      bool
	Dashed     bool
	Color      string
	Label      string
	Normalized string
	X          []float64
	Y          []float64
	Mask       []bool
	Grid       *Grid
	Err        error
}

// Failed reports whether the series is a failure sentinel.
func (s Series) Failed() bool {
	return s.Err != nil
}

// Len returns the number of points including gaps.
func (s Series) Len() int {
	return len(s.X)
}

// Finite returns the number of points with a finite y.
func (s Series) Finite() int {
	n := 0

	for _, y := range s.Y {
		if !math.IsNaN(y) && !math.IsInf(y, 0) {
			n++
		}
	}

	return n
}

// Points iterates over (x, y) pairs, gaps included. The sequence can be
// ranged over any number of times.
func (s Series) Points() iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		for i := range s.X {
			if !yield(s.X[i], s.Y[i]) {
				return
			}
		}
	}
}

// Segments iterates over the maximal runs of finite points.
func (s Series) Segments() iter.Seq2[[]float64, []float64] {
	return func(yield func([]float64, []float64) bool) {
		start := -1

		for i := 0; i <= len(s.X); i++ {
			finite := i < len(s.X) && !math.IsNaN(s.Y[i]) && !math.IsInf(s.Y[i], 0)

			switch {
			case finite && start < 0:
				start = i
			case !finite && start >= 0:
				if !yield(s.X[start:i], s.Y[start:i]) {
					return
				}

				start = -1
			}
		}
	}
}

func sentinel(err error) Series {
	return Series{
		Display: DisplaySentinel,
		X:       []float64{0},
		Y:       []float64{0},
		Err:     err,
	}
}
