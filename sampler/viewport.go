package sampler

import "math"

// Viewport is the plotted rectangle.
type Viewport struct {
	XMin float64 `json:"x_min" yaml:"x_min"`
	XMax float64 `json:"x_max" yaml:"x_max"`
	YMin float64 `json:"y_min" yaml:"y_min"`
	YMax float64 `json:"y_max" yaml:"y_max"`
}

// DefaultViewport is [-10, 10] x [-10, 10].
var DefaultViewport = Viewport{XMin: -10, XMax: 10, YMin: -10, YMax: 10}

// Valid reports whether both ranges are finite and non-empty.
func (v Viewport) Valid() bool {
	for _, f := range []float64{v.XMin, v.XMax, v.YMin, v.YMax} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}

	return v.XMin < v.XMax && v.YMin < v.YMax
}

// OrDefault returns v, or DefaultViewport when v is not valid.
func (v Viewport) OrDefault() Viewport {
	if v.Valid() {
		return v
	}

	return DefaultViewport
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}

	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)

	for i := range out {
		out[i] = lo + step*float64(i)
	}

	out[n-1] = hi

	return out
}
