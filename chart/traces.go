package chart

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/shibukawa/snapplot/sampler"
)

// Trace is one plotly-style trace. Gaps are encoded as null.
type Trace struct {
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Mode   string     `json:"mode"`
	X      []float64  `json:"x"`
	Y      []*float64 `json:"y"`
	Fill   string     `json:"fill,omitempty"`
	Line   *Line      `json:"line,omitempty"`
	Marker *Marker    `json:"marker,omitempty"`
	Kind   string     `json:"kind"`
	Error  string     `json:"error,omitempty"`
}

// Line is the stroke of a trace.
type Line struct {
	Color string `json:"color,omitempty"`
	Dash  string `json:"dash,omitempty"`
}

// Marker is the dot style of a scatter trace.
type Marker struct {
	Color string  `json:"color,omitempty"`
	Size  float64 `json:"size"`
}

// Figure is the document written by WriteJSON.
type Figure struct {
	Title    string           `json:"title,omitempty"`
	Viewport sampler.Viewport `json:"viewport"`
	Traces   []Trace          `json:"traces"`
}

// Traces converts series into plotly-style traces.
func Traces(series []sampler.Series) []Trace {
	traces := make([]Trace, 0, len(series))

	for _, s := range series {
		t := Trace{
			Name: s.Label,
			Type: "scatter",
			Mode: "lines",
			X:    s.X,
			Y:    nullable(s.Y),
			Kind: s.Kind.String(),
		}

		switch s.Display {
		case sampler.DisplaySentinel:
			t.Mode = "markers"
			t.Error = s.Err.Error()
			t.Marker = &Marker{Color: "red", Size: 8}
		case sampler.DisplayScatter:
			t.Mode = "markers"
			t.Marker = &Marker{Color: s.Color, Size: 2}
		default:
			t.Line = &Line{Color: s.Color}
			if s.Dashed {
				t.Line.Dash = "dash"
			}

			switch s.Fill {
			case sampler.FillToBaseline, sampler.FillToPrevious:
				t.Fill = s.Fill.String()
			case sampler.FillBand:
				t.Fill = sampler.FillToBaseline.String()
			}
		}

		traces = append(traces, t)
	}

	return traces
}

// WriteJSON writes series as a plotly-like figure.
func WriteJSON(w io.Writer, series []sampler.Series, vp sampler.Viewport, title string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(Figure{Title: title, Viewport: vp.OrDefault(), Traces: Traces(series)}); err != nil {
		return fmt.Errorf("failed to encode traces: %w", err)
	}

	return nil
}

// nullable maps non-finite values to nil, which encoding/json rejects as
// numbers.
func nullable(ys []float64) []*float64 {
	out := make([]*float64, len(ys))

	for i := range ys {
		if !math.IsNaN(ys[i]) && !math.IsInf(ys[i], 0) {
			out[i] = &ys[i]
		}
	}

	return out
}
