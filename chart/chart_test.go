package chart

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/shibukawa/snapplot/evaluator"
	"github.com/shibukawa/snapplot/sampler"
	"github.com/shibukawa/snapplot/variables"
)

var viewport = sampler.Viewport{XMin: -5, XMax: 5, YMin: -5, YMax: 5}

// sampleAll renders one of every relation kind plus a failing row. The
// environment is left empty so "qx" fails with an unknown identifier.
func sampleAll(t *testing.T) []sampler.Series {
	t.Helper()

	s := sampler.New(evaluator.NewExprLang(), sampler.Options{Samples: 60, GridSize: 40})

	series := s.Render([]sampler.Row{
		{Text: "x^2-3", Color: "#1f77b4"},
		{Text: "y<x"},
		{Text: "y>x-1&&y<x+1"},
		{Text: "x>=2", Color: "red"},
		{Text: "x^2+y^2=4"},
		{Text: "qx"},
	}, variables.Environment{}, viewport)
	require.Len(t, series, 7)

	return series
}

func TestRenderSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, sampleAll(t), viewport, Options{Title: "Demo <1>"}))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "svg", root.Tag)

	title := root.FindElement("title")
	require.NotNil(t, title)
	assert.Equal(t, "Demo <1>", title.Text())

	descs := root.FindElements("desc")
	require.Len(t, descs, 1)
	assert.Equal(t, "qx", descs[0].SelectAttrValue("data-expression", ""))
	assert.Contains(t, descs[0].Text(), "q")
}

func TestRenderSVG_DefaultTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, nil, viewport, Options{}))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	title := doc.Root().FindElement("title")
	require.NotNil(t, title)
	assert.Equal(t, "snapplot", title.Text())
	assert.Empty(t, doc.Root().FindElements("desc"))
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, sampleAll(t), viewport, Options{Width: 320, Height: 240}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRenderPNG_OnlyFailures(t *testing.T) {
	s := sampler.New(evaluator.NewExprLang(), sampler.Options{})
	series := s.Sample("qx", variables.Environment{}, viewport)

	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, series, sampler.Viewport{}, Options{}))
	assert.NotZero(t, buf.Len())
}

func TestClipRuns(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name string
		x    []float64
		y    []float64
		want []run
	}{
		{
			name: "gaps and exits",
			x:    []float64{0, 1, 2, 3, 4},
			y:    []float64{0, 5, nan, 1, 20},
			want: []run{{x: []float64{0, 1}, y: []float64{0, 2}}, {x: []float64{3, 4}, y: []float64{1, 2}}},
		},
		{
			name: "entering from above",
			x:    []float64{0, 1, 2},
			y:    []float64{10, 1, 1},
			want: []run{{x: []float64{0, 1, 2}, y: []float64{2, 1, 1}}},
		},
		{
			name: "isolated point dropped",
			x:    []float64{0, 1, 2},
			y:    []float64{1, nan, 1},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clipRuns(sampler.Series{X: tt.x, Y: tt.y}, -2, 2)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeriesColor(t *testing.T) {
	assert.Equal(t, drawing.ColorFromHex("d62728"), seriesColor("#d62728", 0))
	assert.Equal(t, drawing.ColorRed, seriesColor("red", 0))
	assert.Equal(t, gochart.GetDefaultColor(2), seriesColor("#12", 2))
	assert.Equal(t, gochart.GetDefaultColor(3), seriesColor("", 3))
	assert.Equal(t, gochart.GetDefaultColor(1), seriesColor("no-such-color", 1))
}

func TestTraces(t *testing.T) {
	series := sampleAll(t)
	traces := Traces(series)
	require.Len(t, traces, len(series))

	assert.Equal(t, "lines", traces[0].Mode)
	assert.Equal(t, "#1f77b4", traces[0].Line.Color)
	assert.Equal(t, "tozeroy", traces[1].Fill)
	assert.Equal(t, "dash", traces[1].Line.Dash)
	assert.Empty(t, traces[2].Fill)
	assert.Equal(t, "tonexty", traces[3].Fill)
	assert.Equal(t, "markers", traces[5].Mode)
	assert.Equal(t, "implicit", traces[5].Kind)
	assert.NotEmpty(t, traces[6].Error)

	band := traces[4]
	for i, x := range band.X {
		if x < 2 {
			assert.Nil(t, band.Y[i])
		} else {
			require.NotNil(t, band.Y[i])
			assert.Equal(t, viewport.YMax, *band.Y[i])
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleAll(t), sampler.Viewport{}, "demo"))

	var figure struct {
		Title    string           `json:"title"`
		Viewport sampler.Viewport `json:"viewport"`
		Traces   []map[string]any `json:"traces"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &figure))

	assert.Equal(t, "demo", figure.Title)
	assert.Equal(t, sampler.DefaultViewport, figure.Viewport)
	assert.Len(t, figure.Traces, 7)
}

func TestPrintSummary(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true

	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	failed := PrintSummary(&buf, sampleAll(t))

	assert.Equal(t, 1, failed)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "✓ x^2-3 [explicit/line]"))
	assert.Contains(t, buf.String(), "grid nodes")
	assert.Contains(t, buf.String(), "✗ qx [explicit]")
}
