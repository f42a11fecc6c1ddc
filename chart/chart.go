// Package chart draws sampled series as PNG or SVG images, and exports them
// as JSON traces or a terminal summary.
package chart

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/shibukawa/snapplot/sampler"
)

// Default image size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// shadeAlpha is the opacity of region and band fills.
const shadeAlpha = 48

// Options configure an image.
type Options struct {
	Title  string
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}

	if o.Height <= 0 {
		o.Height = DefaultHeight
	}

	return o
}

// RenderPNG draws series into a PNG image.
func RenderPNG(w io.Writer, series []sampler.Series, vp sampler.Viewport, opts Options) error {
	c := build(series, vp.OrDefault(), opts.withDefaults(), func(s string) string { return s })

	if err := c.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return nil
}

// RenderSVG draws series into an SVG document. The document carries a
// <title> and one <desc> per failed expression.
func RenderSVG(w io.Writer, series []sampler.Series, vp sampler.Viewport, opts Options) error {
	opts = opts.withDefaults()
	c := build(series, vp.OrDefault(), opts, html.EscapeString)

	var buf bytes.Buffer
	if err := c.Render(gochart.SVG, &buf); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return annotateSVG(w, buf.Bytes(), opts.Title, series)
}

// build maps series onto a go-chart Chart. escape is applied to every text
// the renderer writes verbatim.
func build(series []sampler.Series, vp sampler.Viewport, opts Options, escape func(string) string) gochart.Chart {
	c := gochart.Chart{
		Title:  escape(opts.Title),
		Width:  opts.Width,
		Height: opts.Height,
		XAxis:  gochart.XAxis{Range: &gochart.ContinuousRange{Min: vp.XMin, Max: vp.XMax}},
		YAxis:  gochart.YAxis{Range: &gochart.ContinuousRange{Min: vp.YMin, Max: vp.YMax}},
	}

	if opts.Title == "" {
		c.TitleStyle.Hidden = true
	}

	// keeps the chart renderable when every series is empty or failed
	c.Series = append(c.Series, gochart.ContinuousSeries{
		XValues: []float64{vp.XMin, vp.XMax},
		YValues: []float64{vp.YMin, vp.YMin},
		Style:   gochart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: gochart.Disabled},
	})

	var failures []gochart.Value2

	for i, s := range series {
		color := seriesColor(s.Color, i)

		switch s.Display {
		case sampler.DisplaySentinel:
			failures = append(failures, gochart.Value2{
				XValue: clamp(0, vp.XMin, vp.XMax),
				YValue: clamp(0, vp.YMin, vp.YMax),
				Label:  escape("error: " + s.Label),
			})
		case sampler.DisplayScatter:
			if s.Len() == 0 {
				continue
			}

			c.Series = append(c.Series, gochart.ContinuousSeries{
				Name:    escape(s.Label),
				XValues: s.X,
				YValues: s.Y,
				Style:   gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 1.5, DotColor: color},
			})
		case sampler.DisplayBand:
			c.Elements = append(c.Elements, shadeBand(s, vp, color))
		default:
			if s.Display == sampler.DisplayRegion {
				c.Elements = append(c.Elements, shadeRegion(s, vp, color))
			}

			style := gochart.Style{StrokeColor: color, StrokeWidth: 2}
			if s.Dashed {
				style.StrokeDashArray = []float64{6, 4}
			}

			for _, part := range clipRuns(s, vp.YMin, vp.YMax) {
				c.Series = append(c.Series, gochart.ContinuousSeries{
					Name:    escape(s.Label),
					XValues: part.x,
					YValues: part.y,
					Style:   style,
				})
			}
		}
	}

	if len(failures) > 0 {
		c.Series = append(c.Series, gochart.AnnotationSeries{
			Name:        "errors",
			Annotations: failures,
			Style:       gochart.Style{FontColor: drawing.ColorRed, StrokeColor: drawing.ColorRed},
		})
	}

	return c
}

func seriesColor(raw string, index int) drawing.Color {
	// ParseColor slices hex codes without checking their length
	if strings.HasPrefix(raw, "#") && len(raw) != 4 && len(raw) != 7 {
		raw = ""
	}

	if raw != "" {
		if color := drawing.ParseColor(raw); !color.IsZero() {
			return color
		}
	}

	return gochart.GetDefaultColor(index)
}

type run struct {
	x []float64
	y []float64
}

// clipRuns splits a series into drawable polylines: gaps end a run, and
// points outside [lo, hi] are dropped except for the first point past the
// edge, which is clamped so the line reaches the border.
func clipRuns(s sampler.Series, lo, hi float64) []run {
	var (
		runs []run
		cur  run
	)

	flush := func() {
		if len(cur.x) > 1 {
			runs = append(runs, cur)
		}

		cur = run{}
	}

	inside := func(y float64) bool { return y >= lo && y <= hi }

	for xs, ys := range s.Segments() {
		for i := range xs {
			y := ys[i]

			switch {
			case inside(y):
				if len(cur.x) == 0 && i > 0 && !inside(ys[i-1]) {
					cur.x = append(cur.x, xs[i-1])
					cur.y = append(cur.y, clamp(ys[i-1], lo, hi))
				}

				cur.x = append(cur.x, xs[i])
				cur.y = append(cur.y, y)
			case len(cur.x) > 0:
				cur.x = append(cur.x, xs[i])
				cur.y = append(cur.y, clamp(y, lo, hi))
				flush()
			}
		}

		flush()
	}

	return runs
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// projector maps viewport coordinates into the canvas box.
type projector struct {
	box gochart.Box
	vp  sampler.Viewport
}

func (p projector) x(v float64) int {
	return p.box.Left + int((v-p.vp.XMin)/(p.vp.XMax-p.vp.XMin)*float64(p.box.Width()))
}

func (p projector) y(v float64) int {
	return p.box.Bottom - int((clamp(v, p.vp.YMin, p.vp.YMax)-p.vp.YMin)/(p.vp.YMax-p.vp.YMin)*float64(p.box.Height()))
}

// shadeRegion fills between a boundary and the viewport edge on the side
// the comparison holds.
func shadeRegion(s sampler.Series, vp sampler.Viewport, color drawing.Color) gochart.Renderable {
	edge := vp.YMax
	if s.HasOp && s.Op.Below() {
		edge = vp.YMin
	}

	return func(r gochart.Renderer, box gochart.Box, _ gochart.Style) {
		p := projector{box: box, vp: vp}

		for xs, ys := range s.Segments() {
			if len(xs) < 2 {
				continue
			}

			r.ResetStyle()
			r.SetFillColor(color.WithAlpha(shadeAlpha))
			r.SetStrokeWidth(0)

			r.MoveTo(p.x(xs[0]), p.y(edge))

			for i := range xs {
				r.LineTo(p.x(xs[i]), p.y(ys[i]))
			}

			r.LineTo(p.x(xs[len(xs)-1]), p.y(edge))
			r.Close()
			r.Fill()
		}
	}
}

// shadeBand fills the full-height strips where the mask holds.
func shadeBand(s sampler.Series, vp sampler.Viewport, color drawing.Color) gochart.Renderable {
	return func(r gochart.Renderer, box gochart.Box, _ gochart.Style) {
		p := projector{box: box, vp: vp}

		start := -1

		for i := 0; i <= len(s.Mask); i++ {
			on := i < len(s.Mask) && s.Mask[i]

			switch {
			case on && start < 0:
				start = i
			case !on && start >= 0:
				r.ResetStyle()
				r.SetFillColor(color.WithAlpha(shadeAlpha))
				r.SetStrokeWidth(0)

				left, right := p.x(s.X[start]), p.x(s.X[i-1])
				r.MoveTo(left, box.Top)
				r.LineTo(right, box.Top)
				r.LineTo(right, box.Bottom)
				r.LineTo(left, box.Bottom)
				r.Close()
				r.Fill()

				start = -1
			}
		}
	}
}
