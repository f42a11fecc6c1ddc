package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/shibukawa/snapplot"
	"github.com/shibukawa/snapplot/chart"
	"github.com/shibukawa/snapplot/sampler"
)

var outputFormats = []string{"png", "svg", "json"}

// PlotCmd represents the plot command
type PlotCmd struct {
	Expressions []string           `arg:"" optional:"" help:"Expressions to plot"`
	File        string             `short:"f" help:"Worksheet file (.yaml or .md)" type:"existingfile"`
	Set         map[string]float64 `help:"Variable values (name=value)"`
	Viewport    []float64          `help:"Viewport as x_min,x_max,y_min,y_max" sep:","`
	Output      string             `short:"o" help:"Output file (stdout when omitted)"`
	Format      string             `help:"Output format: png, svg or json (defaults to the output extension, then config)"`
	Title       string             `help:"Chart title (defaults to the worksheet title)"`
	Strict      bool               `help:"Fail when any expression cannot be rendered"`
}

// Run executes the plot command
func (cmd *PlotCmd) Run(ctx *Context) error {
	config, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	ws, err := loadInputs(cmd.Expressions, cmd.File)
	if err != nil {
		return err
	}

	snap, err := buildSnapshot(config, ws, cmd.Set)
	if err != nil {
		return err
	}

	vp, err := resolveViewport(config, ws, cmd.Viewport)
	if err != nil {
		return err
	}

	format, err := resolveFormat(cmd.Format, cmd.Output, config.Output.Format)
	if err != nil {
		return err
	}

	s, err := newSampler(ctx, config, nil)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		fmt.Fprintln(ctx.Stderr, color.BlueString("Plotting %d expression(s) in [%g, %g] x [%g, %g]", len(snap.Rows), vp.XMin, vp.XMax, vp.YMin, vp.YMax))
	}

	series := s.Render(snap.SamplerRows(), snap.Env, vp)

	title := cmd.Title
	if title == "" {
		title = ws.Title
	}

	var buf bytes.Buffer
	if err := writeChart(&buf, format, series, vp, config.ChartOptions(title)); err != nil {
		return err
	}

	if err := writeOutput(ctx, cmd.Output, buf.Bytes()); err != nil {
		return err
	}

	failed := 0
	if !ctx.Quiet {
		failed = chart.PrintSummary(ctx.Stderr, series)
	} else {
		for _, sr := range series {
			if sr.Failed() {
				failed++
			}
		}
	}

	if cmd.Strict && failed > 0 {
		return fmt.Errorf("%w: %d", ErrFailedExpressions, failed)
	}

	return nil
}

// resolveFormat picks the flag value, then the output file extension, then
// the configured format.
func resolveFormat(flag, output, configured string) (string, error) {
	format := strings.ToLower(flag)

	if format == "" && output != "" {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(output), "."))
		if slices.Contains(outputFormats, ext) {
			format = ext
		}
	}

	if format == "" {
		format = configured
	}

	if !slices.Contains(outputFormats, format) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return format, nil
}

// newSampler creates a sampler from the configuration. In verbose mode every
// sampled expression is logged to stderr.
func newSampler(ctx *Context, config *snapplot.Config, observer sampler.Observer) (*sampler.Sampler, error) {
	ev, err := config.NewEvaluator()
	if err != nil {
		return nil, err
	}

	opts := config.SamplerOptions()
	opts.Observer = observer

	if ctx.Verbose {
		opts.Logger = func(entry sampler.RenderLogEntry) {
			if entry.Error != "" {
				fmt.Fprintln(ctx.Stderr, color.YellowString("  %s -> %s [%s] failed after %s: %s", entry.Raw, entry.Normalized, entry.Kind, entry.Duration, entry.Error))
				return
			}

			fmt.Fprintln(ctx.Stderr, color.CyanString("  %s -> %s [%s] %d series, %d points in %s", entry.Raw, entry.Normalized, entry.Kind, entry.Series, entry.Points, entry.Duration))
		}
	}

	return sampler.New(ev, opts), nil
}

func writeChart(w io.Writer, format string, series []sampler.Series, vp sampler.Viewport, opts chart.Options) error {
	switch format {
	case "png":
		return chart.RenderPNG(w, series, vp, opts)
	case "svg":
		return chart.RenderSVG(w, series, vp, opts)
	case "json":
		return chart.WriteJSON(w, series, vp, opts.Title)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// writeOutput writes to stdout when path is empty.
func writeOutput(ctx *Context, path string, data []byte) error {
	if path == "" {
		_, err := ctx.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if ctx.Verbose {
		fmt.Fprintln(ctx.Stderr, color.GreenString("Written: %s", path))
	}

	return nil
}
