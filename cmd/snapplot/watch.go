package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shibukawa/snapplot"
	"github.com/shibukawa/snapplot/chart"
	"github.com/shibukawa/snapplot/metrics"
	"github.com/shibukawa/snapplot/sampler"
	"github.com/shibukawa/snapplot/session"
	"github.com/shibukawa/snapplot/worksheet"
)

// WatchCmd represents the watch command. Every stdin line is injected into
// the session as a new expression; ":set name=value" moves a slider. The
// plot is re-rendered whenever the session changes.
type WatchCmd struct {
	File        string        `short:"f" help:"Worksheet file to start from (.yaml or .md)" type:"existingfile"`
	Output      string        `short:"o" help:"Output file rewritten after every render pass"`
	Format      string        `help:"Output format: png, svg or json"`
	Viewport    []float64     `help:"Viewport as x_min,x_max,y_min,y_max" sep:","`
	Interval    time.Duration `help:"Render interval" default:"200ms"`
	MetricsAddr string        `help:"Serve Prometheus metrics on this address (e.g. :9090)"`
}

type watcher struct {
	ctx     *Context
	config  *snapplot.Config
	session *session.Session
	sampler *sampler.Sampler
	metrics *metrics.SamplerMetrics
	vp      sampler.Viewport
	title   string
	format  string
	output  string
	version uint64
	passes  int
}

// Run executes the watch command
func (cmd *WatchCmd) Run(ctx *Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.watch(sigCtx, ctx)
}

func (cmd *WatchCmd) watch(runCtx context.Context, ctx *Context) error {
	config, err := ctx.loadConfig()
	if err != nil {
		return err
	}

	w := &watcher{
		ctx:     ctx,
		config:  config,
		session: session.New(config.SessionOptions()),
		output:  cmd.Output,
	}

	if cmd.Output != "" {
		if w.format, err = resolveFormat(cmd.Format, cmd.Output, config.Output.Format); err != nil {
			return err
		}
	}

	var ws *worksheet.Worksheet
	if cmd.File != "" {
		loaded, err := loadInputs(nil, cmd.File)
		if err != nil {
			return err
		}

		rows := make([]session.Row, len(loaded.Expressions))
		for i, e := range loaded.Expressions {
			rows[i] = session.Row{Text: e.Text, Color: e.Color}
		}

		w.session.Replace(rows, loaded.Variables)
		w.title = loaded.Title
		ws = loaded
	}

	if w.vp, err = resolveViewport(config, ws, cmd.Viewport); err != nil {
		return err
	}

	if cmd.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		w.metrics = metrics.New()
		w.metrics.MustRegister(registry)

		shutdown := serveMetrics(ctx, cmd.MetricsAddr, registry)
		defer shutdown()
	}

	var observer sampler.Observer
	if w.metrics != nil {
		observer = w.metrics
	}

	if w.sampler, err = newSampler(ctx, config, observer); err != nil {
		return err
	}

	interval := cmd.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}

	lines := readLines(runCtx, ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := w.render(); err != nil {
		return err
	}

	for {
		select {
		case <-runCtx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				w.session.Drain()
				return w.render()
			}

			w.handle(line)
		case <-ticker.C:
			w.session.Drain()

			if err := w.render(); err != nil {
				return err
			}
		}
	}
}

// handle applies one input line.
func (w *watcher) handle(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	if rest, ok := strings.CutPrefix(line, ":set"); ok {
		// injections queued before the command may introduce the variable
		w.session.Drain()

		if err := w.setVariable(rest); err != nil {
			w.warn(err)
		}

		return
	}

	if err := w.inject(foldAll([]string{line})[0]); err != nil {
		w.warn(err)
	}
}

// inject queues text, draining a full inbox into the session first so no
// host input is lost between render passes.
func (w *watcher) inject(text string) error {
	err := w.session.Inject(text)
	if errors.Is(err, session.ErrInboxFull) {
		w.session.Drain()
		err = w.session.Inject(text)
	}

	return err
}

func (w *watcher) setVariable(arg string) error {
	name, value, ok := strings.Cut(strings.TrimSpace(arg), "=")
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSetCommand, arg)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSetCommand, arg)
	}

	return w.session.SetVariable(strings.TrimSpace(name), v)
}

// render runs a render pass when the session changed since the last one.
func (w *watcher) render() error {
	snap := w.session.Snapshot()
	if w.passes > 0 && snap.Version == w.version {
		return nil
	}

	w.version = snap.Version
	w.passes++

	series := w.sampler.Render(snap.SamplerRows(), snap.Env, w.vp)

	if w.metrics != nil {
		w.metrics.ObserveRenderPass()
	}

	if w.output != "" {
		var buf bytes.Buffer
		if err := writeChart(&buf, w.format, series, w.vp, w.config.ChartOptions(w.title)); err != nil {
			return err
		}

		if err := writeOutput(w.ctx, w.output, buf.Bytes()); err != nil {
			return err
		}
	}

	if !w.ctx.Quiet {
		fmt.Fprintln(w.ctx.Stderr, color.BlueString("-- render pass %d (version %d) --", w.passes, snap.Version))
		chart.PrintSummary(w.ctx.Stderr, series)
	}

	return nil
}

func (w *watcher) warn(err error) {
	if !w.ctx.Quiet {
		fmt.Fprintln(w.ctx.Stderr, color.YellowString("warning: %v", err))
	}
}

// readLines scans stdin in the background. The channel is closed at EOF.
func readLines(runCtx context.Context, ctx *Context) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(ctx.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-runCtx.Done():
				return
			}
		}
	}()

	return lines
}

// serveMetrics starts the metrics endpoint and returns its shutdown func.
func serveMetrics(ctx *Context, addr string, registry *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintln(ctx.Stderr, color.RedString("metrics server: %v", err))
		}
	}()

	if ctx.Verbose {
		fmt.Fprintln(ctx.Stderr, color.BlueString("Serving metrics on %s/metrics", addr))
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}
}
