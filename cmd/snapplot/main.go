package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/shibukawa/snapplot"
)

// version is overwritten at build time with -ldflags "-X main.version=...".
var version = "v0.1.0"

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// CLI represents the command-line interface
type CLI struct {
	Config    string       `help:"Configuration file path" default:"snapplot.yaml"`
	Verbose   bool         `help:"Enable verbose output" short:"v"`
	Quiet     bool         `help:"Suppress output" short:"q"`
	Normalize NormalizeCmd `cmd:"" help:"Print the canonical form of expressions"`
	Classify  ClassifyCmd  `cmd:"" help:"Print the relation kind of expressions"`
	Check     CheckCmd     `cmd:"" help:"Check that expressions can be evaluated"`
	Plot      PlotCmd      `cmd:"" help:"Render expressions to PNG, SVG or JSON"`
	Watch     WatchCmd     `cmd:"" help:"Read expressions from stdin and re-render on every change"`
	Session   SessionCmd   `cmd:"" help:"Manage saved sessions"`
	Version   VersionCmd   `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintf(ctx.Stdout, "snapplot %s\n", version)
	return nil
}

// run parses args and executes the selected command.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("snapplot"),
		kong.Description("Plot explicit, implicit and inequality relations typed as plain math."),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	return kctx.Run(&Context{
		Config:  cli.Config,
		Verbose: cli.Verbose,
		Quiet:   cli.Quiet,
		Stdin:   stdin,
		Stdout:  stdout,
		Stderr:  stderr,
	})
}

// loadConfig loads the configuration named by the global flag.
func (ctx *Context) loadConfig() (*snapplot.Config, error) {
	config, err := snapplot.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return config, nil
}

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
