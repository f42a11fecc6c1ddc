package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/shibukawa/snapplot/store"
	"github.com/shibukawa/snapplot/worksheet"
)

// SessionCmd groups the saved session commands
type SessionCmd struct {
	DB string `help:"Database URL (overrides database.url in config)" name:"db"`

	Save   SessionSaveCmd   `cmd:"" help:"Save expressions and variable values under a name"`
	Load   SessionLoadCmd   `cmd:"" help:"Print a saved session as a YAML worksheet"`
	List   SessionListCmd   `cmd:"" help:"List saved sessions"`
	Delete SessionDeleteCmd `cmd:"" help:"Delete a saved session"`
}

// open connects to the session store and creates the tables.
func (cmd *SessionCmd) open(runCtx context.Context, ctx *Context) (*store.Store, error) {
	databaseURL := cmd.DB
	if databaseURL == "" {
		config, err := ctx.loadConfig()
		if err != nil {
			return nil, err
		}

		databaseURL = config.Database.URL
	}

	st, err := store.Open(runCtx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(runCtx); err != nil {
		st.Close()
		return nil, err
	}

	if ctx.Verbose {
		fmt.Fprintln(ctx.Stderr, color.BlueString("Using %s session store", st.Dialect()))
	}

	return st, nil
}

// SessionSaveCmd represents the session save command
type SessionSaveCmd struct {
	Name        string             `arg:"" help:"Session name"`
	Expressions []string           `arg:"" optional:"" help:"Expressions to save"`
	File        string             `short:"f" help:"Worksheet file (.yaml or .md)" type:"existingfile"`
	Set         map[string]float64 `help:"Variable values (name=value)"`
}

// Run executes the session save command
func (cmd *SessionSaveCmd) Run(ctx *Context, parent *SessionCmd) error {
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

	runCtx := context.Background()

	st, err := parent.open(runCtx, ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.Save(runCtx, cmd.Name, snap)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Stdout, id)

	if !ctx.Quiet {
		fmt.Fprintln(ctx.Stderr, color.GreenString("Saved %q with %d expression(s)", cmd.Name, len(snap.Rows)))
	}

	return nil
}

// SessionLoadCmd represents the session load command
type SessionLoadCmd struct {
	ID     string `arg:"" help:"Session ID"`
	Output string `short:"o" help:"Write the worksheet to this file instead of stdout"`
}

// Run executes the session load command
func (cmd *SessionLoadCmd) Run(ctx *Context, parent *SessionCmd) error {
	id, err := parseSessionID(cmd.ID)
	if err != nil {
		return err
	}

	runCtx := context.Background()

	st, err := parent.open(runCtx, ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.Load(runCtx, id)
	if err != nil {
		return err
	}

	ws := &worksheet.Worksheet{Title: saved.Name}
	for _, row := range saved.Rows {
		ws.Expressions = append(ws.Expressions, worksheet.Expression{Text: row.Text, Color: row.Color})
	}

	if len(saved.Variables) > 0 {
		ws.Variables = saved.Variables
	}

	if cmd.Output == "" {
		return ws.WriteYAML(ctx.Stdout)
	}

	f, err := os.Create(cmd.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", cmd.Output, err)
	}
	defer f.Close()

	return ws.WriteYAML(f)
}

// SessionListCmd represents the session list command
type SessionListCmd struct{}

// Run executes the session list command
func (cmd *SessionListCmd) Run(ctx *Context, parent *SessionCmd) error {
	runCtx := context.Background()

	st, err := parent.open(runCtx, ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.List(runCtx)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		if !ctx.Quiet {
			fmt.Fprintln(ctx.Stderr, color.YellowString("No saved sessions"))
		}

		return nil
	}

	tw := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEXPRESSIONS\tCREATED")

	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Name, s.Expressions, s.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return tw.Flush()
}

// SessionDeleteCmd represents the session delete command
type SessionDeleteCmd struct {
	ID string `arg:"" help:"Session ID"`
}

// Run executes the session delete command
func (cmd *SessionDeleteCmd) Run(ctx *Context, parent *SessionCmd) error {
	id, err := parseSessionID(cmd.ID)
	if err != nil {
		return err
	}

	runCtx := context.Background()

	st, err := parent.open(runCtx, ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(runCtx, id); err != nil {
		return err
	}

	if !ctx.Quiet {
		fmt.Fprintln(ctx.Stderr, color.GreenString("Deleted %s", id))
	}

	return nil
}

func parseSessionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, raw)
	}

	return id, nil
}
