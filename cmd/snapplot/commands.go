package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/shibukawa/snapplot/normalizer"
	"github.com/shibukawa/snapplot/relation"
)

// NormalizeCmd represents the normalize command
type NormalizeCmd struct {
	Expressions []string `arg:"" help:"Expressions to normalize"`
}

// Run executes the normalize command
func (cmd *NormalizeCmd) Run(ctx *Context) error {
	for _, raw := range foldAll(cmd.Expressions) {
		fmt.Fprintln(ctx.Stdout, normalizer.Normalize(raw))
	}

	return nil
}

// ClassifyCmd represents the classify command
type ClassifyCmd struct {
	Expressions []string `arg:"" help:"Expressions to classify"`
}

// Run executes the classify command
func (cmd *ClassifyCmd) Run(ctx *Context) error {
	for _, raw := range foldAll(cmd.Expressions) {
		normalized := normalizer.Normalize(raw)
		rel := relation.Classify(normalized)

		if ctx.Verbose {
			fmt.Fprintf(ctx.Stdout, "%s\t%s\t%s\n", rel.Kind(), normalized, rel)
			continue
		}

		fmt.Fprintf(ctx.Stdout, "%s\t%s\n", rel.Kind(), normalized)
	}

	return nil
}

// CheckCmd represents the check command
type CheckCmd struct {
	Expressions []string           `arg:"" optional:"" help:"Expressions to check"`
	File        string             `short:"f" help:"Worksheet file (.yaml or .md)" type:"existingfile"`
	Set         map[string]float64 `help:"Variable values (name=value)"`
}

// Run executes the check command
func (cmd *CheckCmd) Run(ctx *Context) error {
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

	s, err := newSampler(ctx, config, nil)
	if err != nil {
		return err
	}

	invalid := 0

	for _, raw := range snap.Texts() {
		if s.IsValid(raw, snap.Env) {
			if !ctx.Quiet {
				fmt.Fprintf(ctx.Stdout, "%s %s\n", color.GreenString("✓"), raw)
			}

			continue
		}

		invalid++

		if !ctx.Quiet {
			fmt.Fprintf(ctx.Stdout, "%s %s\n", color.RedString("✗"), raw)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidExpressions, invalid, len(snap.Rows))
	}

	return nil
}
