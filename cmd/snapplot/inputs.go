package main

import (
	"fmt"
	"slices"

	"github.com/shibukawa/snapplot"
	"github.com/shibukawa/snapplot/sampler"
	"github.com/shibukawa/snapplot/session"
	"github.com/shibukawa/snapplot/worksheet"
)

func foldAll(raws []string) []string {
	folded := make([]string, len(raws))
	for i, raw := range raws {
		folded[i] = worksheet.Fold(raw)
	}

	return folded
}

// loadInputs merges the worksheet file, if any, with expressions given as
// arguments. Arguments are appended after the worksheet rows.
func loadInputs(args []string, file string) (*worksheet.Worksheet, error) {
	ws := &worksheet.Worksheet{}

	if file != "" {
		loaded, err := worksheet.LoadFile(file)
		if err != nil {
			return nil, err
		}

		ws = loaded
	}

	for _, raw := range foldAll(args) {
		if raw != "" {
			ws.Expressions = append(ws.Expressions, worksheet.Expression{Text: raw})
		}
	}

	if len(ws.Expressions) == 0 {
		return nil, ErrNoInput
	}

	return ws, nil
}

// buildSnapshot loads the worksheet rows into a fresh session, applies the
// worksheet's slider values and then the overrides. Overrides must name a
// variable the expressions reference.
func buildSnapshot(config *snapplot.Config, ws *worksheet.Worksheet, overrides map[string]float64) (session.Snapshot, error) {
	s := session.New(config.SessionOptions())

	rows := make([]session.Row, len(ws.Expressions))
	for i, e := range ws.Expressions {
		rows[i] = session.Row{Text: e.Text, Color: e.Color}
	}

	s.Replace(rows, ws.Variables)

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		if err := s.SetVariable(name, overrides[name]); err != nil {
			return session.Snapshot{}, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	return s.Snapshot(), nil
}

// resolveViewport picks the flag value, then the worksheet's, then the
// configured one.
func resolveViewport(config *snapplot.Config, ws *worksheet.Worksheet, flag []float64) (sampler.Viewport, error) {
	switch {
	case len(flag) > 0:
		if len(flag) != 4 {
			return sampler.Viewport{}, ErrInvalidViewport
		}

		vp := sampler.Viewport{XMin: flag[0], XMax: flag[1], YMin: flag[2], YMax: flag[3]}
		if !vp.Valid() {
			return sampler.Viewport{}, fmt.Errorf("%w: %v", ErrInvalidViewport, flag)
		}

		return vp, nil
	case ws != nil && ws.Viewport != nil:
		return *ws.Viewport, nil
	default:
		return config.Viewport, nil
	}
}
