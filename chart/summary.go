package chart

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/shibukawa/snapplot/sampler"
)

var (
	okMarkFmt    = color.New(color.FgGreen, color.Bold).SprintFunc()
	failMarkFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
	labelFmt     = color.New(color.Bold).SprintFunc()
	kindFmt      = color.New(color.FgCyan).SprintfFunc()
	errorFmt     = color.New(color.FgRed).SprintFunc()
	normalizeFmt = color.New(color.FgHiBlack).SprintfFunc()
)

// PrintSummary writes one line per series: status, label, kind and either
// the point count or the error. It returns the number of failed series.
func PrintSummary(w io.Writer, series []sampler.Series) int {
	failed := 0

	for _, s := range series {
		if s.Failed() {
			failed++

			fmt.Fprintf(w, "%s %s %s\n    %s\n", failMarkFmt("✗"), labelFmt(s.Label), kindFmt("[%s]", s.Kind), errorFmt(s.Err.Error()))

			continue
		}

		detail := fmt.Sprintf("%d/%d points", s.Finite(), s.Len())
		if s.Grid != nil {
			detail = fmt.Sprintf("%d grid nodes", s.Grid.Count())
		}

		fmt.Fprintf(w, "%s %s %s %s %s\n", okMarkFmt("✓"), labelFmt(s.Label), kindFmt("[%s/%s]", s.Kind, s.Display), detail, normalizeFmt("(%s)", s.Normalized))
	}

	return failed
}
