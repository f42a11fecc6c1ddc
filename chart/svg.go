package chart

import (
	"fmt"
	"io"

	"github.com/beevik/etree"

	"github.com/shibukawa/snapplot/sampler"
)

// annotateSVG adds a <title> and a <desc> per failed series to a rendered
// SVG document.
func annotateSVG(w io.Writer, raw []byte, title string, series []sampler.Series) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return fmt.Errorf("failed to parse rendered svg: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return fmt.Errorf("failed to parse rendered svg: no root element")
	}

	if title == "" {
		title = "snapplot"
	}

	t := etree.NewElement("title")
	t.SetText(title)
	root.InsertChildAt(0, t)

	for _, s := range series {
		if !s.Failed() {
			continue
		}

		desc := etree.NewElement("desc")
		desc.CreateAttr("class", "expression-error")
		desc.CreateAttr("data-expression", s.Label)
		desc.SetText(s.Err.Error())
		root.InsertChildAt(1, desc)
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}

	return nil
}
