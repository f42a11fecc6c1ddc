package worksheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/shibukawa/snapplot/sampler"
)

// ParseMarkdown parses the Markdown worksheet format:
//
//   - optional YAML front matter (viewport, variables)
//   - the first H1 heading is the title
//   - "## Expressions": list items and ```plot fenced blocks, one
//     expression per item or line; a trailing {color} sets the color
//   - "## Variables": list items of the form "a = 3"
func ParseMarkdown(r io.Reader) (*Worksheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	ws, body, err := parseFrontMatter(string(content))
	if err != nil {
		return nil, err
	}

	source := []byte(body)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	title, sections := extractSections(doc, source)
	if ws.Title == "" {
		ws.Title = title
	}

	for _, node := range sections["expressions"] {
		switch n := node.(type) {
		case *ast.List:
			for _, item := range listItems(n, source) {
				ws.Expressions = append(ws.Expressions, parseExpression(item))
			}
		case *ast.FencedCodeBlock:
			if !strings.EqualFold(string(n.Language(source)), "plot") {
				continue
			}

			for _, line := range blockLines(n, source) {
				ws.Expressions = append(ws.Expressions, parseExpression(line))
			}
		}
	}

	for _, node := range sections["variables"] {
		list, ok := node.(*ast.List)
		if !ok {
			continue
		}

		for _, item := range listItems(list, source) {
			name, value, err := parseVariable(item)
			if err != nil {
				return nil, err
			}

			if ws.Variables == nil {
				ws.Variables = map[string]float64{}
			}

			ws.Variables[name] = value
		}
	}

	return ws.finish()
}

type frontMatter struct {
	Title     string             `yaml:"title"`
	Viewport  *sampler.Viewport  `yaml:"viewport"`
	Variables map[string]float64 `yaml:"variables"`
}

func parseFrontMatter(content string) (*Worksheet, string, error) {
	if !strings.HasPrefix(content, "---\n") {
		return &Worksheet{}, content, nil
	}

	endIndex := strings.Index(content[4:], "\n---")
	if endIndex == -1 {
		return nil, "", ErrInvalidFrontMatter
	}

	endIndex += 4

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(content[4:endIndex]), &fm); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}

	return &Worksheet{Title: fm.Title, Viewport: fm.Viewport, Variables: fm.Variables}, content[endIndex+4:], nil
}

// extractSections returns the H1 title and the top-level blocks under each
// H2 heading, keyed by lowercased heading text.
func extractSections(doc ast.Node, source []byte) (string, map[string][]ast.Node) {
	var (
		title   string
		current string
	)

	sections := map[string][]ast.Node{}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			if current != "" {
				sections[current] = append(sections[current], n)
			}

			continue
		}

		headingText := nodeText(heading, source)

		switch {
		case heading.Level == 1 && title == "":
			title = headingText
			current = ""
		case heading.Level == 2:
			current = strings.ToLower(headingText)
		}
	}

	return title, sections
}

func nodeText(node ast.Node, source []byte) string {
	var result strings.Builder

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.Text:
			result.Write(t.Segment.Value(source))
		case *ast.String:
			result.Write(t.Value)
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(result.String())
}

// listItems returns the raw source of each item. Raw lines are used instead
// of inline text because '*' in an expression would otherwise be parsed as
// emphasis.
func listItems(list *ast.List, source []byte) []string {
	var items []string

	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var b strings.Builder

		for block := item.FirstChild(); block != nil; block = block.NextSibling() {
			lines := block.Lines()
			for i := range lines.Len() {
				segment := lines.At(i)
				b.Write(segment.Value(source))
			}
		}

		items = append(items, strings.TrimSpace(b.String()))
	}

	return items
}

func blockLines(block ast.Node, source []byte) []string {
	var lines []string

	for i := range block.Lines().Len() {
		segment := block.Lines().At(i)

		line := strings.TrimSpace(string(segment.Value(source)))
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

// parseExpression splits "text {color}" and strips inline code quotes.
func parseExpression(item string) Expression {
	var e Expression

	if open := strings.LastIndex(item, "{"); open >= 0 && strings.HasSuffix(item, "}") {
		e.Color = strings.TrimSpace(item[open+1 : len(item)-1])
		item = strings.TrimSpace(item[:open])
	}

	e.Text = strings.Trim(item, "`")

	return e
}

func parseVariable(item string) (string, float64, error) {
	name, value, ok := strings.Cut(Fold(strings.Trim(item, "`")), "=")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidVariable, item)
	}

	name = strings.TrimSpace(name)

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || name == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidVariable, item)
	}

	return name, v, nil
}
