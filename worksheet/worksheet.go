// Package worksheet loads expression sets from YAML and Markdown files.
package worksheet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/width"

	"github.com/shibukawa/snapplot/sampler"
)

// Expression is one worksheet row.
type Expression struct {
	Text  string `yaml:"text" json:"text"`
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// Worksheet is a saved set of expressions with optional viewport and
// slider values.
type Worksheet struct {
	Title       string             `yaml:"title,omitempty" json:"title,omitempty"`
	Viewport    *sampler.Viewport  `yaml:"viewport,omitempty" json:"viewport,omitempty"`
	Variables   map[string]float64 `yaml:"variables,omitempty" json:"variables,omitempty"`
	Expressions []Expression       `yaml:"expressions" json:"expressions"`
}

// Texts returns the expression texts in order.
func (w *Worksheet) Texts() []string {
	texts := make([]string, len(w.Expressions))
	for i, e := range w.Expressions {
		texts[i] = e.Text
	}

	return texts
}

// LoadFile reads a worksheet, choosing the format by extension.
func LoadFile(path string) (*Worksheet, error) {
	var parse func(io.Reader) (*Worksheet, error)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parse = ParseYAML
	case ".md", ".markdown":
		parse = ParseMarkdown
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open worksheet: %w", err)
	}
	defer f.Close()

	return parse(f)
}

// ParseYAML parses the YAML worksheet format.
func ParseYAML(r io.Reader) (*Worksheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	var ws Worksheet
	if err := yaml.Unmarshal(content, &ws); err != nil {
		return nil, fmt.Errorf("failed to parse worksheet: %w", err)
	}

	return ws.finish()
}

// WriteYAML writes w in the YAML worksheet format.
func (w *Worksheet) WriteYAML(out io.Writer) error {
	data, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal worksheet: %w", err)
	}

	_, err = out.Write(data)

	return err
}

// finish folds full-width input, drops blank rows and checks the result.
func (w *Worksheet) finish() (*Worksheet, error) {
	expressions := make([]Expression, 0, len(w.Expressions))

	for _, e := range w.Expressions {
		e.Text = Fold(e.Text)
		if e.Text == "" {
			continue
		}

		expressions = append(expressions, e)
	}

	if len(expressions) == 0 {
		return nil, ErrNoExpressions
	}

	w.Expressions = expressions

	if w.Viewport != nil && !w.Viewport.Valid() {
		return nil, fmt.Errorf("failed to parse worksheet: invalid viewport %+v", *w.Viewport)
	}

	return w, nil
}

// Fold maps full-width characters to their ASCII forms and trims spaces,
// so text typed with a CJK input method reads as ordinary math.
func Fold(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}
