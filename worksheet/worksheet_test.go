package worksheet

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibukawa/snapplot/sampler"
)

func TestLoadFile_MarkdownAndYAMLAgree(t *testing.T) {
	fromYAML, err := LoadFile(filepath.Join("testdata", "parabola.yaml"))
	require.NoError(t, err)

	fromMarkdown, err := LoadFile(filepath.Join("testdata", "parabola.md"))
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromMarkdown)

	assert.Equal(t, "Parabola and friends", fromYAML.Title)
	assert.Equal(t, []string{"ax^2+b", "y<2x&&y>-x", "x^2+y^2=16", "x>=3"}, fromYAML.Texts())
	assert.Equal(t, "#d62728", fromYAML.Expressions[0].Color)
	assert.Equal(t, map[string]float64{"a": 0.5, "b": 2}, fromYAML.Variables)
	assert.Equal(t, &sampler.Viewport{XMin: -5, XMax: 5, YMin: -2, YMax: 8}, fromYAML.Viewport)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join("testdata", "parabola.txt"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestParseMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Expression
		wantErr error
	}{
		{
			name:  "emphasis characters kept",
			input: "# T\n\n## Expressions\n\n- 2*x*3\n- sinx {red}\n",
			want:  []Expression{{Text: "2*x*3"}, {Text: "sinx", Color: "red"}},
		},
		{
			name:  "other sections ignored",
			input: "# T\n\n## Notes\n\n- not a plot\n\n## Expressions\n\n```plot\ny>x\n\n```\n\n```go\nfmt.Println()\n```\n",
			want:  []Expression{{Text: "y>x"}},
		},
		{
			name:  "full width folded",
			input: "## Expressions\n\n- ｘ＾２＋１\n",
			want:  []Expression{{Text: "x^2+1"}},
		},
		{
			name:    "no expressions",
			input:   "# Empty\n\nnothing here\n",
			wantErr: ErrNoExpressions,
		},
		{
			name:    "bad variable",
			input:   "## Expressions\n\n- ax\n\n## Variables\n\n- a is three\n",
			wantErr: ErrInvalidVariable,
		},
		{
			name:    "unterminated front matter",
			input:   "---\nviewport: {}\n# T\n",
			wantErr: ErrInvalidFrontMatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws, err := ParseMarkdown(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, ws.Expressions)
		})
	}
}

func TestParseYAML_Errors(t *testing.T) {
	_, err := ParseYAML(strings.NewReader("expressions: []\n"))
	assert.True(t, errors.Is(err, ErrNoExpressions))

	_, err = ParseYAML(strings.NewReader("expressions:\n  - text: x\nviewport:\n  x_min: 1\n  x_max: 1\n  y_min: 0\n  y_max: 1\n"))
	assert.Error(t, err)

	_, err = ParseYAML(strings.NewReader("expressions: [\n"))
	assert.Error(t, err)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	ws := &Worksheet{
		Title:       "round trip",
		Variables:   map[string]float64{"k": 1.5},
		Expressions: []Expression{{Text: "kx", Color: "blue"}, {Text: "y>0"}},
	}

	var buf bytes.Buffer
	require.NoError(t, ws.WriteYAML(&buf))

	got, err := ParseYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, ws, got)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "y<=2x", Fold("  ｙ＜＝２ｘ "))
	assert.Equal(t, "sin(x)", Fold("sin(x)"))
}
