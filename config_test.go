package snapplot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/shibukawa/snapplot/evaluator"
	"github.com/shibukawa/snapplot/sampler"
	"github.com/shibukawa/snapplot/session"
	"github.com/shibukawa/snapplot/variables"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "snapplot.yaml")
	err := os.WriteFile(configPath, []byte(content), 0644)
	assert.NoError(t, err)

	return configPath
}

func TestLoadConfig_DefaultValues(t *testing.T) {
	// Test loading config with non-existent file (should return defaults)
	config, err := LoadConfig("non-existent-file.yaml")
	assert.NoError(t, err)
	assert.True(t, config != nil)

	assert.Equal(t, "expr", config.Evaluator)
	assert.Equal(t, sampler.DefaultViewport, config.Viewport)
	assert.Equal(t, variables.DefaultRange, config.Variables.Range())
	assert.Equal(t, session.DefaultPalette, config.Palette)
	assert.Equal(t, "png", config.Output.Format)
	assert.Equal(t, sampler.Options{Samples: 1000, GridSize: 150, ToleranceFactor: 4}, config.SamplerOptions())
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
evaluator: cel
sampling:
  samples: 200
  grid_size: 60
viewport:
  x_min: -2
  x_max: 2
  y_min: -1
  y_max: 3
variables:
  min: 0
  max: 5
  step: 0.5
  default: 2
palette: ["red", "blue"]
output:
  format: svg
  width: 400
`)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)

	assert.Equal(t, "cel", config.Evaluator)
	assert.Equal(t, 200, config.Sampling.Samples)
	assert.Equal(t, 60, config.Sampling.GridSize)
	assert.Equal(t, 4.0, config.Sampling.ToleranceFactor)
	assert.Equal(t, sampler.Viewport{XMin: -2, XMax: 2, YMin: -1, YMax: 3}, config.Viewport)
	assert.Equal(t, variables.Range{Min: 0, Max: 5, Step: 0.5, Default: 2}, config.Variables.Range())
	assert.Equal(t, []string{"red", "blue"}, config.Palette)
	assert.Equal(t, "svg", config.Output.Format)
	assert.Equal(t, 400, config.Output.Width)
	assert.Equal(t, 600, config.Output.Height)

	opts := config.SessionOptions()
	assert.Equal(t, []string{"red", "blue"}, opts.Palette)

	ev, err := config.NewEvaluator()
	assert.NoError(t, err)
	assert.Equal(t, "cel", ev.Name())
}

func TestLoadConfig_StrictMode_UnknownKeys(t *testing.T) {
	configPath := writeConfig(t, `
evaluator: expr
unknown_key: "should cause error"
`)

	_, err := LoadConfig(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown evaluator", "evaluator: python\n"},
		{"single sample", "sampling:\n  samples: 1\n"},
		{"negative grid", "sampling:\n  grid_size: -3\n"},
		{"negative tolerance", "sampling:\n  tolerance_factor: -1\n"},
		{"empty viewport range", "viewport:\n  x_min: 1\n  x_max: 1\n  y_min: 0\n  y_max: 1\n"},
		{"zero step", "variables:\n  min: 0\n  max: 1\n  step: 0\n"},
		{"default outside range", "variables:\n  min: 0\n  max: 1\n  step: 0.1\n  default: 3\n"},
		{"empty palette entry", "palette: [\"\"]\n"},
		{"bad output format", "output:\n  format: gif\n"},
		{"negative width", "output:\n  width: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfigValidation))
		})
	}
}

func TestLoadConfig_EnvironmentExpansion(t *testing.T) {
	t.Setenv("SNAPPLOT_DB", "plots.db")
	t.Setenv("SNAPPLOT_HOST", "localhost")

	configPath := writeConfig(t, `
database:
  url: "postgres://user@${SNAPPLOT_HOST}/plots?application_name=$SNAPPLOT_DB"
`)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, "postgres://user@localhost/plots?application_name=plots.db", config.Database.URL)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SNAPPLOT_TEST_VAR", "value")

	assert.Equal(t, "a-value-b", expandEnvVars("a-${SNAPPLOT_TEST_VAR}-b"))
	assert.Equal(t, "value/x", expandEnvVars("$SNAPPLOT_TEST_VAR/x"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
}

func TestConfig_NewEvaluatorUnknownBackend(t *testing.T) {
	config := getDefaultConfig()
	config.Evaluator = "lua"

	_, err := config.NewEvaluator()
	assert.True(t, errors.Is(err, ErrConfigValidation))
	assert.True(t, errors.Is(err, evaluator.ErrUnknownBackend))
}
