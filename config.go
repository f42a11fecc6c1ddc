package snapplot

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/shibukawa/snapplot/chart"
	"github.com/shibukawa/snapplot/evaluator"
	"github.com/shibukawa/snapplot/sampler"
	"github.com/shibukawa/snapplot/session"
	"github.com/shibukawa/snapplot/variables"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// DefaultConfigFile is the configuration file looked up by the CLI.
const DefaultConfigFile = "snapplot.yaml"

// Config represents the snapplot configuration
type Config struct {
	Evaluator string           `yaml:"evaluator"`
	Sampling  SamplingConfig   `yaml:"sampling"`
	Viewport  sampler.Viewport `yaml:"viewport"`
	Variables VariablesConfig  `yaml:"variables"`
	Palette   []string         `yaml:"palette"`
	Database  DatabaseConfig   `yaml:"database"`
	Output    OutputConfig     `yaml:"output"`
}

// SamplingConfig represents sampling density settings
type SamplingConfig struct {
	Samples         int     `yaml:"samples"`
	GridSize        int     `yaml:"grid_size"`
	ToleranceFactor float64 `yaml:"tolerance_factor"`
}

// VariablesConfig represents the slider range
type VariablesConfig struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Step    float64 `yaml:"step"`
	Default float64 `yaml:"default"`
}

// DatabaseConfig represents the session store connection
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// OutputConfig represents image output settings
type OutputConfig struct {
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// Output formats.
var outputFormats = []string{"png", "svg", "json"}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Return default configuration if file doesn't exist
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	switch config.Evaluator {
	case "", "expr", "cel":
	default:
		return fmt.Errorf("%w: invalid evaluator '%s': must be one of expr, cel", ErrConfigValidation, config.Evaluator)
	}

	if config.Sampling.Samples < 0 {
		return fmt.Errorf("%w: sampling.samples must be non-negative, got %d", ErrConfigValidation, config.Sampling.Samples)
	}

	if config.Sampling.Samples == 1 {
		return fmt.Errorf("%w: sampling.samples must be at least 2", ErrConfigValidation)
	}

	if config.Sampling.GridSize < 0 || config.Sampling.GridSize == 1 {
		return fmt.Errorf("%w: sampling.grid_size must be 0 or at least 2, got %d", ErrConfigValidation, config.Sampling.GridSize)
	}

	if config.Sampling.ToleranceFactor < 0 {
		return fmt.Errorf("%w: sampling.tolerance_factor must be non-negative, got %g", ErrConfigValidation, config.Sampling.ToleranceFactor)
	}

	if config.Viewport != (sampler.Viewport{}) && !config.Viewport.Valid() {
		return fmt.Errorf("%w: viewport must satisfy x_min < x_max and y_min < y_max", ErrConfigValidation)
	}

	if config.Variables != (VariablesConfig{}) {
		r := config.Variables.Range()
		if !r.Valid() {
			return fmt.Errorf("%w: variables range must satisfy min < max and step > 0", ErrConfigValidation)
		}

		if r.Default < r.Min || r.Default > r.Max {
			return fmt.Errorf("%w: variables.default %g is outside [%g, %g]", ErrConfigValidation, r.Default, r.Min, r.Max)
		}
	}

	for i, color := range config.Palette {
		if color == "" {
			return fmt.Errorf("%w: palette[%d] is empty", ErrConfigValidation, i)
		}
	}

	if config.Output.Format != "" && !slices.Contains(outputFormats, config.Output.Format) {
		return fmt.Errorf("%w: output.format '%s' is invalid: must be one of png, svg, json", ErrConfigValidation, config.Output.Format)
	}

	if config.Output.Width < 0 || config.Output.Height < 0 {
		return fmt.Errorf("%w: output width and height must be non-negative", ErrConfigValidation)
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Evaluator: "expr",
		Sampling: SamplingConfig{
			Samples:         sampler.DefaultSamples,
			GridSize:        sampler.DefaultGridSize,
			ToleranceFactor: sampler.DefaultToleranceFactor,
		},
		Viewport: sampler.DefaultViewport,
		Variables: VariablesConfig{
			Min:     variables.DefaultRange.Min,
			Max:     variables.DefaultRange.Max,
			Step:    variables.DefaultRange.Step,
			Default: variables.DefaultRange.Default,
		},
		Palette: slices.Clone(session.DefaultPalette),
		Database: DatabaseConfig{
			URL: "sqlite://./snapplot.db",
		},
		Output: OutputConfig{
			Format: "png",
			Width:  chart.DefaultWidth,
			Height: chart.DefaultHeight,
		},
	}
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	defaults := getDefaultConfig()

	if config.Evaluator == "" {
		config.Evaluator = defaults.Evaluator
	}

	if config.Sampling.Samples == 0 {
		config.Sampling.Samples = defaults.Sampling.Samples
	}

	if config.Sampling.GridSize == 0 {
		config.Sampling.GridSize = defaults.Sampling.GridSize
	}

	if config.Sampling.ToleranceFactor == 0 {
		config.Sampling.ToleranceFactor = defaults.Sampling.ToleranceFactor
	}

	if config.Viewport == (sampler.Viewport{}) {
		config.Viewport = defaults.Viewport
	}

	if config.Variables == (VariablesConfig{}) {
		config.Variables = defaults.Variables
	}

	if len(config.Palette) == 0 {
		config.Palette = defaults.Palette
	}

	if config.Database.URL == "" {
		config.Database.URL = defaults.Database.URL
	}

	if config.Output.Format == "" {
		config.Output.Format = defaults.Output.Format
	}

	if config.Output.Width == 0 {
		config.Output.Width = defaults.Output.Width
	}

	if config.Output.Height == 0 {
		config.Output.Height = defaults.Output.Height
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in string settings
func expandConfigEnvVars(config *Config) {
	config.Database.URL = expandEnvVars(config.Database.URL)
	config.Evaluator = expandEnvVars(config.Evaluator)
	config.Output.Format = expandEnvVars(config.Output.Format)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// Range returns the slider range.
func (v VariablesConfig) Range() variables.Range {
	return variables.Range{Min: v.Min, Max: v.Max, Step: v.Step, Default: v.Default}
}

// SamplerOptions returns the sampling options; the logger and observer
// hooks are left for the caller.
func (c *Config) SamplerOptions() sampler.Options {
	return sampler.Options{
		Samples:         c.Sampling.Samples,
		GridSize:        c.Sampling.GridSize,
		ToleranceFactor: c.Sampling.ToleranceFactor,
	}
}

// SessionOptions returns the session palette and slider range.
func (c *Config) SessionOptions() session.Options {
	return session.Options{Palette: c.Palette, Range: c.Variables.Range()}
}

// ChartOptions returns image options with the given title.
func (c *Config) ChartOptions(title string) chart.Options {
	return chart.Options{Title: title, Width: c.Output.Width, Height: c.Output.Height}
}

// NewEvaluator creates the configured evaluator backend.
func (c *Config) NewEvaluator() (evaluator.Evaluator, error) {
	ev, err := evaluator.New(c.Evaluator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}

	return ev, nil
}
