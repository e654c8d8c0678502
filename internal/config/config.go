// Package config holds the facealign configuration file format.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Alignment AlignmentConfig `json:"alignment" yaml:"alignment"`
	Output    OutputConfig    `json:"output" yaml:"output"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// AlignmentConfig controls estimation and warping.
type AlignmentConfig struct {
	Template      string `json:"template" yaml:"template"`
	Width         int    `json:"width" yaml:"width"`
	Height        int    `json:"height" yaml:"height"`
	Reflective    bool   `json:"reflective" yaml:"reflective"`
	Interpolation string `json:"interpolation" yaml:"interpolation"`
	Backend       string `json:"backend" yaml:"backend"`
}

// OutputConfig controls how aligned crops are written.
type OutputConfig struct {
	Format   string `json:"format" yaml:"format"`
	Quality  int    `json:"quality" yaml:"quality"`
	Lossless bool   `json:"lossless" yaml:"lossless"`
	Dir      string `json:"dir" yaml:"dir"` // empty: next to the input image
	Suffix   string `json:"suffix" yaml:"suffix"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Alignment: AlignmentConfig{
			Template:      "default",
			Reflective:    true,
			Interpolation: "bilinear",
			Backend:       "go",
		},
		Output: OutputConfig{
			Format:  "png",
			Quality: 95,
			Suffix:  "_aligned",
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

func isJSON(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}

// LoadFromFile loads configuration from a YAML or JSON file. Keys missing
// from the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if isJSON(filename) {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML, or JSON for a .json filename.
func (c *Config) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isJSON(filename) {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Alignment.Template == "" {
		return fmt.Errorf("alignment.template cannot be empty")
	}
	if c.Alignment.Width < 0 || c.Alignment.Height < 0 {
		return fmt.Errorf("alignment.width and alignment.height must not be negative")
	}

	switch strings.ToLower(c.Alignment.Backend) {
	case "go", "opencv":
	default:
		return fmt.Errorf("alignment.backend must be go or opencv, got %q", c.Alignment.Backend)
	}

	switch strings.ToLower(c.Alignment.Interpolation) {
	case "nearest", "bilinear", "approxbilinear", "catmullrom":
	default:
		return fmt.Errorf("alignment.interpolation %q is not supported", c.Alignment.Interpolation)
	}

	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "webp", "tif", "tiff", "bmp":
	default:
		return fmt.Errorf("output.format %q is not supported", c.Output.Format)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if _, err := c.Log.ParseLevel(); err != nil {
		return err
	}

	return nil
}

// ParseLevel returns the zerolog level named by Log.Level.
func (l LogConfig) ParseLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
