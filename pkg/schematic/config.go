package schematic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config specifies render-time parameters that are not already carried by
// the skin template's own options.
type Config struct {
	// Layout controls the concrete layered-graph engine's grid spacing.
	Layout LayoutCfg `yaml:"layout" json:"layout"`
}

// LayoutCfg controls LayeredEngine's column/row gaps.
type LayoutCfg struct {
	// HSpacing is the horizontal gap between adjacent layers.
	HSpacing float64 `yaml:"hSpacing" json:"hSpacing"`

	// VSpacing is the vertical gap between adjacent children in a layer.
	VSpacing float64 `yaml:"vSpacing" json:"vSpacing"`
}

// DefaultConfig returns a Config with the same spacing LayeredEngine itself
// defaults to when given zero values.
func DefaultConfig() *Config {
	return &Config{Layout: LayoutCfg{HSpacing: 40, VSpacing: 20}}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses YAML configuration from a byte slice.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	if c.Layout.HSpacing < 0 {
		return fmt.Errorf("layout.hSpacing must be >= 0, got %g", c.Layout.HSpacing)
	}
	if c.Layout.VSpacing < 0 {
		return fmt.Errorf("layout.vSpacing must be >= 0, got %g", c.Layout.VSpacing)
	}
	return nil
}

// ToYAML serializes the config back to YAML, for round-tripping and
// debugging.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
