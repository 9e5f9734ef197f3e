// Package config loads optional pgcanon.yaml files controlling render
// output. Every field has a default so a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is searched in the working directory when --config is
// not given.
const DefaultFileName = "pgcanon.yaml"

// Config controls canonical rendering and CLI output.
type Config struct {
	Render RenderConfig `yaml:"render"`
	Output OutputConfig `yaml:"output"`
}

// RenderConfig maps onto canonical.Options.
type RenderConfig struct {
	// Guards adds IF NOT EXISTS to creatable-once objects.
	Guards *bool `yaml:"guards"`
	// ShowOwners annotates object headers with real owner names instead
	// of "-".
	ShowOwners bool `yaml:"show_owners"`
	// Schemas restricts output to the named schemas; empty means all.
	Schemas []string `yaml:"schemas"`
}

// OutputConfig controls terminal presentation.
type OutputConfig struct {
	// Color is "auto", "always", or "never".
	Color string `yaml:"color"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	guards := true

	return &Config{
		Render: RenderConfig{Guards: &guards},
		Output: OutputConfig{Color: "auto"},
	}
}

// Load reads the config file at path. An empty path tries
// DefaultFileName and falls back to defaults when it does not exist; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, applying defaults for absent fields.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Output.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always, or never)", c.Output.Color)
	}

	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}

	if c.Render.Guards == nil {
		guards := true
		c.Render.Guards = &guards
	}

	return nil
}

// GuardsEnabled reports the effective guards setting.
func (c *Config) GuardsEnabled() bool {
	return c.Render.Guards == nil || *c.Render.Guards
}
