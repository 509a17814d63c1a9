// Package config loads sweep run files.
package config

import (
	"fmt"
	"os"

	"github.com/thalesfsp/sweep"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the content of a run file.
type Config struct {
	// Spec is the path of the YAML parameter space.
	Spec string `yaml:"spec"`

	// Root is the output root directory.
	Root string `yaml:"root"`

	// Devices and Workers are mutually exclusive.
	Devices []int `yaml:"devices,omitempty"`
	Workers int   `yaml:"workers,omitempty"`

	// Iterations switches to random search when positive.
	Iterations int `yaml:"iterations,omitempty"`

	FailFast bool `yaml:"fail_fast"`

	// Command is executed once per unit, with the unit's parameters appended
	// as --name=value flags.
	Command []string `yaml:"command,omitempty"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
	}
}

// Parse parses a YAML run file over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}

	return cfg, nil
}

// LoadFile reads and parses a YAML run file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	return Parse(data)
}

// serialize serializes the configuration to YAML bytes.
func (c *Config) serialize() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the configuration before anything is dispatched. Errors
// match sweep.ErrConfiguration.
func (c *Config) Validate() error {
	if c.Spec == "" {
		return fmt.Errorf("%w: spec file is required", sweep.ErrConfiguration)
	}

	if c.Root == "" {
		return fmt.Errorf("%w: root output directory is required", sweep.ErrConfiguration)
	}

	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", sweep.ErrConfiguration, c.Iterations)
	}

	if _, err := sweep.NewWorkers(c.Devices, c.Workers); err != nil {
		return err
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses Logging.Level.
func (c *Config) Level() (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(c.Logging.Level)
	if err != nil {
		return level, fmt.Errorf("%w: logging level: %w", sweep.ErrConfiguration, err)
	}

	return level, nil
}

// Sweep converts the run file into a library configuration.
func (c *Config) Sweep(logger *zap.Logger) sweep.Config {
	config := sweep.DefaultConfig()
	config.Root = c.Root
	config.Devices = c.Devices
	config.Workers = c.Workers
	config.Iterations = c.Iterations
	config.FailFast = c.FailFast

	if logger != nil {
		config.Logger = logger
	}

	return config
}
