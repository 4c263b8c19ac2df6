package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file looked up next to the input.
const FileName = "chtl.yaml"

// Config represents the chtl.yaml configuration
type Config struct {
	// Whether to lay the stylesheet out one declaration per line
	Pretty bool `yaml:"pretty"`

	// Whether to reject script blocks that are not valid JavaScript
	CheckScripts bool `yaml:"checkScripts"`

	// Output file; standard output when empty
	Output string `yaml:"output,omitempty"`

	// Whether to log progress
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{}
}

// Load loads configuration from the given file.  A missing file yields the
// default configuration.  A relative output path is taken relative to the
// file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	var config = DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if config.Output != "" && !filepath.IsAbs(config.Output) {
		config.Output = filepath.Join(filepath.Dir(path), config.Output)
	}
	return config, nil
}

// ForInput loads the configuration file that sits next to the given input.
func ForInput(input string) (*Config, error) {
	return Load(filepath.Join(filepath.Dir(input), FileName))
}
