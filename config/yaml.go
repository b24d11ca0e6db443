package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLLoader loads configuration from a YAML file.
type YAMLLoader struct {
	path string
}

// NewYAMLLoader creates a YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{path: path}
}

// Load reads configuration from the configured path. Keys absent from
// the file keep their default values.
func (l *YAMLLoader) Load() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // File doesn't exist, not an error
		}
		return cfg, fmt.Errorf("reading config file %s: %w", l.path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{
			Path:    l.path,
			Message: err.Error(),
			Err:     err,
		}
	}

	return cfg, nil
}
