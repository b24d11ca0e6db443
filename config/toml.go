package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// TOMLLoader loads configuration from a TOML file.
type TOMLLoader struct {
	path string
}

// NewTOMLLoader creates a TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{path: path}
}

// Load reads configuration from the configured path. Keys absent from
// the file keep their default values.
func (l *TOMLLoader) Load() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // File doesn't exist, not an error
		}
		return cfg, fmt.Errorf("reading config file %s: %w", l.path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{
			Path:    l.path,
			Message: err.Error(),
			Err:     err,
		}
	}

	return cfg, nil
}
