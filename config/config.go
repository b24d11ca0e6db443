// Package config loads history engine settings from TOML or YAML files
// and supports live reload through a file watcher.
package config

import (
	"fmt"
	"path/filepath"
)

// Config holds the tunable settings of the history engine.
type Config struct {
	// HistoryLimit bounds the past stack. Zero keeps the current value.
	HistoryLimit int `toml:"history_limit" yaml:"history_limit"`

	// ObjectDeltaThreshold is the object delta size above which entries
	// carry a full value.
	ObjectDeltaThreshold int `toml:"object_delta_threshold" yaml:"object_delta_threshold"`

	// ArrayDeltaThreshold is the array delta item count above which
	// entries carry a full value.
	ArrayDeltaThreshold int `toml:"array_delta_threshold" yaml:"array_delta_threshold"`

	// LogLevel is the minimum diagnostic level: debug, info, warn, error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HistoryLimit:         50,
		ObjectDeltaThreshold: 10,
		ArrayDeltaThreshold:  20,
		LogLevel:             "info",
	}
}

// Loader loads a configuration from some source.
type Loader interface {
	Load() (Config, error)
}

// Load reads the file at path, dispatching on its extension. A missing
// file is not an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	switch filepath.Ext(path) {
	case ".toml":
		return NewTOMLLoader(path).Load()
	case ".yaml", ".yml":
		return NewYAMLLoader(path).Load()
	default:
		return Default(), fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
