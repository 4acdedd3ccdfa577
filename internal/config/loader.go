package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"loom/pkg/logging"
)

const configFileName = "config.yaml"

// Load reads config.yaml from the components root. A missing file yields
// the defaults; a malformed or invalid file is an error.
func Load(componentsRoot string) (Config, error) {
	path := filepath.Join(componentsRoot, configFileName)
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", path)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &ConfigurationError{
			FilePath: path,
			Message:  fmt.Sprintf("invalid YAML: %v", err),
			Suggestions: []string{
				"Check the file for tab characters; YAML requires spaces",
				"Validate indentation of nested keys",
			},
		}
	}

	if err := validate(path, cfg); err != nil {
		return Config{}, err
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return cfg, nil
}

func validate(path string, cfg Config) error {
	if !ValidTransport(cfg.Transport) {
		return &ConfigurationError{
			FilePath: path,
			Field:    "transport",
			Message:  fmt.Sprintf("unknown transport %q", cfg.Transport),
			Suggestions: []string{
				fmt.Sprintf("Use one of: %s", strings.Join([]string{TransportStreamableHTTP, TransportSSE, TransportStdio}, ", ")),
			},
		}
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return &ConfigurationError{
			FilePath:    path,
			Field:       "port",
			Message:     fmt.Sprintf("port %d is out of range", cfg.Port),
			Suggestions: []string{"Choose a port between 1 and 65535"},
		}
	}
	if cfg.DebounceMs < 0 {
		return &ConfigurationError{
			FilePath:    path,
			Field:       "debounceMs",
			Message:     "debounce must not be negative",
			Suggestions: []string{"Omit debounceMs to use the 250ms default"},
		}
	}
	if cfg.DuplicatePolicy != "" {
		switch cfg.DuplicatePolicy {
		case "error", "replace", "ignore", "warn-and-replace":
		default:
			return &ConfigurationError{
				FilePath:    path,
				Field:       "duplicatePolicy",
				Message:     fmt.Sprintf("unknown policy %q", cfg.DuplicatePolicy),
				Suggestions: []string{"Use one of: error, replace, ignore, warn-and-replace"},
			}
		}
	}
	return nil
}
