// Package config loads CLI settings from defaults, an optional JSON file and
// FORMKIT_ environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables read by Load.
const EnvPrefix = "FORMKIT_"

// Configuration holds the CLI settings.
type Configuration struct {
	LogLevel     string `koanf:"log_level" validate:"oneof=debug info warn warning error"`
	LogFile      string `koanf:"log_file"`
	CatalogDir   string `koanf:"catalog_dir"`
	OutputFormat string `koanf:"output_format" validate:"oneof=json form pretty"`
	OutputDir    string `koanf:"output_dir" validate:"required"`
	MaxAttempts  int    `koanf:"max_attempts" validate:"min=1,max=10"`
}

// Defaults returns the baseline values applied before any source.
func Defaults() map[string]any {
	return map[string]any{
		"log_level":     "info",
		"log_file":      "",
		"catalog_dir":   "",
		"output_format": "json",
		"output_dir":    ".",
		"max_attempts":  3,
	}
}

// Load reads configuration. path may be empty or point at a missing file, in
// which case only defaults and the environment apply.
func Load(path string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("config: set default %s: %w", key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), json.Parser()); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	cfg.LogFile = expandHomePath(cfg.LogFile)
	cfg.CatalogDir = expandHomePath(cfg.CatalogDir)
	cfg.OutputDir = expandHomePath(cfg.OutputDir)
	return &cfg, nil
}

// envTransform maps FORMKIT_OUTPUT_DIR to output_dir.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
