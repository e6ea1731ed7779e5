// Package config loads strandwise settings from defaults, an optional YAML
// file and STRANDWISE_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/abhisek/strandwise/internal/tuning"
	"github.com/abhisek/strandwise/internal/validation"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "STRANDWISE_"

	// PathEnvVar names the environment variable holding the config file path.
	PathEnvVar = EnvPrefix + "CONFIG"

	// DefaultPath is used when no path is given and the file exists.
	DefaultPath = "strandwise.yaml"
)

// Config is the full application configuration.
type Config struct {
	// DB is the SQLite database path. Empty means the XDG default.
	DB string `koanf:"db"`

	Log    LogConfig    `koanf:"log"`
	Tuning TuningConfig `koanf:"tuning"`

	// Diagnostics controls whether import prints the evaluation report.
	Diagnostics bool `koanf:"diagnostics"`

	Metrics MetricsConfig `koanf:"metrics"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TuningConfig holds the K search settings.
type TuningConfig struct {
	KMin     int   `koanf:"k_min" validate:"gte=1"`
	KMax     int   `koanf:"k_max" validate:"gtefield=KMin"`
	Folds    int   `koanf:"folds" validate:"gte=2"`
	Seed     int64 `koanf:"seed"`
	DefaultK int   `koanf:"default_k" validate:"gte=1"`
	Workers  int   `koanf:"workers" validate:"gte=0"`
}

// Selector converts the settings into a tuning.Config.
func (t TuningConfig) Selector() tuning.Config {
	return tuning.Config{
		KMin:     t.KMin,
		KMax:     t.KMax,
		Folds:    t.Folds,
		Seed:     t.Seed,
		DefaultK: t.DefaultK,
		Workers:  t.Workers,
	}
}

// MetricsConfig controls the prometheus textfile export.
type MetricsConfig struct {
	// Textfile is written with all metrics when a command exits. Empty disables it.
	Textfile string `koanf:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sel := tuning.DefaultConfig()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Tuning: TuningConfig{
			KMin:     sel.KMin,
			KMax:     sel.KMax,
			Folds:    sel.Folds,
			Seed:     sel.Seed,
			DefaultK: sel.DefaultK,
			Workers:  sel.Workers,
		},
		Diagnostics: true,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $STRANDWISE_CONFIG, or ./strandwise.yaml when present), then the
// environment. The result is validated.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

// findConfigFile returns the file to load. Explicit paths must exist; the
// default path is optional.
func findConfigFile(path string) (string, error) {
	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("config file: %w", err)
	}
	return "", nil
}

// sections lists the nested config groups. Their env names join the group
// and key with an underscore, which is also used inside key names.
var sections = []string{"log", "tuning", "metrics"}

// envTransformFunc maps environment variable names to koanf paths:
//
//	STRANDWISE_DB            -> db
//	STRANDWISE_LOG_LEVEL     -> log.level
//	STRANDWISE_TUNING_K_MIN  -> tuning.k_min
//
// STRANDWISE_CONFIG names the file itself and is skipped.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	for _, s := range sections {
		if rest, ok := strings.CutPrefix(key, s+"_"); ok {
			return s + "." + rest
		}
	}
	return key
}
