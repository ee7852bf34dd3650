package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// Load reads, expands, normalizes, defaults and validates the configuration at
// path. .env files in the working directory are loaded first.
func Load(path string) (*Config, error) {
	loadEnvFile("")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError(fmt.Sprintf("configuration file not found: %s", path)).
				WithContext("path", path).
				Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse runs the load pipeline on raw YAML. ${VAR} references are expanded from
// the environment before decoding.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, ferrors.ConfigError(
			fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, CurrentVersion)).
			Build()
	}

	res := Normalize(&cfg)
	for _, w := range res.Warnings {
		slog.Warn("Config normalization", slog.String("detail", w))
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
