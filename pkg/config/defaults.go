package config

import (
	"os"
	"strings"
)

// DefaultConfig returns a Config with every field already defaulted.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unspecified fields with sensible defaults. Zero
// values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	if cfg.StorageDir == "" {
		cfg.StorageDir = os.TempDir()
	}
	applyLoggingDefaults(&cfg.Logging)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	cfg.Level = strings.ToLower(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
}
