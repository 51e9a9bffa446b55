// Package config loads floodfile's small persistent configuration: the
// interface to bind on startup, the storage directory for downloads, and
// logging behavior. Adapted from the teacher's pkg/config, scaled down
// from its many server-side sections to floodfile's three knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is floodfile's persistent configuration.
//
// Precedence (highest to lowest): environment variables (FLOODFILE_*),
// configuration file, default values.
type Config struct {
	// Interface is the network interface name to bind on startup. Empty
	// means "choose from pkg/channel.UsableInterfaces", prompting when more
	// than one is usable.
	Interface string `mapstructure:"interface" yaml:"interface"`

	// StorageDir is where completed downloads are written. Empty means
	// the system temporary directory.
	StorageDir string `mapstructure:"storage_dir" yaml:"storage_dir"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output: debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log output format: text or json.
	Format string `mapstructure:"format" yaml:"format"`
}

// Load loads configuration from file, environment, and defaults.
// configPath empty uses the default location ($XDG_CONFIG_HOME/floodfile/config.yaml).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	// Bind every key so its FLOODFILE_* variable applies even when the key
	// is absent from the config file or no file exists.
	for _, key := range []string{"interface", "storage_dir", "logging.level", "logging.format"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable: %w", err)
		}
	}

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Save writes cfg to path in YAML form.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("FLOODFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(DefaultConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/floodfile, falling back to
// ~/.config/floodfile, or "." if the home directory can't be determined.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "floodfile")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "floodfile")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
