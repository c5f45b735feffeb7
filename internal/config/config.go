// Package config loads qedit settings from a yaml file, QEDIT_* environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// DefaultFile is the file name looked up in the working directory.
const DefaultFile = ".qedit.yaml"

var (
	ErrInvalidLevel     = errors.New("invalid logging level")
	ErrInvalidFormat    = errors.New("invalid logging format")
	ErrInvalidConnector = errors.New("invalid default connector")
	ErrInvalidWorkers   = errors.New("check workers must be positive")
)

var (
	levels     = []string{"debug", "info", "warn", "error"}
	formats    = []string{"console", "json"}
	connectors = []string{"AND", "OR", "NOT"}
)

type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Editor  EditorConfig  `mapstructure:"editor" yaml:"editor"`
	Check   CheckConfig   `mapstructure:"check" yaml:"check"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// EditorConfig feeds the templates inserted by edit operations.
type EditorConfig struct {
	DefaultLayer     string `mapstructure:"default_layer" yaml:"default_layer"`
	DefaultIndex     string `mapstructure:"default_index" yaml:"default_index"`
	DefaultConnector string `mapstructure:"default_connector" yaml:"default_connector"`
	DefaultScope     string `mapstructure:"default_scope" yaml:"default_scope"`
}

type CheckConfig struct {
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	Workers    int      `mapstructure:"workers" yaml:"workers"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Editor: EditorConfig{
			DefaultLayer:     "text",
			DefaultIndex:     "lemma",
			DefaultConnector: "AND",
			DefaultScope:     "s",
		},
		Check: CheckConfig{
			Extensions: []string{".fcsql", ".cql"},
			Workers:    runtime.NumCPU(),
		},
	}
}

// LoadConfig reads configPath, or DefaultFile from the working directory
// when configPath is empty. A missing default file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("QEDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("editor.default_layer", d.Editor.DefaultLayer)
	v.SetDefault("editor.default_index", d.Editor.DefaultIndex)
	v.SetDefault("editor.default_connector", d.Editor.DefaultConnector)
	v.SetDefault("editor.default_scope", d.Editor.DefaultScope)
	v.SetDefault("check.extensions", d.Check.Extensions)
	v.SetDefault("check.workers", d.Check.Workers)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(levels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Logging.Level)
	}
	if !slices.Contains(formats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Logging.Format)
	}
	if !slices.Contains(connectors, strings.ToUpper(c.Editor.DefaultConnector)) {
		return fmt.Errorf("%w: %q", ErrInvalidConnector, c.Editor.DefaultConnector)
	}
	if c.Check.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Check.Workers)
	}
	return nil
}
