package logger

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds the logger settings read from the "logger" section.
type Config struct {
	// Level is the minimum enabled level.
	Level zapcore.Level

	// Development switches to console encoding with human readable timestamps.
	Development bool

	// OutputPaths are URLs or file paths to write to. Empty means stderr.
	OutputPaths []string
}

// DefaultConfig logs info and above as JSON to stderr.
func DefaultConfig() Config {
	return Config{Level: zapcore.InfoLevel}
}

func (c Config) Validate() error {
	for i, path := range c.OutputPaths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("outputPaths[%d] cannot be empty or whitespace", i)
		}
	}
	return nil
}

func newConfig(v *viper.Viper) (Config, error) {
	sub := v.Sub("logger")
	if sub == nil {
		return DefaultConfig(), nil
	}

	var raw struct {
		Level       string   `mapstructure:"level"`
		Development bool     `mapstructure:"development"`
		OutputPaths []string `mapstructure:"outputPaths"`
	}
	if err := sub.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("failed to load logger config: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Development = raw.Development
	cfg.OutputPaths = raw.OutputPaths
	if raw.Level != "" {
		level, err := zapcore.ParseLevel(raw.Level)
		if err != nil {
			return Config{}, fmt.Errorf("invalid log level '%s': %w", raw.Level, err)
		}
		cfg.Level = level
	}
	return cfg, nil
}
