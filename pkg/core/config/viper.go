// Package config loads settings from an optional YAML file, a .env file and
// AVROCODEC_ prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every environment override, e.g. AVROCODEC_LOGGER_LEVEL.
const EnvPrefix = "AVROCODEC"

// envConfigFile names the config file when no path is given explicitly.
const envConfigFile = "AVROCODEC_CONFIG_FILE"

type viperConfig struct {
	configPath   *string
	noConfigFile bool
}

// ViperOption configures the viper module.
type ViperOption func(*viperConfig)

// WithConfigPath reads the config file at path.
func WithConfigPath(path string) ViperOption {
	return func(cfg *viperConfig) {
		cfg.configPath = &path
	}
}

// WithoutConfigFile leaves viper with environment overrides only.
func WithoutConfigFile() ViperOption {
	return func(cfg *viperConfig) {
		cfg.noConfigFile = true
	}
}

// FilePath is the config file to load. Empty means none.
type FilePath string

// NewViperModule provides *viper.Viper. The file path comes from
// WithConfigPath or AVROCODEC_CONFIG_FILE.
func NewViperModule(opts ...ViperOption) fx.Option {
	cfg := &viperConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Module("viper",
		fx.Supply(resolveConfigPath(cfg)),
		fx.Provide(func(path FilePath) (*viper.Viper, error) {
			return NewViper(string(path))
		}),
		fx.Invoke(logViperConfig),
	)
}

func logViperConfig(log *zap.Logger, v *viper.Viper) {
	log.Debug("configuration loaded",
		zap.String("configFile", v.ConfigFileUsed()),
		zap.Strings("configKeys", v.AllKeys()),
	)
}

func resolveConfigPath(cfg *viperConfig) FilePath {
	if cfg.noConfigFile {
		return ""
	}
	if cfg.configPath != nil {
		return FilePath(*cfg.configPath)
	}
	return FilePath(os.Getenv(envConfigFile))
}

// NewViper builds a viper instance reading path, if not empty, with
// environment overrides on top.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", path, err)
	}
	return v, nil
}
