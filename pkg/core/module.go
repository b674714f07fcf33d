package core

import (
	"time"

	"github.com/Sokol111/avrocodec/pkg/core/config"
	"github.com/Sokol111/avrocodec/pkg/core/logger"
	"go.uber.org/fx"
)

type coreOptions struct {
	configPath         string
	envFile            string
	loggerConfig       *logger.Config
	disableDotEnv      bool
	disableViperConfig bool
}

// Option is a functional option for configuring the core module.
type Option func(*coreOptions)

// WithConfigPath reads the YAML config at path.
func WithConfigPath(path string) Option {
	return func(opts *coreOptions) {
		opts.configPath = path
	}
}

// WithEnvFile reads path instead of the default .env file.
func WithEnvFile(path string) Option {
	return func(opts *coreOptions) {
		opts.envFile = path
	}
}

// WithLoggerConfig provides a static logger Config.
// When set, the logger configuration will not be loaded from viper.
func WithLoggerConfig(cfg logger.Config) Option {
	return func(opts *coreOptions) {
		opts.loggerConfig = &cfg
	}
}

// WithoutEnvFile disables loading of the .env file.
func WithoutEnvFile() Option {
	return func(opts *coreOptions) {
		opts.disableDotEnv = true
	}
}

// WithoutConfigFile leaves configuration to environment variables.
func WithoutConfigFile() Option {
	return func(opts *coreOptions) {
		opts.disableViperConfig = true
	}
}

// NewCoreModule provides config and logger.
//
// Example usage:
//
//	core.NewCoreModule(
//	    core.WithLoggerConfig(logger.Config{Level: zapcore.DebugLevel}),
//	    core.WithoutEnvFile(),
//	    core.WithoutConfigFile(),
//	)
func NewCoreModule(opts ...Option) fx.Option {
	cfg := &coreOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		fx.StartTimeout(30*time.Second),
		fx.StopTimeout(30*time.Second),

		dotEnvModule(cfg),
		viperModule(cfg),
		loggerModule(cfg),
	)
}

func dotEnvModule(cfg *coreOptions) fx.Option {
	switch {
	case cfg.disableDotEnv:
		return fx.Options()
	case cfg.envFile != "":
		return config.NewDotEnvModule(config.WithDotEnvPath(cfg.envFile))
	}
	return config.NewDotEnvModule()
}

func viperModule(cfg *coreOptions) fx.Option {
	switch {
	case cfg.disableViperConfig:
		return config.NewViperModule(config.WithoutConfigFile())
	case cfg.configPath != "":
		return config.NewViperModule(config.WithConfigPath(cfg.configPath))
	}
	return config.NewViperModule()
}

func loggerModule(cfg *coreOptions) fx.Option {
	if cfg.loggerConfig != nil {
		return logger.NewZapLoggingModule(logger.WithLoggerConfig(*cfg.loggerConfig))
	}
	return logger.NewZapLoggingModule()
}
