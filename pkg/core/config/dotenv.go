package config

import (
	"context"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DefaultDotEnvPath is the .env file read when no path is given.
const DefaultDotEnvPath = ".env"

type dotenvConfig struct {
	path string
}

// DotEnvOption configures the dotenv module.
type DotEnvOption func(*dotenvConfig)

// WithDotEnvPath reads path instead of DefaultDotEnvPath.
func WithDotEnvPath(path string) DotEnvOption {
	return func(cfg *dotenvConfig) {
		cfg.path = path
	}
}

// LoadDotEnv loads path into the process environment without overriding
// variables already set. A missing file is not an error.
func LoadDotEnv(path string) bool {
	return godotenv.Load(path) == nil
}

// NewDotEnvModule loads the .env file while the module is built, so the
// values are visible to every provider.
func NewDotEnvModule(opts ...DotEnvOption) fx.Option {
	cfg := &dotenvConfig{path: DefaultDotEnvPath}
	for _, opt := range opts {
		opt(cfg)
	}
	loaded := LoadDotEnv(cfg.path)

	return fx.Module("dotenv",
		fx.Invoke(func(lc fx.Lifecycle, log *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					log.Debug("dotenv", zap.String("path", cfg.path), zap.Bool("loaded", loaded))
					return nil
				},
			})
		}),
	)
}
