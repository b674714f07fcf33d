// Package avro wires the codec stack into an fx application: the session
// cache, the handle registry and, when a registry URL is configured, the
// schema-registry resolver.
package avro

import (
	"context"
	"fmt"

	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/registry"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"

	schemaregistry "github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
)

const meterName = "github.com/Sokol111/avrocodec/pkg/avro"

// Config holds the "avro" section.
type Config struct {
	SessionCacheSize int                  `mapstructure:"session-cache-size"`
	DefaultFormat    string               `mapstructure:"default-format"`
	SchemaRegistry   SchemaRegistryConfig `mapstructure:"schema-registry"`
}

// SchemaRegistryConfig locates the Confluent schema registry.
type SchemaRegistryConfig struct {
	URL     string `mapstructure:"url"`
	Retries uint64 `mapstructure:"retries"`
}

// Defaults returns the call options implied by DefaultFormat.
func (c Config) Defaults() (session.Options, error) {
	opts := session.DefaultOptions()
	if c.DefaultFormat == "" {
		return opts, nil
	}
	f, err := encoding.ParseFormat(c.DefaultFormat)
	if err != nil {
		return opts, err
	}
	opts.Format = f
	return opts, nil
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		SessionCacheSize: registry.DefaultCacheSize,
		SchemaRegistry:   SchemaRegistryConfig{Retries: registry.DefaultRetries},
	}
	if err := v.UnmarshalKey("avro", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load avro config: %w", err)
	}
	if _, err := cfg.Defaults(); err != nil {
		return Config{}, fmt.Errorf("invalid avro default-format: %w", err)
	}
	return cfg, nil
}

// NewAvroModule provides Config, *registry.Cache, *registry.Registry and
// *registry.Resolver. The resolver is nil when no registry URL is set.
func NewAvroModule() fx.Option {
	return fx.Module("avro",
		fx.Provide(
			newConfig,
			provideCache,
			registry.New,
			provideResolver,
		),
	)
}

type cacheParams struct {
	fx.In
	Cfg           Config
	MeterProvider metric.MeterProvider `optional:"true"`
}

func provideCache(p cacheParams) (*registry.Cache, error) {
	var opts []session.Option
	if p.MeterProvider != nil {
		opts = append(opts, session.WithMeter(p.MeterProvider.Meter(meterName)))
	}
	return registry.NewCache(p.Cfg.SessionCacheSize, opts...)
}

func provideResolver(lc fx.Lifecycle, cfg Config, cache *registry.Cache, log *zap.Logger) (*registry.Resolver, error) {
	if cfg.SchemaRegistry.URL == "" {
		log.Debug("schema registry: disabled")
		return nil, nil
	}
	client, err := schemaregistry.NewClient(schemaregistry.NewConfig(cfg.SchemaRegistry.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to create schema registry client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			log.Info("closing schema registry client")
			return client.Close()
		},
	})
	return registry.NewResolver(client, cache, log, registry.WithRetries(cfg.SchemaRegistry.Retries)), nil
}
