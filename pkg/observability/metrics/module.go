package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"

	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
)

const (
	// DefaultShutdownTimeout bounds provider shutdown on stop.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultRuntimeStatsInterval is the minimum interval between runtime
	// memory stat reads.
	DefaultRuntimeStatsInterval = time.Second
)

// Config holds the "metrics" section.
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	Runtime bool `mapstructure:"runtime"`
}

func newConfig(v *viper.Viper) (Config, error) {
	cfg := Config{Enabled: true}
	if err := v.UnmarshalKey("metrics", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load metrics config: %w", err)
	}
	return cfg, nil
}

type providerParams struct {
	fx.In
	Lc  fx.Lifecycle
	Log *zap.Logger
	Cfg Config
}

// NewMetricsModule provides *Provider and metric.MeterProvider, installs the
// provider globally on start and shuts it down on stop.
func NewMetricsModule() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			newConfig,
			provideProvider,
			func(p *Provider) metric.MeterProvider { return p },
		),
	)
}

func provideProvider(p providerParams) (*Provider, error) {
	provider, err := NewProvider(context.Background(), "")
	if err != nil {
		return nil, err
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if !p.Cfg.Enabled {
				p.Log.Info("metrics: disabled")
				return nil
			}
			otel.SetMeterProvider(provider)
			if p.Cfg.Runtime {
				if err := otelruntime.Start(
					otelruntime.WithMeterProvider(provider),
					otelruntime.WithMinimumReadMemStatsInterval(DefaultRuntimeStatsInterval),
				); err != nil {
					return fmt.Errorf("failed to start runtime metrics: %w", err)
				}
			}
			p.Log.Debug("metrics initialized", zap.Bool("runtime", p.Cfg.Runtime))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
			defer cancel()
			return provider.Shutdown(shutdownCtx)
		},
	})
	return provider, nil
}
