package avrocli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/Sokol111/avrocodec/pkg/avro"
	"github.com/Sokol111/avrocodec/pkg/avro/registry"
	"github.com/Sokol111/avrocodec/pkg/core"
	"github.com/Sokol111/avrocodec/pkg/core/logger"
	"github.com/Sokol111/avrocodec/pkg/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// deps is the part of the fx graph the commands use.
type deps struct {
	fx.In
	Log      *zap.Logger
	Config   avro.Config
	Cache    *registry.Cache
	Resolver *registry.Resolver
	Metrics  *metrics.Provider
}

func coreOptions(g *GlobalConfig) ([]core.Option, error) {
	var opts []core.Option
	if g.ConfigFile != "" {
		opts = append(opts, core.WithConfigPath(g.ConfigFile))
	}
	if g.EnvFile == "" {
		opts = append(opts, core.WithoutEnvFile())
	} else {
		opts = append(opts, core.WithEnvFile(g.EnvFile))
	}
	if g.LogLevel != "" {
		level, err := zapcore.ParseLevel(g.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level '%s': %w", g.LogLevel, err)
		}
		cfg := logger.DefaultConfig()
		cfg.Level = level
		opts = append(opts, core.WithLoggerConfig(cfg))
	}
	return opts, nil
}

// run starts the application graph, calls fn and stops the graph again.
func run(ctx context.Context, g *GlobalConfig, errOut io.Writer, fn func(context.Context, *deps) error) error {
	opts, err := coreOptions(g)
	if err != nil {
		return err
	}

	var d deps
	app := fx.New(
		core.NewCoreModule(opts...),
		metrics.NewMetricsModule(),
		avro.NewAvroModule(),
		fx.Invoke(func(p deps) { d = p }),
	)
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	runErr := fn(logger.With(ctx, d.Log), &d)
	if g.Stats {
		if err := printStats(ctx, errOut, d.Metrics); err != nil {
			d.Log.Warn("failed to print stats", zap.Error(err))
		}
	}
	if err := app.Stop(ctx); err != nil && runErr == nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	return runErr
}

func printStats(ctx context.Context, w io.Writer, p *metrics.Provider) error {
	counters, err := p.Counters(ctx)
	if err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(counters)) {
		if _, err := fmt.Fprintf(w, "%s %d\n", name, counters[name]); err != nil {
			return err
		}
	}
	return nil
}
