package avro

import (
	"context"
	"testing"

	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/registry"
	"github.com/Sokol111/avrocodec/pkg/core/logger"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/Sokol111/avrocodec/pkg/observability/metrics"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zapcore"
)

func newTestViper(set map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range set {
		v.Set(k, val)
	}
	return v
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want Config
	}{
		{
			name: "defaults",
			want: Config{
				SessionCacheSize: registry.DefaultCacheSize,
				SchemaRegistry:   SchemaRegistryConfig{Retries: registry.DefaultRetries},
			},
		},
		{
			name: "overrides",
			set: map[string]any{
				"avro.session-cache-size":      8,
				"avro.default-format":          "JSON",
				"avro.schema-registry.url":     "mock://",
				"avro.schema-registry.retries": 1,
			},
			want: Config{
				SessionCacheSize: 8,
				DefaultFormat:    "JSON",
				SchemaRegistry:   SchemaRegistryConfig{URL: "mock://", Retries: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			cfg, err := newConfig(newTestViper(tt.set))

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestNewConfig_InvalidFormat(t *testing.T) {
	_, err := newConfig(newTestViper(map[string]any{"avro.default-format": "XML"}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid avro default-format")
}

func TestConfig_Defaults(t *testing.T) {
	opts, err := Config{DefaultFormat: "json_pretty"}.Defaults()

	require.NoError(t, err)
	assert.Equal(t, encoding.PrettyJSON, opts.Format)
}

func newTestApp(t *testing.T, set map[string]any, populate ...any) *fxtest.App {
	t.Helper()
	return fxtest.New(t,
		fx.Supply(newTestViper(set)),
		logger.NewZapLoggingModule(logger.WithLoggerConfig(logger.Config{Level: zapcore.ErrorLevel})),
		metrics.NewMetricsModule(),
		NewAvroModule(),
		fx.Populate(populate...),
	)
}

func TestNewAvroModule(t *testing.T) {
	// Arrange
	var reg *registry.Registry
	var resolver *registry.Resolver
	var provider *metrics.Provider
	app := newTestApp(t, nil, &reg, &resolver, &provider)
	app.RequireStart()
	defer app.RequireStop()

	// Act
	h, err := reg.RegisterText(`{"type": "array", "items": "long"}`)
	require.NoError(t, err)
	out, err := reg.Encode(context.Background(), h, host.Longs{1, 2}, nil)
	require.NoError(t, err)

	// Assert
	assert.Nil(t, resolver)
	assert.Equal(t, host.Bytes{0x04, 0x02, 0x04, 0x00}, out)
	counters, err := provider.Counters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counters["avrocodec.encode.count"])
}

func TestNewAvroModule_WithSchemaRegistry(t *testing.T) {
	// Arrange
	var resolver *registry.Resolver
	app := newTestApp(t, map[string]any{"avro.schema-registry.url": "mock://"}, &resolver)

	// Act
	app.RequireStart()
	app.RequireStop()

	// Assert
	assert.NotNil(t, resolver)
}
