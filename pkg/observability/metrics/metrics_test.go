package metrics

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func TestProvider_Counters(t *testing.T) {
	// Arrange
	provider := NewManualProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	ctx := context.Background()
	counter, err := provider.Meter("test").Int64Counter("calls")
	require.NoError(t, err)

	// Act
	counter.Add(ctx, 2, metric.WithAttributes(attribute.String("format", "BINARY")))
	counter.Add(ctx, 3, metric.WithAttributes(attribute.String("format", "JSON")))
	counters, err := provider.Counters(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(5), counters["calls"])
}

func TestProvider_CountersEmpty(t *testing.T) {
	provider := NewManualProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	counters, err := provider.Counters(context.Background())

	require.NoError(t, err)
	assert.Empty(t, counters)
}

func TestProvider_CollectAfterShutdown(t *testing.T) {
	// Arrange
	provider := NewManualProvider()
	require.NoError(t, provider.Shutdown(context.Background()))

	// Act
	_, err := provider.Counters(context.Background())

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to collect metrics")
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]any
		want Config
	}{
		{name: "defaults", want: Config{Enabled: true}},
		{name: "disabled", set: map[string]any{"metrics.enabled": false}, want: Config{}},
		{name: "runtime", set: map[string]any{"metrics.runtime": true}, want: Config{Enabled: true, Runtime: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}

			// Act
			cfg, err := newConfig(v)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}
