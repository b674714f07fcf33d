package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	schemaregistry "github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
)

func createMockSchemaRegistryClient(t *testing.T) schemaregistry.Client {
	t.Helper()
	client, err := schemaregistry.NewClient(schemaregistry.NewConfig("mock://"))
	require.NoError(t, err)
	return client
}

func registerTestSchema(t *testing.T, client schemaregistry.Client, subject, text string) int {
	t.Helper()
	id, err := client.Register(subject, schemaregistry.SchemaInfo{Schema: text, SchemaType: "AVRO"}, false)
	require.NoError(t, err)
	require.Greater(t, id, 0)
	return id
}

func newResolver(t *testing.T, client schemaregistry.Client) *Resolver {
	t.Helper()
	cache, err := NewCache(4)
	require.NoError(t, err)
	return NewResolver(client, cache, zap.NewNop(), WithRetries(1), WithRetryInterval(time.Millisecond))
}

func TestResolver_EncodeDecode(t *testing.T) {
	// Arrange
	client := createMockSchemaRegistryClient(t)
	id := registerTestSchema(t, client, "ticks-value", tickSchema)
	resolver := newResolver(t, client)
	ctx := context.Background()

	// Act
	framed, err := resolver.Encode(ctx, "ticks-value", tick(), session.Options{})
	require.NoError(t, err)
	got, err := resolver.Decode(ctx, framed, session.Options{})

	// Assert
	require.NoError(t, err)
	header, err := encoding.ParseHeader(framed)
	require.NoError(t, err)
	assert.Equal(t, id, header)
	assert.Equal(t, tick(), got)
}

func TestResolver_SessionCached(t *testing.T) {
	// Arrange
	client := createMockSchemaRegistryClient(t)
	id := registerTestSchema(t, client, "ticks-value", tickSchema)
	resolver := newResolver(t, client)

	// Act
	s1, err := resolver.Session(context.Background(), id)
	require.NoError(t, err)
	s2, err := resolver.Session(context.Background(), id)
	require.NoError(t, err)

	// Assert
	assert.Same(t, s1, s2)
}

func TestResolver_ConcurrentDecode(t *testing.T) {
	// Arrange
	client := createMockSchemaRegistryClient(t)
	registerTestSchema(t, client, "ticks-value", tickSchema)
	resolver := newResolver(t, client)
	ctx := context.Background()
	framed, err := resolver.Encode(ctx, "ticks-value", tick(), session.Options{})
	require.NoError(t, err)
	var wg sync.WaitGroup

	// Act
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got, err := resolver.Decode(ctx, framed, session.Options{})
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, tick(), got)
			}
		}()
	}
	wg.Wait()

	// Assert
	_, err = resolver.Encode(ctx, "ticks-value", tick(), session.Options{})
	assert.NoError(t, err)
}

func TestResolver_Errors(t *testing.T) {
	client := createMockSchemaRegistryClient(t)
	registerTestSchema(t, client, "ticks-value", tickSchema)
	resolver := newResolver(t, client)
	ctx := context.Background()

	t.Run("unknown schema id", func(t *testing.T) {
		_, err := resolver.Decode(ctx, encoding.Frame(9999, []byte{0x00}), session.Options{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "9999")
	})

	t.Run("short frame", func(t *testing.T) {
		_, err := resolver.Decode(ctx, []byte{0x00, 0x01}, session.Options{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse confluent header")
	})

	t.Run("bad magic byte", func(t *testing.T) {
		_, err := resolver.Decode(ctx, []byte{0x01, 0, 0, 0, 1, 0}, session.Options{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid magic byte")
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := resolver.Encode(ctx, "missing-value", tick(), session.Options{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing-value")
	})

	t.Run("text format", func(t *testing.T) {
		_, err := resolver.Encode(ctx, "ticks-value", tick(), session.Options{Format: encoding.JSON})

		assert.ErrorIs(t, err, typecheck.InvalidOption)
	})
}

func TestResolver_ContextCancelled(t *testing.T) {
	// Arrange
	client := createMockSchemaRegistryClient(t)
	cache, err := NewCache(4)
	require.NoError(t, err)
	resolver := NewResolver(client, cache, zap.NewNop(), WithRetries(5), WithRetryInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	_, err = resolver.Session(ctx, 4242)

	// Assert
	require.Error(t, err)
}
