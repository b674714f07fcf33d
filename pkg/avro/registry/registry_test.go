package registry

import (
	"context"
	"sync"
	"testing"

	"github.com/Sokol111/avrocodec/pkg/avro/schema"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tickSchema = `{
	"type": "record",
	"name": "Tick",
	"namespace": "test",
	"fields": [
		{"name": "sym", "type": "string"},
		{"name": "px", "type": "double"}
	]
}`

func tick() host.Dict {
	return host.NewRecord([]string{"sym", "px"}, host.Chars("ab"), host.Float(1.5))
}

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	cache, err := NewCache(4)
	require.NoError(t, err)
	return New(cache, zap.NewNop())
}

func TestRegistry_RegisterEncodeDecode(t *testing.T) {
	// Arrange
	reg := newRegistry(t)
	h, err := reg.RegisterText(tickSchema)
	require.NoError(t, err)
	opts := host.Dict{Keys: host.Symbols{session.AvroFormat}, Values: host.Symbols{"JSON"}}

	// Act
	text, err := reg.Encode(context.Background(), h, tick(), opts)
	require.NoError(t, err)
	back, err := reg.Decode(context.Background(), h, text, opts)

	// Assert
	require.NoError(t, err)
	assert.IsType(t, host.Chars(""), text)
	assert.JSONEq(t, `{"sym": "ab", "px": 1.5}`, string(text.(host.Chars)))
	assert.Equal(t, tick(), back)
}

func TestRegistry_DefaultOptions(t *testing.T) {
	// Arrange
	reg := newRegistry(t)
	h, err := reg.RegisterText(tickSchema)
	require.NoError(t, err)

	// Act
	bin, err := reg.Encode(context.Background(), h, tick(), nil)
	require.NoError(t, err)
	back, err := reg.Decode(context.Background(), h, bin, host.Null{})

	// Assert
	require.NoError(t, err)
	assert.IsType(t, host.Bytes{}, bin)
	assert.Equal(t, tick(), back)
}

func TestRegistry_InvalidHandle(t *testing.T) {
	// Arrange
	reg := newRegistry(t)
	h, err := reg.RegisterText(tickSchema)
	require.NoError(t, err)
	require.NoError(t, reg.Release(h))

	tests := []struct {
		name string
		call func() error
	}{
		{"zero handle", func() error { _, err := reg.Session(0); return err }},
		{"released session", func() error { _, err := reg.Session(h); return err }},
		{"released encode", func() error { _, err := reg.Encode(context.Background(), h, tick(), nil); return err }},
		{"released decode", func() error { _, err := reg.Decode(context.Background(), h, host.Bytes{}, nil); return err }},
		{"released schema", func() error { _, err := reg.Schema(h); return err }},
		{"double release", func() error { return reg.Release(h) }},
		{"foreign handle", func() error { _, err := reg.Session(Handle(999)); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()

			require.Error(t, err)
			assert.ErrorIs(t, err, typecheck.InvalidHandle)
		})
	}
}

func TestRegistry_InvalidOptions(t *testing.T) {
	// Arrange
	reg := newRegistry(t)
	h, err := reg.RegisterText(tickSchema)
	require.NoError(t, err)
	opts := host.Dict{Keys: host.Symbols{session.DecodeOffset}, Values: host.Longs{5}}

	// Act
	_, err = reg.Encode(context.Background(), h, tick(), opts)

	// Assert
	assert.ErrorIs(t, err, typecheck.InvalidOption)
}

func TestRegistry_HandlesOwnTheirSession(t *testing.T) {
	// Arrange
	reg := newRegistry(t)
	h1, err := reg.RegisterText(tickSchema)
	require.NoError(t, err)
	h2, err := reg.RegisterText(tickSchema)
	require.NoError(t, err)
	s1, err := reg.Session(h1)
	require.NoError(t, err)
	s2, err := reg.Session(h2)
	require.NoError(t, err)

	// Act
	require.NoError(t, reg.Release(h1))
	h3, err := reg.RegisterText(tickSchema)
	require.NoError(t, err)
	s3, err := reg.Session(h3)
	require.NoError(t, err)

	// Assert
	assert.NotEqual(t, h1, h2)
	assert.NotSame(t, s1, s2)
	assert.Equal(t, s1.Fingerprint(), s2.Fingerprint())
	assert.Same(t, s1, s3)
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, 0, reg.cache.Len())
}

func TestRegistry_TwoHandlesConcurrent(t *testing.T) {
	// Arrange
	reg := newRegistry(t)
	handles := make([]Handle, 2)
	for i := range handles {
		h, err := reg.RegisterText(tickSchema)
		require.NoError(t, err)
		handles[i] = h
	}
	var wg sync.WaitGroup

	// Act
	for _, h := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				bin, err := reg.Encode(context.Background(), h, tick(), nil)
				if !assert.NoError(t, err) {
					return
				}
				back, err := reg.Decode(context.Background(), h, bin, nil)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, tick(), back)
			}
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_Schema(t *testing.T) {
	// Arrange
	reg := newRegistry(t)
	h, err := reg.RegisterText(tickSchema)
	require.NoError(t, err)

	// Act
	got, err := reg.Schema(h)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, string(got.(host.Chars)), "Tick")
}

func TestRegistry_ConcurrentRegisterRelease(t *testing.T) {
	// Arrange
	reg := newRegistry(t)
	var wg sync.WaitGroup

	// Act
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := reg.RegisterText(tickSchema)
			assert.NoError(t, err)
			assert.NoError(t, reg.Release(h))
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 0, reg.Len())
}

func TestCache_Eviction(t *testing.T) {
	// Arrange
	cache, err := NewCache(1)
	require.NoError(t, err)
	first, err := schema.Parse(tickSchema)
	require.NoError(t, err)
	second, err := schema.Parse(`{"type": "array", "items": "long"}`)
	require.NoError(t, err)

	// Act
	s1, err := cache.Take(first)
	require.NoError(t, err)
	s2, err := cache.Take(second)
	require.NoError(t, err)
	cache.Put(s1)
	cache.Put(s2)
	again, err := cache.Take(first)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, cache.Len())
	assert.NotSame(t, s1, again)
	assert.Equal(t, s1.Fingerprint(), again.Fingerprint())
}

func TestCache_TakeIsExclusive(t *testing.T) {
	// Arrange
	cache, err := NewCache(4)
	require.NoError(t, err)
	s, err := schema.Parse(tickSchema)
	require.NoError(t, err)
	first, err := cache.Take(s)
	require.NoError(t, err)
	cache.Put(first)

	// Act
	a, err := cache.Take(s)
	require.NoError(t, err)
	b, err := cache.Take(s)
	require.NoError(t, err)
	cache.Put(a)
	cache.Put(b)

	// Assert
	assert.Same(t, first, a)
	assert.NotSame(t, a, b)
	assert.Equal(t, 1, cache.Len())
}
