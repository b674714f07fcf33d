// Package registry tracks live codec sessions behind opaque handles and
// resolves Confluent framed payloads against a schema registry.
package registry

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Sokol111/avrocodec/pkg/avro/schema"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	hambavro "github.com/hamba/avro/v2"
)

// Handle identifies a registered session. The zero Handle is never issued.
type Handle uint64

// Registry maps handles to sessions. It is safe for concurrent use.
type Registry struct {
	cache    *Cache
	sessions *xsync.MapOf[Handle, *session.Session]
	next     atomic.Uint64
	log      *zap.Logger
}

// New returns an empty registry drawing sessions from cache.
func New(cache *Cache, log *zap.Logger) *Registry {
	return &Registry{
		cache:    cache,
		sessions: xsync.NewMapOf[Handle, *session.Session](),
		log:      log,
	}
}

// Register compiles s, or reuses an idle cached session for it, and returns a
// new handle. Every handle owns its session, so calls on different handles may
// run concurrently; calls on one handle may not unless they pass
// MULTITHREADED.
func (r *Registry) Register(s hambavro.Schema) (Handle, error) {
	sess, err := r.cache.Take(s)
	if err != nil {
		return 0, err
	}
	h := Handle(r.next.Add(1))
	r.sessions.Store(h, sess)
	r.log.Debug("avro session registered",
		zap.Uint64("handle", uint64(h)),
		zap.String("fingerprint", sess.Fingerprint()),
	)
	return h, nil
}

// RegisterText parses text and registers the resulting schema.
func (r *Registry) RegisterText(text string) (Handle, error) {
	s, err := schema.Parse(text)
	if err != nil {
		return 0, err
	}
	return r.Register(s)
}

// Session returns the session behind h.
func (r *Registry) Session(h Handle) (*session.Session, error) {
	sess, ok := r.sessions.Load(h)
	if !ok {
		return nil, typecheck.Handle(fmt.Sprintf("Invalid schema handle %d", h))
	}
	return sess, nil
}

// Release forgets h and returns its session to the cache. Later use of h
// fails with InvalidHandle.
func (r *Registry) Release(h Handle) error {
	sess, ok := r.sessions.LoadAndDelete(h)
	if !ok {
		return typecheck.Handle(fmt.Sprintf("Invalid schema handle %d", h))
	}
	r.cache.Put(sess)
	r.log.Debug("avro session released", zap.Uint64("handle", uint64(h)))
	return nil
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	return r.sessions.Size()
}

// Schema returns the pretty printed schema behind h.
func (r *Registry) Schema(h Handle) (host.Value, error) {
	sess, err := r.Session(h)
	if err != nil {
		return nil, err
	}
	text, err := schema.Pretty(sess.Schema())
	if err != nil {
		return nil, err
	}
	return host.Chars(text), nil
}

// Encode encodes v with the session behind h. options is a host options
// dictionary, nil or identity.
func (r *Registry) Encode(ctx context.Context, h Handle, v host.Value, options host.Value) (host.Value, error) {
	sess, err := r.Session(h)
	if err != nil {
		return nil, err
	}
	opts, err := session.ParseEncodeOptions(options)
	if err != nil {
		return nil, err
	}
	return sess.EncodeValue(ctx, v, opts)
}

// Decode decodes a byte or char vector with the session behind h.
func (r *Registry) Decode(ctx context.Context, h Handle, data host.Value, options host.Value) (host.Value, error) {
	sess, err := r.Session(h)
	if err != nil {
		return nil, err
	}
	opts, err := session.ParseDecodeOptions(options)
	if err != nil {
		return nil, err
	}
	return sess.DecodeValue(ctx, data, opts)
}
