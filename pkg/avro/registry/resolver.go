package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/schema"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/core/logger"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/cenkalti/backoff/v4"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	schemaregistry "github.com/confluentinc/confluent-kafka-go/v2/schemaregistry"
)

// DefaultRetries is the number of retries of a failed registry lookup.
const DefaultRetries = 3

// Resolver decodes and encodes Confluent framed payloads
// [0x00][schema id][avro binary], fetching writer schemas by ID. It is safe
// for concurrent use: the session of a schema ID is shared, so every call runs
// with fresh codecs (MULTITHREADED).
type Resolver struct {
	client    schemaregistry.Client
	cache     *Cache
	byID      *xsync.MapOf[int, *session.Session]
	retries   uint64
	interval  time.Duration
	throttler *logger.LogThrottler
	log       *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithRetries sets how many times a failed lookup is retried.
func WithRetries(n uint64) ResolverOption {
	return func(r *Resolver) { r.retries = n }
}

// WithRetryInterval sets the initial backoff between retries.
func WithRetryInterval(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.interval = d }
}

// NewResolver returns a resolver over client. Sessions are drawn from cache.
func NewResolver(client schemaregistry.Client, cache *Cache, log *zap.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		client:    client,
		cache:     cache,
		byID:      xsync.NewMapOf[int, *session.Session](),
		retries:   DefaultRetries,
		interval:  backoff.DefaultInitialInterval,
		throttler: logger.NewLogThrottler(log, logger.DefaultThrottleInterval),
		log:       log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Session returns the session for the writer schema registered under id.
func (r *Resolver) Session(ctx context.Context, id int) (*session.Session, error) {
	if sess, ok := r.byID.Load(id); ok {
		return sess, nil
	}

	var text string
	err := r.retry(ctx, fmt.Sprintf("schema-%d", id), func() error {
		var err error
		text, err = r.fetch(id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s, err := schema.Parse(text)
	if err != nil {
		return nil, err
	}
	sess, err := r.cache.Take(s)
	if err != nil {
		return nil, err
	}
	if prev, loaded := r.byID.LoadOrStore(id, sess); loaded {
		r.cache.Put(sess)
		return prev, nil
	}
	return sess, nil
}

func (r *Resolver) fetch(id int) (string, error) {
	subjects, err := r.client.GetSubjectsAndVersionsByID(id)
	if err != nil {
		return "", fmt.Errorf("failed to get subjects for schema ID %d: %w", id, err)
	}
	if len(subjects) == 0 {
		return "", backoff.Permanent(fmt.Errorf("no subjects found for schema ID %d", id))
	}
	info, err := r.client.GetBySubjectAndID(subjects[0].Subject, id)
	if err != nil {
		return "", fmt.Errorf("failed to fetch schema from registry: %w", err)
	}
	return info.Schema, nil
}

// Decode decodes a framed binary payload. opts.Format, opts.DecodeOffset and
// opts.Multithreaded are overridden.
func (r *Resolver) Decode(ctx context.Context, framed []byte, opts session.Options) (host.Value, error) {
	id, err := encoding.ParseHeader(framed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confluent header: %w", err)
	}
	sess, err := r.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	opts.Format = encoding.Binary
	opts.DecodeOffset = encoding.HeaderSize
	opts.Multithreaded = true
	return sess.Decode(ctx, framed, opts)
}

// Encode encodes v with the latest schema of subject and frames the result
// with that schema's ID. Only the BINARY format can be framed.
func (r *Resolver) Encode(ctx context.Context, subject string, v host.Value, opts session.Options) ([]byte, error) {
	if opts.Format != "" && opts.Format != encoding.Binary {
		return nil, typecheck.Option("Unsupported avro encoding type '%s' for framed payload", opts.Format)
	}

	var meta schemaregistry.SchemaMetadata
	err := r.retry(ctx, subject, func() error {
		var err error
		meta, err = r.client.GetLatestSchemaMetadata(subject)
		if err != nil {
			return fmt.Errorf("failed to get latest schema for subject %s: %w", subject, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sess, err := r.Session(ctx, meta.ID)
	if err != nil {
		return nil, err
	}
	opts.Multithreaded = true
	payload, err := sess.Encode(ctx, v, opts)
	if err != nil {
		return nil, err
	}
	return encoding.Frame(meta.ID, payload), nil
}

func (r *Resolver) retry(ctx context.Context, key string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.interval
	notify := func(err error, next time.Duration) {
		r.throttler.Warn(key, "schema registry lookup failed, retrying",
			zap.Error(err),
			zap.Duration("next", next),
		)
	}
	return backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(b, r.retries), ctx), notify)
}
