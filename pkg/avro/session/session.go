// Package session binds a compiled schema to its wire codecs and runs encode
// and decode calls against it.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/avrocodec/pkg/avro/deserialization"
	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/schema"
	"github.com/Sokol111/avrocodec/pkg/avro/serialization"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/core/logger"
	"github.com/Sokol111/avrocodec/pkg/host"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	hambavro "github.com/hamba/avro/v2"
)

const meterName = "github.com/Sokol111/avrocodec/pkg/avro/session"

// Session holds one compiled schema and the five codecs bound to it. The
// shared codecs are used by one call at a time; concurrent callers pass
// Options.Multithreaded so that each call builds its own.
type Session struct {
	schema      hambavro.Schema
	fingerprint string
	meter       metric.Meter
	metrics     *instruments

	binaryEncoder encoding.Encoder
	jsonEncoder   encoding.Encoder
	prettyEncoder encoding.Encoder
	binaryDecoder encoding.Decoder
	jsonDecoder   encoding.Decoder

	// jsonErr is set when the schema has no JSON codec; only JSON calls fail.
	jsonErr error
}

// Option configures a Session.
type Option func(*Session)

// WithMeter records call counters on m instead of the global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(s *Session) { s.meter = m }
}

// New compiles the codecs of s.
func New(s hambavro.Schema, opts ...Option) (*Session, error) {
	start := time.Now()
	sess := &Session{
		schema:      s,
		fingerprint: schema.Fingerprint(s),
		meter:       otel.Meter(meterName),
	}
	for _, opt := range opts {
		opt(sess)
	}

	metrics, err := newInstruments(sess.meter)
	if err != nil {
		return nil, err
	}
	sess.metrics = metrics

	sess.binaryEncoder = encoding.NewBinaryEncoder(s)
	sess.binaryDecoder = encoding.NewBinaryDecoder(s)
	if err := sess.buildJSONCodecs(); err != nil {
		sess.jsonErr = err
		zap.L().Debug("avro session has no json codec",
			zap.String("fingerprint", sess.fingerprint),
			zap.Error(err),
		)
	}

	zap.L().Debug("avro session created",
		zap.String("fingerprint", sess.fingerprint),
		zap.Duration("took", time.Since(start)),
	)
	return sess, nil
}

func (s *Session) buildJSONCodecs() error {
	var err error
	if s.jsonEncoder, err = encoding.NewJSONEncoder(s.schema, false); err != nil {
		return fmt.Errorf("failed to create json encoder: %w", err)
	}
	if s.prettyEncoder, err = encoding.NewJSONEncoder(s.schema, true); err != nil {
		return fmt.Errorf("failed to create pretty json encoder: %w", err)
	}
	if s.jsonDecoder, err = encoding.NewJSONDecoder(s.schema); err != nil {
		return fmt.Errorf("failed to create json decoder: %w", err)
	}
	return nil
}

// Schema returns the compiled schema.
func (s *Session) Schema() hambavro.Schema { return s.schema }

// Fingerprint returns the hex SHA-256 fingerprint of the schema.
func (s *Session) Fingerprint() string { return s.fingerprint }

// Encode converts v to the wire format chosen by opts.
func (s *Session) Encode(ctx context.Context, v host.Value, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	out, err := s.encode(v, opts)
	s.metrics.record(ctx, opEncode, opts.Format, err)
	if err != nil {
		logger.Get(ctx).Debug("avro encode failed",
			zap.String("fingerprint", s.fingerprint),
			zap.String("format", string(opts.Format)),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}

// EncodeValue is Encode returning a char vector for the JSON formats and a
// byte vector for BINARY.
func (s *Session) EncodeValue(ctx context.Context, v host.Value, opts Options) (host.Value, error) {
	opts = opts.withDefaults()
	out, err := s.Encode(ctx, v, opts)
	if err != nil {
		return nil, err
	}
	if opts.Format.IsText() {
		return host.Chars(out), nil
	}
	return host.Bytes(out), nil
}

func (s *Session) encode(v host.Value, opts Options) ([]byte, error) {
	if opts.DecodeOffset != 0 {
		return nil, typecheck.Option("Unsupported int option '%s'", DecodeOffset)
	}
	enc, err := s.encoder(opts)
	if err != nil {
		return nil, err
	}

	var engineOpts []serialization.Option
	if opts.NoUnionBranchSelector {
		engineOpts = append(engineOpts, serialization.WithInferredUnions())
	}
	d, err := serialization.NewEngine(engineOpts...).Encode(s.schema, v)
	if err != nil {
		return nil, err
	}
	return enc.Encode(d)
}

// Decode converts data, after skipping opts.DecodeOffset bytes, to a host value.
func (s *Session) Decode(ctx context.Context, data []byte, opts Options) (host.Value, error) {
	opts = opts.withDefaults()
	v, err := s.decode(data, opts)
	s.metrics.record(ctx, opDecode, opts.Format, err)
	if err != nil {
		logger.Get(ctx).Debug("avro decode failed",
			zap.String("fingerprint", s.fingerprint),
			zap.String("format", string(opts.Format)),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		return nil, err
	}
	return v, nil
}

// DecodeValue is Decode over a byte or char vector.
func (s *Session) DecodeValue(ctx context.Context, data host.Value, opts Options) (host.Value, error) {
	switch x := data.(type) {
	case host.Bytes:
		return s.Decode(ctx, x, opts)
	case host.Chars:
		return s.Decode(ctx, []byte(x), opts)
	}
	received := host.Identity
	if data != nil {
		received = data.Type()
	}
	return nil, typecheck.Datum("", "data", int(host.KG), int(received))
}

func (s *Session) decode(data []byte, opts Options) (host.Value, error) {
	if opts.DecodeOffset < 0 || opts.DecodeOffset > int64(len(data)) {
		return nil, typecheck.Option("%s %d exceeds data length %d", DecodeOffset, opts.DecodeOffset, len(data))
	}
	dec, err := s.decoder(opts)
	if err != nil {
		return nil, err
	}

	d, err := dec.Decode(data[opts.DecodeOffset:])
	if err != nil {
		return nil, err
	}

	var engineOpts []deserialization.Option
	if opts.NoUnionBranchSelector {
		engineOpts = append(engineOpts, deserialization.WithBareUnions())
	}
	return deserialization.NewEngine(engineOpts...).Decode(d)
}

func (s *Session) encoder(opts Options) (encoding.Encoder, error) {
	if opts.Format.IsText() && s.jsonErr != nil {
		return nil, s.jsonErr
	}
	if opts.Multithreaded {
		return encoding.NewEncoder(s.schema, opts.Format)
	}
	switch opts.Format {
	case encoding.Binary:
		return s.binaryEncoder, nil
	case encoding.JSON:
		return s.jsonEncoder, nil
	case encoding.PrettyJSON:
		return s.prettyEncoder, nil
	}
	return nil, typecheck.Option("Unsupported avro encoding type '%s'", opts.Format)
}

func (s *Session) decoder(opts Options) (encoding.Decoder, error) {
	if opts.Format == encoding.PrettyJSON {
		return nil, typecheck.Option("Unsupported avro decoding type '%s' (should be BINARY or JSON)", opts.Format)
	}
	if opts.Format.IsText() && s.jsonErr != nil {
		return nil, s.jsonErr
	}
	if opts.Multithreaded {
		return encoding.NewDecoder(s.schema, opts.Format)
	}
	switch opts.Format {
	case encoding.Binary:
		return s.binaryDecoder, nil
	case encoding.JSON:
		return s.jsonDecoder, nil
	}
	return nil, typecheck.Option("Unsupported avro encoding type '%s'", opts.Format)
}
