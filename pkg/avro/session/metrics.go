package session

import (
	"context"
	"fmt"

	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type operation string

const (
	opEncode operation = "encode"
	opDecode operation = "decode"
)

// Counter names.
const (
	EncodeCounter = "avrocodec.encode.count"
	DecodeCounter = "avrocodec.decode.count"
	ErrorCounter  = "avrocodec.errors.count"
)

type instruments struct {
	encodes metric.Int64Counter
	decodes metric.Int64Counter
	errors  metric.Int64Counter
}

func newInstruments(m metric.Meter) (*instruments, error) {
	encodes, err := m.Int64Counter(EncodeCounter, metric.WithDescription("Encode calls"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encode counter: %w", err)
	}
	decodes, err := m.Int64Counter(DecodeCounter, metric.WithDescription("Decode calls"))
	if err != nil {
		return nil, fmt.Errorf("failed to create decode counter: %w", err)
	}
	errs, err := m.Int64Counter(ErrorCounter, metric.WithDescription("Failed encode and decode calls"))
	if err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}
	return &instruments{encodes: encodes, decodes: decodes, errors: errs}, nil
}

func (i *instruments) record(ctx context.Context, op operation, f encoding.Format, err error) {
	attrs := metric.WithAttributes(attribute.String("format", string(f)))
	if op == opEncode {
		i.encodes.Add(ctx, 1, attrs)
	} else {
		i.decodes.Add(ctx, 1, attrs)
	}
	if err == nil {
		return
	}
	kind := "wire"
	if k := typecheck.KindOf(err); k != 0 {
		kind = k.String()
	}
	i.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", string(op)),
		attribute.String("kind", kind),
	))
}
