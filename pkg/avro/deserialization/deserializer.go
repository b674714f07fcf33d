// Package deserialization converts avro datums into kdb+ values.
package deserialization

import (
	"bytes"
	"encoding/binary"
	"slices"
	"strings"

	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	"github.com/Sokol111/avrocodec/pkg/avro/temporal"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/google/uuid"

	hambavro "github.com/hamba/avro/v2"
)

const durationSize = 12

// Engine builds kdb+ values from avro datums. It holds no per-call state and
// is safe for concurrent use.
type Engine struct {
	bareUnions bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithBareUnions decodes unions to their payload alone instead of a
// (branch; payload) tuple.
func WithBareUnions() Option {
	return func(e *Engine) { e.bareUnions = true }
}

// NewEngine creates a decode engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decode converts d to a kdb+ value.
func (e *Engine) Decode(d *generic.Datum) (host.Value, error) {
	return e.decodeDatum("", d, false)
}

func (e *Engine) decodeDatum(field string, d *generic.Datum, decomposeUnion bool) (host.Value, error) {
	node := d
	avroType, logical := d.RealType(), d.RealLogicalType()
	if decomposeUnion {
		avroType, logical = d.Type(), d.LogicalType()
		if d.IsUnion() {
			node = d.Payload()
		}
	}

	switch avroType {
	case hambavro.Boolean:
		return host.Bool(node.Value().(bool)), nil
	case hambavro.Bytes:
		if logical == hambavro.Decimal {
			return decimalTuple(node), nil
		}
		return host.Bytes(bytes.Clone(node.Value().([]byte))), nil
	case hambavro.Double:
		return host.Float(node.Value().(float64)), nil
	case hambavro.Enum:
		return host.Symbol(node.Value().(string)), nil
	case hambavro.Fixed:
		switch logical {
		case hambavro.Decimal:
			return decimalTuple(node), nil
		case hambavro.Duration:
			return durationInts(field, node.Value().([]byte))
		}
		return host.Bytes(bytes.Clone(node.Value().([]byte))), nil
	case hambavro.Float:
		return host.Real(node.Value().(float32)), nil
	case hambavro.Int:
		return int32Value(field, logical, node.Value().(int32))
	case hambavro.Long:
		return int64Value(field, logical, node.Value().(int64))
	case hambavro.Null:
		return host.Null{}, nil
	case hambavro.String:
		s := node.Value().(string)
		if logical == hambavro.UUID {
			return guid(field, s)
		}
		return host.Chars(s), nil
	case hambavro.Record, hambavro.Error:
		return e.decodeRecord(node)
	case hambavro.Array:
		return e.decodeItems(field, node.ItemSchema(), node.Items())
	case hambavro.Map:
		return e.decodeMap(field, node)
	case hambavro.Union:
		return e.decodeUnion(field, d)
	}
	return nil, typecheck.Unsupported(field, string(avroType))
}

// decodeRecord keeps the schema's field order.
func (e *Engine) decodeRecord(d *generic.Datum) (host.Value, error) {
	names := d.FieldNames()
	values := make(host.List, len(names))
	for i, f := range d.Fields() {
		v, err := e.decodeDatum(names[i], f, false)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return host.Dict{Keys: host.Symbols(names), Values: values}, nil
}

// decodeMap emits keys in ascending order so the result does not depend on
// the wire format.
func (e *Engine) decodeMap(field string, d *generic.Datum) (host.Value, error) {
	entries := slices.Clone(d.Entries())
	slices.SortStableFunc(entries, func(a, b generic.MapEntry) int {
		return strings.Compare(a.Key, b.Key)
	})

	keys := make(host.Symbols, len(entries))
	items := make([]*generic.Datum, len(entries))
	for i, entry := range entries {
		keys[i] = entry.Key
		items[i] = entry.Value
	}
	values, err := e.decodeItems(field, d.ItemSchema(), items)
	if err != nil {
		return nil, err
	}
	return host.Dict{Keys: keys, Values: values}, nil
}

func (e *Engine) decodeUnion(field string, d *generic.Datum) (host.Value, error) {
	payload, err := e.decodeDatum(field, d, true)
	if err != nil {
		return nil, err
	}
	if e.bareUnions {
		return payload, nil
	}
	return host.NewUnion(int16(d.Branch()), payload), nil
}

func decimalTuple(d *generic.Datum) host.List {
	precision, scale, _ := generic.DecimalOf(d.Schema())
	return host.List{
		host.Int(precision),
		host.Int(scale),
		host.Bytes(bytes.Clone(d.Value().([]byte))),
	}
}

// durationInts unpacks three little-endian uint32: months, days, millis.
func durationInts(field string, raw []byte) (host.Value, error) {
	if len(raw) != durationSize {
		return nil, typecheck.Fixed(field, durationSize, len(raw))
	}
	out := make(host.Ints, 3)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func int32Value(field string, logical hambavro.LogicalType, n int32) (host.Value, error) {
	switch logical {
	case hambavro.Date, hambavro.TimeMillis:
		c, err := temporal.NewConverter(field, logical)
		if err != nil {
			return nil, err
		}
		if logical == hambavro.Date {
			return host.Date(c.ToKdb32(n)), nil
		}
		return host.Time(c.ToKdb32(n)), nil
	}
	return host.Int(n), nil
}

func int64Value(field string, logical hambavro.LogicalType, n int64) (host.Value, error) {
	switch logical {
	case hambavro.TimeMicros, hambavro.TimestampMillis, hambavro.TimestampMicros:
		c, err := temporal.NewConverter(field, logical)
		if err != nil {
			return nil, err
		}
		if logical == hambavro.TimeMicros {
			return host.Timespan(c.ToKdb64(n)), nil
		}
		return host.Timestamp(c.ToKdb64(n)), nil
	}
	return host.Long(n), nil
}

func guid(field, s string) (host.GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return host.GUID{}, typecheck.Datum(field, string(hambavro.String), int(-host.UU), int(host.KC))
	}
	return host.GUID(u), nil
}
