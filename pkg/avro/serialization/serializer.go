// Package serialization converts kdb+ values into avro datums, checking every
// value against the type the schema dictates at its position.
package serialization

import (
	"bytes"

	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	"github.com/Sokol111/avrocodec/pkg/avro/mapping"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/google/uuid"

	hambavro "github.com/hamba/avro/v2"
)

// Engine builds avro datums from kdb+ values. It holds no per-call state and
// is safe for concurrent use.
type Engine struct {
	inferUnions bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithInferredUnions makes unions take a bare payload instead of a
// (branch; payload) tuple. The branch is inferred from the payload's kdb+ type.
func WithInferredUnions() Option {
	return func(e *Engine) { e.inferUnions = true }
}

// NewEngine creates an encode engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode converts v to a datum of schema. The first mismatch found
// (depth first, in field order) aborts the conversion.
func (e *Engine) Encode(schema hambavro.Schema, v host.Value) (*generic.Datum, error) {
	d := generic.New(schema)
	if err := e.encodeDatum("", d, v, false); err != nil {
		return nil, err
	}
	return d, nil
}

func (e *Engine) encodeDatum(field string, d *generic.Datum, v host.Value, decomposeUnion bool) error {
	v = orNull(v)

	node := d
	avroType, logical := d.RealType(), d.RealLogicalType()
	if decomposeUnion {
		avroType, logical = d.Type(), d.LogicalType()
		if d.IsUnion() {
			node = d.Payload()
		}
	}
	datatype := string(avroType)

	if avroType == hambavro.Union && e.inferUnions {
		return e.encodeUnion(field, d, v)
	}

	expected, err := mapping.KdbType(d, decomposeUnion)
	if err != nil {
		return typecheck.Unsupported(field, datatype)
	}
	if expected != v.Type() {
		return typecheck.Datum(field, datatype, int(expected), int(v.Type()))
	}

	switch avroType {
	case hambavro.Boolean:
		b, err := as[host.Bool](field, datatype, expected, v)
		if err != nil {
			return err
		}
		node.Set(bool(b))
	case hambavro.Bytes:
		if logical == hambavro.Decimal {
			raw, err := decimalBytes(field, datatype, node.Schema(), v)
			if err != nil {
				return err
			}
			node.Set(raw)
			return nil
		}
		b, err := as[host.Bytes](field, datatype, expected, v)
		if err != nil {
			return err
		}
		node.Set(bytes.Clone([]byte(b)))
	case hambavro.Double:
		f, err := as[host.Float](field, datatype, expected, v)
		if err != nil {
			return err
		}
		node.Set(float64(f))
	case hambavro.Enum:
		s, err := as[host.Symbol](field, datatype, expected, v)
		if err != nil {
			return err
		}
		symbol, err := enumSymbol(field, node.Schema(), string(s))
		if err != nil {
			return err
		}
		node.Set(symbol)
	case hambavro.Fixed:
		raw, err := fixedBytes(field, datatype, node.Schema(), logical, v)
		if err != nil {
			return err
		}
		node.Set(raw)
	case hambavro.Float:
		f, err := as[host.Real](field, datatype, expected, v)
		if err != nil {
			return err
		}
		node.Set(float32(f))
	case hambavro.Int:
		i, err := int32Of(field, datatype, logical, v)
		if err != nil {
			return err
		}
		node.Set(i)
	case hambavro.Long:
		j, err := int64Of(field, datatype, logical, v)
		if err != nil {
			return err
		}
		node.Set(j)
	case hambavro.Null:
	case hambavro.String:
		if logical == hambavro.UUID {
			g, err := as[host.GUID](field, datatype, expected, v)
			if err != nil {
				return err
			}
			node.Set(uuid.UUID(g).String())
			return nil
		}
		s, err := as[host.Chars](field, datatype, expected, v)
		if err != nil {
			return err
		}
		node.Set(string(s))
	case hambavro.Record, hambavro.Error:
		dict, err := as[host.Dict](field, datatype, expected, v)
		if err != nil {
			return err
		}
		return e.encodeRecord(field, node, dict)
	case hambavro.Array:
		return e.encodeArray(field, node, v)
	case hambavro.Map:
		dict, err := as[host.Dict](field, datatype, expected, v)
		if err != nil {
			return err
		}
		return e.encodeMap(field, node, dict)
	case hambavro.Union:
		return e.encodeUnion(field, d, v)
	default:
		return typecheck.Unsupported(field, datatype)
	}
	return nil
}

func (e *Engine) encodeRecord(field string, d *generic.Datum, dict host.Dict) error {
	const datatype = "record"

	values, ok := dict.Values.(host.List)
	if !ok {
		return typecheck.Kdb(field, datatype, "dict values", int64(host.Mixed), int64(typeOf(dict.Values)))
	}
	if len(values) != len(dict.Keys) {
		return typecheck.Kdb(field, datatype, "dict values length", int64(len(dict.Keys)), int64(len(values)))
	}

	for i, key := range dict.Keys {
		value := orNull(values[i])
		if key == "" && value.Type() == host.Identity {
			continue
		}
		next, ok := d.Field(key)
		if !ok {
			return typecheck.Field(generic.BranchName(d.Schema()), key)
		}
		if err := e.encodeDatum(key, next, value, false); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) encodeUnion(field string, d *generic.Datum, v host.Value) error {
	const datatype = "union"

	if e.inferUnions {
		branch, err := InferUnionBranch(field, d.Schema().(*hambavro.UnionSchema), v)
		if err != nil {
			return err
		}
		if err := d.SelectBranch(branch); err != nil {
			return typecheck.Branch(field, d.Branches(), branch)
		}
		return e.encodeDatum(field, d, v, true)
	}

	tuple, ok := v.(host.List)
	if !ok {
		return typecheck.Kdb(field, datatype, "mixed list type", int64(host.Mixed), int64(typeOf(v)))
	}
	if len(tuple) != 2 {
		return typecheck.Kdb(field, datatype, "mixed list length", 2, int64(len(tuple)))
	}

	// The selector is a short so that (0; 123) is never promoted to a uniform
	// long vector and loses its union shape.
	selector, ok := tuple[0].(host.Short)
	if !ok {
		return typecheck.Kdb(field, datatype, "mixed list[0] branch selector", int64(-host.KH), int64(typeOf(tuple[0])))
	}
	if err := d.SelectBranch(int(selector)); err != nil {
		return typecheck.Branch(field, d.Branches(), int(selector))
	}
	return e.encodeDatum(field, d, tuple[1], true)
}

func enumSymbol(field string, schema hambavro.Schema, symbol string) (string, error) {
	enum := schema.(*hambavro.EnumSchema)
	for _, s := range enum.Symbols() {
		if s == symbol {
			return symbol, nil
		}
	}
	return "", typecheck.Symbol(field, enum.FullName(), symbol)
}

func as[T host.Value](field, datatype string, expected host.Type, v host.Value) (T, error) {
	x, ok := v.(T)
	if !ok {
		var zero T
		return zero, typecheck.Datum(field, datatype, int(expected), int(typeOf(v)))
	}
	return x, nil
}

func orNull(v host.Value) host.Value {
	if v == nil {
		return host.Null{}
	}
	return v
}

func typeOf(v host.Value) host.Type {
	return orNull(v).Type()
}
