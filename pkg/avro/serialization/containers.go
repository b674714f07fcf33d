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

// itemCheck builds the mismatch error for one array item or map value.
type itemCheck func(field, datatype string, expected, received int) *typecheck.Error

func (e *Engine) encodeArray(field string, d *generic.Datum, v host.Value) error {
	items, err := e.encodeItems(field, d.ItemSchema(), v, typecheck.Array)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item != nil {
			d.Append(item)
		}
	}
	return nil
}

func (e *Engine) encodeMap(field string, d *generic.Datum, dict host.Dict) error {
	schema := d.ItemSchema()
	expected, err := mapping.ArrayType(schema.Type(), generic.LogicalOf(schema))
	if err != nil {
		return typecheck.Unsupported(field, string(schema.Type()))
	}
	if typeOf(dict.Values) != expected {
		return typecheck.Map(field, string(schema.Type()), int(expected), int(typeOf(dict.Values)))
	}
	if host.Len(dict.Values) != len(dict.Keys) {
		return typecheck.Kdb(field, "map", "dict values length", int64(len(dict.Keys)), int64(host.Len(dict.Values)))
	}
	seen := make(map[string]struct{}, len(dict.Keys))
	for _, key := range dict.Keys {
		if _, ok := seen[key]; ok {
			return typecheck.DuplicateKey(field, key)
		}
		seen[key] = struct{}{}
	}

	values, err := e.encodeItems(field, schema, dict.Values, typecheck.Map)
	if err != nil {
		return err
	}
	for i, value := range values {
		if value != nil {
			d.Put(dict.Keys[i], value)
		}
	}
	return nil
}

// encodeItems converts the items of a vector or mixed list to datums of
// schema. Identity items of record or map containers are skipped and come
// back as nil so map keys stay aligned.
func (e *Engine) encodeItems(field string, schema hambavro.Schema, v host.Value, check itemCheck) ([]*generic.Datum, error) {
	avroType, logical := schema.Type(), generic.LogicalOf(schema)
	datatype := string(avroType)

	wrap := func(values ...any) []*generic.Datum {
		out := make([]*generic.Datum, len(values))
		for i, x := range values {
			out[i] = generic.New(schema)
			out[i].Set(x)
		}
		return out
	}

	switch avroType {
	case hambavro.Boolean:
		bs, err := as[host.Bools](field, datatype, host.KB, v)
		if err != nil {
			return nil, err
		}
		return wrap(anys(bs)...), nil
	case hambavro.Double:
		fs, err := as[host.Floats](field, datatype, host.KF, v)
		if err != nil {
			return nil, err
		}
		return wrap(anys(fs)...), nil
	case hambavro.Float:
		fs, err := as[host.Reals](field, datatype, host.KE, v)
		if err != nil {
			return nil, err
		}
		return wrap(anys(fs)...), nil
	case hambavro.Int:
		is, err := int32sOf(field, datatype, logical, v)
		if err != nil {
			return nil, err
		}
		return wrap(anys(is)...), nil
	case hambavro.Long:
		js, err := int64sOf(field, datatype, logical, v)
		if err != nil {
			return nil, err
		}
		return wrap(anys(js)...), nil
	case hambavro.Enum:
		ss, err := as[host.Symbols](field, datatype, host.KS, v)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(ss))
		for i, s := range ss {
			symbol, err := enumSymbol(field, schema, s)
			if err != nil {
				return nil, err
			}
			values[i] = symbol
		}
		return wrap(values...), nil
	case hambavro.String:
		if logical == hambavro.UUID {
			gs, err := as[host.GUIDs](field, datatype, host.UU, v)
			if err != nil {
				return nil, err
			}
			values := make([]any, len(gs))
			for i, g := range gs {
				values[i] = uuid.UUID(g).String()
			}
			return wrap(values...), nil
		}
	}

	list, err := as[host.List](field, datatype, host.Mixed, v)
	if err != nil {
		return nil, err
	}
	out := make([]*generic.Datum, len(list))
	for i, x := range list {
		item, err := e.encodeItem(field, schema, avroType, logical, orNull(x), check)
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

// encodeItem converts one item of a mixed list container.
func (e *Engine) encodeItem(field string, schema hambavro.Schema, avroType hambavro.Type, logical hambavro.LogicalType, x host.Value, check itemCheck) (*generic.Datum, error) {
	datatype := string(avroType)
	item := generic.New(schema)

	switch avroType {
	case hambavro.Bytes:
		if logical == hambavro.Decimal {
			if x.Type() != host.Mixed {
				return nil, check(field, datatype, int(host.Mixed), int(x.Type()))
			}
			raw, err := decimalBytes(field, datatype, schema, x)
			if err != nil {
				return nil, err
			}
			item.Set(raw)
			return item, nil
		}
		b, ok := x.(host.Bytes)
		if !ok {
			return nil, check(field, datatype, int(host.KG), int(x.Type()))
		}
		item.Set(bytes.Clone([]byte(b)))
	case hambavro.Fixed:
		want := host.KG
		switch logical {
		case hambavro.Decimal:
			want = host.Mixed
		case hambavro.Duration:
			want = host.KI
		}
		if x.Type() != want {
			return nil, check(field, datatype, int(want), int(x.Type()))
		}
		raw, err := fixedBytes(field, datatype, schema, logical, x)
		if err != nil {
			return nil, err
		}
		item.Set(raw)
	case hambavro.Null:
		if x.Type() != host.Identity {
			return nil, check(field, datatype, int(host.Identity), int(x.Type()))
		}
	case hambavro.String:
		s, ok := x.(host.Chars)
		if !ok {
			return nil, check(field, datatype, int(host.KC), int(x.Type()))
		}
		item.Set(string(s))
	case hambavro.Array:
		sub := item.ItemSchema()
		want, err := mapping.ArrayType(sub.Type(), generic.LogicalOf(sub))
		if err != nil {
			return nil, typecheck.Unsupported(field, string(sub.Type()))
		}
		if x.Type() != want {
			return nil, check(field, datatype, int(want), int(x.Type()))
		}
		if err := e.encodeArray(field, item, x); err != nil {
			return nil, err
		}
	case hambavro.Record, hambavro.Error:
		if x.Type() == host.Identity {
			return nil, nil
		}
		dict, ok := x.(host.Dict)
		if !ok {
			return nil, check(field, datatype, int(host.XD), int(x.Type()))
		}
		if err := e.encodeRecord(field, item, dict); err != nil {
			return nil, err
		}
	case hambavro.Map:
		if x.Type() == host.Identity {
			return nil, nil
		}
		dict, ok := x.(host.Dict)
		if !ok {
			return nil, check(field, datatype, int(host.XD), int(x.Type()))
		}
		if err := e.encodeMap(field, item, dict); err != nil {
			return nil, err
		}
	case hambavro.Union:
		if !e.inferUnions && x.Type() != host.Mixed {
			return nil, check(field, datatype, int(host.Mixed), int(x.Type()))
		}
		if err := e.encodeUnion(field, item, x); err != nil {
			return nil, err
		}
	default:
		return nil, typecheck.Unsupported(field, datatype)
	}
	return item, nil
}

func anys[T any](in []T) []any {
	out := make([]any, len(in))
	for i, x := range in {
		out[i] = x
	}
	return out
}
