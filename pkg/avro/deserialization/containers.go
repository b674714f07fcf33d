package deserialization

import (
	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	"github.com/Sokol111/avrocodec/pkg/avro/temporal"
	"github.com/Sokol111/avrocodec/pkg/host"

	hambavro "github.com/hamba/avro/v2"
)

// decodeItems builds the kdb+ container for array items or map values:
// a typed vector for scalar item types, a mixed list otherwise.
func (e *Engine) decodeItems(field string, schema hambavro.Schema, items []*generic.Datum) (host.Value, error) {
	avroType, logical := schema.Type(), generic.LogicalOf(schema)

	switch avroType {
	case hambavro.Boolean:
		return collect[bool, host.Bools](items), nil
	case hambavro.Double:
		return collect[float64, host.Floats](items), nil
	case hambavro.Float:
		return collect[float32, host.Reals](items), nil
	case hambavro.Enum:
		return collect[string, host.Symbols](items), nil
	case hambavro.Int:
		return int32Items(field, logical, collect[int32, []int32](items))
	case hambavro.Long:
		return int64Items(field, logical, collect[int64, []int64](items))
	case hambavro.String:
		if logical == hambavro.UUID {
			out := make(host.GUIDs, len(items))
			for i, item := range items {
				g, err := guid(field, item.Value().(string))
				if err != nil {
					return nil, err
				}
				out[i] = g
			}
			return out, nil
		}
	}

	out := make(host.List, len(items))
	for i, item := range items {
		v, err := e.decodeDatum(field, item, false)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func collect[T any, V ~[]T](items []*generic.Datum) V {
	out := make(V, len(items))
	for i, item := range items {
		out[i] = item.Value().(T)
	}
	return out
}

func int32Items(field string, logical hambavro.LogicalType, in []int32) (host.Value, error) {
	if !temporal.Applies(hambavro.Int, logical) {
		return host.Ints(in), nil
	}
	c, err := temporal.NewConverter(field, logical)
	if err != nil {
		return nil, err
	}
	for i, n := range in {
		in[i] = c.ToKdb32(n)
	}
	if logical == hambavro.Date {
		return host.Dates(in), nil
	}
	return host.Times(in), nil
}

func int64Items(field string, logical hambavro.LogicalType, in []int64) (host.Value, error) {
	if !temporal.Applies(hambavro.Long, logical) {
		return host.Longs(in), nil
	}
	c, err := temporal.NewConverter(field, logical)
	if err != nil {
		return nil, err
	}
	for i, n := range in {
		in[i] = c.ToKdb64(n)
	}
	if logical == hambavro.TimeMicros {
		return host.Timespans(in), nil
	}
	return host.Timestamps(in), nil
}
