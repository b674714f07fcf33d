package serialization

import (
	"bytes"
	"encoding/binary"

	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	"github.com/Sokol111/avrocodec/pkg/avro/temporal"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"

	hambavro "github.com/hamba/avro/v2"
)

const durationSize = 12

// decimalBytes unpacks a (precision; scale; bytes) tuple. Precision and scale
// must equal the schema's exactly.
func decimalBytes(field, datatype string, schema hambavro.Schema, v host.Value) ([]byte, error) {
	tuple, ok := v.(host.List)
	if !ok {
		return nil, typecheck.Kdb(field, datatype, "decimal type", int64(host.Mixed), int64(typeOf(v)))
	}
	if len(tuple) != 3 {
		return nil, typecheck.Kdb(field, datatype, "decimal list length", 3, int64(len(tuple)))
	}
	wantPrecision, wantScale, _ := generic.DecimalOf(schema)

	precision, ok := tuple[0].(host.Int)
	if !ok {
		return nil, typecheck.Kdb(field, datatype, "decimal precision type", int64(-host.KI), int64(typeOf(tuple[0])))
	}
	if int(precision) != wantPrecision {
		return nil, typecheck.Kdb(field, datatype, "decimal precision", int64(wantPrecision), int64(precision))
	}
	scale, ok := tuple[1].(host.Int)
	if !ok {
		return nil, typecheck.Kdb(field, datatype, "decimal scale type", int64(-host.KI), int64(typeOf(tuple[1])))
	}
	if int(scale) != wantScale {
		return nil, typecheck.Kdb(field, datatype, "decimal scale", int64(wantScale), int64(scale))
	}
	raw, ok := tuple[2].(host.Bytes)
	if !ok {
		return nil, typecheck.Kdb(field, datatype, "decimal data type", int64(host.KG), int64(typeOf(tuple[2])))
	}
	return bytes.Clone([]byte(raw)), nil
}

// durationBytes packs (months; days; millis) as three little-endian uint32.
func durationBytes(field, datatype string, v host.Value) ([]byte, error) {
	ints, ok := v.(host.Ints)
	if !ok {
		return nil, typecheck.Kdb(field, datatype, "duration type", int64(host.KI), int64(typeOf(v)))
	}
	if len(ints) != 3 {
		return nil, typecheck.Kdb(field, datatype, "duration list length", 3, int64(len(ints)))
	}
	out := make([]byte, durationSize)
	for i, n := range ints {
		binary.LittleEndian.PutUint32(out[i*4:], uint32(n))
	}
	return out, nil
}

func fixedBytes(field, datatype string, schema hambavro.Schema, logical hambavro.LogicalType, v host.Value) ([]byte, error) {
	size := schema.(*hambavro.FixedSchema).Size()

	var raw []byte
	switch logical {
	case hambavro.Decimal:
		b, err := decimalBytes(field, datatype, schema, v)
		if err != nil {
			return nil, err
		}
		raw = b
	case hambavro.Duration:
		b, err := durationBytes(field, datatype, v)
		if err != nil {
			return nil, err
		}
		raw = b
	default:
		b, ok := v.(host.Bytes)
		if !ok {
			return nil, typecheck.Datum(field, datatype, int(host.KG), int(typeOf(v)))
		}
		raw = bytes.Clone([]byte(b))
	}

	if len(raw) != size {
		return nil, typecheck.Fixed(field, size, len(raw))
	}
	return raw, nil
}

// int32Of reads an int, date or time atom, converting temporals to their wire form.
func int32Of(field, datatype string, logical hambavro.LogicalType, v host.Value) (int32, error) {
	var n int32
	switch x := v.(type) {
	case host.Int:
		n = int32(x)
	case host.Date:
		n = int32(x)
	case host.Time:
		n = int32(x)
	default:
		return 0, typecheck.Datum(field, datatype, int(-host.KI), int(typeOf(v)))
	}
	if !temporal.Applies(hambavro.Int, logical) {
		return n, nil
	}
	c, err := temporal.NewConverter(field, logical)
	if err != nil {
		return 0, err
	}
	return c.ToAvro32(n), nil
}

// int64Of reads a long, timespan or timestamp atom, converting temporals to their wire form.
func int64Of(field, datatype string, logical hambavro.LogicalType, v host.Value) (int64, error) {
	var n int64
	switch x := v.(type) {
	case host.Long:
		n = int64(x)
	case host.Timespan:
		n = int64(x)
	case host.Timestamp:
		n = int64(x)
	default:
		return 0, typecheck.Datum(field, datatype, int(-host.KJ), int(typeOf(v)))
	}
	if !temporal.Applies(hambavro.Long, logical) {
		return n, nil
	}
	c, err := temporal.NewConverter(field, logical)
	if err != nil {
		return 0, err
	}
	return c.ToAvro64(n), nil
}

// int32sOf reads an int, date or time vector, converting temporals to their wire form.
func int32sOf(field, datatype string, logical hambavro.LogicalType, v host.Value) ([]int32, error) {
	var in []int32
	switch x := v.(type) {
	case host.Ints:
		in = x
	case host.Dates:
		in = x
	case host.Times:
		in = x
	default:
		return nil, typecheck.Datum(field, datatype, int(host.KI), int(typeOf(v)))
	}
	if !temporal.Applies(hambavro.Int, logical) {
		return in, nil
	}
	c, err := temporal.NewConverter(field, logical)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(in))
	for i, n := range in {
		out[i] = c.ToAvro32(n)
	}
	return out, nil
}

// int64sOf reads a long, timespan or timestamp vector, converting temporals to their wire form.
func int64sOf(field, datatype string, logical hambavro.LogicalType, v host.Value) ([]int64, error) {
	var in []int64
	switch x := v.(type) {
	case host.Longs:
		in = x
	case host.Timespans:
		in = x
	case host.Timestamps:
		in = x
	default:
		return nil, typecheck.Datum(field, datatype, int(host.KJ), int(typeOf(v)))
	}
	if !temporal.Applies(hambavro.Long, logical) {
		return in, nil
	}
	c, err := temporal.NewConverter(field, logical)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(in))
	for i, n := range in {
		out[i] = c.ToAvro64(n)
	}
	return out, nil
}
