// Package temporal converts avro date, time and timestamp encodings to kdb+
// temporals and back.
package temporal

import (
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"

	hambavro "github.com/hamba/avro/v2"
)

const (
	// DateEpochDays is the number of days from 1970.01.01 to 2000.01.01.
	DateEpochDays = 10957
	// TimestampEpochNanos is the number of nanoseconds from 1970.01.01 to 2000.01.01.
	TimestampEpochNanos = 946684800000000000

	nsPerMicro = 1000
	nsPerMilli = 1000 * nsPerMicro
)

// Converter applies epoch offsetting and unit scaling for one logical type.
type Converter struct {
	offset int64
	scalar int64
}

// NewConverter returns the converter for logical. Only date, time-millis,
// time-micros, timestamp-millis and timestamp-micros are temporal.
func NewConverter(field string, logical hambavro.LogicalType) (Converter, error) {
	switch logical {
	case hambavro.Date:
		return Converter{offset: DateEpochDays, scalar: 1}, nil
	case hambavro.TimeMillis:
		return Converter{offset: 0, scalar: 1}, nil
	case hambavro.TimeMicros:
		return Converter{offset: 0, scalar: nsPerMicro}, nil
	case hambavro.TimestampMillis:
		return Converter{offset: TimestampEpochNanos, scalar: nsPerMilli}, nil
	case hambavro.TimestampMicros:
		return Converter{offset: TimestampEpochNanos, scalar: nsPerMicro}, nil
	}
	return Converter{}, typecheck.Unsupported(field, string(logical))
}

// Applies reports whether logical is a temporal annotation of the physical type t:
// date and time-millis on int, time-micros and the timestamps on long.
func Applies(t hambavro.Type, logical hambavro.LogicalType) bool {
	switch t {
	case hambavro.Int:
		return logical == hambavro.Date || logical == hambavro.TimeMillis
	case hambavro.Long:
		return logical == hambavro.TimeMicros || logical == hambavro.TimestampMillis || logical == hambavro.TimestampMicros
	}
	return false
}

// ToKdb32 converts a 32 bit avro temporal to kdb+.
func (c Converter) ToKdb32(v int32) int32 {
	return v*int32(c.scalar) - int32(c.offset)
}

// ToAvro32 converts a 32 bit kdb+ temporal to avro. The division truncates.
func (c Converter) ToAvro32(v int32) int32 {
	return (v + int32(c.offset)) / int32(c.scalar)
}

// ToKdb64 converts a 64 bit avro temporal to kdb+.
func (c Converter) ToKdb64(v int64) int64 {
	return v*c.scalar - c.offset
}

// ToAvro64 converts a 64 bit kdb+ temporal to avro. The division truncates.
func (c Converter) ToAvro64(v int64) int64 {
	return (v + c.offset) / c.scalar
}
