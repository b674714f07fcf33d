// Package mapping decides which kdb+ type represents each avro schema node.
package mapping

import (
	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"

	hambavro "github.com/hamba/avro/v2"
)

// ArrayType returns the kdb+ type of an array whose items have the given avro type.
// Mixed (0) means the array is a mixed list of sub-objects.
func ArrayType(t hambavro.Type, logical hambavro.LogicalType) (host.Type, error) {
	switch t {
	case hambavro.Boolean:
		return host.KB, nil
	case hambavro.Bytes:
		// mixed list of byte vectors, or of (precision; scale; bytes) for decimals
		return host.Mixed, nil
	case hambavro.Double:
		return host.KF, nil
	case hambavro.Enum:
		return host.KS, nil
	case hambavro.Fixed:
		// mixed list of byte vectors, decimal tuples or duration int vectors
		return host.Mixed, nil
	case hambavro.Float:
		return host.KE, nil
	case hambavro.Int:
		switch logical {
		case hambavro.Date:
			return host.KD, nil
		case hambavro.TimeMillis:
			return host.KT, nil
		}
		return host.KI, nil
	case hambavro.Long:
		switch logical {
		case hambavro.TimeMicros:
			return host.KN, nil
		case hambavro.TimestampMillis, hambavro.TimestampMicros:
			return host.KP, nil
		}
		return host.KJ, nil
	case hambavro.String:
		if logical == hambavro.UUID {
			return host.UU, nil
		}
		return host.Mixed, nil
	case hambavro.Map, hambavro.Null, hambavro.Record, hambavro.Error, hambavro.Union, hambavro.Array:
		return host.Mixed, nil
	}
	return 0, typecheck.Unsupported("", string(t))
}

// SimpleType returns the kdb+ type of a single avro value.
func SimpleType(t hambavro.Type, logical hambavro.LogicalType) (host.Type, error) {
	switch t {
	case hambavro.Boolean:
		return -host.KB, nil
	case hambavro.Bytes:
		if logical == hambavro.Decimal {
			return host.Mixed, nil
		}
		return host.KG, nil
	case hambavro.Double:
		return -host.KF, nil
	case hambavro.Enum:
		return -host.KS, nil
	case hambavro.Fixed:
		switch logical {
		case hambavro.Decimal:
			return host.Mixed, nil
		case hambavro.Duration:
			return host.KI, nil
		}
		return host.KG, nil
	case hambavro.Float:
		return -host.KE, nil
	case hambavro.Int:
		switch logical {
		case hambavro.Date:
			return -host.KD, nil
		case hambavro.TimeMillis:
			return -host.KT, nil
		}
		return -host.KI, nil
	case hambavro.Long:
		switch logical {
		case hambavro.TimeMicros:
			return -host.KN, nil
		case hambavro.TimestampMillis, hambavro.TimestampMicros:
			return -host.KP, nil
		}
		return -host.KJ, nil
	case hambavro.Map, hambavro.Record, hambavro.Error:
		return host.XD, nil
	case hambavro.Null:
		return host.Identity, nil
	case hambavro.String:
		if logical == hambavro.UUID {
			return -host.UU, nil
		}
		return host.KC, nil
	case hambavro.Union:
		// (branch; payload)
		return host.Mixed, nil
	}
	return 0, typecheck.Unsupported("", string(t))
}

// KdbType returns the kdb+ type expected for d. Unless decomposeUnion is set a
// union datum maps to its (branch; payload) tuple rather than the selected branch.
func KdbType(d *generic.Datum, decomposeUnion bool) (host.Type, error) {
	t, logical := d.RealType(), d.RealLogicalType()
	if decomposeUnion {
		t, logical = d.Type(), d.LogicalType()
	}
	if t == hambavro.Array {
		items := d.ItemSchema()
		if decomposeUnion && d.IsUnion() {
			items = d.Payload().ItemSchema()
		}
		return ArrayType(items.Type(), generic.LogicalOf(items))
	}
	return SimpleType(t, logical)
}
