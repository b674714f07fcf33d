package mapping

import (
	"testing"

	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hambavro "github.com/hamba/avro/v2"
)

func TestSimpleType(t *testing.T) {
	tests := []struct {
		avroType hambavro.Type
		logical  hambavro.LogicalType
		expected host.Type
	}{
		{hambavro.Boolean, "", -host.KB},
		{hambavro.Bytes, "", host.KG},
		{hambavro.Bytes, hambavro.Decimal, host.Mixed},
		{hambavro.Double, "", -host.KF},
		{hambavro.Enum, "", -host.KS},
		{hambavro.Fixed, "", host.KG},
		{hambavro.Fixed, hambavro.Decimal, host.Mixed},
		{hambavro.Fixed, hambavro.Duration, host.KI},
		{hambavro.Float, "", -host.KE},
		{hambavro.Int, "", -host.KI},
		{hambavro.Int, hambavro.Date, -host.KD},
		{hambavro.Int, hambavro.TimeMillis, -host.KT},
		{hambavro.Long, "", -host.KJ},
		{hambavro.Long, hambavro.TimeMicros, -host.KN},
		{hambavro.Long, hambavro.TimestampMillis, -host.KP},
		{hambavro.Long, hambavro.TimestampMicros, -host.KP},
		{hambavro.Map, "", host.XD},
		{hambavro.Null, "", host.Identity},
		{hambavro.Record, "", host.XD},
		{hambavro.String, "", host.KC},
		{hambavro.String, hambavro.UUID, -host.UU},
		{hambavro.Union, "", host.Mixed},
	}

	for _, tt := range tests {
		t.Run(string(tt.avroType)+"/"+string(tt.logical), func(t *testing.T) {
			got, err := SimpleType(tt.avroType, tt.logical)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestArrayType(t *testing.T) {
	tests := []struct {
		avroType hambavro.Type
		logical  hambavro.LogicalType
		expected host.Type
	}{
		{hambavro.Boolean, "", host.KB},
		{hambavro.Bytes, "", host.Mixed},
		{hambavro.Double, "", host.KF},
		{hambavro.Enum, "", host.KS},
		{hambavro.Fixed, hambavro.Duration, host.Mixed},
		{hambavro.Float, "", host.KE},
		{hambavro.Int, "", host.KI},
		{hambavro.Int, hambavro.Date, host.KD},
		{hambavro.Int, hambavro.TimeMillis, host.KT},
		{hambavro.Long, "", host.KJ},
		{hambavro.Long, hambavro.TimeMicros, host.KN},
		{hambavro.Long, hambavro.TimestampMicros, host.KP},
		{hambavro.String, "", host.Mixed},
		{hambavro.String, hambavro.UUID, host.UU},
		{hambavro.Array, "", host.Mixed},
		{hambavro.Record, "", host.Mixed},
		{hambavro.Map, "", host.Mixed},
		{hambavro.Union, "", host.Mixed},
		{hambavro.Null, "", host.Mixed},
	}

	for _, tt := range tests {
		t.Run(string(tt.avroType)+"/"+string(tt.logical), func(t *testing.T) {
			got, err := ArrayType(tt.avroType, tt.logical)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSimpleType_Unsupported(t *testing.T) {
	_, err := SimpleType(hambavro.Array, "")
	assert.ErrorIs(t, err, typecheck.UnsupportedType)

	_, err = SimpleType(hambavro.Ref, "")
	assert.ErrorIs(t, err, typecheck.UnsupportedType)

	_, err = ArrayType(hambavro.Type("symbolic"), "")
	assert.ErrorIs(t, err, typecheck.UnsupportedType)
}

func TestKdbType(t *testing.T) {
	// Arrange
	schema := hambavro.MustParse(`{
		"type": "record", "name": "r",
		"fields": [
			{"name": "days", "type": {"type": "array", "items": {"type": "int", "logicalType": "date"}}},
			{"name": "opt", "type": ["null", {"type": "array", "items": "long"}]}
		]
	}`)
	d := generic.New(schema)
	days, _ := d.Field("days")
	opt, _ := d.Field("opt")
	require.NoError(t, opt.SelectBranch(1))

	// Act
	daysType, err1 := KdbType(days, false)
	unionType, err2 := KdbType(opt, false)
	branchType, err3 := KdbType(opt, true)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.NoError(t, err3)
	assert.Equal(t, host.KD, daysType)
	assert.Equal(t, host.Mixed, unionType)
	assert.Equal(t, host.KJ, branchType)
}
