package host

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_AtomsAreNegated(t *testing.T) {
	assert.Equal(t, -KI, Int(1).Type())
	assert.Equal(t, KI, Ints{1}.Type())
	assert.Equal(t, -KH, Short(1).Type())
	assert.Equal(t, Identity, Null{}.Type())
	assert.Equal(t, XD, Dict{}.Type())
	assert.Equal(t, Mixed, List{}.Type())
	assert.Equal(t, -KI, KI.Atom())
	assert.Equal(t, "int atom", (-KI).String())
	assert.Equal(t, "dictionary", XD.String())
}

func TestDict_Item(t *testing.T) {
	// Arrange
	d := Dict{Keys: Symbols{"a", "b"}, Values: Longs{1, 2}}

	// Act
	v, ok := d.Item("b")
	_, missing := d.Item("c")

	// Assert
	assert.True(t, ok)
	assert.Equal(t, Long(2), v)
	assert.False(t, missing)
	assert.Equal(t, 2, Len(d))
}

func TestTemporal(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		date Date
	}{
		{"epoch", Epoch, 0},
		{"unix epoch", time.Unix(0, 0), -10957},
		{"before epoch mid day", time.Date(1999, 12, 31, 12, 0, 0, 0, time.UTC), -1},
		{"after epoch", time.Date(2000, 1, 2, 23, 59, 0, 0, time.UTC), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.date, DateOf(tt.in))
		})
	}

	ts := TimestampOf(time.Date(2000, 1, 1, 0, 0, 1, 5, time.UTC))
	assert.Equal(t, Timestamp(1_000_000_005), ts)
	assert.True(t, ts.Time().Equal(time.Date(2000, 1, 1, 0, 0, 1, 5, time.UTC)))
	assert.Equal(t, Time(3_723_004), TimeOf(time.Date(2020, 5, 5, 1, 2, 3, 4_000_000, time.UTC)))
}

func TestDecimal_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value string
		scale int32
		raw   []byte
	}{
		{"positive", "2.57", 2, []byte{0x01, 0x01}},
		{"zero", "0", 2, []byte{0x00}},
		{"minus one unit", "-0.01", 2, []byte{0xff}},
		{"high bit positive", "1.28", 2, []byte{0x00, 0x80}},
		{"minus 128 units", "-1.28", 2, []byte{0x80}},
		{"minus 129 units", "-1.29", 2, []byte{0xff, 0x7f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			d := decimal.RequireFromString(tt.value)

			// Act
			tuple := NewDecimal(d, 10, tt.scale)
			back, err := DecimalOf(tuple)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, List{Int(10), Int(tt.scale), Bytes(tt.raw)}, tuple)
			assert.True(t, d.Equal(back), "expected %s, got %s", d, back)
		})
	}
}

func TestDecimalOf_RejectsBadShape(t *testing.T) {
	_, err := DecimalOf(Ints{1, 2, 3})
	assert.Error(t, err)

	_, err = DecimalOf(List{Int(1), Long(2), Bytes{1}})
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"null", Null{}, "::"},
		{"bool", Bool(true), "1b"},
		{"bools", Bools{true, false}, "10b"},
		{"int", Int(5), "5i"},
		{"ints", Ints{1, 2}, "1 2i"},
		{"single long", Longs{7}, "enlist 7"},
		{"empty longs", Longs{}, "`long$()"},
		{"float", Float(2), "2f"},
		{"symbol", Symbol("abc"), "`abc"},
		{"symbols", Symbols{"a", "b"}, "`a`b"},
		{"chars", Chars("hi"), `"hi"`},
		{"bytes", Bytes{1, 2}, "0x0102"},
		{"date", Date(0), "2000.01.01"},
		{"time", Time(3_723_004), "01:02:03.004"},
		{"timespan", Timespan(90 * time.Second), "0D00:01:30.000000000"},
		{"timestamp", Timestamp(0), "2000.01.01D00:00:00.000000000"},
		{"union", NewUnion(1, Int(3)), "(1h;3i)"},
		{"record", NewRecord([]string{"a", "b"}, Long(1), Chars("x")), "`a`b!(1;\"x\")"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.value))
		})
	}
}
