package typecheck

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		kind     Kind
		expected string
	}{
		{
			name:     "datum",
			err:      Datum("id", "int", -6, -7),
			kind:     DatumTypeMismatch,
			expected: "Invalid datum, field: 'id', datatype: 'int', expected: -6, received: -7",
		},
		{
			name:     "array",
			err:      Array("tags", "string", 10, 0),
			kind:     DatumTypeMismatch,
			expected: "Invalid array datum, field: 'tags', array datatype: 'string', expected: 10, received: 0",
		},
		{
			name:     "map",
			err:      Map("attrs", "long", 7, 6),
			kind:     DatumTypeMismatch,
			expected: "Invalid map datum, field: 'attrs', map datatype: 'long', expected: 7, received: 6",
		},
		{
			name:     "fixed",
			err:      Fixed("hash", 16, 15),
			kind:     FixedLengthMismatch,
			expected: "Invalid fixed length, field: 'hash', expected: 16, received: 15",
		},
		{
			name:     "kdb",
			err:      Kdb("u", "union", "mixed list length", 2, 3),
			kind:     CompositeShapeMismatch,
			expected: "Invalid kdb+ mapping, field: 'u', datatype: 'union', mixed list length expected: 2, received : 3",
		},
		{
			name:     "unsupported",
			err:      Unsupported("x", "symbolic"),
			kind:     UnsupportedType,
			expected: "Unsupported datatype, field: 'x', datatype: 'symbolic'",
		},
		{
			name:     "unresolved branch",
			err:      UnresolvedBranch("u", -7),
			kind:     UnresolvedUnionBranch,
			expected: "Unable to find union branch for kdb+ type -7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.True(t, errors.Is(tt.err, tt.kind))
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}

func TestIs_ThroughWrapping(t *testing.T) {
	// Arrange
	err := fmt.Errorf("failed to encode: %w", Fixed("f", 16, 15))

	// Act & Assert
	assert.ErrorIs(t, err, FixedLengthMismatch)
	assert.NotErrorIs(t, err, DatumTypeMismatch)
	assert.Equal(t, FixedLengthMismatch, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}
