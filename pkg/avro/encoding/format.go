package encoding

import (
	"strings"

	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
)

// Format is an avro wire format.
type Format string

const (
	Binary     Format = "BINARY"
	JSON       Format = "JSON"
	PrettyJSON Format = "PRETTY_JSON"
)

// ParseFormat accepts BINARY, JSON, PRETTY_JSON and JSON_PRETTY in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(s) {
	case "BINARY":
		return Binary, nil
	case "JSON":
		return JSON, nil
	case "PRETTY_JSON", "JSON_PRETTY":
		return PrettyJSON, nil
	}
	return "", typecheck.Option("Unsupported avro encoding type '%s' (should be BINARY, JSON or JSON_PRETTY)", s)
}

// IsText reports whether f produces JSON text.
func (f Format) IsText() bool { return f != Binary }
