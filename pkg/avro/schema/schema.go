// Package schema compiles, prints and derives avro schemas.
package schema

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/pretty"

	hambavro "github.com/hamba/avro/v2"
	jsoniter "github.com/json-iterator/go"
)

var schemaJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse compiles a JSON schema. Every call gets its own name cache so that
// unrelated schemas may reuse a full name.
func Parse(text string) (hambavro.Schema, error) {
	s, err := hambavro.ParseWithCache(text, "", &hambavro.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse avro schema: %w", err)
	}
	return s, nil
}

// ParseFile compiles the JSON schema stored at path.
func ParseFile(path string) (hambavro.Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read avro schema file: %w", err)
	}
	return Parse(string(raw))
}

// Pretty returns the full JSON form of s, indented.
func Pretty(s hambavro.Schema) (string, error) {
	raw, err := schemaJSON.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal avro schema: %w", err)
	}
	return strings.TrimSuffix(string(pretty.Pretty(raw)), "\n"), nil
}

// Fingerprint returns the hex SHA-256 of the parsing canonical form of s.
func Fingerprint(s hambavro.Schema) string {
	fp := s.Fingerprint()
	return hex.EncodeToString(fp[:])
}
