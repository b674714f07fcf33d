package encoding

import (
	"fmt"

	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	jsoniter "github.com/json-iterator/go"

	hambavro "github.com/hamba/avro/v2"
)

var schemaJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// PlainSchemaJSON renders schema without logical type annotations, defaults
// or docs. Logical types are applied by the codec itself, so the JSON codec
// only ever sees physical types.
func PlainSchemaJSON(schema hambavro.Schema) ([]byte, error) {
	seen := map[string]bool{}
	out, err := schemaJSON.Marshal(plain(schema, seen))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return out, nil
}

func plain(schema hambavro.Schema, seen map[string]bool) any {
	if ref, ok := schema.(*hambavro.RefSchema); ok {
		return ref.Schema().FullName()
	}

	if named, ok := schema.(hambavro.NamedSchema); ok {
		if seen[named.FullName()] {
			return named.FullName()
		}
		seen[named.FullName()] = true
	}

	switch s := schema.(type) {
	case *hambavro.RecordSchema:
		fields := make([]map[string]any, 0, len(s.Fields()))
		for _, f := range s.Fields() {
			fields = append(fields, map[string]any{
				"name": f.Name(),
				"type": plain(f.Type(), seen),
			})
		}
		return map[string]any{"type": "record", "name": s.FullName(), "fields": fields}
	case *hambavro.EnumSchema:
		return map[string]any{"type": "enum", "name": s.FullName(), "symbols": s.Symbols()}
	case *hambavro.FixedSchema:
		return map[string]any{"type": "fixed", "name": s.FullName(), "size": s.Size()}
	case *hambavro.ArraySchema:
		return map[string]any{"type": "array", "items": plain(s.Items(), seen)}
	case *hambavro.MapSchema:
		return map[string]any{"type": "map", "values": plain(s.Values(), seen)}
	case *hambavro.UnionSchema:
		branches := make([]any, 0, len(s.Types()))
		for _, t := range s.Types() {
			branches = append(branches, plain(t, seen))
		}
		return branches
	}
	return generic.TypeName(schema)
}
