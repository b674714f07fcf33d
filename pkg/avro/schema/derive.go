package schema

import (
	"fmt"

	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/samber/lo"

	hambavro "github.com/hamba/avro/v2"
)

// RootName is the name of the record produced by Derive.
const RootName = "root"

// Derive builds a record schema describing dict. Nested dictionaries become
// nested records and symbol vectors become enums, both named after their field.
func Derive(dict host.Dict) (hambavro.Schema, error) {
	return deriveRecord(RootName, dict)
}

func deriveRecord(name string, dict host.Dict) (*hambavro.RecordSchema, error) {
	values, ok := dict.Values.(host.List)
	if !ok {
		return nil, typecheck.Kdb(name, "record", "dict values", int64(host.Mixed), int64(typeOf(dict.Values)))
	}
	if len(values) != len(dict.Keys) {
		return nil, typecheck.Kdb(name, "record", "dict values length", int64(len(dict.Keys)), int64(len(values)))
	}

	fields := make([]*hambavro.Field, 0, len(dict.Keys))
	for i, key := range dict.Keys {
		value := values[i]
		if key == "" && typeOf(value) == host.Identity {
			continue
		}

		var (
			s   hambavro.Schema
			err error
		)
		if nested, ok := value.(host.Dict); ok {
			s, err = deriveRecord(key, nested)
		} else {
			s, err = deriveSimple(key, value)
		}
		if err != nil {
			return nil, err
		}

		f, err := hambavro.NewField(key, s)
		if err != nil {
			return nil, fmt.Errorf("failed to derive field %q: %w", key, err)
		}
		fields = append(fields, f)
	}

	record, err := hambavro.NewRecordSchema(name, "", fields)
	if err != nil {
		return nil, fmt.Errorf("failed to derive record %q: %w", name, err)
	}
	return record, nil
}

func deriveSimple(name string, v host.Value) (hambavro.Schema, error) {
	primitive := func(t hambavro.Type) hambavro.Schema {
		return hambavro.NewPrimitiveSchema(t, nil)
	}
	array := func(t hambavro.Type) hambavro.Schema {
		return hambavro.NewArraySchema(primitive(t))
	}

	switch x := v.(type) {
	case nil, host.Null:
		return primitive(hambavro.Null), nil
	case host.Bool:
		return primitive(hambavro.Boolean), nil
	case host.Bools:
		return array(hambavro.Boolean), nil
	case host.Int:
		return primitive(hambavro.Int), nil
	case host.Ints:
		return array(hambavro.Int), nil
	case host.Long:
		return primitive(hambavro.Long), nil
	case host.Longs:
		return array(hambavro.Long), nil
	case host.Real:
		return primitive(hambavro.Float), nil
	case host.Reals:
		return array(hambavro.Float), nil
	case host.Float:
		return primitive(hambavro.Double), nil
	case host.Floats:
		return array(hambavro.Double), nil
	case host.Bytes:
		return primitive(hambavro.Bytes), nil
	case host.Chars:
		return primitive(hambavro.String), nil
	case host.Symbols:
		enum, err := hambavro.NewEnumSchema(name, "", lo.Uniq([]string(x)))
		if err != nil {
			return nil, fmt.Errorf("failed to derive enum %q: %w", name, err)
		}
		return enum, nil
	case host.List:
		return deriveList(name, x)
	}
	return nil, typecheck.Unsupported(name, v.Type().String())
}

// deriveList accepts a non-empty mixed list whose items are all strings or
// all byte vectors.
func deriveList(name string, list host.List) (hambavro.Schema, error) {
	if len(list) == 0 {
		return nil, typecheck.Kdb(name, "array", "mixed list length", 1, 0)
	}
	first := typeOf(list[0])
	if first != host.KC && first != host.KG {
		return nil, typecheck.Kdb(name, "array", "mixed list item type", int64(host.KC), int64(first))
	}
	if mixed, found := lo.Find(list, func(x host.Value) bool { return typeOf(x) != first }); found {
		return nil, typecheck.Kdb(name, "array", "mixed list item type", int64(first), int64(typeOf(mixed)))
	}
	if first == host.KC {
		return hambavro.NewArraySchema(hambavro.NewPrimitiveSchema(hambavro.String, nil)), nil
	}
	return hambavro.NewArraySchema(hambavro.NewPrimitiveSchema(hambavro.Bytes, nil)), nil
}

func typeOf(v host.Value) host.Type {
	if v == nil {
		return host.Identity
	}
	return v.Type()
}
