package generic

import (
	hambavro "github.com/hamba/avro/v2"
)

// LogicalOf returns the logical type annotating schema, or "" if none.
func LogicalOf(schema hambavro.Schema) hambavro.LogicalType {
	var ls hambavro.LogicalSchema
	switch s := Resolve(schema).(type) {
	case *hambavro.PrimitiveSchema:
		ls = s.Logical()
	case *hambavro.FixedSchema:
		ls = s.Logical()
	}
	if ls == nil {
		return ""
	}
	return ls.Type()
}

// DecimalOf returns the declared precision and scale of a decimal schema.
func DecimalOf(schema hambavro.Schema) (precision, scale int, ok bool) {
	var ls hambavro.LogicalSchema
	switch s := Resolve(schema).(type) {
	case *hambavro.PrimitiveSchema:
		ls = s.Logical()
	case *hambavro.FixedSchema:
		ls = s.Logical()
	}
	dec, ok := ls.(*hambavro.DecimalLogicalSchema)
	if !ok {
		return 0, 0, false
	}
	return dec.Precision(), dec.Scale(), true
}

// TypeName names a schema node the way error messages do.
func TypeName(schema hambavro.Schema) string {
	return string(Resolve(schema).Type())
}

// BranchName returns the name a union branch is known by in avro JSON.
func BranchName(schema hambavro.Schema) string {
	s := Resolve(schema)
	if named, ok := s.(hambavro.NamedSchema); ok {
		return named.FullName()
	}
	return string(s.Type())
}
