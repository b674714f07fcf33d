// Package generic is the in-memory form of avro data: a tree of datums that
// mirrors the schema it was built from.
package generic

import (
	"fmt"

	hambavro "github.com/hamba/avro/v2"
)

// MapEntry is one key of an avro map.
type MapEntry struct {
	Key   string
	Value *Datum
}

// Datum holds one schema-typed value.
//
// The value shape depends on the schema type:
//   - null: nil
//   - boolean, int, long, float, double: bool, int32, int64, float32, float64
//   - bytes, fixed: []byte
//   - string, enum: string
//   - array: []*Datum
//   - map: []MapEntry
//   - record: []*Datum in field order
//   - union: *Datum holding the selected branch
type Datum struct {
	schema hambavro.Schema
	branch int
	value  any
}

// New returns the zero datum of schema. Unions start on branch 0.
func New(schema hambavro.Schema) *Datum {
	s := Resolve(schema)
	d := &Datum{schema: s}
	switch s.Type() {
	case hambavro.Boolean:
		d.value = false
	case hambavro.Int:
		d.value = int32(0)
	case hambavro.Long:
		d.value = int64(0)
	case hambavro.Float:
		d.value = float32(0)
	case hambavro.Double:
		d.value = float64(0)
	case hambavro.Bytes:
		d.value = []byte{}
	case hambavro.String:
		d.value = ""
	case hambavro.Enum:
		if symbols := s.(*hambavro.EnumSchema).Symbols(); len(symbols) > 0 {
			d.value = symbols[0]
		} else {
			d.value = ""
		}
	case hambavro.Fixed:
		d.value = make([]byte, s.(*hambavro.FixedSchema).Size())
	case hambavro.Array:
		d.value = []*Datum{}
	case hambavro.Map:
		d.value = []MapEntry{}
	case hambavro.Record, hambavro.Error:
		fields := s.(*hambavro.RecordSchema).Fields()
		values := make([]*Datum, len(fields))
		for i, f := range fields {
			values[i] = New(f.Type())
		}
		d.value = values
	case hambavro.Union:
		d.value = New(s.(*hambavro.UnionSchema).Types()[0])
	}
	return d
}

// Resolve follows named type references.
func Resolve(schema hambavro.Schema) hambavro.Schema {
	for {
		ref, ok := schema.(*hambavro.RefSchema)
		if !ok {
			return schema
		}
		schema = ref.Schema()
	}
}

// Schema returns the resolved schema node of d.
func (d *Datum) Schema() hambavro.Schema { return d.schema }

// IsUnion reports whether d is a union.
func (d *Datum) IsUnion() bool { return d.schema.Type() == hambavro.Union }

// Type returns the discriminated type: the selected branch type for unions.
func (d *Datum) Type() hambavro.Type {
	return d.node().schema.Type()
}

// LogicalType returns the logical type of the discriminated node, or "" if none.
func (d *Datum) LogicalType() hambavro.LogicalType {
	return LogicalOf(d.node().schema)
}

// RealType returns union for a union datum and Type otherwise.
func (d *Datum) RealType() hambavro.Type {
	if d.IsUnion() {
		return hambavro.Union
	}
	return d.Type()
}

// RealLogicalType returns "" for a union datum and LogicalType otherwise.
func (d *Datum) RealLogicalType() hambavro.LogicalType {
	if d.IsUnion() {
		return ""
	}
	return d.LogicalType()
}

func (d *Datum) node() *Datum {
	if d.IsUnion() {
		return d.value.(*Datum)
	}
	return d
}

// Branch returns the selected union branch.
func (d *Datum) Branch() int { return d.branch }

// Branches returns the number of union branches, or 0 for other types.
func (d *Datum) Branches() int {
	if u, ok := d.schema.(*hambavro.UnionSchema); ok {
		return len(u.Types())
	}
	return 0
}

// SelectBranch switches a union to branch i and resets its payload.
func (d *Datum) SelectBranch(i int) error {
	u, ok := d.schema.(*hambavro.UnionSchema)
	if !ok {
		return fmt.Errorf("select branch on %s datum", d.schema.Type())
	}
	types := u.Types()
	if i < 0 || i >= len(types) {
		return fmt.Errorf("union branch %d out of range [0, %d)", i, len(types))
	}
	d.branch = i
	d.value = New(types[i])
	return nil
}

// Payload returns the selected branch of a union.
func (d *Datum) Payload() *Datum {
	return d.value.(*Datum)
}

// Value returns the raw value, see Datum.
func (d *Datum) Value() any { return d.value }

// Set replaces the raw value. The caller keeps it consistent with the schema.
func (d *Datum) Set(v any) { d.value = v }

// Fields returns the field datums of a record in schema order.
func (d *Datum) Fields() []*Datum { return d.value.([]*Datum) }

// Field looks up a record field by name.
func (d *Datum) Field(name string) (*Datum, bool) {
	for i, f := range d.schema.(*hambavro.RecordSchema).Fields() {
		if f.Name() == name {
			return d.value.([]*Datum)[i], true
		}
	}
	return nil, false
}

// FieldNames returns the record field names in schema order.
func (d *Datum) FieldNames() []string {
	fields := d.schema.(*hambavro.RecordSchema).Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// Items returns the items of an array.
func (d *Datum) Items() []*Datum { return d.value.([]*Datum) }

// Append adds an item to an array.
func (d *Datum) Append(item *Datum) { d.value = append(d.value.([]*Datum), item) }

// Entries returns the entries of a map.
func (d *Datum) Entries() []MapEntry { return d.value.([]MapEntry) }

// Put adds an entry to a map.
func (d *Datum) Put(key string, v *Datum) {
	d.value = append(d.value.([]MapEntry), MapEntry{Key: key, Value: v})
}

// ItemSchema returns the item schema of an array or the value schema of a map.
func (d *Datum) ItemSchema() hambavro.Schema {
	switch s := d.schema.(type) {
	case *hambavro.ArraySchema:
		return Resolve(s.Items())
	case *hambavro.MapSchema:
		return Resolve(s.Values())
	}
	return nil
}
