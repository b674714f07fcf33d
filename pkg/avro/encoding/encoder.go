package encoding

import (
	"fmt"

	"github.com/Sokol111/avrocodec/pkg/avro/generic"

	hambavro "github.com/hamba/avro/v2"
)

// Encoder serializes datums bound to one schema. An Encoder is not safe for
// concurrent use.
type Encoder interface {
	// Encode writes d in the encoder's wire format. The returned slice is owned by the caller.
	Encode(d *generic.Datum) ([]byte, error)
}

// NewEncoder builds an encoder for schema in format f.
func NewEncoder(schema hambavro.Schema, f Format) (Encoder, error) {
	switch f {
	case Binary:
		return NewBinaryEncoder(schema), nil
	case JSON:
		return NewJSONEncoder(schema, false)
	case PrettyJSON:
		return NewJSONEncoder(schema, true)
	}
	return nil, fmt.Errorf("unknown avro format: %s", f)
}

type binaryEncoder struct {
	schema hambavro.Schema
	writer *hambavro.Writer
}

// NewBinaryEncoder creates an encoder producing the avro binary encoding.
func NewBinaryEncoder(schema hambavro.Schema) Encoder {
	return &binaryEncoder{
		schema: schema,
		writer: hambavro.NewWriter(nil, 512),
	}
}

func (e *binaryEncoder) Encode(d *generic.Datum) ([]byte, error) {
	e.writer.Reset(nil)
	e.writer.Error = nil

	if err := writeDatum(e.writer, d); err != nil {
		return nil, err
	}
	if e.writer.Error != nil {
		return nil, fmt.Errorf("failed to write avro binary: %w", e.writer.Error)
	}

	buf := e.writer.Buffer()
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

func writeDatum(w *hambavro.Writer, d *generic.Datum) error {
	switch d.Schema().Type() {
	case hambavro.Null:
	case hambavro.Boolean:
		w.WriteBool(d.Value().(bool))
	case hambavro.Int:
		w.WriteInt(d.Value().(int32))
	case hambavro.Long:
		w.WriteLong(d.Value().(int64))
	case hambavro.Float:
		w.WriteFloat(d.Value().(float32))
	case hambavro.Double:
		w.WriteDouble(d.Value().(float64))
	case hambavro.Bytes:
		w.WriteBytes(d.Value().([]byte))
	case hambavro.String:
		w.WriteString(d.Value().(string))
	case hambavro.Enum:
		symbol := d.Value().(string)
		idx := indexOf(d.Schema().(*hambavro.EnumSchema).Symbols(), symbol)
		if idx < 0 {
			return fmt.Errorf("unknown enum symbol %q for %s", symbol, generic.BranchName(d.Schema()))
		}
		w.WriteInt(int32(idx))
	case hambavro.Fixed:
		w.Write(d.Value().([]byte))
	case hambavro.Array:
		items := d.Items()
		if len(items) > 0 {
			w.WriteLong(int64(len(items)))
			for _, item := range items {
				if err := writeDatum(w, item); err != nil {
					return err
				}
			}
		}
		w.WriteLong(0)
	case hambavro.Map:
		entries := d.Entries()
		if len(entries) > 0 {
			w.WriteLong(int64(len(entries)))
			for _, e := range entries {
				w.WriteString(e.Key)
				if err := writeDatum(w, e.Value); err != nil {
					return err
				}
			}
		}
		w.WriteLong(0)
	case hambavro.Record, hambavro.Error:
		for _, f := range d.Fields() {
			if err := writeDatum(w, f); err != nil {
				return err
			}
		}
	case hambavro.Union:
		w.WriteLong(int64(d.Branch()))
		return writeDatum(w, d.Payload())
	default:
		return fmt.Errorf("cannot write avro type %s", d.Schema().Type())
	}
	return nil
}

func indexOf(symbols []string, symbol string) int {
	for i, s := range symbols {
		if s == symbol {
			return i
		}
	}
	return -1
}
