package encoding

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	"github.com/linkedin/goavro/v2"
	"github.com/samber/lo"
	"github.com/tidwall/pretty"

	hambavro "github.com/hamba/avro/v2"
)

type jsonEncoder struct {
	codec  *goavro.Codec
	pretty bool
}

// NewJSONEncoder creates an encoder producing the avro JSON encoding.
func NewJSONEncoder(schema hambavro.Schema, indent bool) (Encoder, error) {
	codec, err := newTextCodec(schema)
	if err != nil {
		return nil, err
	}
	return &jsonEncoder{codec: codec, pretty: indent}, nil
}

func (e *jsonEncoder) Encode(d *generic.Datum) ([]byte, error) {
	native, err := toNative(d)
	if err != nil {
		return nil, err
	}
	text, err := e.codec.TextualFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("failed to write avro json: %w", err)
	}
	if e.pretty {
		text = bytes.TrimRight(pretty.Pretty(text), "\n")
	}
	return text, nil
}

type jsonDecoder struct {
	schema hambavro.Schema
	codec  *goavro.Codec
}

// NewJSONDecoder creates a decoder for the avro JSON encoding.
func NewJSONDecoder(schema hambavro.Schema) (Decoder, error) {
	codec, err := newTextCodec(schema)
	if err != nil {
		return nil, err
	}
	return &jsonDecoder{schema: schema, codec: codec}, nil
}

func (d *jsonDecoder) Decode(data []byte) (*generic.Datum, error) {
	native, _, err := d.codec.NativeFromTextual(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read avro json: %w", err)
	}
	return fromNative(d.schema, native)
}

func newTextCodec(schema hambavro.Schema) (*goavro.Codec, error) {
	text, err := PlainSchemaJSON(schema)
	if err != nil {
		return nil, err
	}
	codec, err := goavro.NewCodec(string(text))
	if err != nil {
		return nil, fmt.Errorf("failed to create json codec: %w", err)
	}
	return codec, nil
}

// toNative converts d to the value shapes goavro expects.
func toNative(d *generic.Datum) (any, error) {
	switch d.Schema().Type() {
	case hambavro.Array:
		items := d.Items()
		out := make([]any, len(items))
		for i, item := range items {
			v, err := toNative(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case hambavro.Map:
		out := make(map[string]any, len(d.Entries()))
		for _, e := range d.Entries() {
			v, err := toNative(e.Value)
			if err != nil {
				return nil, err
			}
			out[e.Key] = v
		}
		return out, nil
	case hambavro.Record, hambavro.Error:
		names := d.FieldNames()
		out := make(map[string]any, len(names))
		for i, f := range d.Fields() {
			v, err := toNative(f)
			if err != nil {
				return nil, err
			}
			out[names[i]] = v
		}
		return out, nil
	case hambavro.Union:
		payload := d.Payload()
		if payload.Schema().Type() == hambavro.Null {
			return nil, nil
		}
		v, err := toNative(payload)
		if err != nil {
			return nil, err
		}
		return goavro.Union(generic.BranchName(payload.Schema()), v), nil
	}
	return d.Value(), nil
}

// fromNative builds a datum of schema from a goavro native value.
func fromNative(schema hambavro.Schema, native any) (*generic.Datum, error) {
	d := generic.New(schema)
	s := d.Schema()

	switch s.Type() {
	case hambavro.Null:
		return d, nil
	case hambavro.Boolean:
		return setNative[bool](d, native)
	case hambavro.Int:
		return setNative[int32](d, native)
	case hambavro.Long:
		return setNative[int64](d, native)
	case hambavro.Float:
		return setNative[float32](d, native)
	case hambavro.Double:
		return setNative[float64](d, native)
	case hambavro.Bytes, hambavro.Fixed:
		return setNative[[]byte](d, native)
	case hambavro.String, hambavro.Enum:
		return setNative[string](d, native)
	case hambavro.Array:
		items, ok := native.([]any)
		if !ok {
			return nil, nativeMismatch(s, native)
		}
		for _, item := range items {
			v, err := fromNative(d.ItemSchema(), item)
			if err != nil {
				return nil, err
			}
			d.Append(v)
		}
		return d, nil
	case hambavro.Map:
		values, ok := native.(map[string]any)
		if !ok {
			return nil, nativeMismatch(s, native)
		}
		keys := lo.Keys(values)
		slices.Sort(keys)
		for _, k := range keys {
			v, err := fromNative(d.ItemSchema(), values[k])
			if err != nil {
				return nil, err
			}
			d.Put(k, v)
		}
		return d, nil
	case hambavro.Record, hambavro.Error:
		values, ok := native.(map[string]any)
		if !ok {
			return nil, nativeMismatch(s, native)
		}
		for i, f := range s.(*hambavro.RecordSchema).Fields() {
			v, err := fromNative(f.Type(), values[f.Name()])
			if err != nil {
				return nil, err
			}
			d.Fields()[i] = v
		}
		return d, nil
	case hambavro.Union:
		return fromNativeUnion(d, native)
	}
	return nil, fmt.Errorf("cannot read avro type %s", s.Type())
}

func fromNativeUnion(d *generic.Datum, native any) (*generic.Datum, error) {
	types := d.Schema().(*hambavro.UnionSchema).Types()

	name, value := string(hambavro.Null), any(nil)
	if native != nil {
		wrapped, ok := native.(map[string]any)
		if !ok || len(wrapped) != 1 {
			return nil, nativeMismatch(d.Schema(), native)
		}
		for k, v := range wrapped {
			name, value = k, v
		}
	}

	_, branch, found := lo.FindIndexOf(types, func(t hambavro.Schema) bool {
		return generic.BranchName(t) == name
	})
	if !found {
		return nil, fmt.Errorf("union has no branch named %q", name)
	}
	if err := d.SelectBranch(branch); err != nil {
		return nil, err
	}
	payload, err := fromNative(types[branch], value)
	if err != nil {
		return nil, err
	}
	d.Set(payload)
	return d, nil
}

func setNative[T any](d *generic.Datum, native any) (*generic.Datum, error) {
	v, ok := native.(T)
	if !ok {
		return nil, nativeMismatch(d.Schema(), native)
	}
	d.Set(v)
	return d, nil
}

func nativeMismatch(schema hambavro.Schema, native any) error {
	return fmt.Errorf("unexpected json value %T for avro type %s", native, schema.Type())
}
