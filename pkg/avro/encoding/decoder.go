package encoding

import (
	"errors"
	"fmt"
	"math"

	"github.com/Sokol111/avrocodec/pkg/avro/generic"

	hambavro "github.com/hamba/avro/v2"
)

// Decoder parses wire data into datums bound to one schema. A Decoder is not
// safe for concurrent use.
type Decoder interface {
	// Decode reads one datum from data.
	Decode(data []byte) (*generic.Datum, error)
}

// NewDecoder builds a decoder for schema in format f. PrettyJSON is an output
// format only.
func NewDecoder(schema hambavro.Schema, f Format) (Decoder, error) {
	switch f {
	case Binary:
		return NewBinaryDecoder(schema), nil
	case JSON:
		return NewJSONDecoder(schema)
	}
	return nil, fmt.Errorf("unknown avro format: %s", f)
}

// DefaultMaxZeroWidthItems caps the array items or map values of a single
// decode whose encoding takes no bytes, such as null.
const DefaultMaxZeroWidthItems = 1 << 20

// ErrBlockCount is returned when a block count cannot be satisfied by the
// remaining input.
var ErrBlockCount = errors.New("invalid block count")

type binaryDecoder struct {
	schema       hambavro.Schema
	reader       *hambavro.Reader
	maxZeroWidth int64
}

// BinaryDecoderOption configures a binary decoder.
type BinaryDecoderOption func(*binaryDecoder)

// WithMaxZeroWidthItems sets how many zero-width items one decode may produce.
func WithMaxZeroWidthItems(n int64) BinaryDecoderOption {
	return func(d *binaryDecoder) { d.maxZeroWidth = n }
}

// NewBinaryDecoder creates a decoder for the avro binary encoding.
func NewBinaryDecoder(schema hambavro.Schema, opts ...BinaryDecoderOption) Decoder {
	d := &binaryDecoder{
		schema:       schema,
		reader:       hambavro.NewReader(nil, 0),
		maxZeroWidth: DefaultMaxZeroWidthItems,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *binaryDecoder) Decode(data []byte) (*generic.Datum, error) {
	d.reader.Reset(data)
	d.reader.Error = nil

	st := &readState{
		r:         d.reader,
		sized:     int64(len(data)),
		zeroWidth: d.maxZeroWidth,
	}
	datum, err := st.readDatum(d.schema)
	if err != nil {
		return nil, err
	}
	if d.reader.Error != nil {
		return nil, fmt.Errorf("failed to read avro binary: %w", d.reader.Error)
	}
	return datum, nil
}

// readState carries the item budgets of one decode. Every item that takes at
// least one byte draws on sized, which starts at the input length; items that
// take no bytes draw on zeroWidth.
type readState struct {
	r         *hambavro.Reader
	sized     int64
	zeroWidth int64
}

func (st *readState) readDatum(schema hambavro.Schema) (*generic.Datum, error) {
	r := st.r
	d := generic.New(schema)
	s := d.Schema()

	switch s.Type() {
	case hambavro.Null:
	case hambavro.Boolean:
		d.Set(r.ReadBool())
	case hambavro.Int:
		d.Set(r.ReadInt())
	case hambavro.Long:
		d.Set(r.ReadLong())
	case hambavro.Float:
		d.Set(r.ReadFloat())
	case hambavro.Double:
		d.Set(r.ReadDouble())
	case hambavro.Bytes:
		d.Set(r.ReadBytes())
	case hambavro.String:
		d.Set(r.ReadString())
	case hambavro.Enum:
		idx := int(r.ReadInt())
		symbols := s.(*hambavro.EnumSchema).Symbols()
		if r.Error != nil {
			return nil, fmt.Errorf("failed to read enum: %w", r.Error)
		}
		if idx < 0 || idx >= len(symbols) {
			return nil, fmt.Errorf("enum index %d out of range for %s", idx, generic.BranchName(s))
		}
		d.Set(symbols[idx])
	case hambavro.Fixed:
		buf := make([]byte, s.(*hambavro.FixedSchema).Size())
		r.Read(buf)
		d.Set(buf)
	case hambavro.Array:
		items := d.ItemSchema()
		err := st.readBlocks(zeroWidth(items, nil), func() error {
			item, err := st.readDatum(items)
			if err != nil {
				return err
			}
			d.Append(item)
			return nil
		})
		if err != nil {
			return nil, err
		}
	case hambavro.Map:
		values := d.ItemSchema()
		err := st.readBlocks(false, func() error {
			key := r.ReadString()
			v, err := st.readDatum(values)
			if err != nil {
				return err
			}
			d.Put(key, v)
			return nil
		})
		if err != nil {
			return nil, err
		}
	case hambavro.Record, hambavro.Error:
		for i, f := range s.(*hambavro.RecordSchema).Fields() {
			v, err := st.readDatum(f.Type())
			if err != nil {
				return nil, err
			}
			d.Fields()[i] = v
		}
	case hambavro.Union:
		branch := int(r.ReadLong())
		if r.Error != nil {
			return nil, fmt.Errorf("failed to read union branch: %w", r.Error)
		}
		if err := d.SelectBranch(branch); err != nil {
			return nil, err
		}
		payload, err := st.readDatum(s.(*hambavro.UnionSchema).Types()[branch])
		if err != nil {
			return nil, err
		}
		d.Set(payload)
	default:
		return nil, fmt.Errorf("cannot read avro type %s", s.Type())
	}
	return d, nil
}

// readBlocks reads the blocks of an array or map. A negative count is
// followed by the block size in bytes. Map entries always take bytes for
// their key.
func (st *readState) readBlocks(empty bool, item func() error) error {
	r := st.r
	for {
		count := r.ReadLong()
		if r.Error != nil {
			return fmt.Errorf("failed to read block header: %w", r.Error)
		}
		if count == 0 {
			return nil
		}
		if count < 0 {
			if count == math.MinInt64 {
				return fmt.Errorf("failed to read block header: %w: %d", ErrBlockCount, count)
			}
			count = -count
			_ = r.ReadLong()
			if r.Error != nil {
				return fmt.Errorf("failed to read block size: %w", r.Error)
			}
		}
		if err := st.take(empty, count); err != nil {
			return err
		}
		for i := int64(0); i < count; i++ {
			if err := item(); err != nil {
				return err
			}
			if r.Error != nil {
				return fmt.Errorf("failed to read block item: %w", r.Error)
			}
		}
	}
}

func (st *readState) take(empty bool, count int64) error {
	budget := &st.sized
	if empty {
		budget = &st.zeroWidth
	}
	if count > *budget {
		return fmt.Errorf("failed to read block: %w: %d items, at most %d left", ErrBlockCount, count, *budget)
	}
	*budget -= count
	return nil
}

// zeroWidth reports whether every value of schema encodes to no bytes.
func zeroWidth(schema hambavro.Schema, seen map[string]bool) bool {
	s := generic.Resolve(schema)
	switch s.Type() {
	case hambavro.Null:
		return true
	case hambavro.Fixed:
		return s.(*hambavro.FixedSchema).Size() == 0
	case hambavro.Record, hambavro.Error:
		rec := s.(*hambavro.RecordSchema)
		if seen[rec.FullName()] {
			return false
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		seen[rec.FullName()] = true
		for _, f := range rec.Fields() {
			if !zeroWidth(f.Type(), seen) {
				return false
			}
		}
		return true
	}
	return false
}
