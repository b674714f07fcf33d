package session

import (
	"slices"

	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"
)

// Option keys accepted in a host options dictionary.
const (
	AvroFormat            = "AVRO_FORMAT"
	Multithreaded         = "MULTITHREADED"
	DecodeOffset          = "DECODE_OFFSET"
	NoUnionBranchSelector = "NO_UNION_BRANCH_SELECTOR"
)

var (
	encodeStringOptions = []string{AvroFormat}
	encodeIntOptions    = []string{Multithreaded, NoUnionBranchSelector}
	decodeStringOptions = []string{AvroFormat}
	decodeIntOptions    = []string{Multithreaded, DecodeOffset, NoUnionBranchSelector}
)

// Options controls one encode or decode call.
type Options struct {
	Format                encoding.Format
	Multithreaded         bool
	DecodeOffset          int64
	NoUnionBranchSelector bool
}

// DefaultOptions returns binary, single threaded, no offset, tagged unions.
func DefaultOptions() Options {
	return Options{Format: encoding.Binary}
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = encoding.Binary
	}
	return o
}

// ParseEncodeOptions reads the options dictionary of an encode call.
// DECODE_OFFSET is rejected.
func ParseEncodeOptions(v host.Value) (Options, error) {
	return parseOptions(v, encodeStringOptions, encodeIntOptions)
}

// ParseDecodeOptions reads the options dictionary of a decode call.
func ParseDecodeOptions(v host.Value) (Options, error) {
	return parseOptions(v, decodeStringOptions, decodeIntOptions)
}

// parseOptions accepts nil, identity, or a dictionary with symbol keys and
// either symbol values, long values, or a mixed list of long atoms, symbol
// atoms, char vectors and identity. Identity values are ignored.
func parseOptions(v host.Value, stringKeys, intKeys []string) (Options, error) {
	opts := DefaultOptions()
	if v == nil || v.Type() == host.Identity {
		return opts, nil
	}
	dict, ok := v.(host.Dict)
	if !ok {
		return opts, typecheck.Option("options not %dh", host.XD)
	}
	if host.Len(dict.Values) != len(dict.Keys) {
		return opts, typecheck.Option("options keys and values differ in length")
	}

	strs := make(map[string]string)
	ints := make(map[string]int64)
	setString := func(key, value string) error {
		if !slices.Contains(stringKeys, key) {
			return typecheck.Option("Unsupported string option '%s'", key)
		}
		strs[key] = value
		return nil
	}
	setInt := func(key string, value int64) error {
		if !slices.Contains(intKeys, key) {
			return typecheck.Option("Unsupported int option '%s'", key)
		}
		ints[key] = value
		return nil
	}

	for i, key := range dict.Keys {
		var err error
		switch values := dict.Values.(type) {
		case host.Symbols:
			err = setString(key, values[i])
		case host.Longs:
			err = setInt(key, values[i])
		case host.List:
			switch x := values[i].(type) {
			case host.Long:
				err = setInt(key, int64(x))
			case host.Symbol:
				err = setString(key, string(x))
			case host.Chars:
				err = setString(key, string(x))
			case host.Null, nil:
			default:
				err = typecheck.Option("option '%s' value not %d|%d|%dh", key, -host.KJ, -host.KS, host.KC)
			}
		default:
			err = typecheck.Option("options values not %d|%d|%dh", host.KJ, host.KS, host.Mixed)
		}
		if err != nil {
			return opts, err
		}
	}

	if s, ok := strs[AvroFormat]; ok {
		f, err := encoding.ParseFormat(s)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	opts.Multithreaded = ints[Multithreaded] != 0
	opts.NoUnionBranchSelector = ints[NoUnionBranchSelector] != 0
	opts.DecodeOffset = ints[DecodeOffset]
	if opts.DecodeOffset < 0 {
		return opts, typecheck.Option("Invalid %s %d", DecodeOffset, opts.DecodeOffset)
	}
	return opts, nil
}
