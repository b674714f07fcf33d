// Package avrocli implements the avrocodec commands on top of the codec
// stack wired by fx.
package avrocli

import (
	"fmt"

	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
)

// GlobalConfig holds the flags shared by every command.
type GlobalConfig struct {
	// ConfigFile is an optional YAML config. Empty falls back to AVROCODEC_CONFIG_FILE.
	ConfigFile string
	// EnvFile is the .env file to load. Empty disables loading.
	EnvFile string
	// LogLevel overrides the configured logger level when set.
	LogLevel string
	// Stats prints codec counters to stderr when the command finishes.
	Stats bool
}

// DecodeConfig holds the decode command flags.
type DecodeConfig struct {
	SchemaFile string
	Format     string
	Offset     int64
	Workers    int
	Registry   bool
	BareUnions bool
	Files      []string
}

// Validate checks the flag combination.
func (c *DecodeConfig) Validate() error {
	if c.SchemaFile == "" && !c.Registry {
		return fmt.Errorf("either --schema or --registry is required")
	}
	if c.SchemaFile != "" && c.Registry {
		return fmt.Errorf("--schema and --registry are mutually exclusive")
	}
	if len(c.Files) == 0 {
		return fmt.Errorf("at least one input file is required")
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset must not be negative, got %d", c.Offset)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return nil
}

// Options returns the per-call options of one decode. Several inputs are
// decoded concurrently, so they get their own codecs.
func (c *DecodeConfig) Options(defaults session.Options) (session.Options, error) {
	opts := defaults
	// A pretty default-format shapes output only; its input form is JSON.
	if opts.Format == encoding.PrettyJSON {
		opts.Format = encoding.JSON
	}
	if c.Format != "" {
		f, err := encoding.ParseFormat(c.Format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	opts.DecodeOffset = c.Offset
	opts.NoUnionBranchSelector = c.BareUnions
	opts.Multithreaded = len(c.Files) > 1
	return opts, nil
}

// TranscodeConfig holds the transcode command flags.
type TranscodeConfig struct {
	SchemaFile string
	From       string
	To         string
	Offset     int64
	Output     string
	File       string
}

// Validate checks the flag combination.
func (c *TranscodeConfig) Validate() error {
	if c.SchemaFile == "" {
		return fmt.Errorf("--schema is required")
	}
	if c.File == "" {
		return fmt.Errorf("an input file is required")
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset must not be negative, got %d", c.Offset)
	}
	return nil
}

// Options returns the decode and encode options of the transcode.
func (c *TranscodeConfig) Options() (decode, encode session.Options, err error) {
	from, err := encoding.ParseFormat(c.From)
	if err != nil {
		return decode, encode, err
	}
	to, err := encoding.ParseFormat(c.To)
	if err != nil {
		return decode, encode, err
	}
	decode = session.Options{Format: from, DecodeOffset: c.Offset}
	encode = session.Options{Format: to}
	return decode, encode, nil
}
