package avrocli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Sokol111/avrocodec/pkg/avro/schema"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewRootCmd builds the avrocodec command tree.
func NewRootCmd(version string) *cobra.Command {
	g := &GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:           "avrocodec",
		Short:         "Convert avro payloads to and from kdb+ values",
		Long:          `avrocodec decodes avro binary and JSON payloads into kdb+ values and re-encodes them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.ConfigFile, "config", "c", "", "YAML config file (defaults to $AVROCODEC_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&g.EnvFile, "env-file", ".env", "Env file to load, empty to disable")
	rootCmd.PersistentFlags().StringVar(&g.LogLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&g.Stats, "stats", false, "Print codec counters to stderr on exit")

	rootCmd.AddCommand(newSchemaCmd(), newDecodeCmd(g), newTranscodeCmd(g))

	return rootCmd
}

func newSchemaCmd() *cobra.Command {
	var schemaFile string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect an avro schema",
	}
	cmd.PersistentFlags().StringVarP(&schemaFile, "schema", "s", "", "Avro schema file (required)")
	_ = cmd.MarkPersistentFlagRequired("schema")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "print",
			Short: "Print the schema as indented JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := schema.ParseFile(schemaFile)
				if err != nil {
					return err
				}
				text, err := schema.Pretty(s)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			},
		},
		&cobra.Command{
			Use:   "fingerprint",
			Short: "Print the SHA-256 fingerprint of the schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := schema.ParseFile(schemaFile)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), schema.Fingerprint(s))
				return err
			},
		},
	)
	return cmd
}

func newDecodeCmd(g *GlobalConfig) *cobra.Command {
	cfg := &DecodeConfig{}

	cmd := &cobra.Command{
		Use:   "decode [files...]",
		Short: "Decode avro payloads and print them as kdb+ values",
		Long: `Decode avro payloads and print them as kdb+ values.

Several files are decoded concurrently. With --registry each file is read as a
Confluent framed payload and its writer schema is fetched from the schema
registry configured under avro.schema-registry.url.

Example:
  avrocodec decode --schema trade.avsc --offset 5 --workers 4 a.bin b.bin`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Files = args
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), g, cmd.ErrOrStderr(), func(ctx context.Context, d *deps) error {
				return runDecode(ctx, d, cfg, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&cfg.SchemaFile, "schema", "s", "", "Avro schema file")
	cmd.Flags().StringVarP(&cfg.Format, "format", "f", "", "BINARY or JSON (defaults to avro.default-format)")
	cmd.Flags().Int64VarP(&cfg.Offset, "offset", "o", 0, "Bytes to skip at the start of each payload")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", 4, "Files decoded concurrently")
	cmd.Flags().BoolVar(&cfg.Registry, "registry", false, "Resolve Confluent framed payloads against the schema registry")
	cmd.Flags().BoolVar(&cfg.BareUnions, "bare-unions", false, "Print union values without the branch selector")

	return cmd
}

type decodeFunc func(ctx context.Context, data []byte, opts session.Options) (host.Value, error)

func runDecode(ctx context.Context, d *deps, cfg *DecodeConfig, out io.Writer) error {
	defaults, err := d.Config.Defaults()
	if err != nil {
		return err
	}
	opts, err := cfg.Options(defaults)
	if err != nil {
		return err
	}

	var decode decodeFunc
	if cfg.Registry {
		if d.Resolver == nil {
			return fmt.Errorf("schema registry is not configured")
		}
		decode = d.Resolver.Decode
	} else {
		s, err := schema.ParseFile(cfg.SchemaFile)
		if err != nil {
			return err
		}
		sess, err := d.Cache.Take(s)
		if err != nil {
			return err
		}
		defer d.Cache.Put(sess)
		decode = sess.Decode
	}

	results := make([]host.Value, len(cfg.Files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for i, file := range cfg.Files {
		eg.Go(func() error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			v, err := decode(egCtx, data, opts)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", file, err)
			}
			results[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	d.Log.Debug("decoded", zap.Int("files", len(cfg.Files)), zap.String("format", string(opts.Format)))
	for i, v := range results {
		if len(results) > 1 {
			if _, err := fmt.Fprintf(out, "%s: ", cfg.Files[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(out, host.Format(v)); err != nil {
			return err
		}
	}
	return nil
}

func newTranscodeCmd(g *GlobalConfig) *cobra.Command {
	cfg := &TranscodeConfig{}

	cmd := &cobra.Command{
		Use:   "transcode [file]",
		Short: "Decode a payload and encode it again in another format",
		Long: `Decode a payload and encode it again in another format.

The value passes through the kdb+ value model, so the output is what an
encode of the decoded value produces.

Example:
  avrocodec transcode --schema trade.avsc --from BINARY --to PRETTY_JSON trade.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.File = args[0]
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), g, cmd.ErrOrStderr(), func(ctx context.Context, d *deps) error {
				return runTranscode(ctx, d, cfg, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVarP(&cfg.SchemaFile, "schema", "s", "", "Avro schema file (required)")
	cmd.Flags().StringVar(&cfg.From, "from", "BINARY", "Input format")
	cmd.Flags().StringVar(&cfg.To, "to", "JSON", "Output format")
	cmd.Flags().Int64Var(&cfg.Offset, "offset", 0, "Bytes to skip at the start of the input")
	cmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "Output file (defaults to stdout)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runTranscode(ctx context.Context, d *deps, cfg *TranscodeConfig, out io.Writer) error {
	decodeOpts, encodeOpts, err := cfg.Options()
	if err != nil {
		return err
	}
	s, err := schema.ParseFile(cfg.SchemaFile)
	if err != nil {
		return err
	}
	sess, err := d.Cache.Take(s)
	if err != nil {
		return err
	}
	defer d.Cache.Put(sess)

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.File, err)
	}
	v, err := sess.Decode(ctx, data, decodeOpts)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", cfg.File, err)
	}
	encoded, err := sess.Encode(ctx, v, encodeOpts)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", cfg.File, err)
	}
	if encodeOpts.Format.IsText() {
		encoded = append(encoded, '\n')
	}

	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, encoded, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.Output, err)
		}
		return nil
	}
	_, err = out.Write(encoded)
	return err
}
