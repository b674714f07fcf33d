package avrocli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sokol111/avrocodec/pkg/avro/encoding"
	"github.com/Sokol111/avrocodec/pkg/avro/schema"
	"github.com/Sokol111/avrocodec/pkg/avro/session"
	"github.com/Sokol111/avrocodec/pkg/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteSchema = `{
	"type": "record",
	"name": "Quote",
	"namespace": "test",
	"fields": [
		{"name": "sym", "type": "string"},
		{"name": "bid", "type": "double"},
		{"name": "size", "type": ["null", "long"]}
	]
}`

func quote(sym string, size host.Value) host.Dict {
	return host.NewRecord([]string{"sym", "bid", "size"}, host.Chars(sym), host.Float(1.25), size)
}

type fixture struct {
	dir        string
	schemaFile string
	sess       *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	schemaFile := filepath.Join(dir, "quote.avsc")
	require.NoError(t, os.WriteFile(schemaFile, []byte(quoteSchema), 0o600))
	s, err := schema.Parse(quoteSchema)
	require.NoError(t, err)
	sess, err := session.New(s)
	require.NoError(t, err)
	return &fixture{dir: dir, schemaFile: schemaFile, sess: sess}
}

func (f *fixture) write(t *testing.T, name string, v host.Value, opts session.Options, prefix ...byte) string {
	t.Helper()
	data, err := f.sess.Encode(context.Background(), v, opts)
	require.NoError(t, err)
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, append(prefix, data...), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file=", "--log-level=error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSchemaCommands(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	printed, _, err := execute(t, "schema", "print", "--schema", f.schemaFile)
	require.NoError(t, err)
	fingerprint, _, err := execute(t, "schema", "fingerprint", "--schema", f.schemaFile)
	require.NoError(t, err)

	// Assert
	assert.True(t, json.Valid([]byte(printed)))
	assert.Contains(t, printed, "Quote")
	assert.Contains(t, printed, "\n  ")
	assert.Equal(t, f.sess.Fingerprint()+"\n", fingerprint)
}

func TestDecode_SingleFile(t *testing.T) {
	// Arrange
	f := newFixture(t)
	v := quote("ab", host.NewUnion(1, host.Long(10)))
	path := f.write(t, "q.bin", v, session.DefaultOptions())

	// Act
	out, _, err := execute(t, "decode", "--schema", f.schemaFile, path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, host.Format(v)+"\n", out)
}

func TestDecode_ManyFilesWithOffset(t *testing.T) {
	// Arrange
	f := newFixture(t)
	var paths, want []string
	for i, sym := range []string{"a", "b", "c", "d", "e"} {
		v := quote(sym, host.NewUnion(1, host.Long(int64(i))))
		path := f.write(t, sym+".bin", v, session.DefaultOptions(), encoding.Frame(7, nil)...)
		paths = append(paths, path)
		want = append(want, path+": "+host.Format(v))
	}

	// Act
	args := append([]string{"--stats", "decode", "--schema", f.schemaFile, "--offset", "5", "--workers", "2"}, paths...)
	out, stats, err := execute(t, args...)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, strings.Join(want, "\n")+"\n", out)
	assert.Contains(t, stats, "avrocodec.decode.count 5")
}

func TestDecode_JSONWithBareUnions(t *testing.T) {
	// Arrange
	f := newFixture(t)
	path := f.write(t, "q.json", quote("ab", host.NewUnion(0, host.Null{})), session.Options{Format: encoding.JSON})

	// Act
	out, _, err := execute(t, "decode", "--schema", f.schemaFile, "--format", "JSON", "--bare-unions", path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, host.Format(quote("ab", host.Null{}))+"\n", out)
}

func TestTranscode(t *testing.T) {
	// Arrange
	f := newFixture(t)
	path := f.write(t, "q.bin", quote("ab", host.NewUnion(1, host.Long(3))), session.DefaultOptions())
	output := filepath.Join(f.dir, "q.json")

	// Act
	out, _, err := execute(t, "transcode", "--schema", f.schemaFile, "--to", "JSON", path)
	require.NoError(t, err)
	_, _, err = execute(t, "transcode", "--schema", f.schemaFile, "--to", "PRETTY_JSON", "--output", output, path)
	require.NoError(t, err)

	// Assert
	const want = `{"sym": "ab", "bid": 1.25, "size": {"long": 3}}`
	assert.JSONEq(t, want, out)
	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, want, string(written))
	assert.Contains(t, string(written), "\n  ")
}

func TestCommandErrors(t *testing.T) {
	f := newFixture(t)
	bad := filepath.Join(f.dir, "bad.bin")
	require.NoError(t, os.WriteFile(bad, []byte{0x02}, 0o600))

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "no schema source",
			args:    []string{"decode", bad},
			message: "either --schema or --registry is required",
		},
		{
			name:    "registry not configured",
			args:    []string{"decode", "--registry", bad},
			message: "schema registry is not configured",
		},
		{
			name:    "missing input",
			args:    []string{"decode", "--schema", f.schemaFile, filepath.Join(f.dir, "none.bin")},
			message: "failed to read",
		},
		{
			name:    "truncated payload",
			args:    []string{"decode", "--schema", f.schemaFile, bad},
			message: "failed to decode",
		},
		{
			name:    "unknown format",
			args:    []string{"transcode", "--schema", f.schemaFile, "--to", "XML", bad},
			message: "Unsupported avro encoding type 'XML'",
		},
		{
			name:    "pretty json input",
			args:    []string{"decode", "--schema", f.schemaFile, "--format", "PRETTY_JSON", bad},
			message: "Unsupported avro decoding type 'PRETTY_JSON'",
		},
		{
			name:    "negative offset",
			args:    []string{"decode", "--schema", f.schemaFile, "--offset", "-1", bad},
			message: "offset must not be negative",
		},
		{
			name:    "bad log level",
			args:    []string{"--log-level=loud", "decode", "--schema", f.schemaFile, bad},
			message: "invalid log level 'loud'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDecodeConfig_PrettyDefaultReadsJSON(t *testing.T) {
	// Arrange
	cfg := &DecodeConfig{Files: []string{"a.json"}}
	defaults := session.Options{Format: encoding.PrettyJSON}

	// Act
	opts, err := cfg.Options(defaults)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, encoding.JSON, opts.Format)
}
