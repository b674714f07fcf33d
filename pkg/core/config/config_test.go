package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewViper_ReadsFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
avro:
  session-cache-size: 32
  default-format: JSON
logger:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Act
	v, err := NewViper(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 32, v.GetInt("avro.session-cache-size"))
	assert.Equal(t, "JSON", v.GetString("avro.default-format"))
	assert.Equal(t, "debug", v.GetString("logger.level"))
}

func TestNewViper_EnvOverride(t *testing.T) {
	// Arrange
	t.Setenv("AVROCODEC_AVRO_DEFAULT_FORMAT", "BINARY")

	// Act
	v, err := NewViper("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "BINARY", v.GetString("avro.default-format"))
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(envConfigFile, "/etc/avrocodec.yaml")
	path := "x.yaml"

	assert.Equal(t, FilePath("/etc/avrocodec.yaml"), resolveConfigPath(&viperConfig{}))
	assert.Equal(t, FilePath("x.yaml"), resolveConfigPath(&viperConfig{configPath: &path}))
	assert.Equal(t, FilePath(""), resolveConfigPath(&viperConfig{noConfigFile: true}))
}

func TestLoadDotEnv(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AVROCODEC_TEST_DOTENV=yes\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("AVROCODEC_TEST_DOTENV") })

	// Act
	loaded := LoadDotEnv(path)
	missing := LoadDotEnv(filepath.Join(t.TempDir(), "none.env"))

	// Assert
	assert.True(t, loaded)
	assert.False(t, missing)
	assert.Equal(t, "yes", os.Getenv("AVROCODEC_TEST_DOTENV"))
}
