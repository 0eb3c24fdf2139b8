// file: internal/config/config_test.go
package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, FallbackNone, s.CodecFallback)
	assert.Zero(t, s.ResponseSizeLimitBytes)
	assert.Zero(t, s.RequestSizeLimitBytes)
	assert.False(t, s.TensorAllowCopy)
	assert.False(t, s.FallbackActive())
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlPath := dir + "/bridge.yaml"
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
codec_fallback: json
response_size_limit_bytes: 1024
request_size_limit_bytes: 2048
tensor_allow_copy: true
`), 0o600))

	t.Setenv(EnvCodecFallback, "")
	os.Unsetenv(EnvCodecFallback)
	os.Unsetenv(EnvResponseSizeLimit)
	os.Unsetenv(EnvRequestSizeLimit)
	os.Unsetenv(EnvTorchAllowCopy)

	s, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, FallbackJSON, s.CodecFallback)
	assert.EqualValues(t, 1024, s.ResponseSizeLimitBytes)
	assert.EqualValues(t, 2048, s.RequestSizeLimitBytes)
	assert.True(t, s.TensorAllowCopy)

	t.Setenv(EnvResponseSizeLimit, "4096")
	s, err = Load(yamlPath)
	require.NoError(t, err)
	assert.EqualValues(t, 4096, s.ResponseSizeLimitBytes, "env must win over the YAML file")
}

func TestLoad_UnparseableCeilingDisablesIt(t *testing.T) {
	t.Setenv(EnvResponseSizeLimit, "not-a-number")
	t.Setenv(EnvRequestSizeLimit, "12MB")

	s, err := Load("")
	require.NoError(t, err)
	assert.Zero(t, s.ResponseSizeLimitBytes)
	assert.Zero(t, s.RequestSizeLimitBytes)
}

func TestLoad_MissingYAMLFileIsNotAnError(t *testing.T) {
	s, err := Load("/nonexistent/path/bridge.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}
