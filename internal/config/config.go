// Package config handles bridge startup configuration: four variables read
// once from the environment before the loop starts, plus an optional YAML
// override file for local development.
// file: internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names. Matching the Python bridge's names keeps
// client-side tooling (which sets these before spawning the process)
// unchanged across the rewrite.
const (
	EnvCodecFallback     = "TYWRAP_CODEC_FALLBACK"
	EnvResponseSizeLimit = "TYWRAP_MAX_RESPONSE_BYTES"
	EnvRequestSizeLimit  = "TYWRAP_MAX_REQUEST_BYTES"
	EnvTorchAllowCopy    = "TYWRAP_TORCH_ALLOW_COPY"
)

// CodecFallback selects between binary (Arrow) and JSON envelope encoders.
type CodecFallback string

// Supported fallback modes.
const (
	FallbackNone CodecFallback = "none"
	FallbackJSON CodecFallback = "json"
)

// Settings holds the bridge's startup configuration. All fields are read
// once before the framed I/O loop (internal/protocol) starts processing
// requests; nothing here is mutated at runtime.
type Settings struct {
	// CodecFallback, when FallbackJSON, forces every binary-capable envelope
	// encoder (ndarray, dataframe, series) to emit its JSON variant.
	CodecFallback CodecFallback `yaml:"codec_fallback"`

	// ResponseSizeLimitBytes rejects an encoded response exceeding this many
	// UTF-8 bytes with PayloadTooLargeError. Zero or negative disables the
	// ceiling.
	ResponseSizeLimitBytes int64 `yaml:"response_size_limit_bytes"`

	// RequestSizeLimitBytes rejects an input line exceeding this many UTF-8
	// bytes with RequestTooLargeError before it is parsed. Zero or negative
	// disables the ceiling.
	RequestSizeLimitBytes int64 `yaml:"request_size_limit_bytes"`

	// TensorAllowCopy permits the tensor encoder to perform a device-to-host
	// or contiguity copy rather than failing on a non-CPU or non-contiguous
	// tensor.
	TensorAllowCopy bool `yaml:"tensor_allow_copy"`
}

// Default returns the configuration a bridge starts with when neither an
// environment variable nor a YAML override file is present: no ceilings, no
// fallback, no implicit tensor copies.
func Default() Settings {
	return Settings{
		CodecFallback:          FallbackNone,
		ResponseSizeLimitBytes: 0,
		RequestSizeLimitBytes:  0,
		TensorAllowCopy:        false,
	}
}

// Load builds Settings starting from Default, applying a YAML file at
// yamlPath if it exists (yamlPath may be empty), and finally applying
// environment variables, which always take precedence over the file. All
// sources are read once, before the loop starts, regardless of which one
// is more convenient for a given deployment.
func Load(yamlPath string) (Settings, error) {
	settings := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err == nil {
			if err := yaml.Unmarshal(data, &settings); err != nil {
				return Settings{}, err
			}
		} else if !os.IsNotExist(err) {
			return Settings{}, err
		}
	}

	applyEnv(&settings)
	return settings, nil
}

func applyEnv(s *Settings) {
	if v, ok := os.LookupEnv(EnvCodecFallback); ok {
		if strings.EqualFold(v, string(FallbackJSON)) {
			s.CodecFallback = FallbackJSON
		} else {
			s.CodecFallback = FallbackNone
		}
	}
	// An unparseable ceiling disables that ceiling rather than failing
	// startup, matching the Python bridge's lenient parsing.
	if v, ok := os.LookupEnv(EnvResponseSizeLimit); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.ResponseSizeLimitBytes = n
		} else {
			s.ResponseSizeLimitBytes = 0
		}
	}
	if v, ok := os.LookupEnv(EnvRequestSizeLimit); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.RequestSizeLimitBytes = n
		} else {
			s.RequestSizeLimitBytes = 0
		}
	}
	if v, ok := os.LookupEnv(EnvTorchAllowCopy); ok {
		lv := strings.ToLower(v)
		s.TensorAllowCopy = lv == "1" || lv == "true" || lv == "yes"
	}
}

// FallbackActive reports whether the JSON fallback policy is in effect.
func (s Settings) FallbackActive() bool {
	return s.CodecFallback == FallbackJSON
}
