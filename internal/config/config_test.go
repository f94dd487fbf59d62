package config_test

import (
	"testing"

	"github.com/jhartung/tripvault/internal/config"
	"github.com/stretchr/testify/require"
)

// TestLoad_defaults verifies that optional env vars fall back to their defaults
// when only the required DATA_PATH is provided.
func TestLoad_defaults(t *testing.T) {
	t.Setenv("DATA_PATH", "/var/lib/tripvault/tripvault.db")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("MAX_BODY_BYTES", "")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "/var/lib/tripvault/tripvault.db", cfg.DataPath)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.EqualValues(t, 1048576, cfg.MaxBodyBytes)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	t.Setenv("DATA_PATH", "/tmp/test.db")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("MAX_BODY_BYTES", "2097152")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "/tmp/test.db", cfg.DataPath)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.EqualValues(t, 2097152, cfg.MaxBodyBytes)
}

// TestLoad_missingRequired verifies that an error is returned when DATA_PATH
// is not set, and that the error message names the missing variable.
func TestLoad_missingRequired(t *testing.T) {
	t.Setenv("DATA_PATH", "")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "DATA_PATH")
}

// TestLoad_badMaxBodyBytes verifies that a non-numeric MAX_BODY_BYTES is
// rejected instead of silently defaulting.
func TestLoad_badMaxBodyBytes(t *testing.T) {
	t.Setenv("DATA_PATH", "/tmp/test.db")
	t.Setenv("MAX_BODY_BYTES", "lots")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "MAX_BODY_BYTES")
}
