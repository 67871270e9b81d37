package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsListen)
	assert.Empty(t, cfg.StorePath)
	assert.False(t, cfg.TracingEnabled)
	assert.Equal(t, "stdout", cfg.TracingExporter)
	assert.Equal(t, 1.0, cfg.TracingSampleRatio)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PROJECTOR_LOG_LEVEL", "debug")
	t.Setenv("PROJECTOR_LOG_FORMAT", "json")
	t.Setenv("PROJECTOR_METRICS_LISTEN", ":9102")
	t.Setenv("PROJECTOR_STORE_PATH", "/tmp/runs.db")
	t.Setenv("PROJECTOR_TRACING_ENABLED", "true")
	t.Setenv("PROJECTOR_TRACING_EXPORTER", "otlp")
	t.Setenv("PROJECTOR_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("PROJECTOR_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":9102", cfg.MetricsListen)
	assert.Equal(t, "/tmp/runs.db", cfg.StorePath)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, "otlp", cfg.TracingExporter)
	assert.Equal(t, "collector:4317", cfg.TracingEndpoint)
	assert.Equal(t, 0.25, cfg.TracingSampleRatio)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("PROJECTOR_TRACING_SAMPLE_RATIO", "not-a-number")

	_, err := FromEnv()
	require.Error(t, err)
}
