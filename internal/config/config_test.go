package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("WS_WRITE_WAIT", "not-a-duration")
	t.Setenv("HISTORY_MAX_LIMIT", "50")

	cfg := Load()

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.Realtime.WriteWait)
	assert.Equal(t, 50, cfg.History.MaxLimit)
	assert.Equal(t, 100, cfg.History.DefaultLimit)
}

func TestLoad_StoreDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("WS_PONG_WAIT", "5s")

	cfg := Load()

	assert.Equal(t, "memory", cfg.App.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.Realtime.PongWait)
}

func TestLoad_Tracing(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4318")

	cfg := Load()

	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "jaeger:4318", cfg.Tracing.Endpoint)
	assert.Equal(t, "messenger-backend", cfg.Tracing.ServiceName)
}
