package tracer

import (
	"context"
	"testing"

	"messenger-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestInitTracer_DisabledIsNoop(t *testing.T) {
	shutdown := InitTracer(config.TracingConfig{Enabled: false})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewResource_ServiceName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "explicit", in: "chat-edge", want: "chat-edge"},
		{name: "default", in: "", want: "messenger-backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newResource(tt.in)
			value, ok := res.Set().Value(semconv.ServiceNameKey)
			require.True(t, ok)
			assert.Equal(t, tt.want, value.AsString())
		})
	}
}
