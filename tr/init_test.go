package tr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestParseOtelEnvHeaders(t *testing.T) {
	got := parseOtelEnvHeaders("authorization=Bearer abc, x-team=video ,,")
	assert.Equal(t, map[string]string{
		"authorization": "Bearer abc",
		"x-team":        "video",
	}, got)
}

func TestIsLoopbackAddress(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"127.0.0.1:4317", true},
		{"http://127.0.0.1:4317", true},
		{"10.0.0.5:4317", true},
		{"8.8.8.8:4317", false},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := isLoopbackAddress(tt.endpoint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	require.NoError(t, Init(context.Background(), Config{ServiceName: "test"}))
	Shutdown()
}

func TestEnd(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(rec))
	tracer := provider.Tracer("test")

	func() {
		var err error
		_, span := tracer.Start(context.Background(), "ok")
		defer End(span, &err)
	}()
	func() {
		err := errors.New("boom")
		_, span := tracer.Start(context.Background(), "failed")
		defer End(span, &err)
	}()

	func() {
		err := fmt.Errorf("resolving: %w", context.Canceled)
		_, span := tracer.Start(context.Background(), "canceled")
		defer End(span, &err)
	}()

	spans := rec.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)
	assert.Equal(t, codes.Unset, spans[2].Status().Code)
	assert.Empty(t, spans[2].Events())
}
