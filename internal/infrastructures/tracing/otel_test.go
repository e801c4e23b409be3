package tracing

import (
	"context"
	"testing"

	"github.com/MelvinKr/skybh/crew-compliance/internal/config"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "localhost:4317"},
		{"  ", "localhost:4317"},
		{"otel-collector", "otel-collector:4317"},
		{"otel-collector:4317", "otel-collector:4317"},
		{"http://jaeger:4317", "jaeger:4317"},
		{"https://collector.example.com/v1/traces", "collector.example.com:4317"},
	}

	for _, tc := range tests {
		if got := normalizeEndpoint(tc.in); got != tc.want {
			t.Fatalf("normalizeEndpoint(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestInit_DisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), "crew-compliance", "test", config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
}
