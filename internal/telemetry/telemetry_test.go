package telemetry

import (
	"context"
	"testing"

	"github.com/kozaktomas/face-portal/internal/config"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), "face-portal", config.TelemetryConfig{OTelEnabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenDisabled(t *testing.T) {
	cfg := config.TelemetryConfig{OTelEndpoint: "http://localhost:4318", OTelEnabled: false}
	shutdown, err := Setup(context.Background(), "face-portal", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProvider(t *testing.T) {
	// Non-routable address so nothing is exported.
	cfg := config.TelemetryConfig{OTelEndpoint: "http://192.0.2.1:4318", OTelEnabled: true}
	shutdown, err := Setup(context.Background(), "face-portal", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
