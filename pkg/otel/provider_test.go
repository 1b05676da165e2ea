package otel_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/core/config"
	"github.com/easyops/studybuddy-go/pkg/otel"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := otel.NewProvider(context.Background(), config.ObservabilityConfig{
		Enabled:    false,
		SampleRate: 1.0,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if provider.Tracer() == nil {
		t.Fatal("expected noop tracer, got nil")
	}
	if provider.Metrics() == nil {
		t.Fatal("expected noop metrics, got nil")
	}

	// Noop surfaces must be callable.
	ctx, span := provider.Tracer().Start(context.Background(), "test.span")
	span.End()
	if ctx == nil {
		t.Fatal("expected context from noop span start")
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}

func TestNewProvider_InvalidSampleRate(t *testing.T) {
	_, err := otel.NewProvider(context.Background(), config.ObservabilityConfig{
		Enabled:    true,
		SampleRate: 1.5,
	})
	if !errors.Is(err, otel.ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}
}

func TestNewProvider_EnabledWithoutEndpoints(t *testing.T) {
	// No endpoints configured: tracing stays off, metrics fall back to
	// the in-memory implementation.
	provider, err := otel.NewProvider(context.Background(), config.ObservabilityConfig{
		Enabled:    true,
		SampleRate: 1.0,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer provider.Shutdown(context.Background())

	if _, ok := provider.Metrics().(*otel.InMemoryMetrics); !ok {
		t.Fatalf("expected in-memory metrics, got %T", provider.Metrics())
	}
}

func TestWithTrace_NoSpan(t *testing.T) {
	logger := slog.Default()

	got := otel.WithTrace(context.Background(), logger)
	if got != logger {
		t.Fatal("expected logger unchanged without an active span")
	}
}

func TestWithTrace_NilLogger(t *testing.T) {
	if otel.WithTrace(context.Background(), nil) == nil {
		t.Fatal("expected a usable logger for nil input")
	}
}
