package core

import (
	"context"
	"log/slog"
	"time"
)

// Logger is the structured logging surface used by the service. Arguments
// follow the key-value convention of log/slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsRecorder aggregates per-operation outcome counters and latencies.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan terminates a span, recording the operation outcome.
type TraceSpan interface {
	End(err error)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// SlogLogger adapts a *slog.Logger to the service Logger interface.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps logger; a nil logger falls back to slog.Default().
func NewSlogLogger(logger *slog.Logger) SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogLogger{l: logger}
}

func (s SlogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s SlogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s SlogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s SlogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
