package core

import (
	"context"
	"time"
)

// Logger is the structured logger the service writes to. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsRecorder observes the outcome and latency of service operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// Tracer starts a span per service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation error, if any.
type TraceSpan interface {
	End(err error)
}

// AuditStatus records whether an audited operation succeeded.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one session mutation.
type AuditEntry struct {
	Operation string        `json:"operation"`
	SessionID string        `json:"session_id,omitempty"`
	Status    AuditStatus   `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// AuditRecorder receives an entry for every mutating operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// observe wraps one service operation with tracing, metrics, audit and an
// error log line. Read-only operations pass audit=false.
func (s *Service) observe(ctx context.Context, operation, sessionID string, audit bool, fn func(context.Context) error) error {
	started := s.now()
	ctx, span := s.tracer.Start(ctx, operation)
	err := fn(ctx)
	duration := s.now().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	if audit {
		entry := AuditEntry{
			Operation: operation,
			SessionID: sessionID,
			Status:    AuditStatusSuccess,
			Duration:  duration,
			Timestamp: started,
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
	}
	if err != nil {
		s.logger.Warn("operation failed", "operation", operation, "session_id", sessionID, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", operation, "session_id", sessionID, "duration", duration)
	}
	return err
}
