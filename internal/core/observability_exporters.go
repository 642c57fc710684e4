package core

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation counters and latency
// histograms to a Prometheus registry.
type PrometheusMetricsRecorder struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	crossesTotal      *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder creates the collectors and registers them with
// registry.
func NewPrometheusMetricsRecorder(registry prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	r := &PrometheusMetricsRecorder{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mendel_operations_total",
				Help: "Total number of service operations",
			},
			[]string{"operation", "status"}, // status: success, error
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "mendel_operation_duration_seconds",
				Help: "Time taken by service operations",
				// 100µs to ~100ms; crosses are CPU bound and storage is local.
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 11),
			},
			[]string{"operation"},
		),
		crossesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mendel_crosses_total",
				Help: "Total number of submitted crosses by arity",
			},
			[]string{"arity"},
		),
	}
	for _, c := range []prometheus.Collector{r.operationsTotal, r.operationDuration, r.crossesTotal} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operationsTotal.WithLabelValues(operation, status).Inc()
	r.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveCross counts a successful cross submission.
func (r *PrometheusMetricsRecorder) ObserveCross(arity string) {
	r.crossesTotal.WithLabelValues(arity).Inc()
}

// crossObserver is implemented by recorders that also count crosses.
type crossObserver interface {
	ObserveCross(arity string)
}

// JSONTraceEntry represents a serialized trace span emitted by JSONTraceTracer.
type JSONTraceEntry struct {
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceTracer serializes spans to a writer and retains them for inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	entries []JSONTraceEntry
	enc     *json.Encoder
}

// NewJSONTracer constructs a tracer that writes spans as JSON lines to w.
// A nil writer only retains the spans.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &JSONTraceTracer{enc: enc}
}

// Entries returns a copy of all recorded spans.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]JSONTraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{tracer: t, operation: operation, started: time.Now().UTC()}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	status := "success"
	var errMsg string
	if err != nil {
		status = "error"
		errMsg = err.Error()
	}
	ended := time.Now().UTC()
	entry := JSONTraceEntry{
		Operation:  s.operation,
		Status:     status,
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		Error:      errMsg,
		StartedAt:  s.started,
		EndedAt:    ended,
	}

	s.tracer.mu.Lock()
	s.tracer.entries = append(s.tracer.entries, entry)
	if s.tracer.enc != nil {
		_ = s.tracer.enc.Encode(entry)
	}
	s.tracer.mu.Unlock()
}
