package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"courseplatform/internal/domain"
)

var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Total number of object storage operations",
		},
		[]string{"backend", "op", "status"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Object storage operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal, OperationDuration)
}

// Instrumented records Prometheus metrics around another backend.
type Instrumented struct {
	next    Storage
	backend string
}

func NewInstrumented(next Storage, backend string) *Instrumented {
	return &Instrumented{next: next, backend: backend}
}

// Unwrap returns the decorated backend.
func (s *Instrumented) Unwrap() Storage { return s.next }

func (s *Instrumented) observe(op string, start time.Time, err error) {
	OperationsTotal.WithLabelValues(s.backend, op, status(err)).Inc()
	OperationDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrStorage):
		return "not_found"
	default:
		return "error"
	}
}

func (s *Instrumented) Upload(ctx context.Context, key string, r io.Reader, size int64) (err error) {
	defer func(start time.Time) { s.observe("upload", start, err) }(time.Now())
	return s.next.Upload(ctx, key, r, size)
}

func (s *Instrumented) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, key)
}

func (s *Instrumented) GetStream(ctx context.Context, key, rangeHeader string) (resp *StreamResponse, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.next.GetStream(ctx, key, rangeHeader)
}

func (s *Instrumented) PresignedURL(ctx context.Context, key string) (u string, err error) {
	defer func(start time.Time) { s.observe("presign", start, err) }(time.Now())
	return s.next.PresignedURL(ctx, key)
}

func (s *Instrumented) CombineChunks(ctx context.Context, finalKey string, partKeys []string) (err error) {
	defer func(start time.Time) { s.observe("combine", start, err) }(time.Now())
	return s.next.CombineChunks(ctx, finalKey, partKeys)
}
