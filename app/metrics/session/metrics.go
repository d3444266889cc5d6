// Package sessionmetrics exposes Prometheus metrics for the session module.
package sessionmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics is recorded by the session service and handlers.
type SessionMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)

	RecordScheduleBuilt(ctx context.Context, operation string, rounds, assignments, resting int)
	RecordVersionConflict(ctx context.Context, operation string)
	RecordRateLimited(ctx context.Context, topic string)

	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}

type prometheusMetrics struct {
	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	assignments      *prometheus.HistogramVec
	resting          *prometheus.HistogramVec
	rounds           *prometheus.HistogramVec
	conflicts        *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
	handlers         *prometheus.CounterVec
	handlerLatency   *prometheus.HistogramVec
}

// NewPrometheus registers the session metrics on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) SessionMetrics {
	m := &prometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "operations_total",
			Help:      "Session service operations by outcome.",
		}, []string{"service", "operation", "outcome"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "operation_duration_seconds",
			Help:      "Session service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		rounds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "rounds",
			Help:      "Rounds per produced schedule.",
			Buckets:   prometheus.LinearBuckets(0, 4, 10),
		}, []string{"operation"}),
		assignments: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "assignments",
			Help:      "Assignments per produced schedule.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
		}, []string{"operation"}),
		resting: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "resting_slots",
			Help:      "Resting player slots per produced schedule.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
		}, []string{"operation"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "version_conflicts_total",
			Help:      "Writes rejected by the optimistic version check.",
		}, []string{"operation"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "rate_limited_total",
			Help:      "Requests dropped by the per-session rate limiter.",
		}, []string{"topic"}),
		handlers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "handler_messages_total",
			Help:      "Messages processed by session handlers by outcome.",
		}, []string{"handler", "outcome"}),
		handlerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "handler_duration_seconds",
			Help:      "Session handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
	}
	reg.MustRegister(
		m.operations, m.operationLatency,
		m.rounds, m.assignments, m.resting,
		m.conflicts, m.rateLimited,
		m.handlers, m.handlerLatency,
	)
	return m
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "attempt").Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "success").Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "failure").Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.operationLatency.WithLabelValues(service, operation).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordScheduleBuilt(_ context.Context, operation string, rounds, assignments, resting int) {
	m.rounds.WithLabelValues(operation).Observe(float64(rounds))
	m.assignments.WithLabelValues(operation).Observe(float64(assignments))
	m.resting.WithLabelValues(operation).Observe(float64(resting))
}

func (m *prometheusMetrics) RecordVersionConflict(_ context.Context, operation string) {
	m.conflicts.WithLabelValues(operation).Inc()
}

func (m *prometheusMetrics) RecordRateLimited(_ context.Context, topic string) {
	m.rateLimited.WithLabelValues(topic).Inc()
}

func (m *prometheusMetrics) RecordHandlerAttempt(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "attempt").Inc()
}

func (m *prometheusMetrics) RecordHandlerSuccess(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "success").Inc()
}

func (m *prometheusMetrics) RecordHandlerFailure(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "failure").Inc()
}

func (m *prometheusMetrics) RecordHandlerDuration(_ context.Context, handler string, d time.Duration) {
	m.handlerLatency.WithLabelValues(handler).Observe(d.Seconds())
}
