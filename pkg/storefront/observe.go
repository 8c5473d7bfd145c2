package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics holds prometheus metrics registered for the storefront client.
type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopsearch",
			Subsystem: "storefront",
			Name:      "operations_total",
			Help:      "Total storefront client operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shopsearch",
			Subsystem: "storefront",
			Name:      "operation_duration_seconds",
			Help:      "Storefront client operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("storefront: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("storefront: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for client operations.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *clientMetrics
	if reg != nil {
		var err error
		m, err = newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// observe records one client operation. Cancelled calls are counted under
// their own status and are not logged as failures.
func (o *observer) observe(op string, start time.Time, err error, attrs ...any) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := operationStatus(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	args := append([]any{"op", op, "duration", dur}, attrs...)
	switch status {
	case statusError:
		o.logger.Warn("operation failed", append(args, "error", err)...)
	case statusCanceled:
		o.logger.Debug("operation canceled", args...)
	default:
		o.logger.Debug("operation completed", args...)
	}
}

const (
	statusOK       = "ok"
	statusError    = "error"
	statusCanceled = "canceled"
)

func operationStatus(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, context.Canceled):
		return statusCanceled
	default:
		return statusError
	}
}
