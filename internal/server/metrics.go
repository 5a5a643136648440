package server

import (
	"context"
	"time"

	v1 "github.com/moviehub/catalog/api/catalog/v1"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal counts handled operations.
	// Labels: operation, reason (OK, a reply reason, or a transport error reason)
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Total catalog operations by outcome",
	}, []string{"operation", "reason"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "catalog",
		Subsystem: "server",
		Name:      "request_duration_seconds",
		Help:      "Catalog operation latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})
)

// MetricsMiddleware records a counter and a latency histogram per operation.
func MetricsMiddleware() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			operation := "unknown"
			if tr, ok := transport.FromServerContext(ctx); ok {
				operation = tr.Operation()
			}

			start := time.Now()
			reply, err := handler(ctx, req)
			requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
			requestsTotal.WithLabelValues(operation, outcome(reply, err)).Inc()
			return reply, err
		}
	}
}

func outcome(reply interface{}, err error) string {
	if err != nil {
		return errors.Reason(err)
	}
	if r, ok := reply.(*v1.Reply); ok && !r.Success {
		return r.Reason
	}
	return "OK"
}
