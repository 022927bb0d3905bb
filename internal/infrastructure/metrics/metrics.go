// Package metrics defines the Prometheus collectors exported on /metrics.
// Collectors are registered with the default registry at package init.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/connectfood/core/internal/domain"
)

const namespace = "connectfood"

// AuthenticationsTotal counts authentication attempts made by the auth
// middleware.
// Label:
//   - outcome: authenticated, no_header, bad_scheme, invalid_token, unknown_subject, error
var AuthenticationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentications_total",
		Help:      "Total number of bearer authentication attempts by outcome.",
	},
	[]string{"outcome"},
)

// UserOperationsTotal counts user service operations.
// Labels:
//   - operation: create, update, get, list, delete, change_password
//   - result: ok, not_found, conflict, version_conflict, invalid, error
var UserOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_operations_total",
		Help:      "Total number of user operations by result.",
	},
	[]string{"operation", "result"},
)

// HTTPRequestDuration observes request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// Result classifies an operation error into a result label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmailAlreadyExists), errors.Is(err, domain.ErrLoginAlreadyExists):
		return "conflict"
	case errors.Is(err, domain.ErrVersionConflict):
		return "version_conflict"
	case domain.IsValidation(err):
		return "invalid"
	default:
		return "error"
	}
}
