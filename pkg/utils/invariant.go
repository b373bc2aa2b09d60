// Invariants are conditions that must hold unless there's a bug in our own code, e.g. a deque chain whose length
// disagrees with its element count, or a caller removing nodes while a traversal is running. Violations are logged
// as errors and counted in the `invariants_total` metric so they can be alerted on, without crashing a server that
// could otherwise keep going. Builds made in test mode panic instead, so tests catch violations right away.
//
// Raising an invariant doesn't handle the condition; the caller still has to bail out (e.g. turn the operation into
// a no-op). Don't raise invariants for conditions caused by the outside world, such as a client sending a bad
// command; those are plain errors.

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The module in which this invariant occurred.
	"type",   // The type of the invariant that occurred.
})

// RaiseInvariant records a violation of `invariantType` in `module`. `args` are slog attributes.
func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// GetMetricValue returns how many times `invariantType` has been raised in `module`.
func GetMetricValue(module, invariantType string) int {
	var metric = &promclient.Metric{}
	if err := invariantsMetric.WithLabelValues(module, invariantType).Write(metric); err != nil {
		slog.Error("Failed to read invariants metric.", "error", err)
		return 0
	}
	return int(metric.Counter.GetValue())
}
