// Package besteffort runs side effects whose failure must never reach the
// caller: audit appends, signature documents and event publication. Failures
// are logged and counted, and control always returns to the caller.
package besteffort

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Runner executes best-effort operations.
type Runner struct {
	logger   zerolog.Logger
	failures *prometheus.CounterVec
}

// NewRunner creates a runner. A nil counter disables the metric.
func NewRunner(logger zerolog.Logger, failures *prometheus.CounterVec) *Runner {
	return &Runner{logger: logger, failures: failures}
}

// NewFailureCounter builds the counter used to observe swallowed failures.
func NewFailureCounter(namespace string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "best_effort_failures_total",
		Help:      "Side effects that failed and were not propagated",
	}, []string{"operation"})
}

// Run executes fn. It reports whether fn succeeded; the error itself is
// never returned. Panics inside fn are recovered and treated as failures.
func (r *Runner) Run(ctx context.Context, operation string, fn func(ctx context.Context) error) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.fail(operation, fmt.Errorf("panic: %v", p))
			ok = false
		}
	}()

	if err := fn(ctx); err != nil {
		r.fail(operation, err)
		return false
	}
	return true
}

func (r *Runner) fail(operation string, err error) {
	if r == nil {
		return
	}
	r.logger.Error().Err(err).Str("operation", operation).Msg("best-effort operation failed")
	if r.failures != nil {
		r.failures.WithLabelValues(operation).Inc()
	}
}
