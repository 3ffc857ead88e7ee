// Package metrics instruments a query executor with Prometheus collectors.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/activegraph/internal/queryir"
)

const (
	namespace = "activegraph"
	subsystem = "query"
)

// Operation label values.
const (
	OpExecute = "execute"
	OpEach    = "each"
)

// Executor wraps a queryir.Executor and records query counts, returned
// rows, errors and latency.
type Executor struct {
	next queryir.Executor

	queries  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	rows     prometheus.Counter
	duration *prometheus.HistogramVec
}

var _ queryir.Executor = (*Executor)(nil)

// Instrument registers the executor collectors on reg, labelled with
// component, and returns the decorated executor.
func Instrument(next queryir.Executor, reg prometheus.Registerer, component string) (*Executor, error) {
	labels := prometheus.Labels{"component": component}
	e := &Executor{
		next: next,
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "total",
			ConstLabels: labels,
			Help:        "Queries sent to the executor",
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "errors_total",
			ConstLabels: labels,
			Help:        "Queries that returned an error",
		}, []string{"op"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "rows_total",
			ConstLabels: labels,
			Help:        "Result rows delivered to callers",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "duration_seconds",
			ConstLabels: labels,
			Help:        "Query latency",
			Buckets:     prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"op"}),
	}

	for _, c := range []prometheus.Collector{e.queries, e.errors, e.rows, e.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Execute forwards to the wrapped executor.
func (e *Executor) Execute(ctx context.Context, q queryir.Query) (*queryir.ResultSet, error) {
	start := time.Now()
	rs, err := e.next.Execute(ctx, q)
	e.observe(OpExecute, start, err)
	if rs != nil {
		e.rows.Add(float64(rs.Len()))
	}
	return rs, err
}

// Each forwards to the wrapped executor, counting rows as they stream.
func (e *Executor) Each(ctx context.Context, q queryir.Query, fn queryir.RowFunc) error {
	start := time.Now()
	err := e.next.Each(ctx, q, func(row queryir.Row) error {
		e.rows.Inc()
		return fn(row)
	})
	e.observe(OpEach, start, err)
	return err
}

func (e *Executor) observe(op string, start time.Time, err error) {
	e.queries.WithLabelValues(op).Inc()
	e.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		e.errors.WithLabelValues(op).Inc()
	}
}
