// Package metrics provides Prometheus metrics for helpsync.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"helpsync/types"
)

var (
	// RemoteCallsTotal counts remote call attempts by method and status code.
	RemoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpsync",
			Name:      "remote_calls_total",
			Help:      "Total number of remote API calls",
		},
		[]string{"method", "status"},
	)

	// RemoteCallDuration measures remote call latency.
	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helpsync",
			Name:      "remote_call_duration_seconds",
			Help:      "Duration of remote API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// SyncItemsTotal counts bulk operation items by outcome.
	SyncItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpsync",
			Name:      "sync_items_total",
			Help:      "Total number of articles processed by bulk operations",
		},
		[]string{"operation", "outcome"},
	)

	// ComparisonArticles reports the partition sizes of the latest comparison.
	ComparisonArticles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "helpsync",
			Name:      "comparison_articles",
			Help:      "Articles per partition in the latest comparison",
		},
		[]string{"partition"},
	)

	// ExcludedArticles reports how many source articles were classified as noise.
	ExcludedArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "helpsync",
			Name:      "excluded_articles",
			Help:      "Source articles excluded as test or empty in the latest fetch",
		},
	)
)

// RecordCall records one remote call; it satisfies calllog.Sink through calllog.SinkFunc.
func RecordCall(entry types.CallLogEntry) {
	status := "error"
	if entry.StatusCode != 0 {
		status = strconv.Itoa(entry.StatusCode)
	}
	RemoteCallsTotal.WithLabelValues(entry.Method, status).Inc()
	RemoteCallDuration.WithLabelValues(entry.Method).Observe(entry.Duration.Seconds())
}

// RecordComparison records partition sizes.
func RecordComparison(c types.ComparisonResult) {
	ComparisonArticles.WithLabelValues("existing").Set(float64(len(c.Existing)))
	ComparisonArticles.WithLabelValues("new").Set(float64(len(c.New)))
	ComparisonArticles.WithLabelValues("orphaned").Set(float64(len(c.Orphaned)))
}

// RecordExcluded records the excluded article count.
func RecordExcluded(n int) {
	ExcludedArticles.Set(float64(n))
}

// Reports is a report sink that counts items by outcome.
type Reports struct{}

// Save implements the workflow report sink.
func (Reports) Save(_ context.Context, r types.SyncReport) error {
	SyncItemsTotal.WithLabelValues(string(r.Operation), string(types.OutcomeSuccess)).Add(float64(r.SuccessCount))
	SyncItemsTotal.WithLabelValues(string(r.Operation), string(types.OutcomeFailure)).Add(float64(r.FailureCount))
	return nil
}
