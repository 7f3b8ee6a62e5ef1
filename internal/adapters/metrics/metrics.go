// Package metrics records build metrics with Prometheus and serves them over HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.trai.ch/noderun/internal/core/domain"
)

const namespace = "noderun"

// Recorder implements ports.Metrics on a private Prometheus registry.
type Recorder struct {
	registry *prometheus.Registry

	nodesTotal    *prometheus.CounterVec
	nodeDuration  *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	textBusyRetry prometheus.Counter
	poolUsage     *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		nodesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "runner",
				Name:      "nodes_total",
				Help:      "Total number of finished nodes by kind, state and exit code",
			},
			[]string{"kind", "state", "exit_code"},
		),
		nodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "runner",
				Name:      "node_duration_seconds",
				Help:      "Node task duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"kind", "state"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),
		textBusyRetry: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "text_file_busy_retries_total",
				Help:      "Command spawns retried after ETXTBSY",
			},
		),
		poolUsage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "slots_in_use",
				Help:      "Worker pool slots held by running tasks",
			},
			[]string{"resource"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// NodeFinished records a finished node task.
func (r *Recorder) NodeFinished(kind string, state domain.NodeState, exitCode int, elapsed time.Duration) {
	r.nodesTotal.WithLabelValues(kind, string(state), strconv.Itoa(exitCode)).Inc()
	r.nodeDuration.WithLabelValues(kind, string(state)).Observe(elapsed.Seconds())
}

// CacheLookup records a cache lookup.
func (r *Recorder) CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}

// TextFileBusyRetry records one spawn retry.
func (r *Recorder) TextFileBusyRetry() {
	r.textBusyRetry.Inc()
}

// PoolUsage records the resources held by running tasks.
func (r *Recorder) PoolUsage(usage domain.ResInfo) {
	r.poolUsage.WithLabelValues("cpu").Set(float64(usage.CPU))
	r.poolUsage.WithLabelValues("io").Set(float64(usage.IO))
	r.poolUsage.WithLabelValues("download").Set(float64(usage.Download))
	r.poolUsage.WithLabelValues("test").Set(float64(usage.Test))
}
