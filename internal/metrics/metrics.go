package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "tmpcluster_"

	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelCall      = "call"
	LabelSource    = "source"
	LabelKind      = "kind"
)

// Operation result label values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Collector holds the Prometheus metrics of the orchestrator.
// All methods are no-ops on a nil Collector.
type Collector struct {
	operationsTotal     *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	remoteCallsTotal    *prometheus.CounterVec
	remoteRetriesTotal  *prometheus.CounterVec
	clusterStatusTotal  *prometheus.CounterVec
	unrecognizedStates  *prometheus.CounterVec
	snapshotReloadTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewCollector creates a collector on a private registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	return newCollector(reg, reg)
}

// NewCollectorWithRegisterer creates a collector registered on registerer.
func NewCollectorWithRegisterer(registerer prometheus.Registerer) *Collector {
	return newCollector(registerer, nil)
}

func newCollector(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Collector {
	c := &Collector{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "operations_total",
				Help: "Total number of cluster operations by result",
			},
			[]string{LabelOperation, LabelStatus},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "operation_duration_seconds",
				Help:    "Duration of cluster operations in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{LabelOperation},
		),
		remoteCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "remote_calls_total",
				Help: "Total number of management API calls by result",
			},
			[]string{LabelCall, LabelStatus},
		),
		remoteRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "remote_retries_total",
				Help: "Total number of retried management API calls",
			},
			[]string{LabelCall},
		),
		clusterStatusTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cluster_status_total",
				Help: "Cluster status query results",
			},
			[]string{LabelStatus},
		),
		unrecognizedStates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "unrecognized_state_total",
				Help: "Provisioning states outside the known ARM vocabulary",
			},
			[]string{LabelSource},
		),
		snapshotReloadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_reloads_total",
				Help: "Settings and template reloads by result",
			},
			[]string{LabelKind, LabelStatus},
		),
		gatherer: gatherer,
	}

	registerer.MustRegister(
		c.operationsTotal,
		c.operationDuration,
		c.remoteCallsTotal,
		c.remoteRetriesTotal,
		c.clusterStatusTotal,
		c.unrecognizedStates,
		c.snapshotReloadTotal,
	)
	return c
}

func statusLabel(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// ObserveOperation records one completed public operation.
func (c *Collector) ObserveOperation(operation string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	c.operationsTotal.WithLabelValues(operation, statusLabel(err)).Inc()
	c.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveRemoteCall records the final result of one remote call.
func (c *Collector) ObserveRemoteCall(call string, err error) {
	if c == nil {
		return
	}
	c.remoteCallsTotal.WithLabelValues(call, statusLabel(err)).Inc()
}

// IncRemoteRetries records one retry of a remote call.
func (c *Collector) IncRemoteRetries(call string) {
	if c == nil {
		return
	}
	c.remoteRetriesTotal.WithLabelValues(call).Inc()
}

// IncClusterStatus records a status query result.
func (c *Collector) IncClusterStatus(status string) {
	if c == nil {
		return
	}
	c.clusterStatusTotal.WithLabelValues(status).Inc()
}

// IncUnrecognizedState records a provisioning state outside the known vocabulary.
func (c *Collector) IncUnrecognizedState(source string) {
	if c == nil {
		return
	}
	c.unrecognizedStates.WithLabelValues(source).Inc()
}

// ObserveReload records a settings or template reload.
func (c *Collector) ObserveReload(kind string, err error) {
	if c == nil {
		return
	}
	c.snapshotReloadTotal.WithLabelValues(kind, statusLabel(err)).Inc()
}

// Handler serves the collector's registry, or the default gatherer when the
// collector was registered elsewhere.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// OperationsTotal returns the operations counter for one operation and result.
func (c *Collector) OperationsTotal(operation, status string) prometheus.Counter {
	return c.operationsTotal.WithLabelValues(operation, status)
}

// RemoteRetries returns the retry counter of one remote call.
func (c *Collector) RemoteRetries(call string) prometheus.Counter {
	return c.remoteRetriesTotal.WithLabelValues(call)
}

// UnrecognizedStates returns the unrecognized state counter of one source.
func (c *Collector) UnrecognizedStates(source string) prometheus.Counter {
	return c.unrecognizedStates.WithLabelValues(source)
}

// SnapshotReloads returns the reload counter of one kind and result.
func (c *Collector) SnapshotReloads(kind, status string) prometheus.Counter {
	return c.snapshotReloadTotal.WithLabelValues(kind, status)
}
