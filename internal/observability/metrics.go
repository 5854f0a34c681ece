// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Facade metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Wallet metrics
	ConnectionEvents *prometheus.CounterVec

	// Transaction metrics
	TransactionsTotal   *prometheus.CounterVec
	ConfirmationLatency prometheus.Histogram

	// Metadata metrics
	MetadataUploads    *prometheus.CounterVec
	MetadataFetches    *prometheus.CounterVec
	ItemsResolved      prometheus.Counter
	ResolutionFailures prometheus.Counter

	// Transport metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCCallErrors  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "nft_marketplace"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketplace",
			Name:      "operations_total",
			Help:      "Total number of facade operations by outcome",
		}, []string{"operation", "status"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "marketplace",
			Name:      "operation_duration_seconds",
			Help:      "Duration of facade operations",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation"}),

		ConnectionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "connection_events_total",
			Help:      "Wallet connection attempts by outcome",
		}, []string{"outcome"}),

		TransactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "contract",
			Name:      "transactions_total",
			Help:      "State-changing contract calls by method and status",
		}, []string{"method", "status"}),
		ConfirmationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "contract",
			Name:      "confirmation_latency_seconds",
			Help:      "Time between broadcast and inclusion",
			Buckets:   []float64{1, 2, 5, 10, 15, 30, 60, 120, 300},
		}),

		MetadataUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "uploads_total",
			Help:      "Metadata uploads by status",
		}, []string{"status"}),
		MetadataFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "metadata",
			Name:      "fetches_total",
			Help:      "Metadata document fetches by status",
		}, []string{"status"}),
		ItemsResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "items_resolved_total",
			Help:      "Market items assembled from on-chain and off-chain data",
		}),
		ResolutionFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "resolution_failures_total",
			Help:      "Catalog batches failed because an item could not be resolved",
		}),

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Duration of JSON-RPC calls",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method"}),
		RPCCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_errors_total",
			Help:      "Total number of failed JSON-RPC calls",
		}, []string{"method"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordOperation records a facade operation outcome.
func (m *Metrics) RecordOperation(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, status(err)).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordConnection records a wallet connection outcome.
func (m *Metrics) RecordConnection(outcome string) {
	if m == nil {
		return
	}
	m.ConnectionEvents.WithLabelValues(outcome).Inc()
}

// RecordTransaction records a state-changing contract call.
func (m *Metrics) RecordTransaction(method string, err error) {
	if m == nil {
		return
	}
	m.TransactionsTotal.WithLabelValues(method, status(err)).Inc()
}

// RecordConfirmation records how long a transaction took to be mined.
func (m *Metrics) RecordConfirmation(seconds float64) {
	if m == nil {
		return
	}
	m.ConfirmationLatency.Observe(seconds)
}

// RecordUpload records a metadata upload.
func (m *Metrics) RecordUpload(err error) {
	if m == nil {
		return
	}
	m.MetadataUploads.WithLabelValues(status(err)).Inc()
}

// RecordFetch records a metadata document fetch.
func (m *Metrics) RecordFetch(err error) {
	if m == nil {
		return
	}
	m.MetadataFetches.WithLabelValues(status(err)).Inc()
}

// RecordResolution records a catalog batch outcome.
func (m *Metrics) RecordResolution(items int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ResolutionFailures.Inc()
		return
	}
	m.ItemsResolved.Add(float64(items))
}

// RecordRPC records RPC call latency and failures.
func (m *Metrics) RecordRPC(method string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.RPCCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		m.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
