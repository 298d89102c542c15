// Package prometheus provides a Prometheus implementation of the darksim.Metrics interface.
//
// All metrics use the configured namespace prefix (default: "darksim"). The
// full metric name follows the pattern: {namespace}_{name}
//
// # Counters
//
//	darksim_messages_sent_total{type="GET|PUT|..."}
//	darksim_messages_delivered_total{type="GET|PUT|..."}
//	darksim_routing_completed_total{type="GET_FOUND|GET_NOTFOUND|PUT_OK|PUT_COLLISION"}
//	darksim_backward_dropped_total
//	darksim_content_stored_total{origin="put|replication|local"}
//	darksim_swap_outcomes_total{outcome="accepted|refused"}
//	darksim_records_evicted_total
//	darksim_requests_skipped_total{reason="<reason>"}
//
// # Histograms
//
//	darksim_routing_hops{type="GET_FOUND|GET_NOTFOUND|PUT_OK|PUT_COLLISION"}
//
// # Gauges
//
//	darksim_pending_deliveries
//
// # Example Usage
//
//	import (
//	    "github.com/smallworldnet/darksim"
//	    prommetrics "github.com/smallworldnet/darksim/prometheus"
//	    "github.com/prometheus/client_golang/prometheus/promhttp"
//	)
//
//	func main() {
//	    metrics := prommetrics.NewMetrics("mysim")
//
//	    cfg := darksim.NewConfig(
//	        darksim.WithMetrics(metrics),
//	    )
//
//	    sim, err := darksim.NewSimulation(cfg)
//	    // ...
//
//	    // Expose metrics endpoint
//	    http.Handle("/metrics", promhttp.Handler())
//	    http.ListenAndServe(":9090", nil)
//	}
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smallworldnet/darksim"
)

// DefaultNamespace is the default namespace for all metrics.
const DefaultNamespace = "darksim"

// Metrics implements the darksim.Metrics interface using Prometheus metrics.
//
// Metrics is safe for concurrent use.
type Metrics struct {
	// Routing metrics
	messagesSent      *prometheus.CounterVec
	messagesDelivered *prometheus.CounterVec
	routingCompleted  *prometheus.CounterVec
	routingHops       *prometheus.HistogramVec
	backwardDropped   prometheus.Counter

	// Storage metrics
	contentStored *prometheus.CounterVec

	// Swap metrics
	swapOutcomes *prometheus.CounterVec

	// Maintenance metrics
	recordsEvicted  prometheus.Counter
	requestsSkipped *prometheus.CounterVec

	// Queue metrics
	pendingDeliveries prometheus.Gauge
}

// Ensure Metrics implements darksim.Metrics.
var _ darksim.Metrics = (*Metrics)(nil)

// NewMetrics creates a new Prometheus metrics collector with the given namespace.
// If namespace is empty, DefaultNamespace ("darksim") is used.
//
// All metrics are automatically registered with the default Prometheus registry.
// If registration fails (e.g., metrics already registered), this function will panic.
// To avoid panics, use NewMetricsWithRegisterer with a custom registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates a new Prometheus metrics collector with the
// given namespace and registerer. This allows using a custom registry for
// testing or to avoid conflicts with other metrics.
//
// If namespace is empty, DefaultNamespace ("darksim") is used.
// If registerer is nil, metrics will not be registered automatically.
func NewMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		messagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_sent_total",
				Help:      "Total number of messages sent by type",
			},
			[]string{"type"},
		),
		messagesDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_delivered_total",
				Help:      "Total number of messages delivered by type",
			},
			[]string{"type"},
		),
		routingCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routing_completed_total",
				Help:      "Total number of requests completed at their originator by outcome",
			},
			[]string{"type"},
		),
		routingHops: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "routing_hops",
				Help:      "Histogram of forward hops per completed request",
				Buckets:   []float64{1, 2, 4, 6, 8, 12, 16, 24, 32, 48, 64},
			},
			[]string{"type"},
		),
		backwardDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backward_dropped_total",
				Help:      "Total number of answers dropped for lack of a routing record",
			},
		),
		contentStored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "content_stored_total",
				Help:      "Total number of content keys stored by origin",
			},
			[]string{"origin"},
		),
		swapOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swap_outcomes_total",
				Help:      "Total number of settled swap walks by outcome",
			},
			[]string{"outcome"},
		),
		recordsEvicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_evicted_total",
				Help:      "Total number of routing records removed by idle sweeps",
			},
		),
		requestsSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_skipped_total",
				Help:      "Total number of periodic requests skipped by reason",
			},
			[]string{"reason"},
		),
		pendingDeliveries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_deliveries",
				Help:      "Current number of in-flight message deliveries",
			},
		),
	}

	if registerer != nil {
		registerer.MustRegister(
			m.messagesSent,
			m.messagesDelivered,
			m.routingCompleted,
			m.routingHops,
			m.backwardDropped,
			m.contentStored,
			m.swapOutcomes,
			m.recordsEvicted,
			m.requestsSkipped,
			m.pendingDeliveries,
		)
	}

	return m
}

// MessageSent implements darksim.Metrics.
func (m *Metrics) MessageSent(msgType string) {
	m.messagesSent.WithLabelValues(msgType).Inc()
}

// MessageDelivered implements darksim.Metrics.
func (m *Metrics) MessageDelivered(msgType string) {
	m.messagesDelivered.WithLabelValues(msgType).Inc()
}

// RoutingCompleted implements darksim.Metrics.
func (m *Metrics) RoutingCompleted(msgType string, hops int) {
	m.routingCompleted.WithLabelValues(msgType).Inc()
	m.routingHops.WithLabelValues(msgType).Observe(float64(hops))
}

// BackwardDropped implements darksim.Metrics.
func (m *Metrics) BackwardDropped() {
	m.backwardDropped.Inc()
}

// ContentStored implements darksim.Metrics.
func (m *Metrics) ContentStored(origin string) {
	m.contentStored.WithLabelValues(origin).Inc()
}

// SwapOutcome implements darksim.Metrics.
func (m *Metrics) SwapOutcome(outcome string) {
	m.swapOutcomes.WithLabelValues(outcome).Inc()
}

// RecordsEvicted implements darksim.Metrics.
func (m *Metrics) RecordsEvicted(count int) {
	m.recordsEvicted.Add(float64(count))
}

// RequestSkipped implements darksim.Metrics.
func (m *Metrics) RequestSkipped(reason string) {
	m.requestsSkipped.WithLabelValues(reason).Inc()
}

// PendingDeliveries implements darksim.Metrics.
func (m *Metrics) PendingDeliveries(n int) {
	m.pendingDeliveries.Set(float64(n))
}
