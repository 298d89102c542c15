package darksim

// Metrics defines the metrics collection interface for the simulator.
// It is designed to be compatible with Prometheus and other metrics systems.
//
// Metric naming convention:
//   - Counters: <name>_total (e.g., messages_sent_total)
//   - Histograms: <name>_hops (e.g., routing_hops)
//   - Gauges: pending_<name> (e.g., pending_deliveries)
type Metrics interface {
	// Routing metrics

	// MessageSent records a message leaving a peer.
	// Labels: type (the message type name)
	MessageSent(msgType string)

	// MessageDelivered records a message arriving at a peer.
	// Labels: type (the message type name)
	MessageDelivered(msgType string)

	// RoutingCompleted records a GET/PUT request reaching its terminal
	// outcome at the originator, with the hop count the request accrued.
	// Labels: type (the terminal message type name)
	RoutingCompleted(msgType string, hops int)

	// BackwardDropped records a backward message discarded because its
	// routing record had already been evicted.
	BackwardDropped()

	// Storage metrics

	// ContentStored records a content key landing in a peer's store.
	// Labels: origin (put, replication, local)
	ContentStored(origin string)

	// Swap metrics

	// SwapOutcome records a swap walk settling at its initiator.
	// Labels: outcome (accepted, refused)
	SwapOutcome(outcome string)

	// Maintenance metrics

	// RecordsEvicted records routing records removed by an idle sweep.
	RecordsEvicted(count int)

	// RequestSkipped records a periodic request that was not sent.
	// Labels: reason (no_content, already_stored, no_neighbors,
	// keyspace_exhausted, no_swap_candidate)
	RequestSkipped(reason string)

	// PendingDeliveries reports the current depth of the delivery queue.
	PendingDeliveries(n int)
}

// NopMetrics is a no-op metrics implementation that discards all metrics.
// It is the default when no metrics collector is configured.
type NopMetrics struct{}

// Ensure NopMetrics implements Metrics.
var _ Metrics = NopMetrics{}

// MessageSent implements Metrics.MessageSent (no-op).
func (NopMetrics) MessageSent(msgType string) {}

// MessageDelivered implements Metrics.MessageDelivered (no-op).
func (NopMetrics) MessageDelivered(msgType string) {}

// RoutingCompleted implements Metrics.RoutingCompleted (no-op).
func (NopMetrics) RoutingCompleted(msgType string, hops int) {}

// BackwardDropped implements Metrics.BackwardDropped (no-op).
func (NopMetrics) BackwardDropped() {}

// ContentStored implements Metrics.ContentStored (no-op).
func (NopMetrics) ContentStored(origin string) {}

// SwapOutcome implements Metrics.SwapOutcome (no-op).
func (NopMetrics) SwapOutcome(outcome string) {}

// RecordsEvicted implements Metrics.RecordsEvicted (no-op).
func (NopMetrics) RecordsEvicted(count int) {}

// RequestSkipped implements Metrics.RequestSkipped (no-op).
func (NopMetrics) RequestSkipped(reason string) {}

// PendingDeliveries implements Metrics.PendingDeliveries (no-op).
func (NopMetrics) PendingDeliveries(n int) {}
