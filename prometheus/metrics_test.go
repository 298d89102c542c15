package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smallworldnet/darksim"
)

// TestMetricsImplementsInterface verifies that Metrics implements darksim.Metrics.
func TestMetricsImplementsInterface(t *testing.T) {
	var _ darksim.Metrics = (*Metrics)(nil)
}

// TestNewMetrics_DefaultNamespace verifies default namespace is used when empty.
func TestNewMetrics_DefaultNamespace(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("", registry)

	m.MessageSent("GET")

	names, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range names {
		if mf.GetName() == "darksim_messages_sent_total" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected metric with default namespace 'darksim'")
	}
}

// TestNewMetrics_CustomNamespace verifies custom namespace is used.
func TestNewMetrics_CustomNamespace(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("mysim", registry)

	m.MessageSent("PUT")

	names, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range names {
		if mf.GetName() == "mysim_messages_sent_total" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected metric with custom namespace 'mysim'")
	}
}

// TestRoutingMetrics tests routing-related counters and the hop histogram.
func TestRoutingMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("test", registry)

	m.MessageSent("GET")
	m.MessageSent("GET")
	m.MessageSent("PUT")
	m.MessageDelivered("GET")

	if count := testutil.ToFloat64(m.messagesSent.WithLabelValues("GET")); count != 2 {
		t.Errorf("GET messages sent = %v, want 2", count)
	}
	if count := testutil.ToFloat64(m.messagesSent.WithLabelValues("PUT")); count != 1 {
		t.Errorf("PUT messages sent = %v, want 1", count)
	}
	if count := testutil.ToFloat64(m.messagesDelivered.WithLabelValues("GET")); count != 1 {
		t.Errorf("GET messages delivered = %v, want 1", count)
	}

	m.RoutingCompleted("GET_FOUND", 5)
	m.RoutingCompleted("GET_FOUND", 7)
	m.RoutingCompleted("PUT_OK", 3)

	if count := testutil.ToFloat64(m.routingCompleted.WithLabelValues("GET_FOUND")); count != 2 {
		t.Errorf("GET_FOUND completions = %v, want 2", count)
	}
	if n := testutil.CollectAndCount(m.routingHops); n == 0 {
		t.Error("expected hop histogram series to exist")
	}

	m.BackwardDropped()
	m.BackwardDropped()
	if count := testutil.ToFloat64(m.backwardDropped); count != 2 {
		t.Errorf("backward dropped = %v, want 2", count)
	}
}

// TestStorageAndSwapMetrics tests content, swap, and maintenance metrics.
func TestStorageAndSwapMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("test", registry)

	m.ContentStored("put")
	m.ContentStored("replication")
	m.ContentStored("replication")

	if count := testutil.ToFloat64(m.contentStored.WithLabelValues("replication")); count != 2 {
		t.Errorf("replication stores = %v, want 2", count)
	}

	m.SwapOutcome("accepted")
	m.SwapOutcome("refused")
	m.SwapOutcome("refused")

	if count := testutil.ToFloat64(m.swapOutcomes.WithLabelValues("refused")); count != 2 {
		t.Errorf("refused swaps = %v, want 2", count)
	}

	m.RecordsEvicted(3)
	m.RecordsEvicted(4)
	if count := testutil.ToFloat64(m.recordsEvicted); count != 7 {
		t.Errorf("records evicted = %v, want 7", count)
	}

	m.RequestSkipped("no_content")
	if count := testutil.ToFloat64(m.requestsSkipped.WithLabelValues("no_content")); count != 1 {
		t.Errorf("skipped requests = %v, want 1", count)
	}
}

// TestPendingDeliveriesGauge tests that the gauge tracks the latest value.
func TestPendingDeliveriesGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("test", registry)

	m.PendingDeliveries(12)
	m.PendingDeliveries(5)

	if v := testutil.ToFloat64(m.pendingDeliveries); v != 5 {
		t.Errorf("pending deliveries = %v, want 5", v)
	}
}

// TestMetricsWithEngine verifies the adapter wired into a real simulation.
func TestMetricsWithEngine(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("test", registry)

	cfg := darksim.NewConfig(
		darksim.WithSeed(7),
		darksim.WithMetrics(m),
	)
	sim, err := darksim.NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	var ids []darksim.PeerID
	for i := 0; i < 8; i++ {
		id, err := sim.Engine().AddPeer("peer")
		if err != nil {
			t.Fatalf("AddPeer: %v", err)
		}
		ids = append(ids, id)
	}
	for i := range ids {
		if err := sim.Engine().Link(ids[i], ids[(i+1)%len(ids)]); err != nil {
			t.Fatalf("Link: %v", err)
		}
	}

	if err := sim.Run(20); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := sim.Engine().Stats()
	if stats.MessagesSent == 0 {
		t.Fatal("expected the run to send messages")
	}
	var sent float64
	for _, typ := range []string{"GET", "PUT", "PUT_OK", "PUT_COLLISION",
		"GET_FOUND", "GET_NOTFOUND", "PUT_REPLICATION", "PUT_REPL_COLLISION",
		"SWAP", "SWAP_OK", "SWAP_REFUSED"} {
		sent += testutil.ToFloat64(m.messagesSent.WithLabelValues(typ))
	}
	if int(sent) != stats.MessagesSent {
		t.Errorf("prometheus counted %v sends, stats counted %d", sent, stats.MessagesSent)
	}
}
