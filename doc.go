/*
Package darksim simulates a darknet content overlay with greedy key-based
routing and Metropolis location swapping.

Peers live on a circular keyspace of location keys in [0, 1). Content keys
share that keyspace, and routing is greedy: each hop forwards toward the
neighbor whose location is closest to the target, with a hop-to-live budget
that is refreshed whenever a message reaches a peer closer to the target
than any peer seen before. GET requests backtrack depth-first when a branch
is exhausted; PUT requests settle content at the closest reachable peer and
replicate it to that peer's nearest neighbors. Because links are fixed
(a darknet only connects peers that already trust each other), peers
periodically run a random-walk swap protocol that exchanges location keys
when doing so shortens links, letting greedy routing work over an arbitrary
trusted topology.

The simulator is single-goroutine and discrete-event: a Simulation owns the
virtual clock and a delivery queue, peers act only when ticked or when a
message arrives, and every run is reproducible from its seed.

# Quick Start

Create an engine and a simulation around it:

	cfg := darksim.NewConfig(
		darksim.WithSeed(42),
		darksim.WithMaxHTL(10),
		darksim.WithBiasFactor(0.5),
	)

	sim, err := darksim.NewSimulation(cfg)
	if err != nil {
		// Handle error
	}

Build the overlay:

	for i := 0; i < 1024; i++ {
		sim.Engine().AddPeer(fmt.Sprintf("peer-%d", i))
	}
	// ...Link peers per your trusted topology...
	sim.Engine().Link(a, b)

Run it and read the results:

	if err := sim.Run(5000); err != nil {
		// Handle error
	}
	stats := sim.Engine().Stats()
	fmt.Printf("mean GET path: %.2f hops\n", stats.MeanGetHops())

# Observability

The Logger, Metrics, and Recorder interfaces decouple the engine from any
particular backend; the defaults discard everything. The prometheus
subpackage provides a Metrics implementation, and FileRecorder appends
per-request outcomes to a stats file.

# Determinism

A run is a pure function of its Config (seed included) and the overlay you
build. Each peer draws from its own random stream, so adding instrumentation
or reading state never perturbs a run.

# See Also

  - pkg/keyspace - circular distance and key allocation
  - pkg/directory - sorted peer directories with nearest-key queries
  - pkg/topology - overlay construction from edge lists and generators
  - pkg/graphstat - degree, clustering, and path-length reports
  - cmd/darksim - the command line driver
*/
package darksim
