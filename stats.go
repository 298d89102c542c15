package darksim

// Stats aggregates counters over a simulation run. The engine updates one
// instance in place; Stats is a snapshot value, so callers can copy it
// freely.
type Stats struct {
	// GetsStarted and PutsStarted count originated requests.
	GetsStarted int
	PutsStarted int

	// GetsFound and GetsNotFound count GET requests by outcome, measured
	// at the originator.
	GetsFound    int
	GetsNotFound int

	// PutsStored and PutCollisions count PUT requests by outcome.
	PutsStored    int
	PutCollisions int

	// GetHops and PutHops accumulate forward hops of completed requests,
	// for mean path length.
	GetHops int
	PutHops int

	// SwapsProposed, SwapsAccepted and SwapsRefused count swap walks by
	// outcome at the initiator.
	SwapsProposed int
	SwapsAccepted int
	SwapsRefused  int

	// ReplicasStored counts content copies placed by replication.
	ReplicasStored int

	// RecordsEvicted counts routing records dropped by idle cleanup.
	RecordsEvicted int

	// MessagesSent counts every scheduled delivery.
	MessagesSent int
}

// MeanGetHops returns the average forward path length of resolved GETs,
// or 0 when none completed.
func (s Stats) MeanGetHops() float64 {
	done := s.GetsFound + s.GetsNotFound
	if done == 0 {
		return 0
	}
	return float64(s.GetHops) / float64(done)
}

// MeanPutHops returns the average forward path length of resolved PUTs,
// or 0 when none completed.
func (s Stats) MeanPutHops() float64 {
	done := s.PutsStored + s.PutCollisions
	if done == 0 {
		return 0
	}
	return float64(s.PutHops) / float64(done)
}

func (s *Stats) recordCompletion(t MessageType, hops int) {
	switch t {
	case TypeGetFound:
		s.GetsFound++
		s.GetHops += hops
	case TypeGetNotFound:
		s.GetsNotFound++
		s.GetHops += hops
	case TypePutOK:
		s.PutsStored++
		s.PutHops += hops
	case TypePutCollision:
		s.PutCollisions++
		s.PutHops += hops
	}
}
