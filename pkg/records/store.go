// Package records keeps the per-peer routing bookkeeping that backs cycle
// detection and exactly-once backward delivery.
//
// Each peer owns one Store. A record exists for a message id if and only if
// the peer has seen that id before; it remembers where the message first
// came from and which neighbors it has already been forwarded to. Records
// age out through periodic idle eviction rather than per-access checks.
package records

// Record is the bookkeeping for one message id at one peer.
type Record[ID comparable] struct {
	// ReceivedFrom is the peer this message id was first received from,
	// or the owning peer itself when it originated the request.
	ReceivedFrom ID

	sentTo      map[ID]struct{}
	lastTouched int64
}

// AlreadySent reports whether the message was already forwarded to peer id.
func (r *Record[ID]) AlreadySent(id ID) bool {
	if r.sentTo == nil {
		return false
	}
	_, ok := r.sentTo[id]
	return ok
}

// Store holds every Record a single peer is tracking, keyed by message id.
// It is exclusively owned by that peer; no locking.
type Store[ID comparable] struct {
	self    ID
	now     func() int64
	records map[uint64]*Record[ID]
}

// NewStore creates a store for the given peer. now supplies the virtual
// clock used for idle tracking.
func NewStore[ID comparable](self ID, now func() int64) *Store[ID] {
	return &Store[ID]{
		self:    self,
		now:     now,
		records: make(map[uint64]*Record[ID]),
	}
}

// Get returns the record for a message id, if the peer has seen it before.
// A hit refreshes the record's idle timer.
func (s *Store[ID]) Get(id uint64) (*Record[ID], bool) {
	r, ok := s.records[id]
	if ok {
		r.lastTouched = s.now()
	}
	return r, ok
}

// Create registers a message id as first received from the given peer.
// Creating an id that already exists overwrites the previous record; callers
// are expected to Get first.
func (s *Store[ID]) Create(id uint64, receivedFrom ID) {
	s.records[id] = &Record[ID]{
		ReceivedFrom: receivedFrom,
		lastTouched:  s.now(),
	}
}

// RecordSent notes that the message was forwarded to peer to. If the id has
// no record yet, one is created with the owning peer as origin (the peer is
// the originator of the message).
func (s *Store[ID]) RecordSent(id uint64, to ID) {
	r, ok := s.records[id]
	if !ok {
		s.Create(id, s.self)
		r = s.records[id]
	}
	if r.sentTo == nil {
		r.sentTo = make(map[ID]struct{})
	}
	r.sentTo[to] = struct{}{}
	r.lastTouched = s.now()
}

// AlreadySent reports whether the message was already forwarded to peer to.
// A hit on an existing record refreshes its idle timer.
func (s *Store[ID]) AlreadySent(id uint64, to ID) bool {
	r, ok := s.records[id]
	if !ok {
		return false
	}
	r.lastTouched = s.now()
	return r.AlreadySent(to)
}

// EvictIdle removes every record whose idle age strictly exceeds threshold
// and returns how many were removed. Called periodically by the cleanup
// hook, not on every access.
func (s *Store[ID]) EvictIdle(threshold int64) int {
	now := s.now()
	evicted := 0
	for id, r := range s.records {
		if now-r.lastTouched > threshold {
			delete(s.records, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of live records.
func (s *Store[ID]) Len() int {
	return len(s.records)
}
