package keyspace

import (
	"errors"
	"math/rand"
)

// maxGenerateAttempts bounds the number of uniform draws a single Generate
// call may spend looking for an unused key.
const maxGenerateAttempts = 5000

// Sentinel errors for key allocation.
var (
	// ErrAllocationExhausted indicates Generate could not find an unused
	// key within its retry budget.
	ErrAllocationExhausted = errors.New("key allocation exhausted retry budget")

	// ErrNoContentAvailable indicates no content keys have been allocated yet.
	ErrNoContentAvailable = errors.New("no content keys available")
)

// Allocator hands out location keys that are unique across all peers and
// content in a simulation run. It owns its randomness source and its
// uniqueness bookkeeping; create one per run and share it between the
// overlay builder and the routing engine.
//
// Allocator is not safe for concurrent use. The simulation is
// single-threaded, so no locking is needed.
type Allocator struct {
	rng      *rand.Rand
	peers    map[Key]struct{}
	contents map[Key]struct{}

	// insertion-ordered view of contents, for uniform picks
	contentList []Key
}

// NewAllocator creates an allocator seeded for reproducible runs.
func NewAllocator(seed int64) *Allocator {
	return &Allocator{
		rng:      rand.New(rand.NewSource(seed)),
		peers:    make(map[Key]struct{}),
		contents: make(map[Key]struct{}),
	}
}

// Generate returns a fresh uniformly distributed key, unique across both the
// peer and content key sets. When content is true the key is registered as a
// content key, otherwise as a peer key.
//
// Fails with ErrAllocationExhausted if no unused key is found within the
// retry budget.
func (a *Allocator) Generate(content bool) (Key, error) {
	for i := 0; i < maxGenerateAttempts; i++ {
		k := Key(a.rng.Float64())
		if _, used := a.peers[k]; used {
			continue
		}
		if _, used := a.contents[k]; used {
			continue
		}
		if content {
			a.contents[k] = struct{}{}
			a.contentList = append(a.contentList, k)
		} else {
			a.peers[k] = struct{}{}
		}
		return k, nil
	}
	return 0, ErrAllocationExhausted
}

// PickContent returns a uniformly chosen key from the set of content keys
// allocated so far. Fails with ErrNoContentAvailable if none exist yet.
func (a *Allocator) PickContent() (Key, error) {
	if len(a.contentList) == 0 {
		return 0, ErrNoContentAvailable
	}
	return a.contentList[a.rng.Intn(len(a.contentList))], nil
}

// ContentCount returns the number of content keys allocated so far.
func (a *Allocator) ContentCount() int {
	return len(a.contentList)
}

// PeerCount returns the number of peer keys allocated so far.
func (a *Allocator) PeerCount() int {
	return len(a.peers)
}
