package darksim

import (
	"math/rand"

	"github.com/smallworldnet/darksim/pkg/directory"
	"github.com/smallworldnet/darksim/pkg/keyspace"
	"github.com/smallworldnet/darksim/pkg/records"
)

// PeerID indexes a peer in the engine's arena.
type PeerID int

// NoPeer marks the absence of a peer, for example an empty candidate
// selection.
const NoPeer PeerID = -1

// Peer is a simulated overlay node. Peers hold their routing state inline;
// all behavior lives on the engine, which owns the arena.
type Peer struct {
	id         PeerID
	identifier string

	// key is the peer's current location. Swaps exchange it, so it must
	// never be used as an identity.
	key keyspace.Key

	contents  map[keyspace.Key]struct{}
	neighbors *directory.Directory[PeerID]
	records   *records.Store[PeerID]

	// swapping locks the peer against concurrent swap walks.
	swapping bool

	// rng drives this peer's request coin and swap candidate picks, so
	// runs replay identically regardless of how other peers consume
	// randomness.
	rng *rand.Rand
}

// ID returns the peer's arena index.
func (p *Peer) ID() PeerID { return p.id }

// Identifier returns the stable name the peer was registered under.
func (p *Peer) Identifier() string { return p.identifier }

// Key returns the peer's current location key.
func (p *Peer) Key() keyspace.Key { return p.key }

// Degree returns the number of overlay links the peer holds.
func (p *Peer) Degree() int { return p.neighbors.Len() }

// Stores reports whether the peer stores the given content key.
func (p *Peer) Stores(key keyspace.Key) bool {
	_, ok := p.contents[key]
	return ok
}

// ContentCount returns how many content keys the peer stores.
func (p *Peer) ContentCount() int { return len(p.contents) }

func (p *Peer) addContent(key keyspace.Key) {
	p.contents[key] = struct{}{}
}

// nearestNeighbor returns the neighbor whose key is closest to target, or
// NoPeer when the peer has no links.
func (p *Peer) nearestNeighbor(target keyspace.Key) (directory.Entry[PeerID], bool) {
	nearest := p.neighbors.TopKNearest(target, 1)
	if len(nearest) == 0 {
		return directory.Entry[PeerID]{}, false
	}
	return nearest[0], true
}
