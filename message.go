package darksim

import (
	"fmt"

	"github.com/smallworldnet/darksim/pkg/keyspace"
)

// MessageType identifies the protocol role of a message.
type MessageType int

const (
	// TypeGet asks the overlay to locate a content key.
	TypeGet MessageType = iota

	// TypeGetFound answers a GET that reached a peer storing the key.
	TypeGetFound

	// TypeGetNotFound answers a GET whose search was exhausted. On the
	// backtrack path it doubles as the signal to try further candidates.
	TypeGetNotFound

	// TypePut asks the overlay to store a content key at the peer whose
	// location is nearest to it.
	TypePut

	// TypePutOK confirms a PUT that landed.
	TypePutOK

	// TypePutCollision answers a PUT for a key the receiving peer
	// already stores.
	TypePutCollision

	// TypePutReplication fans a freshly stored key out toward the
	// storing peer's nearest neighbors.
	TypePutReplication

	// TypePutReplCollision signals a replication copy that reached a peer
	// which had already seen the same replication id.
	TypePutReplCollision

	// TypeSwap carries a location-swap proposal on a random walk.
	TypeSwap

	// TypeSwapOK accepts a swap proposal.
	TypeSwapOK

	// TypeSwapRefused declines a swap proposal.
	TypeSwapRefused
)

// String returns the wire-style name of the message type.
func (t MessageType) String() string {
	switch t {
	case TypeGet:
		return "GET"
	case TypeGetFound:
		return "GET_FOUND"
	case TypeGetNotFound:
		return "GET_NOTFOUND"
	case TypePut:
		return "PUT"
	case TypePutOK:
		return "PUT_OK"
	case TypePutCollision:
		return "PUT_COLLISION"
	case TypePutReplication:
		return "PUT_REPLICATION"
	case TypePutReplCollision:
		return "PUT_REPL_COLLISION"
	case TypeSwap:
		return "SWAP"
	case TypeSwapOK:
		return "SWAP_OK"
	case TypeSwapRefused:
		return "SWAP_REFUSED"
	default:
		return fmt.Sprintf("MessageType(%d)", int(t))
	}
}

// Message is the envelope exchanged between peers. Identity is the ID
// field: fan-out copies made with Clone share it, which is what lets every
// peer on a replication tree detect re-visits.
type Message struct {
	// ID is unique per originated request, assigned monotonically by the
	// engine.
	ID uint64

	// Type is the current protocol role; it is rewritten in place as a
	// request turns into its answer.
	Type MessageType

	// Target is the content key being looked up, inserted, or replicated.
	// Unused for swap messages.
	Target keyspace.Key

	// HTL is the remaining hop budget. Never negative.
	HTL int

	// LastHop is the peer that sent this copy.
	LastHop PeerID

	// ClosestSeen is the location key of the peer nearest to Target
	// visited so far on this message's path. Reaching a peer that beats
	// it earns the message a fresh HTL budget.
	ClosestSeen keyspace.Key

	// Hops counts true forwards of the GET/PUT request, for statistics
	// only; it never affects routing.
	Hops int
}

// Clone returns a copy sharing the message identity.
func (m *Message) Clone() *Message {
	c := *m
	return &c
}

// markClosestSeen records key as the message's best-seen location when it
// is at least as close to the target as any peer on the path so far, and
// reports whether it did. A tie counts: the originator is the first
// closest-seen peer, and routing back through an equally close peer still
// marks it.
func (m *Message) markClosestSeen(key keyspace.Key) bool {
	if key != m.ClosestSeen && !keyspace.Closer(key, m.ClosestSeen, m.Target) {
		return false
	}
	m.ClosestSeen = key
	return true
}

// decrementHTL spends one hop of budget, saturating at zero.
func (m *Message) decrementHTL() {
	if m.HTL > 0 {
		m.HTL--
	}
}

// String serializes the envelope for routing traces.
func (m *Message) String() string {
	return fmt.Sprintf("(id=%d type=%s target=%v htl=%d lastHop=%d closest=%v hops=%d)",
		m.ID, m.Type, m.Target, m.HTL, m.LastHop, m.ClosestSeen, m.Hops)
}
