package darksim

import (
	"fmt"
	"math/rand"

	"github.com/smallworldnet/darksim/pkg/directory"
	"github.com/smallworldnet/darksim/pkg/keyspace"
	"github.com/smallworldnet/darksim/pkg/records"
)

// Transport delivers messages between peers. The engine hands every send
// to the transport and never delivers directly, so delivery order and
// latency are entirely the transport's business. Simulation implements
// Transport with a virtual-time queue.
type Transport interface {
	// ScheduleDelivery arranges for msg to reach to. The engine retains
	// no reference to msg after the call.
	ScheduleDelivery(from, to PeerID, msg *Message)
}

// perPeerSeedPrime spreads the run seed across per-peer random streams.
// The mixing multiplies in uint64 and relies on wraparound.
const perPeerSeedPrime uint64 = 0x9E3779B97F4A7C15

// Engine owns the peer arena and implements the routing, replication, and
// swap protocols. It is not safe for concurrent use; drive it from a
// single goroutine, normally via Simulation.
type Engine struct {
	cfg       *Config
	log       Logger
	metrics   Metrics
	recorder  Recorder
	transport Transport
	now       func() int64

	peers []*Peer
	alloc *keyspace.Allocator

	nextMessageID uint64
	stats         Stats
}

// NewEngine validates cfg and returns an engine using transport for
// deliveries and now as its clock, typically wired to the simulation's
// virtual time.
func NewEngine(cfg *Config, transport Transport, now func() int64) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: nil clock", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &Engine{
		cfg:       cfg,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		recorder:  cfg.Recorder,
		transport: transport,
		now:       now,
		alloc:     keyspace.NewAllocator(cfg.Seed),
	}, nil
}

// AddPeer registers a new peer under identifier at a fresh unique location
// and returns its ID. The peer starts with no links; use Link to attach it
// to the overlay.
func (e *Engine) AddPeer(identifier string) (PeerID, error) {
	key, err := e.alloc.Generate(false)
	if err != nil {
		return NoPeer, err
	}
	p := e.addPeerWithKey(identifier, key)
	return p.id, nil
}

// addPeerWithKey is the arena insertion shared by AddPeer and tests that
// need deterministic locations.
func (e *Engine) addPeerWithKey(identifier string, key keyspace.Key) *Peer {
	id := PeerID(len(e.peers))
	p := &Peer{
		id:         id,
		identifier: identifier,
		key:        key,
		contents:   make(map[keyspace.Key]struct{}),
		neighbors:  directory.New[PeerID](),
		rng:        rand.New(rand.NewSource(e.cfg.Seed ^ int64(uint64(id+1)*perPeerSeedPrime))),
	}
	p.records = records.NewStore[PeerID](id, e.now)
	e.peers = append(e.peers, p)
	return p
}

// Link connects a and b symmetrically. Linking a peer to itself or an
// unknown peer is an error; re-linking existing neighbors is a no-op.
func (e *Engine) Link(a, b PeerID) error {
	if a == b {
		return fmt.Errorf("%w: peer %d", ErrSelfLink, a)
	}
	pa, err := e.peer(a)
	if err != nil {
		return err
	}
	pb, err := e.peer(b)
	if err != nil {
		return err
	}
	pa.neighbors.Insert(pb.id, pb.key)
	pb.neighbors.Insert(pa.id, pa.key)
	return nil
}

// Peers returns the number of peers in the overlay.
func (e *Engine) Peers() int { return len(e.peers) }

// Peer returns the peer registered under id.
func (e *Engine) Peer(id PeerID) (*Peer, error) { return e.peer(id) }

// Allocator exposes the key allocator, letting callers pre-seed content
// or inspect how much of the keyspace is taken.
func (e *Engine) Allocator() *keyspace.Allocator { return e.alloc }

// Stats returns a snapshot of the run counters.
func (e *Engine) Stats() Stats { return e.stats }

// Neighbors returns the IDs of id's neighbors in ascending key order.
func (e *Engine) Neighbors(id PeerID) ([]PeerID, error) {
	p, err := e.peer(id)
	if err != nil {
		return nil, err
	}
	ids := make([]PeerID, 0, p.neighbors.Len())
	for entry := range p.neighbors.All() {
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

// AdjacencySnapshot returns the overlay as an adjacency list indexed by
// peer ID, for graph statistics.
func (e *Engine) AdjacencySnapshot() [][]int {
	adj := make([][]int, len(e.peers))
	for i, p := range e.peers {
		row := make([]int, 0, p.neighbors.Len())
		for entry := range p.neighbors.All() {
			row = append(row, int(entry.ID))
		}
		adj[i] = row
	}
	return adj
}

// HandleMessage delivers m to peer to and runs the matching protocol
// handler. Transports call this once per scheduled delivery.
func (e *Engine) HandleMessage(to PeerID, m *Message) error {
	p, err := e.peer(to)
	if err != nil {
		return err
	}
	e.metrics.MessageDelivered(m.Type.String())
	e.log.Debug("message delivered", "peer", p.id, "msg", m.String())

	switch m.Type {
	case TypeGet, TypeGetNotFound:
		e.handleGet(p, m)
	case TypePut:
		e.handlePut(p, m)
	case TypePutReplication, TypePutReplCollision:
		e.handleReplication(p, m)
	case TypeGetFound, TypePutOK, TypePutCollision:
		e.deliverBackward(p, m)
	case TypeSwap:
		e.handleSwap(p, m)
	case TypeSwapOK, TypeSwapRefused:
		e.handleSwapAnswer(p, m)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMessageType, int(m.Type))
	}
	return nil
}

func (e *Engine) peer(id PeerID) (*Peer, error) {
	if id < 0 || int(id) >= len(e.peers) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPeer, id)
	}
	return e.peers[id], nil
}

// newMessage builds a request envelope originated by p.
func (e *Engine) newMessage(t MessageType, target keyspace.Key, htl int, p *Peer) *Message {
	id := e.nextMessageID
	e.nextMessageID++
	return &Message{
		ID:          id,
		Type:        t,
		Target:      target,
		HTL:         htl,
		LastHop:     p.id,
		ClosestSeen: p.key,
	}
}

// send hands m to the transport. Callers set LastHop themselves: most
// sends stamp the sender, but swap relays forward on behalf of the
// original proposer and must leave it untouched.
func (e *Engine) send(to PeerID, m *Message) {
	if m.Type == TypeGet || m.Type == TypePut {
		m.Hops++
	}
	e.metrics.MessageSent(m.Type.String())
	e.stats.MessagesSent++
	e.transport.ScheduleDelivery(m.LastHop, to, m)
}

// changeAndSend rewrites the message role in place and sends it from p.
func (e *Engine) changeAndSend(t MessageType, p *Peer, to PeerID, m *Message) {
	m.Type = t
	m.LastHop = p.id
	e.send(to, m)
}

// deliverBackward walks an answer one hop back along the recorded request
// path. At the originator it completes the request instead.
func (e *Engine) deliverBackward(p *Peer, m *Message) {
	rec, ok := p.records.Get(m.ID)
	if !ok {
		// The routing record was evicted while the answer was in
		// flight. There is nowhere to route it, so it is dropped.
		e.log.Warn("answer dropped, no routing record",
			"peer", p.id, "msg", m.String())
		e.metrics.BackwardDropped()
		return
	}
	if rec.ReceivedFrom == p.id {
		e.completeRequest(p, m)
		return
	}
	m.LastHop = p.id
	e.send(rec.ReceivedFrom, m)
}

// completeRequest settles an answer at its originator.
func (e *Engine) completeRequest(p *Peer, m *Message) {
	e.log.Info("request completed",
		"peer", p.id, "type", m.Type.String(), "target", m.Target, "hops", m.Hops)
	e.metrics.RoutingCompleted(m.Type.String(), m.Hops)
	e.stats.recordCompletion(m.Type, m.Hops)
	e.recorder.RecordCompletion(m.Type, m.Hops)
}

// nextCandidate picks the neighbor of p closest to the target that this
// message has not been forwarded to yet, excluding the peer the request
// came from. The second return is false when the branch is exhausted.
func (e *Engine) nextCandidate(p *Peer, m *Message, receivedFrom PeerID) (directory.Entry[PeerID], bool) {
	for _, entry := range p.neighbors.TopKNearest(m.Target, p.neighbors.Len()) {
		if entry.ID == receivedFrom {
			continue
		}
		if p.records.AlreadySent(m.ID, entry.ID) {
			continue
		}
		return entry, true
	}
	return directory.Entry[PeerID]{}, false
}
