package darksim

import "github.com/smallworldnet/darksim/pkg/keyspace"

// initiateSwap starts a location-swap random walk from p. Both the
// initiator and the first walker are locked until the answer comes back,
// so a peer is never party to two swaps at once.
func (e *Engine) initiateSwap(p *Peer) {
	if p.swapping {
		return
	}
	cand := e.selectSwapCandidate(p)
	if cand == NoPeer {
		e.metrics.RequestSkipped("no_swap_candidate")
		return
	}

	m := e.newMessage(TypeSwap, 0, e.cfg.MaxSwapHTL, p)
	m.decrementHTL()
	e.send(cand, m)

	p.swapping = true
	e.peers[cand].swapping = true
	e.stats.SwapsProposed++
	e.log.Debug("swap proposed", "peer", p.id, "walker", cand)
}

// selectSwapCandidate draws random neighbors of p until one is found that
// is not locked in another swap, giving up after as many attempts as p has
// neighbors. Attempts draw with replacement, so a free neighbor can be
// missed; that only delays the swap to a later period.
func (e *Engine) selectSwapCandidate(p *Peer) PeerID {
	degree := p.neighbors.Len()
	for i := 0; i < degree; i++ {
		entry, err := p.neighbors.At(p.rng.Intn(degree))
		if err != nil {
			return NoPeer
		}
		if e.peers[entry.ID].swapping {
			continue
		}
		return entry.ID
	}
	return NoPeer
}

// handleSwap advances a swap walk at p. While budget remains the walk is
// relayed to a random free neighbor; the proposal's LastHop stays the
// initiator the whole way, so whoever ends the walk answers the initiator
// directly. When the budget is gone (or no relay is possible) p decides.
func (e *Engine) handleSwap(p *Peer, m *Message) {
	proposer := m.LastHop

	if m.HTL > 0 {
		if cand := e.selectSwapCandidate(p); cand != NoPeer && cand != proposer {
			m.decrementHTL()
			p.swapping = false
			e.peers[cand].swapping = true
			e.send(cand, m)
			return
		}
	}

	initiator := e.peers[proposer]
	if e.acceptSwap(initiator, p) {
		e.changeAndSend(TypeSwapOK, p, proposer, m)
	} else {
		e.changeAndSend(TypeSwapRefused, p, proposer, m)
	}
}

// acceptSwap runs the Metropolis test between the initiator a and the
// deciding peer b: D1 is the product of current link distances, D2 the
// product after an hypothetical key exchange. A swap that shortens links
// (D1 > D2) is always taken; one that lengthens them is still taken with
// probability D1/D2, which keeps the optimization from freezing in a
// local minimum. Links between a and b themselves are skipped, matched by
// location key since that is what a link's length depends on.
func (e *Engine) acceptSwap(a, b *Peer) bool {
	prodAA, prodBA := 1.0, 1.0
	for entry := range a.neighbors.All() {
		if entry.Key == b.key {
			continue
		}
		prodAA *= keyspace.Distance(a.key, entry.Key)
		prodBA *= keyspace.Distance(b.key, entry.Key)
	}

	prodBB, prodAB := 1.0, 1.0
	for entry := range b.neighbors.All() {
		if entry.Key == a.key {
			continue
		}
		prodBB *= keyspace.Distance(b.key, entry.Key)
		prodAB *= keyspace.Distance(a.key, entry.Key)
	}

	d1 := prodAA * prodBB
	d2 := prodBA * prodAB
	return d1 > d2 || b.rng.Float64() < d1/d2
}

// handleSwapAnswer settles a swap walk at its initiator p. The answering
// peer is the message's last hop; on SWAP_OK the two exchange location
// keys and content, and either way both locks are released.
func (e *Engine) handleSwapAnswer(p *Peer, m *Message) {
	counterpart := e.peers[m.LastHop]

	if m.Type == TypeSwapOK {
		e.performSwap(p, counterpart)
		e.stats.SwapsAccepted++
		e.metrics.SwapOutcome("accepted")
		e.log.Debug("swap accepted", "peer", p.id, "with", counterpart.id)
	} else {
		e.stats.SwapsRefused++
		e.metrics.SwapOutcome("refused")
		e.log.Debug("swap refused", "peer", p.id, "by", counterpart.id)
	}

	p.swapping = false
	counterpart.swapping = false
}

// performSwap exchanges location keys and stored content between a and b
// and repairs every directory that indexes either of them. Peers keep
// their links; only the keys under which neighbors index them change.
func (e *Engine) performSwap(a, b *Peer) {
	// Names a link under the old key so it can be re-inserted under
	// the new one.
	reindex := func(p, other *Peer) []PeerID {
		ids := make([]PeerID, 0, p.neighbors.Len())
		for entry := range p.neighbors.All() {
			if entry.ID == other.id {
				continue
			}
			ids = append(ids, entry.ID)
		}
		for _, id := range ids {
			e.peers[id].neighbors.Remove(p.id)
		}
		return ids
	}
	aNeighbors := reindex(a, b)
	bNeighbors := reindex(b, a)
	a.neighbors.Remove(b.id)
	b.neighbors.Remove(a.id)

	a.key, b.key = b.key, a.key
	a.contents, b.contents = b.contents, a.contents

	for _, id := range aNeighbors {
		e.peers[id].neighbors.Insert(a.id, a.key)
	}
	for _, id := range bNeighbors {
		e.peers[id].neighbors.Insert(b.id, b.key)
	}
	a.neighbors.Insert(b.id, b.key)
	b.neighbors.Insert(a.id, a.key)
}
