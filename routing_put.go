package darksim

import "github.com/smallworldnet/darksim/pkg/keyspace"

// handlePut routes a PUT one step. PUT is pure greedy descent, no
// backtracking: the content settles at the first peer with no neighbor
// strictly closer to the key, which then answers PUT_OK and fans the key
// out to its own closest neighbors.
func (e *Engine) handlePut(p *Peer, m *Message) {
	if p.Stores(m.Target) {
		e.changeAndSend(TypePutCollision, p, m.LastHop, m)
		return
	}

	receivedFrom := m.LastHop

	if cand, ok := p.nearestNeighbor(m.Target); ok &&
		keyspace.Closer(cand.Key, p.key, m.Target) {
		e.forwardPut(p, cand.ID, m, receivedFrom)
		return
	}

	// Locally optimal: the key lives here.
	p.addContent(m.Target)
	e.metrics.ContentStored("put")
	e.changeAndSend(TypePutOK, p, receivedFrom, m)
	e.replicate(p, m.Target)
}

// forwardPut sends the descent on to cand and records the hop for the
// answer's way back.
func (e *Engine) forwardPut(p *Peer, cand PeerID, m *Message, receivedFrom PeerID) {
	if _, seen := p.records.Get(m.ID); !seen {
		p.records.Create(m.ID, receivedFrom)
	}
	p.records.RecordSent(m.ID, cand)
	m.decrementHTL()
	m.LastHop = p.id
	e.send(cand, m)
}

// replicate fans content out from p toward its ReplicationFactor closest
// neighbors. All copies share one message id so peers on overlapping
// branches can detect re-visits, and p registers itself as originator so
// any replication collision unwinding to it stops here.
func (e *Engine) replicate(p *Peer, content keyspace.Key) {
	targets := p.neighbors.TopKNearest(content, e.cfg.ReplicationFactor)
	if len(targets) == 0 {
		return
	}

	first := e.newMessage(TypePutReplication, content, e.cfg.MaxHTL, p)
	first.decrementHTL()
	p.records.Create(first.ID, p.id)

	for i, t := range targets {
		m := first
		if i > 0 {
			m = first.Clone()
		}
		p.records.RecordSent(m.ID, t.ID)
		e.send(t.ID, m)
	}
}

// handleReplication routes a PUT_REPLICATION (or its collision echo) one
// step. Unlike a PUT, replication never reports failure: when the budget
// runs out or no strictly closer neighbor exists, the copy is stored
// where it stands.
func (e *Engine) handleReplication(p *Peer, m *Message) {
	isRepl := m.Type == TypePutReplication
	closest := m.markClosestSeen(p.key)

	_, seen := p.records.Get(m.ID)

	if isRepl && seen {
		// Two replication branches met. Hand this copy back with its
		// spent HTL; the sender will push it toward fresher territory.
		e.changeAndSend(TypePutReplCollision, p, m.LastHop, m)
		return
	}

	if closest {
		m.HTL = e.cfg.MaxHTL
	}

	receivedFrom := m.LastHop

	if m.HTL > 0 {
		cand, ok := e.nextCandidate(p, m, receivedFrom)
		if ok && keyspace.Closer(cand.Key, p.key, m.Target) {
			if isRepl {
				e.forwardPut(p, cand.ID, m, receivedFrom)
				return
			}
			// A bounced copy goes back out as a regular
			// replication toward the next untried neighbor.
			m.decrementHTL()
			e.changeAndSend(TypePutReplication, p, cand.ID, m)
			p.records.RecordSent(m.ID, cand.ID)
			return
		}
	}

	e.storeReplica(p, m, isRepl)
}

// storeReplica settles a replication copy at p.
func (e *Engine) storeReplica(p *Peer, m *Message, isRepl bool) {
	p.addContent(m.Target)
	e.metrics.ContentStored("replication")
	e.stats.ReplicasStored++
	e.log.Debug("replica stored", "peer", p.id, "key", m.Target)

	if isRepl {
		if _, seen := p.records.Get(m.ID); !seen {
			p.records.Create(m.ID, m.LastHop)
		}
	}
}
