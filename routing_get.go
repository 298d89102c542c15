package darksim

// handleGet routes a GET request one step. The same handler serves fresh
// GETs and GET_NOTFOUND backtracks: a backtrack re-enters the search at
// the returning peer and tries its next-best untried neighbor, which is
// what makes the walk a depth-first search rather than a single greedy
// descent.
func (e *Engine) handleGet(p *Peer, m *Message) {
	fresh := m.Type == TypeGet
	closest := m.markClosestSeen(p.key)

	if p.Stores(m.Target) {
		if fresh {
			e.changeAndSend(TypeGetFound, p, m.LastHop, m)
			return
		}
		// A backtrack landed on a peer that stores the key (a swap
		// can move content under a running search). The answer
		// retraces the recorded path, not the backtrack hop.
		m.Type = TypeGetFound
		e.deliverBackward(p, m)
		return
	}

	_, seen := p.records.Get(m.ID)

	if fresh && seen {
		// Routing cycle: this peer already participates in the
		// search. Bounce the copy straight back so the sender tries
		// its next candidate.
		e.changeAndSend(TypeGetNotFound, p, m.LastHop, m)
		return
	}
	if !fresh && !seen {
		e.log.Warn("backtrack dropped, no routing record",
			"peer", p.id, "msg", m.String())
		e.metrics.BackwardDropped()
		return
	}

	// The budget reset waits until after the cycle check: a duplicate
	// bouncing off the path-closest peer keeps its spent HTL.
	if closest {
		m.HTL = e.cfg.MaxHTL
	}

	// Candidate scans avoid the sender of this copy. On a fresh GET that
	// is the search parent; on a backtrack it is the child that just gave
	// up, which the sent-to record already rules out anyway.
	receivedFrom := m.LastHop

	if m.HTL > 0 {
		if cand, ok := e.nextCandidate(p, m, receivedFrom); ok {
			e.forwardGet(p, cand.ID, m, receivedFrom, seen)
			return
		}
	}

	// Budget spent or branch exhausted: give up here and unwind.
	if fresh {
		e.changeAndSend(TypeGetNotFound, p, m.LastHop, m)
		return
	}
	e.deliverBackward(p, m)
}

// forwardGet sends the search on to cand and records the attempt so a
// later backtrack knows what this peer has already tried.
func (e *Engine) forwardGet(p *Peer, cand PeerID, m *Message, receivedFrom PeerID, seen bool) {
	if !seen {
		p.records.Create(m.ID, receivedFrom)
	}
	p.records.RecordSent(m.ID, cand)
	m.Type = TypeGet
	m.decrementHTL()
	m.LastHop = p.id
	e.send(cand, m)
}
