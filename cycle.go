package darksim

import (
	"errors"

	"github.com/smallworldnet/darksim/pkg/keyspace"
)

// Tick runs one simulation cycle for peer id at virtual time now: periodic
// record cleanup, a periodic swap attempt, and one request. A biased coin
// decides between a GET for an existing content key and a PUT of a fresh
// one.
func (e *Engine) Tick(id PeerID, now int64) error {
	p, err := e.peer(id)
	if err != nil {
		return err
	}

	if e.cfg.CleanupPeriod > 0 && now%e.cfg.CleanupPeriod == 0 {
		if n := p.records.EvictIdle(e.cfg.RecordIdleThreshold); n > 0 {
			e.stats.RecordsEvicted += n
			e.metrics.RecordsEvicted(n)
			e.log.Debug("records evicted", "peer", p.id, "count", n)
		}
	}

	if e.cfg.SwapPeriod > 0 && now%e.cfg.SwapPeriod == 0 {
		e.initiateSwap(p)
	}

	if p.rng.Float64() < e.cfg.BiasFactor {
		e.performGet(p)
	} else {
		e.performPut(p)
	}
	return nil
}

// performGet originates a GET for a random key already present in the
// overlay. With nothing published yet there is nothing to ask for, so the
// request is skipped.
func (e *Engine) performGet(p *Peer) {
	key, err := e.alloc.PickContent()
	if err != nil {
		e.metrics.RequestSkipped("no_content")
		return
	}
	if p.Stores(key) {
		e.metrics.RequestSkipped("already_stored")
		return
	}
	cand, ok := p.nearestNeighbor(key)
	if !ok {
		e.metrics.RequestSkipped("no_neighbors")
		return
	}

	m := e.newMessage(TypeGet, key, e.cfg.MaxHTL, p)
	m.decrementHTL()
	e.send(cand.ID, m)
	p.records.Create(m.ID, p.id)
	p.records.RecordSent(m.ID, cand.ID)
	e.stats.GetsStarted++
	e.log.Debug("get started", "peer", p.id, "key", key)
}

// performPut originates a PUT of a freshly allocated content key. If the
// originator itself is the closest peer it knows, the key is stored and
// replicated on the spot without any routing.
func (e *Engine) performPut(p *Peer) {
	key, err := e.alloc.Generate(true)
	if err != nil {
		if errors.Is(err, keyspace.ErrAllocationExhausted) {
			e.metrics.RequestSkipped("keyspace_exhausted")
			e.log.Warn("content key allocation exhausted", "peer", p.id)
			return
		}
		e.log.Warn("content key allocation failed", "peer", p.id, "error", err)
		return
	}
	if p.Stores(key) {
		e.metrics.RequestSkipped("already_stored")
		return
	}
	cand, ok := p.nearestNeighbor(key)
	if !ok {
		e.metrics.RequestSkipped("no_neighbors")
		return
	}

	if keyspace.Closer(p.key, cand.Key, key) {
		p.addContent(key)
		e.metrics.ContentStored("local")
		e.replicate(p, key)
		e.stats.PutsStarted++
		return
	}

	m := e.newMessage(TypePut, key, e.cfg.MaxHTL, p)
	m.decrementHTL()
	e.send(cand.ID, m)
	p.records.Create(m.ID, p.id)
	p.records.RecordSent(m.ID, cand.ID)
	e.stats.PutsStarted++
	e.log.Debug("put started", "peer", p.id, "key", key)
}
