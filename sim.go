package darksim

import (
	"math/rand"

	"github.com/smallworldnet/darksim/internal/eventqueue"
)

// delivery is one in-flight message.
type delivery struct {
	from PeerID
	to   PeerID
	msg  *Message
}

// Simulation drives an Engine over discrete virtual time. It owns the
// clock and the delivery queue and implements the engine's Transport:
// peers are ticked at a fixed cadence, messages arrive after a random
// bounded delay, and everything interleaves on one goroutine in strict
// timestamp order.
type Simulation struct {
	cfg    *Config
	log    Logger
	engine *Engine

	queue eventqueue.Queue[delivery]
	now   int64

	// delayRNG and orderRNG are dedicated streams, so delivery delays and
	// tick shuffling stay reproducible independently of peer behavior.
	delayRNG *rand.Rand
	orderRNG *rand.Rand
}

// NewSimulation validates cfg and builds a simulation with an empty
// overlay. Populate the engine with AddPeer and Link before Run.
func NewSimulation(cfg *Config) (*Simulation, error) {
	s := &Simulation{cfg: cfg}
	engine, err := NewEngine(cfg, s, func() int64 { return s.now })
	if err != nil {
		return nil, err
	}
	// Validated and defaulted by NewEngine.
	s.engine = engine
	s.log = cfg.Logger
	s.delayRNG = rand.New(rand.NewSource(cfg.Seed + 1))
	s.orderRNG = rand.New(rand.NewSource(cfg.Seed + 2))
	return s, nil
}

// Engine returns the simulation's engine, for overlay construction and
// for reading results.
func (s *Simulation) Engine() *Engine { return s.engine }

// Now returns the current virtual time.
func (s *Simulation) Now() int64 { return s.now }

// Pending returns the number of in-flight messages.
func (s *Simulation) Pending() int { return s.queue.Len() }

// ScheduleDelivery implements Transport: the message is queued to arrive
// after a uniform random delay in [MinDelay, MaxDelay].
func (s *Simulation) ScheduleDelivery(from, to PeerID, msg *Message) {
	delay := s.cfg.MinDelay
	if span := s.cfg.MaxDelay - s.cfg.MinDelay; span > 0 {
		delay += s.delayRNG.Int63n(span + 1)
	}
	s.queue.Push(s.now+delay, delivery{from: from, to: to, msg: msg})
	s.engine.metrics.PendingDeliveries(s.queue.Len())
}

// Run executes the given number of cycles of virtual time and then drains
// every in-flight message. Ticks and deliveries are processed in a single
// timestamp order; on an exact tie the tick runs first, then the
// deliveries due at that boundary. Run can be called again to continue an
// earlier run.
func (s *Simulation) Run(cycles int) error {
	step := s.cfg.CycleStep
	nextTick := s.now
	if s.now > 0 {
		// Continuation: resume the cadence after the current time.
		nextTick = ((s.now + step - 1) / step) * step
	}

	ticksDone := 0
	for ticksDone < cycles || s.queue.Len() > 0 {
		at, ok := s.queue.NextAt()
		if ticksDone < cycles && (!ok || at >= nextTick) {
			s.now = nextTick
			if err := s.tickAll(); err != nil {
				return err
			}
			ticksDone++
			nextTick += step
			continue
		}
		if !ok {
			break
		}
		ev, at, _ := s.queue.Pop()
		s.now = at
		s.engine.metrics.PendingDeliveries(s.queue.Len())
		if err := s.engine.HandleMessage(ev.to, ev.msg); err != nil {
			return err
		}
	}
	return nil
}

// tickAll runs one cycle for every peer in a fresh random order. The
// shuffle keeps low peer IDs from winning every same-cycle race, the way
// they would under a fixed sweep.
func (s *Simulation) tickAll() error {
	for _, i := range s.orderRNG.Perm(s.engine.Peers()) {
		if err := s.engine.Tick(PeerID(i), s.now); err != nil {
			return err
		}
	}
	return nil
}
