package records

import "testing"

type clock struct{ now int64 }

func (c *clock) fn() func() int64 {
	return func() int64 { return c.now }
}

func TestStore_CreateAndGet(t *testing.T) {
	c := &clock{}
	s := NewStore[int](0, c.fn())

	if _, ok := s.Get(1); ok {
		t.Fatal("Get(1) on empty store reported a record")
	}

	s.Create(1, 7)
	r, ok := s.Get(1)
	if !ok {
		t.Fatal("Get(1) missed after Create")
	}
	if r.ReceivedFrom != 7 {
		t.Errorf("ReceivedFrom = %d, want 7", r.ReceivedFrom)
	}
	if r.AlreadySent(3) {
		t.Error("AlreadySent(3) = true on fresh record")
	}
}

func TestStore_RecordSentCreatesAsSelf(t *testing.T) {
	c := &clock{}
	s := NewStore[int](42, c.fn())

	s.RecordSent(5, 9)

	r, ok := s.Get(5)
	if !ok {
		t.Fatal("RecordSent did not create a record")
	}
	if r.ReceivedFrom != 42 {
		t.Errorf("ReceivedFrom = %d, want self (42)", r.ReceivedFrom)
	}
	if !s.AlreadySent(5, 9) {
		t.Error("AlreadySent(5, 9) = false after RecordSent")
	}
	if s.AlreadySent(5, 10) {
		t.Error("AlreadySent(5, 10) = true, never sent there")
	}
	if s.AlreadySent(6, 9) {
		t.Error("AlreadySent on unknown id = true")
	}
}

func TestStore_EvictIdle(t *testing.T) {
	c := &clock{}
	s := NewStore[int](0, c.fn())

	c.now = 10
	s.Create(1, 2)
	c.now = 50
	s.Create(2, 3)

	c.now = 100
	// age of record 1 is 90, record 2 is 50
	if got := s.EvictIdle(60); got != 1 {
		t.Fatalf("EvictIdle(60) evicted %d, want 1", got)
	}
	if _, ok := s.Get(1); ok {
		t.Error("record 1 survived eviction")
	}
	if _, ok := s.Get(2); !ok {
		t.Error("record 2 was evicted, want survive")
	}
}

func TestStore_EvictIdleBoundary(t *testing.T) {
	c := &clock{}
	s := NewStore[int](0, c.fn())

	s.Create(1, 2)
	c.now = 60
	// age equals threshold exactly: strictly-greater rule keeps it
	if got := s.EvictIdle(60); got != 0 {
		t.Fatalf("EvictIdle at exact threshold evicted %d, want 0", got)
	}
	c.now = 61
	if got := s.EvictIdle(60); got != 1 {
		t.Fatalf("EvictIdle past threshold evicted %d, want 1", got)
	}
}

func TestStore_TouchRefreshesIdleTimer(t *testing.T) {
	c := &clock{}
	s := NewStore[int](0, c.fn())

	s.Create(1, 2)
	c.now = 90
	s.Get(1) // touch
	c.now = 100
	if got := s.EvictIdle(60); got != 0 {
		t.Fatalf("EvictIdle evicted %d, want 0: Get should refresh the timer", got)
	}

	c.now = 200
	s.RecordSent(1, 5) // touch
	c.now = 250
	if got := s.EvictIdle(60); got != 0 {
		t.Fatalf("EvictIdle evicted %d, want 0: RecordSent should refresh the timer", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
