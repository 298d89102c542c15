package keyspace

import (
	"errors"
	"math/rand"
	"testing"
)

func TestAllocator_GenerateUnique(t *testing.T) {
	a := NewAllocator(7)

	seen := make(map[Key]struct{})
	for i := 0; i < 1000; i++ {
		content := i%2 == 0
		k, err := a.Generate(content)
		if err != nil {
			t.Fatalf("Generate(%v) failed: %v", content, err)
		}
		if k < 0 || k >= 1 {
			t.Fatalf("Generate returned %v, want in [0, 1)", k)
		}
		if _, dup := seen[k]; dup {
			t.Fatalf("Generate returned duplicate key %v", k)
		}
		seen[k] = struct{}{}
	}
	if got := a.ContentCount(); got != 500 {
		t.Errorf("ContentCount() = %d, want 500", got)
	}
	if got := a.PeerCount(); got != 500 {
		t.Errorf("PeerCount() = %d, want 500", got)
	}
}

func TestAllocator_PickContent(t *testing.T) {
	a := NewAllocator(11)

	if _, err := a.PickContent(); !errors.Is(err, ErrNoContentAvailable) {
		t.Fatalf("PickContent on empty allocator: err = %v, want ErrNoContentAvailable", err)
	}

	want := make(map[Key]struct{})
	for i := 0; i < 10; i++ {
		k, err := a.Generate(true)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		want[k] = struct{}{}
	}

	for i := 0; i < 100; i++ {
		k, err := a.PickContent()
		if err != nil {
			t.Fatalf("PickContent failed: %v", err)
		}
		if _, ok := want[k]; !ok {
			t.Fatalf("PickContent returned %v, not an allocated content key", k)
		}
	}
}

// fixedSource always yields the same value, so every Float64 draw collides
// with the previous one.
type fixedSource struct{}

func (fixedSource) Int63() int64 { return 1 << 62 }
func (fixedSource) Seed(int64)   {}

func TestAllocator_GenerateExhausted(t *testing.T) {
	a := &Allocator{
		rng:      rand.New(fixedSource{}),
		peers:    make(map[Key]struct{}),
		contents: make(map[Key]struct{}),
	}

	if _, err := a.Generate(false); err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	if _, err := a.Generate(true); !errors.Is(err, ErrAllocationExhausted) {
		t.Fatalf("second Generate: err = %v, want ErrAllocationExhausted", err)
	}
}
