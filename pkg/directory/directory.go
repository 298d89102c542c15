// Package directory maintains a peer's neighborhood view ordered by
// location key and answers the nearest-key queries behind every routing
// decision.
//
// The directory stores opaque peer handles together with the location key
// each neighbor occupied at insert time. When a neighbor's key changes (a
// location swap), the owner removes and re-inserts it. Entries are kept in
// a sorted slice and all queries run on snapshots, so a lookup issued
// mid-routing never observes a partially mutated ordering.
package directory

import (
	"errors"
	"iter"
	"sort"

	"github.com/smallworldnet/darksim/pkg/keyspace"
)

// ErrOutOfRange indicates an index query beyond the directory size.
// This is a programming error: callers are expected to bound indices
// by Len.
var ErrOutOfRange = errors.New("neighbor index out of range")

// Entry is one neighbor: a stable handle plus the location key the
// directory has it sorted under.
type Entry[ID comparable] struct {
	ID  ID
	Key keyspace.Key
}

// Directory is an ordered index of a single peer's neighbors. It is
// exclusively owned by that peer and mutated only while handling the
// peer's current event, so it needs no locking.
type Directory[ID comparable] struct {
	entries []Entry[ID] // ascending by Key
	keys    map[ID]keyspace.Key
}

// New creates an empty directory.
func New[ID comparable]() *Directory[ID] {
	return &Directory[ID]{keys: make(map[ID]keyspace.Key)}
}

// Len returns the number of neighbors.
func (d *Directory[ID]) Len() int {
	return len(d.entries)
}

// Contains reports whether id is a neighbor.
func (d *Directory[ID]) Contains(id ID) bool {
	_, ok := d.keys[id]
	return ok
}

// Insert adds a neighbor under the given key. It returns false, leaving the
// directory unchanged, if id is already present.
func (d *Directory[ID]) Insert(id ID, key keyspace.Key) bool {
	if _, ok := d.keys[id]; ok {
		return false
	}
	i := sort.Search(len(d.entries), func(i int) bool {
		return d.entries[i].Key >= key
	})
	d.entries = append(d.entries, Entry[ID]{})
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = Entry[ID]{ID: id, Key: key}
	d.keys[id] = key
	return true
}

// Remove deletes a neighbor. It returns false if id is not present.
func (d *Directory[ID]) Remove(id ID) bool {
	key, ok := d.keys[id]
	if !ok {
		return false
	}
	i := sort.Search(len(d.entries), func(i int) bool {
		return d.entries[i].Key >= key
	})
	// Peer keys are unique, but scan forward in case of equal sort keys.
	for i < len(d.entries) && d.entries[i].ID != id {
		i++
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.keys, id)
	return true
}

// At returns the i-th neighbor in ascending key order.
// Fails with ErrOutOfRange if i is not in [0, Len).
func (d *Directory[ID]) At(i int) (Entry[ID], error) {
	if i < 0 || i >= len(d.entries) {
		return Entry[ID]{}, ErrOutOfRange
	}
	return d.entries[i], nil
}

// All returns a lazy, restartable iterator over the neighbors in ascending
// key order. The directory must not be mutated during a single pass.
func (d *Directory[ID]) All() iter.Seq[Entry[ID]] {
	return func(yield func(Entry[ID]) bool) {
		for _, e := range d.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// TopKNearest returns up to k neighbors ranked nearest-first by circular
// distance to target. It operates on a snapshot of the current ordering and
// never mutates the live directory.
//
// The ranking splits the ordering into two cursors, the keys strictly below
// target (walked descending) and the keys strictly above (walked ascending),
// and repeatedly takes whichever cursor front is nearer; once one cursor
// drains, the remainder is taken nearest-end-first. Equal distances resolve
// toward the ascending cursor, so results are deterministic.
func (d *Directory[ID]) TopKNearest(target keyspace.Key, k int) []Entry[ID] {
	if k <= 0 || len(d.entries) == 0 {
		return nil
	}

	snap := make([]Entry[ID], len(d.entries))
	copy(snap, d.entries)

	// split: first index with key strictly greater than target
	split := sort.Search(len(snap), func(i int) bool {
		return snap[i].Key > target
	})

	// below-cursor walks snap[0:split] from the back; a key equal to target
	// belongs to neither cursor and is skipped.
	loHi := split - 1
	if loHi >= 0 && snap[loHi].Key == target {
		loHi--
	}
	loLo := 0
	hiLo, hiHi := split, len(snap)-1

	out := make([]Entry[ID], 0, k)
	for loLo <= loHi && hiLo <= hiHi && len(out) < k {
		if keyspace.Distance(snap[loHi].Key, target) < keyspace.Distance(snap[hiLo].Key, target) {
			out = append(out, snap[loHi])
			loHi--
		} else {
			out = append(out, snap[hiLo])
			hiLo++
		}
	}

	// drain whichever cursor is left, nearest end first (circular distance
	// is not monotone along a single direction, so compare both ends)
	lo, hi := loLo, loHi
	if loLo > loHi {
		lo, hi = hiLo, hiHi
	}
	for lo <= hi && len(out) < k {
		if keyspace.Distance(snap[lo].Key, target) < keyspace.Distance(snap[hi].Key, target) {
			out = append(out, snap[lo])
			lo++
		} else {
			out = append(out, snap[hi])
			hi--
		}
	}

	return out
}
