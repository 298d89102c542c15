// Package eventqueue provides the timestamped priority queue driving the
// discrete-event simulation: items come out in non-decreasing timestamp
// order, with equal timestamps broken by enqueue order.
package eventqueue

import "container/heap"

type item[T any] struct {
	at  int64
	seq uint64
	v   T
}

type items[T any] []item[T]

func (h items[T]) Len() int { return len(h) }

func (h items[T]) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h items[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *items[T]) Push(x any) { *h = append(*h, x.(item[T])) }

func (h *items[T]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Queue is a min-heap of values ordered by (timestamp, enqueue sequence).
// The zero value is ready to use. Not safe for concurrent use.
type Queue[T any] struct {
	heap items[T]
	seq  uint64
}

// Push schedules v at the given timestamp.
func (q *Queue[T]) Push(at int64, v T) {
	heap.Push(&q.heap, item[T]{at: at, seq: q.seq, v: v})
	q.seq++
}

// Pop removes and returns the earliest value and its timestamp.
// ok is false when the queue is empty.
func (q *Queue[T]) Pop() (v T, at int64, ok bool) {
	if len(q.heap) == 0 {
		return v, 0, false
	}
	it := heap.Pop(&q.heap).(item[T])
	return it.v, it.at, true
}

// NextAt returns the timestamp of the earliest value without removing it.
// ok is false when the queue is empty.
func (q *Queue[T]) NextAt() (at int64, ok bool) {
	if len(q.heap) == 0 {
		return 0, false
	}
	return q.heap[0].at, true
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int {
	return len(q.heap)
}
