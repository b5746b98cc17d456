package queue

import (
	"sync"
)

// Queue is a thread-safe FIFO. A bounded queue drops its oldest items when
// a push would exceed the limit.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	limit   int
	dropped uint64
}

// New creates an unbounded queue.
func New[T any]() *Queue[T] {
	return NewBounded[T](0)
}

// NewBounded creates a queue holding at most limit items. A limit of zero
// or less means unbounded.
func NewBounded[T any](limit int) *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
		limit: limit,
	}
}

// Push appends items and returns how many old items were dropped to make room.
func (q *Queue[T]) Push(items ...T) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
	return q.trim()
}

// Requeue puts items back at the front, ahead of anything pushed since they
// were taken.
func (q *Queue[T]) Requeue(items ...T) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(append(make([]T, 0, len(items)+len(q.items)), items...), q.items...)
	return q.trim()
}

func (q *Queue[T]) trim() int {
	if q.limit <= 0 || len(q.items) <= q.limit {
		return 0
	}
	n := len(q.items) - q.limit
	q.items = q.items[n:]
	q.dropped += uint64(n)
	return n
}

// Pop removes and returns the first item. ok is false when the queue is empty.
func (q *Queue[T]) Pop() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return item, false
	}
	item = q.items[0]
	q.items = q.items[1:]
	return item, true
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many items the limit has discarded.
func (q *Queue[T]) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// GetAndEmpty returns all items and clears the queue.
func (q *Queue[T]) GetAndEmpty() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = make([]T, 0, cap(q.items))
	return result
}
