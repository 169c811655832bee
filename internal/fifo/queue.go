// Package fifo is a typed first-in first-out queue over a ring buffer. Add and Remove are O(1).
// Queue is not synchronized.
package fifo

import (
	"github.com/eapache/queue"
)

type Queue[T any] struct {
	items *queue.Queue
}

func New[T any]() *Queue[T] {
	return &Queue[T]{items: queue.New()}
}

func (q *Queue[T]) Len() int {
	return q.items.Length()
}

// Add places item at the tail of the queue.
func (q *Queue[T]) Add(item T) {
	q.items.Add(item)
}

// Remove takes the item at the head of the queue. It panics if the queue is empty.
func (q *Queue[T]) Remove() T {
	return q.items.Remove().(T)
}

// Peek returns the head of the queue without removing it. It panics if the queue is empty.
func (q *Queue[T]) Peek() T {
	return q.items.Peek().(T)
}

// Visit calls visit for every item from head to tail and stops early once visit returns false.
func (q *Queue[T]) Visit(visit func(index int, item T) bool) {
	for i := 0; i < q.items.Length(); i++ {
		if !visit(i, q.items.Get(i).(T)) {
			return
		}
	}
}
