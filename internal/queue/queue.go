// Package queue provides an unbounded, closable work queue shared by the
// download pool and the status reporter.
package queue

import (
	"container/list"
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Pop once the queue is closed and drained.
var ErrClosed = errors.New("queue closed")

// Queue is an unbounded FIFO that also accepts items at the front.
// Push never blocks.
type Queue[T any] struct {
	mu     sync.Mutex
	items  *list.List
	notify chan struct{}
	closed bool
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items:  list.New(),
		notify: make(chan struct{}, 1),
	}
}

// PushBack appends item. It returns false if the queue is closed.
func (q *Queue[T]) PushBack(item T) bool {
	return q.push(item, false)
}

// PushFront inserts item ahead of everything already queued.
func (q *Queue[T]) PushFront(item T) bool {
	return q.push(item, true)
}

func (q *Queue[T]) push(item T, front bool) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if front {
		q.items.PushFront(item)
	} else {
		q.items.PushBack(item)
	}
	q.mu.Unlock()
	q.wake()
	return true
}

// Pop blocks until an item is available, the queue is closed and empty, or
// ctx is done.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if e := q.items.Front(); e != nil {
			q.items.Remove(e)
			more := q.items.Len() > 0 || q.closed
			q.mu.Unlock()
			if more {
				q.wake()
			}
			return e.Value.(T), nil
		}
		if q.closed {
			q.mu.Unlock()
			q.wake()
			return zero, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Close stops accepting new items. Items already queued can still be popped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

func (q *Queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
