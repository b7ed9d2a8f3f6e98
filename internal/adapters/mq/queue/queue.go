// Package queue carries refresh requests from producers (the API, the
// scheduler) to the refresh worker.
package queue

import (
	"context"
	"sync"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
	"github.com/osvo/club-world-cup-tracker/pkg/metrics"
)

const defaultCapacity = 16

// Request is the payload flowing through the queue.
type Request = model.RefreshRequest

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request. It returns false without blocking if the
	// queue is full, closed or ctx is already done.
	Enqueue(ctx context.Context, r Request) bool

	// Dequeue returns the channel requests are delivered on. It is closed
	// once the queue is closed and drained.
	Dequeue() <-chan Request

	// Len returns the number of pending requests.
	Len() int

	// Cap returns the queue capacity.
	Cap() int

	// Close stops accepting requests.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a bounded queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.requests = make(chan Request, q.capacity)
	metrics.UpdateQueue(0, q.capacity)
	return q
}

// Enqueue adds r if there is room.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordError("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordError("queue", "context_cancelled")
		return false
	}

	select {
	case q.requests <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueue(len(q.requests), q.capacity)
		return true
	default:
		metrics.RecordQueueRejected()
		return false
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue() <-chan Request {
	return q.requests
}

// Len returns the number of pending requests.
func (q *InMemoryQueue) Len() int {
	n := len(q.requests)
	metrics.UpdateQueue(n, q.capacity)
	return n
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close stops accepting requests. Pending requests stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.requests)
	q.closed = true
	return nil
}
