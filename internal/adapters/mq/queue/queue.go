// Package queue buffers race notifications for the host.
//
// The service publishes synchronously to its subscribers; this queue is a
// subscriber that never blocks the publisher and lets the host drain
// notifications at its own pace.
package queue

import (
	"context"
	"sync"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/pkg/metrics"
)

const defaultCapacity = 256

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds n to the queue.
	// Returns false if the queue is full or closed and n was dropped.
	Enqueue(ctx context.Context, n model.Notification) bool

	// Dequeue returns the channel notifications are read from. It is
	// closed when the queue is closed.
	Dequeue() <-chan model.Notification

	// Next blocks for one notification.
	Next(ctx context.Context) (model.Notification, error)

	// Drain returns up to max queued notifications without blocking.
	// max <= 0 drains everything queued.
	Drain(max int) []model.Notification

	Len() int

	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan model.Notification
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan model.Notification, q.capacity)
	metrics.UpdateNotificationQueueSize(0)
	return q
}

// Publish is the subscriber hook handed to the service.
func (q *InMemoryQueue) Publish(n model.Notification) {
	q.Enqueue(context.Background(), n)
}

// Enqueue adds n to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n model.Notification) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordNotificationDropped()
		return false
	}

	select {
	case q.events <- n:
		metrics.UpdateNotificationQueueSize(len(q.events))
		return true
	default:
		metrics.RecordNotificationDropped()
		return false
	}
}

// Dequeue returns the underlying channel.
func (q *InMemoryQueue) Dequeue() <-chan model.Notification {
	return q.events
}

// Next blocks until a notification is queued, the queue is closed and
// empty (ErrQueueClosed), or ctx is done.
func (q *InMemoryQueue) Next(ctx context.Context) (model.Notification, error) {
	select {
	case n, ok := <-q.events:
		if !ok {
			return model.Notification{}, ErrQueueClosed
		}
		metrics.UpdateNotificationQueueSize(len(q.events))
		return n, nil
	case <-ctx.Done():
		return model.Notification{}, ctx.Err()
	}
}

// Drain returns up to max queued notifications without blocking.
func (q *InMemoryQueue) Drain(max int) []model.Notification {
	var out []model.Notification
	for max <= 0 || len(out) < max {
		select {
		case n, ok := <-q.events:
			if !ok {
				return out
			}
			out = append(out, n)
		default:
			metrics.UpdateNotificationQueueSize(len(q.events))
			return out
		}
	}
	metrics.UpdateNotificationQueueSize(len(q.events))
	return out
}

// Len returns the number of queued notifications.
func (q *InMemoryQueue) Len() int {
	return len(q.events)
}

// Close stops accepting notifications. Queued ones can still be read.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
