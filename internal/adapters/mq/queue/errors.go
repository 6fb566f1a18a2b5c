package queue

import "errors"

// ErrQueueClosed is returned by Next once the queue is closed and empty.
var ErrQueueClosed = errors.New("notification queue closed")
