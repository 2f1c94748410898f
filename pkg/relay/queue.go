package relay

import (
	"errors"
	"sync"
	"time"
)

var errQueueClosed = errors.New("relay: queue closed")

// Queue is the correlation queue: an unbounded FIFO of pending requests
// shared by every dispatcher goroutine and drained by exactly one pump.
// FIFO order is exact — if A is enqueued before B, A is dequeued before B —
// and no request is ever dequeued twice or dropped.
type Queue struct {
	mu       sync.Mutex
	items    []*PendingRequest
	notEmpty chan struct{}
	closed   bool
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		notEmpty: make(chan struct{}, 1),
	}
}

// Enqueue appends a pending request. It never blocks and is safe under
// concurrent callers. Enqueueing on a closed queue fails the request
// immediately with a ConnectionError instead of letting it hang.
func (q *Queue) Enqueue(p *PendingRequest) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		p.Fail(&ConnectionError{Op: "send", Cause: errQueueClosed})
		return
	}
	p.enqueued = time.Now()
	q.items = append(q.items, p)
	q.mu.Unlock()

	// Nudge the consumer. The channel has capacity 1, so a pending nudge
	// already covers everything appended so far.
	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the oldest pending request, waiting up to
// timeout for one to arrive. The bounded wait is what lets the single
// consumer interleave shutdown checks with draining. The second return is
// false when the wait expired with the queue still empty.
func (q *Queue) Dequeue(timeout time.Duration) (*PendingRequest, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if p, ok := q.tryDequeue(); ok {
			return p, true
		}
		select {
		case <-q.notEmpty:
		case <-timer.C:
			// One last look: an enqueue may have raced the timer.
			return q.tryDequeue()
		}
	}
}

// TryDequeue removes and returns the oldest pending request without
// waiting. Used by the pump to drain-and-fail after the link breaks.
func (q *Queue) TryDequeue() (*PendingRequest, bool) {
	return q.tryDequeue()
}

func (q *Queue) tryDequeue() (*PendingRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	p := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return p, true
}

// Len reports the number of queued requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue closed. Requests already queued are left for the
// consumer to drain; new enqueues fail fast.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
