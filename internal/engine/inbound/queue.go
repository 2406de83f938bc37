package inbound

import (
	"TagSpectra/internal/model"
	"sync"
)

const defaultCapacity = 65536

// Queue is the bounded FIFO of change events shared between the subscription
// delivery goroutine and the drain/flush cycle. Push never blocks the
// producer: when the queue is full, the oldest buffered event is dropped to
// keep memory bounded under a runaway source. Dropped events are counted.
type Queue struct {
	mu       sync.Mutex
	events   []model.ChangeEvent
	capacity int
	dropped  uint64
}

// NewQueue creates a queue holding at most capacity events. Non-positive
// capacities fall back to the default.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{capacity: capacity}
}

// Push enqueues one event, evicting the oldest buffered event if the queue
// is at capacity.
func (q *Queue) Push(ev model.ChangeEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= q.capacity {
		q.events = q.events[1:]
		q.dropped++
	}
	q.events = append(q.events, ev)
}

// PollAll drains and returns every currently buffered event in FIFO order
// without waiting. An empty queue yields nil, which is a normal result.
func (q *Queue) PollAll() []model.ChangeEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	events := q.events
	q.events = nil
	return events
}

// Len returns the number of currently buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Dropped returns the total number of events evicted due to overflow.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
