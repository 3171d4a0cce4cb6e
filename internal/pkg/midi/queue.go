package midi

import (
	"fmt"
	"sync"
)

type OverflowPolicy int

const (
	DropOldest OverflowPolicy = iota // discard the oldest pending events to make room
	DropNewest                       // discard incoming batch that does not fit as a whole
)

func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "drop_oldest"
	case DropNewest:
		return "drop_newest"
	default:
		return "unknown"
	}
}

func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "drop_oldest", "":
		return DropOldest, nil
	case "drop_newest":
		return DropNewest, nil
	default:
		return DropOldest, fmt.Errorf("unsupported overflow policy: \"%s\"", s)
	}
}

// Queue hands events over from producers to a single periodic consumer.
// Enqueue never blocks on the consumer, DrainAll swaps pending events out in one step.
// Bounded queues keep events in a ring so overflow handling stays O(1).
type Queue struct {
	mu      sync.Mutex
	pending []Event // unbounded mode

	ring       []Event // bounded mode
	head, size int

	capacity int
	policy   OverflowPolicy
	dropped  uint64
}

// NewQueue creates a queue, capacity 0 means unbounded.
func NewQueue(capacity int, policy OverflowPolicy) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	q := &Queue{capacity: capacity, policy: policy}
	if capacity > 0 {
		q.ring = make([]Event, capacity)
	}
	return q
}

// Enqueue appends events in order, the whole batch is visible to the consumer at once.
// DropNewest rejects a batch that does not fit entirely, so a chord never sounds partially.
// DropOldest may split an older batch, including note-offs already paired with a delivered note-on.
func (q *Queue) Enqueue(events ...Event) {
	if len(events) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity == 0 {
		q.pending = append(q.pending, events...)
		return
	}

	if q.policy == DropNewest && q.size+len(events) > q.capacity {
		q.dropped += uint64(len(events))
		return
	}

	for _, ev := range events {
		if q.size < q.capacity {
			q.ring[(q.head+q.size)%q.capacity] = ev
			q.size++
			continue
		}
		q.dropped++
		// overwrite the oldest slot and move head forward
		q.ring[q.head] = ev
		q.head = (q.head + 1) % q.capacity
	}
}

// DrainAll returns every pending event in insertion order and leaves the queue empty.
func (q *Queue) DrainAll() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity == 0 {
		out := q.pending
		q.pending = nil
		return out
	}

	if q.size == 0 {
		return nil
	}
	out := make([]Event, q.size)
	for i := range out {
		idx := (q.head + i) % q.capacity
		out[i] = q.ring[idx]
		q.ring[idx] = nil
	}
	q.head, q.size = 0, 0
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.capacity == 0 {
		return len(q.pending)
	}
	return q.size
}

// Dropped returns how many events were discarded by the overflow policy so far.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
