package eventbus

import "sync"

// Queue buffers outbound events until the consumer drains them. This
// is the single point where mutable state crosses the engine boundary;
// draining removes everything in one shot.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event to the queue.
func (q *Queue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
}

// Drain returns every buffered event in emission order and clears the
// queue.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.events
	q.events = nil
	return drained
}

// Len returns the number of buffered events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
