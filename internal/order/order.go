// Package order models the FIFO queue of timed orders awaiting assignment,
// in the arena/index style §9 calls for: orders are immutable value structs
// referenced by integer id, never intrusive pointers.
package order

// Order is an immutable request to move the shelf ShelfID to StationID,
// created at CreationTick.
type Order struct {
	ID           int
	CreationTick int
	ShelfID      int
	StationID    int
}

// Queue is a FIFO of pending orders. Orders are appended at intake and
// removed on successful dispatch; an order the dispatcher could not commit
// this tick because no path was found is moved to the head so it is the
// first thing retried next tick. Orders no idle robot chose stay in place.
type Queue struct {
	pending []Order
}

// NewQueue returns an empty order queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an order to the tail of the queue.
func (q *Queue) Push(o Order) {
	q.pending = append(q.pending, o)
}

// PushFront returns an order to the head of the queue, used when a dispatch
// attempt this tick could not be committed.
func (q *Queue) PushFront(o Order) {
	q.pending = append([]Order{o}, q.pending...)
}

// Remove deletes the order at the given queue index, preserving order.
func (q *Queue) Remove(idx int) {
	q.pending = append(q.pending[:idx], q.pending[idx+1:]...)
}

// Pending returns the current queue contents. Callers must not mutate the
// returned slice in place; use Remove/PushFront to change queue state.
func (q *Queue) Pending() []Order {
	return q.pending
}

// Len reports the number of orders currently queued.
func (q *Queue) Len() int { return len(q.pending) }
