package loop

import "sync"

// compactAfter is the consumed-slot count past which a lane is
// compacted, provided consumed slots also dominate the lane.
const compactAfter = 32

// taskQueue is the loop's intake: one FIFO lane per priority level,
// one mutex, one wake signal. Lanes are plain slices with a head
// index; consumed slots are reclaimed in batches rather than per pop.
type taskQueue struct {
	mu     sync.Mutex
	lanes  [numPriorities][]Task
	heads  [numPriorities]int
	size   int
	limit  int // 0 means unbounded
	closed bool

	// wake carries at most one pending signal; push never blocks on it.
	wake chan struct{}
}

func newTaskQueue(limit int) *taskQueue {
	return &taskQueue{
		limit: limit,
		wake:  make(chan struct{}, 1),
	}
}

// push appends a task to its priority lane and signals the owner.
func (q *taskQueue) push(p Priority, t Task) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrLoopClosed
	}
	if q.limit > 0 && q.size >= q.limit {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.lanes[p] = append(q.lanes[p], t)
	q.size++
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// pop removes the next task: High before Normal before Low, FIFO
// within a lane. Returns false when every lane is empty.
func (q *taskQueue) pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for p := High; p >= Low; p-- {
		head := q.heads[p]
		if head >= len(q.lanes[p]) {
			continue
		}
		t := q.lanes[p][head]
		q.lanes[p][head] = nil
		q.heads[p] = head + 1
		q.size--
		q.compact(p)
		return t, true
	}
	return nil, false
}

// compact slides live tasks to the front of a lane once the consumed
// prefix is both large and the majority of the backing array.
func (q *taskQueue) compact(p Priority) {
	head := q.heads[p]
	if head < compactAfter || head*2 < len(q.lanes[p]) {
		return
	}
	n := copy(q.lanes[p], q.lanes[p][head:])
	for i := n; i < len(q.lanes[p]); i++ {
		q.lanes[p][i] = nil
	}
	q.lanes[p] = q.lanes[p][:n]
	q.heads[p] = 0
}

// close rejects all further pushes. Queued tasks remain poppable.
func (q *taskQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}
