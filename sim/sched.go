package sim

import (
	"container/heap"
	"time"
)

// The engine runs on a virtual clock: a logical now plus a deferred
// task queue. Execution delay and the snapshot cadence are scheduled
// callbacks drained whenever the clock advances (price-update
// timestamps or an explicit Advance), so tests never sleep.

type task struct {
	at  time.Time
	seq int64 // tie-break so equal-time tasks run in schedule order
	fn  func()
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q taskQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *taskQueue) Push(x any) { *q = append(*q, x.(*task)) }

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

// scheduleLocked enqueues fn to run once the clock reaches now+d. fn
// is invoked with the engine lock held.
func (e *Engine) scheduleLocked(d time.Duration, fn func()) {
	e.taskSeq++
	heap.Push(&e.tasks, &task{at: e.now.Add(d), seq: e.taskSeq, fn: fn})
}

// drainLocked runs every task due at or before the current logical
// now. Each task executes with the clock set to its own due time, so
// work it records is stamped at that time and anything it schedules is
// relative to it. A repeating task re-armed from inside its callback
// therefore keeps an exact cadence even when the clock jumps over
// several periods at once.
func (e *Engine) drainLocked() {
	now := e.now
	for len(e.tasks) > 0 && !e.tasks[0].at.After(now) {
		t := heap.Pop(&e.tasks).(*task)
		e.now = t.at
		t.fn()
	}
	e.now = now
}

// Advance moves the logical clock forward and fires any due work
// (order resolutions, scheduled snapshots).
func (e *Engine) Advance(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = e.now.Add(d)
	e.drainLocked()
}

// Now returns the engine's logical time.
func (e *Engine) Now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}
