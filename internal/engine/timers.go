package engine

import (
	"container/heap"
	"time"
)

// TimerHandle cancels a scheduled callback.
type TimerHandle interface {
	// Stop cancels the timer. It reports whether the call stopped a pending
	// timer; stopping twice is a no-op.
	Stop() bool
}

// Scheduler arms callbacks on the event loop.
type Scheduler interface {
	After(d time.Duration, fn func()) TimerHandle
	Every(d time.Duration, fn func()) TimerHandle
}

// TimerQueue is a Scheduler whose callbacks run when the owning loop calls
// FireDue. Callbacks fire in deadline order; equal deadlines fire in the
// order they were scheduled.
type TimerQueue struct {
	clock Clock
	seq   uint64
	items timerHeap
}

// NewTimerQueue creates a queue that reads the current time from clock.
func NewTimerQueue(clock Clock) *TimerQueue {
	return &TimerQueue{clock: clock}
}

type queuedTimer struct {
	q        *TimerQueue
	deadline int64
	period   int64
	seq      uint64
	fn       func()
	index    int
	stopped  bool
}

func (t *queuedTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	if t.index >= 0 {
		heap.Remove(&t.q.items, t.index)
	}
	return true
}

// After schedules fn once, d from now.
func (q *TimerQueue) After(d time.Duration, fn func()) TimerHandle {
	return q.push(int64(d), 0, fn)
}

// Every schedules fn repeatedly with period d. The first call is d from now.
func (q *TimerQueue) Every(d time.Duration, fn func()) TimerHandle {
	if d <= 0 {
		d = time.Millisecond
	}
	return q.push(int64(d), int64(d), fn)
}

func (q *TimerQueue) push(delay, period int64, fn func()) *queuedTimer {
	if delay < 0 {
		delay = 0
	}
	q.seq++
	t := &queuedTimer{
		q:        q,
		deadline: q.clock.Now() + delay,
		period:   period,
		seq:      q.seq,
		fn:       fn,
		index:    -1,
	}
	heap.Push(&q.items, t)
	return t
}

// Len returns the number of pending timers.
func (q *TimerQueue) Len() int {
	return len(q.items)
}

// NextDeadline returns the earliest pending deadline.
func (q *TimerQueue) NextDeadline() (int64, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	return q.items[0].deadline, true
}

// FireDue runs every callback whose deadline is <= now and returns how many ran.
func (q *TimerQueue) FireDue(now int64) int {
	fired := 0
	for len(q.items) > 0 && q.items[0].deadline <= now {
		t := heap.Pop(&q.items).(*queuedTimer)
		if t.period > 0 {
			t.deadline += t.period
			heap.Push(&q.items, t)
		} else {
			t.stopped = true
		}
		t.fn()
		fired++
	}
	return fired
}

// RunUntil steps clock to each pending deadline up to until, firing timers
// as it goes, then leaves clock at until.
func (q *TimerQueue) RunUntil(clock *ManualClock, until int64) {
	for {
		deadline, ok := q.NextDeadline()
		if !ok || deadline > until {
			break
		}
		clock.Set(deadline)
		q.FireDue(deadline)
	}
	clock.Set(until)
}

type timerHeap []*queuedTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline == h[j].deadline {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline < h[j].deadline
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*queuedTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
