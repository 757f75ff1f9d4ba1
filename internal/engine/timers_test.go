package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerQueueOrdering(t *testing.T) {
	clock := &ManualClock{}
	q := NewTimerQueue(clock)

	var got []string
	q.After(20*time.Millisecond, func() { got = append(got, "b") })
	q.After(10*time.Millisecond, func() { got = append(got, "a") })
	q.After(20*time.Millisecond, func() { got = append(got, "c") })

	assert.Equal(t, 0, q.FireDue(clock.Now()))
	q.RunUntil(clock, int64(time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, int64(time.Second), clock.Now())
}

func TestTimerQueueStop(t *testing.T) {
	clock := &ManualClock{}
	q := NewTimerQueue(clock)

	fired := false
	h := q.After(time.Millisecond, func() { fired = true })
	assert.True(t, h.Stop())
	assert.False(t, h.Stop())
	assert.Equal(t, 0, q.Len())

	q.RunUntil(clock, int64(time.Second))
	assert.False(t, fired)
}

func TestTimerQueueEvery(t *testing.T) {
	clock := &ManualClock{}
	q := NewTimerQueue(clock)

	count := 0
	var h TimerHandle
	h = q.Every(100*time.Millisecond, func() {
		count++
		if count == 3 {
			h.Stop()
		}
	})
	q.RunUntil(clock, int64(time.Second))
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, q.Len())
}

func TestTimerQueueFireDueCatchesUp(t *testing.T) {
	clock := &ManualClock{}
	q := NewTimerQueue(clock)

	count := 0
	q.Every(100*time.Millisecond, func() { count++ })
	clock.Advance(350 * time.Millisecond)
	assert.Equal(t, 3, q.FireDue(clock.Now()))
	assert.Equal(t, 3, count)

	next, ok := q.NextDeadline()
	assert.True(t, ok)
	assert.Equal(t, int64(400*time.Millisecond), next)
}

func TestTimerScheduledFromCallback(t *testing.T) {
	clock := &ManualClock{}
	q := NewTimerQueue(clock)

	var at []int64
	q.After(10*time.Millisecond, func() {
		at = append(at, clock.Now())
		q.After(10*time.Millisecond, func() { at = append(at, clock.Now()) })
	})
	q.RunUntil(clock, int64(time.Second))
	assert.Equal(t, []int64{int64(10 * time.Millisecond), int64(20 * time.Millisecond)}, at)
}
