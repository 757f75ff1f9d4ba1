package engine

import (
	"time"

	"github.com/verte-zerg/tuihold/internal/model"
)

// targetObserver receives the outcome of hold attempts. Session implements it.
type targetObserver interface {
	targetCompleted(t *HoldTarget, hit model.HitEvent)
	targetExited(t *HoldTarget, completedBeforeExit bool)
	attemptEnded(t *HoldTarget, startNs, endNs int64, success bool)
}

// HoldTarget is the dwell-timer state machine of one target:
// Idle -> Holding -> Completed, with Holding -> Idle when the pointer leaves early.
type HoldTarget struct {
	id        int64
	spec      model.TargetSpec
	phase     model.TargetPhase
	holdStart int64
	// holdEnd is when the current hold completes if the pointer stays.
	holdEnd int64

	// trajectory is only non-nil while holding.
	trajectory *Trajectory
	timer      TimerHandle
	completed  bool
	discarded  bool
	hovered    bool

	sessionStart int64
	clock        Clock
	sched        Scheduler
	surface      RenderSurface
	observer     targetObserver
}

// ID returns the target id used with the render surface.
func (t *HoldTarget) ID() int64 { return t.id }

// Spec returns the immutable target spec.
func (t *HoldTarget) Spec() model.TargetSpec { return t.spec }

// Phase returns the current phase.
func (t *HoldTarget) Phase() model.TargetPhase { return t.phase }

// HoldStart returns when the current hold began; ok is false unless holding.
func (t *HoldTarget) HoldStart() (ns int64, ok bool) {
	if t.phase != model.PhaseHolding {
		return 0, false
	}
	return t.holdStart, true
}

// Progress returns the hold progress fraction in [0, 1] at time now.
func (t *HoldTarget) Progress(now int64) float64 {
	switch t.phase {
	case model.PhaseCompleted:
		return 1
	case model.PhaseHolding:
		total := t.spec.HoldDurationMs * float64(time.Millisecond)
		if total <= 0 {
			return 1
		}
		p := float64(now-t.holdStart) / total
		if p < 0 {
			return 0
		}
		if p > 1 {
			return 1
		}
		return p
	default:
		return 0
	}
}

// PointerEnter starts a hold. It does nothing if the target is already
// holding or completed.
func (t *HoldTarget) PointerEnter() {
	if t.discarded || t.completed || t.phase != model.PhaseIdle {
		return
	}
	t.phase = model.PhaseHolding
	t.holdStart = t.clock.Now()
	t.trajectory = &Trajectory{}
	d := time.Duration(t.spec.HoldDurationMs * float64(time.Millisecond))
	t.holdEnd = t.holdStart + int64(d)
	t.timer = t.sched.After(d, t.timerElapsed)
}

// PointerMove records a pointer sample while holding.
func (t *HoldTarget) PointerMove(x, y float64) {
	if t.phase != model.PhaseHolding || t.trajectory == nil {
		return
	}
	t.trajectory.Add(x, y)
}

// PointerExit abandons an in-progress hold. No partial credit is kept.
func (t *HoldTarget) PointerExit() {
	if t.discarded || t.phase != model.PhaseHolding {
		return
	}
	t.stopTimer()
	t.trajectory = nil
	t.phase = model.PhaseIdle
	t.observer.attemptEnded(t, t.holdStart, t.clock.Now(), false)
	t.observer.targetExited(t, false)
}

// Cancel discards the target without emitting anything.
func (t *HoldTarget) Cancel() {
	if t.discarded {
		return
	}
	t.discarded = true
	t.stopTimer()
	t.trajectory = nil
}

func (t *HoldTarget) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *HoldTarget) timerElapsed() {
	if t.completed || t.discarded || t.phase != model.PhaseHolding {
		return
	}
	t.completed = true
	t.phase = model.PhaseCompleted
	t.timer = nil

	// Timers may run after their deadline; the hit is stamped at the deadline.
	now := t.holdEnd
	cx, cy := t.spec.Center()
	avgX, avgY, ok := t.trajectory.Average()
	if !ok {
		avgX, avgY = cx, cy
	}
	t.trajectory = nil

	rel := now - t.sessionStart
	if rel < 0 {
		rel = 0
	}
	hit := model.HitEvent{
		RelativeNs: rel,
		AvgCursorX: avgX,
		AvgCursorY: avgY,
		TargetX:    t.spec.X,
		TargetY:    t.spec.Y,
		Radius:     t.spec.Radius,
	}

	t.surface.PlayDestructionEffect(cx, cy, t.spec.Color)
	t.surface.Remove(t.id)
	t.observer.attemptEnded(t, t.holdStart, now, true)
	t.observer.targetCompleted(t, hit)
}
