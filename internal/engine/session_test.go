package engine

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuihold/internal/generator"
	"github.com/verte-zerg/tuihold/internal/model"
)

func TestHoldCompletesAfterDwell(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	require.NoError(t, h.session.Start(testConfig()))

	tgt := h.firstTarget(t)
	h.hover(tgt)
	assert.Equal(t, model.PhaseHolding, tgt.Phase())

	h.advance(499 * time.Millisecond)
	assert.Empty(t, h.session.Hits())

	h.advance(time.Millisecond)
	hits := h.session.Hits()
	require.Len(t, hits, 1)
	assert.Equal(t, int64(500_000_000), hits[0].RelativeNs)
	assert.Equal(t, tgt.Spec().X, hits[0].TargetX)
	assert.Equal(t, tgt.Spec().Y, hits[0].TargetY)
	assert.Equal(t, 10.0, hits[0].Radius)

	cx, cy := tgt.Spec().Center()
	assert.InDelta(t, cx, hits[0].AvgCursorX, 1e-9)
	assert.InDelta(t, cy, hits[0].AvgCursorY, 1e-9)

	assert.Equal(t, 1, h.session.Score())
	assert.Equal(t, 0, h.session.ExitAttempts())
	assert.Equal(t, model.PhaseCompleted, tgt.Phase())
	assert.Equal(t, 1, h.surface.effects)
	assert.Equal(t, 1, h.audio.plays, "audio failures must not stop completion")

	views := h.session.Targets()
	require.Len(t, views, 1, "pool should be replenished")
	assert.NotEqual(t, tgt.ID(), views[0].ID)

	attempts := h.session.Attempts()
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Success)
	assert.Equal(t, 500.0, attempts[0].ActualMs)
}

func TestEarlyExitResetsProgress(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	require.NoError(t, h.session.Start(testConfig()))

	tgt := h.firstTarget(t)
	h.hover(tgt)
	h.advance(300 * time.Millisecond)
	h.away()

	assert.Equal(t, model.PhaseIdle, tgt.Phase())
	assert.Equal(t, 1, h.session.ExitAttempts())
	assert.Equal(t, 0.0, tgt.Progress(h.clock.Now()))

	h.advance(time.Second)
	assert.Empty(t, h.session.Hits(), "cancelled timer must not fire")

	// Re-entering restarts the dwell from zero.
	h.hover(tgt)
	reentry := h.clock.Now()
	h.advance(499 * time.Millisecond)
	assert.Empty(t, h.session.Hits())
	h.advance(time.Millisecond)

	hits := h.session.Hits()
	require.Len(t, hits, 1)
	assert.Equal(t, reentry+int64(500*time.Millisecond), hits[0].RelativeNs)
	assert.Equal(t, 1, h.session.ExitAttempts())

	attempts := h.session.Attempts()
	require.Len(t, attempts, 2)
	assert.False(t, attempts[0].Success)
	assert.Equal(t, 300.0, attempts[0].ActualMs)
	assert.True(t, attempts[1].Success)
}

func TestEnterWhileHoldingKeepsTimer(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	require.NoError(t, h.session.Start(testConfig()))

	tgt := h.firstTarget(t)
	h.hover(tgt)
	start, ok := tgt.HoldStart()
	require.True(t, ok)

	h.advance(300 * time.Millisecond)
	tgt.PointerEnter()
	h.hover(tgt)
	again, ok := tgt.HoldStart()
	require.True(t, ok)
	assert.Equal(t, start, again)
	assert.InDelta(t, 0.6, tgt.Progress(h.clock.Now()), 1e-9)

	h.advance(200 * time.Millisecond)
	require.Len(t, h.session.Hits(), 1)
	assert.Equal(t, int64(500*time.Millisecond), h.session.Hits()[0].RelativeNs)
}

func TestHitUsesAveragedTrajectory(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	require.NoError(t, h.session.Start(testConfig()))

	tgt := h.firstTarget(t)
	cx, cy := tgt.Spec().Center()
	h.session.PointerMove(cx, cy)
	h.session.PointerMove(cx+2, cy)
	h.session.PointerMove(cx+4, cy-3)
	h.advance(500 * time.Millisecond)

	hits := h.session.Hits()
	require.Len(t, hits, 1)
	assert.InDelta(t, cx+2, hits[0].AvgCursorX, 1e-9)
	assert.InDelta(t, cy-1, hits[0].AvgCursorY, 1e-9)
}

func TestCompletionWithoutSamplesFallsBackToCenter(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.3, 0.6}})
	require.NoError(t, h.session.Start(testConfig()))

	tgt := h.firstTarget(t)
	tgt.PointerEnter()
	h.advance(500 * time.Millisecond)

	hits := h.session.Hits()
	require.Len(t, hits, 1)
	cx, cy := tgt.Spec().Center()
	assert.Equal(t, cx, hits[0].AvgCursorX)
	assert.Equal(t, cy, hits[0].AvgCursorY)
}

func TestDuplicateCompletionIsIgnored(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	require.NoError(t, h.session.Start(testConfig()))

	tgt := h.firstTarget(t)
	h.hover(tgt)
	h.advance(500 * time.Millisecond)
	tgt.timerElapsed()
	tgt.PointerExit()
	tgt.PointerEnter()

	assert.Len(t, h.session.Hits(), 1)
	assert.Equal(t, 0, h.session.ExitAttempts())
	assert.Equal(t, model.PhaseCompleted, tgt.Phase())
}

func TestSessionEndsAndPersistsResult(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	cfg := testConfig()
	cfg.DurationSeconds = 3

	var ended []model.SessionResult
	h.session.OnEnded(func(result model.SessionResult, id int64, err error) {
		assert.NoError(t, err)
		assert.Equal(t, int64(1), id)
		ended = append(ended, result)
	})
	require.NoError(t, h.session.Start(cfg))

	h.hover(h.firstTarget(t))
	h.advance(500 * time.Millisecond)
	h.away()

	h.advance(time.Second)
	assert.Equal(t, 2, h.session.Remaining())
	assert.Equal(t, model.SessionRunning, h.session.State())

	h.advance(2 * time.Second)
	assert.Equal(t, model.SessionEnded, h.session.State())
	require.Len(t, ended, 1)
	require.Len(t, h.gateway.saved, 1)

	result := h.gateway.saved[0]
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, 0, result.ExitAttempts)
	assert.Equal(t, 0.0, result.AccuracyPercent, "accuracy is zero without exit attempts")
	assert.Equal(t, 10.0, result.Radius)
	assert.Equal(t, 500.0, result.HoldDurationMs)
	assert.Equal(t, int64(7), result.UserID)
	assert.Equal(t, "hold", result.GameType)
	assert.Equal(t, h.session.ID(), result.SessionID)
	assert.Len(t, result.Hits, 1)

	assert.Empty(t, h.session.Targets())
	assert.Empty(t, h.surface.live)
	assert.Equal(t, 0, h.queue.Len(), "no timers may remain armed")

	stored, ok := h.session.Result()
	require.True(t, ok)
	assert.Equal(t, result.SessionID, stored.SessionID)
}

func TestAccuracyDividesScoreByExitAttempts(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	cfg := testConfig()
	cfg.DurationSeconds = 5
	require.NoError(t, h.session.Start(cfg))

	for i := 0; i < 4; i++ {
		h.hover(h.firstTarget(t))
		h.advance(100 * time.Millisecond)
		h.away()
	}
	for i := 0; i < 2; i++ {
		h.hover(h.firstTarget(t))
		h.advance(500 * time.Millisecond)
		h.away()
	}
	h.advance(5 * time.Second)

	require.Len(t, h.gateway.saved, 1)
	result := h.gateway.saved[0]
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 4, result.ExitAttempts)
	assert.InDelta(t, 50.0, result.AccuracyPercent, 1e-9)
	assert.Len(t, result.Attempts, 6)
}

func TestSaveFailureStillEndsSession(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	h.gateway.err = errors.New("disk full")
	cfg := testConfig()
	cfg.DurationSeconds = 1

	var gotErr error
	calls := 0
	h.session.OnEnded(func(_ model.SessionResult, _ int64, err error) {
		calls++
		gotErr = err
	})
	require.NoError(t, h.session.Start(cfg))
	h.advance(time.Second)

	assert.Equal(t, model.SessionEnded, h.session.State())
	assert.Equal(t, 1, calls)
	assert.EqualError(t, gotErr, "disk full")
	_, ok := h.session.Result()
	assert.True(t, ok)
}

func TestStopIsIdempotentAndCancelsTimers(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1, 0.5, 0.5, 0.9, 0.9}})
	cfg := testConfig()
	cfg.MaxTargets = 3
	require.NoError(t, h.session.Start(cfg))

	tgt := h.firstTarget(t)
	h.hover(tgt)
	require.Equal(t, 2, h.queue.Len(), "tick and one hold timer")

	h.session.Stop()
	h.session.Stop()

	assert.Equal(t, model.SessionEnded, h.session.State())
	assert.Equal(t, 0, h.queue.Len())
	assert.Empty(t, h.surface.live)
	assert.Len(t, h.surface.removed, 3)

	h.advance(time.Minute)
	assert.Empty(t, h.session.Hits())
	assert.Empty(t, h.gateway.saved, "a stopped session is not persisted")

	tgt.PointerExit()
	assert.Equal(t, 0, h.session.ExitAttempts())
	h.session.PointerMove(0, 0)
	h.session.PointerLeave()
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.GameConfig)
		field  string
		small  bool
	}{
		{name: "zero radius", mutate: func(c *model.GameConfig) { c.Radius = 0 }, field: "radius"},
		{name: "negative radius", mutate: func(c *model.GameConfig) { c.Radius = -3 }, field: "radius"},
		{name: "zero targets", mutate: func(c *model.GameConfig) { c.MaxTargets = 0 }, field: "max targets"},
		{name: "zero duration", mutate: func(c *model.GameConfig) { c.DurationSeconds = 0 }, field: "duration"},
		{name: "zero hold", mutate: func(c *model.GameConfig) { c.HoldDurationMs = 0 }, field: "hold duration"},
		{name: "zero width", mutate: func(c *model.GameConfig) { c.PlayfieldWidth = 0 }, field: "playfield"},
		{name: "negative height", mutate: func(c *model.GameConfig) { c.PlayfieldHeight = -1 }, field: "playfield"},
		{name: "too narrow", mutate: func(c *model.GameConfig) { c.PlayfieldWidth = 20 }, field: "playfield", small: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, generator.NewSeeded(1))
			cfg := testConfig()
			tt.mutate(&cfg)

			err := h.session.Start(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, tt.small, errors.Is(err, ErrPlayfieldTooSmall))

			assert.Equal(t, model.SessionIdle, h.session.State())
			assert.Equal(t, 0, h.queue.Len())
			assert.Empty(t, h.surface.live)
		})
	}
}

func TestPoolReplenishedBeforeNextTick(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1, 0.5, 0.5, 0.9, 0.9}})
	cfg := testConfig()
	cfg.MaxTargets = 3
	require.NoError(t, h.session.Start(cfg))
	require.Len(t, h.session.Targets(), 3)

	h.hover(h.firstTarget(t))
	h.advance(500 * time.Millisecond)

	require.Len(t, h.session.Hits(), 1)
	assert.Len(t, h.session.Targets(), 3)
	assert.Equal(t, 30, h.session.Remaining(), "replenished before the first tick")
	assert.LessOrEqual(t, h.surface.maxLive, 3)
}

func TestRestartResetsSession(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	require.NoError(t, h.session.Start(testConfig()))
	first := h.session.ID()

	h.hover(h.firstTarget(t))
	h.advance(200 * time.Millisecond)
	h.away()
	h.hover(h.firstTarget(t))
	h.advance(500 * time.Millisecond)
	require.Equal(t, 1, h.session.Score())

	require.NoError(t, h.session.Start(testConfig()))
	assert.NotEqual(t, first, h.session.ID())
	assert.Equal(t, 0, h.session.Score())
	assert.Equal(t, 0, h.session.ExitAttempts())
	assert.Empty(t, h.session.Hits())
	assert.Empty(t, h.session.Attempts())
	assert.Len(t, h.session.Targets(), 1)
	assert.Len(t, h.surface.live, 1)
	assert.Equal(t, 1, h.queue.Len(), "only the new tick is armed")
	assert.Empty(t, h.gateway.saved)
}

func TestRandomEventSequencesKeepInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		h := newHarness(t, generator.NewSeeded(seed))
		cfg := model.GameConfig{
			DurationSeconds: 8,
			Radius:          12,
			MaxTargets:      3,
			HoldDurationMs:  500,
			PlayfieldWidth:  120,
			PlayfieldHeight: 80,
		}
		require.NoError(t, h.session.Start(cfg))
		events := rand.New(rand.NewSource(seed))

		for h.session.State() == model.SessionRunning {
			views := h.session.Targets()
			require.Len(t, views, cfg.MaxTargets)
			require.LessOrEqual(t, len(h.surface.live), cfg.MaxTargets)

			switch events.Intn(3) {
			case 0:
				v := views[events.Intn(len(views))]
				cx, cy := v.Spec.Center()
				h.session.PointerMove(cx+events.Float64()*4-2, cy+events.Float64()*4-2)
			case 1:
				h.session.PointerMove(events.Float64()*cfg.PlayfieldWidth, events.Float64()*cfg.PlayfieldHeight)
			default:
				h.session.PointerLeave()
			}
			h.advance(time.Duration(events.Intn(400)) * time.Millisecond)
		}

		require.Len(t, h.gateway.saved, 1)
		result := h.gateway.saved[0]
		assert.LessOrEqual(t, h.surface.maxLive, cfg.MaxTargets)
		assert.Equal(t, result.Score, len(result.Hits))

		failed := 0
		for _, a := range result.Attempts {
			if a.Success {
				assert.GreaterOrEqual(t, a.ActualMs, cfg.HoldDurationMs)
			} else {
				failed++
				assert.Less(t, a.ActualMs, cfg.HoldDurationMs)
			}
		}
		assert.Equal(t, result.ExitAttempts, failed)
		for i := 1; i < len(result.Hits); i++ {
			assert.GreaterOrEqual(t, result.Hits[i].RelativeNs, result.Hits[i-1].RelativeNs)
		}
	}
}

func TestLateTimerStampsHitAtDeadline(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	require.NoError(t, h.session.Start(testConfig()))

	tgt := h.firstTarget(t)
	h.hover(tgt)

	// The loop drains the queue a frame after the deadline.
	h.clock.Advance(530 * time.Millisecond)
	h.queue.FireDue(h.clock.Now())

	hits := h.session.Hits()
	require.Len(t, hits, 1)
	assert.Equal(t, int64(500_000_000), hits[0].RelativeNs)
	attempts := h.session.Attempts()
	require.Len(t, attempts, 1)
	assert.Equal(t, 500.0, attempts[0].ActualMs)
	assert.Equal(t, int64(500_000_000), attempts[0].EndNs)
}

func TestResizeDiscardsTargetsOutsideBounds(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.9, 0.9}})
	require.NoError(t, h.session.Start(testConfig()))

	old := h.firstTarget(t)
	h.hover(old)
	require.NoError(t, h.session.Resize(500, 500))

	assert.Contains(t, h.surface.removed, old.ID())
	assert.Equal(t, 0, h.session.ExitAttempts(), "discarded targets are not exits")
	assert.Empty(t, h.session.Attempts())
	assert.Equal(t, 500.0, h.session.Config().PlayfieldWidth)

	views := h.session.Targets()
	require.Len(t, views, 1)
	assert.NotEqual(t, old.ID(), views[0].ID)
	spec := views[0].Spec
	assert.LessOrEqual(t, spec.X+2*spec.Radius, 500.0)
	assert.LessOrEqual(t, spec.Y+2*spec.Radius, 500.0)

	// The cancelled hold never completes.
	h.advance(time.Second)
	assert.Equal(t, 0, h.session.Score())
}

func TestResizeKeepsTargetsThatFit(t *testing.T) {
	h := newHarness(t, &seqRandom{floats: []float64{0.1, 0.1}})
	require.NoError(t, h.session.Start(testConfig()))
	tgt := h.firstTarget(t)

	require.NoError(t, h.session.Resize(800, 800))
	views := h.session.Targets()
	require.Len(t, views, 1)
	assert.Equal(t, tgt.ID(), views[0].ID)
	assert.Empty(t, h.surface.removed)
}

func TestResizeTooSmallStopsSession(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.session.Start(testConfig()))

	err := h.session.Resize(15, 15)
	require.ErrorIs(t, err, ErrPlayfieldTooSmall)
	assert.Equal(t, model.SessionEnded, h.session.State())
	assert.Empty(t, h.surface.live)
	assert.Empty(t, h.gateway.saved)

	assert.NoError(t, h.session.Resize(1000, 1000), "resize after stop is ignored")
}
