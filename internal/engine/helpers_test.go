package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/tuihold/internal/model"
)

type seqRandom struct {
	floats []float64
	i      int
}

func (r *seqRandom) Float64() float64 {
	v := r.floats[r.i%len(r.floats)]
	r.i++
	return v
}

func (r *seqRandom) Intn(int) int { return 0 }

type recordingSurface struct {
	live    map[int64]model.TargetSpec
	removed []int64
	effects int
	maxLive int
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{live: map[int64]model.TargetSpec{}}
}

func (s *recordingSurface) Place(id int64, spec model.TargetSpec) {
	s.live[id] = spec
	if len(s.live) > s.maxLive {
		s.maxLive = len(s.live)
	}
}

func (s *recordingSurface) Remove(id int64) {
	if _, ok := s.live[id]; !ok {
		return
	}
	delete(s.live, id)
	s.removed = append(s.removed, id)
}

func (s *recordingSurface) PlayDestructionEffect(float64, float64, string) {
	s.effects++
}

type recordingGateway struct {
	saved []model.SessionResult
	err   error
}

func (g *recordingGateway) Save(_ context.Context, result model.SessionResult) (int64, error) {
	if g.err != nil {
		return 0, g.err
	}
	g.saved = append(g.saved, result)
	return int64(len(g.saved)), nil
}

type countingAudio struct {
	plays int
}

func (a *countingAudio) Play() error {
	a.plays++
	return errors.New("no audio device")
}

type harness struct {
	clock   *ManualClock
	queue   *TimerQueue
	surface *recordingSurface
	gateway *recordingGateway
	audio   *countingAudio
	session *Session
}

func newHarness(t *testing.T, rnd RandomSource) *harness {
	t.Helper()
	clock := &ManualClock{}
	queue := NewTimerQueue(clock)
	h := &harness{
		clock:   clock,
		queue:   queue,
		surface: newRecordingSurface(),
		gateway: &recordingGateway{},
		audio:   &countingAudio{},
	}
	h.session = NewSession(Deps{
		Clock:     clock,
		Scheduler: queue,
		Random:    rnd,
		Surface:   h.surface,
		Gateway:   h.gateway,
		Audio:     h.audio,
		User:      model.UserContext{UserID: 7, Username: "tester", GameType: "hold"},
	})
	return h
}

func testConfig() model.GameConfig {
	return model.GameConfig{
		DurationSeconds: 30,
		Radius:          10,
		MaxTargets:      1,
		HoldDurationMs:  500,
		PlayfieldWidth:  1000,
		PlayfieldHeight: 1000,
	}
}

func (h *harness) advance(d time.Duration) {
	h.queue.RunUntil(h.clock, h.clock.Now()+int64(d))
}

func (h *harness) hover(t *HoldTarget) {
	cx, cy := t.Spec().Center()
	h.session.PointerMove(cx, cy)
}

func (h *harness) away() {
	h.session.PointerMove(-1000, -1000)
}

func (h *harness) firstTarget(t *testing.T) *HoldTarget {
	t.Helper()
	views := h.session.Targets()
	if len(views) == 0 {
		t.Fatalf("expected an active target")
	}
	tgt, ok := h.session.Target(views[0].ID)
	if !ok {
		t.Fatalf("target %d not found", views[0].ID)
	}
	return tgt
}
