package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuihold/internal/generator"
	"github.com/verte-zerg/tuihold/internal/logger"
	"github.com/verte-zerg/tuihold/internal/model"
)

const tickInterval = time.Second

// Deps are the collaborators a Session is built from. Nil fields fall back
// to no-op or system implementations.
type Deps struct {
	Clock     Clock
	Scheduler Scheduler
	Random    RandomSource
	Surface   RenderSurface
	Gateway   PersistenceGateway
	Audio     AudioCue
	User      model.UserContext
	Logger    *logger.Logger
	// WallClock stamps StartedAt/EndedAt on results. Defaults to time.Now.
	WallClock func() time.Time
}

// TargetView is a read-only snapshot of an active target for renderers.
type TargetView struct {
	ID       int64
	Spec     model.TargetSpec
	Phase    model.TargetPhase
	Progress float64
}

// Session is the top-level state machine: Idle -> Running -> Ended.
type Session struct {
	clock   Clock
	sched   Scheduler
	surface RenderSurface
	gateway PersistenceGateway
	audio   AudioCue
	user    model.UserContext
	log     *logger.Logger
	wall    func() time.Time
	onEnded EndedFunc

	spawner *Spawner

	cfg          model.GameConfig
	state        model.SessionState
	sessionID    string
	startNs      int64
	startedAt    time.Time
	remaining    int
	score        int
	exitAttempts int
	hits         []model.HitEvent
	attempts     []model.HoldAttempt
	tick         TimerHandle

	result    model.SessionResult
	hasResult bool
}

// NewSession builds an idle session.
func NewSession(d Deps) *Session {
	s := &Session{
		clock:   d.Clock,
		sched:   d.Scheduler,
		surface: d.Surface,
		gateway: d.Gateway,
		audio:   d.Audio,
		user:    d.User,
		log:     d.Logger,
		wall:    d.WallClock,
		state:   model.SessionIdle,
	}
	if s.clock == nil {
		s.clock = NewMonotonicClock()
	}
	if s.sched == nil {
		s.sched = NewTimerQueue(s.clock)
	}
	if s.surface == nil {
		s.surface = NopSurface{}
	}
	if s.gateway == nil {
		s.gateway = NopGateway{}
	}
	if s.audio == nil {
		s.audio = NopAudio{}
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	s.log = s.log.WithPrefix("session")
	if s.wall == nil {
		s.wall = time.Now
	}
	rnd := d.Random
	if rnd == nil {
		rnd = generator.New()
	}
	s.spawner = NewSpawner(rnd, s.surface, s.newTarget)
	return s
}

// OnEnded registers the hook called after a session runs out of time.
func (s *Session) OnEnded(fn EndedFunc) {
	s.onEnded = fn
}

// Start validates cfg and begins a new session. A running session is
// stopped first and not persisted. Nothing is armed when cfg is rejected.
func (s *Session) Start(cfg model.GameConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if s.state == model.SessionRunning {
		s.Stop()
	}

	s.cfg = cfg
	s.state = model.SessionRunning
	s.sessionID = uuid.NewString()
	s.startNs = s.clock.Now()
	s.startedAt = s.wall()
	s.remaining = cfg.DurationSeconds
	s.score = 0
	s.exitAttempts = 0
	s.hits = nil
	s.attempts = nil
	s.result = model.SessionResult{}
	s.hasResult = false

	s.log.Info("session %s started: %ds, radius %.1f, %d targets, hold %.0fms",
		s.sessionID, cfg.DurationSeconds, cfg.Radius, cfg.MaxTargets, cfg.HoldDurationMs)

	if err := s.spawner.Fill(s.bounds(), cfg.MaxTargets); err != nil {
		s.spawner.Clear()
		s.state = model.SessionEnded
		return err
	}
	s.tick = s.sched.Every(tickInterval, s.onTick)
	return nil
}

// Stop ends the session without producing a result. It cancels the tick,
// discards every active target and is safe to call repeatedly.
func (s *Session) Stop() {
	if s.state != model.SessionRunning {
		return
	}
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
	s.spawner.Clear()
	s.state = model.SessionEnded
	s.log.Debug("session %s stopped with %ds left", s.sessionID, s.remaining)
}

func (s *Session) onTick() {
	if s.state != model.SessionRunning {
		return
	}
	s.remaining--
	if s.remaining > 0 {
		return
	}
	s.Stop()
	s.finish()
}

func (s *Session) finish() {
	accuracy := 0.0
	if s.exitAttempts > 0 {
		accuracy = float64(s.score) * 100 / float64(s.exitAttempts)
	}
	result := model.SessionResult{
		SessionID:       s.sessionID,
		UserID:          s.user.UserID,
		GameType:        s.user.GameType,
		Radius:          s.cfg.Radius,
		HoldDurationMs:  s.cfg.HoldDurationMs,
		DurationSeconds: s.cfg.DurationSeconds,
		StartedAt:       s.startedAt,
		EndedAt:         s.wall(),
		Score:           s.score,
		ExitAttempts:    s.exitAttempts,
		AccuracyPercent: accuracy,
		Hits:            append([]model.HitEvent(nil), s.hits...),
		Attempts:        append([]model.HoldAttempt(nil), s.attempts...),
	}
	s.result = result
	s.hasResult = true

	log := s.log.WithFields(map[string]any{"session": result.SessionID, "score": result.Score})
	ctx := logger.NewContext(context.Background(), log)
	id, err := s.gateway.Save(ctx, result)
	if err != nil {
		log.Error("failed to save session result: %v", err)
	} else {
		log.Info("session result saved (id=%d, accuracy %.1f%%)", id, accuracy)
	}
	if s.onEnded != nil {
		s.onEnded(result, id, err)
	}
}

func (s *Session) bounds() Bounds {
	return Bounds{
		Width:          s.cfg.PlayfieldWidth,
		Height:         s.cfg.PlayfieldHeight,
		Radius:         s.cfg.Radius,
		HoldDurationMs: s.cfg.HoldDurationMs,
	}
}

func (s *Session) newTarget(id int64, spec model.TargetSpec) *HoldTarget {
	return &HoldTarget{
		id:           id,
		spec:         spec,
		phase:        model.PhaseIdle,
		sessionStart: s.startNs,
		clock:        s.clock,
		sched:        s.sched,
		surface:      s.surface,
		observer:     s,
	}
}

func (s *Session) targetCompleted(t *HoldTarget, hit model.HitEvent) {
	if s.state != model.SessionRunning {
		return
	}
	s.hits = append(s.hits, hit)
	s.score++
	s.spawner.Remove(t.id)
	if err := s.audio.Play(); err != nil {
		s.log.Debug("audio cue failed: %v", err)
	}
	if err := s.spawner.Fill(s.bounds(), s.cfg.MaxTargets); err != nil {
		s.log.Warn("failed to replenish targets: %v", err)
	}
}

func (s *Session) targetExited(_ *HoldTarget, completedBeforeExit bool) {
	if completedBeforeExit || s.state != model.SessionRunning {
		return
	}
	s.exitAttempts++
}

func (s *Session) attemptEnded(t *HoldTarget, startNs, endNs int64, success bool) {
	if s.state != model.SessionRunning {
		return
	}
	s.attempts = append(s.attempts, model.HoldAttempt{
		Index:      len(s.attempts),
		TargetID:   t.id,
		StartNs:    startNs - s.startNs,
		EndNs:      endNs - s.startNs,
		RequiredMs: t.spec.HoldDurationMs,
		ActualMs:   float64(endNs-startNs) / float64(time.Millisecond),
		Success:    success,
	})
}

// Resize moves a running session onto a new playfield. Targets that no
// longer fit are discarded without counting as exits and the pool is
// refilled inside the new bounds. A playfield too small for one target
// stops the session and returns the validation error.
func (s *Session) Resize(width, height float64) error {
	if s.state != model.SessionRunning {
		return nil
	}
	cfg := s.cfg
	cfg.PlayfieldWidth, cfg.PlayfieldHeight = width, height
	if err := ValidateConfig(cfg); err != nil {
		s.Stop()
		return err
	}
	s.cfg = cfg
	for _, t := range s.spawner.Active() {
		if t.spec.X+2*t.spec.Radius <= width && t.spec.Y+2*t.spec.Radius <= height {
			continue
		}
		t.Cancel()
		s.surface.Remove(t.id)
		s.spawner.Remove(t.id)
	}
	s.log.Debug("session %s resized to %.0fx%.0f", s.sessionID, width, height)
	if err := s.spawner.Fill(s.bounds(), s.cfg.MaxTargets); err != nil {
		s.Stop()
		return err
	}
	return nil
}

// PointerMove routes a pointer position to the targets: targets the pointer
// has just entered start holding, targets it has left are exited, and
// targets under the pointer record the sample.
func (s *Session) PointerMove(x, y float64) {
	if s.state != model.SessionRunning {
		return
	}
	for _, t := range s.spawner.Active() {
		inside := t.spec.Contains(x, y)
		switch {
		case inside && !t.hovered:
			t.hovered = true
			t.PointerEnter()
		case !inside && t.hovered:
			t.hovered = false
			t.PointerExit()
		}
		if inside {
			t.PointerMove(x, y)
		}
	}
}

// PointerLeave exits every hovered target, e.g. when the pointer leaves the playfield.
func (s *Session) PointerLeave() {
	if s.state != model.SessionRunning {
		return
	}
	for _, t := range s.spawner.Active() {
		if t.hovered {
			t.hovered = false
			t.PointerExit()
		}
	}
}

// State returns the lifecycle state.
func (s *Session) State() model.SessionState { return s.state }

// Config returns the config of the current or last session.
func (s *Session) Config() model.GameConfig { return s.cfg }

// ID returns the uuid of the current or last session.
func (s *Session) ID() string { return s.sessionID }

// Remaining returns the countdown in seconds.
func (s *Session) Remaining() int { return s.remaining }

// Score returns the number of completed holds.
func (s *Session) Score() int { return s.score }

// ExitAttempts returns the number of holds abandoned early.
func (s *Session) ExitAttempts() int { return s.exitAttempts }

// Hits returns a copy of the hit log in completion order.
func (s *Session) Hits() []model.HitEvent {
	return append([]model.HitEvent(nil), s.hits...)
}

// Attempts returns a copy of the hold attempt log.
func (s *Session) Attempts() []model.HoldAttempt {
	return append([]model.HoldAttempt(nil), s.attempts...)
}

// Result returns the result of the last session that ran out of time.
func (s *Session) Result() (model.SessionResult, bool) {
	return s.result, s.hasResult
}

// Targets returns a snapshot of the active targets.
func (s *Session) Targets() []TargetView {
	now := s.clock.Now()
	active := s.spawner.Active()
	views := make([]TargetView, 0, len(active))
	for _, t := range active {
		views = append(views, TargetView{
			ID:       t.id,
			Spec:     t.spec,
			Phase:    t.phase,
			Progress: t.Progress(now),
		})
	}
	return views
}

// Target returns the active target with the given id.
func (s *Session) Target(id int64) (*HoldTarget, bool) {
	for _, t := range s.spawner.Active() {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// ValidateConfig rejects configs the engine cannot run.
func ValidateConfig(cfg model.GameConfig) error {
	switch {
	case !(cfg.Radius > 0):
		return &ConfigError{Field: "radius", Reason: "must be > 0"}
	case cfg.MaxTargets <= 0:
		return &ConfigError{Field: "max targets", Reason: "must be > 0"}
	case cfg.DurationSeconds <= 0:
		return &ConfigError{Field: "duration", Reason: "must be > 0"}
	case !(cfg.HoldDurationMs > 0):
		return &ConfigError{Field: "hold duration", Reason: "must be > 0"}
	case !(cfg.PlayfieldWidth > 0) || !(cfg.PlayfieldHeight > 0):
		return &ConfigError{Field: "playfield", Reason: "must have positive width and height"}
	case 2*cfg.Radius >= cfg.PlayfieldWidth || 2*cfg.Radius >= cfg.PlayfieldHeight:
		return &ConfigError{
			Field:  "playfield",
			Reason: "smaller than one target diameter",
			Err:    ErrPlayfieldTooSmall,
		}
	}
	return nil
}
