package engine

import (
	"fmt"

	"github.com/verte-zerg/tuihold/internal/model"
)

// Bounds describes where and how targets are spawned.
type Bounds struct {
	Width          float64
	Height         float64
	Radius         float64
	HoldDurationMs float64
}

// Spawner maintains the pool of active targets.
type Spawner struct {
	rnd     RandomSource
	surface RenderSurface
	build   func(id int64, spec model.TargetSpec) *HoldTarget

	nextID int64
	active []*HoldTarget
}

// NewSpawner creates a spawner. build wires a new target to its session.
func NewSpawner(rnd RandomSource, surface RenderSurface, build func(id int64, spec model.TargetSpec) *HoldTarget) *Spawner {
	return &Spawner{rnd: rnd, surface: surface, build: build}
}

// SpawnOne places a target uniformly inside the bounds. The whole circle
// always lies within the playfield; overlapping other targets is allowed.
func (s *Spawner) SpawnOne(b Bounds) (*HoldTarget, error) {
	spanX := b.Width - 2*b.Radius
	spanY := b.Height - 2*b.Radius
	if !(b.Radius > 0) || !(spanX > 0) || !(spanY > 0) {
		return nil, fmt.Errorf("%w: %.1fx%.1f with radius %.1f", ErrPlayfieldTooSmall, b.Width, b.Height, b.Radius)
	}
	spec := model.TargetSpec{
		X:              s.rnd.Float64() * spanX,
		Y:              s.rnd.Float64() * spanY,
		Radius:         b.Radius,
		Color:          fmt.Sprintf("#%02X%02X%02X", s.rnd.Intn(256), s.rnd.Intn(256), s.rnd.Intn(256)),
		HoldDurationMs: b.HoldDurationMs,
	}
	s.nextID++
	t := s.build(s.nextID, spec)
	s.active = append(s.active, t)
	s.surface.Place(t.id, spec)
	return t, nil
}

// Fill spawns targets until limit are active.
func (s *Spawner) Fill(b Bounds, limit int) error {
	for len(s.active) < limit {
		if _, err := s.SpawnOne(b); err != nil {
			return err
		}
	}
	return nil
}

// Remove drops a target from the pool. It reports whether the id was active.
func (s *Spawner) Remove(id int64) bool {
	for i, t := range s.active {
		if t.id == id {
			s.active = append(s.active[:i], s.active[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of active targets.
func (s *Spawner) Len() int {
	return len(s.active)
}

// Active returns a snapshot of the active targets in spawn order.
func (s *Spawner) Active() []*HoldTarget {
	out := make([]*HoldTarget, len(s.active))
	copy(out, s.active)
	return out
}

// Clear cancels every active target, removes it from the surface and empties the pool.
func (s *Spawner) Clear() {
	for _, t := range s.active {
		t.Cancel()
		s.surface.Remove(t.id)
	}
	s.active = nil
}
