package tui

import (
	"sort"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/verte-zerg/tuihold/internal/engine"
	"github.com/verte-zerg/tuihold/internal/model"
)

const (
	effectDuration = 500 * time.Millisecond
	// effectGrowth is how far the ring expands, as a multiple of the start radius.
	effectGrowth = 2.2
)

type effect struct {
	x, y     float64
	color    string
	started  int64
	radius   float64
	velocity float64
	target   float64
}

// Surface is the engine's RenderSurface for the terminal. It keeps the
// placed targets and animates destruction rings with a damped spring.
type Surface struct {
	clock   engine.Clock
	spring  harmonica.Spring
	targets map[int64]model.TargetSpec
	effects []*effect
	radius  float64
}

// NewSurface creates an empty surface. radius sizes destruction rings.
func NewSurface(clock engine.Clock, radius float64) *Surface {
	return &Surface{
		clock:   clock,
		spring:  harmonica.NewSpring(harmonica.FPS(frameRate), 7.0, 0.45),
		targets: map[int64]model.TargetSpec{},
		radius:  radius,
	}
}

// Place implements engine.RenderSurface.
func (s *Surface) Place(id int64, spec model.TargetSpec) {
	s.targets[id] = spec
}

// Remove implements engine.RenderSurface. Unknown ids are ignored.
func (s *Surface) Remove(id int64) {
	delete(s.targets, id)
}

// PlayDestructionEffect implements engine.RenderSurface.
func (s *Surface) PlayDestructionEffect(x, y float64, color string) {
	r := s.radius
	if r <= 0 {
		r = 1
	}
	s.effects = append(s.effects, &effect{
		x:       x,
		y:       y,
		color:   color,
		started: s.clock.Now(),
		radius:  r,
		target:  r * effectGrowth,
	})
}

// SetRadius sets the start radius of new destruction rings.
func (s *Surface) SetRadius(r float64) {
	s.radius = r
}

// Advance steps every ring by one frame and drops finished ones.
func (s *Surface) Advance() {
	now := s.clock.Now()
	kept := s.effects[:0]
	for _, e := range s.effects {
		if time.Duration(now-e.started) >= effectDuration {
			continue
		}
		e.radius, e.velocity = s.spring.Update(e.radius, e.velocity, e.target)
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.effects); i++ {
		s.effects[i] = nil
	}
	s.effects = kept
}

// Clear drops every target and ring.
func (s *Surface) Clear() {
	s.targets = map[int64]model.TargetSpec{}
	s.effects = nil
}

// Len returns the number of placed targets.
func (s *Surface) Len() int {
	return len(s.targets)
}

// EffectCount returns the number of running rings.
func (s *Surface) EffectCount() int {
	return len(s.effects)
}

func (s *Surface) ids() []int64 {
	ids := make([]int64, 0, len(s.targets))
	for id := range s.targets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
