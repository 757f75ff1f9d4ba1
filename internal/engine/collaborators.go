package engine

import (
	"context"

	"github.com/verte-zerg/tuihold/internal/model"
)

// RenderSurface draws targets. Place and Remove must ignore unknown ids.
type RenderSurface interface {
	Place(id int64, spec model.TargetSpec)
	Remove(id int64)
	PlayDestructionEffect(x, y float64, color string)
}

// PersistenceGateway stores a finished session and returns its id.
type PersistenceGateway interface {
	Save(ctx context.Context, result model.SessionResult) (int64, error)
}

// AudioCue plays a short sound. Failures are ignored by the engine.
type AudioCue interface {
	Play() error
}

// EndedFunc receives the result of a session that ran out of time, with the
// id it was stored under or the error the gateway returned.
type EndedFunc func(result model.SessionResult, resultID int64, saveErr error)

// NopSurface discards all render calls.
type NopSurface struct{}

func (NopSurface) Place(int64, model.TargetSpec) {}
func (NopSurface) Remove(int64) {}
func (NopSurface) PlayDestructionEffect(float64, float64, string) {}

// NopAudio is a silent AudioCue.
type NopAudio struct{}

func (NopAudio) Play() error { return nil }

// NopGateway accepts results without storing them.
type NopGateway struct{}

func (NopGateway) Save(context.Context, model.SessionResult) (int64, error) { return 0, nil }
