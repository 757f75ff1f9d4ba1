package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuihold/internal/generator"
	"github.com/verte-zerg/tuihold/internal/model"
)

func newTestSpawner(rnd RandomSource, surface RenderSurface) *Spawner {
	return NewSpawner(rnd, surface, func(id int64, spec model.TargetSpec) *HoldTarget {
		return &HoldTarget{id: id, spec: spec}
	})
}

func TestSpawnerKeepsTargetsInBounds(t *testing.T) {
	surface := newRecordingSurface()
	s := newTestSpawner(generator.NewSeeded(3), surface)
	b := Bounds{Width: 80, Height: 40, Radius: 6, HoldDurationMs: 500}

	for i := 0; i < 500; i++ {
		tgt, err := s.SpawnOne(b)
		require.NoError(t, err)
		spec := tgt.Spec()
		assert.GreaterOrEqual(t, spec.X, 0.0)
		assert.GreaterOrEqual(t, spec.Y, 0.0)
		assert.LessOrEqual(t, spec.X+2*spec.Radius, b.Width)
		assert.LessOrEqual(t, spec.Y+2*spec.Radius, b.Height)
		assert.Regexp(t, `^#[0-9A-F]{6}$`, spec.Color)
		assert.Equal(t, 500.0, spec.HoldDurationMs)
	}
	assert.Equal(t, 500, s.Len())
	assert.Len(t, surface.live, 500)
}

func TestSpawnerFillAndRemove(t *testing.T) {
	surface := newRecordingSurface()
	s := newTestSpawner(&seqRandom{floats: []float64{0.25, 0.75}}, surface)
	b := Bounds{Width: 100, Height: 100, Radius: 10, HoldDurationMs: 500}

	require.NoError(t, s.Fill(b, 3))
	assert.Equal(t, 3, s.Len())
	active := s.Active()
	assert.Equal(t, []int64{1, 2, 3}, []int64{active[0].ID(), active[1].ID(), active[2].ID()})
	assert.Equal(t, 20.0, active[0].Spec().X)
	assert.Equal(t, 60.0, active[0].Spec().Y)
	assert.Equal(t, "#000000", active[0].Spec().Color)

	assert.True(t, s.Remove(2))
	assert.False(t, s.Remove(2))
	surface.Remove(2)
	require.NoError(t, s.Fill(b, 3))
	assert.Equal(t, int64(4), s.Active()[2].ID())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, surface.live)
}

func TestSpawnerRejectsSmallPlayfield(t *testing.T) {
	s := newTestSpawner(generator.NewSeeded(1), newRecordingSurface())
	_, err := s.SpawnOne(Bounds{Width: 10, Height: 100, Radius: 5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlayfieldTooSmall))
	assert.Equal(t, 0, s.Len())
}
