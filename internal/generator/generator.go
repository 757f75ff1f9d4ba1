// Package generator provides the random source used to place targets.
package generator

import (
	"math/rand"
	"time"
)

// Generator produces uniform random numbers from a seeded source.
type Generator struct {
	rnd  *rand.Rand
	seed int64
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed, for repeatable layouts.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Float64 returns a uniform value in [0, 1).
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}

// Intn returns a uniform value in [0, n). It returns 0 when n <= 0.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.rnd.Intn(n)
}
