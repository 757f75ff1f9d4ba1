// Package audio provides the completion cue.
package audio

import (
	"io"
	"sync"
	"time"
)

const bel = "\a"

// Bell rings the terminal bell. Rings closer together than MinGap are
// dropped so bursts of completions produce one sound.
type Bell struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	minGap  time.Duration
	last    time.Time
	now     func() time.Time
}

// MinGap is the default minimum spacing between two rings.
const MinGap = 80 * time.Millisecond

// NewBell returns a bell writing to w. A disabled bell never writes.
func NewBell(w io.Writer, enabled bool) *Bell {
	return &Bell{w: w, enabled: enabled, minGap: MinGap, now: time.Now}
}

// Play rings the bell.
func (b *Bell) Play() error {
	if b == nil || !b.enabled || b.w == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if !b.last.IsZero() && now.Sub(b.last) < b.minGap {
		return nil
	}
	b.last = now
	_, err := io.WriteString(b.w, bel)
	return err
}
