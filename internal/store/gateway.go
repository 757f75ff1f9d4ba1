package store

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tuihold/internal/logger"
	"github.com/verte-zerg/tuihold/internal/model"
	"github.com/verte-zerg/tuihold/internal/stats"
)

// Gateway persists finished sessions for the engine.
type Gateway struct {
	st *Store
}

// NewGateway wraps a store.
func NewGateway(st *Store) *Gateway {
	return &Gateway{st: st}
}

// Save summarizes the hit log, using the session accuracy as hit rate, and
// stores the result.
func (g *Gateway) Save(ctx context.Context, result model.SessionResult) (int64, error) {
	accuracy := result.AccuracyPercent
	summary := stats.Summarize(result.Hits, result.ExitAttempts, result.HoldDurationMs, &accuracy)
	id, err := g.st.InsertResult(ctx, result, summary)
	if err != nil {
		return 0, fmt.Errorf("failed to save result: %w", err)
	}
	logger.FromContext(ctx).Debug("stored %d hits and %d attempts as result %d",
		len(result.Hits), len(result.Attempts), id)
	return id, nil
}
