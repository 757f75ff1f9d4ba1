package stats

import (
	"context"

	"github.com/verte-zerg/tuihold/internal/model"
)

// ResultSource lists stored results in chronological order.
type ResultSource interface {
	ListResults(ctx context.Context, filter model.StatsConfig) ([]model.GameResult, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Results  []model.GameResult
	Window   []model.GameResult
	Overview Overview
	Top      []model.GameResult
}

// TopCount is how many best results a report keeps.
const TopCount = 5

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src ResultSource, cfg model.StatsConfig) (Report, error) {
	results, err := src.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return Report{
		Results:  results,
		Window:   lastResults(results, cfg.CurveWindow),
		Overview: Overall(results),
		Top:      TopResults(results, TopCount),
	}, nil
}

func lastResults(results []model.GameResult, window int) []model.GameResult {
	if window <= 0 || len(results) <= window {
		return results
	}
	return results[len(results)-window:]
}
