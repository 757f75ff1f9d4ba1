package stats

import (
	"sort"

	"github.com/verte-zerg/tuihold/internal/model"
)

// TopResults returns the n best results: highest score first, then higher
// accuracy, then the earlier session.
func TopResults(results []model.GameResult, n int) []model.GameResult {
	if n <= 0 || len(results) == 0 {
		return nil
	}
	out := make([]model.GameResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].AccuracyPercent != out[j].AccuracyPercent {
			return out[i].AccuracyPercent > out[j].AccuracyPercent
		}
		return out[i].ID < out[j].ID
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}
