package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/tuihold/internal/model"
)

// HitRatePercent returns the hit rate of a session. A non-nil override wins;
// otherwise it is hits over all finished holds, or 0 when there were none.
func HitRatePercent(hits, exitAttempts int, override *float64) float64 {
	if override != nil {
		return *override
	}
	total := hits + exitAttempts
	if total <= 0 {
		return 0
	}
	return float64(hits) * 100 / float64(total)
}

// AvgIntervalMs returns the mean time between consecutive hits.
func AvgIntervalMs(hits []model.HitEvent) float64 {
	if len(hits) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(hits); i++ {
		sum += nsToMs(hits[i].RelativeNs - hits[i-1].RelativeNs)
	}
	return sum / float64(len(hits)-1)
}

// HitDistance returns how far the averaged cursor was from the target center.
func HitDistance(hit model.HitEvent) float64 {
	cx := hit.TargetX + hit.Radius
	cy := hit.TargetY + hit.Radius
	return math.Hypot(hit.AvgCursorX-cx, hit.AvgCursorY-cy)
}

// AvgDistancePx returns the mean HitDistance.
func AvgDistancePx(hits []model.HitEvent) float64 {
	if len(hits) == 0 {
		return 0
	}
	var sum float64
	for _, h := range hits {
		sum += HitDistance(h)
	}
	return sum / float64(len(hits))
}

// AvgSpeedPxPerMs returns the mean of distance over hold duration.
func AvgSpeedPxPerMs(hits []model.HitEvent, holdDurationMs float64) float64 {
	if len(hits) == 0 || !(holdDurationMs > 0) {
		return 0
	}
	var sum float64
	for _, h := range hits {
		sum += HitDistance(h) / holdDurationMs
	}
	return sum / float64(len(hits))
}

// Summarize computes every aggregate of a hit log.
func Summarize(hits []model.HitEvent, exitAttempts int, holdDurationMs float64, override *float64) model.StatisticsSummary {
	return model.StatisticsSummary{
		HitRatePercent:  HitRatePercent(len(hits), exitAttempts, override),
		AvgIntervalMs:   AvgIntervalMs(hits),
		AvgDistancePx:   AvgDistancePx(hits),
		AvgSpeedPxPerMs: AvgSpeedPxPerMs(hits, holdDurationMs),
	}
}

// SpanMs returns the time from the first to the last hit.
func SpanMs(hits []model.HitEvent) int64 {
	if len(hits) < 2 {
		return 0
	}
	return (hits[len(hits)-1].RelativeNs - hits[0].RelativeNs) / int64(time.Millisecond)
}

func nsToMs(ns int64) float64 {
	return float64(ns) / float64(time.Millisecond)
}
