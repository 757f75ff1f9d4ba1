// Package stats contains hit log statistics and result reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/tuihold/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Overview aggregates a list of stored results.
type Overview struct {
	Sessions      int
	BestScore     int
	AvgScore      float64
	AvgAccuracy   float64
	AvgHitRate    float64
	AvgDistancePx float64
	AvgIntervalMs float64
}

// Overall computes the overview of results.
func Overall(results []model.GameResult) Overview {
	if len(results) == 0 {
		return Overview{}
	}
	var o Overview
	var score, acc, rate, dist, interval float64
	for _, r := range results {
		score += float64(r.Score)
		acc += r.AccuracyPercent
		rate += r.Summary.HitRatePercent
		dist += r.Summary.AvgDistancePx
		interval += r.Summary.AvgIntervalMs
		if r.Score > o.BestScore {
			o.BestScore = r.Score
		}
	}
	n := float64(len(results))
	o.Sessions = len(results)
	o.AvgScore = score / n
	o.AvgAccuracy = acc / n
	o.AvgHitRate = rate / n
	o.AvgDistancePx = dist / n
	o.AvgIntervalMs = interval / n
	return o
}

// RenderSummary prints the overview of results.
func RenderSummary(w io.Writer, results []model.GameResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	o := Overall(results)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", o.Sessions),
		fmt.Sprintf("Best score: %d", o.BestScore),
		fmt.Sprintf("Avg score: %.2f", o.AvgScore),
		fmt.Sprintf("Avg accuracy: %.2f%%", o.AvgAccuracy),
		fmt.Sprintf("Avg hit rate: %.2f%%", o.AvgHitRate),
		fmt.Sprintf("Avg distance: %.2f", o.AvgDistancePx),
		fmt.Sprintf("Avg interval: %.0f ms", o.AvgIntervalMs),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Curves returns the score and accuracy series smoothed over window.
func Curves(results []model.GameResult, window int) (scores, accuracy []float64) {
	scores = make([]float64, len(results))
	accuracy = make([]float64, len(results))
	for i, r := range results {
		scores[i] = float64(r.Score)
		accuracy[i] = r.AccuracyPercent
	}
	return MovingAverage(scores, window), MovingAverage(accuracy, window)
}

// RenderCurves prints sparkline learning curves for score and accuracy.
func RenderCurves(w io.Writer, results []model.GameResult, window int) error {
	if len(results) == 0 {
		return nil
	}
	scores, accuracy := Curves(results, window)
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", max(window, 1)); err != nil {
		return err
	}
	rows := [][]string{
		{"Score", Sparkline(scores), fmt.Sprintf("%.1f", scores[len(scores)-1])},
		{"Accuracy", Sparkline(accuracy), fmt.Sprintf("%.1f%%", accuracy[len(accuracy)-1])},
	}
	for _, line := range formatTable(nil, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
