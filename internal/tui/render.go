package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuihold/internal/engine"
	"github.com/verte-zerg/tuihold/internal/model"
	"github.com/verte-zerg/tuihold/internal/stats"
)

const (
	hudRows    = 1
	footerRows = 1
	// Each terminal row covers two playfield units so circles look round.
	unitsPerRow = 2

	filledGlyph  = '█'
	pendingGlyph = '░'
	ringGlyph    = '*'
)

var (
	hudStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	resultsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4B5563")).
			Padding(1, 3)
)

type cell struct {
	ch    rune
	color string
}

// playfieldRows returns how many terminal rows the playfield gets.
func playfieldRows(height int) int {
	return max(0, height-hudRows-footerRows)
}

// playfieldSize converts a terminal size to playfield units.
func playfieldSize(width, height int) (float64, float64) {
	return float64(width), float64(playfieldRows(height) * unitsPerRow)
}

// cellCenter maps a playfield cell to the playfield point at its center.
func cellCenter(col, row int) (float64, float64) {
	return float64(col) + 0.5, float64(row*unitsPerRow) + unitsPerRow/2
}

// pointerPosition maps a terminal cell to playfield units. ok is false when
// the cell lies outside the playfield.
func pointerPosition(col, row, width, height int) (x, y float64, ok bool) {
	prow := row - hudRows
	if col < 0 || col >= width || prow < 0 || prow >= playfieldRows(height) {
		return 0, 0, false
	}
	x, y = cellCenter(col, prow)
	return x, y, true
}

// sweepFraction returns the clockwise angle of (x, y) around (cx, cy),
// starting at twelve o'clock, as a fraction of a full turn.
func sweepFraction(x, y, cx, cy float64) float64 {
	a := math.Atan2(x-cx, cy-y)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a / (2 * math.Pi)
}

func renderPlayfield(cols, rows int, surface *Surface, progress map[int64]float64) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for c := range grid[r] {
			grid[r][c] = cell{ch: ' '}
		}
	}

	for _, id := range surface.ids() {
		spec := surface.targets[id]
		paintTarget(grid, spec, progress[id])
	}
	for _, e := range surface.effects {
		paintRing(grid, e)
	}

	lines := make([]string, rows)
	for r, row := range grid {
		lines[r] = renderRow(row)
	}
	return strings.Join(lines, "\n")
}

func paintTarget(grid [][]cell, spec model.TargetSpec, progress float64) {
	cx, cy := spec.Center()
	for r := range grid {
		for c := range grid[r] {
			x, y := cellCenter(c, r)
			if !spec.Contains(x, y) {
				continue
			}
			glyph := pendingGlyph
			if progress > 0 && sweepFraction(x, y, cx, cy) < progress {
				glyph = filledGlyph
			}
			grid[r][c] = cell{ch: glyph, color: spec.Color}
		}
	}
}

func paintRing(grid [][]cell, e *effect) {
	for r := range grid {
		for c := range grid[r] {
			x, y := cellCenter(c, r)
			if math.Abs(math.Hypot(x-e.x, y-e.y)-e.radius) > 0.6 {
				continue
			}
			if grid[r][c].ch != ' ' {
				continue
			}
			grid[r][c] = cell{ch: ringGlyph, color: e.color}
		}
	}
}

func renderRow(row []cell) string {
	var b strings.Builder
	var run strings.Builder
	color := ""
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if color == "" {
			b.WriteString(run.String())
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run.String()))
		}
		run.Reset()
	}
	for _, c := range row {
		if c.color != color {
			flush()
			color = c.color
		}
		run.WriteRune(c.ch)
	}
	flush()
	return b.String()
}

func liveAccuracy(score, exits int) float64 {
	if exits <= 0 {
		return 0
	}
	return float64(score) * 100 / float64(exits)
}

func renderHUD(width int, s *engine.Session, user string) string {
	line := fmt.Sprintf("Time %ds  Score %d  Exits %d  Accuracy %.0f%%  %s",
		s.Remaining(), s.Score(), s.ExitAttempts(), liveAccuracy(s.Score(), s.ExitAttempts()), user)
	return hudStyle.Render(truncate(line, width))
}

func renderHelp(width int, bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return footerStyle.Render(truncate(strings.Join(parts, " · "), width))
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func renderResults(r model.SessionResult, resultID int64, saveErr error) string {
	summary := stats.Summarize(r.Hits, r.ExitAttempts, r.HoldDurationMs, &r.AccuracyPercent)
	lines := []string{
		titleStyle.Render("Time's up"),
		"",
		fmt.Sprintf("Score          %d", r.Score),
		fmt.Sprintf("Exit attempts  %d", r.ExitAttempts),
		fmt.Sprintf("Accuracy       %.1f%%", r.AccuracyPercent),
		fmt.Sprintf("Avg interval   %.0f ms", summary.AvgIntervalMs),
		fmt.Sprintf("Avg distance   %.2f", summary.AvgDistancePx),
		fmt.Sprintf("Avg speed      %.4f /ms", summary.AvgSpeedPxPerMs),
		"",
	}
	if saveErr != nil {
		lines = append(lines, errorStyle.Render("Not saved: "+saveErr.Error()))
	} else {
		lines = append(lines, footerStyle.Render(fmt.Sprintf("Saved as result #%d", resultID)))
	}
	return resultsStyle.Render(strings.Join(lines, "\n"))
}
