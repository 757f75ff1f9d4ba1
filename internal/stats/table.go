package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuihold/internal/model"
)

// ResultHeaders are the column titles of a results table.
var ResultHeaders = []string{"ID", "Date", "Score", "Exits", "Accuracy", "Radius", "Hold", "Distance", "Interval"}

// ResultRow formats one stored result as table cells.
func ResultRow(r model.GameResult) []string {
	return []string{
		fmt.Sprintf("%d", r.ID),
		r.StartedAt.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d", r.Score),
		fmt.Sprintf("%d", r.ExitAttempts),
		fmt.Sprintf("%.1f%%", r.AccuracyPercent),
		fmt.Sprintf("%.0f", r.Radius),
		fmt.Sprintf("%.0fms", r.HoldDurationMs),
		fmt.Sprintf("%.2f", r.Summary.AvgDistancePx),
		fmt.Sprintf("%.0fms", r.Summary.AvgIntervalMs),
	}
}

// RenderResultsTable prints results newest first.
func RenderResultsTable(w io.Writer, results []model.GameResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Results"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		rows = append(rows, ResultRow(results[i]))
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true}
	for _, line := range formatTable(ResultHeaders, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		colCount = max(colCount, len(row))
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}
