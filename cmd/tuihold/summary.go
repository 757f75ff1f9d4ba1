package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuihold/internal/model"
	"github.com/verte-zerg/tuihold/internal/stats"
	"github.com/verte-zerg/tuihold/internal/store"
)

const (
	defaultWrapWidth = 80
	maxSummaryHits   = 20
)

var summaryID int64

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a session summary",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	cmd.Flags().Int64Var(&summaryID, "id", 0, "result id (default: latest result of the current user)")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	result, err := resolveResult(ctx, a, summaryID)
	if err != nil {
		return err
	}
	hits, err := a.st.ListHits(ctx, result.ID)
	if err != nil {
		return fmt.Errorf("failed to load hits: %w", err)
	}
	return renderMarkdown(cmd.OutOrStdout(), summaryMarkdown(result, hits))
}

// resolveResult loads the result with the given id, or the latest result
// of the current user when id is 0.
func resolveResult(ctx context.Context, a *app, id int64) (model.GameResult, error) {
	var (
		result model.GameResult
		err    error
	)
	if id > 0 {
		result, err = a.st.GetResult(ctx, id)
	} else {
		result, err = a.st.LatestResult(ctx, a.user.ID)
	}
	if errors.Is(err, store.ErrNotFound) {
		if id > 0 {
			return model.GameResult{}, fmt.Errorf("result #%d not found", id)
		}
		return model.GameResult{}, fmt.Errorf("no results for %s yet", a.user.Username)
	}
	if err != nil {
		return model.GameResult{}, fmt.Errorf("failed to load result: %w", err)
	}
	return result, nil
}

func summaryMarkdown(r model.GameResult, hits []model.HitEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session #%d\n\n", r.ID)
	fmt.Fprintf(&b, "Played %s, %ds with radius %.1f and %.0fms holds.\n\n",
		r.StartedAt.Local().Format("2006-01-02 15:04"), r.DurationSeconds, r.Radius, r.HoldDurationMs)

	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Score | %d |\n", r.Score)
	fmt.Fprintf(&b, "| Exit attempts | %d |\n", r.ExitAttempts)
	fmt.Fprintf(&b, "| Accuracy | %.1f%% |\n", r.AccuracyPercent)
	fmt.Fprintf(&b, "| Avg interval | %.0f ms |\n", r.Summary.AvgIntervalMs)
	fmt.Fprintf(&b, "| Avg distance | %.2f |\n", r.Summary.AvgDistancePx)
	fmt.Fprintf(&b, "| Avg speed | %.4f /ms |\n", r.Summary.AvgSpeedPxPerMs)

	if len(hits) == 0 {
		b.WriteString("\nNo targets were completed.\n")
		return b.String()
	}
	b.WriteString("\n## Hits\n\n| # | Time | Distance |\n|---:|---:|---:|\n")
	for i, hit := range hits {
		if i == maxSummaryHits {
			fmt.Fprintf(&b, "\n_%d more hits omitted._\n", len(hits)-maxSummaryHits)
			break
		}
		fmt.Fprintf(&b, "| %d | %.2fs | %.2f |\n", i+1, float64(hit.RelativeNs)/1e9, stats.HitDistance(hit))
	}
	return b.String()
}

func renderMarkdown(w io.Writer, md string) error {
	style := glamour.WithStandardStyle("notty")
	width := defaultWrapWidth
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		style = glamour.WithAutoStyle()
		if cols, _, err := term.GetSize(fd); err == nil && cols > 0 {
			width = cols
		}
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
