package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/verte-zerg/tuihold/internal/model"
	"github.com/verte-zerg/tuihold/internal/stats"
)

const resultColumns = `id, session_id, user_id, game_type, radius, hold_duration_ms, duration_seconds,
	score, exit_attempts, accuracy_percent, hit_rate_percent, avg_interval_ms, avg_distance_px,
	avg_speed_px_per_ms, duration_ms, started_at, ended_at`

// InsertResult stores a finished session with its hit log and hold attempts.
func (s *Store) InsertResult(ctx context.Context, result model.SessionResult, summary model.StatisticsSummary) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO game_results (session_id, user_id, game_type, radius, hold_duration_ms, duration_seconds,
			score, exit_attempts, accuracy_percent, hit_rate_percent, avg_interval_ms, avg_distance_px,
			avg_speed_px_per_ms, duration_ms, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.SessionID,
		result.UserID,
		result.GameType,
		result.Radius,
		result.HoldDurationMs,
		result.DurationSeconds,
		result.Score,
		result.ExitAttempts,
		result.AccuracyPercent,
		summary.HitRatePercent,
		summary.AvgIntervalMs,
		summary.AvgDistancePx,
		summary.AvgSpeedPxPerMs,
		stats.SpanMs(result.Hits),
		result.StartedAt.UTC().Format(timeLayout),
		result.EndedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, h := range result.Hits {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO hits (result_id, seq, relative_ns, avg_cursor_x, avg_cursor_y, target_x, target_y, radius)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, h.RelativeNs, h.AvgCursorX, h.AvgCursorY, h.TargetX, h.TargetY, h.Radius); err != nil {
			return 0, err
		}
	}
	for i, a := range result.Attempts {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO hold_attempts (result_id, seq, target_id, start_ns, end_ns, required_ms, actual_ms, success)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, a.TargetID, a.StartNs, a.EndNs, a.RequiredMs, a.ActualMs, a.Success); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListResults returns stored results matching the filter, oldest first.
// Last keeps only the most recent results.
func (s *Store) ListResults(ctx context.Context, filter model.StatsConfig) ([]model.GameResult, error) {
	query := sq.Select(resultColumns).From("game_results")
	if filter.UserID > 0 {
		query = query.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.GameType != "" {
		query = query.Where(sq.Eq{"game_type": filter.GameType})
	}
	if filter.Since != nil {
		query = query.Where(sq.GtOrEq{"ended_at": filter.Since.UTC().Format(timeLayout)})
	}
	query = query.OrderBy("ended_at DESC", "id DESC")
	if filter.Last > 0 {
		query = query.Limit(uint64(filter.Last))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.GameResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// LatestResult returns the most recent result of a user.
func (s *Store) LatestResult(ctx context.Context, userID int64) (model.GameResult, error) {
	results, err := s.ListResults(ctx, model.StatsConfig{UserID: userID, Last: 1})
	if err != nil {
		return model.GameResult{}, err
	}
	if len(results) == 0 {
		return model.GameResult{}, ErrNotFound
	}
	return results[0], nil
}

// GetResult returns a stored result by id.
func (s *Store) GetResult(ctx context.Context, id int64) (model.GameResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM game_results WHERE id = ?`, id)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.GameResult{}, ErrNotFound
	}
	return r, err
}

// ListHits returns the hit log of a result in completion order.
func (s *Store) ListHits(ctx context.Context, resultID int64) ([]model.HitEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT relative_ns, avg_cursor_x, avg_cursor_y, target_x, target_y, radius
		 FROM hits WHERE result_id = ? ORDER BY seq ASC`, resultID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var hits []model.HitEvent
	for rows.Next() {
		var h model.HitEvent
		if err := rows.Scan(&h.RelativeNs, &h.AvgCursorX, &h.AvgCursorY, &h.TargetX, &h.TargetY, &h.Radius); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// ListAttempts returns the hold attempts of a result in order.
func (s *Store) ListAttempts(ctx context.Context, resultID int64) ([]model.HoldAttempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, target_id, start_ns, end_ns, required_ms, actual_ms, success
		 FROM hold_attempts WHERE result_id = ? ORDER BY seq ASC`, resultID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.HoldAttempt
	for rows.Next() {
		var a model.HoldAttempt
		if err := rows.Scan(&a.Index, &a.TargetID, &a.StartNs, &a.EndNs, &a.RequiredMs, &a.ActualMs, &a.Success); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// LoadSessionResult rebuilds the interchange shape of a stored result.
func (s *Store) LoadSessionResult(ctx context.Context, id int64) (model.SessionResult, error) {
	r, err := s.GetResult(ctx, id)
	if err != nil {
		return model.SessionResult{}, err
	}
	hits, err := s.ListHits(ctx, id)
	if err != nil {
		return model.SessionResult{}, err
	}
	attempts, err := s.ListAttempts(ctx, id)
	if err != nil {
		return model.SessionResult{}, err
	}
	return model.SessionResult{
		SessionID:       r.SessionID,
		UserID:          r.UserID,
		GameType:        r.GameType,
		Radius:          r.Radius,
		HoldDurationMs:  r.HoldDurationMs,
		DurationSeconds: r.DurationSeconds,
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		Score:           r.Score,
		ExitAttempts:    r.ExitAttempts,
		AccuracyPercent: r.AccuracyPercent,
		Hits:            hits,
		Attempts:        attempts,
	}, nil
}

// DeleteResultsForUser removes every result of a user and returns how many were deleted.
func (s *Store) DeleteResultsForUser(ctx context.Context, userID int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, table := range []string{"hits", "hold_attempts"} {
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE result_id IN (SELECT id FROM game_results WHERE user_id = ?)`, userID); err != nil {
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM game_results WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (model.GameResult, error) {
	var r model.GameResult
	var startedAt, endedAt string
	if err := row.Scan(
		&r.ID, &r.SessionID, &r.UserID, &r.GameType, &r.Radius, &r.HoldDurationMs, &r.DurationSeconds,
		&r.Score, &r.ExitAttempts, &r.AccuracyPercent, &r.Summary.HitRatePercent, &r.Summary.AvgIntervalMs,
		&r.Summary.AvgDistancePx, &r.Summary.AvgSpeedPxPerMs, &r.DurationMs, &startedAt, &endedAt,
	); err != nil {
		return model.GameResult{}, err
	}
	var err error
	if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return model.GameResult{}, err
	}
	if r.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
		return model.GameResult{}, err
	}
	return r, nil
}
