// Package model defines shared data structures.
package model

import (
	"math"
	"time"
)

// GameConfig defines the settings of one hold-target session.
type GameConfig struct {
	DurationSeconds int
	Radius          float64
	MaxTargets      int
	HoldDurationMs  float64
	PlayfieldWidth  float64
	PlayfieldHeight float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	UserID      int64
	GameType    string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// UserContext identifies who a session is attributed to.
type UserContext struct {
	UserID   int64
	Username string
	GameType string
}

// User is a local player profile.
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

// SessionState is the lifecycle state of a session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionRunning
	SessionEnded
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionRunning:
		return "running"
	case SessionEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// TargetPhase is the state of a single hold target.
type TargetPhase int

const (
	PhaseIdle TargetPhase = iota
	PhaseHolding
	PhaseCompleted
)

func (p TargetPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseHolding:
		return "holding"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// TargetSpec describes a spawned target. X and Y locate the top-left corner
// of the target's bounding square.
type TargetSpec struct {
	X              float64
	Y              float64
	Radius         float64
	Color          string
	HoldDurationMs float64
}

// Center returns the center of the target circle.
func (s TargetSpec) Center() (float64, float64) {
	return s.X + s.Radius, s.Y + s.Radius
}

// Contains reports whether the point lies inside the target circle.
func (s TargetSpec) Contains(x, y float64) bool {
	cx, cy := s.Center()
	return math.Hypot(x-cx, y-cy) <= s.Radius
}

// HitEvent records a completed hold.
type HitEvent struct {
	RelativeNs int64   `json:"relativeNs" yaml:"relative_ns"`
	AvgCursorX float64 `json:"avgCursorX" yaml:"avg_cursor_x"`
	AvgCursorY float64 `json:"avgCursorY" yaml:"avg_cursor_y"`
	TargetX    float64 `json:"targetX" yaml:"target_x"`
	TargetY    float64 `json:"targetY" yaml:"target_y"`
	Radius     float64 `json:"radius" yaml:"radius"`
}

// HoldAttempt records one continuous hover over a target, successful or not.
// StartNs and EndNs are relative to the session start.
type HoldAttempt struct {
	Index      int     `json:"index" yaml:"index"`
	TargetID   int64   `json:"targetId" yaml:"target_id"`
	StartNs    int64   `json:"startNs" yaml:"start_ns"`
	EndNs      int64   `json:"endNs" yaml:"end_ns"`
	RequiredMs float64 `json:"requiredMs" yaml:"required_ms"`
	ActualMs   float64 `json:"actualMs" yaml:"actual_ms"`
	Success    bool    `json:"success" yaml:"success"`
}

// SessionResult is produced once when a session runs out of time.
type SessionResult struct {
	SessionID       string        `json:"sessionId" yaml:"session_id"`
	UserID          int64         `json:"userId" yaml:"user_id"`
	GameType        string        `json:"gameType" yaml:"game_type"`
	Radius          float64       `json:"radius" yaml:"radius"`
	HoldDurationMs  float64       `json:"holdDurationMs" yaml:"hold_duration_ms"`
	DurationSeconds int           `json:"durationSeconds" yaml:"duration_seconds"`
	StartedAt       time.Time     `json:"startedAt" yaml:"started_at"`
	EndedAt         time.Time     `json:"endedAt" yaml:"ended_at"`
	Score           int           `json:"score" yaml:"score"`
	ExitAttempts    int           `json:"exitAttempts" yaml:"exit_attempts"`
	AccuracyPercent float64       `json:"accuracyPercent" yaml:"accuracy_percent"`
	Hits            []HitEvent    `json:"hits" yaml:"hits"`
	Attempts        []HoldAttempt `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// StatisticsSummary aggregates a hit log.
type StatisticsSummary struct {
	HitRatePercent  float64 `json:"hitRatePercent" yaml:"hit_rate_percent"`
	AvgIntervalMs   float64 `json:"avgIntervalMs" yaml:"avg_interval_ms"`
	AvgDistancePx   float64 `json:"avgDistancePx" yaml:"avg_distance_px"`
	AvgSpeedPxPerMs float64 `json:"avgSpeedPxPerMs" yaml:"avg_speed_px_per_ms"`
}

// GameResult is a stored session summary.
type GameResult struct {
	ID              int64
	SessionID       string
	UserID          int64
	GameType        string
	Radius          float64
	HoldDurationMs  float64
	DurationSeconds int
	Score           int
	ExitAttempts    int
	AccuracyPercent float64
	DurationMs      int64
	Summary         StatisticsSummary
	StartedAt       time.Time
	EndedAt         time.Time
}
