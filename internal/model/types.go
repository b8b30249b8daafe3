// Package model defines shared data structures.
package model

import "time"

// Level describes one stage of the game. Levels are immutable once loaded.
type Level struct {
	ID      string
	Name    string
	MinWait time.Duration
	MaxWait time.Duration
	Target  time.Duration
	Points  int
}

// Config defines play settings.
type Config struct {
	Name       string
	Server     string
	LevelsPath string
	Seed       int64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Name        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RoundRecord captures one timed click in the local history.
type RoundRecord struct {
	ID         string
	PlayerName string
	Level      int
	LevelID    string
	ReactionMs float64
	Success    bool
	Points     int
	TotalScore int
	Lives      int
	PlayedAt   time.Time
}

// ScoreRecord is the payload of a score submission.
type ScoreRecord struct {
	PlayerName     string  `json:"playerName"`
	ReactionTimeMs float64 `json:"reactionTimeMs"`
	Level          int     `json:"level"`
	Score          int     `json:"score"`
}

// User is the payload of a user upsert.
type User struct {
	Name string `json:"name"`
}

// UserRecord is a stored user.
type UserRecord struct {
	Name       string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// LeaderboardEntry summarizes a player's submitted scores.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	PlayerName     string  `json:"playerName"`
	BestScore      int     `json:"bestScore"`
	BestReactionMs float64 `json:"bestReactionMs"`
	MaxLevel       int     `json:"maxLevel"`
	Submissions    int     `json:"submissions"`
}
