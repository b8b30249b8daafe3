// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuireact/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a keyed lookup has no row.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for rounds, scores, users and preferences.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Score and user writes arrive from concurrent goroutines.
	db.SetMaxOpenConns(1)
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			player_name TEXT NOT NULL,
			level INTEGER NOT NULL,
			level_id TEXT NOT NULL,
			reaction_ms REAL NOT NULL,
			success INTEGER NOT NULL,
			points INTEGER NOT NULL,
			total_score INTEGER NOT NULL,
			lives INTEGER NOT NULL,
			played_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY,
			player_name TEXT NOT NULL,
			reaction_ms REAL NOT NULL,
			level INTEGER NOT NULL,
			score INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			name TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			last_seen_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_played_at ON rounds(played_at);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRound stores one timed click in the local history.
func (s *Store) InsertRound(ctx context.Context, r model.RoundRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rounds (id, player_name, level, level_id, reaction_ms, success, points, total_score, lives, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.PlayerName,
		r.Level,
		r.LevelID,
		r.ReactionMs,
		boolToInt(r.Success),
		r.Points,
		r.TotalScore,
		r.Lives,
		r.PlayedAt.UTC().Format(timeLayout),
	)
	return err
}

// ListRounds returns rounds filtered by stats config, oldest first.
func (s *Store) ListRounds(ctx context.Context, cfg model.StatsConfig) ([]model.RoundRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Name != "" {
		clauses = append(clauses, "player_name = ?")
		args = append(args, cfg.Name)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "played_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, player_name, level, level_id, reaction_ms, success, points, total_score, lives, played_at
		FROM rounds
		WHERE %s
		ORDER BY played_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var rounds []model.RoundRecord
	for rows.Next() {
		var r model.RoundRecord
		var success int
		var playedAt string
		if err := rows.Scan(&r.ID, &r.PlayerName, &r.Level, &r.LevelID, &r.ReactionMs, &success, &r.Points, &r.TotalScore, &r.Lives, &playedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, playedAt)
		if err != nil {
			return nil, err
		}
		r.Success = success != 0
		r.PlayedAt = parsed
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

// SubmitScore stores a score submission.
func (s *Store) SubmitScore(ctx context.Context, rec model.ScoreRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (player_name, reaction_ms, level, score, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.PlayerName,
		rec.ReactionTimeMs,
		rec.Level,
		rec.Score,
		s.now().UTC().Format(timeLayout),
	)
	return err
}

// UpsertUser creates the user or refreshes its last-seen time.
func (s *Store) UpsertUser(ctx context.Context, user model.User) error {
	ts := s.now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, created_at, last_seen_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET last_seen_at = excluded.last_seen_at`,
		user.Name, ts, ts,
	)
	return err
}

// GetUser returns a stored user or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, name string) (model.UserRecord, error) {
	var rec model.UserRecord
	var createdAt, lastSeenAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, created_at, last_seen_at FROM users WHERE name = ?`, name,
	).Scan(&rec.Name, &createdAt, &lastSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserRecord{}, ErrNotFound
	}
	if err != nil {
		return model.UserRecord{}, err
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return model.UserRecord{}, err
	}
	if rec.LastSeenAt, err = time.Parse(timeLayout, lastSeenAt); err != nil {
		return model.UserRecord{}, err
	}
	return rec, nil
}

// Leaderboard ranks players by best submitted score, then best reaction.
// A positive level restricts the ranking to submissions from that level.
func (s *Store) Leaderboard(ctx context.Context, limit, level int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := `SELECT player_name, MAX(score) AS best_score, MIN(reaction_ms) AS best_reaction,
		MAX(level) AS max_level, COUNT(*) AS submissions
		FROM scores
		WHERE (? <= 0 OR level = ?)
		GROUP BY player_name
		ORDER BY best_score DESC, best_reaction ASC, player_name ASC
		LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, level, level, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.BestScore, &e.BestReactionMs, &e.MaxLevel, &e.Submissions); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetPref returns a stored preference or ErrNotFound.
func (s *Store) GetPref(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// SetPref stores a preference, replacing any previous value.
func (s *Store) SetPref(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// DeletePref removes a preference. Removing a missing key is not an error.
func (s *Store) DeletePref(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, key)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
