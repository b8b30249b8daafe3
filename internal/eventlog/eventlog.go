// Package eventlog appends structured JSON events to log.jsonl.
package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event type constants.
const (
	EventSessionStarted   = "session_started"
	EventRoundScored      = "round_scored"
	EventRoundFailed      = "round_failed"
	EventGameOver         = "game_over"
	EventSessionReset     = "session_reset"
	EventScoreSubmitted   = "score_submitted"
	EventScoreFailed      = "score_submit_failed"
	EventUserUpserted     = "user_upserted"
	EventUserUpsertFailed = "user_upsert_failed"
	EventHistoryFailed    = "history_write_failed"
)

// Event is a single structured log line.
type Event struct {
	Time       time.Time      `json:"time"`
	Event      string         `json:"event"`
	Player     string         `json:"player,omitempty"`
	Level      int            `json:"level,omitempty"`
	ReactionMs float64        `json:"reaction_ms,omitempty"`
	Points     int            `json:"points,omitempty"`
	TotalScore int            `json:"total_score,omitempty"`
	Lives      int            `json:"lives,omitempty"`
	Error      string         `json:"error,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Logger writes append-only JSONL events to a log file.
// A nil *Logger discards events.
type Logger struct {
	path string
	mu   sync.Mutex
}

// New creates a Logger writing to log.jsonl inside dir, creating dir if needed.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &Logger{path: filepath.Join(dir, "log.jsonl")}, nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Append writes one event as a JSON line. A zero Time is set to now.
func (l *Logger) Append(event Event) error {
	if l == nil {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write log event: %w", err)
	}
	return nil
}

// ReadAll parses every event in the log. A missing file yields no events.
func (l *Logger) ReadAll() ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return events, nil
}
