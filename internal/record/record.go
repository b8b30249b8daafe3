// Package record submits completed rounds to the score and user collaborators.
package record

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuireact/internal/model"
)

// DefaultTimeout bounds a single submission.
const DefaultTimeout = 5 * time.Second

// Recorder accepts score submissions and user upserts.
type Recorder interface {
	SubmitScore(ctx context.Context, rec model.ScoreRecord) error
	UpsertUser(ctx context.Context, user model.User) error
}

// Client posts records to a tuireact score service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SubmitScore posts a score record to /api/scores.
func (c *Client) SubmitScore(ctx context.Context, rec model.ScoreRecord) error {
	return c.post(ctx, "/api/scores", rec)
}

// UpsertUser posts a user to /api/users.
func (c *Client) UpsertUser(ctx context.Context, user model.User) error {
	return c.post(ctx, "/api/users", user)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post %s: %w", path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// ScoreFor builds the score submission for a successful round.
func ScoreFor(playerName string, reactionMs float64, level, totalScore int) model.ScoreRecord {
	return model.ScoreRecord{
		PlayerName:     playerName,
		ReactionTimeMs: reactionMs,
		Level:          level,
		Score:          totalScore,
	}
}

// Op names a persistence call.
type Op string

const (
	OpScore Op = "score"
	OpUser  Op = "user"
)

// ResultMsg reports the outcome of one dispatched call.
type ResultMsg struct {
	Op     Op
	Player string
	Err    error
}

// Dispatch returns the score submission and the user upsert as two
// independent commands. Neither waits on the other; callers only log the
// ResultMsg each one yields.
func Dispatch(r Recorder, rec model.ScoreRecord, timeout time.Duration) []tea.Cmd {
	if r == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	score := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ResultMsg{Op: OpScore, Player: rec.PlayerName, Err: r.SubmitScore(ctx, rec)}
	}
	user := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ResultMsg{Op: OpUser, Player: rec.PlayerName, Err: r.UpsertUser(ctx, model.User{Name: rec.PlayerName})}
	}
	return []tea.Cmd{score, user}
}
