package stats

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tuireact.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		rec := model.RoundRecord{
			ID:         fmt.Sprintf("round-%d", i),
			PlayerName: "ada",
			Level:      1,
			LevelID:    "warmup",
			ReactionMs: float64(400 + i*100),
			Success:    i != 2,
			Points:     20,
			TotalScore: 20 * (i + 1),
			Lives:      3,
			PlayedAt:   time.Unix(0, 0).Add(time.Duration(i) * time.Minute),
		}
		if err := st.InsertRound(ctx, rec); err != nil {
			t.Fatalf("insert round: %v", err)
		}
	}
	if err := st.SubmitScore(ctx, model.ScoreRecord{PlayerName: "ada", ReactionTimeMs: 400, Level: 1, Score: 60}); err != nil {
		t.Fatalf("submit score: %v", err)
	}

	cfg := model.StatsConfig{Name: "ada", Last: 2, CurveWindow: 2}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(report.Rounds))
	}
	if report.Rounds[0].ID != "round-1" || report.Rounds[1].ID != "round-2" {
		t.Fatalf("unexpected round ids: %+v", report.Rounds)
	}
	if report.Metrics.Successes != 1 {
		t.Fatalf("expected 1 success in window, got %d", report.Metrics.Successes)
	}
	if len(report.Levels) != 1 {
		t.Fatalf("expected 1 level row, got %d", len(report.Levels))
	}
	if len(report.Leaderboard) != 1 || report.Leaderboard[0].BestScore != 60 {
		t.Fatalf("unexpected leaderboard: %+v", report.Leaderboard)
	}
}
