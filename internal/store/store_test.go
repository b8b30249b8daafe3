package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuireact/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tuireact.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestRoundsRoundTripAndFilter(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()
	rounds := []model.RoundRecord{
		{ID: "r1", PlayerName: "ada", Level: 1, LevelID: "warmup", ReactionMs: 512.5, Success: true, Points: 48, TotalScore: 48, Lives: 3, PlayedAt: base},
		{ID: "r2", PlayerName: "bob", Level: 1, LevelID: "warmup", ReactionMs: 910, Success: false, Lives: 2, PlayedAt: base.Add(time.Minute)},
		{ID: "r3", PlayerName: "ada", Level: 2, LevelID: "focus", ReactionMs: 420, Success: true, Points: 48, TotalScore: 96, Lives: 3, PlayedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range rounds {
		if err := st.InsertRound(ctx, r); err != nil {
			t.Fatalf("insert round: %v", err)
		}
	}

	got, err := st.ListRounds(ctx, model.StatsConfig{Name: "ada"})
	if err != nil {
		t.Fatalf("list rounds: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r1" || got[1].ID != "r3" {
		t.Fatalf("unexpected rounds: %+v", got)
	}
	if !got[0].Success || got[0].ReactionMs != 512.5 || !got[0].PlayedAt.Equal(base) {
		t.Fatalf("round fields not preserved: %+v", got[0])
	}

	since := base.Add(90 * time.Second)
	got, err = st.ListRounds(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list rounds since: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r3" {
		t.Fatalf("unexpected rounds since filter: %+v", got)
	}
}

func TestLeaderboardRanksByBestScore(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	records := []model.ScoreRecord{
		{PlayerName: "ada", ReactionTimeMs: 300, Level: 1, Score: 70},
		{PlayerName: "ada", ReactionTimeMs: 280, Level: 2, Score: 130},
		{PlayerName: "bob", ReactionTimeMs: 250, Level: 1, Score: 75},
		{PlayerName: "cy", ReactionTimeMs: 240, Level: 1, Score: 75},
	}
	for _, rec := range records {
		if err := st.SubmitScore(ctx, rec); err != nil {
			t.Fatalf("submit score: %v", err)
		}
	}

	entries, err := st.Leaderboard(ctx, 10, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].PlayerName != "ada" || entries[0].BestScore != 130 || entries[0].Submissions != 2 || entries[0].MaxLevel != 2 {
		t.Fatalf("unexpected leader: %+v", entries[0])
	}
	if entries[1].PlayerName != "cy" || entries[2].PlayerName != "bob" {
		t.Fatalf("ties must break on best reaction: %+v", entries)
	}
	if entries[2].Rank != 3 {
		t.Fatalf("expected rank 3, got %d", entries[2].Rank)
	}

	levelOne, err := st.Leaderboard(ctx, 1, 1)
	if err != nil {
		t.Fatalf("leaderboard level: %v", err)
	}
	if len(levelOne) != 1 || levelOne[0].PlayerName != "cy" {
		t.Fatalf("unexpected level leaderboard: %+v", levelOne)
	}
}

func TestUpsertUserKeepsCreatedAt(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	first := time.Unix(1_700_000_000, 0).UTC()
	st.now = func() time.Time { return first }
	if err := st.UpsertUser(ctx, model.User{Name: "ada"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	later := first.Add(time.Hour)
	st.now = func() time.Time { return later }
	if err := st.UpsertUser(ctx, model.User{Name: "ada"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	rec, err := st.GetUser(ctx, "ada")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if !rec.CreatedAt.Equal(first) || !rec.LastSeenAt.Equal(later) {
		t.Fatalf("unexpected timestamps: %+v", rec)
	}
	if _, err := st.GetUser(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPrefs(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.GetPref(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.SetPref(ctx, "k", "one"); err != nil {
		t.Fatalf("set pref: %v", err)
	}
	if err := st.SetPref(ctx, "k", "two"); err != nil {
		t.Fatalf("overwrite pref: %v", err)
	}
	if v, err := st.GetPref(ctx, "k"); err != nil || v != "two" {
		t.Fatalf("expected two, got %q (%v)", v, err)
	}
	if err := st.DeletePref(ctx, "k"); err != nil {
		t.Fatalf("delete pref: %v", err)
	}
	if err := st.DeletePref(ctx, "k"); err != nil {
		t.Fatalf("deleting missing pref must not fail: %v", err)
	}
}
