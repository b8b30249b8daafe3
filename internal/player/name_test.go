package player

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/tuireact/internal/store"
)

func TestNormalize(t *testing.T) {
	name, err := Normalize("  ada lovelace \n")
	if err != nil || name != "ada lovelace" {
		t.Fatalf("expected trimmed name, got %q (%v)", name, err)
	}
	if _, err := Normalize("   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := Normalize(strings.Repeat("é", MaxNameLen)); err != nil {
		t.Fatalf("expected %d runes to be accepted: %v", MaxNameLen, err)
	}
	if _, err := Normalize(strings.Repeat("x", MaxNameLen+1)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
}

func TestSaveLoadClear(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuireact.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()

	if got := Load(ctx, st); got != "" {
		t.Fatalf("expected no saved name, got %q", got)
	}
	saved, err := Save(ctx, st, " ada ")
	if err != nil || saved != "ada" {
		t.Fatalf("save: %q (%v)", saved, err)
	}
	if got := Load(ctx, st); got != "ada" {
		t.Fatalf("expected ada, got %q", got)
	}
	if _, err := Save(ctx, st, ""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected empty name rejected, got %v", err)
	}
	if err := Clear(ctx, st); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := Load(ctx, st); got != "" {
		t.Fatalf("expected cleared name, got %q", got)
	}
}
