// Package player handles the player name and its local persistence.
package player

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// NameKey is the preference key the saved player name lives under.
const NameKey = "reactionSpeed_userName"

// MaxNameLen is the longest accepted name, in runes.
const MaxNameLen = 20

var (
	// ErrEmptyName is returned for names that are blank after trimming.
	ErrEmptyName = errors.New("name must not be empty")
	// ErrNameTooLong is returned for names over MaxNameLen runes.
	ErrNameTooLong = fmt.Errorf("name must be at most %d characters", MaxNameLen)
)

// Prefs is a key/value preference store.
type Prefs interface {
	GetPref(ctx context.Context, key string) (string, error)
	SetPref(ctx context.Context, key, value string) error
	DeletePref(ctx context.Context, key string) error
}

// Normalize trims a name and checks it is non-empty and short enough.
func Normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return "", ErrNameTooLong
	}
	return name, nil
}

// Load returns the saved name, or "" when none is stored.
func Load(ctx context.Context, p Prefs) string {
	name, err := p.GetPref(ctx, NameKey)
	if err != nil {
		return ""
	}
	name, err = Normalize(name)
	if err != nil {
		return ""
	}
	return name
}

// Save normalizes and stores the name, returning the stored value.
func Save(ctx context.Context, p Prefs, name string) (string, error) {
	name, err := Normalize(name)
	if err != nil {
		return "", err
	}
	if err := p.SetPref(ctx, NameKey, name); err != nil {
		return "", err
	}
	return name, nil
}

// Clear forgets the saved name.
func Clear(ctx context.Context, p Prefs) error {
	return p.DeletePref(ctx, NameKey)
}
