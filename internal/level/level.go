// Package level holds the level table and level pack loading.
package level

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuireact/internal/model"
)

// ErrInvalidLevel reports a level table that cannot be played.
var ErrInvalidLevel = errors.New("invalid level")

var builtin = []model.Level{
	{ID: "warmup", Name: "Warm Up", MinWait: 2000 * time.Millisecond, MaxWait: 4000 * time.Millisecond, Target: 800 * time.Millisecond, Points: 20},
	{ID: "focus", Name: "Focus", MinWait: 1500 * time.Millisecond, MaxWait: 4500 * time.Millisecond, Target: 600 * time.Millisecond, Points: 30},
	{ID: "sharp", Name: "Sharp", MinWait: 1000 * time.Millisecond, MaxWait: 5000 * time.Millisecond, Target: 450 * time.Millisecond, Points: 40},
	{ID: "lightning", Name: "Lightning", MinWait: 1000 * time.Millisecond, MaxWait: 6000 * time.Millisecond, Target: 350 * time.Millisecond, Points: 60},
	{ID: "master", Name: "Reflex Master", MinWait: 500 * time.Millisecond, MaxWait: 7000 * time.Millisecond, Target: 280 * time.Millisecond, Points: 100},
}

// Default returns a copy of the built-in level table.
func Default() []model.Level {
	out := make([]model.Level, len(builtin))
	copy(out, builtin)
	return out
}

// Validate checks that a level table is non-empty and every level is playable.
func Validate(levels []model.Level) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: no levels defined", ErrInvalidLevel)
	}
	seen := make(map[string]struct{}, len(levels))
	for i, lvl := range levels {
		if lvl.ID == "" {
			return fmt.Errorf("%w: level %d has no id", ErrInvalidLevel, i+1)
		}
		if _, ok := seen[lvl.ID]; ok {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidLevel, lvl.ID)
		}
		seen[lvl.ID] = struct{}{}
		if lvl.MinWait < 0 {
			return fmt.Errorf("%w: %s min wait must be >= 0", ErrInvalidLevel, lvl.ID)
		}
		if lvl.MaxWait < lvl.MinWait {
			return fmt.Errorf("%w: %s max wait is below min wait", ErrInvalidLevel, lvl.ID)
		}
		if lvl.Target <= 0 {
			return fmt.Errorf("%w: %s target must be > 0", ErrInvalidLevel, lvl.ID)
		}
		if lvl.Points < 0 {
			return fmt.Errorf("%w: %s points must be >= 0", ErrInvalidLevel, lvl.ID)
		}
	}
	return nil
}

type packFile struct {
	Levels []packLevel `yaml:"levels"`
}

type packLevel struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	MinWaitMs int64  `yaml:"min-wait-ms"`
	MaxWaitMs int64  `yaml:"max-wait-ms"`
	TargetMs  int64  `yaml:"target-ms"`
	Points    int    `yaml:"points"`
}

// LoadFile reads a YAML level pack and validates it.
func LoadFile(path string) ([]model.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML level pack and validates it.
func Parse(data []byte) ([]model.Level, error) {
	var pack packFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to decode level pack: %w", err)
	}
	levels := make([]model.Level, 0, len(pack.Levels))
	for _, pl := range pack.Levels {
		name := pl.Name
		if name == "" {
			name = pl.ID
		}
		levels = append(levels, model.Level{
			ID:      pl.ID,
			Name:    name,
			MinWait: time.Duration(pl.MinWaitMs) * time.Millisecond,
			MaxWait: time.Duration(pl.MaxWaitMs) * time.Millisecond,
			Target:  time.Duration(pl.TargetMs) * time.Millisecond,
			Points:  pl.Points,
		})
	}
	if err := Validate(levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// Resolve returns the level pack at path, or the built-in table when path is empty.
func Resolve(path string) ([]model.Level, error) {
	if path == "" {
		return Default(), nil
	}
	levels, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load levels from %s: %w", path, err)
	}
	return levels, nil
}
