// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tuireact/internal/game"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Player PlayerConfig `toml:"player"`
	Game   GameConfig   `toml:"game"`
	Server ServerConfig `toml:"server"`
}

// PlayerConfig maps player-related settings.
type PlayerConfig struct {
	Name   *string `toml:"name"`
	Server *string `toml:"server"`
}

// GameConfig maps game rule overrides.
type GameConfig struct {
	Lives             *int    `toml:"lives"`
	GraceCutoffMs     *int64  `toml:"grace-cutoff-ms"`
	GraceBonusMs      *int64  `toml:"grace-bonus-ms"`
	ToleranceMs       *int64  `toml:"tolerance-ms"`
	EarlyPenaltyTicks *int    `toml:"early-penalty-ticks"`
	FailPenaltyTicks  *int    `toml:"fail-penalty-ticks"`
	AdvanceDelayMs    *int64  `toml:"advance-delay-ms"`
	AdvanceTicks      *int    `toml:"advance-ticks"`
	TickMs            *int64  `toml:"tick-ms"`
	Levels            *string `toml:"levels"`
}

// ServerConfig maps score service settings.
type ServerConfig struct {
	Addr *string `toml:"addr"`
	DB   *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Params overlays the configured rule overrides on base.
func (g GameConfig) Params(base game.Params) game.Params {
	p := base
	if g.Lives != nil {
		p.Lives = *g.Lives
	}
	applyMs(&p.GraceCutoff, g.GraceCutoffMs)
	applyMs(&p.GraceBonus, g.GraceBonusMs)
	applyMs(&p.Tolerance, g.ToleranceMs)
	if g.EarlyPenaltyTicks != nil {
		p.EarlyPenaltyTicks = *g.EarlyPenaltyTicks
	}
	if g.FailPenaltyTicks != nil {
		p.FailPenaltyTicks = *g.FailPenaltyTicks
	}
	applyMs(&p.AdvanceDelay, g.AdvanceDelayMs)
	if g.AdvanceTicks != nil {
		p.AdvanceTicks = *g.AdvanceTicks
	}
	applyMs(&p.Tick, g.TickMs)
	return p
}

func applyMs(target *time.Duration, ms *int64) {
	if ms == nil {
		return
	}
	*target = time.Duration(*ms) * time.Millisecond
}
