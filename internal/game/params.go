package game

import (
	"fmt"
	"time"
)

// Params holds the tunable rules of a game.
type Params struct {
	Lives             int
	GraceCutoff       time.Duration
	GraceBonus        time.Duration
	Tolerance         time.Duration
	EarlyPenaltyTicks int
	FailPenaltyTicks  int
	AdvanceDelay      time.Duration
	AdvanceTicks      int
	Tick              time.Duration
}

// DefaultParams returns the canonical rule set.
func DefaultParams() Params {
	return Params{
		Lives:             3,
		GraceCutoff:       150 * time.Millisecond,
		GraceBonus:        250 * time.Millisecond,
		Tolerance:         50 * time.Millisecond,
		EarlyPenaltyTicks: 3,
		FailPenaltyTicks:  5,
		AdvanceDelay:      2 * time.Second,
		AdvanceTicks:      3,
		Tick:              time.Second,
	}
}

// Validate reports the first rule that makes the game unplayable.
func (p Params) Validate() error {
	if p.Lives < 1 {
		return fmt.Errorf("lives must be >= 1")
	}
	if p.GraceCutoff < 0 || p.GraceBonus < 0 || p.Tolerance < 0 {
		return fmt.Errorf("grace cutoff, grace bonus and tolerance must be >= 0")
	}
	if p.EarlyPenaltyTicks < 1 || p.FailPenaltyTicks < 1 || p.AdvanceTicks < 1 {
		return fmt.Errorf("countdown ticks must be >= 1")
	}
	if p.AdvanceDelay < 0 {
		return fmt.Errorf("advance delay must be >= 0")
	}
	if p.Tick <= 0 {
		return fmt.Errorf("tick must be > 0")
	}
	return nil
}
