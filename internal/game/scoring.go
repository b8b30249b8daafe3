package game

import (
	"math"
	"time"

	"github.com/verte-zerg/tuireact/internal/model"
)

// Threshold returns the slowest reaction that still counts as a success.
// Implausibly fast reactions get the inflated grace threshold.
func Threshold(reaction, target time.Duration, p Params) time.Duration {
	if reaction < p.GraceCutoff {
		return target + p.GraceBonus
	}
	return target + p.Tolerance
}

// Succeeded reports whether reaction beats the level target. The boundary is inclusive.
func Succeeded(reaction, target time.Duration, p Params) bool {
	return reaction <= Threshold(reaction, target, p)
}

// Points returns the score for a successful round: the base value plus one
// point per full 10ms under the target.
func Points(lvl model.Level, reaction time.Duration) int {
	bonus := math.Floor(float64(lvl.Target-reaction) / float64(10*time.Millisecond))
	if bonus < 0 {
		bonus = 0
	}
	return lvl.Points + int(bonus)
}

// Millis converts a duration to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
