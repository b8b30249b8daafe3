package game

import "time"

// RoundState is the phase of the current round.
type RoundState int

const (
	StateIdle RoundState = iota
	StateWaiting
	StateReady
	StateClickedLate
	StateClickedEarly
	StateLevelComplete
	StateGameOver
)

func (s RoundState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waitingForStimulus"
	case StateReady:
		return "readyForInput"
	case StateClickedLate:
		return "clickedLate"
	case StateClickedEarly:
		return "clickedEarly"
	case StateLevelComplete:
		return "levelComplete"
	case StateGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// SessionStats aggregates a play session.
type SessionStats struct {
	Level        int
	LastReaction *time.Duration
	BestReaction *time.Duration
	LevelScore   int
	TotalScore   int
	Lives        int

	// Rounds counts timed clicks; ReactionSum backs the average.
	Rounds      int
	ReactionSum time.Duration
}

// AverageReaction returns the mean reaction across timed clicks.
func (s SessionStats) AverageReaction() (time.Duration, bool) {
	if s.Rounds == 0 {
		return 0, false
	}
	return s.ReactionSum / time.Duration(s.Rounds), true
}

func newSessionStats(lives int) SessionStats {
	return SessionStats{Lives: lives}
}

// RoundResult describes one scored click in readyForInput.
type RoundResult struct {
	Level      int
	LevelID    string
	Reaction   time.Duration
	Threshold  time.Duration
	Success    bool
	Points     int
	TotalScore int
	Lives      int
	At         time.Time
}
