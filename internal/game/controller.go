// Package game implements the reaction round state machine.
package game

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tuireact/internal/level"
	"github.com/verte-zerg/tuireact/internal/model"
)

// Clock supplies timestamps for reaction measurement.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock. time.Now carries a monotonic reading,
// so reaction times are immune to wall clock jumps.
func SystemClock() Clock { return systemClock{} }

// EventKind enumerates controller inputs.
type EventKind int

const (
	EventStart EventKind = iota
	EventInput
	EventFire
	EventReset
)

// Event is a single controller input.
type Event struct {
	Kind  EventKind
	Timer Timer
}

// Effects are what the caller must do after a transition.
type Effects struct {
	// Timers to schedule; each is handed back through Fire when it elapses.
	Timers []Timer
	// Result is set when a click in readyForInput was scored.
	Result *RoundResult
}

// Controller owns round state, session stats and timers.
// It is not safe for concurrent use; callers serialize events.
type Controller struct {
	levels []model.Level
	params Params
	clock  Clock
	delays *DelaySource

	state      RoundState
	stats      SessionStats
	timers     timerTable
	stimulusAt time.Time
	countdown  int
	advancing  bool
	last       *RoundResult
	closed     bool
}

// NewController validates the level table and rules and returns an idle controller.
func NewController(levels []model.Level, params Params, clock Clock, delays *DelaySource) (*Controller, error) {
	if err := level.Validate(levels); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game rules: %w", err)
	}
	if clock == nil {
		clock = SystemClock()
	}
	if delays == nil {
		delays = NewDelaySource(0)
	}
	c := &Controller{
		levels: append([]model.Level(nil), levels...),
		params: params,
		clock:  clock,
		delays: delays,
		timers: newTimerTable(),
	}
	c.stats = newSessionStats(params.Lives)
	return c, nil
}

// State returns the current round state.
func (c *Controller) State() RoundState { return c.state }

// Stats returns a snapshot of the session stats.
func (c *Controller) Stats() SessionStats { return c.stats }

// Levels returns the number of levels.
func (c *Controller) Levels() int { return len(c.levels) }

// Level returns the level currently being played.
func (c *Controller) Level() model.Level { return c.levels[c.stats.Level] }

// Params returns the rules the controller was built with.
func (c *Controller) Params() Params { return c.params }

// Countdown returns the remaining ticks of the active countdown, 0 if none.
func (c *Controller) Countdown() int { return c.countdown }

// LastResult returns the most recent scored click, if any.
func (c *Controller) LastResult() *RoundResult { return c.last }

// Won reports whether the game ended by completing the last level.
func (c *Controller) Won() bool { return c.state == StateGameOver && c.stats.Lives > 0 }

// Closed reports whether the controller was torn down.
func (c *Controller) Closed() bool { return c.closed }

// Start begins the first round from idle.
func (c *Controller) Start() Effects { return c.Handle(Event{Kind: EventStart}) }

// Input registers a click.
func (c *Controller) Input() Effects { return c.Handle(Event{Kind: EventInput}) }

// Fire delivers an elapsed timer.
func (c *Controller) Fire(t Timer) Effects { return c.Handle(Event{Kind: EventFire, Timer: t}) }

// Reset cancels all timers and restores default stats in idle.
func (c *Controller) Reset() Effects { return c.Handle(Event{Kind: EventReset}) }

// Close cancels all timers. Later events are ignored.
func (c *Controller) Close() {
	c.timers.cancelAll()
	c.stats = newSessionStats(c.params.Lives)
	c.countdown = 0
	c.advancing = false
	c.last = nil
	c.closed = true
}

// Handle is the single transition function.
func (c *Controller) Handle(ev Event) Effects {
	if c.closed {
		return Effects{}
	}
	switch ev.Kind {
	case EventStart:
		if c.state != StateIdle {
			return Effects{}
		}
		return c.beginWaiting()
	case EventInput:
		return c.handleInput()
	case EventFire:
		if !c.timers.consume(ev.Timer) {
			return Effects{}
		}
		return c.handleFire(ev.Timer.Purpose)
	case EventReset:
		c.timers.cancelAll()
		c.state = StateIdle
		c.stats = newSessionStats(c.params.Lives)
		c.stimulusAt = time.Time{}
		c.countdown = 0
		c.advancing = false
		c.last = nil
		return Effects{}
	default:
		return Effects{}
	}
}

func (c *Controller) handleInput() Effects {
	switch c.state {
	case StateWaiting:
		c.timers.cancel(TimerStimulus)
		c.state = StateClickedEarly
		return c.startPenalty(c.params.EarlyPenaltyTicks)
	case StateReady:
		now := c.clock.Now()
		return c.score(now, now.Sub(c.stimulusAt))
	default:
		return Effects{}
	}
}

func (c *Controller) handleFire(p TimerPurpose) Effects {
	switch p {
	case TimerStimulus:
		if c.state != StateWaiting {
			return Effects{}
		}
		c.stimulusAt = c.clock.Now()
		c.state = StateReady
		return Effects{}
	case TimerPenalty:
		if c.state != StateClickedEarly && c.state != StateClickedLate {
			return Effects{}
		}
		c.countdown--
		if c.countdown > 0 {
			return Effects{Timers: []Timer{c.timers.arm(TimerPenalty, c.params.Tick)}}
		}
		return c.beginWaiting()
	case TimerAdvance:
		if c.state != StateLevelComplete {
			return Effects{}
		}
		if !c.advancing {
			c.advancing = true
			c.countdown = c.params.AdvanceTicks
			return Effects{Timers: []Timer{c.timers.arm(TimerAdvance, c.params.Tick)}}
		}
		c.countdown--
		if c.countdown > 0 {
			return Effects{Timers: []Timer{c.timers.arm(TimerAdvance, c.params.Tick)}}
		}
		c.advancing = false
		if c.stats.Level >= len(c.levels)-1 {
			c.state = StateGameOver
			return Effects{}
		}
		c.stats.Level++
		c.stats.LevelScore = 0
		return c.beginWaiting()
	default:
		return Effects{}
	}
}

// beginWaiting arms the stimulus for a new round on the current level.
func (c *Controller) beginWaiting() Effects {
	c.countdown = 0
	c.state = StateWaiting
	c.stimulusAt = time.Time{}
	return Effects{Timers: []Timer{c.timers.arm(TimerStimulus, c.delays.Draw(c.Level()))}}
}

// startPenalty starts a countdown unless one is already running.
func (c *Controller) startPenalty(ticks int) Effects {
	if c.timers.running(TimerPenalty) {
		return Effects{}
	}
	c.countdown = ticks
	return Effects{Timers: []Timer{c.timers.arm(TimerPenalty, c.params.Tick)}}
}

func (c *Controller) score(at time.Time, reaction time.Duration) Effects {
	if reaction < 0 {
		reaction = 0
	}
	lvl := c.Level()
	rt := reaction
	c.stats.LastReaction = &rt
	c.stats.Rounds++
	c.stats.ReactionSum += reaction

	result := &RoundResult{
		Level:     c.stats.Level + 1,
		LevelID:   lvl.ID,
		Reaction:  reaction,
		Threshold: Threshold(reaction, lvl.Target, c.params),
		Success:   Succeeded(reaction, lvl.Target, c.params),
		At:        at,
	}

	var effects Effects
	if result.Success {
		result.Points = Points(lvl, reaction)
		c.stats.LevelScore += result.Points
		c.stats.TotalScore += result.Points
		if c.stats.BestReaction == nil || reaction < *c.stats.BestReaction {
			best := reaction
			c.stats.BestReaction = &best
		}
		c.state = StateLevelComplete
		c.advancing = false
		c.countdown = 0
		effects.Timers = []Timer{c.timers.arm(TimerAdvance, c.params.AdvanceDelay)}
	} else {
		if c.stats.Lives > 0 {
			c.stats.Lives--
		}
		if c.stats.Lives == 0 {
			c.timers.cancelAll()
			c.countdown = 0
			c.state = StateGameOver
		} else {
			c.state = StateClickedLate
			effects = c.startPenalty(c.params.FailPenaltyTicks)
		}
	}
	result.TotalScore = c.stats.TotalScore
	result.Lives = c.stats.Lives
	c.last = result
	effects.Result = result
	return effects
}
