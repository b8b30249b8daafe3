package game

import (
	"testing"
	"time"

	"github.com/verte-zerg/tuireact/internal/level"
	"github.com/verte-zerg/tuireact/internal/model"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

var exampleLevel = model.Level{
	ID:      "example",
	Name:    "Example",
	MinWait: 2000 * time.Millisecond,
	MaxWait: 4000 * time.Millisecond,
	Target:  800 * time.Millisecond,
	Points:  20,
}

func newTestController(t *testing.T, levels []model.Level) (*Controller, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c, err := NewController(levels, DefaultParams(), clk, NewDelaySource(42))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, clk
}

func singleTimer(t *testing.T, eff Effects, purpose TimerPurpose) Timer {
	t.Helper()
	if len(eff.Timers) != 1 {
		t.Fatalf("expected 1 timer, got %d", len(eff.Timers))
	}
	if eff.Timers[0].Purpose != purpose {
		t.Fatalf("expected %s timer, got %s", purpose, eff.Timers[0].Purpose)
	}
	return eff.Timers[0]
}

// fireStimulus waits out the armed stimulus timer.
func fireStimulus(t *testing.T, c *Controller, clk *fakeClock, eff Effects) {
	t.Helper()
	timer := singleTimer(t, eff, TimerStimulus)
	clk.advance(timer.After)
	c.Fire(timer)
	if c.State() != StateReady {
		t.Fatalf("expected readyForInput, got %s", c.State())
	}
}

func clickAfter(c *Controller, clk *fakeClock, reaction time.Duration) Effects {
	clk.advance(reaction)
	return c.Input()
}

// drainCountdown fires a countdown chain until no further timer is requested.
func drainCountdown(t *testing.T, c *Controller, clk *fakeClock, eff Effects, purpose TimerPurpose) Effects {
	t.Helper()
	for i := 0; i < 20; i++ {
		if len(eff.Timers) == 0 || eff.Timers[0].Purpose != purpose {
			return eff
		}
		timer := eff.Timers[0]
		clk.advance(timer.After)
		eff = c.Fire(timer)
	}
	t.Fatalf("countdown did not finish")
	return eff
}

func TestStimulusDelayWithinLevelBounds(t *testing.T) {
	for _, lvl := range level.Default() {
		c, _ := newTestController(t, []model.Level{lvl})
		for i := 0; i < 200; i++ {
			c.Reset()
			eff := c.Start()
			timer := singleTimer(t, eff, TimerStimulus)
			if timer.After < lvl.MinWait || timer.After > lvl.MaxWait {
				t.Fatalf("%s: delay %v outside [%v, %v]", lvl.ID, timer.After, lvl.MinWait, lvl.MaxWait)
			}
		}
	}
}

func TestStartOnlyFromIdle(t *testing.T) {
	c, _ := newTestController(t, []model.Level{exampleLevel})
	if c.State() != StateIdle {
		t.Fatalf("expected idle, got %s", c.State())
	}
	c.Start()
	if eff := c.Start(); len(eff.Timers) != 0 {
		t.Fatalf("expected second start to be ignored")
	}
}

func TestEarlyClickPenaltyReturnsToWaiting(t *testing.T) {
	c, clk := newTestController(t, []model.Level{exampleLevel})
	start := c.Start()
	stale := singleTimer(t, start, TimerStimulus)

	eff := clickAfter(c, clk, 500*time.Millisecond)
	if c.State() != StateClickedEarly {
		t.Fatalf("expected clickedEarly, got %s", c.State())
	}
	if eff.Result != nil {
		t.Fatalf("early click must not be scored")
	}
	if c.Countdown() != 3 {
		t.Fatalf("expected 3 tick countdown, got %d", c.Countdown())
	}

	clk.advance(stale.After)
	if extra := c.Fire(stale); len(extra.Timers) != 0 || c.State() != StateClickedEarly {
		t.Fatalf("cancelled stimulus timer must be ignored")
	}
	if again := c.Input(); len(again.Timers) != 0 {
		t.Fatalf("penalty countdown must not be re-armed")
	}

	eff = drainCountdown(t, c, clk, eff, TimerPenalty)
	if c.State() != StateWaiting {
		t.Fatalf("expected waitingForStimulus after penalty, got %s", c.State())
	}
	singleTimer(t, eff, TimerStimulus)
	if st := c.Stats(); st.TotalScore != 0 || st.Lives != 3 || st.Rounds != 0 {
		t.Fatalf("early click changed stats: %+v", st)
	}
}

func TestSuccessExampleScoresFifty(t *testing.T) {
	c, clk := newTestController(t, []model.Level{exampleLevel, level.Default()[1]})
	fireStimulus(t, c, clk, c.Start())

	eff := clickAfter(c, clk, 500*time.Millisecond)
	if c.State() != StateLevelComplete {
		t.Fatalf("expected levelComplete, got %s", c.State())
	}
	if eff.Result == nil || !eff.Result.Success || eff.Result.Points != 50 {
		t.Fatalf("expected success worth 50 points, got %+v", eff.Result)
	}
	st := c.Stats()
	if st.TotalScore != 50 || st.LevelScore != 50 {
		t.Fatalf("unexpected scores: %+v", st)
	}
	if st.BestReaction == nil || *st.BestReaction != 500*time.Millisecond {
		t.Fatalf("expected best reaction 500ms, got %v", st.BestReaction)
	}
	singleTimer(t, eff, TimerAdvance)
}

// stepClock moves forward on every read.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (s *stepClock) Now() time.Time {
	s.now = s.now.Add(s.step)
	return s.now
}

func TestResultTimeMatchesMeasuredClick(t *testing.T) {
	clk := &stepClock{now: time.Unix(1_700_000_000, 0), step: 7 * time.Millisecond}
	c, err := NewController([]model.Level{exampleLevel}, DefaultParams(), clk, NewDelaySource(1))
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	c.Fire(singleTimer(t, c.Start(), TimerStimulus))
	if c.State() != StateReady {
		t.Fatalf("expected readyForInput, got %s", c.State())
	}

	eff := c.Input()
	if eff.Result == nil {
		t.Fatalf("expected a scored click")
	}
	if want := c.stimulusAt.Add(eff.Result.Reaction); !eff.Result.At.Equal(want) {
		t.Fatalf("result time %v drifted from click time %v", eff.Result.At, want)
	}
}

func TestFailureExampleCostsLife(t *testing.T) {
	c, clk := newTestController(t, []model.Level{exampleLevel})
	fireStimulus(t, c, clk, c.Start())

	eff := clickAfter(c, clk, 900*time.Millisecond)
	if eff.Result == nil || eff.Result.Success {
		t.Fatalf("expected failure, got %+v", eff.Result)
	}
	if eff.Result.Threshold != 850*time.Millisecond {
		t.Fatalf("expected 850ms threshold, got %v", eff.Result.Threshold)
	}
	if c.State() != StateClickedLate {
		t.Fatalf("expected clickedLate, got %s", c.State())
	}
	if c.Stats().Lives != 2 {
		t.Fatalf("expected 2 lives, got %d", c.Stats().Lives)
	}
	if c.Countdown() != 5 {
		t.Fatalf("expected 5 tick countdown, got %d", c.Countdown())
	}
	eff = drainCountdown(t, c, clk, eff, TimerPenalty)
	if c.State() != StateWaiting || c.Stats().Level != 0 {
		t.Fatalf("expected same level waiting, got %s level %d", c.State(), c.Stats().Level)
	}
	singleTimer(t, eff, TimerStimulus)
}

func TestGraceGuardExample(t *testing.T) {
	c, clk := newTestController(t, []model.Level{exampleLevel})
	fireStimulus(t, c, clk, c.Start())

	eff := clickAfter(c, clk, 100*time.Millisecond)
	if eff.Result == nil || !eff.Result.Success {
		t.Fatalf("expected grace success, got %+v", eff.Result)
	}
	if eff.Result.Threshold != 1050*time.Millisecond {
		t.Fatalf("expected 1050ms threshold, got %v", eff.Result.Threshold)
	}
	if eff.Result.Points != 20+70 {
		t.Fatalf("expected 90 points, got %d", eff.Result.Points)
	}
}

func TestThresholdBoundaryInclusive(t *testing.T) {
	p := DefaultParams()
	target := 800 * time.Millisecond
	if !Succeeded(850*time.Millisecond, target, p) {
		t.Fatalf("reaction equal to threshold must succeed")
	}
	if Succeeded(850*time.Millisecond+time.Nanosecond, target, p) {
		t.Fatalf("reaction above threshold must fail")
	}
	if !Succeeded(149*time.Millisecond, 10*time.Millisecond, p) {
		t.Fatalf("reaction under grace cutoff uses inflated threshold")
	}
	if Succeeded(150*time.Millisecond, 10*time.Millisecond, p) {
		t.Fatalf("reaction at grace cutoff uses the normal threshold")
	}
}

func TestPointsNeverBelowBase(t *testing.T) {
	if got := Points(exampleLevel, 849*time.Millisecond); got != 20 {
		t.Fatalf("expected base points for a slow success, got %d", got)
	}
	if got := Points(exampleLevel, 795*time.Millisecond); got != 20 {
		t.Fatalf("expected partial 10ms step to floor, got %d", got)
	}
}

func TestLivesReachZeroEndsGame(t *testing.T) {
	c, clk := newTestController(t, []model.Level{exampleLevel})
	eff := c.Start()
	for i := 0; i < 3; i++ {
		fireStimulus(t, c, clk, eff)
		eff = clickAfter(c, clk, 2*time.Second)
		if want := 2 - i; c.Stats().Lives != want {
			t.Fatalf("expected %d lives, got %d", want, c.Stats().Lives)
		}
		if c.Stats().Lives > 0 {
			eff = drainCountdown(t, c, clk, eff, TimerPenalty)
		}
	}
	if c.State() != StateGameOver || c.Won() {
		t.Fatalf("expected lost game over, got %s", c.State())
	}
	if len(eff.Timers) != 0 {
		t.Fatalf("game over must not arm timers")
	}
	if again := c.Input(); again.Result != nil || c.Stats().Lives != 0 {
		t.Fatalf("input in game over must be ignored")
	}
}

func TestLastLevelCompletionEndsGame(t *testing.T) {
	second := model.Level{ID: "second", Name: "Second", MinWait: time.Second, MaxWait: time.Second, Target: 500 * time.Millisecond, Points: 10}
	c, clk := newTestController(t, []model.Level{exampleLevel, second})

	fireStimulus(t, c, clk, c.Start())
	eff := clickAfter(c, clk, 300*time.Millisecond)
	if again := c.Input(); again.Result != nil {
		t.Fatalf("second click in levelComplete must be ignored")
	}
	eff = drainCountdown(t, c, clk, eff, TimerAdvance)
	if c.State() != StateWaiting || c.Stats().Level != 1 {
		t.Fatalf("expected next level waiting, got %s level %d", c.State(), c.Stats().Level)
	}
	if c.Stats().LevelScore != 0 {
		t.Fatalf("expected level score reset on advance")
	}

	fireStimulus(t, c, clk, eff)
	eff = clickAfter(c, clk, 200*time.Millisecond)
	drainCountdown(t, c, clk, eff, TimerAdvance)
	if c.State() != StateGameOver || !c.Won() {
		t.Fatalf("expected won game over, got %s", c.State())
	}
	if c.Stats().TotalScore != 70+40 {
		t.Fatalf("unexpected total score %d", c.Stats().TotalScore)
	}
}

func TestAdvanceCountdownTicks(t *testing.T) {
	c, clk := newTestController(t, []model.Level{exampleLevel, exampleLevelCopy("next")})
	fireStimulus(t, c, clk, c.Start())
	eff := clickAfter(c, clk, 400*time.Millisecond)

	display := singleTimer(t, eff, TimerAdvance)
	if display.After != 2*time.Second {
		t.Fatalf("expected 2s display delay, got %v", display.After)
	}
	clk.advance(display.After)
	eff = c.Fire(display)
	if c.Countdown() != 3 {
		t.Fatalf("expected 3 tick countdown, got %d", c.Countdown())
	}
	for want := 2; want >= 1; want-- {
		tick := singleTimer(t, eff, TimerAdvance)
		eff = c.Fire(tick)
		if c.Countdown() != want {
			t.Fatalf("expected countdown %d, got %d", want, c.Countdown())
		}
	}
}

func TestScoreMonotonicAndResetRestoresDefaults(t *testing.T) {
	c, clk := newTestController(t, []model.Level{exampleLevel, exampleLevelCopy("b"), exampleLevelCopy("c")})
	eff := c.Start()
	prev := 0
	reactions := []time.Duration{500 * time.Millisecond, 2 * time.Second, 700 * time.Millisecond}
	for _, rt := range reactions {
		fireStimulus(t, c, clk, eff)
		eff = clickAfter(c, clk, rt)
		if c.Stats().TotalScore < prev {
			t.Fatalf("score decreased from %d to %d", prev, c.Stats().TotalScore)
		}
		prev = c.Stats().TotalScore
		eff = drainCountdown(t, c, clk, eff, TimerPenalty)
		eff = drainCountdown(t, c, clk, eff, TimerAdvance)
	}
	avg, ok := c.Stats().AverageReaction()
	if !ok || avg != (500+2000+700)*time.Millisecond/3 {
		t.Fatalf("unexpected average %v", avg)
	}

	pending := eff
	c.Reset()
	if c.State() != StateIdle {
		t.Fatalf("expected idle after reset, got %s", c.State())
	}
	st := c.Stats()
	if st.TotalScore != 0 || st.Lives != 3 || st.Level != 0 || st.BestReaction != nil || st.LastReaction != nil {
		t.Fatalf("reset did not restore defaults: %+v", st)
	}
	for _, timer := range pending.Timers {
		if extra := c.Fire(timer); len(extra.Timers) != 0 || c.State() != StateIdle {
			t.Fatalf("timers armed before reset must be ignored")
		}
	}
}

func TestCloseCancelsTimers(t *testing.T) {
	c, clk := newTestController(t, []model.Level{exampleLevel})
	eff := c.Start()
	c.Close()
	timer := singleTimer(t, eff, TimerStimulus)
	clk.advance(timer.After)
	if out := c.Fire(timer); len(out.Timers) != 0 || c.State() == StateReady {
		t.Fatalf("closed controller must ignore timers")
	}
	if out := c.Start(); len(out.Timers) != 0 {
		t.Fatalf("closed controller must ignore start")
	}
	if !c.Closed() {
		t.Fatalf("expected closed")
	}
}

func TestNewControllerRejectsInvalidInput(t *testing.T) {
	if _, err := NewController(nil, DefaultParams(), nil, nil); err == nil {
		t.Fatalf("expected error for empty level table")
	}
	p := DefaultParams()
	p.Lives = 0
	if _, err := NewController(level.Default(), p, nil, nil); err == nil {
		t.Fatalf("expected error for zero lives")
	}
}

func exampleLevelCopy(id string) model.Level {
	lvl := exampleLevel
	lvl.ID = id
	return lvl
}
