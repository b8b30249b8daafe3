package game

import "time"

// TimerPurpose names the job a timer does. At most one timer per purpose is live.
type TimerPurpose int

const (
	// TimerStimulus fires when the stimulus should appear.
	TimerStimulus TimerPurpose = iota
	// TimerPenalty ticks a penalty countdown after an early or failed click.
	TimerPenalty
	// TimerAdvance drives the success display and the next-level countdown.
	TimerAdvance
)

func (p TimerPurpose) String() string {
	switch p {
	case TimerStimulus:
		return "stimulus"
	case TimerPenalty:
		return "penalty"
	case TimerAdvance:
		return "advance"
	default:
		return "unknown"
	}
}

// Timer is a request to deliver a fire event after a delay. The caller
// schedules it and hands it back to Controller.Fire when it elapses.
type Timer struct {
	Purpose TimerPurpose
	Token   uint64
	After   time.Duration
}

// timerTable tracks the live token per purpose. Arming a purpose replaces
// its token, so a previously scheduled timer becomes stale.
type timerTable struct {
	next   uint64
	active map[TimerPurpose]uint64
}

func newTimerTable() timerTable {
	return timerTable{active: map[TimerPurpose]uint64{}}
}

func (t *timerTable) arm(p TimerPurpose, after time.Duration) Timer {
	t.next++
	t.active[p] = t.next
	return Timer{Purpose: p, Token: t.next, After: after}
}

func (t *timerTable) running(p TimerPurpose) bool {
	_, ok := t.active[p]
	return ok
}

func (t *timerTable) cancel(p TimerPurpose) {
	delete(t.active, p)
}

func (t *timerTable) cancelAll() {
	for p := range t.active {
		delete(t.active, p)
	}
}

// consume retires the timer if it is the live one for its purpose.
func (t *timerTable) consume(timer Timer) bool {
	token, ok := t.active[timer.Purpose]
	if !ok || token != timer.Token {
		return false
	}
	delete(t.active, timer.Purpose)
	return true
}
