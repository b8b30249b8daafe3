package game

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuireact/internal/model"
)

// DelaySource draws pre-stimulus delays.
type DelaySource struct {
	rnd *rand.Rand
}

// NewDelaySource returns a DelaySource. A zero seed uses the current time.
func NewDelaySource(seed int64) *DelaySource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DelaySource{rnd: rand.New(rand.NewSource(seed))}
}

// Draw picks a delay uniformly from [MinWait, MaxWait] at millisecond granularity.
func (d *DelaySource) Draw(lvl model.Level) time.Duration {
	spanMs := (lvl.MaxWait - lvl.MinWait).Milliseconds()
	if spanMs <= 0 {
		return lvl.MinWait
	}
	return lvl.MinWait + time.Duration(d.rnd.Int63n(spanMs+1))*time.Millisecond
}
