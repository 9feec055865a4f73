// Package timer drives the engine: a fixed-rate tick plus millisecond,
// 10 ms, tenth-of-a-second and one-second callbacks derived from the
// monotonic clock.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultPeriod is the tick period.
const DefaultPeriod = time.Millisecond

// maxCatchUp bounds how many missed milliseconds one step replays; beyond it
// the clock is resynchronised and the gap is dropped.
const maxCatchUp = 1000

// Callbacks receives timer events on the Run goroutine.
type Callbacks interface {
	Tick()
	EveryMilli()
	Every10ms()
	// EveryTenth receives 0..9, the tenth of the current second.
	EveryTenth(tenth int)
	EverySecond()
}

// Base implements Callbacks with no-ops; embed it and override what is
// needed.
type Base struct{}

func (Base) Tick()          {}
func (Base) EveryMilli()    {}
func (Base) Every10ms()     {}
func (Base) EveryTenth(int) {}
func (Base) EverySecond()   {}

type Timer struct {
	cb     Callbacks
	period time.Duration

	stop     chan struct{}
	stopOnce sync.Once

	started bool
	last    time.Time
	countMs int
	count10 int
	tenths  int
}

// New returns a timer ticking every period; non-positive periods use
// DefaultPeriod.
func New(cb Callbacks, period time.Duration) *Timer {
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Timer{cb: cb, period: period, stop: make(chan struct{})}
}

// Stop ends Run. It is safe to call from a callback or another goroutine.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Run ticks until Stop (nil) or until ctx ends (ctx.Err()).
func (t *Timer) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	log.Debug().Dur("period", t.period).Msg("timer.Timer.Run")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stop:
			return nil
		case now := <-ticker.C:
			t.Step(now)
		}
	}
}

// Step runs one tick at now and replays every whole millisecond elapsed
// since the previous step.
func (t *Timer) Step(now time.Time) {
	t.cb.Tick()
	if !t.started {
		t.started = true
		t.last = now
		return
	}
	elapsed := int(now.Sub(t.last) / time.Millisecond)
	if elapsed > maxCatchUp {
		log.Warn().Int("missed_ms", elapsed-maxCatchUp).Msg("timer.Timer fell behind")
		t.last = now.Add(-maxCatchUp * time.Millisecond)
		elapsed = maxCatchUp
	}
	for i := 0; i < elapsed; i++ {
		t.last = t.last.Add(time.Millisecond)
		t.milli()
	}
}

func (t *Timer) milli() {
	t.cb.EveryMilli()
	if t.countMs++; t.countMs < 10 {
		return
	}
	t.countMs = 0
	t.cb.Every10ms()
	if t.count10++; t.count10 < 10 {
		return
	}
	t.count10 = 0
	t.cb.EveryTenth(t.tenths)
	if t.tenths++; t.tenths < 10 {
		return
	}
	t.tenths = 0
	t.cb.EverySecond()
}
