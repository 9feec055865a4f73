package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danmuck/multishell/internal/testutil/testlog"
	"go.uber.org/goleak"
)

type counter struct {
	Base
	ticks   int
	millis  int
	tens    int
	tenths  []int
	seconds int
	onTick  func()
}

func (c *counter) Tick() {
	c.ticks++
	if c.onTick != nil {
		c.onTick()
	}
}
func (c *counter) EveryMilli()          { c.millis++ }
func (c *counter) Every10ms()           { c.tens++ }
func (c *counter) EveryTenth(tenth int) { c.tenths = append(c.tenths, tenth) }
func (c *counter) EverySecond()         { c.seconds++ }

func TestCadenceOverSimulatedSecond(t *testing.T) {
	testlog.Start(t)
	c := &counter{}
	tm := New(c, 0)
	start := time.Unix(1700000000, 0)
	for ms := 0; ms <= 1000; ms++ {
		tm.Step(start.Add(time.Duration(ms) * time.Millisecond))
	}
	if c.ticks != 1001 || c.millis != 1000 || c.tens != 100 || c.seconds != 1 {
		t.Fatalf("ticks=%d millis=%d tens=%d seconds=%d", c.ticks, c.millis, c.tens, c.seconds)
	}
	if len(c.tenths) != 10 {
		t.Fatalf("tenths got=%v", c.tenths)
	}
	for i, tenth := range c.tenths {
		if tenth != i {
			t.Fatalf("tenths got=%v", c.tenths)
		}
	}
}

func TestStepCatchesUp(t *testing.T) {
	testlog.Start(t)
	c := &counter{}
	tm := New(c, 0)
	start := time.Unix(1700000000, 0)
	tm.Step(start)
	tm.Step(start.Add(25*time.Millisecond + 500*time.Microsecond))
	if c.millis != 25 || c.tens != 2 {
		t.Fatalf("millis=%d tens=%d", c.millis, c.tens)
	}
	tm.Step(start.Add(26 * time.Millisecond))
	if c.millis != 26 {
		t.Fatalf("fractional millisecond lost: millis=%d", c.millis)
	}
	tm.Step(start.Add(time.Hour))
	if c.millis != 26+maxCatchUp {
		t.Fatalf("catch-up not bounded: millis=%d", c.millis)
	}
}

func TestRunStopsFromCallback(t *testing.T) {
	defer goleak.VerifyNone(t)
	testlog.Start(t)
	c := &counter{}
	tm := New(c, time.Millisecond)
	c.onTick = func() {
		if c.ticks == 5 {
			tm.Stop()
		}
	}
	if err := tm.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.ticks < 5 {
		t.Fatalf("ticks got=%d want>=5", c.ticks)
	}
	tm.Stop()
}

func TestRunEndsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)
	testlog.Start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := New(Base{}, time.Millisecond).Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err got=%v want=%v", err, context.DeadlineExceeded)
	}
}
