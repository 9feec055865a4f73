package console

import (
	"context"
	"testing"
	"time"

	"github.com/danmuck/multishell/internal/testutil/testlog"
	"github.com/danmuck/multishell/internal/transport"
	"go.uber.org/goleak"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		commands []string
		want     string
	}{
		{name: "none", want: ""},
		{name: "one", commands: []string{"help"}, want: ";help;RSVP,"},
		{name: "several", commands: []string{"plot 1", "eh"}, want: ";plot 1;eh;RSVP,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildCommand(tt.commands); got != tt.want {
				t.Fatalf("command got=%q want=%q", got, tt.want)
			}
		})
	}
}

func beginBoth(t *testing.T, p *Passthrough) {
	t.Helper()
	if _, err := p.Terminal().Begin(); err != nil {
		t.Fatalf("terminal begin: %v", err)
	}
	if _, err := p.Device().Begin(); err != nil {
		t.Fatalf("device begin: %v", err)
	}
}

func TestPassthroughInjectsCommandBeforeTerminalInput(t *testing.T) {
	testlog.Start(t)
	term := transport.NewLoopback(256)
	dev := transport.NewLoopback(256)
	p := NewPassthrough(term, dev, ";help;RSVP,")
	beginBoth(t, p)

	term.FeedString("x")
	p.EveryMilli()
	if got := string(dev.Output()); got != ";help;RSVP," {
		t.Fatalf("first tick got=%q", got)
	}
	if p.Pending() != 0 {
		t.Fatalf("pending got=%d want=0", p.Pending())
	}
	p.EveryMilli()
	if got := string(dev.Output()); got != "x" {
		t.Fatalf("terminal byte got=%q want=%q", got, "x")
	}
}

func TestPassthroughRespectsDeviceWriteBudget(t *testing.T) {
	testlog.Start(t)
	term := transport.NewLoopback(256)
	dev := transport.NewLoopback(256)
	dev.SetWriteCapacity(4)
	p := NewPassthrough(term, dev, ";abcdef")
	beginBoth(t, p)

	p.EveryMilli()
	if got := string(dev.Output()); got != ";abc" {
		t.Fatalf("first tick got=%q", got)
	}
	p.EveryMilli()
	if got := string(dev.Output()); got != "def" {
		t.Fatalf("second tick got=%q", got)
	}
}

func TestPassthroughCopiesDeviceOutput(t *testing.T) {
	testlog.Start(t)
	term := transport.NewLoopback(256)
	dev := transport.NewLoopback(256)
	p := NewPassthrough(term, dev, "")
	beginBoth(t, p)

	dev.FeedString("hello\r\n")
	p.EveryMilli()
	if got := string(term.Output()); got != "hello\n" {
		t.Fatalf("terminal got=%q want=%q", got, "hello\n")
	}
}

func TestPassthroughExitsWhenDeviceQuietAfterACK(t *testing.T) {
	testlog.Start(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	term := transport.NewLoopback(256)
	dev := transport.NewLoopback(256)
	p := NewPassthrough(term, dev, BuildCommand([]string{"help"}))
	dev.FeedString("ok\n\x06")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("run got=%v want=nil", err)
	}
	if got := string(term.Output()); got != "ok\n\x06" {
		t.Fatalf("terminal got=%q", got)
	}
	if got := string(dev.Output()); got != ";help;RSVP," {
		t.Fatalf("device got=%q", got)
	}
}

func TestPassthroughEndFromTerminalStopsRun(t *testing.T) {
	testlog.Start(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	term := transport.NewLoopback(64)
	dev := transport.NewLoopback(64)
	p := NewPassthrough(term, dev, "")
	term.FeedString("\x04")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("run got=%v want=nil", err)
	}
}

func TestPassthroughDisconnectedDeviceHoldsInjection(t *testing.T) {
	testlog.Start(t)
	term := transport.NewLoopback(64)
	dev := transport.NewLoopback(64)
	dev.SetConnected(false)
	p := NewPassthrough(term, dev, ";eh;RSVP,")
	beginBoth(t, p)

	p.EveryMilli()
	if p.Pending() != len(";eh;RSVP,") {
		t.Fatalf("pending got=%d", p.Pending())
	}
	dev.SetConnected(true)
	p.EveryMilli()
	if p.Pending() != 0 {
		t.Fatalf("pending after reconnect got=%d want=0", p.Pending())
	}
}
