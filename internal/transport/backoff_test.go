package transport

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/danmuck/multishell/internal/testutil/testlog"
)

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultBackoff()
	cfg.Jitter = false
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 250 * time.Millisecond},
		{2, 500 * time.Millisecond},
		{3, time.Second},
		{6, 5 * time.Second},
	}
	for _, tc := range cases {
		if got := NextBackoffDelay(cfg, tc.attempt, nil); got != tc.want {
			t.Fatalf("attempt%d got=%v want=%v", tc.attempt, got, tc.want)
		}
	}
}

func TestNextBackoffDelayJitterRange(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultBackoff()
	rng := rand.New(rand.NewSource(7))
	got := NextBackoffDelay(cfg, 2, rng)
	if got < 250*time.Millisecond || got > 750*time.Millisecond {
		t.Fatalf("jitter out of range: %v", got)
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{InitialDelay: time.Millisecond, Multiplier: 1}
	calls := 0
	err := Retry(context.Background(), cfg, 5, func() error {
		calls++
		if calls < 3 {
			return errors.New("busy")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("retry got err=%v calls=%d", err, calls)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{InitialDelay: time.Millisecond, Multiplier: 1}
	want := errors.New("missing")
	calls := 0
	err := Retry(context.Background(), cfg, 2, func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) || calls != 2 {
		t.Fatalf("retry got err=%v calls=%d", err, calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := BackoffConfig{InitialDelay: time.Hour, Multiplier: 1}
	err := Retry(ctx, cfg, 3, func() error { return errors.New("busy") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err got=%v want=%v", err, context.Canceled)
	}
}

func TestResolveDevice(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"usb":          "/dev/ttyUSB0",
		"serial":       "/dev/serial0",
		"arduino":      "/dev/ttyACM0",
		"/dev/ttyAMA0": "/dev/ttyAMA0",
	}
	for in, want := range cases {
		got, err := ResolveDevice(in)
		if err != nil || got != want {
			t.Fatalf("resolve %q got=%q err=%v want=%q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "/dev/", "ttyUSB0", "modem"} {
		if _, err := ResolveDevice(bad); !errors.Is(err, ErrUnknownDevice) {
			t.Fatalf("resolve %q err=%v want=%v", bad, err, ErrUnknownDevice)
		}
	}
}
