package shell

import (
	"strings"
	"testing"

	"github.com/danmuck/multishell/internal/testutil/testlog"
)

func TestOptionListMarksSelection(t *testing.T) {
	testlog.Start(t)
	s := newSession(t)
	s.sh.Update()
	opts := NewOptionList("Speed", "0 Slow", "1 Fast")
	opts.Select(1)
	opts.Select(5)
	if opts.Current() == nil || opts.Current().Description != "1 Fast" {
		t.Fatalf("current got=%+v", opts.Current())
	}
	s.sh.List(opts)
	want := "Speed\n   0 Slow\n * 1 Fast\n"
	if got := s.run(""); got != want {
		t.Fatalf("menu got=%q want=%q", got, want)
	}
}

func TestPlotUnknownOptionPrintsMenu(t *testing.T) {
	testlog.Start(t)
	s := newSession(t)
	s.sh.Update()
	p := NewPlot()
	if !p.Demo(7, s.sh) {
		t.Fatalf("menu dispatch failed")
	}
	want := "Plot Demo\n   0 Single line\n   1 Two lines\n   2 Oscillation\n"
	if got := s.run(""); got != want {
		t.Fatalf("menu got=%q want=%q", got, want)
	}
}

func TestPlotSingleLine(t *testing.T) {
	testlog.Start(t)
	s := newSession(t)
	s.sh.Update()
	p := NewPlot()
	if !p.Demo(0, s.sh) {
		t.Fatalf("plot dispatch failed")
	}
	if p.Demo(0, s.sh) {
		t.Fatalf("second plot accepted while the first is queued")
	}
	var out strings.Builder
	for i := 0; i < 500 && !s.sh.Queue().Idle(); i++ {
		s.sh.Update()
		out.Write(s.loop.Output())
	}
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	// values -30..30 at scale 3 give rows 10 down to -10
	if len(lines) != 21 {
		t.Fatalf("rows got=%d want=21", len(lines))
	}
	for i, line := range lines {
		if len(line) != 4+61 {
			t.Fatalf("row %d width got=%d want=65: %q", i, len(line), line)
		}
	}
	if !strings.HasPrefix(lines[0], "  30") || !strings.HasPrefix(lines[10], "   0+") || !strings.HasPrefix(lines[20], " -30") {
		t.Fatalf("labels got=%q %q %q", lines[0][:5], lines[10][:5], lines[20][:5])
	}
	if !strings.HasSuffix(lines[0], "a") || lines[20][4] != 'a' {
		t.Fatalf("series not plotted: %q / %q", lines[0], lines[20])
	}
	if free := s.repo.Snapshot()[6].Free; free != 4 {
		t.Fatalf("scratch free got=%d want=4", free)
	}
	if !p.Demo(2, s.sh) {
		t.Fatalf("plot task not released")
	}
}
