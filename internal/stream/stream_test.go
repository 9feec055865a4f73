package stream_test

import (
	"testing"

	"github.com/danmuck/multishell/internal/stream"
	"github.com/danmuck/multishell/internal/testutil/testlog"
	"github.com/danmuck/multishell/internal/transport"
)

type notes struct {
	got []string
}

func (n *notes) StreamNotification(_ *stream.Stream, message string) {
	n.got = append(n.got, message)
}

func TestWriteTranslatesAndDrops(t *testing.T) {
	testlog.Start(t)
	l := transport.NewLoopback(64)
	s := stream.New(l, 'v', 'T')
	s.SetEOL("\r\n")
	afw := s.WriteBegin()
	for _, c := range []byte("a\x00b\rc\n") {
		s.Write(c, &afw)
	}
	s.WriteEnd()
	if got := string(l.Output()); got != "abc\r\n" {
		t.Fatalf("output got=%q want=%q", got, "abc\r\n")
	}
	if s.Name() != "vT" {
		t.Fatalf("name got=%q want=vT", s.Name())
	}
}

func TestWriteBudgetLeavesRoomForEOL(t *testing.T) {
	testlog.Start(t)
	l := transport.NewLoopback(64)
	s := stream.New(l, 'v', '0')
	s.SetEOL("\r\n")
	l.SetWriteCapacity(1)
	if afw := s.WriteBegin(); afw != 0 {
		t.Fatalf("budget below eol got=%d want=0", afw)
	}
	l.SetWriteCapacity(3)
	afw := s.WriteBegin()
	if n := s.Write('x', &afw); n != 1 || afw != 2 {
		t.Fatalf("write got n=%d afw=%d", n, afw)
	}
	if n := s.Write('y', &afw); n != 1 || afw != 0 {
		t.Fatalf("budget below eol not cleared: n=%d afw=%d", n, afw)
	}
	if n := s.Write('z', &afw); n != 0 {
		t.Fatalf("write past budget wrote %d", n)
	}
	if n := s.WriteEOL(&afw); n != 0 {
		t.Fatalf("eol past budget wrote %d", n)
	}
	if got := string(l.Output()); got != "xy" {
		t.Fatalf("output got=%q", got)
	}
}

func TestReadNotifiesControlBytes(t *testing.T) {
	testlog.Start(t)
	l := transport.NewLoopback(64)
	s := stream.New(l, 'v', '1')
	n := &notes{}
	s.SetResponder(n)
	l.Feed([]byte{'a', stream.ByteACK, stream.ByteEnd, 'b'})
	afr := s.ReadBegin()
	var got []byte
	for {
		c, ok := s.Read(&afr)
		if !ok {
			break
		}
		got = append(got, c)
	}
	if string(got) != "a\x06\x04b" {
		t.Fatalf("read got=%q", got)
	}
	if len(n.got) != 2 || n.got[0] != stream.NoteRSVP || n.got[1] != stream.NoteEnd {
		t.Fatalf("notes got=%v", n.got)
	}
}

func TestReadStopsAtBudget(t *testing.T) {
	testlog.Start(t)
	l := transport.NewLoopback(64)
	s := stream.New(l, 'v', '2')
	l.FeedString("abc")
	afr := 2
	s.Read(&afr)
	s.Read(&afr)
	if _, ok := s.Read(&afr); ok {
		t.Fatalf("read past budget")
	}
	if l.Available() != 1 {
		t.Fatalf("available got=%d want=1", l.Available())
	}
}

func TestConnectionTransitions(t *testing.T) {
	testlog.Start(t)
	l := transport.NewLoopback(16)
	s := stream.New(l, 'v', '3')
	n := &notes{}
	s.SetResponder(n)
	if _, err := s.Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	s.Connected()
	s.Connected()
	l.SetConnected(false)
	s.Connected()
	l.SetConnected(true)
	s.Connected()
	want := []string{stream.NoteConnected, stream.NoteDisconnected, stream.NoteConnected}
	if len(n.got) != len(want) {
		t.Fatalf("notes got=%v want=%v", n.got, want)
	}
	for i := range want {
		if n.got[i] != want[i] {
			t.Fatalf("notes got=%v want=%v", n.got, want)
		}
	}
}
