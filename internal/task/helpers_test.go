package task

import (
	"github.com/danmuck/multishell/internal/config"
	"github.com/danmuck/multishell/internal/stream"
)

// budgetBackend accepts at most room bytes per tick.
type budgetBackend struct {
	out  []byte
	room int
}

func (b *budgetBackend) Begin() (string, error) { return "budget", nil }
func (b *budgetBackend) Connected() bool        { return true }
func (b *budgetBackend) Update()                {}
func (b *budgetBackend) Available() int         { return 0 }
func (b *budgetBackend) AvailableForWrite() int { return b.room }
func (b *budgetBackend) Get() (byte, bool)      { return 0, false }

func (b *budgetBackend) Put(c byte) bool {
	if b.room == 0 {
		return false
	}
	b.out = append(b.out, c)
	b.room--
	return true
}

type fixture struct {
	repo    *Repository
	queue   *Queue
	d       Dispatcher
	backend *budgetBackend
	stream  *stream.Stream
}

func newFixture(pools config.PoolConfig, capacity int) *fixture {
	f := &fixture{
		repo:    NewRepository(pools),
		queue:   NewQueue("test", capacity),
		backend: &budgetBackend{},
	}
	f.d = NewDispatcher(f.repo, f.queue)
	f.stream = stream.New(f.backend, 'v', 'T')
	return f
}

// tick drains the queue once with budget w and returns what was written.
func (f *fixture) tick(w int) []byte {
	start := len(f.backend.out)
	f.backend.room = w
	f.queue.Process(f.stream)
	return f.backend.out[start:]
}

// drain ticks until the queue is idle, failing after limit ticks.
func (f *fixture) drain(w, limit int) (string, bool) {
	for i := 0; i < limit && !f.queue.Idle(); i++ {
		f.tick(w)
	}
	return string(f.backend.out), f.queue.Idle()
}

type staticItem []string

func (s staticItem) PrintableCount() int { return len(s) }

func (s staticItem) Printable(i int) (string, int) {
	if i == 0 {
		return s[i], 2
	}
	return s[i], 4
}

type staticList struct {
	title    string
	items    []staticItem
	selected int
}

func (l *staticList) PrintableCount() int {
	if l.title == "" {
		return 0
	}
	return 1
}

func (l *staticList) Printable(int) (string, int) { return l.title, 0 }
func (l *staticList) Len() int                    { return len(l.items) }
func (l *staticList) Item(i int) Printable        { return l.items[i] }
func (l *staticList) Selection() int              { return l.selected }

type releaseTask struct {
	text     string
	pos      int
	released int
}

func (t *releaseTask) Advance(w Writer, afw *int) bool {
	for *afw > 0 && t.pos < len(t.text) {
		w.Write(t.text[t.pos], afw)
		t.pos++
	}
	return t.pos == len(t.text)
}

func (t *releaseTask) Release() {
	t.released++
}
