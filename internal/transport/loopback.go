package transport

import "github.com/danmuck/multishell/internal/ring"

// Loopback is an in-memory backend. Bytes handed to Feed are read by the
// engine; bytes the engine writes collect until Output drains them.
type Loopback struct {
	rx       *ring.Buffer
	tx       *ring.Buffer
	up       bool
	writeCap int
}

// NewLoopback sizes both directions to size bytes.
func NewLoopback(size int) *Loopback {
	return &Loopback{
		rx:       ring.New(size),
		tx:       ring.New(size),
		up:       true,
		writeCap: -1,
	}
}

func (l *Loopback) Begin() (string, error) {
	return "Loopback", nil
}

func (l *Loopback) Connected() bool {
	return l.up
}

func (l *Loopback) SetConnected(up bool) {
	l.up = up
}

func (l *Loopback) Update() {}

func (l *Loopback) Available() int {
	return l.rx.Available()
}

// SetWriteCapacity caps the write budget reported to the engine; a negative
// value removes the cap.
func (l *Loopback) SetWriteCapacity(n int) {
	l.writeCap = n
}

func (l *Loopback) AvailableForWrite() int {
	n := l.tx.AvailableForWrite()
	if l.writeCap >= 0 && l.writeCap < n {
		return l.writeCap
	}
	return n
}

func (l *Loopback) Get() (byte, bool) {
	return l.rx.Pop()
}

func (l *Loopback) Put(c byte) bool {
	return l.tx.Push(c)
}

// Feed queues input for the engine and returns how much fitted.
func (l *Loopback) Feed(b []byte) int {
	return l.rx.Write(b)
}

func (l *Loopback) FeedString(s string) int {
	return l.Feed([]byte(s))
}

// Drain moves written bytes into dst and returns the count.
func (l *Loopback) Drain(dst []byte) int {
	return l.tx.Read(dst)
}

// Output drains everything the engine has written so far.
func (l *Loopback) Output() []byte {
	out := make([]byte, l.tx.Available())
	n := l.tx.Read(out)
	return out[:n]
}
