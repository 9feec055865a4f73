package task

import "fmt"

// ScratchSize is the capacity of every scratch buffer.
const ScratchSize = 128

// Scratch is a pooled 128-byte working buffer. Appends truncate silently at
// capacity. Release hands it back to the Repository.
type Scratch struct {
	data []byte
	n    int
	pool *Pool[Scratch]
	slot int
}

func (s *Scratch) Len() int {
	return s.n
}

func (s *Scratch) Cap() int {
	return len(s.data)
}

func (s *Scratch) Reset() {
	s.n = 0
}

// Bytes aliases the buffer; it is only valid until the next append or Release.
func (s *Scratch) Bytes() []byte {
	return s.data[:s.n]
}

func (s *Scratch) Append(b []byte) int {
	n := copy(s.data[s.n:], b)
	s.n += n
	return n
}

func (s *Scratch) AppendString(str string) int {
	n := copy(s.data[s.n:], str)
	s.n += n
	return n
}

func (s *Scratch) AppendByte(c byte) bool {
	if s.n == len(s.data) {
		return false
	}
	s.data[s.n] = c
	s.n++
	return true
}

// Appendf formats into the free space and returns the bytes kept.
func (s *Scratch) Appendf(format string, args ...any) int {
	out := fmt.Appendf(s.data[s.n:s.n], format, args...)
	n := copy(s.data[s.n:], out)
	s.n += n
	return n
}

func (s *Scratch) Release() {
	s.n = 0
	if s.pool != nil {
		s.pool.Return(s.slot)
	}
}
