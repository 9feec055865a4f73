// Package ring owns the fixed-capacity byte queue used for all buffered I/O.
//
// A Buffer of size N stores at most N-1 bytes; one slot stays empty so that
// head == tail always means empty. Nothing allocates after New.
package ring

const minSize = 2

// Buffer is a FIFO byte queue with wraparound.
type Buffer struct {
	buf  []byte
	head int // next byte to read
	tail int // next slot to write
}

// New returns a buffer backed by size bytes. Sizes below 2 are raised to 2.
func New(size int) *Buffer {
	if size < minSize {
		size = minSize
	}
	return &Buffer{buf: make([]byte, size)}
}

// Size is the backing length; capacity is Size()-1.
func (r *Buffer) Size() int {
	return len(r.buf)
}

func (r *Buffer) Clear() {
	r.head = 0
	r.tail = 0
}

func (r *Buffer) Empty() bool {
	return r.head == r.tail
}

// Available returns the number of bytes ready to read.
func (r *Buffer) Available() int {
	n := r.tail - r.head
	if n < 0 {
		n += len(r.buf)
	}
	return n
}

// AvailableForWrite returns the number of bytes that can be written.
func (r *Buffer) AvailableForWrite() int {
	return len(r.buf) - 1 - r.Available()
}

// Push appends one byte; false if the buffer is full.
func (r *Buffer) Push(c byte) bool {
	next := r.tail + 1
	if next == len(r.buf) {
		next = 0
	}
	if next == r.head {
		return false
	}
	r.buf[r.tail] = c
	r.tail = next
	return true
}

// Pop removes the oldest byte; false if the buffer is empty.
func (r *Buffer) Pop() (byte, bool) {
	if r.head == r.tail {
		return 0, false
	}
	c := r.buf[r.head]
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
	}
	return c, true
}

// Read moves up to len(dst) bytes out of the buffer and returns the count.
func (r *Buffer) Read(dst []byte) int {
	n := min(len(dst), r.Available())
	if n == 0 {
		return 0
	}
	first := min(n, len(r.buf)-r.head)
	copy(dst, r.buf[r.head:r.head+first])
	copy(dst[first:n], r.buf[:n-first])
	r.head = (r.head + n) % len(r.buf)
	return n
}

// Write copies as much of src as fits and returns the count; partial writes
// are normal, overflow never happens.
func (r *Buffer) Write(src []byte) int {
	n := min(len(src), r.AvailableForWrite())
	if n == 0 {
		return 0
	}
	if r.head == r.tail {
		r.head = 0
		r.tail = 0
	}
	first := min(n, len(r.buf)-r.tail)
	copy(r.buf[r.tail:], src[:first])
	copy(r.buf, src[first:n])
	r.tail = (r.tail + n) % len(r.buf)
	return n
}
