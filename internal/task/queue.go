package task

import (
	"github.com/danmuck/multishell/internal/observability"
	"github.com/danmuck/multishell/internal/stream"
)

const (
	flagEOLMask = 0x03 // queued EOL count, saturating at 3
	flagRSVP    = 0x04 // pending ACK
)

// Sink is the stream side a Queue drains into.
type Sink interface {
	Writer
	WriteBegin() int
	WriteEnd()
}

type slotOwner interface {
	Return(slot int) bool
}

type entry struct {
	task  Task
	owner slotOwner
	slot  int
	kind  Kind
	flags uint8
}

// Queue is a fixed-capacity FIFO of checked-out tasks. Control flags are
// recorded against the tail task when there is one, otherwise against the
// queue itself, and are serviced in that order.
type Queue struct {
	name    string
	entries []entry
	head    int
	n       int
	flags   uint8

	// write budget of the running Process call
	afw int
}

func NewQueue(name string, capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{name: name, entries: make([]entry, capacity)}
}

func (q *Queue) Name() string {
	return q.name
}

func (q *Queue) Len() int {
	return q.n
}

func (q *Queue) Cap() int {
	return len(q.entries)
}

func (q *Queue) Full() bool {
	return q.n == len(q.entries)
}

// Idle reports whether there is nothing to write.
func (q *Queue) Idle() bool {
	return q.n == 0 && q.flags == 0
}

// PendingEOL is the EOL count waiting at the front of the queue.
func (q *Queue) PendingEOL() int {
	return int(q.flags & flagEOLMask)
}

// PendingACK reports an ACK waiting at the front of the queue.
func (q *Queue) PendingACK() bool {
	return q.flags&flagRSVP != 0
}

func (q *Queue) tailFlags() *uint8 {
	if q.n == 0 {
		return &q.flags
	}
	return &q.entries[(q.head+q.n-1)%len(q.entries)].flags
}

// EOL queues one end-of-line sequence.
func (q *Queue) EOL() {
	f := q.tailFlags()
	*f = addEOL(*f, 1)
}

// RSVP queues an ACK byte.
func (q *Queue) RSVP() {
	*q.tailFlags() |= flagRSVP
}

func addEOL(flags uint8, n int) uint8 {
	count := int(flags&flagEOLMask) + n
	if count > flagEOLMask {
		count = flagEOLMask
	}
	return flags&^flagEOLMask | uint8(count)
}

func (q *Queue) push(e entry) bool {
	if q.Full() {
		return false
	}
	e.flags = 0
	q.entries[(q.head+q.n)%len(q.entries)] = e
	q.n++
	return true
}

// truncate drops tasks pushed after the queue held n, returning their slots.
func (q *Queue) truncate(n int) {
	for q.n > n {
		q.n--
		i := (q.head + q.n) % len(q.entries)
		release(q.entries[i])
		q.entries[i] = entry{}
	}
}

// pop retires the head task and adopts the flags recorded against it.
func (q *Queue) pop() {
	e := q.entries[q.head]
	q.entries[q.head] = entry{}
	q.head = (q.head + 1) % len(q.entries)
	q.n--
	release(e)
	q.flags = addEOL(q.flags|e.flags&flagRSVP, int(e.flags&flagEOLMask))
	observability.RecordTaskCompleted(string(e.kind))
}

func release(e entry) {
	if e.owner != nil {
		e.owner.Return(e.slot)
		return
	}
	if r, ok := e.task.(Releaser); ok {
		r.Release()
	}
}

// Process writes pending output within one write budget: ACK first, then
// queued EOLs, then the head task, moving on while budget remains.
func (q *Queue) Process(s Sink) {
	if q.Idle() {
		return
	}
	q.afw = s.WriteBegin()
	if q.afw == 0 {
		return
	}
	afw := &q.afw
	for *afw > 0 && !q.Idle() {
		if q.flags&flagRSVP != 0 {
			s.Write(stream.ByteACK, afw)
			q.flags &^= flagRSVP
			continue
		}
		if q.flags&flagEOLMask != 0 {
			s.WriteEOL(afw)
			q.flags = q.flags&^flagEOLMask | (q.flags&flagEOLMask - 1)
			continue
		}
		if !q.entries[q.head].task.Advance(s, afw) {
			break
		}
		q.pop()
	}
	q.afw = 0
	s.WriteEnd()
}
