package task

import "github.com/danmuck/multishell/internal/comma"

// Dispatcher is the output surface of one session: everything it accepts
// lands on the session's Queue, drawing tasks from the shared Repository.
// Every call reports false when the output had to be dropped.
type Dispatcher struct {
	repo  *Repository
	queue *Queue
}

func NewDispatcher(repo *Repository, queue *Queue) Dispatcher {
	return Dispatcher{repo: repo, queue: queue}
}

func (d *Dispatcher) Repository() *Repository {
	return d.repo
}

func (d *Dispatcher) Queue() *Queue {
	return d.queue
}

// Print queues s. The string is referenced, not copied.
func (d *Dispatcher) Print(s string) bool {
	return d.repo.DispatchOffsetString(d.queue, s, 0)
}

// PrintOffset queues s indented by n spaces.
func (d *Dispatcher) PrintOffset(s string, n int) bool {
	return d.repo.DispatchOffsetString(d.queue, s, n)
}

// Println queues s followed by an end-of-line sequence.
func (d *Dispatcher) Println(s string) bool {
	if !d.Print(s) {
		return false
	}
	d.EOL()
	return true
}

// Write queues a copy of b.
func (d *Dispatcher) Write(b []byte) bool {
	return d.repo.DispatchBuffer(d.queue, b)
}

// Printf formats through a scratch buffer and queues the result.
func (d *Dispatcher) Printf(format string, args ...any) bool {
	s, ok := d.repo.Scratch()
	if !ok {
		return false
	}
	defer s.Release()
	s.Appendf(format, args...)
	if s.Len() == 0 {
		return true
	}
	return d.Write(s.Bytes())
}

// WriteWrapped queues prefix, b and suffix as one payload. Unlike Printf it
// does not allocate.
func (d *Dispatcher) WriteWrapped(prefix string, b []byte, suffix string) bool {
	s, ok := d.repo.Scratch()
	if !ok {
		return false
	}
	defer s.Release()
	s.AppendString(prefix)
	s.Append(b)
	s.AppendString(suffix)
	if s.Len() == 0 {
		return true
	}
	return d.Write(s.Bytes())
}

func (d *Dispatcher) EOL() {
	d.queue.EOL()
}

func (d *Dispatcher) Command(c comma.Command) bool {
	return d.repo.DispatchCommand(d.queue, c)
}

func (d *Dispatcher) List(l PrintableList) bool {
	return d.repo.DispatchPrintableList(d.queue, l)
}

// AddTask queues a task that is not drawn from the Repository. On completion
// it is released if it implements Releaser. A refused task stays with the
// caller.
func (d *Dispatcher) AddTask(t Task) bool {
	if t == nil {
		return false
	}
	if !d.queue.push(entry{task: t, kind: KindCustom}) {
		dropped(d.queue, KindCustom)
		return false
	}
	return true
}

// RSVP queues an ACK byte.
func (d *Dispatcher) RSVP() {
	d.queue.RSVP()
}
