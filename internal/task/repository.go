package task

import (
	"fmt"

	"github.com/danmuck/multishell/internal/comma"
	"github.com/danmuck/multishell/internal/config"
	"github.com/danmuck/multishell/internal/observability"
	"github.com/rs/zerolog/log"
)

// Buffer class capacities, smallest first.
var bufferClasses = [...]int{16, 32, 64}

// PoolStat is a point-in-time view of one pool.
type PoolStat struct {
	Name string `json:"name"`
	Free int    `json:"free"`
	Size int    `json:"size"`
}

// Repository holds every pool the engine draws output tasks from. It is
// built once and shared by all sessions of one engine.
type Repository struct {
	offsets *Pool[OffsetString]
	lists   *Pool[PrintableTask]
	commas  *Pool[CommaTask]
	buffers [len(bufferClasses)]*Pool[Buffer]
	scratch *Pool[Scratch]
}

func NewRepository(cfg config.PoolConfig) *Repository {
	r := &Repository{
		offsets: NewPool[OffsetString]("offset", cfg.OffsetStrings, nil),
		lists:   NewPool[PrintableTask]("list", cfg.PrintableLists, nil),
		commas:  NewPool[CommaTask]("comma", cfg.CommaFrames, nil),
	}
	counts := [len(bufferClasses)]int{cfg.Buffer16, cfg.Buffer32, cfg.Buffer64}
	for i, capacity := range bufferClasses {
		slab := make([]byte, capacity*max(counts[i], 0))
		r.buffers[i] = NewPool(fmt.Sprintf("buffer%d", capacity), counts[i], func(slot int, b *Buffer) {
			b.data = slab[slot*capacity : (slot+1)*capacity : (slot+1)*capacity]
		})
	}
	slab := make([]byte, ScratchSize*max(cfg.Scratch, 0))
	r.scratch = NewPool[Scratch]("scratch", cfg.Scratch, nil)
	for slot := 0; slot < r.scratch.Size(); slot++ {
		s := r.scratch.Item(slot)
		s.data = slab[slot*ScratchSize : (slot+1)*ScratchSize : (slot+1)*ScratchSize]
		s.pool = r.scratch
		s.slot = slot
	}
	log.Debug().
		Int("offset", cfg.OffsetStrings).
		Int("list", cfg.PrintableLists).
		Int("comma", cfg.CommaFrames).
		Int("buffer16", cfg.Buffer16).
		Int("buffer32", cfg.Buffer32).
		Int("buffer64", cfg.Buffer64).
		Int("scratch", cfg.Scratch).
		Msg("task.NewRepository")
	return r
}

func exhausted(name string) {
	observability.RecordPoolExhausted(name)
	log.Debug().Str("pool", name).Msg("task.Repository checkout failed")
}

func dropped(q *Queue, kind Kind) {
	observability.RecordDispatchDropped(string(kind))
	log.Debug().Str("queue", q.Name()).Str("kind", string(kind)).Msg("task.Repository dispatch dropped")
}

// DispatchOffsetString queues s preceded by offset spaces. s is not copied.
func (r *Repository) DispatchOffsetString(q *Queue, s string, offset int) bool {
	if q.Full() {
		dropped(q, KindOffset)
		return false
	}
	t, slot, ok := r.offsets.Checkout()
	if !ok {
		exhausted(r.offsets.Name())
		dropped(q, KindOffset)
		return false
	}
	t.assign(s, offset)
	return q.push(entry{task: t, owner: r.offsets, slot: slot, kind: KindOffset})
}

// DispatchBuffer copies b into one or more buffer tasks. Either all of b is
// queued or nothing is.
func (r *Repository) DispatchBuffer(q *Queue, b []byte) bool {
	if len(b) == 0 {
		return false
	}
	mark := q.Len()
	for len(b) > 0 {
		pool := r.bufferFor(len(b))
		if pool == nil || q.Full() {
			q.truncate(mark)
			dropped(q, KindBuffer)
			return false
		}
		t, slot, _ := pool.Checkout()
		b = b[t.assign(b):]
		q.push(entry{task: t, owner: pool, slot: slot, kind: KindBuffer})
	}
	return true
}

// bufferFor picks the smallest class that holds n bytes (or the largest
// class), escalating to larger classes and then falling back to smaller
// ones when a class is empty.
func (r *Repository) bufferFor(n int) *Pool[Buffer] {
	pref := len(bufferClasses) - 1
	for i, capacity := range bufferClasses {
		if capacity >= n {
			pref = i
			break
		}
	}
	for i := pref; i < len(r.buffers); i++ {
		if r.buffers[i].Free() > 0 {
			return r.buffers[i]
		}
		if r.buffers[i].Size() > 0 {
			exhausted(r.buffers[i].Name())
		}
	}
	for i := pref - 1; i >= 0; i-- {
		if r.buffers[i].Free() > 0 {
			return r.buffers[i]
		}
		if r.buffers[i].Size() > 0 {
			exhausted(r.buffers[i].Name())
		}
	}
	return nil
}

// DispatchCommand queues one comma frame.
func (r *Repository) DispatchCommand(q *Queue, c comma.Command) bool {
	if !c.Valid() || q.Full() {
		dropped(q, KindComma)
		return false
	}
	t, slot, ok := r.commas.Checkout()
	if !ok {
		exhausted(r.commas.Name())
		dropped(q, KindComma)
		return false
	}
	t.assign(c)
	return q.push(entry{task: t, owner: r.commas, slot: slot, kind: KindComma})
}

// DispatchPrintableList queues a rendering of l. The list is read as the task
// runs, not when it is queued.
func (r *Repository) DispatchPrintableList(q *Queue, l PrintableList) bool {
	if l == nil || q.Full() {
		dropped(q, KindPrintable)
		return false
	}
	t, slot, ok := r.lists.Checkout()
	if !ok {
		exhausted(r.lists.Name())
		dropped(q, KindPrintable)
		return false
	}
	t.assign(l)
	return q.push(entry{task: t, owner: r.lists, slot: slot, kind: KindPrintable})
}

// Scratch checks out a 128-byte buffer; the caller must Release it.
func (r *Repository) Scratch() (*Scratch, bool) {
	s, _, ok := r.scratch.Checkout()
	if !ok {
		exhausted(r.scratch.Name())
		return nil, false
	}
	s.Reset()
	return s, true
}

// Snapshot lists every pool and publishes the free-slot gauges.
func (r *Repository) Snapshot() []PoolStat {
	stats := []PoolStat{
		{r.offsets.Name(), r.offsets.Free(), r.offsets.Size()},
		{r.lists.Name(), r.lists.Free(), r.lists.Size()},
		{r.commas.Name(), r.commas.Free(), r.commas.Size()},
	}
	for _, p := range r.buffers {
		stats = append(stats, PoolStat{p.Name(), p.Free(), p.Size()})
	}
	stats = append(stats, PoolStat{r.scratch.Name(), r.scratch.Free(), r.scratch.Size()})
	for _, s := range stats {
		observability.RecordPoolFree(s.Name, s.Free)
	}
	return stats
}

// Status is the one-line summary of free task slots.
func (r *Repository) Status() string {
	b16, b32, b64 := r.buffers[0], r.buffers[1], r.buffers[2]
	return fmt.Sprintf("Free currently, OffStr: %2d/%d; List: %d/%d; CC: %d/%d; Buf-16: %2d/%d; Buf-32: %d/%d; Buf-64: %d/%d",
		r.offsets.Free(), r.offsets.Size(),
		r.lists.Free(), r.lists.Size(),
		r.commas.Free(), r.commas.Size(),
		b16.Free(), b16.Size(),
		b32.Free(), b32.Size(),
		b64.Free(), b64.Size())
}
