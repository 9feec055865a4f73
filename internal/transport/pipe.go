package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"github.com/danmuck/multishell/internal/ring"
	"github.com/rs/zerolog/log"
)

var (
	ErrPipeStarted = errors.New("transport: pipe already started")
	ErrPipeClosed  = errors.New("transport: pipe closed")
)

const (
	// queueCapacity bounds each SPSC direction between a pump and the engine.
	queueCapacity = 1024
	stageSize     = 256
	pumpChunk     = 256
)

var pipeSerial atomix.Uint32

// Pipe adapts a blocking reader/writer pair to the non-blocking Backend
// contract. A reader pump and a writer pump exchange bytes with the engine
// through lfq SPSC queues; the engine side stages them in ring buffers so
// that Available and AvailableForWrite are exact.
type Pipe struct {
	name   string
	serial uint32
	r      io.Reader
	w      io.Writer

	rxq lfq.SPSC[byte]
	txq lfq.SPSC[byte]

	rx *ring.Buffer
	tx *ring.Buffer
	// hold is a byte popped from tx that the writer queue refused
	hold byte
	held bool

	started atomic.Bool
	closed  atomic.Bool
	eof     atomic.Bool
	stop    chan struct{}
	rwg     sync.WaitGroup
	wwg     sync.WaitGroup
	once    sync.Once
}

// NewPipe wraps r and w. Nothing runs until Begin.
func NewPipe(name string, r io.Reader, w io.Writer) *Pipe {
	p := &Pipe{
		name:   name,
		serial: pipeSerial.Add(1),
		r:      r,
		w:      w,
		rx:     ring.New(stageSize),
		tx:     ring.New(stageSize),
		stop:   make(chan struct{}),
	}
	p.rxq.Init(queueCapacity)
	p.txq.Init(queueCapacity)
	return p
}

// Serial is unique per process and names the pipe in logs.
func (p *Pipe) Serial() uint32 {
	return p.serial
}

// Begin starts the pumps.
func (p *Pipe) Begin() (string, error) {
	if p.closed.Load() {
		return p.name + ": closed", ErrPipeClosed
	}
	if !p.started.CompareAndSwap(false, true) {
		return p.name + ": running", ErrPipeStarted
	}
	if p.r != nil {
		p.rwg.Add(1)
		go p.readPump()
	}
	if p.w != nil {
		p.wwg.Add(1)
		go p.writePump()
	}
	log.Debug().Str("pipe", p.name).Uint32("serial", p.serial).Msg("transport.Pipe.Begin")
	return fmt.Sprintf("%s: running (serial %d)", p.name, p.serial), nil
}

func (p *Pipe) Connected() bool {
	return p.started.Load() && !p.closed.Load() && !p.eof.Load()
}

// Update moves bytes between the staging rings and the pump queues.
func (p *Pipe) Update() {
	for p.rx.AvailableForWrite() > 0 {
		c, err := p.rxq.Dequeue()
		if err != nil {
			break
		}
		p.rx.Push(c)
	}
	if p.held && !p.offer(p.hold) {
		return
	}
	p.held = false
	for !p.tx.Empty() {
		c, _ := p.tx.Pop()
		if !p.offer(c) {
			p.hold, p.held = c, true
			return
		}
	}
}

func (p *Pipe) offer(c byte) bool {
	return p.txq.Enqueue(&c) == nil
}

func (p *Pipe) Available() int {
	return p.rx.Available()
}

func (p *Pipe) AvailableForWrite() int {
	if !p.Connected() {
		return 0
	}
	return p.tx.AvailableForWrite()
}

func (p *Pipe) Get() (byte, bool) {
	return p.rx.Pop()
}

func (p *Pipe) Put(c byte) bool {
	return p.tx.Push(c)
}

// Close stops both pumps. Bytes already handed to the writer pump are
// flushed first. A reader that implements io.Closer is closed so that a
// blocked Read returns.
func (p *Pipe) Close() error {
	return p.shutdown(true)
}

// shutdown flushes and stops the writer pump. With closeReader it also
// closes the reader and waits for the reader pump.
func (p *Pipe) shutdown(closeReader bool) error {
	var err error
	p.once.Do(func() {
		p.Update()
		p.closed.Store(true)
		close(p.stop)
		p.wwg.Wait()
		if closeReader {
			if c, ok := p.r.(io.Closer); ok {
				err = c.Close()
			}
			p.rwg.Wait()
		}
		log.Debug().Str("pipe", p.name).Uint32("serial", p.serial).Msg("transport.Pipe.Close")
	})
	return err
}

func (p *Pipe) readPump() {
	defer p.rwg.Done()
	buf := make([]byte, pumpChunk)
	var bo iox.Backoff
	for {
		n, err := p.r.Read(buf)
		for i := 0; i < n; i++ {
			for {
				if qerr := p.rxq.Enqueue(&buf[i]); qerr == nil {
					bo.Reset()
					break
				} else if !iox.IsWouldBlock(qerr) || p.stopped() {
					return
				}
				bo.Wait()
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !p.closed.Load() {
				log.Warn().Str("pipe", p.name).Err(err).Msg("transport.Pipe read failed")
			}
			p.eof.Store(true)
			return
		}
		if p.stopped() {
			return
		}
	}
}

func (p *Pipe) writePump() {
	defer p.wwg.Done()
	buf := make([]byte, 0, pumpChunk)
	var bo iox.Backoff
	for {
		buf = buf[:0]
		for len(buf) < cap(buf) {
			c, err := p.txq.Dequeue()
			if err != nil {
				break
			}
			buf = append(buf, c)
		}
		if len(buf) > 0 {
			bo.Reset()
			if _, err := p.w.Write(buf); err != nil {
				log.Warn().Str("pipe", p.name).Err(err).Msg("transport.Pipe write failed")
				p.eof.Store(true)
				return
			}
			continue
		}
		if p.stopped() {
			return
		}
		bo.Wait()
	}
}

func (p *Pipe) stopped() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}
