package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/danmuck/multishell/internal/observability"
	"github.com/danmuck/multishell/internal/stream"
	"github.com/danmuck/multishell/internal/timer"
	"github.com/rs/zerolog"
)

// BuildCommand joins line commands for injection into a device: each is
// prefixed with ';' and the string ends with ";RSVP," so the device
// acknowledges once it has run them all. No commands gives "".
func BuildCommand(commands []string) string {
	if len(commands) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range commands {
		b.WriteByte(';')
		b.WriteString(c)
	}
	b.WriteString(";RSVP,")
	return b.String()
}

// Passthrough copies bytes between a terminal and a device. Injected command
// bytes are sent to the device ahead of terminal input. An ACK from the
// device arms exit-when-quiet; 0x04 from either side ends Run.
type Passthrough struct {
	timer.Base

	terminal *stream.Stream
	device   *stream.Stream
	command  []byte
	pos      int
	quiet    bool
	timer    *timer.Timer
	log      zerolog.Logger
}

func NewPassthrough(terminal, device stream.Backend, command string) *Passthrough {
	p := &Passthrough{
		terminal: stream.New(terminal, 'v', 'T'),
		device:   stream.New(device, 'v', 'D'),
		command:  []byte(command),
		log:      observability.Component("passthrough"),
	}
	p.terminal.SetResponder(p)
	p.device.SetResponder(p)
	p.timer = timer.New(p, timer.DefaultPeriod)
	return p
}

func (p *Passthrough) Terminal() *stream.Stream {
	return p.terminal
}

func (p *Passthrough) Device() *stream.Stream {
	return p.device
}

// Run opens both streams and bridges them until stopped or ctx is done.
func (p *Passthrough) Run(ctx context.Context) error {
	if status, err := p.terminal.Begin(); err != nil {
		return fmt.Errorf("passthrough terminal: %s: %w", status, err)
	}
	if status, err := p.device.Begin(); err != nil {
		return fmt.Errorf("passthrough device: %s: %w", status, err)
	}
	return p.timer.Run(ctx)
}

func (p *Passthrough) Stop() {
	p.timer.Stop()
}

// Pending is the number of injected command bytes not yet sent.
func (p *Passthrough) Pending() int {
	return len(p.command) - p.pos
}

func (p *Passthrough) StreamNotification(s *stream.Stream, message string) {
	switch message {
	case stream.NoteEnd:
		p.log.Info().Str("stream", s.Name()).Msg("console.Passthrough end")
		p.timer.Stop()
	case stream.NoteRSVP:
		if s == p.device {
			p.log.Debug().Msg("console.Passthrough device acknowledged")
			p.quiet = true
		}
	default:
		p.log.Info().Str("stream", s.Name()).Str("note", message).Msg("console.Passthrough notification")
	}
}

func (p *Passthrough) EveryMilli() {
	p.terminal.Update()
	p.device.Update()
	p.terminal.Connected()
	if !p.device.Connected() {
		return
	}
	p.sync(p.device, p.terminal, false)
	p.sync(p.terminal, p.device, true)
}

// sync moves one tick's worth of bytes from one stream to the other.
// inject sends pending command bytes first.
func (p *Passthrough) sync(from, to *stream.Stream, inject bool) {
	afr := 0
	if inject {
		afr = p.Pending()
	}
	if afr == 0 {
		afr = from.ReadBegin()
	}
	if afr == 0 {
		if !inject && p.quiet {
			p.log.Info().Msg("console.Passthrough device quiet")
			p.timer.Stop()
		}
		return
	}
	afw := to.WriteBegin()
	if afw == 0 {
		return
	}
	for afr > 0 && afw > 0 {
		var c byte
		if inject && p.pos < len(p.command) {
			c = p.command[p.pos]
			p.pos++
			afr--
		} else {
			var ok bool
			if c, ok = from.Read(&afr); !ok {
				break
			}
		}
		to.Write(c, &afw)
	}
	to.WriteEnd()
}
