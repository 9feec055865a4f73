package shell

import (
	"github.com/danmuck/multishell/internal/comma"
	"github.com/danmuck/multishell/internal/observability"
	"github.com/danmuck/multishell/internal/stream"
	"github.com/danmuck/multishell/internal/task"
	"github.com/rs/zerolog/log"
)

// BufferSize is the line buffer; the longest accepted line is one less.
const BufferSize = 64

// InputState is the parser state of a session.
type InputState int

const (
	CommaMode InputState = iota
	Start
	Discard
	Processing
	QuotedString
)

func (s InputState) String() string {
	switch s {
	case CommaMode:
		return "comma"
	case Start:
		return "start"
	case Discard:
		return "discard"
	case Processing:
		return "processing"
	case QuotedString:
		return "string"
	default:
		return "unknown"
	}
}

const (
	msgUnexpected   = "Error! Unexpected character"
	msgTooLong      = "Error! Command too long."
	msgEOLInString  = "Error! EOL within string"
	msgNotFoundPre  = "Error! Command \""
	msgNotFoundPost = "\" not recognised. Try 'help'."
	msgUsage        = "Error! Incorrect usage. Try 'help'."
	msgNoHandler    = "Error! (Internal: No handler)."
	msgFailed       = "Error! Command failed."
	msgNoDefault    = "Error! (Internal: No default handler set)."
	protocolLine    = "line"
	protocolComma   = "comma"
	resultNotFound  = "not_found"
	resultNoDefault = "no_default"
)

// Shell is one session on one stream. Output goes through the embedded
// Dispatcher; input is consumed by Update.
type Shell struct {
	task.Dispatcher

	name     string
	stream   *stream.Stream
	commands *CommandList
	commaH   CommaHandler
	notifier Notifier

	state   InputState
	buf     [BufferSize]byte
	n       int
	decoder comma.Decoder
	args    Args
}

// New builds a session named "m<id>" over s, drawing output tasks from repo.
// A nil command list gets one with just the built-ins.
func New(id byte, s *stream.Stream, repo *task.Repository, commands *CommandList, queueCapacity int) *Shell {
	if commands == nil {
		commands = NewCommandList()
	}
	name := string([]byte{'m', id})
	sh := &Shell{
		Dispatcher: task.NewDispatcher(repo, task.NewQueue(name, queueCapacity)),
		name:       name,
		stream:     s,
		commands:   commands,
	}
	s.SetResponder(sh)
	return sh
}

func (sh *Shell) Name() string {
	return sh.name
}

func (sh *Shell) Stream() *stream.Stream {
	return sh.stream
}

func (sh *Shell) Commands() *CommandList {
	return sh.commands
}

func (sh *Shell) State() InputState {
	return sh.state
}

func (sh *Shell) SetCommaHandler(h CommaHandler) {
	sh.commaH = h
}

func (sh *Shell) SetNotifier(n Notifier) {
	sh.notifier = n
}

// Begin opens the underlying stream.
func (sh *Shell) Begin() (string, error) {
	return sh.stream.Begin()
}

// RespondToRSVP queues an ACK byte.
func (sh *Shell) RespondToRSVP() {
	sh.RSVP()
}

// Reset returns the parser to comma mode and drops any partial input.
// Queued output is kept.
func (sh *Shell) Reset() {
	sh.reset(CommaMode)
}

func (sh *Shell) reset(s InputState) {
	sh.state = s
	sh.n = 0
	sh.decoder.Reset()
}

// StreamNotification forwards stream events to the notifier. The end byte
// is reported by the parser itself, so the stream's copy is dropped.
func (sh *Shell) StreamNotification(_ *stream.Stream, message string) {
	switch message {
	case stream.NoteEnd:
		return
	case stream.NoteConnected, stream.NoteDisconnected:
		log.Info().Str("shell", sh.name).Msg("shell." + message)
	}
	sh.notify(message)
}

func (sh *Shell) notify(message string) {
	if sh.notifier != nil {
		sh.notifier.ShellNotification(sh, message)
	}
}

// Update runs one tick: drain output against the write budget, then consume
// input against the read budget. At most one line completes per call.
func (sh *Shell) Update() {
	sh.stream.Update()
	if !sh.stream.Connected() {
		if sh.state != CommaMode || sh.n > 0 || sh.decoder.Pending() {
			sh.Reset()
		}
		return
	}

	sh.Queue().Process(sh.stream)

	afr := sh.stream.ReadBegin()
	if sh.state == CommaMode {
		for afr > 0 {
			c, ok := sh.stream.Read(&afr)
			if !ok {
				break
			}
			if c == stream.ByteEnd {
				sh.decoder.Reset()
				sh.notify(stream.NoteEnd)
				return
			}
			if c == ';' {
				sh.reset(Start)
				break
			}
			if cmd, ok := sh.decoder.Push(c); ok {
				sh.commaCommand(cmd)
			}
		}
		if sh.state == CommaMode {
			return
		}
	}

	for afr > 0 {
		c, ok := sh.stream.Read(&afr)
		if !ok {
			return
		}
		if c == stream.ByteEnd {
			sh.notify(stream.NoteEnd)
			return
		}
		if sh.line(c) {
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || (c >= '\t' && c <= '\r')
}

func isGraph(c byte) bool {
	return c > ' ' && c < 0x7f
}

func nextState(terminator byte) InputState {
	if terminator == ';' {
		return Start
	}
	return CommaMode
}

// line feeds one byte to the line parser and reports whether a line was
// terminated.
func (sh *Shell) line(c byte) bool {
	eol := c == '\n' || c == '\r' || (sh.state != QuotedString && (c == ',' || c == ';'))

	if sh.state == Discard {
		if eol {
			sh.reset(nextState(c))
			return true
		}
		return false
	}
	ws := isSpace(c)
	if !ws && !isGraph(c) {
		sh.inputError("unexpected", msgUnexpected)
		sh.state = Discard
		sh.n = 0
		return false
	}
	if eol {
		switch sh.state {
		case QuotedString:
			sh.inputError("eol_in_string", msgEOLInString)
		case Start:
		default:
			sh.execute()
		}
		sh.reset(nextState(c))
		return true
	}
	if ws {
		if sh.state == Start {
			return false
		}
		if sh.state != QuotedString {
			if sh.n > 0 && sh.buf[sh.n-1] == ' ' {
				return false
			}
			c = ' '
		}
	}
	if c == '"' {
		if sh.state == QuotedString {
			if sh.n > 0 && sh.buf[sh.n-1] == '"' {
				// empty string
				sh.n--
				sh.state = Start
				if sh.n > 0 {
					sh.state = Processing
				}
				return false
			}
			sh.state = Processing
		} else {
			sh.state = QuotedString
		}
	}
	if sh.n == BufferSize-1 {
		sh.inputError("too_long", msgTooLong)
		sh.state = Discard
		sh.n = 0
		return false
	}
	sh.buf[sh.n] = c
	sh.n++
	if sh.state == Start {
		sh.state = Processing
	}
	return false
}

func (sh *Shell) inputError(kind, message string) {
	observability.RecordInputError(sh.name, kind)
	sh.Println(message)
}

// execute looks up and runs the buffered line.
func (sh *Shell) execute() {
	n := sh.n
	if n > 0 && sh.buf[n-1] == ' ' {
		n--
	}
	sh.args.parse(sh.buf[:n])
	if sh.args.Len() == 0 {
		return
	}
	name := sh.args.Bytes(0)
	cmd := sh.commands.lookupBytes(name)
	if cmd == nil {
		observability.RecordCommand(sh.name, protocolLine, resultNotFound)
		if sh.WriteWrapped(msgNotFoundPre, name, msgNotFoundPost) {
			sh.EOL()
		}
		return
	}
	handler := cmd.Handler
	if handler == nil {
		handler = sh.commands.DefaultHandler()
	}
	if handler == nil {
		observability.RecordCommand(sh.name, protocolLine, resultNoDefault)
		sh.Println(msgNoDefault)
		return
	}
	res := handler.ShellCommand(sh, &sh.args)
	observability.RecordCommand(sh.name, protocolLine, res.String())
	log.Debug().Str("shell", sh.name).Str("command", cmd.Name).Str("result", res.String()).Msg("shell.Shell command")
	switch res {
	case IncorrectUsage:
		sh.Println(msgUsage)
	case UnhandledCommand:
		sh.Println(msgNoHandler)
	case OtherError:
		sh.Println(msgFailed)
	}
}

func (sh *Shell) commaCommand(c comma.Command) {
	observability.RecordCommand(sh.name, protocolComma, c.CodeName())
	if sh.commaH != nil {
		sh.commaH.CommaCommand(sh, c)
	}
}
