package stream

import (
	"github.com/danmuck/multishell/internal/observability"
	"github.com/rs/zerolog/log"
)

const (
	ByteEnd = 0x04 // end of session
	ByteACK = 0x06 // acknowledgement / RSVP

	NoteEnd          = "end"
	NoteRSVP         = "RSVP"
	NoteConnected    = "Connected"
	NoteDisconnected = "Disconnected"
)

// Backend is the transport collaborator. Every call returns immediately.
type Backend interface {
	// Begin prepares the link; the status string is human readable either way.
	Begin() (string, error)
	Connected() bool
	// Update moves bytes between the device and the backend's buffers.
	Update()
	Available() int
	AvailableForWrite() int
	Get() (byte, bool)
	Put(c byte) bool
}

// Responder receives stream notifications: NoteEnd, NoteRSVP, NoteConnected,
// NoteDisconnected.
type Responder interface {
	StreamNotification(s *Stream, message string)
}

type Stream struct {
	backend   Backend
	responder Responder
	eol       []byte
	name      string
	connected bool
	written   int
}

// New wraps backend. The name is the stream type letter followed by id,
// e.g. "vT".
func New(backend Backend, kind, id byte) *Stream {
	return &Stream{
		backend: backend,
		eol:     []byte("\n"),
		name:    string([]byte{kind, id}),
	}
}

func (s *Stream) Name() string {
	return s.name
}

func (s *Stream) Backend() Backend {
	return s.backend
}

func (s *Stream) SetResponder(r Responder) {
	s.responder = r
}

// SetEOL replaces the end-of-line sequence; empty values are ignored.
func (s *Stream) SetEOL(eol string) {
	if eol == "" {
		return
	}
	s.eol = []byte(eol)
}

func (s *Stream) EOLLength() int {
	return len(s.eol)
}

func (s *Stream) Begin() (string, error) {
	status, err := s.backend.Begin()
	if err != nil {
		log.Warn().Str("stream", s.name).Err(err).Msg("stream.Stream.Begin failed")
		return status, err
	}
	log.Info().Str("stream", s.name).Str("status", status).Msg("stream.Stream.Begin")
	return status, nil
}

func (s *Stream) Update() {
	s.backend.Update()
}

// Connected polls the backend and reports transitions to the responder.
func (s *Stream) Connected() bool {
	up := s.backend.Connected()
	if up != s.connected {
		s.connected = up
		note := NoteDisconnected
		if up {
			note = NoteConnected
		}
		log.Info().Str("stream", s.name).Msg("stream." + note)
		s.notify(note)
	}
	return up
}

// ReadBegin returns the read budget for this tick.
func (s *Stream) ReadBegin() int {
	return s.backend.Available()
}

// Read takes one byte against the budget.
func (s *Stream) Read(afr *int) (byte, bool) {
	if *afr <= 0 {
		return 0, false
	}
	c, ok := s.backend.Get()
	if !ok {
		*afr = 0
		return 0, false
	}
	switch c {
	case ByteEnd:
		s.notify(NoteEnd)
	case ByteACK:
		s.notify(NoteRSVP)
	}
	*afr--
	return c, true
}

// WriteBegin returns the write budget for this tick: zero, or enough for at
// least one end-of-line sequence.
func (s *Stream) WriteBegin() int {
	afw := s.backend.AvailableForWrite()
	if afw < len(s.eol) {
		return 0
	}
	s.written = 0
	return afw
}

// WriteEnd closes a write transaction.
func (s *Stream) WriteEnd() {
	if s.written > 0 {
		observability.RecordStreamBytes(s.name, s.written)
		s.written = 0
	}
}

// WriteEOL writes the end-of-line sequence and returns its length, or 0 if
// the budget cannot hold it (the budget is then exhausted).
func (s *Stream) WriteEOL(afw *int) int {
	if *afw < len(s.eol) {
		*afw = 0
		return 0
	}
	for _, c := range s.eol {
		s.put(c)
	}
	*afw -= len(s.eol)
	s.clamp(afw)
	return len(s.eol)
}

// Write emits one byte against the budget. NUL and '\r' are dropped and
// '\n' becomes the stream's end-of-line sequence.
func (s *Stream) Write(c byte, afw *int) int {
	if c == 0 || c == '\r' || *afw <= 0 {
		return 0
	}
	if c == '\n' {
		return s.WriteEOL(afw)
	}
	s.put(c)
	*afw--
	s.clamp(afw)
	return 1
}

// clamp keeps a non-zero budget large enough for an end-of-line sequence.
func (s *Stream) clamp(afw *int) {
	if *afw < len(s.eol) {
		*afw = 0
	}
}

func (s *Stream) put(c byte) {
	if s.backend.Put(c) {
		s.written++
	}
}

func (s *Stream) notify(message string) {
	if s.responder != nil {
		s.responder.StreamNotification(s, message)
	}
}
