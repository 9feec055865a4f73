//go:build linux

package transport

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// Serial is a tty device opened raw, 8N1, without modem control.
type Serial struct {
	*Pipe
	path string
	baud int
	file *os.File
}

func NewSerial(path string, baud int) *Serial {
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &Serial{path: path, baud: baud}
}

func (s *Serial) Path() string {
	return s.path
}

// Open configures the device and wraps it in a Pipe. It is separate from
// Begin so that callers can retry it with backoff.
func (s *Serial) Open() error {
	if s.file != nil {
		return nil
	}
	fd, err := unix.Open(s.path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("serial open %s: %w", s.path, err)
	}
	t, err := getTermios(fd)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("serial get attributes %s: %w", s.path, err)
	}
	makeRaw(t)
	if err := setLine(t, s.baud); err != nil {
		unix.Close(fd)
		return err
	}
	if err := setTermios(fd, t); err != nil {
		unix.Close(fd)
		return fmt.Errorf("serial set attributes %s: %w", s.path, err)
	}
	// the fd stays non-blocking so the runtime poller can interrupt reads on Close
	s.file = os.NewFile(uintptr(fd), s.path)
	s.Pipe = NewPipe(s.path, s.file, s.file)
	log.Info().Str("device", s.path).Int("baud", s.baud).Msg("transport.Serial.Open")
	return nil
}

func (s *Serial) Begin() (string, error) {
	if err := s.Open(); err != nil {
		return s.path + ": unavailable", err
	}
	status, err := s.Pipe.Begin()
	return fmt.Sprintf("%s @ %d: %s", s.path, s.baud, status), err
}

func (s *Serial) Connected() bool {
	return s.Pipe != nil && s.Pipe.Connected()
}

func (s *Serial) Update() {
	if s.Pipe != nil {
		s.Pipe.Update()
	}
}

func (s *Serial) Available() int {
	if s.Pipe == nil {
		return 0
	}
	return s.Pipe.Available()
}

func (s *Serial) AvailableForWrite() int {
	if s.Pipe == nil {
		return 0
	}
	return s.Pipe.AvailableForWrite()
}

func (s *Serial) Get() (byte, bool) {
	if s.Pipe == nil {
		return 0, false
	}
	return s.Pipe.Get()
}

func (s *Serial) Put(c byte) bool {
	return s.Pipe != nil && s.Pipe.Put(c)
}

func (s *Serial) Close() error {
	if s.Pipe == nil {
		return nil
	}
	return s.Pipe.Close()
}
