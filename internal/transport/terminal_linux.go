//go:build linux

package transport

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// Terminal is the local console: stdin in non-canonical mode without echo,
// stdout for output. The previous terminal settings come back on Close.
type Terminal struct {
	*Pipe
	fd    int
	saved *unix.Termios
}

func NewTerminal() *Terminal {
	return &Terminal{
		Pipe: NewPipe("terminal", os.Stdin, os.Stdout),
		fd:   int(os.Stdin.Fd()),
	}
}

// Begin switches stdin to raw input when it is a terminal, then starts the
// pumps. Piped input is used as is.
func (t *Terminal) Begin() (string, error) {
	if isatty.IsTerminal(uintptr(t.fd)) {
		saved, err := getTermios(t.fd)
		if err != nil {
			return "Terminal: unavailable", fmt.Errorf("terminal get attributes: %w", err)
		}
		raw := *saved
		raw.Lflag &^= unix.ICANON | unix.ECHO
		raw.Cc[unix.VMIN] = 1
		raw.Cc[unix.VTIME] = 0
		if err := setTermios(t.fd, &raw); err != nil {
			return "Terminal: unavailable", fmt.Errorf("terminal set attributes: %w", err)
		}
		t.saved = saved
	} else {
		log.Debug().Msg("transport.Terminal stdin is not a terminal")
	}
	status, err := t.Pipe.Begin()
	if err != nil {
		t.restore()
		return status, err
	}
	return "Terminal: " + status, nil
}

func (t *Terminal) restore() {
	if t.saved == nil {
		return
	}
	if err := setTermios(t.fd, t.saved); err != nil {
		log.Warn().Err(err).Msg("transport.Terminal restore failed")
	}
	t.saved = nil
}

// Close flushes output and restores the terminal. Stdin stays open, so a
// read blocked inside the pump ends with the process.
func (t *Terminal) Close() error {
	err := t.Pipe.shutdown(false)
	t.restore()
	return err
}
