//go:build !linux

package transport

// Terminal and Serial need Linux termios; elsewhere they report
// ErrUnsupported from Begin.

type Terminal struct {
	*Pipe
}

func NewTerminal() *Terminal {
	return &Terminal{Pipe: NewPipe("terminal", nil, nil)}
}

func (t *Terminal) Begin() (string, error) {
	return "Terminal: unsupported", ErrUnsupported
}

type Serial struct {
	*Pipe
	path string
}

func NewSerial(path string, baud int) *Serial {
	return &Serial{Pipe: NewPipe(path, nil, nil), path: path}
}

func (s *Serial) Path() string {
	return s.path
}

func (s *Serial) Open() error {
	return ErrUnsupported
}

func (s *Serial) Begin() (string, error) {
	return s.path + ": unsupported", ErrUnsupported
}
