// Package transport provides the host-side stream backends used by the
// command-line tool and the tests.
//
// Ownership boundary:
// - Loopback: in-memory backend driven entirely by the caller
// - Pipe: wraps an io.Reader/io.Writer pair with pump goroutines; the engine
//   side talks to the pumps only through bounded lock-free SPSC queues
// - Terminal and Serial: Linux termios setup on top of Pipe
// - backoff: retry delays for opening devices
//
// Every Backend method is non-blocking. Only the pump goroutines block.
package transport
