// Package stream owns the non-blocking byte contract between a shell
// session and a transport backend.
//
// Ownership boundary:
// - per-tick read/write budgets (AFR/AFW)
// - end-of-line translation on output
// - liveness tracking and responder notifications
//
// Backends (UART, USB-CDC, radio links, terminals, loopbacks) implement
// Backend and are driven only through Stream.
package stream
