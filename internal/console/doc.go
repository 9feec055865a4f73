// Package console holds the two host applications of the command-line tool.
//
// Ownership boundary:
// - LocalShell: a shell session on the local terminal with demo commands
// - Passthrough: a byte bridge between the terminal and a device that can
//   inject commands and exit once the device acknowledges them
//
// Both are driven by a timer.Timer on one goroutine.
package console
