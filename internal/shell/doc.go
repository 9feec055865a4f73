// Package shell implements one interactive session multiplexed over a
// stream: the comma protocol by default, switching to a line shell after ';'.
//
// Ownership boundary:
// - Shell: input state machine and the session's output Dispatcher
// - CommandList: ordered command table with the help and RSVP built-ins
// - Args: tokens of one completed line, parsed in place
// - OptionList and Plot: menu rendering and the ASCII plot task
//
// A Shell is driven by Update from a single goroutine.
package shell
