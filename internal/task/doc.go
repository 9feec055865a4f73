// Package task owns pending output: the task variants, the fixed pools they
// are drawn from, and the per-session queue that drains them against a
// stream's write budget.
//
// Ownership boundary:
// - Pool: arena of fixed slots with a free list of indices
// - Repository: the engine-wide set of pools, built once and shared by sessions
// - Queue: FIFO of checked-out tasks plus pending ACK/EOL flags
// - Dispatcher: the enqueue surface a session exposes to its handlers
//
// A task is either free in its pool or queued in exactly one Queue. It goes
// back to its pool when Advance reports completion; queued tasks cannot be
// cancelled.
package task
