package task

// Writer is the output side of a stream. Both calls consume from *afw and
// never write more than it allows.
type Writer interface {
	Write(c byte, afw *int) int
	WriteEOL(afw *int) int
}

// Task is one unit of pending output. Advance writes as much as the budget
// allows and returns true once everything has been written; a false return
// means the task resumes from the same place on the next call.
type Task interface {
	Advance(w Writer, afw *int) bool
}

// Releaser is implemented by tasks that are not drawn from a Repository pool
// and need to hand resources back when they complete.
type Releaser interface {
	Release()
}

// Kind labels tasks in metrics and logs.
type Kind string

const (
	KindOffset    Kind = "offset"
	KindBuffer    Kind = "buffer"
	KindPrintable Kind = "printable"
	KindComma     Kind = "comma"
	KindCustom    Kind = "custom"
)
