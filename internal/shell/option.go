package shell

import "github.com/danmuck/multishell/internal/task"

// Option is one menu entry, printed indented by three columns.
type Option struct {
	Description string
}

func (o *Option) PrintableCount() int {
	return 1
}

func (o *Option) Printable(int) (string, int) {
	return o.Description, 3
}

// OptionList is a titled menu; the selected entry is marked with '*'.
type OptionList struct {
	Description string
	options     []*Option
	selection   int
}

func NewOptionList(description string, options ...string) *OptionList {
	l := &OptionList{Description: description, selection: -1}
	for _, o := range options {
		l.Add(&Option{Description: o})
	}
	return l
}

func (l *OptionList) Add(o *Option) {
	l.options = append(l.options, o)
}

// Select ignores out-of-range indices.
func (l *OptionList) Select(i int) {
	if i >= 0 && i < len(l.options) {
		l.selection = i
	}
}

// Current is the selected option, or nil.
func (l *OptionList) Current() *Option {
	if l.selection < 0 {
		return nil
	}
	return l.options[l.selection]
}

func (l *OptionList) PrintableCount() int {
	return 1
}

func (l *OptionList) Printable(int) (string, int) {
	return l.Description, 0
}

func (l *OptionList) Len() int {
	return len(l.options)
}

func (l *OptionList) Item(i int) task.Printable {
	return l.options[i]
}

func (l *OptionList) Selection() int {
	return l.selection
}
