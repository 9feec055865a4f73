package task

import "github.com/danmuck/multishell/internal/comma"

// OffsetString writes offset spaces followed by a string. The string is not
// copied and must outlive the task.
type OffsetString struct {
	s      string
	offset int
	pos    int
}

func (t *OffsetString) assign(s string, offset int) {
	if offset < 0 {
		offset = 0
	}
	t.s, t.offset, t.pos = s, offset, 0
}

func (t *OffsetString) Advance(w Writer, afw *int) bool {
	for *afw > 0 {
		if t.offset > 0 {
			w.Write(' ', afw)
			t.offset--
			continue
		}
		if t.pos < len(t.s) {
			w.Write(t.s[t.pos], afw)
			t.pos++
			continue
		}
		return true
	}
	return t.offset == 0 && t.pos == len(t.s)
}

// Buffer owns a fixed byte slice of its capacity class and writes a copy of
// the payload it was assigned.
type Buffer struct {
	data []byte
	pos  int
	end  int
}

func (t *Buffer) Capacity() int {
	return len(t.data)
}

// Len is the number of bytes still to be written.
func (t *Buffer) Len() int {
	return t.end - t.pos
}

// assign copies as much of b as fits and returns the count.
func (t *Buffer) assign(b []byte) int {
	n := copy(t.data, b)
	t.pos, t.end = 0, n
	return n
}

func (t *Buffer) Advance(w Writer, afw *int) bool {
	for *afw > 0 && t.pos < t.end {
		w.Write(t.data[t.pos], afw)
		t.pos++
	}
	return t.pos == t.end
}

// CommaTask writes one comma frame digit by digit.
type CommaTask struct {
	code   byte
	value  uint32
	digits int
}

func (t *CommaTask) assign(c comma.Command) {
	t.code = c.Code
	t.value = c.Value
	t.digits = comma.Digits(c.Value)
}

func (t *CommaTask) Advance(w Writer, afw *int) bool {
	for *afw > 0 {
		if t.code != 0 {
			w.Write(t.code, afw)
			t.code = 0
			continue
		}
		if t.digits > 0 {
			div := uint32(1)
			for i := 1; i < t.digits; i++ {
				div *= 10
			}
			d := t.value / div
			t.value -= d * div
			t.digits--
			w.Write(byte('0'+d), afw)
			continue
		}
		w.Write(',', afw)
		return true
	}
	return false
}

// Printable is anything that renders as a fixed number of lines, each with a
// left offset.
type Printable interface {
	PrintableCount() int
	// Printable returns fragment i and the number of spaces before it.
	Printable(i int) (string, int)
}

// PrintableList renders its own fragments, then every item in order. An item
// whose index equals Selection gets a '*' in the second column of its offset.
type PrintableList interface {
	Printable
	Len() int
	Item(i int) Printable
	Selection() int
}

// PrintableTask walks a PrintableList one byte at a time, ending every
// fragment with an end-of-line sequence.
type PrintableTask struct {
	list   PrintableList
	item   Printable
	iindex int
	pindex int
	pcount int
	ptr    string
	pos    int
	active bool
	offset int
}

func (t *PrintableTask) assign(l PrintableList) {
	*t = PrintableTask{
		list:   l,
		iindex: -1,
		pindex: -1,
		pcount: l.PrintableCount(),
	}
}

// fragment writes the next byte of the open fragment, closing it with EOL.
func (t *PrintableTask) fragment(w Writer, afw *int, marker bool) {
	if t.offset > 0 {
		if marker && t.offset == 2 {
			w.Write('*', afw)
		} else {
			w.Write(' ', afw)
		}
		t.offset--
		return
	}
	if t.pos >= len(t.ptr) {
		w.WriteEOL(afw)
		t.active = false
		return
	}
	w.Write(t.ptr[t.pos], afw)
	t.pos++
}

func (t *PrintableTask) open(p Printable, i int) {
	s, off := p.Printable(i)
	if off < 0 {
		off = 0
	}
	t.ptr, t.pos, t.offset, t.active = s, 0, off, true
}

func (t *PrintableTask) Advance(w Writer, afw *int) bool {
	if t.list == nil {
		return true
	}
	for *afw > 0 {
		// the list's own fragments come first
		if t.iindex < 0 && t.pindex < t.pcount {
			if !t.active {
				t.pindex++
				if t.pindex < t.pcount {
					t.open(t.list, t.pindex)
				}
				continue
			}
			t.fragment(w, afw, false)
			continue
		}
		if t.item == nil {
			t.iindex++
			if t.iindex >= t.list.Len() {
				return true
			}
			t.item = t.list.Item(t.iindex)
			if t.item == nil {
				return true
			}
			t.pcount = t.item.PrintableCount()
			t.pindex = -1
			t.active = false
			continue
		}
		if !t.active {
			t.pindex++
			if t.pindex >= t.pcount {
				t.item = nil
				continue
			}
			t.open(t.item, t.pindex)
			continue
		}
		t.fragment(w, afw, t.iindex == t.list.Selection())
	}
	return false
}
