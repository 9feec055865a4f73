package shell

// maxArgs bounds the tokens of one line; a full input buffer holds at most
// this many single-byte tokens.
const maxArgs = BufferSize / 2

type span struct {
	start int
	end   int
}

// Args holds the tokens of one line. Tokens are separated by single spaces;
// double quotes group words into one token and are removed. Parsing rewrites
// the line buffer in place and does not allocate.
type Args struct {
	buf    []byte
	spans  [maxArgs]span
	n      int
	cursor int
}

// ParseArgs tokenizes line in place.
func ParseArgs(line []byte) Args {
	var a Args
	a.parse(line)
	return a
}

func (a *Args) parse(line []byte) {
	a.buf = line
	a.n = 0
	a.cursor = 0
	w, i := 0, 0
	for i < len(line) {
		for i < len(line) && line[i] == ' ' {
			i++
		}
		if i == len(line) {
			break
		}
		start := w
		quoted := false
		for i < len(line) {
			c := line[i]
			if c == ' ' && !quoted {
				break
			}
			i++
			if c == '"' {
				quoted = !quoted
				continue
			}
			line[w] = c
			w++
		}
		if a.n < len(a.spans) {
			a.spans[a.n] = span{start, w}
			a.n++
		}
	}
}

func (a *Args) Len() int {
	return a.n
}

// Bytes returns token i without copying; nil when out of range.
func (a *Args) Bytes(i int) []byte {
	if i < 0 || i >= a.n {
		return nil
	}
	s := a.spans[i]
	return a.buf[s.start:s.end]
}

// At returns token i, or "" when out of range.
func (a *Args) At(i int) string {
	return string(a.Bytes(i))
}

// Strings copies every token.
func (a *Args) Strings() []string {
	out := make([]string, a.n)
	for i := range out {
		out[i] = a.At(i)
	}
	return out
}

// First rewinds the cursor and reports whether there is any token.
func (a *Args) First() bool {
	a.cursor = 0
	return a.n > 0
}

// Next moves the cursor and reports whether it is still on a token.
func (a *Args) Next() bool {
	if a.cursor < a.n {
		a.cursor++
	}
	return a.cursor < a.n
}

// Current is the token under the cursor.
func (a *Args) Current() string {
	return a.At(a.cursor)
}

// Equal compares the token under the cursor with s.
func (a *Args) Equal(s string) bool {
	return a.cursor < a.n && string(a.Bytes(a.cursor)) == s
}
