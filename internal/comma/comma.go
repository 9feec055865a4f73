package comma

import "math"

const (
	scratchLen = 16
	// maxFrameLen is the letter plus at most 10 digits.
	maxFrameLen = 11
)

// Command is one decoded or to-be-encoded frame.
type Command struct {
	Code  byte
	Value uint32
}

// Valid reports whether Code is an ASCII letter.
func (c Command) Valid() bool {
	return IsLetter(c.Code)
}

func (c Command) String() string {
	var buf [maxFrameLen + 1]byte
	return string(AppendCommand(buf[:0], c))
}

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// CodeName is Code as a one-letter string, or "" when Code is not a letter.
// It does not allocate.
func (c Command) CodeName() string {
	switch {
	case c.Code >= 'A' && c.Code <= 'Z':
		i := int(c.Code - 'A')
		return letters[i : i+1]
	case c.Code >= 'a' && c.Code <= 'z':
		i := 26 + int(c.Code-'a')
		return letters[i : i+1]
	}
	return ""
}

func IsLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Decoder accumulates one frame at a time. The zero value is ready to use.
type Decoder struct {
	buf [scratchLen]byte
	n   int
}

func (d *Decoder) Reset() {
	d.n = 0
}

// Pending reports whether a frame is partially accumulated.
func (d *Decoder) Pending() bool {
	return d.n > 0
}

// Push feeds one byte. It returns the command when c completes a frame. A
// letter always starts a fresh frame; any byte that cannot continue the
// current frame discards it silently.
func (d *Decoder) Push(c byte) (Command, bool) {
	switch {
	case IsLetter(c):
		d.buf[0] = c
		d.n = 1
	case isDigit(c):
		if d.n > 0 && d.n < maxFrameLen {
			d.buf[d.n] = c
			d.n++
		} else {
			d.n = 0
		}
	case c == ',' && d.n > 0:
		cmd, ok := d.finish()
		d.n = 0
		return cmd, ok
	default:
		d.n = 0
	}
	return Command{}, false
}

func (d *Decoder) finish() (Command, bool) {
	cmd := Command{Code: d.buf[0]}
	var v uint64
	for _, digit := range d.buf[1:d.n] {
		v = v*10 + uint64(digit-'0')
	}
	if v > math.MaxUint32 {
		return Command{}, false
	}
	cmd.Value = uint32(v)
	return cmd, true
}

// Digits returns the number of decimal digits the encoder emits for v; zero
// is encoded without digits.
func Digits(v uint32) int {
	n := 0
	for v > 0 {
		n++
		v /= 10
	}
	return n
}

// AppendCommand appends "<letter><digits>," to dst. Value 0 has no digits.
func AppendCommand(dst []byte, c Command) []byte {
	dst = append(dst, c.Code)
	if c.Value != 0 {
		var digits [10]byte
		i := len(digits)
		for v := c.Value; v > 0; v /= 10 {
			i--
			digits[i] = byte('0' + v%10)
		}
		dst = append(dst, digits[i:]...)
	}
	return append(dst, ',')
}
