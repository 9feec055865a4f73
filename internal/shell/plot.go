package shell

import (
	"strconv"

	"github.com/danmuck/multishell/internal/task"
)

// maxDataSets is the number of series one plot can overlay.
const maxDataSets = 4

// PlotTask renders up to four series of signed bytes as an ASCII chart, one
// character at a time. Series live in scratch buffers owned by the task
// until it completes.
type PlotTask struct {
	sets     [maxDataSets]*task.Scratch
	n        int
	xMax     int
	scale    int
	row      int
	rowFinal int
	col      int
	label    [4]byte

	pool *task.Pool[PlotTask]
	slot int
}

// Push adds a series; the task takes ownership of s.
func (p *PlotTask) Push(s *task.Scratch) bool {
	if p.n == maxDataSets {
		return false
	}
	p.sets[p.n] = s
	p.n++
	return true
}

func round(v, scale int) int {
	if v >= 0 {
		return (v + scale/2) / scale
	}
	return (v - scale/2) / scale
}

// prepare picks the vertical scale from the data range.
func (p *PlotTask) prepare() {
	first := true
	yMin, yMax := 0, 0
	p.xMax = -1
	for _, s := range p.sets[:p.n] {
		data := s.Bytes()
		if p.xMax < len(data)-1 {
			p.xMax = len(data) - 1
		}
		for _, b := range data {
			v := int(int8(b))
			switch {
			case first:
				first = false
				yMin, yMax = v, v
			case v < yMin:
				yMin = v
			case v > yMax:
				yMax = v
			}
		}
	}
	switch {
	case yMax-yMin > 100:
		p.scale = 5
	case yMax-yMin > 50:
		p.scale = 3
	default:
		p.scale = 1
	}
	p.row = round(yMax, p.scale)
	p.rowFinal = round(yMin, p.scale)
	p.col = 0
}

func (p *PlotTask) Advance(w task.Writer, afw *int) bool {
	if p.n == 0 || p.xMax < 0 {
		return true
	}
	for *afw > 0 {
		if p.col < len(p.label) {
			if p.row%10 != 0 {
				w.Write(' ', afw)
				p.col++
				continue
			}
			if p.col == 0 {
				p.setLabel(p.row * p.scale)
			}
			w.Write(p.label[p.col], afw)
			p.col++
			continue
		}
		x := p.col - len(p.label)
		if x > p.xMax {
			w.WriteEOL(afw)
			if p.row == p.rowFinal {
				return true
			}
			p.col = 0
			p.row--
			continue
		}
		w.Write(p.cell(x), afw)
		p.col++
	}
	return false
}

// setLabel right-aligns v in the four label columns.
func (p *PlotTask) setLabel(v int) {
	var digits [8]byte
	s := strconv.AppendInt(digits[:0], int64(v), 10)
	for i := range p.label {
		p.label[i] = ' '
	}
	if len(s) > len(p.label) {
		s = s[len(s)-len(p.label):]
	}
	copy(p.label[len(p.label)-len(s):], s)
}

func (p *PlotTask) cell(x int) byte {
	bg := byte(' ')
	switch {
	case x == 0 && p.row == 0:
		bg = '+'
	case x == 0:
		bg = '|'
	case p.row == 0:
		bg = '-'
	}
	hi := p.row*p.scale + p.scale/2
	lo := p.row*p.scale - p.scale/2
	for i, s := range p.sets[:p.n] {
		data := s.Bytes()
		if x >= len(data) {
			continue
		}
		if v := int(int8(data[x])); v >= lo && v <= hi {
			bg = 'a' + byte(i)
		}
	}
	return bg
}

// Release hands the series and the task back.
func (p *PlotTask) Release() {
	for i := range p.sets[:p.n] {
		p.sets[i].Release()
		p.sets[i] = nil
	}
	p.n = 0
	if p.pool != nil {
		p.pool.Return(p.slot)
	}
}

// Plot owns the single plot task of a session and its demo menu.
type Plot struct {
	options *OptionList
	pool    *task.Pool[PlotTask]
}

func NewPlot() *Plot {
	p := &Plot{
		options: NewOptionList("Plot Demo", "0 Single line", "1 Two lines", "2 Oscillation"),
	}
	p.pool = task.NewPool[PlotTask]("plot", 1, nil)
	for slot := 0; slot < p.pool.Size(); slot++ {
		t := p.pool.Item(slot)
		t.pool = p.pool
		t.slot = slot
	}
	return p
}

func (p *Plot) Options() *OptionList {
	return p.options
}

// Demo queues demo plot option on sh. Unknown options print the menu. It
// reports false when the plot task or its buffers are busy.
func (p *Plot) Demo(option int, sh *Shell) bool {
	if option < 0 || option >= p.options.Len() {
		return sh.List(p.options)
	}
	t, _, ok := p.pool.Checkout()
	if !ok {
		return false
	}
	if !p.fill(option, t, sh.Repository()) || t.n == 0 {
		t.Release()
		return false
	}
	t.prepare()
	if !sh.AddTask(t) {
		t.Release()
		return false
	}
	p.options.Select(option)
	return true
}

func (p *Plot) fill(option int, t *PlotTask, repo *task.Repository) bool {
	switch option {
	case 0:
		s, ok := repo.Scratch()
		if !ok {
			return false
		}
		for i := 0; i <= 60; i++ {
			s.AppendByte(byte(int8(-30 + i)))
		}
		t.Push(s)
	case 1:
		a, ok := repo.Scratch()
		if !ok {
			return false
		}
		t.Push(a)
		b, ok := repo.Scratch()
		if !ok {
			return false
		}
		t.Push(b)
		for i := 0; i <= 100; i++ {
			if i < 55 {
				a.AppendByte(byte(int8(-10 + i)))
			}
			b.AppendByte(byte(int8(-90 + i)))
		}
	case 2:
		for i := 0; i < maxDataSets; i++ {
			s, ok := repo.Scratch()
			if !ok {
				break
			}
			oscillate(s, i)
			t.Push(s)
		}
	}
	return true
}

// oscillate fills s with a damped oscillation; damping grows with i.
func oscillate(s *task.Scratch, i int) {
	pos, vel := int8(127), int8(0)
	for s.AppendByte(byte(pos)) {
		acc := int8(-int(pos)/12 - int(vel)/(1+2*i))
		vel += acc
		pos += vel
	}
}
