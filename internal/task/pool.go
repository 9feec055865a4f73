package task

// Pool is a fixed arena of T. Checked-out slots are tracked by index; the
// pool never grows.
type Pool[T any] struct {
	name  string
	items []T
	free  []int
	out   []bool
}

// NewPool allocates n slots. init, if set, runs once per slot.
func NewPool[T any](name string, n int, init func(slot int, item *T)) *Pool[T] {
	if n < 0 {
		n = 0
	}
	p := &Pool[T]{
		name:  name,
		items: make([]T, n),
		free:  make([]int, n),
		out:   make([]bool, n),
	}
	for i := range p.items {
		if init != nil {
			init(i, &p.items[i])
		}
		// lowest slot is handed out first
		p.free[i] = n - 1 - i
	}
	return p
}

func (p *Pool[T]) Name() string {
	return p.name
}

func (p *Pool[T]) Size() int {
	return len(p.items)
}

func (p *Pool[T]) Free() int {
	return len(p.free)
}

// Checkout hands out a free slot, or fails immediately when none is left.
func (p *Pool[T]) Checkout() (*T, int, bool) {
	n := len(p.free)
	if n == 0 {
		return nil, -1, false
	}
	slot := p.free[n-1]
	p.free = p.free[:n-1]
	p.out[slot] = true
	return &p.items[slot], slot, true
}

// Return puts slot back. Returning a slot that is not checked out is refused.
func (p *Pool[T]) Return(slot int) bool {
	if slot < 0 || slot >= len(p.out) || !p.out[slot] {
		return false
	}
	p.out[slot] = false
	p.free = append(p.free, slot)
	return true
}

// CheckedOut reports whether slot is currently owned by a caller.
func (p *Pool[T]) CheckedOut(slot int) bool {
	return slot >= 0 && slot < len(p.out) && p.out[slot]
}

// Item gives access to a slot regardless of state; used by owners that hold
// a slot index.
func (p *Pool[T]) Item(slot int) *T {
	return &p.items[slot]
}
