package task

import (
	"testing"

	"github.com/danmuck/multishell/internal/testutil/testlog"
)

func TestPoolCheckoutUntilExhausted(t *testing.T) {
	testlog.Start(t)
	p := NewPool[int]("ints", 3, func(slot int, v *int) { *v = slot * 10 })
	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		v, slot, ok := p.Checkout()
		if !ok {
			t.Fatalf("checkout %d failed", i)
		}
		if *v != slot*10 {
			t.Fatalf("slot %d item got=%d want=%d", slot, *v, slot*10)
		}
		seen[slot] = true
	}
	if len(seen) != 3 || p.Free() != 0 {
		t.Fatalf("slots got=%v free=%d", seen, p.Free())
	}
	if _, _, ok := p.Checkout(); ok {
		t.Fatalf("checkout beyond size succeeded")
	}
}

func TestPoolReturnRejectsDoubleReturn(t *testing.T) {
	testlog.Start(t)
	p := NewPool[int]("ints", 2, nil)
	_, slot, _ := p.Checkout()
	if !p.CheckedOut(slot) {
		t.Fatalf("slot %d not marked checked out", slot)
	}
	if !p.Return(slot) {
		t.Fatalf("first return refused")
	}
	if p.Return(slot) {
		t.Fatalf("double return accepted")
	}
	if p.Return(-1) || p.Return(2) {
		t.Fatalf("out of range return accepted")
	}
	if p.Free() != 2 {
		t.Fatalf("free got=%d want=2", p.Free())
	}
}

func TestPoolHandsOutLowestSlotFirst(t *testing.T) {
	testlog.Start(t)
	p := NewPool[int]("ints", 4, nil)
	_, slot, _ := p.Checkout()
	if slot != 0 {
		t.Fatalf("first slot got=%d want=0", slot)
	}
	if p.Name() != "ints" || p.Size() != 4 {
		t.Fatalf("name/size got=%s/%d", p.Name(), p.Size())
	}
}
