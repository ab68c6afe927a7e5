package buf

import (
	"testing"
)

func TestBufferZeroValue(t *testing.T) {
	var ints Buffer[int]
	if ints.Len() != 0 || ints.Cap() != 0 {
		t.Fatalf("zero buffer: len=%d cap=%d", ints.Len(), ints.Cap())
	}
	if ints.Slice() != nil {
		t.Fatalf("zero buffer must not own storage")
	}

	var nilBuf *Buffer[int]
	if nilBuf.Len() != 0 || nilBuf.Cap() != 0 {
		t.Fatalf("nil buffer must report empty")
	}
	nilBuf.Release()
}

func TestBufferPushPreservesOrder(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 17, 1024} {
		var ints Buffer[int]
		for i := range n {
			if got := ints.Push(i); got != i+1 {
				t.Fatalf("n=%d: Push returned %d, want %d", n, got, i+1)
			}
		}
		if ints.Len() != n {
			t.Fatalf("n=%d: len=%d", n, ints.Len())
		}
		if ints.Cap() < n {
			t.Fatalf("n=%d: cap=%d < len", n, ints.Cap())
		}
		for i := range n {
			if ints.At(i) != i {
				t.Fatalf("n=%d: At(%d)=%d", n, i, ints.At(i))
			}
		}
		count := 0
		for i, v := range ints.All() {
			if v != i {
				t.Fatalf("All yielded %d at %d", v, i)
			}
			count++
		}
		if count != n {
			t.Fatalf("All yielded %d elements, want %d", count, n)
		}
	}
}

func TestBufferGrowthPolicy(t *testing.T) {
	var b Buffer[byte]

	b.Push('a')
	if b.Cap() != 1 {
		t.Fatalf("first growth should allocate exactly 1 slot, got %d", b.Cap())
	}
	b.Push('b')
	if b.Cap() != 2 {
		t.Fatalf("cap after 2 pushes = %d, want 2", b.Cap())
	}
	b.Push('c')
	if b.Cap() != 4 {
		t.Fatalf("cap after 3 pushes = %d, want 4", b.Cap())
	}

	// запрос больше удвоения выигрывает
	b.Grow(10)
	if b.Cap() != 13 {
		t.Fatalf("Grow(10) at len 3: cap=%d, want 13", b.Cap())
	}
	if b.Len() != 3 {
		t.Fatalf("Grow must not change len, got %d", b.Len())
	}

	before := b.Cap()
	b.Grow(0)
	b.Grow(-5)
	if b.Cap() != before {
		t.Fatalf("non-positive Grow changed cap %d -> %d", before, b.Cap())
	}
}

func TestBufferCapNeverShrinks(t *testing.T) {
	var b Buffer[int]
	prev := 0
	for i := range 200 {
		b.Push(i)
		if b.Cap() < prev {
			t.Fatalf("cap shrank from %d to %d", prev, b.Cap())
		}
		prev = b.Cap()
	}
}

func TestBufferPtrStableUntilGrowth(t *testing.T) {
	var b Buffer[int]
	b.Grow(4)
	b.Push(1)
	p := b.Ptr(0)
	b.Push(2)
	b.Push(3)
	*p = 42
	if b.At(0) != 42 {
		t.Fatalf("pointer into buffer lost before growth")
	}
}

func TestBufferRelease(t *testing.T) {
	var b Buffer[string]
	b.Push("x")
	b.Push("y")
	b.Release()
	if b.Len() != 0 || b.Cap() != 0 {
		t.Fatalf("after release: len=%d cap=%d", b.Len(), b.Cap())
	}
	b.Release()
	if b.Len() != 0 || b.Cap() != 0 {
		t.Fatalf("double release changed state")
	}

	b.Push("z")
	if b.Len() != 1 || b.At(0) != "z" {
		t.Fatalf("buffer unusable after release")
	}
}

func TestBufferAtOutOfRangePanics(t *testing.T) {
	var b Buffer[int]
	b.Push(1)
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("At(1) on len 1 must panic")
		}
	}()
	_ = b.At(1)
}
