// Package buf provides Buffer, an append-only growable sequence with explicit
// length and capacity accounting.
//
// The zero Buffer is empty and ready to use; it owns no storage until the
// first Push. Growth follows a doubling policy: when an append does not fit,
// the new capacity is max(len+n, 2*cap), which keeps total copy cost linear in
// the number of elements pushed.
//
// Allocation failure is not recoverable: the Go runtime aborts the process on
// out-of-memory, and Buffer adds no recovery path of its own.
package buf

import (
	"fmt"
	"iter"
	"math"
)

// Buffer is a growable sequence of T.
//
// Elements at [0, Len()) are valid. Addresses returned by Ptr stay valid until
// the next call that grows the buffer.
type Buffer[T any] struct {
	data []T // len(data) == length, cap(data) == capacity
}

// Len returns the number of elements pushed since the last Release.
func (b *Buffer[T]) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Cap returns the number of allocated slots.
func (b *Buffer[T]) Cap() int {
	if b == nil {
		return 0
	}
	return cap(b.data)
}

// Push appends v and returns the new length.
func (b *Buffer[T]) Push(v T) int {
	b.Grow(1)
	b.data = append(b.data, v)
	return len(b.data)
}

// Grow makes room for n more elements without changing Len.
func (b *Buffer[T]) Grow(n int) {
	if n <= 0 {
		return
	}
	length := len(b.data)
	if n > math.MaxInt-length {
		panic(fmt.Sprintf("buf: capacity overflow: len=%d n=%d", length, n))
	}
	need := length + n
	if need <= cap(b.data) {
		return
	}
	b.realloc(nextCap(length, cap(b.data), n))
}

// realloc moves the elements into fresh storage of exactly newCap slots.
func (b *Buffer[T]) realloc(newCap int) {
	next := make([]T, len(b.data), newCap)
	copy(next, b.data)
	b.data = next
}

// nextCap implements the growth policy: max(len+n, 2*cap).
func nextCap(length, capacity, n int) int {
	need := length + n
	if capacity > math.MaxInt/2 {
		return math.MaxInt
	}
	return max(need, 2*capacity)
}

// At returns the element at index i. It panics if i is out of range.
func (b *Buffer[T]) At(i int) T {
	return b.data[b.check(i)]
}

// Ptr returns a pointer to the element at index i.
func (b *Buffer[T]) Ptr(i int) *T {
	return &b.data[b.check(i)]
}

func (b *Buffer[T]) check(i int) int {
	if i < 0 || i >= b.Len() {
		panic(fmt.Sprintf("buf: index out of range [%d] with length %d", i, b.Len()))
	}
	return i
}

// Slice returns a view of the valid elements. The view aliases the buffer and
// must not be retained past the next Push.
func (b *Buffer[T]) Slice() []T {
	if b == nil {
		return nil
	}
	return b.data
}

// All iterates over the elements in push order.
func (b *Buffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := range b.Len() {
			if !yield(i, b.data[i]) {
				return
			}
		}
	}
}

// Release drops the storage and returns the buffer to the empty state.
// Releasing an empty buffer is a no-op.
func (b *Buffer[T]) Release() {
	if b == nil {
		return
	}
	b.data = nil
}
