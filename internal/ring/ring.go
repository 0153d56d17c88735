// Package ring implements a resizable circular history buffer.
//
// Pushes are O(1) and never allocate once the buffer is full. Capacity
// changes are O(n) in the current length; they happen rarely (an operator
// changing a window size) compared to pushes, which happen every cycle.
package ring

import (
	"iter"
	"slices"
)

// Ring is a fixed-capacity buffer that evicts its oldest element when full.
//
// A Ring is not safe for concurrent use. Owners guard every call with their
// own lock, so a reader never observes a resize in progress.
type Ring[T any] struct {
	elems []T
	// head is the index of the oldest element.
	head   int
	length int
}

// New returns an empty ring holding at most capacity elements.
// A capacity below 1 is treated as 1.
func New[T any](capacity int) *Ring[T] {
	return &Ring[T]{elems: make([]T, max(capacity, 1))}
}

// Cap returns the maximum number of elements.
func (r *Ring[T]) Cap() int { return len(r.elems) }

// Len returns the number of elements currently held.
func (r *Ring[T]) Len() int { return r.length }

// Push appends v, evicting the oldest element when the ring is full.
func (r *Ring[T]) Push(v T) {
	if r.length < len(r.elems) {
		r.elems[r.index(r.length)] = v
		r.length++
		return
	}
	r.elems[r.head] = v
	r.head = r.index(1)
}

// Latest returns the most recently pushed element.
func (r *Ring[T]) Latest() (T, bool) {
	if r.length == 0 {
		var zero T
		return zero, false
	}
	return r.elems[r.index(r.length-1)], true
}

// At returns the i-th element in chronological order (0 is the oldest).
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.length {
		panic("ring: index out of range")
	}
	return r.elems[r.index(i)]
}

// All iterates the elements from oldest to newest. Each call starts over at
// the current oldest element.
func (r *Ring[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := range r.length {
			if !yield(r.elems[r.index(i)]) {
				return
			}
		}
	}
}

// Values copies the elements from oldest to newest into a new slice.
func (r *Ring[T]) Values() []T {
	return r.AppendTo(make([]T, 0, r.length))
}

// AppendTo appends the elements from oldest to newest to dst.
func (r *Ring[T]) AppendTo(dst []T) []T {
	first := r.elems[r.head:min(r.head+r.length, len(r.elems))]
	dst = append(dst, first...)
	if rest := r.length - len(first); rest > 0 {
		dst = append(dst, r.elems[:rest]...)
	}
	return dst
}

// SetCapacity changes the maximum number of elements. When shrinking below
// the current length the oldest elements are dropped; growing keeps every
// element. A capacity below 1 is treated as 1.
//
// The backing slice is reused: elements are rotated in place so the oldest
// sits at index 0, then the slice is truncated or extended.
func (r *Ring[T]) SetCapacity(capacity int) {
	capacity = max(capacity, 1)
	if capacity == len(r.elems) {
		return
	}
	r.linearize()
	if r.length > capacity {
		copy(r.elems, r.elems[r.length-capacity:r.length])
		r.length = capacity
	}
	if capacity < len(r.elems) {
		clear(r.elems[capacity:])
		r.elems = r.elems[:capacity]
		return
	}
	r.elems = append(r.elems, make([]T, capacity-len(r.elems))...)
}

// linearize rotates the backing slice so the oldest element is at index 0.
// The head only moves once the ring is full, so a partially filled ring is
// already linear.
func (r *Ring[T]) linearize() {
	if r.head == 0 {
		return
	}
	slices.Reverse(r.elems[:r.head])
	slices.Reverse(r.elems[r.head:])
	slices.Reverse(r.elems)
	r.head = 0
}

// Reset drops every element while keeping the capacity.
func (r *Ring[T]) Reset() {
	clear(r.elems)
	r.head, r.length = 0, 0
}

func (r *Ring[T]) index(offset int) int {
	return (r.head + offset) % len(r.elems)
}
