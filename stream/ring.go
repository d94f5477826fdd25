package stream

import (
	"sync"
)

// RingBuffer keeps the most recent Cap values, oldest first.
// It is safe for concurrent use.
type RingBuffer[T any] struct {
	mu    sync.Mutex
	items []T
	// start indexes the oldest value.
	start int
	n     int
}

// NewRingBuffer returns an empty buffer holding at most size values.
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	return &RingBuffer[T]{items: make([]T, size)}
}

// Add appends value, dropping the oldest value when full.
func (rb *RingBuffer[T]) Add(value T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.n < len(rb.items) {
		rb.items[(rb.start+rb.n)%len(rb.items)] = value
		rb.n++
		return
	}
	rb.items[rb.start] = value
	rb.start = (rb.start + 1) % len(rb.items)
}

// AppendTo appends the buffered values to dst, oldest first.
func (rb *RingBuffer[T]) AppendTo(dst []T) []T {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	head := rb.items[rb.start:min(rb.start+rb.n, len(rb.items))]
	dst = append(dst, head...)
	return append(dst, rb.items[:rb.n-len(head)]...)
}

// Get returns a copy of the buffered values, oldest first.
func (rb *RingBuffer[T]) Get() []T {
	return rb.AppendTo(make([]T, 0, rb.Len()))
}

func (rb *RingBuffer[T]) Len() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.n
}

func (rb *RingBuffer[T]) Cap() int { return len(rb.items) }

func (rb *RingBuffer[T]) Full() bool {
	return rb.Len() == rb.Cap()
}

// First returns the oldest value, or the zero value when empty.
func (rb *RingBuffer[T]) First() (v T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.n == 0 {
		return v
	}
	return rb.items[rb.start]
}

// Last returns the newest value, or the zero value when empty.
func (rb *RingBuffer[T]) Last() (v T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.n == 0 {
		return v
	}
	return rb.items[(rb.start+rb.n-1)%len(rb.items)]
}

// Reset empties the buffer, keeping its storage.
func (rb *RingBuffer[T]) Reset() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	clear(rb.items)
	rb.start, rb.n = 0, 0
}
