package ring

import "fmt"

// Buffer is a fixed-capacity circular sample store with independent
// read and write cursors. It serves two roles: a rolling history
// recorder (write-heavy, reads aligned via OpenWindow) and a loop
// content store (filled once, read cyclically).
//
// All operations index modulo the current logical length, which is set
// by Resize and never exceeds the capacity fixed at construction. The
// backing storage is allocated exactly once, so Resize and all other
// operations are allocation-free.
type Buffer struct {
	data     []float64
	length   int
	readPos  int
	writePos int
}

// New returns a buffer with the given fixed capacity. The logical
// length starts equal to the capacity.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring capacity must be > 0: %d", capacity)
	}
	return &Buffer{
		data:   make([]float64, capacity),
		length: capacity,
	}, nil
}

// Len returns the current logical length.
func (b *Buffer) Len() int {
	return b.length
}

// Cap returns the fixed capacity of the backing storage.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Write stores sample at the write cursor and advances it by one,
// wrapping at the logical length.
func (b *Buffer) Write(sample float64) {
	b.data[b.writePos] = sample
	b.writePos++
	if b.writePos >= b.length {
		b.writePos = 0
	}
}

// Read returns the sample at the read cursor and advances it by one,
// wrapping at the logical length. Repeated reads traverse the stored
// content in circular order indefinitely.
func (b *Buffer) Read() float64 {
	sample := b.data[b.readPos]
	b.readPos++
	if b.readPos >= b.length {
		b.readPos = 0
	}
	return sample
}

// Resize sets the logical length to n, fills any newly exposed storage
// with fill, and resets both cursors to 0. n is clamped to [1, Cap];
// callers are expected to stay within the provisioned capacity.
func (b *Buffer) Resize(n int, fill float64) {
	if n < 1 {
		n = 1
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	for i := b.length; i < n; i++ {
		b.data[i] = fill
	}
	b.length = n
	b.readPos = 0
	b.writePos = 0
}

// OpenWindow repositions the read cursor window samples behind the
// current write cursor, leaving the write cursor untouched. The next
// window reads then replay the most recently written window samples.
// window is clamped to the logical length.
func (b *Buffer) OpenWindow(window int) {
	if window > b.length {
		window = b.length
	}
	start := b.writePos - window
	if start < 0 {
		start += b.length
	}
	b.readPos = start
}

// Smooth blends depth samples starting at the read cursor with their
// immediate circular predecessors using an equal-weight average. Used
// on loop content to soften the discontinuity at the loop seam. depth
// is capped to the logical length; depth 0 leaves the content
// unchanged.
func (b *Buffer) Smooth(depth int) {
	if depth > b.length {
		depth = b.length
	}
	offset := b.readPos + b.length
	for i := offset; i < offset+depth; i++ {
		current := i % b.length
		previous := (i - 1) % b.length
		b.data[current] = 0.5 * (b.data[current] + b.data[previous])
	}
}

// Reset zeroes the stored content and returns both cursors to 0. The
// logical length is unchanged.
func (b *Buffer) Reset() {
	for i := range b.data {
		b.data[i] = 0
	}
	b.readPos = 0
	b.writePos = 0
}
