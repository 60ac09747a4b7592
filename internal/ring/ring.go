// SPDX-License-Identifier: EPL-2.0

// Package ring implements the single-producer/single-consumer buffer that
// carries line audio between two ports.
//
// Exactly one goroutine may call the producer methods (Write) and exactly
// one goroutine may call the consumer methods (Read, Peek, Discard,
// DiscardAll). Available, Free and Capacity may be called from either side.
// No method locks or allocates.
package ring

import (
	"math/bits"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Buffer is a lock-free ring of interleaved float32 frames.
type Buffer struct {
	data     []float32
	channels int
	size     uint64 // capacity in frames, power of two
	mask     uint64

	_     cpu.CacheLinePad
	write atomic.Uint64 // frames ever written
	_     cpu.CacheLinePad
	read  atomic.Uint64 // frames ever consumed
	_     cpu.CacheLinePad
}

// New allocates a buffer holding at least frames frames of channels
// interleaved samples. Capacity is rounded up to a power of two.
func New(frames, channels int) *Buffer {
	if frames < 1 {
		frames = 1
	}
	if channels < 1 {
		channels = 1
	}

	size := uint64(1) << bits.Len64(uint64(frames-1))

	return &Buffer{
		data:     make([]float32, size*uint64(channels)),
		channels: channels,
		size:     size,
		mask:     size - 1,
	}
}

func (b *Buffer) Channels() int { return b.channels }
func (b *Buffer) Capacity() int { return int(b.size) }

// Available returns the frames ready to be consumed.
func (b *Buffer) Available() int {
	return int(b.write.Load() - b.read.Load())
}

// Free returns the frames that can be written without overflowing.
func (b *Buffer) Free() int {
	return int(b.size) - b.Available()
}

// Write copies as many whole frames of src as fit and returns how many
// were written. Frames that do not fit are dropped. Producer only.
func (b *Buffer) Write(src []float32) int {
	w := b.write.Load()
	r := b.read.Load()

	n := min(uint64(len(src)/b.channels), b.size-(w-r))
	if n == 0 {
		return 0
	}

	b.copyIn(w, src[:n*uint64(b.channels)])
	b.write.Store(w + n)

	return int(n)
}

// Read moves up to len(dst)/channels frames into dst. Consumer only.
func (b *Buffer) Read(dst []float32) int {
	n := b.Peek(dst)
	if n > 0 {
		b.read.Add(uint64(n))
	}

	return n
}

// Peek copies up to len(dst)/channels frames into dst without consuming
// them. Consumer only.
func (b *Buffer) Peek(dst []float32) int {
	r := b.read.Load()
	w := b.write.Load()

	n := min(uint64(len(dst)/b.channels), w-r)
	if n == 0 {
		return 0
	}

	b.copyOut(r, dst[:n*uint64(b.channels)])

	return int(n)
}

// Discard drops up to frames frames and returns how many were dropped.
// Consumer only.
func (b *Buffer) Discard(frames int) int {
	if frames <= 0 {
		return 0
	}

	r := b.read.Load()
	n := min(uint64(frames), b.write.Load()-r)
	b.read.Store(r + n)

	return int(n)
}

// DiscardAll drops everything written so far. Consumer only.
func (b *Buffer) DiscardAll() int {
	r := b.read.Load()
	w := b.write.Load()
	b.read.Store(w)

	return int(w - r)
}

func (b *Buffer) copyIn(pos uint64, src []float32) {
	start := int(pos&b.mask) * b.channels
	n := copy(b.data[start:], src)
	if n < len(src) {
		copy(b.data, src[n:])
	}
}

func (b *Buffer) copyOut(pos uint64, dst []float32) {
	start := int(pos&b.mask) * b.channels
	n := copy(dst, b.data[start:])
	if n < len(dst) {
		copy(dst[n:], b.data)
	}
}
