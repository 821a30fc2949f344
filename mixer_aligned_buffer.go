// mixer_aligned_buffer.go - SIMD-aligned scratch buffer allocation

package mixer

import "unsafe"

// DefaultAlign is the target SIMD alignment in bytes.
const DefaultAlign = 32

// AlignedBuffer holds a slice of T whose backing storage starts at an
// address that is a multiple of DefaultAlign. The oversized backing slice
// is retained so the GC keeps the whole allocation alive for as long as
// the aligned view is referenced; there is no separate free step and
// nothing to leak on any exit path, unlike the delta-before-pointer
// technique a manual allocator needs.
type AlignedBuffer[T any] struct {
	backing []T
	view    []T
}

// NewAlignedBuffer allocates an aligned buffer of n elements of T, aligned
// to DefaultAlign bytes.
func NewAlignedBuffer[T any](n int) *AlignedBuffer[T] {
	return NewAlignedBufferAligned[T](n, DefaultAlign)
}

// NewAlignedBufferAligned allocates an aligned buffer of n elements of T,
// aligned to the given byte boundary (must be a power of two).
func NewAlignedBufferAligned[T any](n int, align int) *AlignedBuffer[T] {
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		elemSize = 1
	}
	extra := (align + elemSize - 1) / elemSize
	backing := make([]T, n+extra)

	base := uintptr(unsafe.Pointer(&backing[0]))
	aligned := (base + uintptr(align-1)) &^ uintptr(align-1)
	offsetBytes := aligned - base
	offsetElems := int(offsetBytes) / elemSize

	return &AlignedBuffer[T]{
		backing: backing,
		view:    backing[offsetElems : offsetElems+n],
	}
}

// Acquire returns the aligned view. Valid for the lifetime of the
// AlignedBuffer; callers must not retain it past Release.
func (b *AlignedBuffer[T]) Acquire() []T {
	return b.view
}

// Release drops the aligned view and the backing allocation. Safe to call
// more than once.
func (b *AlignedBuffer[T]) Release() {
	b.view = nil
	b.backing = nil
}

// Len reports the aligned view's element count.
func (b *AlignedBuffer[T]) Len() int {
	return len(b.view)
}
