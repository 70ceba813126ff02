// Package buffer provides the immutable, aligned, cheaply-sliceable byte
// region that every Array and Layout segment is ultimately backed by.
package buffer

import (
	"fmt"
	"unsafe"
)

// Buffer is an immutable, reference-counted view over a byte region that is
// aligned to a runtime-declared power-of-two boundary. Slicing a Buffer
// never copies; the new Buffer shares the same backing array.
type Buffer struct {
	bytes     []byte
	alignment int
}

// New wraps raw bytes as a Buffer, declaring the alignment the caller
// already arranged for (e.g. via a page-aligned allocation or mmap). The
// declared alignment is not verified against the actual pointer value
// unless Validate is called; construction itself never fails.
func New(bytes []byte, alignment int) *Buffer {
	if alignment <= 0 {
		alignment = 1
	}
	return &Buffer{bytes: bytes, alignment: alignment}
}

// FromSlice wraps a byte slice with alignment 1 (no alignment guarantee).
func FromSlice(b []byte) *Buffer {
	return New(b, 1)
}

// Validate checks that the backing array's first byte actually satisfies
// the declared alignment. Buffers produced by Go's allocator are only
// guaranteed to be aligned to the type's natural alignment, so this is a
// best-effort check used at encoding boundaries that promise zero-copy
// hand-off.
func (b *Buffer) Validate() error {
	if len(b.bytes) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&b.bytes[0]))
	if addr%uintptr(b.alignment) != 0 {
		return fmt.Errorf("buffer: %w: address %#x not aligned to %d", ErrMisaligned, addr, b.alignment)
	}
	return nil
}

// Bytes returns the raw byte contents. Callers must not mutate the result.
func (b *Buffer) Bytes() []byte { return b.bytes }

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int { return len(b.bytes) }

// Alignment returns the declared alignment in bytes.
func (b *Buffer) Alignment() int { return b.alignment }

// Slice returns a new Buffer over bytes[start:start+length], sharing the
// same backing array. The declared alignment of the slice degrades to 1
// unless start is itself a multiple of the parent alignment.
func (b *Buffer) Slice(start, length int) (*Buffer, error) {
	if start < 0 || length < 0 || start+length > len(b.bytes) {
		return nil, fmt.Errorf("buffer: %w: slice [%d:%d] of length %d", ErrOutOfRange, start, start+length, len(b.bytes))
	}
	align := b.alignment
	if start%align != 0 {
		align = 1
	}
	return &Buffer{bytes: b.bytes[start : start+length], alignment: align}, nil
}

// sizeOf returns the size in bytes of one element of a fixed-width type,
// keyed by the same small set of widths the dtype package works with.
func sizeOf(width int) int { return width }

// AsTyped validates that the buffer can be reinterpreted as a sequence of
// fixed-width elements without copying: the declared alignment must be a
// multiple of the element's natural alignment, and the length must be an
// exact multiple of the element width.
func (b *Buffer) AsTyped(elemWidth int) error {
	if elemWidth <= 0 {
		return fmt.Errorf("buffer: %w: non-positive element width %d", ErrInvalidArgument, elemWidth)
	}
	if b.alignment%elemWidth != 0 {
		return fmt.Errorf("buffer: %w: alignment %d incompatible with element width %d", ErrMisaligned, b.alignment, elemWidth)
	}
	if len(b.bytes)%sizeOf(elemWidth) != 0 {
		return fmt.Errorf("buffer: %w: length %d not a multiple of %d", ErrTruncated, len(b.bytes), elemWidth)
	}
	return nil
}

// Builder accumulates bytes for a Buffer under construction. Builders are
// the only mutable variant in this package; Finish hands ownership of the
// backing array to the returned immutable Buffer.
type Builder struct {
	buf       []byte
	alignment int
}

// NewBuilder creates a Builder that will finalize into a Buffer declaring
// the given alignment. The caller is responsible for padding writes so the
// final length is consistent with that alignment if required downstream.
func NewBuilder(alignment int, sizeHint int) *Builder {
	if alignment <= 0 {
		alignment = 1
	}
	return &Builder{buf: make([]byte, 0, sizeHint), alignment: alignment}
}

// Write appends bytes to the builder.
func (b *Builder) Write(p []byte) { b.buf = append(b.buf, p...) }

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return len(b.buf) }

// Finish returns the accumulated bytes as an immutable Buffer. The Builder
// must not be reused afterward.
func (b *Builder) Finish() *Buffer {
	return &Buffer{bytes: b.buf, alignment: b.alignment}
}
