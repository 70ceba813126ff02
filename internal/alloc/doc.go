// Package alloc provides space allocation management for writing segment-area
// byte layouts.
//
// When writing a Vortex file, each segment's bytes must be placed at a
// specific offset in the segment area ahead of the footer. This package
// manages the allocation of those offsets to prevent overlapping writes and
// track the area's growth, the same append-only/aligned allocation shape
// the pack uses for placing file-format structures at file offsets.
//
// # Allocator
//
// The [Allocator] type provides thread-safe space management with the following
// features:
//
//   - Append-only allocation: New allocations are placed at the current
//     end-of-file address, which is then advanced.
//   - Aligned allocation: Allocations can be aligned to specific boundaries
//     (e.g., 8-byte alignment for object headers).
//   - Allocation tracking: All allocations are recorded for debugging and
//     validation purposes.
//   - Free space tracking: Freed blocks are tracked for potential future
//     space reuse (not yet implemented).
//
// # Usage
//
// Create an allocator with a base address (typically 0, the start of the segment area):
//
//	alloc := alloc.New(0) // Start of the segment area
//	addr := alloc.Alloc(1024) // Allocate 1024 bytes
//	alignedAddr := alloc.AllocAligned(512, 8) // 8-byte aligned allocation
//
// The allocator can be converted to a simple function for compatibility:
//
//	allocFunc := alloc.AllocFunc()
//	addr := allocFunc(256)
package alloc
