// Package layout implements the Layout tree and LayoutReader described in
// spec.md §4.7: the addressing structure that sits between a file's
// SegmentMap and its logical Array data.
//
// A Layout is a small tuple — (vtable, dtype, length, metadata, children,
// segments) — built from one of three vtables:
//
//   - [VTableFlat]: a serialized Array occupying one or more segments, no
//     children. Grounded on the teacher's Contiguous layout handler: a
//     single address-and-size block read, generalized here from a raw
//     file offset to segment-id addressing via internal/segment.
//   - [VTableStruct]: dtype must be a Struct; children[i] is the layout
//     for field i; every child has the same length as its parent.
//   - [VTableChunked]: N row-wise chunks plus an optional (N+1)-th
//     statistics child, itself a FlatLayout over a Struct of per-field
//     min/max/null_count/true_count/is_sorted/is_constant columns.
//
// [Reader] is the per-node LayoutReader: Project narrows a reader to a
// set of field paths without touching unselected columns' segments;
// Evaluate walks a row-range lazily (as an iter.Seq2 of row-addressed
// Array chunks), pruning ChunkedLayout children against their statistics
// child before any row-chunk segment is fetched. [NewReader] dispatches
// on vtable via the process-wide [Registry], the same indirection
// internal/array's Registry applies to encodings (spec.md §4.6 covers
// both under one "process-wide map from encoding-id (and layout-id) to
// vtable").
package layout
