package layout

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/expr"
	"github.com/vortexdb/vortex/internal/segment"
)

// Chunk is one element of a Reader's lazy Array sequence: a materialized
// Array paired with the row range (in the reader's own row space) it
// covers.
type Chunk struct {
	Range RowRange
	Array *array.Array
}

// Seq is the lazy sequence Evaluate returns (spec.md §4.7: "every reader
// supports evaluate(row_range, expression) -> lazy sequence of Arrays").
// A non-nil error halts the sequence; ranging code must stop consuming
// once it observes one.
type Seq = iter.Seq2[Chunk, error]

// Reader is a LayoutReader: a Layout bound to a SegmentSource. One Reader
// exists per layout node (spec.md §4.7).
type Reader interface {
	DType() *dtype.DType
	Length() uint64

	// Project returns a Reader that, when evaluated, reads only segments
	// belonging to the named field paths. An empty paths selects every
	// field (returns the receiver unchanged for leaves).
	Project(paths [][]string) (Reader, error)

	// Evaluate returns the lazy sequence of Array chunks covering rows ∩
	// [0, Length()). filter may be nil; when non-nil it is used only for
	// statistics-based chunk pruning, never to mask rows directly — row
	// masking against a materialized Array is the caller's job via
	// internal/expr.Evaluate and internal/compute.
	Evaluate(ctx context.Context, rows RowRange, filter *expr.Expr) Seq
}

// ReaderFactory constructs a Reader for a layout of a specific vtable.
type ReaderFactory func(l *Layout, src segment.Source) (Reader, error)

// VTable associates a VTableID with the factory that reads it, the
// layout-side counterpart to array.Encoding (spec.md §4.6).
type VTable struct {
	ID        VTableID
	Name      string
	NewReader ReaderFactory
}

// Registry is the process-wide map from layout-id to vtable named in
// spec.md §4.6, mirroring internal/array.Registry's shape: built-ins are
// pre-registered and cannot be overridden, and Register is called before
// any file is opened. Unlike array.Registry, no id can be registered twice.
type Registry struct {
	mu     sync.RWMutex
	byID   map[VTableID]VTable
	sealed bool
}

// NewRegistry returns a Registry pre-populated with the three built-in
// vtables (Flat, Struct, Chunked).
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[VTableID]VTable)}
	for _, v := range builtinVTables() {
		r.byID[v.ID] = v
	}
	r.sealed = true
	return r
}

// Global is the process-wide layout Registry, analogous to array.Global.
var Global = NewRegistry()

// Register adds a custom vtable. It rejects any id that is already
// registered, built-in or user-registered, with ErrDuplicateVTable.
func (r *Registry) Register(v VTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[v.ID]; exists {
		return fmt.Errorf("layout: Register: id %s: %w", v.ID, ErrDuplicateVTable)
	}
	r.byID[v.ID] = v
	return nil
}

// Lookup resolves id to its vtable.
func (r *Registry) Lookup(id VTableID) (VTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	return v, ok
}

func builtinVTables() []VTable {
	return []VTable{
		{ID: VTableFlat, Name: "vortex.layout.flat", NewReader: func(l *Layout, src segment.Source) (Reader, error) {
			return newFlatReader(l, src), nil
		}},
		{ID: VTableStruct, Name: "vortex.layout.struct", NewReader: func(l *Layout, src segment.Source) (Reader, error) {
			return newStructReader(l, src)
		}},
		{ID: VTableChunked, Name: "vortex.layout.chunked", NewReader: func(l *Layout, src segment.Source) (Reader, error) {
			return newChunkedReader(l, src)
		}},
	}
}

// NewReader constructs the Reader for l, dispatching through Global.
func NewReader(l *Layout, src segment.Source) (Reader, error) {
	vt, ok := Global.Lookup(l.vtable)
	if !ok {
		return nil, fmt.Errorf("layout: NewReader: %w: %s", ErrUnknownLayout, l.vtable)
	}
	return vt.NewReader(l, src)
}
