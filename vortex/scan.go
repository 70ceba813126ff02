package vortex

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/expr"
	"github.com/vortexdb/vortex/internal/layout"
)

// ScanOptions selects what a Scan reads (spec.md §6's
// scan({columns?, predicate?, row_indices?})). A nil/empty Columns
// means every column; a nil Predicate means no filtering; a nil
// RowIndices means every row in [0, File row count).
type ScanOptions struct {
	Columns    [][]string
	Predicate  *expr.Expr
	RowIndices []uint64
}

// ArrayStream is the lazy sequence of Arrays a Scan produces, paired
// with the row range (in the file's own row space) each one covers —
// the Go shape of spec.md §6's ArrayStream.
type ArrayStream = layout.Seq

// Scan projects, filters, and iterates f per opts, returning a lazy
// ArrayStream (spec.md §6). Each correlation id tags the scan's log
// lines, grounded on the pack's uuid.New().String() request-tracing
// idiom.
func (f *File) Scan(ctx context.Context, opts ScanOptions) (ArrayStream, error) {
	scanID := uuid.New().String()
	log := f.logger.With(zap.String("scan_id", scanID))

	reader := f.root
	if len(opts.Columns) > 0 {
		projected, err := reader.Project(opts.Columns)
		if err != nil {
			return nil, newError(UnsupportedOperation, err, "projecting columns")
		}
		reader = projected
	}

	rows := layout.RowRange{Lo: 0, Hi: reader.Length()}
	if len(opts.RowIndices) > 0 {
		rows = indexBounds(opts.RowIndices)
	}

	log.Debug("scan started",
		zap.Uint64("row_lo", rows.Lo), zap.Uint64("row_hi", rows.Hi),
		zap.Bool("has_predicate", opts.Predicate != nil),
		zap.Int("row_indices", len(opts.RowIndices)))

	base := reader.Evaluate(ctx, rows, opts.Predicate)
	if opts.Predicate == nil && len(opts.RowIndices) == 0 {
		return base, nil
	}

	return postFilter(base, opts, log), nil
}

// indexBounds returns the smallest RowRange covering every index in
// indices, since Evaluate only accepts a contiguous row range; the
// individual rows are then picked out of the result by postFilter.
func indexBounds(indices []uint64) layout.RowRange {
	lo, hi := indices[0], indices[0]+1
	for _, i := range indices[1:] {
		if i < lo {
			lo = i
		}
		if i+1 > hi {
			hi = i + 1
		}
	}
	return layout.RowRange{Lo: lo, Hi: hi}
}

// postFilter applies opts.Predicate as a row mask and opts.RowIndices as
// a take, on top of the already layout-pruned chunks base yields — the
// two pieces of filtering internal/layout's statistics pruning cannot
// do itself (evaluating non-comparison expressions, and picking out
// individually named rows).
func postFilter(base ArrayStream, opts ScanOptions, log *zap.Logger) ArrayStream {
	var indexSet map[uint64]bool
	if len(opts.RowIndices) > 0 {
		indexSet = make(map[uint64]bool, len(opts.RowIndices))
		for _, i := range opts.RowIndices {
			indexSet[i] = true
		}
	}

	return func(yield func(layout.Chunk, error) bool) {
		for chunk, err := range base {
			if err != nil {
				yield(layout.Chunk{}, err)
				return
			}

			a := chunk.Array

			// Row-index selection runs first, against the chunk's original
			// row numbering — filtering by predicate afterward would have
			// already shifted row i away from chunk.Range.Lo+i.
			if indexSet != nil {
				var keep []int
				for i := 0; i < a.Length(); i++ {
					row := chunk.Range.Lo + uint64(i)
					if indexSet[row] {
						keep = append(keep, i)
					}
				}
				taken, err := array.TakeGeneric(a, keep)
				if err != nil {
					yield(layout.Chunk{}, err)
					return
				}
				a = taken
			}

			if opts.Predicate != nil {
				mask, err := expr.Evaluate(opts.Predicate, a)
				if err != nil {
					log.Warn("predicate evaluation failed", zap.Error(err))
					yield(layout.Chunk{}, err)
					return
				}
				a, err = array.FilterGeneric(a, mask)
				if err != nil {
					yield(layout.Chunk{}, err)
					return
				}
			}

			if a.Length() == 0 {
				continue
			}
			if !yield(layout.Chunk{Range: chunk.Range, Array: a}, nil) {
				return
			}
		}
	}
}
