package layout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/expr"
	"github.com/vortexdb/vortex/internal/segment"
)

// statsCache memoizes a ChunkedLayout's statistics-child load at most
// once (spec.md §5: "memoised per LayoutReader with at-most-once load;
// concurrent callers wait on the in-flight load"). Readers produced by
// Project from a common root share one cache, since projection never
// changes which segments the statistics child itself needs.
type statsCache struct {
	once sync.Once
	arr  *array.Array
	err  error
}

// chunkedReader is the ChunkedLayout LayoutReader: N row-chunk readers
// plus an optional, lazily-loaded statistics reader used only for
// pruning (spec.md §4.7's pruning algorithm).
type chunkedReader struct {
	dt           *dtype.DType
	length       uint64
	children     []Reader
	offsets      []uint64 // len(children)+1, cumulative row offsets
	statsReader  Reader
	cache        *statsCache
}

func newChunkedReader(l *Layout, src segment.Source) (*chunkedReader, error) {
	rowChunks := l.rowChunks()
	children := make([]Reader, len(rowChunks))
	offsets := make([]uint64, len(rowChunks)+1)
	for i, c := range rowChunks {
		cr, err := NewReader(c, src)
		if err != nil {
			return nil, err
		}
		children[i] = cr
		offsets[i+1] = offsets[i] + c.length
	}

	var statsReader Reader
	if sc := l.statsChild(); sc != nil {
		sr, err := NewReader(sc, src)
		if err != nil {
			return nil, err
		}
		statsReader = sr
	}

	return &chunkedReader{
		dt:          l.dt,
		length:      l.length,
		children:    children,
		offsets:     offsets,
		statsReader: statsReader,
		cache:       &statsCache{},
	}, nil
}

func (r *chunkedReader) DType() *dtype.DType { return r.dt }
func (r *chunkedReader) Length() uint64      { return r.length }

// Project pushes the projection into every row chunk; the statistics
// reader and cache are shared unchanged, since pruning needs every
// referenced field's statistics regardless of which columns the caller
// ultimately wants materialized.
func (r *chunkedReader) Project(paths [][]string) (Reader, error) {
	children := make([]Reader, len(r.children))
	for i, c := range r.children {
		pc, err := c.Project(paths)
		if err != nil {
			return nil, err
		}
		children[i] = pc
	}
	var dt *dtype.DType
	if len(children) > 0 {
		dt = children[0].DType()
	} else {
		dt = r.dt
	}
	return &chunkedReader{
		dt:          dt,
		length:      r.length,
		children:    children,
		offsets:     r.offsets,
		statsReader: r.statsReader,
		cache:       r.cache,
	}, nil
}

func (r *chunkedReader) loadStats(ctx context.Context) (*array.Array, error) {
	r.cache.once.Do(func() {
		full := RowRange{0, r.statsReader.Length()}
		var pieces []*array.Array
		for chunk, err := range r.statsReader.Evaluate(ctx, full, nil) {
			if err != nil {
				r.cache.err = err
				return
			}
			pieces = append(pieces, chunk.Array)
		}
		if len(pieces) == 0 {
			r.cache.err = fmt.Errorf("layout: chunkedReader: %w", ErrStatisticsMissing)
			return
		}
		if len(pieces) == 1 {
			r.cache.arr = pieces[0]
			return
		}
		r.cache.arr, r.cache.err = array.NewChunked(r.statsReader.DType(), pieces)
	})
	return r.cache.arr, r.cache.err
}

type candidate struct {
	idx int
	rng RowRange // in this reader's own row space
}

func (r *chunkedReader) Evaluate(ctx context.Context, rows RowRange, filter *expr.Expr) Seq {
	return func(yield func(Chunk, error) bool) {
		clipped, ok := rows.Intersect(RowRange{0, r.length})
		if !ok {
			return
		}

		// Step 1-2: per-child [child_lo, child_hi), intersected with the
		// requested range; non-intersecting chunks are dropped.
		var candidates []candidate
		for i := range r.children {
			childRange := RowRange{r.offsets[i], r.offsets[i+1]}
			isect, ok := childRange.Intersect(clipped)
			if !ok {
				continue
			}
			candidates = append(candidates, candidate{idx: i, rng: isect})
		}

		// Step 3: statistics-based pruning, only when there is a
		// statistics child and a non-trivial filter.
		if r.statsReader != nil && filter != nil {
			statsArr, err := r.loadStats(ctx)
			if err != nil {
				yield(Chunk{}, err)
				return
			}
			conjuncts := expr.Partition(filter)
			kept := candidates[:0]
			for _, cand := range candidates {
				result := expr.DefinitelyTrue
				lookup := statsLookupFor(statsArr, cand.idx)
				for _, conj := range conjuncts {
					pr, err := expr.EvaluateStats(conj, lookup)
					if err != nil {
						yield(Chunk{}, err)
						return
					}
					result = combineAnd(result, pr)
					if result == expr.DefinitelyFalse {
						break
					}
				}
				if result == expr.DefinitelyFalse {
					continue
				}
				kept = append(kept, cand)
			}
			candidates = kept
		}

		// Step 4: recurse into the surviving chunks with the clipped,
		// chunk-local range, translating coordinates back to this
		// reader's row space as results come back.
		for _, cand := range candidates {
			childLo := r.offsets[cand.idx]
			local := RowRange{cand.rng.Lo - childLo, cand.rng.Hi - childLo}
			for chunk, err := range r.children[cand.idx].Evaluate(ctx, local, filter) {
				if err != nil {
					if !yield(Chunk{}, err) {
						return
					}
					continue
				}
				translated := Chunk{
					Range: RowRange{chunk.Range.Lo + childLo, chunk.Range.Hi + childLo},
					Array: chunk.Array,
				}
				if !yield(translated, nil) {
					return
				}
			}
		}
	}
}

func combineAnd(a, b expr.PruneResult) expr.PruneResult {
	if a == expr.DefinitelyFalse || b == expr.DefinitelyFalse {
		return expr.DefinitelyFalse
	}
	if a == expr.DefinitelyTrue && b == expr.DefinitelyTrue {
		return expr.DefinitelyTrue
	}
	return expr.MaybeTrue
}

// statsLookupFor adapts the materialized statistics Array (one row per
// chunk, fields keyed by dotted data-field path, each itself a struct of
// optional min/max/null_count/true_count/is_sorted/is_constant) into an
// expr.StatsLookup scoped to chunk index chunkIdx.
func statsLookupFor(statsArr *array.Array, chunkIdx int) expr.StatsLookup {
	return func(path []string) (*array.Statistics, bool) {
		canon, err := statsArr.IntoCanonical()
		if err != nil {
			return nil, false
		}
		phys := canon.DType().PhysicalDType()
		if phys.Kind() != dtype.KindStruct {
			return nil, false
		}
		key := strings.Join(path, ".")
		idx := -1
		for i, f := range phys.Fields() {
			if f.Name == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		if valid, err := canon.IsValid(chunkIdx); err != nil || !valid {
			return nil, false
		}

		fieldArr := canon.Child(idx)
		fieldCanon, err := fieldArr.IntoCanonical()
		if err != nil {
			return nil, false
		}
		fieldPhys := fieldCanon.DType().PhysicalDType()
		if fieldPhys.Kind() != dtype.KindStruct {
			return nil, false
		}
		if valid, err := fieldCanon.IsValid(chunkIdx); err != nil || !valid {
			return nil, false
		}

		stats := array.NewStatistics()
		for i, sf := range fieldPhys.Fields() {
			kind, ok := statKindForName(sf.Name)
			if !ok {
				continue
			}
			sub := fieldCanon.Child(i)
			if valid, err := sub.IsValid(chunkIdx); err != nil || !valid {
				continue
			}
			sc, err := array.ScalarAt(sub, chunkIdx)
			if err != nil {
				continue
			}
			stats.Set(kind, sc)
		}
		return stats, true
	}
}

func statKindForName(name string) (array.StatKind, bool) {
	switch name {
	case "min":
		return array.StatMin, true
	case "max":
		return array.StatMax, true
	case "null_count":
		return array.StatNullCount, true
	case "true_count":
		return array.StatTrueCount, true
	case "is_sorted":
		return array.StatIsSorted, true
	case "is_constant":
		return array.StatIsConstant, true
	case "run_count":
		return array.StatRunCount, true
	default:
		return 0, false
	}
}
