package expr

import (
	"strings"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

// PruneResult is the three-valued outcome of evaluating an expression
// against statistics rather than materialized data (spec.md §4.5). It
// must be sound: DefinitelyFalse implies no row in the candidate range
// satisfies the expression.
type PruneResult uint8

const (
	MaybeTrue PruneResult = iota
	DefinitelyFalse
	DefinitelyTrue
)

func (r PruneResult) String() string {
	switch r {
	case DefinitelyFalse:
		return "definitely_false"
	case DefinitelyTrue:
		return "definitely_true"
	default:
		return "maybe_true"
	}
}

func (r PruneResult) not() PruneResult {
	switch r {
	case DefinitelyFalse:
		return DefinitelyTrue
	case DefinitelyTrue:
		return DefinitelyFalse
	default:
		return MaybeTrue
	}
}

func andResult(a, b PruneResult) PruneResult {
	if a == DefinitelyFalse || b == DefinitelyFalse {
		return DefinitelyFalse
	}
	if a == DefinitelyTrue && b == DefinitelyTrue {
		return DefinitelyTrue
	}
	return MaybeTrue
}

func orResult(a, b PruneResult) PruneResult {
	if a == DefinitelyTrue || b == DefinitelyTrue {
		return DefinitelyTrue
	}
	if a == DefinitelyFalse && b == DefinitelyFalse {
		return DefinitelyFalse
	}
	return MaybeTrue
}

// StatsLookup resolves a dotted field path to that field's Statistics.
// ok is false when the field's statistics are unavailable (e.g. no
// statistics child was loaded for a ChunkedLayout), in which case any
// sub-expression referencing it must be treated as MaybeTrue.
type StatsLookup func(path []string) (stats *array.Statistics, ok bool)

// EvaluateStats evaluates e against statistics alone, never materializing
// array data. When a referenced field's statistics are missing, the
// containing sub-expression contributes MaybeTrue (spec.md §4.7 tie-break).
func EvaluateStats(e *Expr, lookup StatsLookup) (PruneResult, error) {
	switch e.kind {
	case KindLiteral:
		if e.literal.IsNull() {
			return MaybeTrue, nil
		}
		if e.literal.DType().Kind() == dtype.KindBool {
			if e.literal.Bool() {
				return DefinitelyTrue, nil
			}
			return DefinitelyFalse, nil
		}
		return MaybeTrue, nil

	case KindGetItem:
		// A bare field reference used as a boolean predicate (no comparison
		// operator above it): prunable only via the true_count/null_count
		// aggregates, since min/max say nothing about "is this row true".
		stats, ok := lookup(e.path)
		if !ok {
			return MaybeTrue, nil
		}
		return boolFieldPrune(stats)

	case KindNot:
		inner, err := EvaluateStats(e.child, lookup)
		if err != nil {
			return MaybeTrue, err
		}
		return inner.not(), nil

	case KindBinary:
		if e.op == OpAnd {
			l, err := EvaluateStats(e.lhs, lookup)
			if err != nil {
				return MaybeTrue, err
			}
			r, err := EvaluateStats(e.rhs, lookup)
			if err != nil {
				return MaybeTrue, err
			}
			return andResult(l, r), nil
		}
		if e.op == OpOr {
			l, err := EvaluateStats(e.lhs, lookup)
			if err != nil {
				return MaybeTrue, err
			}
			r, err := EvaluateStats(e.rhs, lookup)
			if err != nil {
				return MaybeTrue, err
			}
			return orResult(l, r), nil
		}
		return evaluateComparisonStats(e, lookup)

	default:
		return MaybeTrue, nil
	}
}

// boolFieldPrune handles a GetItem node used directly as a boolean
// predicate, e.g. a filter that is just `row.active` with no comparison.
// true_count == 0 proves every row is false or null; any other count is
// only prunable with the row length too, which statistics alone don't
// carry here, so it stays MaybeTrue. Counts are stored as unsigned
// Scalars by convention (writers populate them via dtype.NewUint).
func boolFieldPrune(stats *array.Statistics) (PruneResult, error) {
	trueCount, ok := stats.Get(array.StatTrueCount)
	if !ok || trueCount.IsNull() {
		return MaybeTrue, nil
	}
	if trueCount.Uint() == 0 {
		return DefinitelyFalse, nil
	}
	return MaybeTrue, nil
}

// evaluateComparisonStats handles a relational Binary node whose operands
// are (in either order) a GetItem leaf and a Literal, pruning via the
// field's min/max statistics. Any other shape (e.g. comparing two fields)
// is not prunable and contributes MaybeTrue.
func evaluateComparisonStats(e *Expr, lookup StatsLookup) (PruneResult, error) {
	getItem, lit, op, ok := comparisonOperands(e)
	if !ok {
		return MaybeTrue, nil
	}
	if lit.IsNull() {
		return MaybeTrue, nil
	}
	stats, ok := lookup(getItem.path)
	if !ok {
		return MaybeTrue, nil
	}
	minV, hasMin := stats.Get(array.StatMin)
	maxV, hasMax := stats.Get(array.StatMax)
	if !hasMin || !hasMax || minV.IsNull() || maxV.IsNull() {
		return MaybeTrue, nil
	}
	return compareRangeToLiteral(minV, maxV, lit, op, stats)
}

// comparisonOperands normalizes `field op literal` or `literal op field`
// into (getItem, literal, effectiveOp), flipping the operator in the
// swapped case so callers can always reason as "field op literal".
func comparisonOperands(e *Expr) (*Expr, *dtype.Scalar, BinaryOp, bool) {
	if e.lhs.kind == KindGetItem && e.rhs.kind == KindLiteral {
		return e.lhs, e.rhs.literal, e.op, true
	}
	if e.rhs.kind == KindGetItem && e.lhs.kind == KindLiteral {
		return e.rhs, e.lhs.literal, flip(e.op), true
	}
	return nil, nil, 0, false
}

func flip(op BinaryOp) BinaryOp {
	switch op {
	case OpGt:
		return OpLt
	case OpGtEq:
		return OpLtEq
	case OpLt:
		return OpGt
	case OpLtEq:
		return OpGtEq
	default:
		return op
	}
}

func compareRangeToLiteral(minV, maxV, target *dtype.Scalar, op BinaryOp, stats *array.Statistics) (PruneResult, error) {
	cmpMin, err := dtype.Compare(minV, target)
	if err != nil {
		return MaybeTrue, err
	}
	cmpMax, err := dtype.Compare(maxV, target)
	if err != nil {
		return MaybeTrue, err
	}
	switch op {
	case OpGt:
		if cmpMin > 0 {
			return DefinitelyTrue, nil
		}
		if cmpMax <= 0 {
			return DefinitelyFalse, nil
		}
	case OpGtEq:
		if cmpMin >= 0 {
			return DefinitelyTrue, nil
		}
		if cmpMax < 0 {
			return DefinitelyFalse, nil
		}
	case OpLt:
		if cmpMax < 0 {
			return DefinitelyTrue, nil
		}
		if cmpMin >= 0 {
			return DefinitelyFalse, nil
		}
	case OpLtEq:
		if cmpMax <= 0 {
			return DefinitelyTrue, nil
		}
		if cmpMin > 0 {
			return DefinitelyFalse, nil
		}
	case OpEq:
		if cmpMin < 0 || cmpMax > 0 {
			return DefinitelyFalse, nil
		}
		if cmpMin == 0 && cmpMax == 0 {
			return DefinitelyTrue, nil
		}
		if isConst, ok := stats.Get(array.StatIsConstant); ok && !isConst.IsNull() && isConst.Bool() {
			if cmpMin == 0 {
				return DefinitelyTrue, nil
			}
		}
	case OpNotEq:
		if cmpMin < 0 || cmpMax > 0 {
			return DefinitelyTrue, nil
		}
		if isConst, ok := stats.Get(array.StatIsConstant); ok && !isConst.IsNull() && isConst.Bool() && cmpMin == 0 {
			return DefinitelyFalse, nil
		}
	}
	return MaybeTrue, nil
}

// Partition performs the logical AND decomposition described in spec.md
// §4.5: a top-level chain of Binary(And, ...) nodes is flattened into its
// conjuncts, bottom-up, so each can be pruned independently and combined
// by AND. A disjunction (Or) is never descended into and is returned as a
// single opaque conjunct.
func Partition(e *Expr) []*Expr {
	if e.kind == KindBinary && e.op == OpAnd {
		return append(Partition(e.lhs), Partition(e.rhs)...)
	}
	return []*Expr{e}
}

// Fields collects the distinct dotted field paths referenced anywhere in
// e, in first-seen order, so callers can batch-load exactly the
// statistics columns a filter needs.
func Fields(e *Expr) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(n *Expr)
	walk = func(n *Expr) {
		if n == nil {
			return
		}
		switch n.kind {
		case KindGetItem:
			key := strings.Join(n.path, ".")
			if !seen[key] {
				seen[key] = true
				out = append(out, key)
			}
			walk(n.child)
		case KindNot:
			walk(n.child)
		case KindBinary:
			walk(n.lhs)
			walk(n.rhs)
		}
	}
	walk(e)
	return out
}
