package compute

import "github.com/vortexdb/vortex/internal/array"

// trit is a three-valued logic value used by Kleene boolean evaluation
// and by statistics-based predicate pruning (spec.md §4.5).
type trit uint8

const (
	unknown trit = iota
	isFalse
	isTrue
)

func tritOf(valid, value bool) trit {
	if !valid {
		return unknown
	}
	if value {
		return isTrue
	}
	return isFalse
}

func kleeneAnd(a, b trit) trit {
	if a == isFalse || b == isFalse {
		return isFalse
	}
	if a == isTrue && b == isTrue {
		return isTrue
	}
	return unknown
}

func kleeneOr(a, b trit) trit {
	if a == isTrue || b == isTrue {
		return isTrue
	}
	if a == isFalse && b == isFalse {
		return isFalse
	}
	return unknown
}

// And computes Kleene conjunction: null And false == false (a known
// result survives even when the other operand is unknown).
func And(lhs, rhs *array.Array) (*array.Array, error) { return binaryBool(lhs, rhs, kleeneAnd) }

// Or computes Kleene disjunction: null Or true == true.
func Or(lhs, rhs *array.Array) (*array.Array, error) { return binaryBool(lhs, rhs, kleeneOr) }

// AndNonKleene computes strict conjunction where any null operand
// produces a null result, matching SQL's non-short-circuiting AND and
// distinct from the Kleene variant used for predicate pruning.
func AndNonKleene(lhs, rhs *array.Array) (*array.Array, error) {
	return binaryBool(lhs, rhs, func(a, b trit) trit {
		if a == unknown || b == unknown {
			return unknown
		}
		return kleeneAnd(a, b)
	})
}

func binaryBool(lhs, rhs *array.Array, combine func(a, b trit) trit) (*array.Array, error) {
	n := lhs.Length()
	out := make([]bool, n)
	validity := make([]bool, n)
	for i := 0; i < n; i++ {
		la, err := lhs.IsValid(i)
		if err != nil {
			return nil, err
		}
		ra, err := rhs.IsValid(i)
		if err != nil {
			return nil, err
		}
		lv, rv := false, false
		if la {
			s, err := array.ScalarAt(lhs, i)
			if err != nil {
				return nil, err
			}
			lv = s.Bool()
		}
		if ra {
			s, err := array.ScalarAt(rhs, i)
			if err != nil {
				return nil, err
			}
			rv = s.Bool()
		}
		t := combine(tritOf(la, lv), tritOf(ra, rv))
		validity[i] = t != unknown
		out[i] = t == isTrue
	}
	return array.NewBool(out, validity, true)
}

// Invert computes logical NOT, propagating null.
func Invert(a *array.Array) (*array.Array, error) {
	n := a.Length()
	out := make([]bool, n)
	validity := make([]bool, n)
	for i := 0; i < n; i++ {
		valid, err := a.IsValid(i)
		if err != nil {
			return nil, err
		}
		validity[i] = valid
		if valid {
			s, err := array.ScalarAt(a, i)
			if err != nil {
				return nil, err
			}
			out[i] = !s.Bool()
		}
	}
	return array.NewBool(out, validity, true)
}
