package compute

import (
	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

// Compare evaluates lhs <op> rhs element-wise, producing a nullable Bool
// array (null propagates: any null operand produces a null result).
// Dict- and Constant-encoded operands are compared without expanding to
// their full logical length (spec.md §4.3's dispatch table).
func Compare(lhs *array.Array, rhs *array.Array, op CompareOp) (*array.Array, error) {
	if !lhs.DType().PhysicalDType().Equal(rhs.DType().PhysicalDType()) {
		return nil, ErrDTypeMismatch
	}
	if lhs.EncodingID() == array.IDConstant && rhs.EncodingID() == array.IDConstant {
		return compareConstantConstant(lhs, rhs, op)
	}
	if lhs.EncodingID() == array.IDDict {
		return compareDict(lhs, rhs, op, false)
	}
	if rhs.EncodingID() == array.IDDict {
		return compareDict(rhs, lhs, op, true)
	}
	return compareGeneric(lhs, rhs, op)
}

func compareConstantConstant(lhs, rhs *array.Array, op CompareOp) (*array.Array, error) {
	l, err := array.ConstantScalar(lhs)
	if err != nil {
		return nil, err
	}
	r, err := array.ConstantScalar(rhs)
	if err != nil {
		return nil, err
	}
	n := lhs.Length()
	if l.IsNull() || r.IsNull() {
		return array.NewConstant(dtype.Bool(true), dtype.NewNull(dtype.Bool(true)), n)
	}
	cmp, err := dtype.Compare(l, r)
	if err != nil {
		return nil, err
	}
	return constantBool(op.apply(cmp), n)
}

// compareDict compares a Dict-encoded array's (small) dictionary against
// the other operand, scattering the dictionary-level verdict back out by
// code rather than comparing every expanded element. swapped indicates
// rhs (not lhs) was Dict-encoded, so the comparison operator must flip.
func compareDict(dictArr, other *array.Array, op CompareOp, swapped bool) (*array.Array, error) {
	if otherConst, ok := tryConstantScalar(other); ok {
		dict := array.DictValues(dictArr)
		dictResults := make([]bool, dict.Length())
		dictNull := make([]bool, dict.Length())
		for d := 0; d < dict.Length(); d++ {
			v, err := array.ScalarAt(dict, d)
			if err != nil {
				return nil, err
			}
			if v.IsNull() || otherConst.IsNull() {
				dictNull[d] = true
				continue
			}
			var cmp int
			if swapped {
				cmp, err = dtype.Compare(otherConst, v)
			} else {
				cmp, err = dtype.Compare(v, otherConst)
			}
			if err != nil {
				return nil, err
			}
			dictResults[d] = op.apply(cmp)
		}
		n := dictArr.Length()
		out := make([]bool, n)
		validity := make([]bool, n)
		for i := 0; i < n; i++ {
			code := array.CodeAt(dictArr, i)
			valid, err := dictArr.Child(0).IsValid(code)
			if err != nil {
				return nil, err
			}
			validity[i] = valid && !dictNull[code]
			if validity[i] {
				out[i] = dictResults[code]
			}
		}
		return array.NewBool(out, validity, true)
	}
	return compareGeneric(dictArr, other, op)
}

func tryConstantScalar(a *array.Array) (*dtype.Scalar, bool) {
	if a.EncodingID() != array.IDConstant {
		return nil, false
	}
	s, err := array.ConstantScalar(a)
	if err != nil {
		return nil, false
	}
	return s, true
}

func compareGeneric(lhs, rhs *array.Array, op CompareOp) (*array.Array, error) {
	n := lhs.Length()
	out := make([]bool, n)
	validity := make([]bool, n)
	for i := 0; i < n; i++ {
		l, err := array.ScalarAt(lhs, i)
		if err != nil {
			return nil, err
		}
		r, err := array.ScalarAt(rhs, i)
		if err != nil {
			return nil, err
		}
		if l.IsNull() || r.IsNull() {
			continue
		}
		cmp, err := dtype.Compare(l, r)
		if err != nil {
			return nil, err
		}
		validity[i] = true
		out[i] = op.apply(cmp)
	}
	return array.NewBool(out, validity, true)
}

func constantBool(v bool, n int) (*array.Array, error) {
	return array.NewConstant(dtype.Bool(true), dtype.NewBool(v, true), n)
}
