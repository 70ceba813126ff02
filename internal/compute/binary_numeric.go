package compute

import (
	"math"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

// Arithmetic wraps on signed/unsigned integer overflow by default
// (SPEC_FULL.md open question D.3); Checked returns ErrOverflow instead.
// Floating-point arithmetic never overflows in the integer sense and
// ignores the checked flag.
func Arithmetic(lhs, rhs *array.Array, op ArithOp, checked bool) (*array.Array, error) {
	phys := lhs.DType().PhysicalDType()
	if !phys.Equal(rhs.DType().PhysicalDType()) {
		return nil, ErrDTypeMismatch
	}
	if phys.Kind() != dtype.KindPrimitive {
		return nil, ErrUnsupportedOperation
	}
	w := phys.Width()
	n := lhs.Length()
	out := make([]*dtype.Scalar, n)
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
			out[i] = dtype.NewNull(dtype.Primitive(w, true))
			continue
		}
		s, err := applyArith(l, r, w, op, checked)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return array.BuildFromScalars(dtype.Primitive(w, true), out)
}

func applyArith(l, r *dtype.Scalar, w dtype.PrimitiveWidth, op ArithOp, checked bool) (*dtype.Scalar, error) {
	if w.IsFloat() {
		a, b := l.Float(), r.Float()
		var v float64
		switch op {
		case Add:
			v = a + b
		case Sub:
			v = a - b
		case Mul:
			v = a * b
		case Div:
			v = a / b
		}
		return dtype.NewFloat(v, w, true), nil
	}
	if w.IsSigned() {
		a, b := l.Int(), r.Int()
		v, overflowed := applyArithInt(a, b, op, w)
		if checked && overflowed {
			return nil, ErrOverflow
		}
		return dtype.NewInt(wrapInt(v, w), w, true), nil
	}
	a, b := l.Uint(), r.Uint()
	v, overflowed := applyArithUint(a, b, op, w)
	if checked && overflowed {
		return nil, ErrOverflow
	}
	return dtype.NewUint(wrapUint(v, w), w, true), nil
}

// applyArithInt computes a op b in int64 arithmetic and reports overflow
// relative to w's narrower range, not just int64's: 127+1 at i8 must be
// flagged even though it never overflows int64 itself.
func applyArithInt(a, b int64, op ArithOp, w dtype.PrimitiveWidth) (int64, bool) {
	var v int64
	var overflowed64 bool
	switch op {
	case Add:
		v = a + b
		overflowed64 = (b > 0 && v < a) || (b < 0 && v > a)
	case Sub:
		v = a - b
		overflowed64 = (b < 0 && v < a) || (b > 0 && v > a)
	case Mul:
		v = a * b
		overflowed64 = a != 0 && v/a != b
	case Div:
		if b == 0 {
			return 0, true
		}
		v = a / b
	}
	if overflowed64 || w == dtype.I64 {
		return v, overflowed64
	}
	min, max := intWidthBounds(w)
	return v, v < min || v > max
}

func applyArithUint(a, b uint64, op ArithOp, w dtype.PrimitiveWidth) (uint64, bool) {
	var v uint64
	var overflowed64 bool
	switch op {
	case Add:
		v = a + b
		overflowed64 = v < a
	case Sub:
		v = a - b
		overflowed64 = a < b
	case Mul:
		if a == 0 {
			v = 0
		} else {
			v = a * b
			overflowed64 = v/a != b
		}
	case Div:
		if b == 0 {
			return 0, true
		}
		v = a / b
	}
	if overflowed64 || w == dtype.U64 {
		return v, overflowed64
	}
	return v, v > uintWidthMax(w)
}

func intWidthBounds(w dtype.PrimitiveWidth) (int64, int64) {
	switch w {
	case dtype.I8:
		return math.MinInt8, math.MaxInt8
	case dtype.I16:
		return math.MinInt16, math.MaxInt16
	case dtype.I32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func uintWidthMax(w dtype.PrimitiveWidth) uint64 {
	switch w {
	case dtype.U8:
		return math.MaxUint8
	case dtype.U16:
		return math.MaxUint16
	case dtype.U32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// wrapInt truncates v to width w's bit pattern, sign-extended, matching
// default Go integer conversion semantics.
func wrapInt(v int64, w dtype.PrimitiveWidth) int64 {
	switch w {
	case dtype.I8:
		return int64(int8(v))
	case dtype.I16:
		return int64(int16(v))
	case dtype.I32:
		return int64(int32(v))
	default:
		return v
	}
}

func wrapUint(v uint64, w dtype.PrimitiveWidth) uint64 {
	switch w {
	case dtype.U8:
		return uint64(uint8(v))
	case dtype.U16:
		return uint64(uint16(v))
	case dtype.U32:
		return uint64(uint32(v))
	default:
		return v
	}
}
