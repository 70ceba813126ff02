package compute

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

// Cast converts a to dtype target. Widening primitive casts and
// nullable-relaxing casts always succeed; narrowing casts that would
// lose precision return ErrUnsupportedOperation (SPEC_FULL.md leaves
// lossy numeric casts out of scope, matching the teacher's stance on
// narrowing datatype conversions).
func Cast(a *array.Array, target *dtype.DType) (*array.Array, error) {
	if a.DType().Equal(target) {
		return a, nil
	}
	src := a.DType().PhysicalDType()
	dst := target.PhysicalDType()
	if src.Kind() != dtype.KindPrimitive || dst.Kind() != dtype.KindPrimitive {
		if src.Kind() == dst.Kind() {
			return castSameKind(a, target)
		}
		return nil, fmt.Errorf("cast: %w: %s -> %s", ErrUnsupportedOperation, a.DType(), target)
	}
	n := a.Length()
	out := make([]*dtype.Scalar, n)
	for i := 0; i < n; i++ {
		s, err := array.ScalarAt(a, i)
		if err != nil {
			return nil, err
		}
		if s.IsNull() {
			out[i] = dtype.NewNull(target)
			continue
		}
		cs, err := castScalar(s, dst.Width(), target.Nullable())
		if err != nil {
			return nil, err
		}
		out[i] = cs
	}
	return array.BuildFromScalars(target, out)
}

func castSameKind(a *array.Array, target *dtype.DType) (*array.Array, error) {
	n := a.Length()
	out := make([]*dtype.Scalar, n)
	for i := 0; i < n; i++ {
		s, err := array.ScalarAt(a, i)
		if err != nil {
			return nil, err
		}
		if s.IsNull() {
			out[i] = dtype.NewNull(target)
			continue
		}
		out[i] = s
	}
	return array.BuildFromScalars(target, out)
}

func castScalar(s *dtype.Scalar, w dtype.PrimitiveWidth, nullable bool) (*dtype.Scalar, error) {
	srcW := s.DType().Width()
	switch {
	case w.IsFloat():
		if srcW.IsFloat() {
			if srcW.Bits() > w.Bits() {
				return nil, fmt.Errorf("cast: %w: %s -> %s requires an explicit narrowing cast", ErrUnsupportedOperation, srcW, w)
			}
			return dtype.NewFloat(s.Float(), w, nullable), nil
		}
		if srcW.IsSigned() {
			return dtype.NewFloat(float64(s.Int()), w, nullable), nil
		}
		return dtype.NewFloat(float64(s.Uint()), w, nullable), nil
	case w.IsSigned():
		if srcW.IsFloat() || !srcW.IsSigned() || srcW.Bits() > w.Bits() {
			return nil, fmt.Errorf("cast: %w: %s -> %s requires an explicit narrowing cast", ErrUnsupportedOperation, srcW, w)
		}
		return dtype.NewInt(s.Int(), w, nullable), nil
	default:
		if srcW.IsFloat() || srcW.IsSigned() || srcW.Bits() > w.Bits() {
			return nil, fmt.Errorf("cast: %w: %s -> %s requires an explicit narrowing cast", ErrUnsupportedOperation, srcW, w)
		}
		return dtype.NewUint(s.Uint(), w, nullable), nil
	}
}
