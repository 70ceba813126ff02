package compute

import (
	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

// FillForward replaces each null with the nearest preceding non-null
// value (leading nulls stay null).
func FillForward(a *array.Array) (*array.Array, error) {
	n := a.Length()
	out := make([]*dtype.Scalar, n)
	var last *dtype.Scalar
	for i := 0; i < n; i++ {
		s, err := array.ScalarAt(a, i)
		if err != nil {
			return nil, err
		}
		if s.IsNull() {
			out[i] = last
			if out[i] == nil {
				out[i] = dtype.NewNull(a.DType())
			}
			continue
		}
		last = s
		out[i] = s
	}
	return array.BuildFromScalars(a.DType(), out)
}

// FillNull replaces every null with a fixed replacement value.
func FillNull(a *array.Array, replacement *dtype.Scalar) (*array.Array, error) {
	n := a.Length()
	out := make([]*dtype.Scalar, n)
	for i := 0; i < n; i++ {
		s, err := array.ScalarAt(a, i)
		if err != nil {
			return nil, err
		}
		if s.IsNull() {
			out[i] = replacement
			continue
		}
		out[i] = s
	}
	return array.BuildFromScalars(a.DType().AsNonNullable(), out)
}
