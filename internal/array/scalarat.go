package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/dtype"
)

// ScalarAt materializes element i of a as a dtype.Scalar, canonicalizing
// first if necessary. This is the reference, always-correct path every
// compute kernel's fast path is checked against; it is not the hot path.
func ScalarAt(a *Array, i int) (*dtype.Scalar, error) {
	canon, err := a.IntoCanonical()
	if err != nil {
		return nil, err
	}
	valid, err := canon.IsValid(i)
	if err != nil {
		return nil, err
	}
	dt := canon.DType()
	if !valid {
		return dtype.NewNull(dt), nil
	}
	switch canon.EncodingID() {
	case IDNull:
		return dtype.NewNull(dt), nil
	case IDBool:
		return dtype.NewBool(BoolValue(canon, i), dt.Nullable()), nil
	case IDPrimitive:
		w := dt.Width()
		switch {
		case w.IsFloat():
			return dtype.NewFloat(PrimitiveFloat(canon, i), w, dt.Nullable()), nil
		case w.IsSigned():
			return dtype.NewInt(PrimitiveInt(canon, i), w, dt.Nullable()), nil
		default:
			return dtype.NewUint(PrimitiveUint(canon, i), w, dt.Nullable()), nil
		}
	case IDVarBinView:
		b := VarBinViewBytes(canon, i)
		if dt.Kind() == dtype.KindUtf8 {
			return dtype.NewUtf8(string(b), dt.Nullable()), nil
		}
		return dtype.NewBinary(b, dt.Nullable()), nil
	case IDStruct:
		fields := make([]*dtype.Scalar, canon.NumChildren())
		for fi, c := range canon.Children() {
			s, err := ScalarAt(c, i)
			if err != nil {
				return nil, err
			}
			fields[fi] = s
		}
		return dtype.NewStruct(dt, fields)
	case IDList:
		start, end := ListOffset(canon, i)
		elems := make([]*dtype.Scalar, 0, end-start)
		for j := start; j < end; j++ {
			s, err := ScalarAt(canon.Child(0), j)
			if err != nil {
				return nil, err
			}
			elems = append(elems, s)
		}
		return dtype.NewList(dt, elems)
	default:
		return nil, fmt.Errorf("array: ScalarAt: %w: canonical encoding %s", ErrUnsupportedOperation, canon.EncodingID())
	}
}

// BuildFromScalars constructs a canonical array of dtype dt (which must
// not itself be an Extension dtype) from per-element scalar values.
func BuildFromScalars(dt *dtype.DType, scalars []*dtype.Scalar) (*Array, error) {
	n := len(scalars)
	switch dt.Kind() {
	case dtype.KindNull:
		return NewNull(n), nil
	case dtype.KindBool:
		vals := make([]bool, n)
		valid := make([]bool, n)
		for i, s := range scalars {
			valid[i] = !s.IsNull()
			if valid[i] {
				vals[i] = s.Bool()
			}
		}
		return NewBool(vals, valid, dt.Nullable())
	case dtype.KindPrimitive:
		w := dt.Width()
		valid := make([]bool, n)
		switch {
		case w.IsFloat():
			vals := make([]float64, n)
			for i, s := range scalars {
				valid[i] = !s.IsNull()
				if valid[i] {
					vals[i] = s.Float()
				}
			}
			return NewPrimitiveFloats(vals, w, valid, dt.Nullable())
		case w.IsSigned():
			vals := make([]int64, n)
			for i, s := range scalars {
				valid[i] = !s.IsNull()
				if valid[i] {
					vals[i] = s.Int()
				}
			}
			return NewPrimitiveInts(vals, w, valid, dt.Nullable())
		default:
			vals := make([]uint64, n)
			for i, s := range scalars {
				valid[i] = !s.IsNull()
				if valid[i] {
					vals[i] = s.Uint()
				}
			}
			return NewPrimitiveUints(vals, w, valid, dt.Nullable())
		}
	case dtype.KindUtf8, dtype.KindBinary:
		isUtf8 := dt.Kind() == dtype.KindUtf8
		vals := make([][]byte, n)
		valid := make([]bool, n)
		for i, s := range scalars {
			valid[i] = !s.IsNull()
			if !valid[i] {
				continue
			}
			if isUtf8 {
				vals[i] = []byte(s.Utf8())
			} else {
				vals[i] = s.Binary()
			}
		}
		return NewVarBinView(vals, isUtf8, valid, dt.Nullable())
	case dtype.KindStruct:
		fields := dt.Fields()
		valid := make([]bool, n)
		for i, s := range scalars {
			valid[i] = !s.IsNull()
		}
		children := make([]*Array, len(fields))
		for fi, f := range fields {
			fieldScalars := make([]*dtype.Scalar, n)
			for i, s := range scalars {
				if s.IsNull() {
					fieldScalars[i] = dtype.NewNull(f.Type.AsNullable())
				} else {
					fieldScalars[i] = s.StructFields()[fi]
				}
			}
			fc, err := BuildFromScalars(f.Type, fieldScalars)
			if err != nil {
				return nil, err
			}
			children[fi] = fc
		}
		return NewStruct(fields, children, valid, dt.Nullable())
	case dtype.KindList:
		elemType := dt.Elem()
		offsets := make([]uint32, n+1)
		valid := make([]bool, n)
		var allElems []*dtype.Scalar
		for i, s := range scalars {
			valid[i] = !s.IsNull()
			offsets[i] = uint32(len(allElems))
			if valid[i] {
				allElems = append(allElems, s.ListElements()...)
			}
		}
		offsets[n] = uint32(len(allElems))
		elemsArr, err := BuildFromScalars(elemType, allElems)
		if err != nil {
			return nil, err
		}
		return NewList(elemsArr, offsets, valid, dt.Nullable())
	case dtype.KindExtension:
		storage, err := BuildFromScalars(dt.ExtensionStorage(), scalars)
		if err != nil {
			return nil, err
		}
		return NewExtension(dt, storage)
	default:
		return nil, fmt.Errorf("array: BuildFromScalars: %w: kind %s", ErrUnsupportedOperation, dt.Kind())
	}
}

// concatCanonical concatenates already-canonicalized same-dtype arrays
// into a single canonical array via ScalarAt/BuildFromScalars. Used by
// Chunked's IntoCanonical, where fast, non-materializing concatenation
// isn't possible in general.
func concatCanonical(dt *dtype.DType, children []*Array) (*Array, error) {
	var scalars []*dtype.Scalar
	for _, c := range children {
		for i := 0; i < c.Length(); i++ {
			s, err := ScalarAt(c, i)
			if err != nil {
				return nil, err
			}
			scalars = append(scalars, s)
		}
	}
	return BuildFromScalars(dt, scalars)
}

// filterArray selects the elements of a for which mask (a canonical Bool
// array of equal length) is true; a null mask entry counts as false. It
// is the fallback used when an encoding has no FilterFastPath.
func filterArray(a *Array, mask *Array) (*Array, error) {
	canon, err := a.IntoCanonical()
	if err != nil {
		return nil, err
	}
	var scalars []*dtype.Scalar
	for i := 0; i < canon.Length(); i++ {
		valid, err := mask.IsValid(i)
		if err != nil {
			return nil, err
		}
		if !valid || !BoolValue(mask, i) {
			continue
		}
		s, err := ScalarAt(canon, i)
		if err != nil {
			return nil, err
		}
		scalars = append(scalars, s)
	}
	return BuildFromScalars(a.DType(), scalars)
}

// TakeGeneric gathers a[indices[k]] for each k, canonicalizing a first.
// Used as compute's take fallback, and directly by compressed encodings
// (Constant, Sparse) whose take has no cheaper implementation.
func TakeGeneric(a *Array, indices []int) (*Array, error) {
	canon, err := a.IntoCanonical()
	if err != nil {
		return nil, err
	}
	scalars := make([]*dtype.Scalar, len(indices))
	for i, idx := range indices {
		s, err := ScalarAt(canon, idx)
		if err != nil {
			return nil, err
		}
		scalars[i] = s
	}
	return BuildFromScalars(a.DType(), scalars)
}

// FilterGeneric is the exported form of filterArray, for use by the
// compute package's filter kernel fallback.
func FilterGeneric(a *Array, mask *Array) (*Array, error) { return filterArray(a, mask) }
