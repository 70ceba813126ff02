package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// dateTimePartsEncoding decomposes a nanosecond-since-epoch timestamp
// (an Extension dtype over an i64 storage) into separate days/seconds/
// nanos Primitive columns, each of which compresses far better in
// isolation than the combined value (e.g. via FoR or BitPacked).
type dateTimePartsEncoding struct{}

const (
	secondsPerDay  = int64(86400)
	nanosPerSecond = int64(1_000_000_000)
)

func (dateTimePartsEncoding) ID() EncodingID { return IDDateTimeParts }

func (dateTimePartsEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if dt.PhysicalDType().Kind() != dtype.KindPrimitive || dt.PhysicalDType().Width() != dtype.I64 {
		return fmt.Errorf("datetimeparts: %w: requires an i64-backed dtype", ErrDTypeMismatch)
	}
	if len(buffers) != 0 || len(metadata) != 0 {
		return fmt.Errorf("datetimeparts: %w: expected no buffers or metadata", ErrInvalidEncoding)
	}
	if len(children) != 3 {
		return fmt.Errorf("datetimeparts: %w: expected [days, seconds, nanos] children", ErrInvalidEncoding)
	}
	for idx, name := range []string{"days", "seconds", "nanos"} {
		if children[idx].Length() != int(length) {
			return fmt.Errorf("datetimeparts: %w: %s child length %d, expected %d", ErrInvalidEncoding, name, children[idx].Length(), length)
		}
		if children[idx].DType().PhysicalDType().Kind() != dtype.KindPrimitive {
			return fmt.Errorf("datetimeparts: %w: %s child must be primitive", ErrDTypeMismatch, name)
		}
	}
	return nil
}

// IntoCanonical reconstructs the combined nanosecond value. The result's
// dtype is the physical i64 Primitive (Extension dtypes canonicalize to
// their unwrapped storage, per the extension-transparency invariant).
func (dateTimePartsEncoding) IntoCanonical(a *Array) (*Array, error) {
	days, seconds, nanos := a.Child(0), a.Child(1), a.Child(2)
	n := a.Length()
	nullable := a.DType().Nullable()
	vals := make([]int64, n)
	var validity []bool
	if nullable {
		validity = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		valid, err := days.IsValid(i)
		if err != nil {
			return nil, err
		}
		if nullable {
			validity[i] = valid
		}
		if !valid {
			continue
		}
		dv, err := ScalarAt(days, i)
		if err != nil {
			return nil, err
		}
		sv, err := ScalarAt(seconds, i)
		if err != nil {
			return nil, err
		}
		nv, err := ScalarAt(nanos, i)
		if err != nil {
			return nil, err
		}
		vals[i] = dv.Int()*secondsPerDay*nanosPerSecond + sv.Int()*nanosPerSecond + nv.Int()
	}
	return NewPrimitiveInts(vals, dtype.I64, validity, nullable)
}

func (dateTimePartsEncoding) IsValid(a *Array, i int) (bool, error) { return a.Child(0).IsValid(i) }

func (dateTimePartsEncoding) LogicalValidity(a *Array) (*Array, error) {
	return a.Child(0).LogicalValidity()
}

// NewDateTimeParts constructs a DateTimeParts array of Extension dtype dt
// (storage i64) from decomposed component children of equal length.
func NewDateTimeParts(dt *dtype.DType, days, seconds, nanos *Array) (*Array, error) {
	return New(IDDateTimeParts, dt, uint32(days.Length()), nil, []*Array{days, seconds, nanos}, nil)
}

// DecomposeNanos splits an i64 nanosecond-since-epoch value into
// day/second/nanosecond components, for constructing DateTimeParts
// children at write time.
func DecomposeNanos(v int64) (days, seconds, nanos int64) {
	totalSeconds := v / nanosPerSecond
	nanos = v % nanosPerSecond
	if nanos < 0 {
		nanos += nanosPerSecond
		totalSeconds--
	}
	days = totalSeconds / secondsPerDay
	seconds = totalSeconds % secondsPerDay
	if seconds < 0 {
		seconds += secondsPerDay
		days--
	}
	return days, seconds, nanos
}
