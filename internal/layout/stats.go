package layout

import (
	"fmt"
	"sort"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

// BuildStatisticsArray assembles the per-chunk statistics Struct array a
// ChunkedLayout's optional statistics child carries (spec.md §4.7):
// one top-level field per referenced data column path, each itself a
// struct of optional min/max/null_count/true_count/is_sorted/is_constant
// columns. fieldDTypes gives each referenced path's data dtype (used to
// type its min/max columns); perField[path][i] is chunk i's Statistics
// for that field, or nil if none were collected for that chunk.
func BuildStatisticsArray(fieldDTypes map[string]*dtype.DType, perField map[string][]*array.Statistics) (*array.Array, error) {
	if len(perField) == 0 {
		return nil, fmt.Errorf("layout: BuildStatisticsArray: %w: no fields", ErrInvalidLayout)
	}
	paths := make([]string, 0, len(perField))
	for p := range perField {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	n := -1
	fields := make([]dtype.Field, 0, len(paths))
	children := make([]*array.Array, 0, len(paths))
	for _, p := range paths {
		rows := perField[p]
		if n == -1 {
			n = len(rows)
		} else if len(rows) != n {
			return nil, fmt.Errorf("layout: BuildStatisticsArray: %w: field %q has %d rows, expected %d", ErrInvalidLayout, p, len(rows), n)
		}
		fieldDType, ok := fieldDTypes[p]
		if !ok {
			return nil, fmt.Errorf("layout: BuildStatisticsArray: %w: no dtype given for field %q", ErrInvalidLayout, p)
		}
		subArr, subDType, err := buildStatStruct(fieldDType, rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, dtype.Field{Name: p, Type: subDType})
		children = append(children, subArr)
	}
	return array.NewStruct(fields, children, nil, false)
}

func buildStatStruct(fieldDType *dtype.DType, rows []*array.Statistics) (*array.Array, *dtype.DType, error) {
	minDT := fieldDType.AsNullable()
	maxDT := fieldDType.AsNullable()
	countDT := dtype.Primitive(dtype.U64, true)
	boolDT := dtype.Bool(true)

	cols := []struct {
		name string
		dt   *dtype.DType
		kind array.StatKind
	}{
		{"min", minDT, array.StatMin},
		{"max", maxDT, array.StatMax},
		{"null_count", countDT, array.StatNullCount},
		{"true_count", countDT, array.StatTrueCount},
		{"is_sorted", boolDT, array.StatIsSorted},
		{"is_constant", boolDT, array.StatIsConstant},
	}

	fields := make([]dtype.Field, len(cols))
	children := make([]*array.Array, len(cols))
	for ci, col := range cols {
		scalars := make([]*dtype.Scalar, len(rows))
		for i, st := range rows {
			scalars[i] = scalarOrNull(st, col.kind, col.dt)
		}
		arr, err := array.BuildFromScalars(col.dt, scalars)
		if err != nil {
			return nil, nil, fmt.Errorf("layout: buildStatStruct: column %q: %w", col.name, err)
		}
		fields[ci] = dtype.Field{Name: col.name, Type: col.dt}
		children[ci] = arr
	}

	structDType := dtype.Struct(true, fields...)
	structArr, err := array.NewStruct(fields, children, nil, true)
	if err != nil {
		return nil, nil, err
	}
	return structArr, structDType, nil
}

func scalarOrNull(st *array.Statistics, kind array.StatKind, dt *dtype.DType) *dtype.Scalar {
	if st == nil {
		return dtype.NewNull(dt)
	}
	v, ok := st.Get(kind)
	if !ok {
		return dtype.NewNull(dt)
	}
	return v
}
