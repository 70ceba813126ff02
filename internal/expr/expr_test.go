package expr

import (
	"testing"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

func rowsFixture(t *testing.T) *array.Array {
	t.Helper()
	age, err := array.NewPrimitiveInts([]int64{10, 25, 40}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	active, err := array.NewBool([]bool{true, false, true}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := array.NewStruct([]dtype.Field{
		{Name: "age", Type: age.DType()},
		{Name: "active", Type: active.DType()},
	}, []*array.Array{age, active}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestEvaluateGetItemAndCompare(t *testing.T) {
	rows := rowsFixture(t)
	e := Gt(GetItem(Identity(), "age"), Literal(dtype.NewInt(20, dtype.I32, false)))
	out, err := Evaluate(e, rows)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	canon, err := out.IntoCanonical()
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{false, true, true}
	for i, w := range want {
		if got := array.BoolValue(canon, i); got != w {
			t.Fatalf("row %d: got %v, want %v", i, got, w)
		}
	}
}

func TestEvaluateBooleanField(t *testing.T) {
	rows := rowsFixture(t)
	e := GetItem(Identity(), "active")
	out, err := Evaluate(e, rows)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	canon, err := out.IntoCanonical()
	if err != nil {
		t.Fatal(err)
	}
	if !array.BoolValue(canon, 0) || array.BoolValue(canon, 1) || !array.BoolValue(canon, 2) {
		t.Fatalf("unexpected active values")
	}
}

func TestEvaluateStatsPruning(t *testing.T) {
	stats := array.NewStatistics()
	stats.Set(array.StatMin, dtype.NewInt(0, dtype.I32, false))
	stats.Set(array.StatMax, dtype.NewInt(9, dtype.I32, false))
	lookup := func(path []string) (*array.Statistics, bool) {
		if len(path) == 1 && path[0] == "age" {
			return stats, true
		}
		return nil, false
	}
	e := Gt(GetItem(Identity(), "age"), Literal(dtype.NewInt(20, dtype.I32, false)))
	res, err := EvaluateStats(e, lookup)
	if err != nil {
		t.Fatalf("EvaluateStats: %v", err)
	}
	if res != DefinitelyFalse {
		t.Fatalf("age in [0,9] > 20 should be DefinitelyFalse, got %v", res)
	}
}

func TestEvaluateStatsMissingIsMaybe(t *testing.T) {
	e := Gt(GetItem(Identity(), "age"), Literal(dtype.NewInt(20, dtype.I32, false)))
	res, err := EvaluateStats(e, func([]string) (*array.Statistics, bool) { return nil, false })
	if err != nil {
		t.Fatal(err)
	}
	if res != MaybeTrue {
		t.Fatalf("missing statistics should yield MaybeTrue, got %v", res)
	}
}

func TestPartitionAndDecomposition(t *testing.T) {
	left := Gt(GetItem(Identity(), "age"), Literal(dtype.NewInt(20, dtype.I32, false)))
	right := Eq(GetItem(Identity(), "active"), Literal(dtype.NewBool(true, false)))
	combined := And(left, right)
	parts := Partition(combined)
	if len(parts) != 2 {
		t.Fatalf("expected 2 conjuncts, got %d", len(parts))
	}

	orExpr := Or(left, right)
	if parts := Partition(orExpr); len(parts) != 1 {
		t.Fatalf("Or should not be split, got %d parts", len(parts))
	}
}

func TestFieldsCollection(t *testing.T) {
	e := And(
		Gt(GetItem(Identity(), "age"), Literal(dtype.NewInt(20, dtype.I32, false))),
		GetItem(Identity(), "active"),
	)
	fields := Fields(e)
	if len(fields) != 2 || fields[0] != "age" || fields[1] != "active" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	e := Not(And(
		Gt(GetItem(Identity(), "age"), Literal(dtype.NewInt(20, dtype.I32, false))),
		Eq(GetItem(Identity(), "active"), Literal(dtype.NewBool(true, false))),
	))
	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.String() != e.String() {
		t.Fatalf("round trip mismatch: got %q, want %q", got.String(), e.String())
	}
}

func TestMarshalRejectsUnknownVersion(t *testing.T) {
	data, err := Marshal(Identity())
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 0xFF
	if _, err := Unmarshal(data); err == nil {
		t.Fatalf("expected error for unknown format version")
	}
}
