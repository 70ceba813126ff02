package compute

import (
	"testing"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

func TestCompareGeneric(t *testing.T) {
	lhs, err := array.NewPrimitiveInts([]int64{1, 2, 3}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	rhs, err := array.NewPrimitiveInts([]int64{1, 5, 2}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Compare(lhs, rhs, Lt)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	want := []bool{false, true, false}
	for i, w := range want {
		if got := array.BoolValue(mustCanon(t, out), i); got != w {
			t.Fatalf("out[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestCompareDictFastPathMatchesGeneric(t *testing.T) {
	dict, err := array.NewVarBinView([][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}, true, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	dictArr, err := array.NewDict(dtype.Utf8(false), []uint32{0, 1, 2, 1, 0}, dict)
	if err != nil {
		t.Fatal(err)
	}
	expanded, err := dictArr.IntoCanonical()
	if err != nil {
		t.Fatal(err)
	}
	target, err := array.NewConstant(dtype.Utf8(false), dtype.NewUtf8("bb", false), 5)
	if err != nil {
		t.Fatal(err)
	}

	fromDict, err := Compare(dictArr, target, Eq)
	if err != nil {
		t.Fatalf("Compare(dict): %v", err)
	}
	fromExpanded, err := Compare(expanded, target, Eq)
	if err != nil {
		t.Fatalf("Compare(expanded): %v", err)
	}
	fromDictCanon := mustCanon(t, fromDict)
	fromExpandedCanon := mustCanon(t, fromExpanded)
	for i := 0; i < 5; i++ {
		if array.BoolValue(fromDictCanon, i) != array.BoolValue(fromExpandedCanon, i) {
			t.Fatalf("dict fast path diverges from generic at %d", i)
		}
	}
}

func TestKleeneOrVsNonKleeneAnd(t *testing.T) {
	lhs, err := array.NewBool([]bool{true, false, false}, []bool{true, false, true}, true)
	if err != nil {
		t.Fatal(err)
	}
	rhs, err := array.NewBool([]bool{false, false, false}, []bool{true, true, false}, true)
	if err != nil {
		t.Fatal(err)
	}

	or, err := Or(lhs, rhs)
	if err != nil {
		t.Fatalf("Or: %v", err)
	}
	// lhs[0]=true (known) Or rhs[0]=false (known) = true, both valid.
	if valid, _ := or.IsValid(0); !valid {
		t.Fatalf("Or(true, false) should be valid")
	}
	if v, _ := array.ScalarAt(or, 0); v.Bool() != true {
		t.Fatalf("Or(true, false) = %v, want true", v.Bool())
	}
	// lhs[1] is null, rhs[1]=false (known, not true) -> Kleene Or is unknown.
	if valid, _ := or.IsValid(1); valid {
		t.Fatalf("Or(null, false) should stay unknown under Kleene semantics")
	}

	and, err := AndNonKleene(lhs, rhs)
	if err != nil {
		t.Fatalf("AndNonKleene: %v", err)
	}
	// lhs[1] is null -> non-Kleene AND is always null regardless of rhs.
	if valid, _ := and.IsValid(1); valid {
		t.Fatalf("AndNonKleene(null, _) should be null")
	}
}

func TestArithmeticWrapAndChecked(t *testing.T) {
	lhs, err := array.NewPrimitiveInts([]int64{127}, dtype.I8, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	rhs, err := array.NewPrimitiveInts([]int64{1}, dtype.I8, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	wrapped, err := Arithmetic(lhs, rhs, Add, false)
	if err != nil {
		t.Fatalf("Arithmetic wrap: %v", err)
	}
	v, err := array.ScalarAt(wrapped, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Int() != -128 {
		t.Fatalf("127+1 wrapped at i8 = %d, want -128", v.Int())
	}
	if _, err := Arithmetic(lhs, rhs, Add, true); err != ErrOverflow {
		t.Fatalf("checked 127+1 at i8 should overflow, got %v", err)
	}
}

func TestLikePattern(t *testing.T) {
	a, err := array.NewVarBinView([][]byte{[]byte("hello"), []byte("help"), []byte("world")}, true, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Like(a, "hel%")
	if err != nil {
		t.Fatalf("Like: %v", err)
	}
	want := []bool{true, true, false}
	for i, w := range want {
		if got := array.BoolValue(mustCanon(t, out), i); got != w {
			t.Fatalf("Like(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestFilterChunkedFastPath(t *testing.T) {
	c1, err := array.NewPrimitiveInts([]int64{1, 2, 3}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := array.NewPrimitiveInts([]int64{4, 5}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	chunked, err := array.NewChunked(dtype.Primitive(dtype.I32, false), []*array.Array{c1, c2})
	if err != nil {
		t.Fatal(err)
	}
	mask, err := array.NewBool([]bool{true, false, true, false, true}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	filtered, err := Filter(chunked, mask)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	canon := mustCanon(t, filtered)
	want := []int64{1, 3, 5}
	if canon.Length() != len(want) {
		t.Fatalf("filtered length = %d, want %d", canon.Length(), len(want))
	}
	for i, w := range want {
		if got := array.PrimitiveInt(canon, i); got != w {
			t.Fatalf("filtered[%d] = %d, want %d", i, got, w)
		}
	}
}

func mustCanon(t *testing.T, a *array.Array) *array.Array {
	t.Helper()
	c, err := a.IntoCanonical()
	if err != nil {
		t.Fatalf("IntoCanonical: %v", err)
	}
	return c
}
