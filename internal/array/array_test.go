package array

import (
	"testing"

	"github.com/vortexdb/vortex/internal/dtype"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	a, err := NewPrimitiveInts([]int64{1, 2, 3, -4}, dtype.I32, []bool{true, true, false, true}, true)
	if err != nil {
		t.Fatalf("NewPrimitiveInts: %v", err)
	}
	if a.Length() != 4 {
		t.Fatalf("length = %d, want 4", a.Length())
	}
	valid, err := a.IsValid(2)
	if err != nil {
		t.Fatalf("IsValid: %v", err)
	}
	if valid {
		t.Fatalf("index 2 should be null")
	}
	s, err := ScalarAt(a, 3)
	if err != nil {
		t.Fatalf("ScalarAt: %v", err)
	}
	if s.Int() != -4 {
		t.Fatalf("ScalarAt(3) = %d, want -4", s.Int())
	}
}

func TestBoolBitPacking(t *testing.T) {
	vals := []bool{true, false, true, true, false, false, true, false, true}
	a, err := NewBool(vals, nil, false)
	if err != nil {
		t.Fatalf("NewBool: %v", err)
	}
	for i, want := range vals {
		if got := BoolValue(a, i); got != want {
			t.Fatalf("BoolValue(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestVarBinViewInlineAndSpilled(t *testing.T) {
	values := [][]byte{
		[]byte("short"),
		[]byte("this value is definitely longer than twelve bytes"),
		[]byte(""),
	}
	a, err := NewVarBinView(values, true, nil, false)
	if err != nil {
		t.Fatalf("NewVarBinView: %v", err)
	}
	for i, want := range values {
		got := VarBinViewBytes(a, i)
		if string(got) != string(want) {
			t.Fatalf("VarBinViewBytes(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestStructFieldAccess(t *testing.T) {
	ints, err := NewPrimitiveInts([]int64{10, 20}, dtype.I64, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	bools, err := NewBool([]bool{true, false}, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	fields := []dtype.Field{
		{Name: "a", Type: dtype.Primitive(dtype.I64, false)},
		{Name: "b", Type: dtype.Bool(false)},
	}
	s, err := NewStruct(fields, []*Array{ints, bools}, nil, false)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	scalar, err := ScalarAt(s, 1)
	if err != nil {
		t.Fatalf("ScalarAt: %v", err)
	}
	sf := scalar.StructFields()
	if sf[0].Int() != 20 || sf[1].Bool() != false {
		t.Fatalf("unexpected struct scalar: %+v", sf)
	}
}

func TestListOffsets(t *testing.T) {
	elems, err := NewPrimitiveInts([]int64{1, 2, 3, 4, 5}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	l, err := NewList(elems, []uint32{0, 2, 2, 5}, nil, false)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	if l.Length() != 3 {
		t.Fatalf("length = %d, want 3", l.Length())
	}
	start, end := ListOffset(l, 1)
	if start != 2 || end != 2 {
		t.Fatalf("empty middle list = [%d:%d), want [2:2)", start, end)
	}
	scalar, err := ScalarAt(l, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(scalar.ListElements()) != 3 {
		t.Fatalf("last list has %d elements, want 3", len(scalar.ListElements()))
	}
}

func TestChunkedConcatenation(t *testing.T) {
	c1, err := NewPrimitiveInts([]int64{1, 2}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := NewPrimitiveInts([]int64{3, 4, 5}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	chunked, err := NewChunked(dtype.Primitive(dtype.I32, false), []*Array{c1, c2})
	if err != nil {
		t.Fatalf("NewChunked: %v", err)
	}
	if chunked.Length() != 5 {
		t.Fatalf("length = %d, want 5", chunked.Length())
	}
	canon, err := chunked.IntoCanonical()
	if err != nil {
		t.Fatalf("IntoCanonical: %v", err)
	}
	for i, want := range []int64{1, 2, 3, 4, 5} {
		if got := PrimitiveInt(canon, i); got != want {
			t.Fatalf("canon[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestDictEncoding(t *testing.T) {
	dict, err := NewVarBinView([][]byte{[]byte("red"), []byte("green"), []byte("blue")}, true, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewDict(dtype.Utf8(false), []uint32{0, 2, 2, 1, 0}, dict)
	if err != nil {
		t.Fatalf("NewDict: %v", err)
	}
	canon, err := a.IntoCanonical()
	if err != nil {
		t.Fatalf("IntoCanonical: %v", err)
	}
	want := []string{"red", "blue", "blue", "green", "red"}
	for i, w := range want {
		if got := string(VarBinViewBytes(canon, i)); got != w {
			t.Fatalf("canon[%d] = %q, want %q", i, got, w)
		}
	}
}

func TestRunEndSearchSorted(t *testing.T) {
	values, err := NewPrimitiveInts([]int64{10, 20, 30}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	re, err := NewRunEnd(values, []uint32{3, 5, 9})
	if err != nil {
		t.Fatalf("NewRunEnd: %v", err)
	}
	if re.Length() != 9 {
		t.Fatalf("length = %d, want 9", re.Length())
	}
	canon, err := re.IntoCanonical()
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []int64{10, 10, 10, 20, 20, 30, 30, 30, 30} {
		if got := PrimitiveInt(canon, i); got != want {
			t.Fatalf("canon[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestSparseEncoding(t *testing.T) {
	patches, err := NewPrimitiveInts([]int64{99, 42}, dtype.I32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	fill := dtype.NewInt(0, dtype.I32, false)
	a, err := NewSparse(dtype.Primitive(dtype.I32, false), 5, []uint32{1, 3}, patches, fill)
	if err != nil {
		t.Fatalf("NewSparse: %v", err)
	}
	canon, err := a.IntoCanonical()
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{0, 99, 0, 42, 0}
	for i, w := range want {
		if got := PrimitiveInt(canon, i); got != w {
			t.Fatalf("canon[%d] = %d, want %d", i, got, w)
		}
	}
}

func TestZigZagAndBitPackedRoundTrip(t *testing.T) {
	encoded, err := NewPrimitiveUints([]uint64{zigZagEncode(-3), zigZagEncode(5), zigZagEncode(0)}, dtype.U32, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	zz, err := NewZigZag(dtype.Primitive(dtype.I32, false), encoded)
	if err != nil {
		t.Fatalf("NewZigZag: %v", err)
	}
	canon, err := zz.IntoCanonical()
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []int64{-3, 5, 0} {
		if got := PrimitiveInt(canon, i); got != want {
			t.Fatalf("canon[%d] = %d, want %d", i, got, want)
		}
	}

	bp, err := NewBitPacked(dtype.Primitive(dtype.U8, false), []uint64{1, 2, 3, 0, 3}, 2, nil)
	if err != nil {
		t.Fatalf("NewBitPacked: %v", err)
	}
	bpCanon, err := bp.IntoCanonical()
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []uint64{1, 2, 3, 0, 3} {
		if got := PrimitiveUint(bpCanon, i); got != want {
			t.Fatalf("bitpacked canon[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestConstantSliceAndTake(t *testing.T) {
	c, err := NewConstant(dtype.Primitive(dtype.I32, false), dtype.NewInt(7, dtype.I32, false), 10)
	if err != nil {
		t.Fatalf("NewConstant: %v", err)
	}
	sliced, err := c.Slice(2, 5)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if sliced.Length() != 3 || sliced.EncodingID() != IDConstant {
		t.Fatalf("slice of constant should stay constant length 3, got len=%d id=%s", sliced.Length(), sliced.EncodingID())
	}
	canon, err := sliced.IntoCanonical()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < canon.Length(); i++ {
		if got := PrimitiveInt(canon, i); got != 7 {
			t.Fatalf("canon[%d] = %d, want 7", i, got)
		}
	}
}
