package dtype

import "testing"

func TestEqualStructFieldOrderIsSemantic(t *testing.T) {
	a := Struct(false, Field{"x", Primitive(I32, false)}, Field{"y", Primitive(I32, false)})
	b := Struct(false, Field{"y", Primitive(I32, false)}, Field{"x", Primitive(I32, false)})
	if a.Equal(b) {
		t.Fatalf("structs with swapped field order should not be equal")
	}
	c := Struct(false, Field{"x", Primitive(I32, false)}, Field{"y", Primitive(I32, false)})
	if !a.Equal(c) {
		t.Fatalf("identical structs should be equal")
	}
}

func TestExtensionEquality(t *testing.T) {
	storage := Primitive(I64, false)
	a := Extension("vendor.timestamp", storage, []byte{1, 2}, false)
	b := Extension("vendor.timestamp", storage, []byte{1, 2}, false)
	c := Extension("vendor.timestamp", storage, []byte{1, 3}, false)
	if !a.Equal(b) {
		t.Fatalf("extensions with identical id+metadata should be equal")
	}
	if a.Equal(c) {
		t.Fatalf("extensions with differing metadata should not be equal")
	}
}

func TestIsAssignableFromWidening(t *testing.T) {
	i64 := Primitive(I64, false)
	i32 := Primitive(I32, false)
	if !i64.IsAssignableFrom(i32) {
		t.Fatalf("i64 should accept i32 (widening)")
	}
	if i32.IsAssignableFrom(i64) {
		t.Fatalf("i32 should not accept i64 (narrowing) without explicit cast")
	}
}

func TestIsAssignableFromNullability(t *testing.T) {
	nonNull := Primitive(I32, false)
	nullable := Primitive(I32, true)
	if !nullable.IsAssignableFrom(nonNull) {
		t.Fatalf("nullable slot should accept a non-nullable value")
	}
	if nonNull.IsAssignableFrom(nullable) {
		t.Fatalf("non-nullable slot should not accept a nullable value")
	}
}

func TestPhysicalDTypeUnwrapsExtension(t *testing.T) {
	storage := Primitive(F64, false)
	ext := Extension("vendor.money", storage, nil, false)
	if !ext.PhysicalDType().Equal(storage) {
		t.Fatalf("PhysicalDType should unwrap to storage dtype")
	}
}

func TestScalarFloatNaNEqualityVsOrdering(t *testing.T) {
	nan1 := NewFloat(nan(), F64, false)
	nan2 := NewFloat(nan(), F64, false)
	if !nan1.Equal(nan2) {
		t.Fatalf("NaN == NaN should hold for Scalar.Equal (bit-pattern equality)")
	}
	if _, err := Compare(nan1, nan2); err != nil {
		t.Fatalf("Compare should not error on NaN operands: %v", err)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
