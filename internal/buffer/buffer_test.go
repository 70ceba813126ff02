package buffer

import "testing"

func TestSliceSharesBackingArray(t *testing.T) {
	b := New([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 8)

	s1, err := b.Slice(2, 4)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if got, want := s1.Bytes(), []byte{3, 4, 5, 6}; !bytesEqual(got, want) {
		t.Fatalf("Slice bytes = %v, want %v", got, want)
	}

	s2, err := s1.Slice(1, 2)
	if err != nil {
		t.Fatalf("Slice of slice: %v", err)
	}
	if got, want := s2.Bytes(), []byte{4, 5}; !bytesEqual(got, want) {
		t.Fatalf("nested slice bytes = %v, want %v", got, want)
	}
}

func TestSliceOutOfRange(t *testing.T) {
	b := New([]byte{1, 2, 3}, 1)
	if _, err := b.Slice(1, 10); err == nil {
		t.Fatalf("expected error for out-of-range slice")
	}
	if _, err := b.Slice(-1, 1); err == nil {
		t.Fatalf("expected error for negative start")
	}
}

func TestAsTyped(t *testing.T) {
	b := New(make([]byte, 16), 8)
	if err := b.AsTyped(4); err != nil {
		t.Fatalf("AsTyped(4): %v", err)
	}
	if err := b.AsTyped(8); err != nil {
		t.Fatalf("AsTyped(8): %v", err)
	}

	truncated := New(make([]byte, 15), 8)
	if err := truncated.AsTyped(4); err == nil {
		t.Fatalf("expected truncation error")
	}
}

func TestBuilderFinish(t *testing.T) {
	builder := NewBuilder(8, 0)
	builder.Write([]byte{1, 2})
	builder.Write([]byte{3, 4})
	buf := builder.Finish()
	if got, want := buf.Bytes(), []byte{1, 2, 3, 4}; !bytesEqual(got, want) {
		t.Fatalf("Finish bytes = %v, want %v", got, want)
	}
	if buf.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", buf.Len())
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
