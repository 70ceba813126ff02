package registry

import (
	"testing"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/layout"
)

func TestLookupDelegatesToUnderlyingRegistries(t *testing.T) {
	r := New()

	enc, ok := r.LookupEncoding(array.EncodingID{Name: "vortex.primitive"})
	if !ok || enc == nil {
		t.Fatalf("expected built-in primitive encoding to resolve")
	}

	vt, ok := r.LookupLayout(layout.VTableFlat)
	if !ok || vt.Name == "" {
		t.Fatalf("expected built-in flat vtable to resolve")
	}
}

func TestRegisterRejectsBuiltinLayoutCollision(t *testing.T) {
	r := New()
	err := r.RegisterLayout(layout.VTable{ID: layout.VTableFlat, Name: "vortex.layout.flat"})
	if err == nil {
		t.Fatalf("expected collision with built-in vtable to be rejected")
	}
}
