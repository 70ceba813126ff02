package array

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// EncodingID is an encoding's stable identifier: a namespaced string (e.g.
// "vortex.primitive") paired with a compact numeric id used on the wire.
// Equality and map lookups use the string; the numeric id exists purely
// for a smaller on-disk footer footprint.
type EncodingID struct {
	Name string
	Code uint16
}

func (id EncodingID) String() string { return id.Name }

// Encoding is the vtable every array value dispatches through (spec.md
// §4.3). Encodings are values, not classes: distinct encodings are
// distinct Go values holding a pointer to their own vtable, never related
// by inheritance.
type Encoding interface {
	// ID returns this encoding's stable identifier.
	ID() EncodingID

	// Validate checks that (metadata, children, buffers) describe a
	// well-formed array of the given dtype and length. Called once at
	// construction (invariant I1).
	Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error

	// IntoCanonical produces the canonical encoding for a's dtype.
	// Zero-copy when a is already canonical.
	IntoCanonical(a *Array) (*Array, error)

	// IsValid reports whether element i is non-null.
	IsValid(a *Array, i int) (bool, error)

	// LogicalValidity returns a canonical Bool array describing validity
	// for every element. Encodings with no validity buffer of their own
	// derive it from child encodings or default to all-valid.
	LogicalValidity(a *Array) (*Array, error)
}

// Registry is a process-wide map from encoding id to vtable (spec.md
// §4.6). Initialized eagerly with the built-in encodings and then treated
// as read-only on the scan hot path; user registration must happen before
// any file is opened.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Encoding
	sealed   bool
}

// Global is the process-wide registry used by Array construction and file
// opening. Tests may construct a private *Registry to avoid cross-test
// interference with user-registered encodings.
var Global = NewRegistry()

// NewRegistry constructs a registry with every built-in encoding
// pre-registered.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Encoding)}
	for _, enc := range builtinEncodings() {
		r.byName[enc.ID().Name] = enc
	}
	return r
}

// Register adds a user-defined encoding. Built-in ids may not be
// overridden; SPEC_FULL.md open question D.1 requires a namespaced id
// ("vendor.name") and resolves collisions last-writer-wins for
// user-registered ids, first-writer-wins (i.e. rejected) for built-ins.
func (r *Registry) Register(enc Encoding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := enc.ID()
	if dot := strings.IndexByte(id.Name, '.'); dot <= 0 || dot == len(id.Name)-1 {
		return fmt.Errorf("array: Register: %w: %q is not a namespaced \"vendor.name\" id", ErrInvalidArgument, id.Name)
	}
	if existing, ok := r.byName[id.Name]; ok {
		if _, builtin := builtinSet[existing.ID().Name]; builtin {
			return fmt.Errorf("array: Register: %w: %q collides with a built-in encoding", ErrInvalidArgument, id.Name)
		}
	}
	r.byName[id.Name] = enc
	return nil
}

// Lookup resolves an encoding id to its vtable.
func (r *Registry) Lookup(id EncodingID) (Encoding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enc, ok := r.byName[id.Name]
	return enc, ok
}

// LookupByName resolves by the string id alone, as read from a file
// footer (the numeric code is advisory only).
func (r *Registry) LookupByName(name string) (Encoding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enc, ok := r.byName[name]
	return enc, ok
}

var builtinSet = map[string]struct{}{}

func markBuiltin(names ...string) {
	for _, n := range names {
		builtinSet[n] = struct{}{}
	}
}
