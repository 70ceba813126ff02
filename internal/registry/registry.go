// Package registry unifies the encoding and layout-vtable registries
// under the single process-wide Registry spec.md §4.6 describes ("a
// process-wide map from encoding-id (and layout-id) to vtable"). The two
// underlying maps (internal/array.Registry, internal/layout.Registry)
// stay separate types, since encodings and layouts implement unrelated
// interfaces, but callers opening a file or registering an extension go
// through this one entry point rather than reaching into each package
// individually.
package registry

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/layout"
	"github.com/vortexdb/vortex/internal/segment"
)

// Registry bundles an encoding registry and a layout-vtable registry.
// The zero value is not valid; use New or Global.
type Registry struct {
	Encodings *array.Registry
	Layouts   *layout.Registry
}

// Global is the process-wide registry used when opening a file without
// an explicit Registry override. Initialized eagerly with every built-in
// encoding and vtable, then treated as read-only (spec.md §4.6,
// "Global state").
var Global = &Registry{Encodings: array.Global, Layouts: layout.Global}

// New constructs a private registry pre-populated with the built-ins,
// independent of Global — tests use this to register extensions without
// cross-test interference.
func New() *Registry {
	return &Registry{Encodings: array.NewRegistry(), Layouts: layout.NewRegistry()}
}

// RegisterEncoding adds a user-defined encoding to r's encoding registry.
// Must happen before any file referencing its id is opened (spec.md
// §4.6).
func (r *Registry) RegisterEncoding(enc array.Encoding) error {
	return r.Encodings.Register(enc)
}

// RegisterLayout adds a user-defined layout vtable to r's layout
// registry. Must happen before any file referencing its id is opened.
func (r *Registry) RegisterLayout(v layout.VTable) error {
	return r.Layouts.Register(v)
}

// LookupEncoding resolves an encoding id, for the scan path reading a
// file footer's encoding references.
func (r *Registry) LookupEncoding(id array.EncodingID) (array.Encoding, bool) {
	return r.Encodings.Lookup(id)
}

// LookupLayout resolves a layout vtable id, for the scan path reading a
// file footer's Layout tree.
func (r *Registry) LookupLayout(id layout.VTableID) (layout.VTable, bool) {
	return r.Layouts.Lookup(id)
}

// NewLayoutReader constructs the Reader for l through r's layout
// registry, rather than layout.NewReader's hardwired layout.Global —
// the hook that lets a caller's WithRegistry option actually govern
// layout vtable dispatch, not just encoding dispatch.
func (r *Registry) NewLayoutReader(l *layout.Layout, src segment.Source) (layout.Reader, error) {
	vt, ok := r.Layouts.Lookup(l.VTable())
	if !ok {
		return nil, fmt.Errorf("registry: NewLayoutReader: unknown vtable %s", l.VTable())
	}
	return vt.NewReader(l, src)
}
