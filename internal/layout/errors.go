package layout

import "errors"

// Sentinel errors, named the way internal/array and internal/compute name
// theirs: one error value per distinct failure mode, wrapped with context
// via fmt.Errorf("...: %w", ...) at each call site.
var (
	ErrUnknownLayout     = errors.New("layout: unknown layout vtable")
	ErrInvalidLayout     = errors.New("layout: invalid layout")
	ErrDuplicateVTable   = errors.New("layout: vtable already registered")
	ErrOutOfRange        = errors.New("layout: out of range")
	ErrStatisticsMissing = errors.New("layout: statistics child not available")
)
