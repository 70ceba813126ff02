package buffer

import "errors"

// Sentinel errors returned, wrapped, by this package; callers match them
// with errors.Is.
var (
	ErrMisaligned       = errors.New("misaligned buffer")
	ErrTruncated        = errors.New("truncated buffer")
	ErrOutOfRange       = errors.New("out of range")
	ErrInvalidArgument  = errors.New("invalid argument")
)
