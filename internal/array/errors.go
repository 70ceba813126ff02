package array

import "errors"

var (
	ErrUnknownEncoding      = errors.New("unknown encoding")
	ErrInvalidEncoding      = errors.New("invalid encoding")
	ErrDTypeMismatch        = errors.New("dtype mismatch")
	ErrOutOfRange           = errors.New("out of range")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnsupportedCast      = errors.New("unsupported cast")
	ErrInvalidArgument      = errors.New("invalid argument")
)
