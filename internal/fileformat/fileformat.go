// Package fileformat implements the on-disk container described in
// spec.md §4.8: a magic-delimited segment area followed by a footer area
// of flatbuffers, closed by an 8-byte postscript readers locate by
// seeking to the end of the file first. Grounded on the teacher's
// internal/superblock package, which locates and parses an HDF5
// superblock the same "read a fixed trailer, then dispatch on what it
// names" way, generalized here from a leading signature at one of a
// handful of fixed offsets to a trailing postscript at a file-size-
// relative offset.
package fileformat

import "errors"

// Magic is the four-byte signature bracketing a Vortex file, both at
// byte 0 (not otherwise enforced by this package; writers place it
// there by convention) and in the last four bytes of the postscript.
var Magic = [4]byte{'V', 'T', 'X', 'F'}

// FormatVersion is the postscript version this package reads and
// writes. Bumped on any incompatible footer schema change.
const FormatVersion uint16 = 1

var (
	ErrBadMagic        = errors.New("fileformat: bad magic")
	ErrUnsupportedVersion = errors.New("fileformat: unsupported postscript version")
	ErrTruncated       = errors.New("fileformat: file too short to contain a postscript")
	ErrInvalidFooter   = errors.New("fileformat: invalid footer encoding")
)
