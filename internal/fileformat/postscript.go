package fileformat

import (
	"encoding/binary"
	"fmt"
	"io"
)

// postscriptSize is the fixed trailer size: postscript_length(2) +
// version(2) + magic(4), per spec.md §4.8.
const postscriptSize = 8

// Postscript is the file's final 8 bytes.
type Postscript struct {
	// PostscriptLength is the length, in bytes, of the two footer
	// flatbuffers (DType then FileLayout) immediately preceding this
	// trailer.
	PostscriptLength uint16
	Version          uint16
}

// ReadPostscript reads the trailing 8 bytes of a file of the given size
// and validates its magic and version, per spec.md §4.8's "readers read
// the trailing 8 bytes first to locate the postscript."
func ReadPostscript(r io.ReaderAt, fileSize int64) (Postscript, error) {
	if fileSize < postscriptSize {
		return Postscript{}, ErrTruncated
	}
	buf := make([]byte, postscriptSize)
	if _, err := r.ReadAt(buf, fileSize-postscriptSize); err != nil {
		return Postscript{}, fmt.Errorf("fileformat: ReadPostscript: %w", err)
	}

	var magic [4]byte
	copy(magic[:], buf[4:8])
	if magic != Magic {
		return Postscript{}, ErrBadMagic
	}

	ps := Postscript{
		PostscriptLength: binary.LittleEndian.Uint16(buf[0:2]),
		Version:          binary.LittleEndian.Uint16(buf[2:4]),
	}
	if ps.Version != FormatVersion {
		return Postscript{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, ps.Version)
	}
	return ps, nil
}

// WritePostscript encodes the trailer for a footer of footerLength bytes.
func WritePostscript(footerLength int) ([]byte, error) {
	if footerLength < 0 || footerLength > 0xFFFF {
		return nil, fmt.Errorf("fileformat: WritePostscript: footer length %d out of range", footerLength)
	}
	buf := make([]byte, postscriptSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(footerLength))
	binary.LittleEndian.PutUint16(buf[2:4], FormatVersion)
	copy(buf[4:8], Magic[:])
	return buf, nil
}

// FooterOffset returns the absolute offset of the footer area (the two
// flatbuffers preceding the postscript) given the file size and a
// parsed postscript.
func FooterOffset(fileSize int64, ps Postscript) int64 {
	return fileSize - postscriptSize - int64(ps.PostscriptLength)
}
