package fileformat

import (
	"fmt"
	"io"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/segment"
)

// FileLayout is the footer's second flatbuffer (spec.md §4.8): the root
// Layout description, its SegmentMap, the file-default codec scheme, and
// per-segment alignment. The root Layout tree itself is internal/layout's
// concern (layout.MarshalLayout/UnmarshalLayout) and is carried here as
// an opaque, already-encoded blob — FileLayout only frames where that
// blob sits relative to the SegmentMap, the way the teacher's superblock
// frames an object header address without knowing the object header's
// own encoding.
type FileLayout struct {
	RootLayout        []byte
	SegmentMap        *SegmentMap
	DefaultCompression segment.CompressionID
	DefaultEncryption segment.EncryptionID
	Alignment         uint32
}

const (
	flFieldRootLayout  = 0 // ubyte vector
	flFieldSegmentMap  = 1 // ubyte vector (nested flatbuffer)
	flFieldCompression = 2 // uint8
	flFieldEncryption  = 3 // uint8
	flFieldAlignment   = 4 // uint32
	flFieldCount       = 5
)

// MarshalFileLayout encodes fl as a standalone flatbuffer.
func MarshalFileLayout(fl *FileLayout) []byte {
	b := flatbuffers.NewBuilder(512)

	segMapBytes := MarshalSegmentMap(fl.SegmentMap)
	segMapOff := b.CreateByteVector(segMapBytes)
	rootLayoutOff := b.CreateByteVector(fl.RootLayout)

	b.StartObject(flFieldCount)
	b.PrependUint32Slot(flFieldAlignment, fl.Alignment, 0)
	b.PrependUint8Slot(flFieldEncryption, uint8(fl.DefaultEncryption), 0)
	b.PrependUint8Slot(flFieldCompression, uint8(fl.DefaultCompression), 0)
	b.PrependUOffsetTSlot(flFieldSegmentMap, segMapOff, 0)
	b.PrependUOffsetTSlot(flFieldRootLayout, rootLayoutOff, 0)
	root := b.EndObject()

	b.Finish(root)
	return b.FinishedBytes()
}

// UnmarshalFileLayout decodes a flatbuffer produced by MarshalFileLayout.
func UnmarshalFileLayout(data []byte) (*FileLayout, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("fileformat: UnmarshalFileLayout: %w", ErrInvalidFooter)
	}
	n := flatbuffers.GetUOffsetT(data)
	t := &flatbuffers.Table{Bytes: data, Pos: n}

	segMapBytes := readByteVectorField(t, flFieldSegmentMap)
	segMap, err := UnmarshalSegmentMap(segMapBytes)
	if err != nil {
		return nil, fmt.Errorf("fileformat: UnmarshalFileLayout: %w", err)
	}

	return &FileLayout{
		RootLayout:        readByteVectorField(t, flFieldRootLayout),
		SegmentMap:        segMap,
		DefaultCompression: segment.CompressionID(readUint8Field(t, flFieldCompression)),
		DefaultEncryption: segment.EncryptionID(readUint8Field(t, flFieldEncryption)),
		Alignment:         readUint32Field(t, flFieldAlignment),
	}, nil
}

// Footer is the complete, parsed footer area: the root DType and the
// FileLayout that together the postscript points readers at.
type Footer struct {
	DType      *dtype.DType
	FileLayout *FileLayout
}

// BuildFooterBytes concatenates the DType and FileLayout flatbuffers in
// the order spec.md §4.8 fixes (DType first, FileLayout second) and
// returns them alongside the postscript trailer that must follow.
func BuildFooterBytes(root *dtype.DType, fl *FileLayout) ([]byte, error) {
	dtypeBytes := MarshalDType(root)
	layoutBytes := MarshalFileLayout(fl)
	if len(dtypeBytes) > 0xFFFFFFFF {
		return nil, fmt.Errorf("fileformat: BuildFooterBytes: dtype flatbuffer too large")
	}

	lenPrefix := []byte{
		byte(len(dtypeBytes) >> 24), byte(len(dtypeBytes) >> 16),
		byte(len(dtypeBytes) >> 8), byte(len(dtypeBytes)),
	}

	footer := make([]byte, 0, 4+len(dtypeBytes)+len(layoutBytes))
	footer = append(footer, lenPrefix...)
	footer = append(footer, dtypeBytes...)
	footer = append(footer, layoutBytes...)

	ps, err := WritePostscript(len(footer))
	if err != nil {
		return nil, err
	}
	return append(footer, ps...), nil
}

// ReadFooter reads the trailing postscript of a file of fileSize bytes,
// then the footer area it points at, and decodes both flatbuffers.
//
// The DType/FileLayout split point within the footer area is not
// self-describing in the trailer alone; this package fixes it by
// prefixing the DType flatbuffer's own length as a 4-byte big-endian
// value immediately before it, so ReadFooter can find the boundary
// without re-parsing DType bytes speculatively as FileLayout bytes.
func ReadFooter(r io.ReaderAt, fileSize int64) (*Footer, error) {
	ps, err := ReadPostscript(r, fileSize)
	if err != nil {
		return nil, err
	}
	footerOff := FooterOffset(fileSize, ps)
	if footerOff < 0 {
		return nil, ErrTruncated
	}

	footerLen := int64(ps.PostscriptLength)
	buf := make([]byte, footerLen)
	if _, err := r.ReadAt(buf, footerOff); err != nil {
		return nil, fmt.Errorf("fileformat: ReadFooter: %w", err)
	}

	dtypeBytes, layoutBytes, err := splitFooter(buf)
	if err != nil {
		return nil, err
	}

	root, err := UnmarshalDType(dtypeBytes)
	if err != nil {
		return nil, fmt.Errorf("fileformat: ReadFooter: %w", err)
	}
	fl, err := UnmarshalFileLayout(layoutBytes)
	if err != nil {
		return nil, fmt.Errorf("fileformat: ReadFooter: %w", err)
	}
	return &Footer{DType: root, FileLayout: fl}, nil
}

// splitFooter locates the DType/FileLayout boundary. The two flatbuffers
// are independently finished buffers with no shared framing of their
// own, so BuildFooterBytes prefixes the DType flatbuffer's length as a
// big-endian uint32 immediately before it; splitFooter reads that prefix
// back to find where FileLayout's bytes begin.
func splitFooter(buf []byte) (dtypeBytes, layoutBytes []byte, err error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("fileformat: splitFooter: %w", ErrInvalidFooter)
	}
	dtypeLen := int(buf[0])<<24 | int(buf[1])<<16 | int(buf[2])<<8 | int(buf[3])
	if 4+dtypeLen > len(buf) {
		return nil, nil, fmt.Errorf("fileformat: splitFooter: dtype length out of range: %w", ErrInvalidFooter)
	}
	return buf[4 : 4+dtypeLen], buf[4+dtypeLen:], nil
}
