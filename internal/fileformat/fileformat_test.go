package fileformat

import (
	"bytes"
	"testing"

	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/segment"
)

// bufferReaderAt adapts a []byte to io.ReaderAt for tests.
type bufferReaderAt struct{ buf []byte }

func (b bufferReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, b.buf[off:])
	return n, nil
}

func TestPostscriptRoundTrip(t *testing.T) {
	footer := []byte{1, 2, 3, 4, 5}
	ps, err := WritePostscript(len(footer))
	if err != nil {
		t.Fatalf("WritePostscript: %v", err)
	}

	file := append(append([]byte{}, footer...), ps...)
	got, err := ReadPostscript(bufferReaderAt{file}, int64(len(file)))
	if err != nil {
		t.Fatalf("ReadPostscript: %v", err)
	}
	if got.PostscriptLength != uint16(len(footer)) {
		t.Fatalf("got length %d, want %d", got.PostscriptLength, len(footer))
	}
	if got.Version != FormatVersion {
		t.Fatalf("got version %d, want %d", got.Version, FormatVersion)
	}
}

func TestReadPostscriptBadMagic(t *testing.T) {
	file := make([]byte, 8)
	if _, err := ReadPostscript(bufferReaderAt{file}, int64(len(file))); err != ErrBadMagic {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
}

func TestDTypeRoundTripStruct(t *testing.T) {
	root := dtype.Struct(false,
		dtype.Field{Name: "a", Type: dtype.Primitive(dtype.I32, false)},
		dtype.Field{Name: "b", Type: dtype.Bool(true)},
		dtype.Field{Name: "c", Type: dtype.List(dtype.Utf8(true), false)},
	)

	encoded := MarshalDType(root)
	decoded, err := UnmarshalDType(encoded)
	if err != nil {
		t.Fatalf("UnmarshalDType: %v", err)
	}
	if !decoded.Equal(root) {
		t.Fatalf("round trip mismatch: got %s, want %s", decoded, root)
	}
}

func TestDTypeRoundTripExtension(t *testing.T) {
	root := dtype.Extension("vortex.timestamp", dtype.Primitive(dtype.I64, false), []byte{1, 2, 3}, true)

	encoded := MarshalDType(root)
	decoded, err := UnmarshalDType(encoded)
	if err != nil {
		t.Fatalf("UnmarshalDType: %v", err)
	}
	if !decoded.Equal(root) {
		t.Fatalf("round trip mismatch: got %s, want %s", decoded, root)
	}
	if decoded.ExtensionID() != "vortex.timestamp" {
		t.Fatalf("unexpected extension id: %s", decoded.ExtensionID())
	}
	if !bytes.Equal(decoded.ExtensionMetadata(), []byte{1, 2, 3}) {
		t.Fatalf("unexpected extension metadata: %v", decoded.ExtensionMetadata())
	}
}

func TestSegmentMapRoundTrip(t *testing.T) {
	sm := NewSegmentMap([]SegmentEntry{
		{ID: 1, Offset: 0, Length: 128, Compression: segment.CompressionZstd, Encryption: segment.EncryptionNone},
		{ID: 2, Offset: 128, Length: 64, Compression: segment.CompressionNone, Encryption: segment.EncryptionChaCha20Poly1305},
	})

	encoded := MarshalSegmentMap(sm)
	decoded, err := UnmarshalSegmentMap(encoded)
	if err != nil {
		t.Fatalf("UnmarshalSegmentMap: %v", err)
	}

	offset, length, ok := decoded.Locate(1)
	if !ok || offset != 0 || length != 128 {
		t.Fatalf("unexpected entry for id 1: offset=%d length=%d ok=%v", offset, length, ok)
	}
	entry, ok := decoded.Entry(2)
	if !ok || entry.Encryption != segment.EncryptionChaCha20Poly1305 {
		t.Fatalf("unexpected entry for id 2: %+v", entry)
	}
}

func TestFooterRoundTrip(t *testing.T) {
	root := dtype.Struct(false,
		dtype.Field{Name: "x", Type: dtype.Primitive(dtype.I32, false)},
	)
	sm := NewSegmentMap([]SegmentEntry{
		{ID: 1, Offset: 4, Length: 40, Compression: segment.CompressionNone, Encryption: segment.EncryptionNone},
	})
	fl := &FileLayout{
		RootLayout:        []byte("opaque layout bytes"),
		SegmentMap:        sm,
		DefaultCompression: segment.CompressionZstd,
		DefaultEncryption: segment.EncryptionNone,
		Alignment:         64,
	}

	footerBytes, err := BuildFooterBytes(root, fl)
	if err != nil {
		t.Fatalf("BuildFooterBytes: %v", err)
	}

	file := append([]byte("VTXF"), footerBytes...)
	got, err := ReadFooter(bufferReaderAt{file}, int64(len(file)))
	if err != nil {
		t.Fatalf("ReadFooter: %v", err)
	}
	if !got.DType.Equal(root) {
		t.Fatalf("dtype mismatch: got %s, want %s", got.DType, root)
	}
	if !bytes.Equal(got.FileLayout.RootLayout, fl.RootLayout) {
		t.Fatalf("root layout mismatch")
	}
	if got.FileLayout.Alignment != 64 {
		t.Fatalf("alignment mismatch: %d", got.FileLayout.Alignment)
	}
	offset, length, ok := got.FileLayout.SegmentMap.Locate(1)
	if !ok || offset != 4 || length != 40 {
		t.Fatalf("segment map mismatch: offset=%d length=%d ok=%v", offset, length, ok)
	}
}
