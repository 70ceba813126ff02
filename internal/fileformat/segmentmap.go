package fileformat

import (
	"fmt"
	"sync"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/vortexdb/vortex/internal/segment"
)

// SegmentEntry is one row of the SegmentMap named in spec.md §4.8:
// a segment id resolved to its byte range in the segment area, plus the
// codec pair applied to it at rest (spec.md §5's per-segment
// compression_id/encryption_id) and the byte alignment its offset was
// rounded up to when written (0 means unaligned/byte-packed).
type SegmentEntry struct {
	ID          segment.ID
	Offset      int64
	Length      int64
	Compression segment.CompressionID
	Encryption  segment.EncryptionID
	Alignment   uint16
}

const (
	seFieldID          = 0 // uint32
	seFieldOffset       = 1 // uint64
	seFieldLength       = 2 // uint64
	seFieldCompression = 3 // uint8
	seFieldEncryption  = 4 // uint8
	seFieldAlignment   = 5 // uint16
	seFieldCount       = 6

	smFieldEntries = 0
	smFieldCount   = 1
)

// SegmentMap resolves SegmentIds to byte ranges and implements
// segment.Locator, letting any SegmentSource resolve segments it did not
// itself discover.
type SegmentMap struct {
	mu      sync.RWMutex
	entries map[segment.ID]SegmentEntry
}

// NewSegmentMap builds a SegmentMap from a list of entries.
func NewSegmentMap(entries []SegmentEntry) *SegmentMap {
	m := make(map[segment.ID]SegmentEntry, len(entries))
	for _, e := range entries {
		m[e.ID] = e
	}
	return &SegmentMap{entries: m}
}

// Locate implements segment.Locator.
func (s *SegmentMap) Locate(id segment.ID) (offset int64, length int64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e.Offset, e.Length, ok
}

// Entry returns the full entry for id, including its codec pair.
func (s *SegmentMap) Entry(id segment.ID) (SegmentEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Entries returns a snapshot of every entry, in no particular order.
func (s *SegmentMap) Entries() []SegmentEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SegmentEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out
}

// MarshalSegmentMap encodes m as a standalone flatbuffer.
func MarshalSegmentMap(m *SegmentMap) []byte {
	b := flatbuffers.NewBuilder(512)
	entries := m.Entries()

	entryOffs := make([]flatbuffers.UOffsetT, len(entries))
	for i, e := range entries {
		b.StartObject(seFieldCount)
		b.PrependUint16Slot(seFieldAlignment, e.Alignment, 0)
		b.PrependUint8Slot(seFieldEncryption, uint8(e.Encryption), 0)
		b.PrependUint8Slot(seFieldCompression, uint8(e.Compression), 0)
		b.PrependUint64Slot(seFieldLength, uint64(e.Length), 0)
		b.PrependUint64Slot(seFieldOffset, uint64(e.Offset), 0)
		b.PrependUint32Slot(seFieldID, uint32(e.ID), 0)
		entryOffs[i] = b.EndObject()
	}

	b.StartVector(4, len(entryOffs), 4)
	for i := len(entryOffs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(entryOffs[i])
	}
	vec := b.EndVector(len(entryOffs))

	b.StartObject(smFieldCount)
	b.PrependUOffsetTSlot(smFieldEntries, vec, 0)
	root := b.EndObject()

	b.Finish(root)
	return b.FinishedBytes()
}

// UnmarshalSegmentMap decodes a flatbuffer produced by MarshalSegmentMap.
func UnmarshalSegmentMap(data []byte) (*SegmentMap, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("fileformat: UnmarshalSegmentMap: %w", ErrInvalidFooter)
	}
	n := flatbuffers.GetUOffsetT(data)
	t := &flatbuffers.Table{Bytes: data, Pos: n}

	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((smFieldEntries + 2) * 2)))
	if o == 0 {
		return NewSegmentMap(nil), nil
	}
	vecPos := t.Vector(o)
	count := t.VectorLen(o)

	entries := make([]SegmentEntry, count)
	for i := 0; i < count; i++ {
		slotPos := vecPos + flatbuffers.UOffsetT(i)*4
		et := &flatbuffers.Table{Bytes: t.Bytes, Pos: t.Indirect(slotPos)}

		entries[i] = SegmentEntry{
			ID:          segment.ID(readUint32Field(et, seFieldID)),
			Offset:      int64(readUint64Field(et, seFieldOffset)),
			Length:      int64(readUint64Field(et, seFieldLength)),
			Compression: segment.CompressionID(readUint8Field(et, seFieldCompression)),
			Encryption:  segment.EncryptionID(readUint8Field(et, seFieldEncryption)),
			Alignment:   readUint16Field(et, seFieldAlignment),
		}
	}
	return NewSegmentMap(entries), nil
}

func readUint32Field(t *flatbuffers.Table, field int) uint32 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return 0
	}
	return t.GetUint32(t.Pos + o)
}

func readUint16Field(t *flatbuffers.Table, field int) uint16 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return 0
	}
	return t.GetUint16(t.Pos + o)
}

func readUint64Field(t *flatbuffers.Table, field int) uint64 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return 0
	}
	return t.GetUint64(t.Pos + o)
}
