package segment

import "context"

// MemorySource serves segments from an in-memory map, standing in for
// the teacher's temp-file test fixtures (SPEC_FULL.md §A.4): Vortex's
// test suite uses this instead of writing real files to disk.
type MemorySource struct {
	data map[ID][]byte
}

// NewMemorySource constructs a MemorySource from a pre-populated map. The
// caller retains ownership of data but must not mutate it afterward.
func NewMemorySource(data map[ID][]byte) *MemorySource {
	return &MemorySource{data: data}
}

func (m *MemorySource) Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[ID][]byte, len(ids))
	for _, id := range ids {
		b, ok := m.data[id]
		if !ok {
			return nil, fmtNotFound(id)
		}
		out[id] = b
	}
	return out, nil
}

func (m *MemorySource) Close() error { return nil }
