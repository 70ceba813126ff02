package array

import (
	"sync"

	"github.com/vortexdb/vortex/internal/dtype"
)

// StatKind names one of the per-array aggregates used for pruning and
// kernel optimization (spec.md glossary: Statistics).
type StatKind uint8

const (
	StatMin StatKind = iota
	StatMax
	StatNullCount
	StatTrueCount
	StatIsSorted
	StatIsConstant
	StatRunCount
)

func (k StatKind) String() string {
	switch k {
	case StatMin:
		return "min"
	case StatMax:
		return "max"
	case StatNullCount:
		return "null_count"
	case StatTrueCount:
		return "true_count"
	case StatIsSorted:
		return "is_sorted"
	case StatIsConstant:
		return "is_constant"
	case StatRunCount:
		return "run_count"
	default:
		return "unknown_stat"
	}
}

// Statistics is a lazily-populated, cached map from statistic kind to
// Scalar. Every statistic is optional: absence means "not known", not
// "not applicable".
type Statistics struct {
	mu     sync.Mutex
	values map[StatKind]*dtype.Scalar
}

// NewStatistics returns an empty, lazily-populated Statistics map.
func NewStatistics() *Statistics {
	return &Statistics{values: make(map[StatKind]*dtype.Scalar)}
}

// Get returns the cached value for kind, if any has been computed or
// supplied.
func (s *Statistics) Get(kind StatKind) (*dtype.Scalar, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[kind]
	return v, ok
}

// Set caches a statistic value, overwriting any prior value for the same
// kind. Used both by writers persisting precomputed statistics and by
// GetOrCompute's memoization.
func (s *Statistics) Set(kind StatKind, v *dtype.Scalar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[kind] = v
}

// GetOrCompute returns the cached statistic, computing and caching it via
// compute if absent. compute may return (nil, nil) to mean "not
// computable for this array", which is cached too so repeated calls don't
// redo the work.
func (s *Statistics) GetOrCompute(kind StatKind, compute func() (*dtype.Scalar, error)) (*dtype.Scalar, error) {
	s.mu.Lock()
	if v, ok := s.values[kind]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	v, err := compute()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.values[kind] = v
	s.mu.Unlock()
	return v, nil
}

// Snapshot returns a defensive copy of all currently-cached statistics,
// suitable for persisting as a ChunkedLayout statistics-child row.
func (s *Statistics) Snapshot() map[StatKind]*dtype.Scalar {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[StatKind]*dtype.Scalar, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
