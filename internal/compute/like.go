package compute

import (
	"fmt"
	"strings"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

// Like matches a Utf8 array against a SQL-style pattern: '%' matches any
// run of characters, '_' matches exactly one. Null propagates.
func Like(a *array.Array, pattern string) (*array.Array, error) {
	if a.DType().PhysicalDType().Kind() != dtype.KindUtf8 {
		return nil, fmt.Errorf("like: %w: requires a Utf8 array", ErrUnsupportedOperation)
	}
	re := compileLikePattern(pattern)
	n := a.Length()
	out := make([]bool, n)
	validity := make([]bool, n)
	for i := 0; i < n; i++ {
		valid, err := a.IsValid(i)
		if err != nil {
			return nil, err
		}
		validity[i] = valid
		if !valid {
			continue
		}
		s, err := array.ScalarAt(a, i)
		if err != nil {
			return nil, err
		}
		out[i] = re.match(s.Utf8())
	}
	return array.NewBool(out, validity, true)
}

// likePattern is a compiled sequence of literal and wildcard segments;
// matching is done by hand rather than via regexp. A '%' segment tries
// each split point of the remaining input in turn and backtracks when
// the segments after it fail to match.
type likePattern struct {
	segments []likeSegment
}

type likeSegment struct {
	anyPrefix bool // true if preceded by a '%'
	literal   string
	single    int // number of leading '_' wildcards before literal
}

func compileLikePattern(pattern string) likePattern {
	var segs []likeSegment
	cur := likeSegment{}
	anyPrefix := false
	flush := func() {
		cur.anyPrefix = anyPrefix
		segs = append(segs, cur)
		cur = likeSegment{}
		anyPrefix = false
	}
	for _, r := range pattern {
		switch r {
		case '%':
			flush()
			anyPrefix = true
		case '_':
			if cur.literal != "" {
				flush()
			}
			cur.single++
		default:
			cur.literal += string(r)
		}
	}
	flush()
	return likePattern{segments: segs}
}

func (p likePattern) match(s string) bool {
	return matchSegments(p.segments, s)
}

func matchSegments(segs []likeSegment, s string) bool {
	if len(segs) == 0 {
		return s == ""
	}
	seg := segs[0]
	if !seg.anyPrefix {
		if len(s) < seg.single {
			return false
		}
		s = s[seg.single:]
		if !strings.HasPrefix(s, seg.literal) {
			return false
		}
		return matchSegments(segs[1:], s[len(seg.literal):])
	}
	// anyPrefix: try every possible split point for the '%' match.
	need := seg.single + len(seg.literal)
	for start := 0; start+need <= len(s); start++ {
		candidate := s[start:]
		if len(candidate) < seg.single {
			continue
		}
		candidate = candidate[seg.single:]
		if !strings.HasPrefix(candidate, seg.literal) {
			continue
		}
		if matchSegments(segs[1:], candidate[len(seg.literal):]) {
			return true
		}
	}
	return false
}
