package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Version is a parsed conda-style version: an optional epoch followed by
// dot-separated segments of alternating numeric and alphabetic tokens.
// Comparison follows conda's ordering, where pre-release tags sort below
// the release ("1.0a1" < "1.0") and "post" sorts above it.
type Version struct {
	epoch    int64
	segments []segment
	raw      string
}

// A segment is the token run between two separators. "0a1" tokenizes to
// [0, "a", 1]; a segment starting with a letter gets an implicit leading
// zero so "dev1" compares as [0, "dev", 1].
type segment []token

type token struct {
	num     int64
	alpha   string
	numeric bool
}

// Token ranks order the classes within one position: dev tags sort below
// every other string, strings below numbers, post above everything.
const (
	rankDev = iota
	rankAlpha
	rankNum
	rankPost
)

func (t token) rank() int {
	if t.numeric {
		return rankNum
	}
	switch t.alpha {
	case "dev":
		return rankDev
	case "post":
		return rankPost
	}
	return rankAlpha
}

// zeroSegment pads missing segments and tokens, so "1.0" == "1.0.0".
var zeroSegment = segment{{num: 0, numeric: true}}

// ParseVersion parses a version string such as "1.21.2", "3.8.0rc1",
// "2021.4", or "1!0.5.dev3". Case is ignored and the separators ".",
// "_", "-" and "+" are equivalent.
func ParseVersion(raw string) (Version, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, "empty version"), "version", raw)
	}

	v := Version{raw: raw}

	if bang := strings.IndexByte(s, '!'); bang >= 0 {
		epoch, err := strconv.ParseInt(s[:bang], 10, 64)
		if err != nil {
			return Version{}, zerr.With(zerr.Wrap(ErrInvalidVersion, "invalid epoch"), "version", raw)
		}
		v.epoch = epoch
		s = s[bang+1:]
	}

	for _, part := range strings.FieldsFunc(s, isSeparator) {
		seg, err := tokenizeSegment(part)
		if err != nil {
			return Version{}, zerr.With(err, "version", raw)
		}
		v.segments = append(v.segments, seg)
	}
	if len(v.segments) == 0 {
		return Version{}, zerr.With(ErrInvalidVersion, "version", raw)
	}

	// Separators carry no ordering information, but doubled ones hide a
	// dropped segment and are rejected.
	if strings.Contains(s, "..") || strings.Contains(s, "__") || strings.Contains(s, "--") {
		return Version{}, zerr.With(ErrInvalidVersion, "version", raw)
	}

	return v, nil
}

func isSeparator(r rune) bool {
	return r == '.' || r == '_' || r == '-' || r == '+'
}

// tokenizeSegment splits a segment into alternating numeric and alpha
// runs, prepending an implicit zero when the segment starts with a letter.
func tokenizeSegment(s string) (segment, error) {
	var seg segment
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			n, err := strconv.ParseInt(s[i:j], 10, 64)
			if err != nil {
				return nil, zerr.Wrap(ErrInvalidVersion, "numeric component too large")
			}
			seg = append(seg, token{num: n, numeric: true})
			i = j
		case c >= 'a' && c <= 'z':
			j := i
			for j < len(s) && s[j] >= 'a' && s[j] <= 'z' {
				j++
			}
			if len(seg) == 0 {
				seg = append(seg, token{num: 0, numeric: true})
			}
			seg = append(seg, token{alpha: s[i:j]})
			i = j
		case c == '*':
			// Wildcards belong to constraints, not concrete versions.
			return nil, zerr.Wrap(ErrInvalidVersion, "wildcard in version")
		default:
			return nil, zerr.Wrap(ErrInvalidVersion, "illegal character in version")
		}
	}
	if len(seg) == 0 {
		return nil, zerr.Wrap(ErrInvalidVersion, "empty version segment")
	}
	return seg, nil
}

// String returns the version exactly as it was parsed.
func (v Version) String() string {
	return v.raw
}

// Compare orders two versions: -1 when v < other, 0 when equal, +1 when
// v > other. Shorter versions are padded with zero segments, so "1.0"
// and "1.0.0" are equal.
func (v Version) Compare(other Version) int {
	if v.epoch != other.epoch {
		if v.epoch < other.epoch {
			return -1
		}
		return 1
	}

	n := max(len(v.segments), len(other.segments))
	for i := 0; i < n; i++ {
		if cmp := compareSegments(segmentAt(v.segments, i), segmentAt(other.segments, i)); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func segmentAt(segments []segment, i int) segment {
	if i < len(segments) {
		return segments[i]
	}
	return zeroSegment
}

func compareSegments(a, b segment) int {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		if cmp := compareTokens(tokenAt(a, i), tokenAt(b, i)); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func tokenAt(seg segment, i int) token {
	if i < len(seg) {
		return seg[i]
	}
	return token{num: 0, numeric: true}
}

func compareTokens(a, b token) int {
	ra, rb := a.rank(), b.rank()
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if a.numeric {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.alpha, b.alpha)
}

// CompareVersions parses and compares two version strings.
func CompareVersions(a, b string) (int, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}
