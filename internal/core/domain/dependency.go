package domain

import "strings"

// DependencySource identifies which partition of the manifest a dependency
// entry belongs to. The two lists are disjoint: a package name may appear
// in one or the other, never both.
type DependencySource string

const (
	// SourceConda marks a dependency resolved from a conda channel.
	SourceConda DependencySource = "conda"

	// SourcePip marks a dependency resolved from a pip package index.
	SourcePip DependencySource = "pip"
)

// Channel is a named package repository source consulted during resolution.
// Channel order in a manifest is priority order.
type Channel = InternedString

// NormalizeName canonicalizes a package name for comparison.
// Conda names are lowercased; pip names additionally collapse runs of
// ".", "-", and "_" into a single dash, following the index convention.
func NormalizeName(name string, source DependencySource) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if source != SourcePip {
		return name
	}

	var b strings.Builder
	b.Grow(len(name))
	prevSep := false
	for _, r := range name {
		if r == '.' || r == '-' || r == '_' {
			prevSep = true
			continue
		}
		if prevSep && b.Len() > 0 {
			b.WriteByte('-')
		}
		prevSep = false
		b.WriteRune(r)
	}
	return b.String()
}
