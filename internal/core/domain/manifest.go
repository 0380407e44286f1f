// Package domain contains the core domain model for environment manifests:
// dependency specs, version ordering, manifests, and lockfiles.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Manifest is a named collection of channel references and dependency
// entries, read from an environment.yml. Conda and pip dependencies live
// in two disjoint lists; channel order is priority order.
type Manifest struct {
	Name     InternedString
	Channels []Channel

	CondaDeps []MatchSpec
	PipDeps   []MatchSpec
}

// Validate checks the structural invariants a loaded manifest must hold:
// a non-empty name without path separators, at least one channel, no
// duplicate names within a list, and no name present in both lists.
func (m *Manifest) Validate() error {
	name := m.Name.String()
	if name == "" {
		return zerr.Wrap(ErrInvalidManifest, "environment name is required")
	}
	if strings.ContainsAny(name, "/\\ ") {
		return zerr.With(zerr.Wrap(ErrInvalidManifest, "environment name must not contain separators"), "name", name)
	}
	if len(m.Channels) == 0 {
		return zerr.Wrap(ErrInvalidManifest, "at least one channel is required")
	}
	for _, ch := range m.Channels {
		if ch.String() == "" {
			return zerr.Wrap(ErrInvalidManifest, "channel name must not be empty")
		}
	}

	seen := make(map[InternedString]DependencySource, len(m.CondaDeps)+len(m.PipDeps))
	for _, dep := range m.CondaDeps {
		if _, dup := seen[dep.Name]; dup {
			return zerr.With(ErrDuplicateDependency, "package", dep.Name.String())
		}
		seen[dep.Name] = SourceConda
	}
	for _, dep := range m.PipDeps {
		if src, dup := seen[dep.Name]; dup {
			if src == SourceConda {
				return zerr.With(ErrConflictingSource, "package", dep.Name.String())
			}
			return zerr.With(ErrDuplicateDependency, "package", dep.Name.String())
		}
		seen[dep.Name] = SourcePip
	}

	return nil
}

// Deps returns an iterator over all dependency entries, conda first.
func (m *Manifest) Deps() iter.Seq[MatchSpec] {
	return func(yield func(MatchSpec) bool) {
		for _, dep := range m.CondaDeps {
			if !yield(dep) {
				return
			}
		}
		for _, dep := range m.PipDeps {
			if !yield(dep) {
				return
			}
		}
	}
}

// DepCount returns the total number of dependency entries.
func (m *Manifest) DepCount() int {
	return len(m.CondaDeps) + len(m.PipDeps)
}

// Canonical returns a copy with both dependency lists sorted by name and
// exact duplicates collapsed. Channels keep their declared order.
func (m *Manifest) Canonical() *Manifest {
	out := &Manifest{
		Name:      m.Name,
		Channels:  slices.Clone(m.Channels),
		CondaDeps: canonicalizeSpecs(m.CondaDeps),
		PipDeps:   canonicalizeSpecs(m.PipDeps),
	}
	return out
}

func canonicalizeSpecs(specs []MatchSpec) []MatchSpec {
	if len(specs) == 0 {
		return nil
	}
	sorted := slices.Clone(specs)
	slices.SortStableFunc(sorted, func(a, b MatchSpec) int {
		return strings.Compare(a.Name.String(), b.Name.String())
	})
	return slices.CompactFunc(sorted, func(a, b MatchSpec) bool {
		return a.Name == b.Name && a.String() == b.String()
	})
}
