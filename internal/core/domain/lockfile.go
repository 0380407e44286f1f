package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// LockfileVersion is the current lockfile format version.
const LockfileVersion = 1

// PlatformArtifact is the concrete file backing a resolved package on one
// platform (conda subdir such as "linux-64", or a pip wheel/sdist).
type PlatformArtifact struct {
	// Filename is the artifact filename as published.
	Filename string `json:"filename"`

	// URL is the download location.
	URL string `json:"url"`

	// SHA256 is the published content digest, when the source provides one.
	SHA256 string `json:"sha256,omitzero"`

	// Build is the conda build string (e.g. "py38h06a4308_0"). Empty for pip.
	Build string `json:"build,omitzero"`
}

// ResolvedPackage is one fully pinned dependency: a concrete version with
// per-platform artifact metadata.
type ResolvedPackage struct {
	// Name is the normalized package name.
	Name InternedString `json:"name"`

	// Version is the resolved version string.
	Version InternedString `json:"version"`

	// Channel is the conda channel that provided the package, or "pypi"
	// for pip dependencies.
	Channel InternedString `json:"channel"`

	// Source records which manifest partition requested the package.
	Source DependencySource `json:"source"`

	// Platforms maps platform strings to their artifact metadata.
	Platforms map[string]PlatformArtifact `json:"platforms"`
}

// ArtifactFor retrieves the artifact for the given platform.
// Returns ErrUnsupportedPlatform if the platform is not present.
func (p *ResolvedPackage) ArtifactFor(platform string) (PlatformArtifact, error) {
	art, exists := p.Platforms[platform]
	if !exists {
		err := zerr.With(ErrUnsupportedPlatform, "package", p.Name.String())
		err = zerr.With(err, "version", p.Version.String())
		err = zerr.With(err, "platform", platform)
		return PlatformArtifact{}, err
	}
	return art, nil
}

// Lockfile is the reproducible snapshot of a fully resolved manifest.
type Lockfile struct {
	// Version is the lockfile format version, for future migrations.
	Version int `json:"version"`

	// Fingerprint is the manifest fingerprint the snapshot was taken from.
	// A mismatch against the current manifest means the lock is stale.
	Fingerprint string `json:"fingerprint"`

	// Platforms lists the platforms every package was resolved for.
	Platforms []string `json:"platforms"`

	// Packages maps normalized package names to their pinned resolution.
	Packages map[string]ResolvedPackage `json:"packages"`
}

// NewLockfile creates an empty lockfile for the given manifest fingerprint.
func NewLockfile(fingerprint string, platforms []string) *Lockfile {
	sorted := slices.Clone(platforms)
	slices.Sort(sorted)
	return &Lockfile{
		Version:     LockfileVersion,
		Fingerprint: fingerprint,
		Platforms:   sorted,
		Packages:    make(map[string]ResolvedPackage),
	}
}

// Package returns the pinned resolution for a normalized name.
func (l *Lockfile) Package(name string) (ResolvedPackage, bool) {
	p, ok := l.Packages[name]
	return p, ok
}

// Verify checks the lockfile against the manifest it should pin: the
// fingerprint must match, every dependency must be present, and every
// pinned version must still satisfy its spec.
func (l *Lockfile) Verify(m *Manifest) error {
	fp := Fingerprint(m)
	if l.Fingerprint != fp {
		err := zerr.With(ErrLockStale, "locked_fingerprint", l.Fingerprint)
		return zerr.With(err, "manifest_fingerprint", fp)
	}

	for spec := range m.Deps() {
		pinned, ok := l.Packages[spec.Name.String()]
		if !ok {
			return zerr.With(zerr.Wrap(ErrLockStale, "dependency missing from lockfile"), "package", spec.Name.String())
		}
		ok, err := spec.Satisfies(pinned.Version.String())
		if err != nil {
			return err
		}
		if !ok {
			err := zerr.With(zerr.Wrap(ErrLockStale, "pinned version no longer satisfies spec"), "package", spec.Name.String())
			err = zerr.With(err, "pinned", pinned.Version.String())
			return zerr.With(err, "spec", spec.String())
		}
	}

	return nil
}
