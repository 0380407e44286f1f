package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidManifest is returned when a manifest fails schema validation.
	ErrInvalidManifest = zerr.New("invalid manifest")

	// ErrInvalidSpec is returned when a dependency entry cannot be parsed.
	ErrInvalidSpec = zerr.New("invalid dependency spec")

	// ErrInvalidVersion is returned when a version string cannot be parsed.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrDuplicateDependency is returned when a package name appears twice
	// within the same dependency list.
	ErrDuplicateDependency = zerr.New("duplicate dependency")

	// ErrConflictingSource is returned when a package name appears in both
	// the conda and the pip lists. The two partitions are disjoint.
	ErrConflictingSource = zerr.New("dependency declared in both conda and pip lists")

	// ErrPackageNotFound is returned when no channel or index knows the package.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrNoSatisfyingVersion is returned when the package exists but no
	// published version meets the spec's constraints.
	ErrNoSatisfyingVersion = zerr.New("no version satisfies constraints")

	// ErrUnsupportedPlatform is returned when a resolved package has no
	// artifact for a requested platform.
	ErrUnsupportedPlatform = zerr.New("package unavailable for platform")

	// ErrLockMissing is returned when an operation needs a lockfile that
	// has not been written yet.
	ErrLockMissing = zerr.New("lockfile not found")

	// ErrLockStale is returned when the lockfile no longer matches the
	// manifest it was generated from.
	ErrLockStale = zerr.New("lockfile is stale")

	// ErrManifestsDiffer is returned by diff when the two manifests are
	// not equivalent. The CLI maps it to a non-zero exit status.
	ErrManifestsDiffer = zerr.New("manifests differ")

	// ErrCacheReadFailed and ErrCacheWriteFailed cover the resolver's
	// local metadata cache.
	ErrCacheReadFailed  = zerr.New("failed to read resolver cache")
	ErrCacheWriteFailed = zerr.New("failed to write resolver cache")
)
