package domain

import (
	"os"
	"path/filepath"
)

const (
	// DirPerm is the permission used for directories the tool creates.
	DirPerm = 0o750

	// FilePerm is the permission used for files the tool writes.
	FilePerm = 0o644

	// DefaultManifestFilename is the manifest filename looked up in a
	// working directory when none is given.
	DefaultManifestFilename = "environment.yml"

	// DefaultLockFilename is the lockfile written next to the manifest.
	DefaultLockFilename = "enva.lock.json"
)

// DefaultPlatforms are the platforms a lock resolves for when the user
// does not narrow them down.
var DefaultPlatforms = []string{"linux-64", "osx-64", "osx-arm64", "win-64"}

// DefaultResolverCachePath returns the directory for cached resolver
// responses, honoring the OS user cache dir with a local fallback.
func DefaultResolverCachePath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = ".cache"
	}
	return filepath.Join(base, "enva", "resolve")
}
