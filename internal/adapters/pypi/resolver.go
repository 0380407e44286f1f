// Package pypi implements the PackageResolver port against the PyPI
// JSON API with local caching.
package pypi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.pkgs.ch/enva/internal/core/domain"
	"go.pkgs.ch/enva/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	pypiAPIBase       = "https://pypi.org/pypi"
	httpClientTimeout = 30 * time.Second
)

// wheelTags maps conda-style platform strings to wheel platform tag
// substrings accepted for that platform.
var wheelTags = map[string][]string{
	"linux-64":  {"manylinux", "linux_x86_64"},
	"osx-64":    {"macosx_10", "macosx_11", "macosx_12"},
	"osx-arm64": {"macosx_11_0_arm64", "arm64"},
	"win-64":    {"win_amd64"},
}

// Resolver implements ports.PackageResolver for pip dependencies.
type Resolver struct {
	baseURL    string
	cacheDir   string
	httpClient *http.Client
	logger     ports.Logger
}

// NewResolver creates a new index resolver with the default API base and
// cache directory.
func NewResolver(log ports.Logger) (*Resolver, error) {
	return newResolverWithClient(filepath.Join(domain.DefaultResolverCachePath(), "pypi"), pypiAPIBase, &http.Client{
		Timeout: httpClientTimeout,
	}, log)
}

// newResolverWithClient creates a Resolver with a custom cache path, API
// base, and http client (used for testing).
func newResolverWithClient(path, baseURL string, client *http.Client, log ports.Logger) (*Resolver, error) {
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(cleanPath, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create resolver cache directory")
	}

	return &Resolver{
		baseURL:    baseURL,
		cacheDir:   cleanPath,
		httpClient: client,
		logger:     log,
	}, nil
}

// Resolve picks the greatest release satisfying the spec. Channels are
// ignored: pip dependencies always come from the configured index.
func (r *Resolver) Resolve(ctx context.Context, spec domain.MatchSpec, _ []domain.Channel, platforms []string) (domain.ResolvedPackage, error) {
	name := spec.Name.String()

	releases, err := r.releasesFor(ctx, name)
	if err != nil {
		return domain.ResolvedPackage{}, err
	}

	versions := make([]string, 0, len(releases))
	for version, files := range releases {
		if len(files) == 0 {
			continue
		}
		ok, err := spec.Satisfies(version)
		if err != nil || !ok {
			continue
		}
		versions = append(versions, version)
	}
	if len(versions) == 0 {
		err := zerr.With(domain.ErrNoSatisfyingVersion, "package", name)
		return domain.ResolvedPackage{}, zerr.With(err, "spec", spec.String())
	}

	slices.SortFunc(versions, func(a, b string) int {
		cmp, err := domain.CompareVersions(b, a)
		if err != nil {
			return 0
		}
		return cmp
	})

	var missing string
	for _, version := range versions {
		arts, miss := artifactsFor(releases[version], platforms)
		if miss != "" {
			if missing == "" {
				missing = miss
			}
			continue
		}
		return domain.ResolvedPackage{
			Name:      spec.Name,
			Version:   domain.NewInternedString(version),
			Channel:   domain.NewInternedString("pypi"),
			Source:    domain.SourcePip,
			Platforms: arts,
		}, nil
	}

	err = zerr.With(domain.ErrUnsupportedPlatform, "package", name)
	err = zerr.With(err, "platform", missing)
	return domain.ResolvedPackage{}, zerr.With(err, "best_version", versions[0])
}

// artifactsFor picks a file per platform: a platform-matching wheel, then
// a universal wheel, then an sdist. Yanked files are skipped.
func artifactsFor(files []releaseFile, platforms []string) (map[string]domain.PlatformArtifact, string) {
	arts := make(map[string]domain.PlatformArtifact, len(platforms))
	for _, platform := range platforms {
		file, ok := pickFile(files, platform)
		if !ok {
			return nil, platform
		}
		arts[platform] = domain.PlatformArtifact{
			Filename: file.Filename,
			URL:      file.URL,
			SHA256:   file.Digests.SHA256,
		}
	}
	return arts, ""
}

func pickFile(files []releaseFile, platform string) (releaseFile, bool) {
	var universal, sdist *releaseFile

	for i := range files {
		file := &files[i]
		if file.Yanked {
			continue
		}
		switch file.PackageType {
		case "bdist_wheel":
			if wheelMatchesPlatform(file.Filename, platform) {
				return *file, true
			}
			if strings.HasSuffix(file.Filename, "-any.whl") && universal == nil {
				universal = file
			}
		case "sdist":
			if sdist == nil {
				sdist = file
			}
		}
	}

	if universal != nil {
		return *universal, true
	}
	if sdist != nil {
		return *sdist, true
	}
	return releaseFile{}, false
}

func wheelMatchesPlatform(filename, platform string) bool {
	for _, tag := range wheelTags[platform] {
		if strings.Contains(filename, tag) {
			return true
		}
	}
	return false
}

// releasesFor returns the published releases of a project, cache first,
// then the index API.
func (r *Resolver) releasesFor(ctx context.Context, name string) (map[string][]releaseFile, error) {
	cachePath := r.getCachePath(name)
	if releases, err := r.loadFromCache(cachePath); err == nil {
		return releases, nil
	}

	resp, err := r.queryAPI(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := r.saveToCache(cachePath, resp); err != nil {
		// A cache write failure is not fatal to the resolution.
		r.logger.Warn(fmt.Sprintf("failed to cache release listing for %s: %v", name, err))
	}

	return resp.Releases, nil
}

func (r *Resolver) queryAPI(ctx context.Context, name string) (*projectResponse, error) {
	url := fmt.Sprintf("%s/%s/json", r.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build index API request")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "index API request failed")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		err := zerr.With(domain.ErrPackageNotFound, "package", name)
		return nil, zerr.With(err, "index", r.baseURL)
	default:
		err := zerr.With(zerr.New("index API returned unexpected status"), "status", resp.StatusCode)
		return nil, zerr.With(err, "url", url)
	}

	var body projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, zerr.Wrap(err, "failed to decode index API response")
	}
	return &body, nil
}

func getHash(name string) string {
	hash := sha256.Sum256([]byte("pypi::" + name))
	return hex.EncodeToString(hash[:])
}

func (r *Resolver) getCachePath(name string) string {
	return filepath.Join(r.cacheDir, getHash(name)+".json")
}

func (r *Resolver) loadFromCache(path string) (map[string][]releaseFile, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheReadFailed
		}
		return nil, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}
	return entry.Releases, nil
}

func (r *Resolver) saveToCache(path string, resp *projectResponse) error {
	entry := cacheEntry{
		Name:      resp.Info.Name,
		Releases:  resp.Releases,
		Timestamp: time.Now(),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	if err := atomicWriteFile(path, data); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp
// file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "resolver-cache-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
