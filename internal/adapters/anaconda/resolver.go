// Package anaconda implements the PackageResolver port against an
// anaconda.org-style channel API with local caching.
package anaconda

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
	"time"

	"go.pkgs.ch/enva/internal/core/domain"
	"go.pkgs.ch/enva/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	anacondaAPIBase   = "https://api.anaconda.org/package"
	httpClientTimeout = 30 * time.Second
)

// Resolver implements ports.PackageResolver for conda channels.
type Resolver struct {
	baseURL    string
	cacheDir   string
	httpClient *http.Client
	logger     ports.Logger
}

// NewResolver creates a new channel resolver with the default API base
// and cache directory.
func NewResolver(log ports.Logger) (*Resolver, error) {
	return newResolverWithClient(domain.DefaultResolverCachePath(), anacondaAPIBase, &http.Client{
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

// Resolve picks the greatest version satisfying the spec from the first
// channel that knows the package, honoring a per-spec channel override.
// Every requested platform must have an artifact.
func (r *Resolver) Resolve(ctx context.Context, spec domain.MatchSpec, channels []domain.Channel, platforms []string) (domain.ResolvedPackage, error) {
	if override := spec.Channel.String(); override != "" {
		channels = []domain.Channel{spec.Channel}
	}

	name := spec.Name.String()
	found := false
	for _, channel := range channels {
		versions, err := r.versionsFor(ctx, channel.String(), name)
		if err != nil {
			if errors.Is(err, domain.ErrPackageNotFound) {
				continue
			}
			return domain.ResolvedPackage{}, err
		}
		found = true

		pkg, err := pickVersion(spec, channel.String(), versions, platforms)
		if err != nil {
			if errors.Is(err, domain.ErrNoSatisfyingVersion) {
				// A lower-priority channel may still carry a satisfying version.
				continue
			}
			return domain.ResolvedPackage{}, err
		}
		return pkg, nil
	}

	if found {
		err := zerr.With(domain.ErrNoSatisfyingVersion, "package", name)
		return domain.ResolvedPackage{}, zerr.With(err, "spec", spec.String())
	}
	err := zerr.With(domain.ErrPackageNotFound, "package", name)
	return domain.ResolvedPackage{}, zerr.With(err, "channels", channelNames(channels))
}

// pickVersion selects the greatest satisfying version that carries an
// artifact for every requested platform.
func pickVersion(spec domain.MatchSpec, channel string, versions []versionEntry, platforms []string) (domain.ResolvedPackage, error) {
	candidates := make([]versionEntry, 0, len(versions))
	for _, entry := range versions {
		ok, err := spec.Satisfies(entry.Version)
		if err != nil || !ok {
			continue
		}
		candidates = append(candidates, entry)
	}
	if len(candidates) == 0 {
		return domain.ResolvedPackage{}, domain.ErrNoSatisfyingVersion
	}

	slices.SortFunc(candidates, func(a, b versionEntry) int {
		cmp, err := domain.CompareVersions(b.Version, a.Version)
		if err != nil {
			return 0
		}
		return cmp
	})

	var missing string
	for _, entry := range candidates {
		arts, miss := artifactsFor(spec, entry, platforms)
		if miss != "" {
			if missing == "" {
				missing = miss
			}
			continue
		}
		return domain.ResolvedPackage{
			Name:      spec.Name,
			Version:   domain.NewInternedString(entry.Version),
			Channel:   domain.NewInternedString(channel),
			Source:    domain.SourceConda,
			Platforms: arts,
		}, nil
	}

	err := zerr.With(domain.ErrUnsupportedPlatform, "package", spec.Name.String())
	err = zerr.With(err, "platform", missing)
	return domain.ResolvedPackage{}, zerr.With(err, "best_version", candidates[0].Version)
}

// artifactsFor collects artifacts for all requested platforms, applying
// the spec's build string filter. Returns the first missing platform.
func artifactsFor(spec domain.MatchSpec, entry versionEntry, platforms []string) (map[string]domain.PlatformArtifact, string) {
	arts := make(map[string]domain.PlatformArtifact, len(platforms))
	for _, platform := range platforms {
		file, ok := entry.Platforms[platform]
		if !ok || !buildMatches(spec.Build, file.Build) {
			return nil, platform
		}
		arts[platform] = domain.PlatformArtifact{
			Filename: file.Filename,
			URL:      file.URL,
			SHA256:   file.SHA256,
			Build:    file.Build,
		}
	}
	return arts, ""
}

// buildMatches applies a conda build string filter, with a trailing "*"
// acting as a prefix match.
func buildMatches(want, have string) bool {
	if want == "" {
		return true
	}
	if n := len(want); want[n-1] == '*' {
		return len(have) >= n-1 && have[:n-1] == want[:n-1]
	}
	return want == have
}

// versionsFor returns the published versions of a package on a channel,
// cache first, then the channel API.
func (r *Resolver) versionsFor(ctx context.Context, channel, name string) ([]versionEntry, error) {
	cachePath := r.getCachePath(channel, name)
	if versions, err := r.loadFromCache(cachePath); err == nil {
		return versions, nil
	}

	resp, err := r.queryAPI(ctx, channel, name)
	if err != nil {
		return nil, err
	}

	if err := r.saveToCache(cachePath, channel, resp); err != nil {
		// A cache write failure is not fatal to the resolution.
		r.logger.Warn(fmt.Sprintf("failed to cache version listing for %s::%s: %v", channel, name, err))
	}

	return resp.Versions, nil
}

func (r *Resolver) queryAPI(ctx context.Context, channel, name string) (*packageResponse, error) {
	url := fmt.Sprintf("%s/%s/%s", r.baseURL, channel, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to build channel API request")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, zerr.Wrap(err, "channel API request failed")
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close in defer

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		err := zerr.With(domain.ErrPackageNotFound, "package", name)
		return nil, zerr.With(err, "channel", channel)
	default:
		err := zerr.With(zerr.New("channel API returned unexpected status"), "status", resp.StatusCode)
		return nil, zerr.With(err, "url", url)
	}

	var body packageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, zerr.Wrap(err, "failed to decode channel API response")
	}
	return &body, nil
}

// getHash generates a deterministic cache key for a channel/package pair.
func getHash(channel, name string) string {
	hash := sha256.Sum256([]byte(channel + "::" + name))
	return hex.EncodeToString(hash[:])
}

func (r *Resolver) getCachePath(channel, name string) string {
	return filepath.Join(r.cacheDir, getHash(channel, name)+".json")
}

func (r *Resolver) loadFromCache(path string) ([]versionEntry, error) {
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
	return entry.Versions, nil
}

func (r *Resolver) saveToCache(path, channel string, resp *packageResponse) error {
	entry := cacheEntry{
		Channel:   channel,
		Name:      resp.Name,
		Versions:  resp.Versions,
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

func channelNames(channels []domain.Channel) string {
	names := ""
	for i, ch := range channels {
		if i > 0 {
			names += ","
		}
		names += ch.String()
	}
	return names
}
