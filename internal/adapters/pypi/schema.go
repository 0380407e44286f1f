package pypi

import "time"

// projectResponse is the index response for /pypi/{name}/json.
type projectResponse struct {
	Info     projectInfo              `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type projectInfo struct {
	Name string `json:"name"`
}

// releaseFile is one published file of a release.
type releaseFile struct {
	Filename    string      `json:"filename"`
	URL         string      `json:"url"`
	PackageType string      `json:"packagetype"`
	Yanked      bool        `json:"yanked"`
	Digests     fileDigests `json:"digests"`
}

type fileDigests struct {
	SHA256 string `json:"sha256"`
}

// cacheEntry is a cached project listing.
type cacheEntry struct {
	Name      string                   `json:"name"`
	Releases  map[string][]releaseFile `json:"releases"`
	Timestamp time.Time                `json:"timestamp"`
}
