package anaconda

import "time"

// packageResponse is the channel API response for a single package.
type packageResponse struct {
	Name     string         `json:"name"`
	Versions []versionEntry `json:"versions"`
}

// versionEntry is one published version with its per-platform files.
type versionEntry struct {
	Version   string                  `json:"version"`
	Platforms map[string]platformFile `json:"platforms"`
}

// platformFile is the artifact published for one conda subdir.
type platformFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	SHA256   string `json:"sha256"`
	Build    string `json:"build"`
}

// cacheEntry is a cached package listing for one channel.
type cacheEntry struct {
	Channel   string         `json:"channel"`
	Name      string         `json:"name"`
	Versions  []versionEntry `json:"versions"`
	Timestamp time.Time      `json:"timestamp"`
}
