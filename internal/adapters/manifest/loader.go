// Package manifest provides the environment.yml loader and writer.
package manifest

import (
	"os"
	"path/filepath"

	"go.pkgs.ch/enva/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileLoader implements ports.ManifestLoader using a YAML file.
type FileLoader struct {
	Filename string
}

// Load reads the manifest from the given working directory. An absolute
// Filename is used as-is.
func (l *FileLoader) Load(cwd string) (*domain.Manifest, error) {
	filename := l.Filename
	if filename == "" {
		filename = domain.DefaultManifestFilename
	}
	if filepath.IsAbs(filename) {
		return Load(filename)
	}
	return Load(filepath.Join(cwd, filename))
}

// Load reads a manifest file from the given path.
func Load(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read manifest")
	}

	var file envFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse manifest")
	}

	m := &domain.Manifest{
		Name:     domain.NewInternedString(file.Name),
		Channels: canonicalizeChannels(file.Channels),
	}

	sawPip := false
	for _, entry := range file.Dependencies {
		if entry.IsPip {
			// Only one nested pip sub-list is allowed per manifest.
			if sawPip {
				return nil, zerr.Wrap(domain.ErrInvalidManifest, "multiple pip sub-lists")
			}
			sawPip = true

			for _, raw := range entry.Pip {
				spec, err := domain.ParsePipSpec(raw)
				if err != nil {
					return nil, err
				}
				m.PipDeps = append(m.PipDeps, spec)
			}
			continue
		}

		spec, err := domain.ParseCondaSpec(entry.Spec)
		if err != nil {
			return nil, err
		}
		m.CondaDeps = append(m.CondaDeps, spec)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// canonicalizeChannels dedupes while preserving declared order, which is
// priority order. An empty list falls back to the defaults channel.
func canonicalizeChannels(channels []string) []domain.Channel {
	if len(channels) == 0 {
		return []domain.Channel{domain.NewInternedString("defaults")}
	}

	seen := make(map[string]bool, len(channels))
	res := make([]domain.Channel, 0, len(channels))
	for _, ch := range channels {
		if seen[ch] {
			continue
		}
		seen[ch] = true
		res = append(res, domain.NewInternedString(ch))
	}
	return res
}
