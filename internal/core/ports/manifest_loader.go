// Package ports defines the core interfaces for the application.
package ports

import "go.pkgs.ch/enva/internal/core/domain"

// ManifestLoader defines the interface for loading an environment manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// Load reads and validates the manifest from the given working directory.
	Load(cwd string) (*domain.Manifest, error)
}
