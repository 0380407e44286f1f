package ports

import (
	"context"

	"go.pkgs.ch/enva/internal/core/domain"
)

// PackageResolver pins one dependency spec to a concrete version with
// per-platform artifacts.
//
// Implementations consult channels in the given priority order (the pip
// resolver ignores them) and should serve repeated lookups from a local
// cache before going to the network.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type PackageResolver interface {
	// Resolve picks the greatest published version satisfying the spec
	// and returns it with artifact metadata for every requested platform.
	Resolve(ctx context.Context, spec domain.MatchSpec, channels []domain.Channel, platforms []string) (domain.ResolvedPackage, error)
}
