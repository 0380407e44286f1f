// Package solver turns a validated manifest into a fully pinned lockfile.
package solver

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.pkgs.ch/enva/internal/core/domain"
	"go.pkgs.ch/enva/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Status represents the resolution state of one dependency.
type Status string

const (
	// StatusPending indicates the dependency is waiting to be resolved.
	StatusPending Status = "Pending"
	// StatusRunning indicates the dependency is currently being resolved.
	StatusRunning Status = "Running"
	// StatusResolved indicates the dependency was pinned successfully.
	StatusResolved Status = "Resolved"
	// StatusFailed indicates resolution failed.
	StatusFailed Status = "Failed"
	// StatusReused indicates the pin was carried over from a previous lockfile.
	StatusReused Status = "Reused"
)

// Solver resolves every dependency of a manifest concurrently, routing
// conda specs and pip specs to their respective resolvers.
type Solver struct {
	conda     ports.PackageResolver
	pip       ports.PackageResolver
	telemetry ports.Telemetry

	mu     sync.RWMutex
	status map[domain.InternedString]Status
}

// New creates a Solver backed by the given resolvers.
func New(conda, pip ports.PackageResolver, telemetry ports.Telemetry) *Solver {
	return &Solver{
		conda:     conda,
		pip:       pip,
		telemetry: telemetry,
		status:    make(map[domain.InternedString]Status),
	}
}

func (s *Solver) updateStatus(name domain.InternedString, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = status
}

// Status retrieves the resolution state of a dependency.
func (s *Solver) Status(name domain.InternedString) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[name]
}

// Solve pins every dependency of the manifest for the given platforms.
// Pins from prev whose version still satisfies the current spec are
// carried over without hitting the resolvers; pass nil to force a full
// resolution.
func (s *Solver) Solve(ctx context.Context, m *domain.Manifest, platforms []string, prev *domain.Lockfile) (*domain.Lockfile, error) {
	lock := domain.NewLockfile(domain.Fingerprint(m), platforms)

	specs := make([]domain.MatchSpec, 0, m.DepCount())
	for spec := range m.Deps() {
		specs = append(specs, spec)
		s.updateStatus(spec.Name, StatusPending)
	}

	var lockMu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, spec := range specs {
		g.Go(func() error {
			pkg, reused, err := s.resolveOne(ctx, spec, m.Channels, platforms, prev)
			if err != nil {
				s.updateStatus(spec.Name, StatusFailed)
				return zerr.With(zerr.Wrap(err, "failed to resolve dependency"), "spec", spec.String())
			}

			if reused {
				s.updateStatus(spec.Name, StatusReused)
			} else {
				s.updateStatus(spec.Name, StatusResolved)
			}

			lockMu.Lock()
			lock.Packages[spec.Name.String()] = pkg
			lockMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lock, nil
}

func (s *Solver) resolveOne(ctx context.Context, spec domain.MatchSpec, channels []domain.Channel, platforms []string, prev *domain.Lockfile) (domain.ResolvedPackage, bool, error) {
	vertex := s.telemetry.Record(ctx, fmt.Sprintf("resolve %s", spec.String()))

	if pkg, ok := reusablePin(spec, platforms, prev); ok {
		vertex.Cached()
		vertex.Complete(nil)
		return pkg, true, nil
	}

	s.updateStatus(spec.Name, StatusRunning)

	resolver := s.conda
	if spec.Source == domain.SourcePip {
		resolver = s.pip
	}

	pkg, err := resolver.Resolve(ctx, spec, channels, platforms)
	if err != nil {
		vertex.Complete(err)
		return domain.ResolvedPackage{}, false, err
	}

	vertex.Log(fmt.Sprintf("pinned %s", pkg.Version.String()))
	vertex.Complete(nil)
	return pkg, false, nil
}

// reusablePin reports whether a previous pin can be carried over: same
// source, version still satisfying the spec, artifacts for every
// requested platform.
func reusablePin(spec domain.MatchSpec, platforms []string, prev *domain.Lockfile) (domain.ResolvedPackage, bool) {
	if prev == nil {
		return domain.ResolvedPackage{}, false
	}
	pkg, ok := prev.Package(spec.Name.String())
	if !ok || pkg.Source != spec.Source {
		return domain.ResolvedPackage{}, false
	}
	satisfied, err := spec.Satisfies(pkg.Version.String())
	if err != nil || !satisfied {
		return domain.ResolvedPackage{}, false
	}
	for _, platform := range platforms {
		if _, err := pkg.ArtifactFor(platform); err != nil {
			return domain.ResolvedPackage{}, false
		}
	}
	return pkg, true
}
