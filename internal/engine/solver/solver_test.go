package solver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pkgs.ch/enva/internal/core/domain"
	"go.pkgs.ch/enva/internal/core/ports/mocks"
	"go.pkgs.ch/enva/internal/engine/solver"
	"go.uber.org/mock/gomock"
)

func testManifest(t *testing.T) *domain.Manifest {
	t.Helper()

	numpy, err := domain.ParseCondaSpec("numpy>=1.20")
	require.NoError(t, err)
	torch, err := domain.ParsePipSpec("torch==1.9.0")
	require.NoError(t, err)

	return &domain.Manifest{
		Name:      domain.NewInternedString("research"),
		Channels:  []domain.Channel{domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{numpy},
		PipDeps:   []domain.MatchSpec{torch},
	}
}

func resolved(name, version, channel string, source domain.DependencySource, platforms []string) domain.ResolvedPackage {
	arts := make(map[string]domain.PlatformArtifact, len(platforms))
	for _, p := range platforms {
		arts[p] = domain.PlatformArtifact{Filename: name + ".artifact", URL: "https://example.invalid/" + name}
	}
	return domain.ResolvedPackage{
		Name:      domain.NewInternedString(name),
		Version:   domain.NewInternedString(version),
		Channel:   domain.NewInternedString(channel),
		Source:    source,
		Platforms: arts,
	}
}

func passiveTelemetry(ctrl *gomock.Controller) *mocks.MockTelemetry {
	tel := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Log(gomock.Any()).AnyTimes()
	vertex.EXPECT().Complete(gomock.Any()).AnyTimes()
	vertex.EXPECT().Cached().AnyTimes()
	tel.EXPECT().Record(gomock.Any(), gomock.Any()).Return(vertex).AnyTimes()
	return tel
}

func TestSolve_RoutesSpecsBySource(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := testManifest(t)
	platforms := []string{"linux-64"}

	conda := mocks.NewMockPackageResolver(ctrl)
	pip := mocks.NewMockPackageResolver(ctrl)

	conda.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), m.Channels, platforms).
		DoAndReturn(func(_ context.Context, spec domain.MatchSpec, _ []domain.Channel, _ []string) (domain.ResolvedPackage, error) {
			assert.Equal(t, "numpy", spec.Name.String())
			return resolved("numpy", "1.21.2", "defaults", domain.SourceConda, platforms), nil
		})
	pip.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), m.Channels, platforms).
		DoAndReturn(func(_ context.Context, spec domain.MatchSpec, _ []domain.Channel, _ []string) (domain.ResolvedPackage, error) {
			assert.Equal(t, "torch", spec.Name.String())
			return resolved("torch", "1.9.0", "pypi", domain.SourcePip, platforms), nil
		})

	s := solver.New(conda, pip, passiveTelemetry(ctrl))

	lock, err := s.Solve(context.Background(), m, platforms, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.Fingerprint(m), lock.Fingerprint)
	assert.Len(t, lock.Packages, 2)
	assert.Equal(t, "1.21.2", lock.Packages["numpy"].Version.String())
	assert.Equal(t, "1.9.0", lock.Packages["torch"].Version.String())
	assert.Equal(t, solver.StatusResolved, s.Status(domain.NewInternedString("numpy")))
	assert.Equal(t, solver.StatusResolved, s.Status(domain.NewInternedString("torch")))
}

func TestSolve_ReusesPreviousPins(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := testManifest(t)
	platforms := []string{"linux-64"}

	prev := domain.NewLockfile("stale-fingerprint", platforms)
	prev.Packages["numpy"] = resolved("numpy", "1.21.2", "defaults", domain.SourceConda, platforms)
	prev.Packages["torch"] = resolved("torch", "1.9.0", "pypi", domain.SourcePip, platforms)

	// Neither resolver may be called when every pin carries over.
	conda := mocks.NewMockPackageResolver(ctrl)
	pip := mocks.NewMockPackageResolver(ctrl)

	s := solver.New(conda, pip, passiveTelemetry(ctrl))

	lock, err := s.Solve(context.Background(), m, platforms, prev)
	require.NoError(t, err)

	assert.Equal(t, "1.21.2", lock.Packages["numpy"].Version.String())
	assert.Equal(t, solver.StatusReused, s.Status(domain.NewInternedString("numpy")))
	assert.Equal(t, solver.StatusReused, s.Status(domain.NewInternedString("torch")))
}

func TestSolve_RefreshesPinOutsideSpec(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := testManifest(t)
	platforms := []string{"linux-64"}

	// numpy 1.19.5 no longer satisfies >=1.20, so only torch carries over.
	prev := domain.NewLockfile("stale-fingerprint", platforms)
	prev.Packages["numpy"] = resolved("numpy", "1.19.5", "defaults", domain.SourceConda, platforms)
	prev.Packages["torch"] = resolved("torch", "1.9.0", "pypi", domain.SourcePip, platforms)

	conda := mocks.NewMockPackageResolver(ctrl)
	pip := mocks.NewMockPackageResolver(ctrl)
	conda.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), m.Channels, platforms).
		Return(resolved("numpy", "1.21.2", "defaults", domain.SourceConda, platforms), nil)

	s := solver.New(conda, pip, passiveTelemetry(ctrl))

	lock, err := s.Solve(context.Background(), m, platforms, prev)
	require.NoError(t, err)

	assert.Equal(t, "1.21.2", lock.Packages["numpy"].Version.String())
	assert.Equal(t, solver.StatusResolved, s.Status(domain.NewInternedString("numpy")))
	assert.Equal(t, solver.StatusReused, s.Status(domain.NewInternedString("torch")))
}

func TestSolve_RefreshesPinMissingPlatform(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := testManifest(t)
	platforms := []string{"linux-64", "osx-arm64"}

	// The previous lock only covers linux-64.
	prev := domain.NewLockfile("stale-fingerprint", []string{"linux-64"})
	prev.Packages["numpy"] = resolved("numpy", "1.21.2", "defaults", domain.SourceConda, []string{"linux-64"})
	prev.Packages["torch"] = resolved("torch", "1.9.0", "pypi", domain.SourcePip, []string{"linux-64"})

	conda := mocks.NewMockPackageResolver(ctrl)
	pip := mocks.NewMockPackageResolver(ctrl)
	conda.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), m.Channels, platforms).
		Return(resolved("numpy", "1.21.2", "defaults", domain.SourceConda, platforms), nil)
	pip.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), m.Channels, platforms).
		Return(resolved("torch", "1.9.0", "pypi", domain.SourcePip, platforms), nil)

	s := solver.New(conda, pip, passiveTelemetry(ctrl))

	lock, err := s.Solve(context.Background(), m, platforms, prev)
	require.NoError(t, err)
	assert.Len(t, lock.Packages, 2)
}

func TestSolve_PropagatesResolverError(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := testManifest(t)
	platforms := []string{"linux-64"}

	conda := mocks.NewMockPackageResolver(ctrl)
	pip := mocks.NewMockPackageResolver(ctrl)
	conda.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), m.Channels, platforms).
		Return(domain.ResolvedPackage{}, domain.ErrPackageNotFound)
	pip.EXPECT().
		Resolve(gomock.Any(), gomock.Any(), m.Channels, platforms).
		Return(resolved("torch", "1.9.0", "pypi", domain.SourcePip, platforms), nil).
		MaxTimes(1)

	s := solver.New(conda, pip, passiveTelemetry(ctrl))

	_, err := s.Solve(context.Background(), m, platforms, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPackageNotFound))
	assert.Equal(t, solver.StatusFailed, s.Status(domain.NewInternedString("numpy")))
}
