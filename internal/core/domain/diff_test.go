package domain_test

import (
	"testing"

	"go.pkgs.ch/enva/internal/core/domain"
)

func TestDiffManifests(t *testing.T) {
	from := &domain.Manifest{
		Name:     domain.NewInternedString("env"),
		Channels: []domain.Channel{domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{
			mustConda(t, "python=3.8"),
			mustConda(t, "numpy>=1.19"),
			mustConda(t, "scipy"),
		},
		PipDeps: []domain.MatchSpec{mustPip(t, "torch==1.9.0")},
	}
	to := &domain.Manifest{
		Name:     domain.NewInternedString("env"),
		Channels: []domain.Channel{domain.NewInternedString("conda-forge"), domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{
			mustConda(t, "python=3.9"),
			mustConda(t, "numpy>=1.19"),
			mustConda(t, "pandas"),
		},
		PipDeps: []domain.MatchSpec{mustPip(t, "torch==1.9.0")},
	}

	d := domain.DiffManifests(from, to)

	if d.Empty() {
		t.Fatal("expected a non-empty diff")
	}
	if !d.ChannelsChanged {
		t.Error("expected channel change to be detected")
	}
	if len(d.Conda.Added) != 1 || d.Conda.Added[0] != "pandas" {
		t.Errorf("expected pandas added, got %v", d.Conda.Added)
	}
	if len(d.Conda.Removed) != 1 || d.Conda.Removed[0] != "scipy" {
		t.Errorf("expected scipy removed, got %v", d.Conda.Removed)
	}
	if len(d.Conda.Changed) != 1 || d.Conda.Changed[0].Name != "python" {
		t.Fatalf("expected python respecified, got %v", d.Conda.Changed)
	}
	if d.Conda.Changed[0].From != "python=3.8" || d.Conda.Changed[0].To != "python=3.9" {
		t.Errorf("unexpected change detail: %+v", d.Conda.Changed[0])
	}
	if len(d.Pip.Added) != 0 || len(d.Pip.Removed) != 0 || len(d.Pip.Changed) != 0 {
		t.Errorf("expected no pip changes, got %+v", d.Pip)
	}
}

func TestDiffManifests_Equivalent(t *testing.T) {
	a := &domain.Manifest{
		Name:      domain.NewInternedString("a"),
		Channels:  []domain.Channel{domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{mustConda(t, "numpy"), mustConda(t, "scipy")},
	}
	b := &domain.Manifest{
		Name:      domain.NewInternedString("b"),
		Channels:  []domain.Channel{domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{mustConda(t, "scipy"), mustConda(t, "numpy")},
	}

	d := domain.DiffManifests(a, b)
	if !d.Empty() {
		t.Errorf("expected equivalent manifests (name changes do not count), got %+v", d)
	}
}
