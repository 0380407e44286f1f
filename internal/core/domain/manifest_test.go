package domain_test

import (
	"testing"

	"go.pkgs.ch/enva/internal/core/domain"
	"go.trai.ch/zerr"
)

func mustConda(t *testing.T, raw string) domain.MatchSpec {
	t.Helper()
	spec, err := domain.ParseCondaSpec(raw)
	if err != nil {
		t.Fatalf("ParseCondaSpec(%q): %v", raw, err)
	}
	return spec
}

func mustPip(t *testing.T, raw string) domain.MatchSpec {
	t.Helper()
	spec, err := domain.ParsePipSpec(raw)
	if err != nil {
		t.Fatalf("ParsePipSpec(%q): %v", raw, err)
	}
	return spec
}

func TestManifest_Validate(t *testing.T) {
	m := &domain.Manifest{
		Name:     domain.NewInternedString("odin"),
		Channels: []domain.Channel{domain.NewInternedString("defaults"), domain.NewInternedString("conda-forge")},
		CondaDeps: []domain.MatchSpec{
			mustConda(t, "python=3.8"),
			mustConda(t, "numpy>=1.19"),
		},
		PipDeps: []domain.MatchSpec{
			mustPip(t, "torch==1.9.0"),
		},
	}

	if err := m.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestManifest_ValidateMissingName(t *testing.T) {
	m := &domain.Manifest{
		Channels: []domain.Channel{domain.NewInternedString("defaults")},
	}
	if err := m.Validate(); err == nil {
		t.Fatal("expected error for missing name, got nil")
	}
}

func TestManifest_ValidateDuplicate(t *testing.T) {
	m := &domain.Manifest{
		Name:     domain.NewInternedString("env"),
		Channels: []domain.Channel{domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{
			mustConda(t, "numpy>=1.19"),
			mustConda(t, "numpy"),
		},
	}

	err := m.Validate()
	if err == nil {
		t.Fatal("expected duplicate error, got nil")
	}

	zErr, ok := err.(*zerr.Error)
	if !ok {
		t.Fatalf("expected *zerr.Error, got %T: %v", err, err)
	}
	if pkg, ok := zErr.Metadata()["package"].(string); !ok || pkg != "numpy" {
		t.Errorf("expected metadata package=numpy, got %v", zErr.Metadata()["package"])
	}
}

func TestManifest_ValidateConflictingSource(t *testing.T) {
	m := &domain.Manifest{
		Name:      domain.NewInternedString("env"),
		Channels:  []domain.Channel{domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{mustConda(t, "scikit-learn")},
		PipDeps:   []domain.MatchSpec{mustPip(t, "scikit_learn==1.0")},
	}

	// Normalization makes "scikit-learn" and "scikit_learn" the same name,
	// so the partition invariant is violated.
	err := m.Validate()
	if err == nil {
		t.Fatal("expected conflicting source error, got nil")
	}
}

func TestManifest_Canonical(t *testing.T) {
	m := &domain.Manifest{
		Name:     domain.NewInternedString("env"),
		Channels: []domain.Channel{domain.NewInternedString("conda-forge"), domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{
			mustConda(t, "scipy"),
			mustConda(t, "numpy"),
			mustConda(t, "numpy"),
		},
	}

	c := m.Canonical()
	if len(c.CondaDeps) != 2 {
		t.Fatalf("expected 2 deps after dedup, got %d", len(c.CondaDeps))
	}
	if c.CondaDeps[0].Name.String() != "numpy" || c.CondaDeps[1].Name.String() != "scipy" {
		t.Errorf("expected sorted deps, got %v, %v", c.CondaDeps[0].Name, c.CondaDeps[1].Name)
	}

	// Channel order is priority order and must survive canonicalization.
	if c.Channels[0].String() != "conda-forge" {
		t.Errorf("expected channel order preserved, got %v", c.Channels)
	}
}

func TestFingerprint_IgnoresEntryOrder(t *testing.T) {
	a := &domain.Manifest{
		Name:      domain.NewInternedString("env"),
		Channels:  []domain.Channel{domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{mustConda(t, "numpy"), mustConda(t, "scipy")},
	}
	b := &domain.Manifest{
		Name:      domain.NewInternedString("env"),
		Channels:  []domain.Channel{domain.NewInternedString("defaults")},
		CondaDeps: []domain.MatchSpec{mustConda(t, "scipy"), mustConda(t, "numpy")},
	}

	if domain.Fingerprint(a) != domain.Fingerprint(b) {
		t.Error("expected identical fingerprints for reordered manifests")
	}
}

func TestFingerprint_SensitiveToChannels(t *testing.T) {
	a := &domain.Manifest{
		Name:     domain.NewInternedString("env"),
		Channels: []domain.Channel{domain.NewInternedString("defaults"), domain.NewInternedString("conda-forge")},
	}
	b := &domain.Manifest{
		Name:     domain.NewInternedString("env"),
		Channels: []domain.Channel{domain.NewInternedString("conda-forge"), domain.NewInternedString("defaults")},
	}

	if domain.Fingerprint(a) == domain.Fingerprint(b) {
		t.Error("expected different fingerprints for different channel priority")
	}
}
