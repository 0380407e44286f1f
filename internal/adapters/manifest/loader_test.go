package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.pkgs.ch/enva/internal/adapters/manifest"
	"go.pkgs.ch/enva/internal/core/domain"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "environment.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write manifest file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	content := `
name: odin
channels:
  - defaults
  - conda-forge
dependencies:
  - python=3.8
  - numpy>=1.19
  - scikit-learn
  - pip
  - pip:
    - torch==1.9.0
    - tqdm>=4.0
`
	m, err := manifest.Load(writeManifest(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Name.String() != "odin" {
		t.Errorf("expected name odin, got %q", m.Name.String())
	}
	if len(m.Channels) != 2 || m.Channels[0].String() != "defaults" || m.Channels[1].String() != "conda-forge" {
		t.Errorf("unexpected channels: %v", m.Channels)
	}
	if len(m.CondaDeps) != 4 {
		t.Fatalf("expected 4 conda deps, got %d", len(m.CondaDeps))
	}
	if len(m.PipDeps) != 2 {
		t.Fatalf("expected 2 pip deps, got %d", len(m.PipDeps))
	}
	if m.PipDeps[0].Name.String() != "torch" {
		t.Errorf("expected torch first in pip list, got %q", m.PipDeps[0].Name.String())
	}
}

func TestLoad_DefaultChannels(t *testing.T) {
	content := `
name: minimal
dependencies:
  - python
`
	m, err := manifest.Load(writeManifest(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Channels) != 1 || m.Channels[0].String() != "defaults" {
		t.Errorf("expected defaults channel fallback, got %v", m.Channels)
	}
}

func TestLoad_DuplicateChannelsCollapsed(t *testing.T) {
	content := `
name: env
channels:
  - conda-forge
  - defaults
  - conda-forge
dependencies:
  - python
`
	m, err := manifest.Load(writeManifest(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Channels) != 2 || m.Channels[0].String() != "conda-forge" {
		t.Errorf("expected deduped channels preserving order, got %v", m.Channels)
	}
}

func TestLoad_MissingName(t *testing.T) {
	content := `
channels:
  - defaults
dependencies:
  - python
`
	_, err := manifest.Load(writeManifest(t, content))
	if !errors.Is(err, domain.ErrInvalidManifest) {
		t.Fatalf("expected ErrInvalidManifest, got %v", err)
	}
}

func TestLoad_ConflictingSource(t *testing.T) {
	content := `
name: env
channels:
  - defaults
dependencies:
  - numpy
  - pip:
    - numpy==1.21.0
`
	_, err := manifest.Load(writeManifest(t, content))
	if !errors.Is(err, domain.ErrConflictingSource) {
		t.Fatalf("expected ErrConflictingSource, got %v", err)
	}
}

func TestLoad_MultiplePipLists(t *testing.T) {
	content := `
name: env
channels:
  - defaults
dependencies:
  - pip:
    - torch
  - pip:
    - tqdm
`
	_, err := manifest.Load(writeManifest(t, content))
	if err == nil {
		t.Fatal("expected error for multiple pip sub-lists, got nil")
	}
}

func TestLoad_UnknownMappingKey(t *testing.T) {
	content := `
name: env
channels:
  - defaults
dependencies:
  - conda:
    - numpy
`
	_, err := manifest.Load(writeManifest(t, content))
	if err == nil {
		t.Fatal("expected error for unknown mapping key, got nil")
	}
}

func TestLoad_InvalidSpec(t *testing.T) {
	content := `
name: env
channels:
  - defaults
dependencies:
  - numpy>=
`
	_, err := manifest.Load(writeManifest(t, content))
	if !errors.Is(err, domain.ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestFileLoader_AbsoluteFilename(t *testing.T) {
	content := `
name: env
channels:
  - defaults
dependencies:
  - python
`
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write manifest file: %v", err)
	}

	loader := &manifest.FileLoader{Filename: path}
	m, err := loader.Load(".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name.String() != "env" {
		t.Errorf("expected name env, got %q", m.Name.String())
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "environment.yml"))
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestFileLoader_DefaultFilename(t *testing.T) {
	content := `
name: env
channels:
  - defaults
dependencies:
  - python
`
	path := writeManifest(t, content)

	loader := &manifest.FileLoader{}
	m, err := loader.Load(filepath.Dir(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name.String() != "env" {
		t.Errorf("expected name env, got %q", m.Name.String())
	}
}
