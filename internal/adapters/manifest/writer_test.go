package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pkgs.ch/enva/internal/adapters/manifest"
	"go.pkgs.ch/enva/internal/core/domain"
)

func TestRender_Canonical(t *testing.T) {
	content := `
name: odin
channels:
  - defaults
  - conda-forge
dependencies:
  - scipy>=1.5,<2
  - python=3.8
  - pip:
    - tqdm>=4.0
    - torch==1.9.0
`
	m, err := manifest.Load(writeManifest(t, content))
	require.NoError(t, err)

	out, err := manifest.Render(m)
	require.NoError(t, err)

	expected := `name: odin
channels:
    - defaults
    - conda-forge
dependencies:
    - python=3.8
    - scipy>=1.5,<2
    - pip:
        - torch==1.9.0
        - tqdm>=4.0
`
	assert.Equal(t, expected, string(out))
}

func TestRender_RoundTrip(t *testing.T) {
	content := `
name: env
channels:
  - defaults
dependencies:
  - numpy>=1.19
  - pip:
    - torch==1.9.0
`
	m, err := manifest.Load(writeManifest(t, content))
	require.NoError(t, err)

	out, err := manifest.Render(m)
	require.NoError(t, err)

	// Rendering then reloading must not change the fingerprint.
	path := writeManifest(t, string(out))
	reloaded, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, domain.Fingerprint(m), domain.Fingerprint(reloaded))
}

func TestRenderRequirements(t *testing.T) {
	content := `
name: env
channels:
  - defaults
dependencies:
  - python=3.8
  - pip:
    - tqdm>=4.0
    - torch==1.9.0
    - dm-tree ; python_version < '3.9'
`
	m, err := manifest.Load(writeManifest(t, content))
	require.NoError(t, err)

	got := string(manifest.RenderRequirements(m))
	expected := "dm-tree ; python_version < '3.9'\ntorch==1.9.0\ntqdm>=4.0\n"
	assert.Equal(t, expected, got)
}

func TestRenderRequirements_Empty(t *testing.T) {
	m := &domain.Manifest{
		Name:     domain.NewInternedString("env"),
		Channels: []domain.Channel{domain.NewInternedString("defaults")},
	}
	assert.Empty(t, manifest.RenderRequirements(m))
}

func TestRender_WritesLoadableFile(t *testing.T) {
	m := &domain.Manifest{
		Name:     domain.NewInternedString("bare"),
		Channels: []domain.Channel{domain.NewInternedString("defaults")},
	}

	out, err := manifest.Render(m)
	require.NoError(t, err)

	path := writeManifest(t, string(out))
	reloaded, err := manifest.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "bare", reloaded.Name.String())
	require.Len(t, reloaded.Channels, 1)
	assert.Equal(t, "defaults", reloaded.Channels[0].String())
}
