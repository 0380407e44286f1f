package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Version(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	os.Args = []string{"enva", "version"}
	assert.Equal(t, 0, run())
}

func TestRun_Export(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tmpDir := t.TempDir()
	manifest := `name: research
channels:
  - defaults
dependencies:
  - numpy>=1.20
  - pip:
      - tqdm
`
	if err := os.WriteFile(tmpDir+"/environment.yml", []byte(manifest), 0o600); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	originalWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	os.Args = []string{"enva", "export", "--format", "requirements"}
	assert.Equal(t, 0, run())
}

func TestRun_ExportMissingManifest(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()

	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	os.Args = []string{"enva", "export"}
	assert.Equal(t, 1, run())
}
