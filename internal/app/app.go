// Package app implements the application layer for enva.
package app

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.pkgs.ch/enva/internal/adapters/manifest"
	"go.pkgs.ch/enva/internal/core/domain"
	"go.pkgs.ch/enva/internal/core/ports"
	"go.pkgs.ch/enva/internal/engine/solver"
	"go.trai.ch/zerr"
)

// Export formats accepted by App.Export.
const (
	FormatYAML         = "yaml"
	FormatRequirements = "requirements"
	FormatLock         = "lock"
)

// App represents the main application logic.
type App struct {
	loader    ports.ManifestLoader
	solver    *solver.Solver
	store     ports.LockStore
	logger    ports.Logger
	platforms []string
}

// New creates a new App instance. An empty platforms list falls back to
// the default platform set.
func New(loader ports.ManifestLoader, s *solver.Solver, store ports.LockStore, logger ports.Logger, platforms []string) *App {
	if len(platforms) == 0 {
		platforms = domain.DefaultPlatforms
	}
	return &App{
		loader:    loader,
		solver:    s,
		store:     store,
		logger:    logger,
		platforms: platforms,
	}
}

// SetManifestFile points the app at a different manifest file.
func (a *App) SetManifestFile(filename string) {
	a.loader = &manifest.FileLoader{Filename: filename}
}

// LockOptions configures a Lock run.
type LockOptions struct {
	// Force re-resolves every dependency, ignoring existing pins.
	Force bool

	// Platforms overrides the platform set when non-empty.
	Platforms []string
}

// Lock resolves the manifest into a pinned lockfile and stores it. An
// up-to-date lockfile is left untouched unless force is set; a stale one
// is re-solved, carrying over pins that still satisfy their specs.
func (a *App) Lock(ctx context.Context, opts LockOptions) error {
	m, err := a.loader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load manifest")
	}

	prev, err := a.store.Get()
	if err != nil {
		return zerr.Wrap(err, "failed to read lockfile")
	}

	platforms := a.platforms
	if len(opts.Platforms) > 0 {
		platforms = opts.Platforms
	}

	if prev != nil && !opts.Force {
		if err := prev.Verify(m); err == nil {
			a.logger.Info(fmt.Sprintf("lockfile up to date for %s", m.Name.String()))
			return nil
		}
	}

	if opts.Force {
		prev = nil
	}

	lock, err := a.solver.Solve(ctx, m, platforms, prev)
	if err != nil {
		return zerr.Wrap(err, "environment resolution failed")
	}

	if err := a.store.Put(lock); err != nil {
		return zerr.Wrap(err, "failed to write lockfile")
	}

	a.logger.Info(fmt.Sprintf("locked %d packages for %s", len(lock.Packages), m.Name.String()))
	return nil
}

// Check verifies the stored lockfile against the current manifest.
func (a *App) Check(_ context.Context) error {
	m, err := a.loader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load manifest")
	}

	lock, err := a.store.Get()
	if err != nil {
		return zerr.Wrap(err, "failed to read lockfile")
	}
	if lock == nil {
		return zerr.With(domain.ErrLockMissing, "environment", m.Name.String())
	}

	if err := lock.Verify(m); err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("lockfile is up to date for %s", m.Name.String()))
	return nil
}

// Export writes the manifest in the requested format: canonical YAML,
// a pip requirements list, or a summary of the pinned lockfile.
func (a *App) Export(_ context.Context, format string, w io.Writer) error {
	m, err := a.loader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load manifest")
	}

	switch format {
	case FormatYAML:
		data, err := manifest.Render(m.Canonical())
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	case FormatRequirements:
		_, err := w.Write(manifest.RenderRequirements(m))
		return err

	case FormatLock:
		lock, err := a.store.Get()
		if err != nil {
			return zerr.Wrap(err, "failed to read lockfile")
		}
		if lock == nil {
			return zerr.With(domain.ErrLockMissing, "environment", m.Name.String())
		}
		return writeLockSummary(w, lock)

	default:
		return zerr.With(zerr.Wrap(domain.ErrInvalidManifest, "unknown export format"), "format", format)
	}
}

// Diff compares two manifest files semantically and writes a report.
// Returns ErrManifestsDiffer when the manifests are not equivalent.
func (a *App) Diff(_ context.Context, fromPath, toPath string, w io.Writer) error {
	from, err := manifest.Load(fromPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to load manifest"), "path", fromPath)
	}
	to, err := manifest.Load(toPath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to load manifest"), "path", toPath)
	}

	d := domain.DiffManifests(from, to)
	if d.Empty() {
		fmt.Fprintf(w, "manifests %s and %s are equivalent\n", d.FromName, d.ToName)
		return nil
	}

	writeDiffReport(w, d)
	return zerr.With(zerr.With(domain.ErrManifestsDiffer, "from", fromPath), "to", toPath)
}

func writeLockSummary(w io.Writer, lock *domain.Lockfile) error {
	names := make([]string, 0, len(lock.Packages))
	for name := range lock.Packages {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "# fingerprint %s\n", lock.Fingerprint)
	for _, name := range names {
		pkg := lock.Packages[name]
		fmt.Fprintf(w, "%s=%s (%s)\n", name, pkg.Version.String(), pkg.Channel.String())
	}
	return nil
}

func writeDiffReport(w io.Writer, d *domain.ManifestDiff) {
	if d.ChannelsChanged {
		fmt.Fprintf(w, "channels: %v -> %v\n", d.FromChannels, d.ToChannels)
	}
	writePartitionReport(w, "conda", d.Conda)
	writePartitionReport(w, "pip", d.Pip)
}

func writePartitionReport(w io.Writer, label string, p domain.PartitionDiff) {
	for _, spec := range p.Added {
		fmt.Fprintf(w, "%s: + %s\n", label, spec)
	}
	for _, spec := range p.Removed {
		fmt.Fprintf(w, "%s: - %s\n", label, spec)
	}
	for _, change := range p.Changed {
		fmt.Fprintf(w, "%s: ~ %s -> %s\n", label, change.From, change.To)
	}
}
