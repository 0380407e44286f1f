package ports

import "go.pkgs.ch/enva/internal/core/domain"

// LockStore defines the interface for reading and writing the lockfile.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type LockStore interface {
	// Get retrieves the stored lockfile.
	// Returns nil, nil when no lockfile has been written yet.
	Get() (*domain.Lockfile, error)

	// Put stores the lockfile, replacing any previous snapshot.
	Put(lock *domain.Lockfile) error
}
