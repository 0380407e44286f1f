package lock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.pkgs.ch/enva/internal/core/domain"
	"go.pkgs.ch/enva/internal/core/ports"
)

const NodeID graft.ID = "adapter.lock_store"

func init() {
	graft.Register(graft.Node[ports.LockStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.LockStore, error) {
			store, err := NewStore(domain.DefaultLockFilename)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
