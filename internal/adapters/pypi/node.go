package pypi

import (
	"context"

	"github.com/grindlemire/graft"
	"go.pkgs.ch/enva/internal/adapters/logger"
	"go.pkgs.ch/enva/internal/core/ports"
)

const NodeID graft.ID = "adapter.pip_resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(log)
		},
	})
}
