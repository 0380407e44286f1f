package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.pkgs.ch/enva/internal/core/ports"
)

const NodeID graft.ID = "adapter.manifest_loader"

func init() {
	graft.Register(graft.Node[ports.ManifestLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ManifestLoader, error) {
			return &FileLoader{}, nil
		},
	})
}
