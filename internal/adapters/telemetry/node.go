package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.pkgs.ch/enva/internal/core/ports"
)

// NodeID is the unique identifier for the telemetry adapter node.
const NodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			return NewSwitch(), nil
		},
	})
}
