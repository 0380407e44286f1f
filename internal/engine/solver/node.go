package solver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.pkgs.ch/enva/internal/adapters/anaconda"  //nolint:depguard // Wired in engine wiring
	"go.pkgs.ch/enva/internal/adapters/pypi"      //nolint:depguard // Wired in engine wiring
	"go.pkgs.ch/enva/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.pkgs.ch/enva/internal/core/ports"
)

// NodeID is the unique identifier for the solver Graft node.
const NodeID graft.ID = "engine.solver"

func init() {
	graft.Register(graft.Node[*Solver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			anaconda.NodeID,
			pypi.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Solver, error) {
			conda, err := graft.Dep[*anaconda.Resolver](ctx)
			if err != nil {
				return nil, err
			}

			pip, err := graft.Dep[*pypi.Resolver](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return New(conda, pip, tel), nil
		},
	})
}
