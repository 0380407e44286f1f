package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.pkgs.ch/enva/internal/adapters/lock"      //nolint:depguard // Wired in app layer
	"go.pkgs.ch/enva/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.pkgs.ch/enva/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.pkgs.ch/enva/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.pkgs.ch/enva/internal/core/ports"
	"go.pkgs.ch/enva/internal/engine/solver"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components needed by
// the CLI layer.
type Components struct {
	App       *App
	Logger    ports.Logger
	Telemetry ports.Telemetry
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			solver.NodeID,
			lock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}

			s, err := graft.Dep[*solver.Solver](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.LockStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, s, store, log, nil), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			telemetry.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tel, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:       application,
				Logger:    log,
				Telemetry: tel,
			}, nil
		},
	})
}
