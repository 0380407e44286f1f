// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.pkgs.ch/enva/internal/adapters/anaconda"
	_ "go.pkgs.ch/enva/internal/adapters/lock"
	_ "go.pkgs.ch/enva/internal/adapters/logger"
	_ "go.pkgs.ch/enva/internal/adapters/manifest"
	_ "go.pkgs.ch/enva/internal/adapters/pypi"
	_ "go.pkgs.ch/enva/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.pkgs.ch/enva/internal/app"
	_ "go.pkgs.ch/enva/internal/engine/solver"
)
