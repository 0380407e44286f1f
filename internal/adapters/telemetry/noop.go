package telemetry

import (
	"context"

	"go.pkgs.ch/enva/internal/core/ports"
)

// NoOpRecorder is a no-op implementation of ports.Telemetry, used while
// no display is enabled.
type NoOpRecorder struct{}

// NewNoOp creates a new NoOpRecorder.
func NewNoOp() *NoOpRecorder {
	return &NoOpRecorder{}
}

// Record returns a no-op vertex.
func (r *NoOpRecorder) Record(_ context.Context, _ string) ports.Vertex {
	return &NoOpVertex{}
}

// Close does nothing.
func (r *NoOpRecorder) Close() error {
	return nil
}

// NoOpVertex is a no-op implementation of ports.Vertex.
type NoOpVertex struct{}

// Log does nothing.
func (v *NoOpVertex) Log(_ string) {}

// Complete does nothing.
func (v *NoOpVertex) Complete(_ error) {}

// Cached does nothing.
func (v *NoOpVertex) Cached() {}
