package telemetry

import (
	"context"
	"io"
	"sync"

	"go.pkgs.ch/enva/internal/core/ports"
)

// Switch is a Telemetry that records to a swappable sink. It starts with
// the no-op recorder, so resolution stays quiet until the CLI enables a
// display.
type Switch struct {
	mu  sync.RWMutex
	tel ports.Telemetry
}

// NewSwitch creates a Switch backed by the no-op recorder.
func NewSwitch() *Switch {
	return &Switch{tel: NewNoOp()}
}

// EnableDisplay routes subsequent vertices to a line display on out.
func (s *Switch) EnableDisplay(out io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tel = NewDisplay(out)
}

// Record starts recording a new vertex on the current sink.
func (s *Switch) Record(ctx context.Context, name string) ports.Vertex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tel.Record(ctx, name)
}

// Close closes the current sink.
func (s *Switch) Close() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tel.Close()
}
