// Package telemetry provides the Progrock implementation of the telemetry port.
package telemetry

import (
	"context"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.pkgs.ch/enva/internal/core/ports"
)

// Recorder implements ports.Telemetry using the progrock library, one
// vertex per resolved package.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	rec := progrock.NewRecorder(w)
	return &Recorder{
		w:   w,
		rec: rec,
	}
}

// Record starts recording a new vertex.
func (r *Recorder) Record(_ context.Context, name string) ports.Vertex {
	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return &Vertex{vertex: v}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Vertex implements ports.Vertex wrapping *progrock.VertexRecorder.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// Log attaches a progress message to the vertex.
func (v *Vertex) Log(msg string) {
	_, _ = fmt.Fprintf(v.vertex.Stdout(), "%s\n", msg)
}

// Complete marks the vertex as finished.
func (v *Vertex) Complete(err error) {
	v.vertex.Done(err)
}

// Cached marks the vertex as served from cache.
func (v *Vertex) Cached() {
	v.vertex.Cached()
}
