package ports

import "context"

// Telemetry records progress of long-running work, one vertex per unit.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts a new vertex for the named unit of work.
	Record(ctx context.Context, name string) Vertex

	// Close flushes and closes the recording session.
	Close() error
}

// Vertex represents one tracked unit of work.
type Vertex interface {
	// Log attaches a progress message to the vertex.
	Log(msg string)

	// Complete marks the vertex as finished, successfully or with an error.
	Complete(err error)

	// Cached marks the vertex as served from cache.
	Cached()
}
