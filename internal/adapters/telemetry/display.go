package telemetry

import (
	"fmt"
	"io"
	"sync"

	"github.com/vito/progrock"
)

// display is a progrock.Writer that renders vertex state transitions as
// plain lines, one line per transition.
type display struct {
	out io.Writer

	mu   sync.Mutex
	seen map[string]string
}

// NewDisplay creates a Recorder that renders progress lines to out.
func NewDisplay(out io.Writer) *Recorder {
	return NewRecorder(&display{
		out:  out,
		seen: make(map[string]string),
	})
}

// WriteStatus prints a line for every vertex whose state changed since
// the last update.
func (d *display) WriteStatus(update *progrock.StatusUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, v := range update.Vertexes {
		state, line := vertexLine(v)
		if d.seen[v.Id] == state {
			continue
		}
		d.seen[v.Id] = state
		if _, err := fmt.Fprintln(d.out, line); err != nil {
			return err
		}
	}
	return nil
}

// Close implements the optional closer used by Recorder.Close.
func (d *display) Close() error {
	return nil
}

func vertexLine(v *progrock.Vertex) (state, line string) {
	switch {
	case v.Error != nil:
		return "failed", fmt.Sprintf("✗ %s: %s", v.Name, *v.Error)
	case v.Cached:
		return "cached", fmt.Sprintf("✓ %s (cached)", v.Name)
	case v.Completed != nil:
		return "done", fmt.Sprintf("✓ %s", v.Name)
	default:
		return "running", fmt.Sprintf("• %s", v.Name)
	}
}
