package domain

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint computes a deterministic digest of a manifest's semantic
// content: its name, channels in declared order, and both dependency
// lists in canonical order. Two manifests that differ only in formatting
// or entry order produce the same fingerprint.
func Fingerprint(m *Manifest) string {
	c := m.Canonical()
	h := xxhash.New()

	_, _ = h.WriteString(c.Name.String())
	_, _ = h.Write([]byte{0})

	for _, ch := range c.Channels {
		_, _ = h.WriteString(ch.String())
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{0}) // Section separator

	for _, dep := range c.CondaDeps {
		_, _ = h.WriteString(dep.String())
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte{0})

	for _, dep := range c.PipDeps {
		_, _ = h.WriteString(dep.String())
		_, _ = h.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", h.Sum64())
}
