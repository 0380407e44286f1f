package manifest

import (
	"strings"

	"go.pkgs.ch/enva/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Render produces the canonical YAML form of a manifest: channels in
// declared order, dependencies sorted by name, the pip sub-list last.
func Render(m *domain.Manifest) ([]byte, error) {
	c := m.Canonical()

	out := envFileDoc{
		Name:     c.Name.String(),
		Channels: make([]string, 0, len(c.Channels)),
	}
	for _, ch := range c.Channels {
		out.Channels = append(out.Channels, ch.String())
	}

	for _, dep := range c.CondaDeps {
		out.Dependencies = append(out.Dependencies, dep.String())
	}
	if len(c.PipDeps) > 0 {
		pip := make([]string, 0, len(c.PipDeps))
		for _, dep := range c.PipDeps {
			pip = append(pip, dep.String())
		}
		out.Dependencies = append(out.Dependencies, map[string][]string{"pip": pip})
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to render manifest")
	}
	return data, nil
}

// envFileDoc is the output shape; dependencies mix strings and the pip map.
type envFileDoc struct {
	Name         string   `yaml:"name"`
	Channels     []string `yaml:"channels"`
	Dependencies []any    `yaml:"dependencies,omitempty"`
}

// RenderRequirements produces a requirements.txt body from the pip
// partition, one requirement per line in canonical sorted order.
func RenderRequirements(m *domain.Manifest) []byte {
	c := m.Canonical()

	var b strings.Builder
	for _, dep := range c.PipDeps {
		b.WriteString(dep.String())
		b.WriteString("\n")
	}
	return []byte(b.String())
}
