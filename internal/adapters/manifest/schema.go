package manifest

import (
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// envFile mirrors the on-disk environment.yml structure.
type envFile struct {
	Name         string            `yaml:"name"`
	Channels     []string          `yaml:"channels"`
	Dependencies []dependencyEntry `yaml:"dependencies"`
}

// dependencyEntry is one element of the dependencies list. The list mixes
// two shapes: plain scalar specs ("numpy>=1.19") and a single nested
// mapping holding the pip sub-list.
type dependencyEntry struct {
	Spec  string
	Pip   []string
	IsPip bool
}

// UnmarshalYAML decodes the union by node kind.
func (e *dependencyEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&e.Spec)
	case yaml.MappingNode:
		var m map[string][]string
		if err := node.Decode(&m); err != nil {
			return zerr.Wrap(err, "pip sub-list must be a list of requirement strings")
		}
		pip, ok := m["pip"]
		if !ok || len(m) != 1 {
			return zerr.With(zerr.New("unknown mapping key in dependencies list"), "line", node.Line)
		}
		e.Pip = pip
		e.IsPip = true
		return nil
	default:
		return zerr.With(zerr.New("dependency entry must be a string or a pip mapping"), "line", node.Line)
	}
}
