package domain

import (
	"slices"
	"strings"
)

// SpecChange records a dependency whose spec changed between two manifests.
type SpecChange struct {
	Name string
	From string
	To   string
}

// PartitionDiff is the per-partition (conda or pip) dependency delta.
// Added and Removed hold canonical spec strings.
type PartitionDiff struct {
	Added   []string
	Removed []string
	Changed []SpecChange
}

func (p PartitionDiff) empty() bool {
	return len(p.Added) == 0 && len(p.Removed) == 0 && len(p.Changed) == 0
}

// ManifestDiff is the semantic difference between two manifests.
type ManifestDiff struct {
	FromName string
	ToName   string

	ChannelsChanged bool
	FromChannels    []string
	ToChannels      []string

	Conda PartitionDiff
	Pip   PartitionDiff
}

// Empty reports whether the two manifests are semantically equivalent.
// The environment name is reported but does not count as a difference.
func (d *ManifestDiff) Empty() bool {
	return !d.ChannelsChanged && d.Conda.empty() && d.Pip.empty()
}

// DiffManifests compares two manifests semantically: channels in declared
// order, then each partition by normalized package name.
func DiffManifests(from, to *Manifest) *ManifestDiff {
	a, b := from.Canonical(), to.Canonical()

	d := &ManifestDiff{
		FromName:     a.Name.String(),
		ToName:       b.Name.String(),
		FromChannels: channelStrings(a.Channels),
		ToChannels:   channelStrings(b.Channels),
	}
	d.ChannelsChanged = !slices.Equal(d.FromChannels, d.ToChannels)
	d.Conda = diffPartition(a.CondaDeps, b.CondaDeps)
	d.Pip = diffPartition(a.PipDeps, b.PipDeps)
	return d
}

func channelStrings(channels []Channel) []string {
	out := make([]string, len(channels))
	for i, ch := range channels {
		out[i] = ch.String()
	}
	return out
}

func diffPartition(from, to []MatchSpec) PartitionDiff {
	fromByName := specsByName(from)
	toByName := specsByName(to)

	var d PartitionDiff
	for _, spec := range from {
		other, ok := toByName[spec.Name]
		if !ok {
			d.Removed = append(d.Removed, spec.String())
			continue
		}
		if other.String() != spec.String() {
			d.Changed = append(d.Changed, SpecChange{
				Name: spec.Name.String(),
				From: spec.String(),
				To:   other.String(),
			})
		}
	}
	for _, spec := range to {
		if _, ok := fromByName[spec.Name]; !ok {
			d.Added = append(d.Added, spec.String())
		}
	}

	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.SortFunc(d.Changed, func(a, b SpecChange) int {
		return strings.Compare(a.Name, b.Name)
	})
	return d
}

func specsByName(specs []MatchSpec) map[InternedString]MatchSpec {
	out := make(map[InternedString]MatchSpec, len(specs))
	for _, spec := range specs {
		out[spec.Name] = spec
	}
	return out
}
