package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ConstraintOp is a version constraint operator.
type ConstraintOp string

const (
	// OpFuzzy is conda's single-equals prefix match ("python=3.8" accepts 3.8.12).
	OpFuzzy ConstraintOp = "="
	// OpEqual is an exact match, or a prefix match when the version carries
	// a trailing ".*" wildcard.
	OpEqual ConstraintOp = "=="
	// OpNotEqual excludes a version or, with a wildcard, a version prefix.
	OpNotEqual ConstraintOp = "!="
	// OpGreater, OpGreaterEq, OpLess and OpLessEq are relational bounds.
	OpGreater   ConstraintOp = ">"
	OpGreaterEq ConstraintOp = ">="
	OpLess      ConstraintOp = "<"
	OpLessEq    ConstraintOp = "<="
	// OpCompatible is pip's compatible-release operator ("~=3.7" means
	// ">=3.7, ==3.*").
	OpCompatible ConstraintOp = "~="
)

// Constraint is a single operator/version clause. Clauses within a spec
// are conjunctive: a candidate must satisfy all of them.
type Constraint struct {
	Op      ConstraintOp
	Version string
}

// MatchSpec is one dependency entry of a manifest: a package name with an
// optional set of version constraints, plus the source-specific trimmings
// (conda build string and channel override, pip extras and marker).
type MatchSpec struct {
	// Name is the normalized package name.
	Name InternedString

	// Channel is an optional per-package channel override from the
	// "channel::name" form. Empty means "use the manifest channels".
	Channel InternedString

	// Build is the conda build string from the "name=version=build" form.
	Build string

	// Extras are pip extras from the "name[extra,...]" form.
	Extras []string

	// Marker is a raw pip environment marker, retained verbatim.
	Marker string

	Constraints []Constraint
	Source      DependencySource

	raw string
}

// specOps are tried longest-first so "==" is not read as two "=" clauses.
var specOps = []ConstraintOp{OpEqual, OpNotEqual, OpGreaterEq, OpLessEq, OpCompatible, OpGreater, OpLess, OpFuzzy}

// ParseCondaSpec parses a conda dependency entry such as "numpy",
// "python=3.8", "scipy>=1.5,<2", "mkl=2021.*", "libblas=3.9=netlib", or
// the space-separated "numpy 1.7" form. A leading "channel::" prefix
// overrides the manifest channels for this package.
func ParseCondaSpec(raw string) (MatchSpec, error) {
	s := strings.TrimSpace(raw)
	spec := MatchSpec{Source: SourceConda, raw: raw}

	if idx := strings.Index(s, "::"); idx >= 0 {
		channel := strings.TrimSpace(s[:idx])
		if channel == "" {
			return MatchSpec{}, zerr.With(ErrInvalidSpec, "spec", raw)
		}
		spec.Channel = NewInternedString(strings.ToLower(channel))
		s = s[idx+2:]
	}

	// "name version [build]" with spaces means a fuzzy version match.
	// Specs that spell out operators just get their whitespace stripped.
	if fields := strings.Fields(s); len(fields) > 1 && !strings.ContainsAny(s, "=<>!~") {
		if len(fields) > 3 {
			return MatchSpec{}, zerr.With(ErrInvalidSpec, "spec", raw)
		}
		s = fields[0] + "=" + fields[1]
		if len(fields) == 3 {
			spec.Build = fields[2]
		}
	} else {
		s = strings.ReplaceAll(s, " ", "")
	}

	name, rest := splitName(s)
	if err := validateName(name); err != nil {
		return MatchSpec{}, zerr.With(err, "spec", raw)
	}
	spec.Name = NewInternedString(NormalizeName(name, SourceConda))

	if rest == "" {
		return spec, nil
	}

	// The single-clause fuzzy form may carry a build string after a second "=".
	if strings.HasPrefix(rest, string(OpFuzzy)) && !strings.HasPrefix(rest, string(OpEqual)) && !strings.ContainsAny(rest, ",|") {
		version, build, _ := strings.Cut(rest[1:], "=")
		if err := validateConstraintVersion(version); err != nil {
			return MatchSpec{}, zerr.With(err, "spec", raw)
		}
		spec.Constraints = []Constraint{{Op: OpFuzzy, Version: version}}
		if build != "" {
			spec.Build = build
		}
		return spec, nil
	}

	constraints, err := parseConstraintList(rest)
	if err != nil {
		return MatchSpec{}, zerr.With(err, "spec", raw)
	}
	spec.Constraints = constraints
	return spec, nil
}

// ParsePipSpec parses a pip requirement such as "torch==1.9.0",
// "tqdm>=4.0", "typing-extensions~=3.7", or "soundfile[extra] ; sys_platform
// == 'win32'". Environment markers are retained but not evaluated.
func ParsePipSpec(raw string) (MatchSpec, error) {
	s := strings.TrimSpace(raw)
	spec := MatchSpec{Source: SourcePip, raw: raw}

	if semi := strings.Index(s, ";"); semi >= 0 {
		spec.Marker = strings.TrimSpace(s[semi+1:])
		s = strings.TrimSpace(s[:semi])
	}

	s = strings.NewReplacer(" ", "", "(", "", ")", "").Replace(s)

	if open := strings.IndexByte(s, '['); open >= 0 {
		closing := strings.IndexByte(s, ']')
		if closing < open {
			return MatchSpec{}, zerr.With(ErrInvalidSpec, "spec", raw)
		}
		for _, extra := range strings.Split(s[open+1:closing], ",") {
			if extra != "" {
				spec.Extras = append(spec.Extras, strings.ToLower(extra))
			}
		}
		s = s[:open] + s[closing+1:]
	}

	name, rest := splitName(s)
	if err := validateName(name); err != nil {
		return MatchSpec{}, zerr.With(err, "spec", raw)
	}
	spec.Name = NewInternedString(NormalizeName(name, SourcePip))

	if rest == "" {
		return spec, nil
	}

	// pip's "===" arbitrary equality collapses into an exact match here.
	rest = strings.ReplaceAll(rest, "===", "==")

	constraints, err := parseConstraintList(rest)
	if err != nil {
		return MatchSpec{}, zerr.With(err, "spec", raw)
	}
	spec.Constraints = constraints
	return spec, nil
}

// splitName cuts a spec at the first operator character.
func splitName(s string) (name, rest string) {
	if i := strings.IndexAny(s, "=<>!~"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

func parseConstraintList(s string) ([]Constraint, error) {
	clauses := strings.Split(s, ",")
	constraints := make([]Constraint, 0, len(clauses))
	for _, clause := range clauses {
		if clause == "" {
			return nil, ErrInvalidSpec
		}
		c, err := parseConstraint(clause)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}
	return constraints, nil
}

func parseConstraint(clause string) (Constraint, error) {
	for _, op := range specOps {
		if strings.HasPrefix(clause, string(op)) {
			version := clause[len(op):]
			if err := validateConstraintVersion(version); err != nil {
				return Constraint{}, err
			}
			if strings.Contains(version, "*") && op != OpEqual && op != OpNotEqual && op != OpFuzzy {
				return Constraint{}, ErrInvalidSpec
			}
			return Constraint{Op: op, Version: version}, nil
		}
	}
	return Constraint{}, ErrInvalidSpec
}

func validateName(name string) error {
	if name == "" {
		return ErrInvalidSpec
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_':
			if i == 0 {
				return ErrInvalidSpec
			}
		default:
			return ErrInvalidSpec
		}
	}
	return nil
}

func validateConstraintVersion(version string) error {
	if version == "" {
		return ErrInvalidSpec
	}
	if _, err := ParseVersion(strings.TrimSuffix(strings.TrimSuffix(version, "*"), ".")); err != nil {
		// A bare "*" matches anything and parses to nothing.
		if version != "*" {
			return err
		}
	}
	return nil
}

// Raw returns the spec exactly as it appeared in the manifest.
func (s MatchSpec) Raw() string {
	return s.raw
}

// HasConstraints reports whether the spec pins the version at all.
func (s MatchSpec) HasConstraints() bool {
	return len(s.Constraints) > 0
}

// String renders the spec in canonical form.
func (s MatchSpec) String() string {
	var b strings.Builder
	if s.Channel.String() != "" {
		b.WriteString(s.Channel.String())
		b.WriteString("::")
	}
	b.WriteString(s.Name.String())
	if len(s.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(s.Extras, ","))
		b.WriteString("]")
	}
	for i, c := range s.Constraints {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(string(c.Op))
		b.WriteString(c.Version)
	}
	if s.Build != "" && len(s.Constraints) == 1 && s.Constraints[0].Op == OpFuzzy {
		b.WriteString("=")
		b.WriteString(s.Build)
	}
	if s.Marker != "" {
		b.WriteString(" ; ")
		b.WriteString(s.Marker)
	}
	return b.String()
}

// Satisfies reports whether the given concrete version meets every
// constraint of the spec.
func (s MatchSpec) Satisfies(version string) (bool, error) {
	v, err := ParseVersion(version)
	if err != nil {
		return false, err
	}
	for _, c := range s.Constraints {
		ok, err := c.matches(v)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (c Constraint) matches(v Version) (bool, error) {
	wildcard := strings.Contains(c.Version, "*")

	switch c.Op {
	case OpFuzzy:
		return matchesPrefix(c.Version, v)
	case OpEqual:
		if wildcard {
			return matchesPrefix(c.Version, v)
		}
		cv, err := ParseVersion(c.Version)
		if err != nil {
			return false, err
		}
		return v.Compare(cv) == 0, nil
	case OpNotEqual:
		if wildcard {
			ok, err := matchesPrefix(c.Version, v)
			return !ok, err
		}
		cv, err := ParseVersion(c.Version)
		if err != nil {
			return false, err
		}
		return v.Compare(cv) != 0, nil
	case OpCompatible:
		cv, err := ParseVersion(c.Version)
		if err != nil {
			return false, err
		}
		if v.Compare(cv) < 0 {
			return false, nil
		}
		if i := strings.LastIndexByte(c.Version, '.'); i > 0 {
			return matchesPrefix(c.Version[:i], v)
		}
		return true, nil
	case OpGreater, OpGreaterEq, OpLess, OpLessEq:
		cv, err := ParseVersion(c.Version)
		if err != nil {
			return false, err
		}
		cmp := v.Compare(cv)
		switch c.Op {
		case OpGreater:
			return cmp > 0, nil
		case OpGreaterEq:
			return cmp >= 0, nil
		case OpLess:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	}
	return false, zerr.With(ErrInvalidSpec, "op", string(c.Op))
}

// matchesPrefix reports whether v starts with the given version prefix,
// comparing segment-wise so "1.07" and "1.7" agree.
func matchesPrefix(prefix string, v Version) (bool, error) {
	prefix = strings.TrimSuffix(strings.TrimSuffix(prefix, "*"), ".")
	if prefix == "" {
		return true, nil
	}
	pv, err := ParseVersion(prefix)
	if err != nil {
		return false, err
	}
	if pv.epoch != v.epoch {
		return false, nil
	}
	for i := range pv.segments {
		if compareSegments(pv.segments[i], segmentAt(v.segments, i)) != 0 {
			return false, nil
		}
	}
	return true, nil
}
