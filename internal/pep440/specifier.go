package pep440

import (
	"fmt"
	"strings"
)

// Specifier is a single version-constraint clause, e.g. ">=1.2" or "==1.4.*"
type Specifier struct {
	Op  string
	Raw string // version text as written

	version  *Version // nil only for "==="
	wildcard bool
}

var operators = []string{"===", "==", "!=", "~=", "<=", ">=", "<", ">"}

// ParseClause parses a single clause like "== 1.0" or ">=2.28.0"
func ParseClause(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return ParseSpecifier(op, strings.TrimSpace(s[len(op):]))
		}
	}
	return Specifier{}, fmt.Errorf("invalid specifier %q: missing comparison operator", s)
}

// ParseSpecifier parses an operator and version text into a Specifier
func ParseSpecifier(op, ver string) (Specifier, error) {
	spec := Specifier{Op: op, Raw: ver}

	if ver == "" {
		return Specifier{}, fmt.Errorf("invalid specifier %q: missing version", op)
	}

	switch op {
	case "===":
		// Arbitrary string equality, the version is not interpreted
		return spec, nil
	case "==", "!=":
		if strings.HasSuffix(ver, ".*") {
			spec.wildcard = true
			ver = strings.TrimSuffix(ver, ".*")
		}
	case "~=":
		// Compatible release needs at least two release segments
	case "<=", ">=", "<", ">":
	default:
		return Specifier{}, fmt.Errorf("invalid specifier operator %q", op)
	}

	v, err := NewVersion(ver)
	if err != nil {
		return Specifier{}, fmt.Errorf("invalid specifier %s%s: %w", op, spec.Raw, err)
	}
	if op == "~=" && len(v.Release) < 2 {
		return Specifier{}, fmt.Errorf("invalid specifier ~=%s: compatible release needs at least two release segments", spec.Raw)
	}
	if op == "~=" && v.Local != "" {
		return Specifier{}, fmt.Errorf("invalid specifier ~=%s: local version not allowed", spec.Raw)
	}
	spec.version = v

	return spec, nil
}

// String returns the clause as written
func (s Specifier) String() string {
	return s.Op + s.Raw
}

// Check reports whether v satisfies the clause. Pre-release admission
// policy is applied by SpecifierSet.Match, not here.
func (s Specifier) Check(v *Version) bool {
	switch s.Op {
	case "===":
		return strings.TrimSpace(strings.ToLower(s.Raw)) == v.String()
	case "==":
		if s.wildcard {
			return s.prefixMatch(v)
		}
		return s.compareTo(v) == 0
	case "!=":
		if s.wildcard {
			return !s.prefixMatch(v)
		}
		return s.compareTo(v) != 0
	case "<=":
		return v.withoutLocal().Compare(s.version) <= 0
	case ">=":
		return v.withoutLocal().Compare(s.version) >= 0
	case "<":
		if v.withoutLocal().Compare(s.version) >= 0 {
			return false
		}
		// An exclusive upper bound does not admit pre-releases of the
		// boundary version itself unless the boundary is one.
		if !s.version.IsPrerelease() && v.IsPrerelease() && v.baseEqual(s.version) {
			return false
		}
		return true
	case ">":
		if v.withoutLocal().Compare(s.version) <= 0 {
			return false
		}
		// An exclusive lower bound does not admit post or local releases
		// of the boundary version itself.
		if s.version.Post == nil && v.Post != nil && v.baseEqual(s.version) {
			return false
		}
		if v.Local != "" && v.baseEqual(s.version) {
			return false
		}
		return true
	case "~=":
		if v.withoutLocal().Compare(s.version) < 0 {
			return false
		}
		return matchReleasePrefix(v, s.version.Epoch, s.version.Release[:len(s.version.Release)-1])
	}
	return false
}

// compareTo compares v against the clause version, ignoring the
// candidate's local segment unless the clause carries one.
func (s Specifier) compareTo(v *Version) int {
	if s.version.Local == "" {
		v = v.withoutLocal()
	}
	return v.Compare(s.version)
}

func (s Specifier) prefixMatch(v *Version) bool {
	return matchReleasePrefix(v, s.version.Epoch, s.version.Release)
}

func matchReleasePrefix(v *Version, epoch int, prefix []int) bool {
	if v.Epoch != epoch {
		return false
	}
	for i, want := range prefix {
		got := 0
		if i < len(v.Release) {
			got = v.Release[i]
		}
		if got != want {
			return false
		}
	}
	return true
}

// SpecifierSet is a comma-joined conjunction of clauses
type SpecifierSet []Specifier

// ParseSet parses a comma-separated specifier expression. An empty
// expression yields an empty set, which every version satisfies.
func ParseSet(s string) (SpecifierSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var set SpecifierSet
	for _, clause := range strings.Split(s, ",") {
		spec, err := ParseClause(clause)
		if err != nil {
			return nil, err
		}
		set = append(set, spec)
	}
	return set, nil
}

// String returns the comma-joined expression
func (set SpecifierSet) String() string {
	parts := make([]string, 0, len(set))
	for _, s := range set {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ",")
}

// Check reports whether v satisfies every clause
func (set SpecifierSet) Check(v *Version) bool {
	for _, s := range set {
		if !s.Check(v) {
			return false
		}
	}
	return true
}

// AllowsPrerelease reports whether any clause explicitly names a
// pre-release version, which opts the whole set into pre-releases.
func (set SpecifierSet) AllowsPrerelease() bool {
	for _, s := range set {
		if s.version != nil && s.version.IsPrerelease() {
			return true
		}
	}
	return false
}

// Match is Check plus the default pre-release admission policy:
// pre-release versions only match when a clause mentions one.
func (set SpecifierSet) Match(v *Version) bool {
	if v.IsPrerelease() && !set.AllowsPrerelease() {
		return false
	}
	return set.Check(v)
}

// Conflicts reports whether the conjunction provably admits no version.
// Detection is best-effort: contradictory pins, a pin excluded by another
// clause, and empty ordered ranges are caught; it never reports a
// satisfiable set as conflicting.
func (set SpecifierSet) Conflicts() bool {
	var pins []*Version
	for _, s := range set {
		if s.Op == "==" && !s.wildcard {
			pins = append(pins, s.version)
		}
	}

	for i := 1; i < len(pins); i++ {
		if !pins[i].Equal(pins[0]) {
			return true
		}
	}
	for _, pin := range pins {
		if !set.Check(pin) {
			return true
		}
	}

	type bound struct {
		v         *Version
		inclusive bool
	}
	var lower, upper *bound
	setLower := func(v *Version, inclusive bool) {
		if lower == nil || v.Compare(lower.v) > 0 {
			lower = &bound{v, inclusive}
		}
	}
	setUpper := func(v *Version, inclusive bool) {
		if upper == nil || v.Compare(upper.v) < 0 {
			upper = &bound{v, inclusive}
		}
	}

	for _, s := range set {
		switch s.Op {
		case ">=":
			setLower(s.version, true)
		case ">":
			setLower(s.version, false)
		case "<=":
			setUpper(s.version, true)
		case "<":
			setUpper(s.version, false)
		case "~=":
			setLower(s.version, true)
			prefix := s.version.Release[:len(s.version.Release)-1]
			bumped := make([]int, len(prefix))
			copy(bumped, prefix)
			bumped[len(bumped)-1]++
			setUpper(&Version{Epoch: s.version.Epoch, Release: bumped}, false)
		}
	}

	if lower != nil && upper != nil {
		c := lower.v.Compare(upper.v)
		if c > 0 {
			return true
		}
		if c == 0 && !(lower.inclusive && upper.inclusive) {
			return true
		}
	}

	return false
}
