// Package pep440 implements parsing and ordering of Python package
// versions and version specifiers as accepted by pip-style manifests.
package pep440

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// PreRelease is a pre-release segment such as "a1", "b2" or "rc1"
type PreRelease struct {
	Label string // normalized to "a", "b" or "rc"
	Num   int
}

// Version is a parsed package version
type Version struct {
	Epoch   int
	Release []int
	Pre     *PreRelease
	Post    *int
	Dev     *int
	Local   string

	original string
}

var versionRe = regexp.MustCompile(
	`^(?:(\d+)!)?` + // epoch
		`(\d+(?:\.\d+)*)` + // release
		`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d*))?` + // pre
		`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d*)))?` + // post
		`(?:[-_.]?dev[-_.]?(\d*))?` + // dev
		`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`) // local

// NewVersion parses a version string. Parsing is case-insensitive and
// tolerates surrounding whitespace and a leading "v".
func NewVersion(s string) (*Version, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.TrimPrefix(normalized, "v")

	m := versionRe.FindStringSubmatch(normalized)
	if m == nil {
		return nil, fmt.Errorf("invalid version %q", s)
	}

	v := &Version{original: normalized}

	if m[1] != "" {
		v.Epoch, _ = strconv.Atoi(m[1])
	}

	for _, part := range strings.Split(m[2], ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: release segment %q", s, part)
		}
		v.Release = append(v.Release, n)
	}

	if m[3] != "" {
		v.Pre = &PreRelease{Label: normalizePreLabel(m[3]), Num: atoiOrZero(m[4])}
	}

	if m[5] != "" {
		// Implicit post release, e.g. "1.0-1"
		n := atoiOrZero(m[5])
		v.Post = &n
	} else if m[6] != "" {
		n := atoiOrZero(m[7])
		v.Post = &n
	}

	// The dev group only matched if "dev" was present; the submatch is the
	// optional number, so detect presence via the original string.
	if devPresent(normalized, m) {
		n := atoiOrZero(m[8])
		v.Dev = &n
	}

	v.Local = m[9]

	return v, nil
}

// devPresent reports whether a dev segment matched. The dev number
// submatch cannot distinguish "1.0.dev" from "1.0", so check the text.
func devPresent(normalized string, m []string) bool {
	if m[8] != "" {
		return true
	}
	// Strip local part before looking for a trailing dev marker.
	s := normalized
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	return strings.HasSuffix(strings.TrimRight(s, "-_."), "dev")
}

// MustParse parses a version and panics on failure. For tests and constants.
func MustParse(s string) *Version {
	v, err := NewVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func normalizePreLabel(label string) string {
	switch label {
	case "alpha":
		return "a"
	case "beta":
		return "b"
	case "c", "pre", "preview":
		return "rc"
	}
	return label
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// IsPrerelease reports whether the version is a pre-release or dev release
func (v *Version) IsPrerelease() bool {
	return v.Pre != nil || v.Dev != nil
}

// String returns the version as parsed (lowercased, without leading "v")
func (v *Version) String() string {
	return v.original
}

// Compare returns -1, 0 or 1 ordering v against o
func (v *Version) Compare(o *Version) int {
	if v.Epoch != o.Epoch {
		return cmpInt(v.Epoch, o.Epoch)
	}
	if c := cmpRelease(v.Release, o.Release); c != 0 {
		return c
	}
	if c := cmpPre(v, o); c != 0 {
		return c
	}
	if c := cmpInt(postKey(v), postKey(o)); c != 0 {
		return c
	}
	if c := cmpInt(devKey(v), devKey(o)); c != 0 {
		return c
	}
	return cmpLocal(v.Local, o.Local)
}

// LessThan reports whether v orders before o
func (v *Version) LessThan(o *Version) bool {
	return v.Compare(o) < 0
}

// Equal reports whether v and o are the same version
func (v *Version) Equal(o *Version) bool {
	return v.Compare(o) == 0
}

// baseEqual reports whether the epoch and (padded) release match
func (v *Version) baseEqual(o *Version) bool {
	return v.Epoch == o.Epoch && cmpRelease(v.Release, o.Release) == 0
}

// withoutLocal returns v with the local segment stripped
func (v *Version) withoutLocal() *Version {
	if v.Local == "" {
		return v
	}
	c := *v
	c.Local = ""
	return &c
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cmpRelease compares release tuples with zero padding, so 1.0 == 1.0.0
func cmpRelease(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if c := cmpInt(x, y); c != 0 {
			return c
		}
	}
	return 0
}

// preRank orders dev-only releases before pre-releases before final releases
func preRank(v *Version) int {
	switch {
	case v.Pre != nil:
		return 0
	case v.Post == nil && v.Dev != nil:
		return -1
	}
	return 1
}

func cmpPre(a, b *Version) int {
	if c := cmpInt(preRank(a), preRank(b)); c != 0 {
		return c
	}
	if a.Pre == nil || b.Pre == nil {
		return 0
	}
	// "a" < "b" < "rc" holds lexicographically
	if c := strings.Compare(a.Pre.Label, b.Pre.Label); c != 0 {
		return c
	}
	return cmpInt(a.Pre.Num, b.Pre.Num)
}

func postKey(v *Version) int {
	if v.Post == nil {
		return -1
	}
	return *v.Post
}

func devKey(v *Version) int {
	if v.Dev == nil {
		return math.MaxInt
	}
	return *v.Dev
}

// cmpLocal compares local segments: absent sorts first, then segment by
// segment with numeric segments comparing greater than lexical ones.
func cmpLocal(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}

	as := splitLocal(a)
	bs := splitLocal(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.Atoi(as[i])
		bn, bErr := strconv.Atoi(bs[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := cmpInt(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return 1
		case bErr == nil:
			return -1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(as), len(bs))
}

func splitLocal(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
}

// Sort orders versions ascending in place
func Sort(vs []*Version) {
	sort.Slice(vs, func(i, j int) bool {
		return vs[i].LessThan(vs[j])
	})
}
