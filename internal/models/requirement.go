package models

import (
	"regexp"
	"strings"
)

// Ecosystem represents a package ecosystem
type Ecosystem string

const (
	EcosystemPyPI  Ecosystem = "PyPI"
	EcosystemNpm   Ecosystem = "npm"
	EcosystemGo    Ecosystem = "Go"
	EcosystemConda Ecosystem = "Conda"
)

// Specifier is a single version-constraint clause, e.g. ">=1.2.3"
type Specifier struct {
	Op      string
	Version string
}

// String returns the clause as written in a manifest
func (s Specifier) String() string {
	return s.Op + s.Version
}

// Requirement represents a single declared dependency
type Requirement struct {
	Name       string
	Canonical  string // PEP 503 normalized form of Name
	Extras     []string
	Specifiers []Specifier
	URL        string // Direct source URL, overrides registry resolution
	Marker     string // Environment marker, stored verbatim
	Editable   bool
	Ecosystem  Ecosystem
	SourceFile string // File where this requirement was declared
	Line       int    // Line number in source file (if available)
	Raw        string // Logical line as written, comment stripped
}

// Pinned returns the exact version if the requirement carries an
// equality pin, and whether such a pin exists.
func (r Requirement) Pinned() (string, bool) {
	for _, s := range r.Specifiers {
		if s.Op == "==" && !strings.HasSuffix(s.Version, ".*") {
			return s.Version, true
		}
		if s.Op == "===" {
			return s.Version, true
		}
	}
	return "", false
}

// SpecString returns the comma-joined constraint expression
func (r Requirement) SpecString() string {
	parts := make([]string, 0, len(r.Specifiers))
	for _, s := range r.Specifiers {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, ",")
}

// String returns a human-readable representation
func (r Requirement) String() string {
	if r.URL != "" && r.Name == "" {
		return r.URL
	}
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
	} else if len(r.Specifiers) > 0 {
		b.WriteString(r.SpecString())
	}
	return b.String()
}

var canonicalRe = regexp.MustCompile(`[-_.]+`)

// CanonicalName normalizes a package name per PEP 503: lowercase with
// runs of "-", "_" and "." collapsed into a single "-". Registries treat
// all spellings of the same canonical name as one package.
func CanonicalName(name string) string {
	return canonicalRe.ReplaceAllString(strings.ToLower(name), "-")
}
