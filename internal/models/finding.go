package models

// Severity classifies how serious a finding is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding represents a single diagnostic produced by the linter
type Finding struct {
	Rule        string // Stable rule ID, e.g. "REQ003"
	Severity    Severity
	Message     string
	Requirement Requirement // Carries name, source file and line position
}

// Findings is a list of diagnostics with counting helpers
type Findings []Finding

// Errors returns the number of error-severity findings
func (fs Findings) Errors() int {
	n := 0
	for _, f := range fs {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings returns the number of warning-severity findings
func (fs Findings) Warnings() int {
	n := 0
	for _, f := range fs {
		if f.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Report bundles lint results with scan totals for the reporters
type Report struct {
	Findings         Findings
	RequirementCount int
	FileCount        int
}
