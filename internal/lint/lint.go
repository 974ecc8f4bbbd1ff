// Package lint validates scanned requirements and produces findings
// with stable rule IDs.
package lint

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"

	"github.com/reqlint/reqlint/internal/models"
	"github.com/reqlint/reqlint/internal/pep440"
	"github.com/reqlint/reqlint/internal/scanner"
)

// Rule IDs. REQ0xx are errors, REQ1xx are warnings.
const (
	RuleSyntax        = "REQ001" // line does not parse
	RuleInvalidSpec   = "REQ002" // version or specifier clause is invalid
	RuleUnsatisfiable = "REQ003" // specifier set admits no version
	RuleConflict      = "REQ004" // same package pinned to different versions
	RuleDuplicate     = "REQ101" // package declared more than once
	RuleUnpinned      = "REQ102" // no exact pin
	RuleDirectURL     = "REQ103" // direct URL bypasses the registry
	RuleSpelling      = "REQ104" // same package spelled differently
)

// Descriptions maps rule IDs to one-line summaries, used by reporters
var Descriptions = map[string]string{
	RuleSyntax:        "Requirement line does not parse",
	RuleInvalidSpec:   "Version specifier is invalid",
	RuleUnsatisfiable: "Version constraints admit no version",
	RuleConflict:      "Package is pinned to conflicting versions",
	RuleDuplicate:     "Package is declared more than once",
	RuleUnpinned:      "Requirement is not pinned to an exact version",
	RuleDirectURL:     "Direct URL requirement bypasses the registry",
	RuleSpelling:      "Package name is spelled inconsistently",
}

// Linter applies validation rules to scan results
type Linter struct {
	config *models.Config
}

// New creates a Linter with the given configuration
func New(config *models.Config) *Linter {
	return &Linter{config: config}
}

// Run produces a report for the given scan result. Strict mode escalates
// warnings to errors; disabled rules are dropped.
func (l *Linter) Run(res *scanner.Result) *models.Report {
	var findings models.Findings

	for _, perr := range res.Errors {
		findings = append(findings, models.Finding{
			Rule:     RuleSyntax,
			Severity: models.SeverityError,
			Message:  perr.Msg,
			Requirement: models.Requirement{
				SourceFile: perr.File,
				Line:       perr.Line,
			},
		})
	}

	for _, req := range res.Requirements {
		findings = append(findings, l.checkRequirement(req)...)
	}
	findings = append(findings, l.checkDuplicates(res.Requirements)...)

	filtered := make(models.Findings, 0, len(findings))
	for _, f := range findings {
		if l.config.RuleDisabled(f.Rule) {
			continue
		}
		if l.config.Strict && f.Severity == models.SeverityWarning {
			f.Severity = models.SeverityError
		}
		filtered = append(filtered, f)
	}

	return &models.Report{
		Findings:         filtered,
		RequirementCount: len(res.Requirements),
		FileCount:        res.Files,
	}
}

// checkRequirement applies per-declaration rules
func (l *Linter) checkRequirement(req models.Requirement) models.Findings {
	var findings models.Findings

	if req.URL != "" && !req.Editable {
		findings = append(findings, models.Finding{
			Rule:        RuleDirectURL,
			Severity:    models.SeverityWarning,
			Message:     fmt.Sprintf("%s is fetched from a direct URL instead of the registry", displayName(req)),
			Requirement: req,
		})
	}

	switch req.Ecosystem {
	case models.EcosystemPyPI:
		findings = append(findings, l.checkPyPI(req)...)
	default:
		findings = append(findings, l.checkGeneric(req)...)
	}

	return findings
}

// checkPyPI validates specifier clauses against the pip constraint
// grammar and looks for contradictions inside one declaration
func (l *Linter) checkPyPI(req models.Requirement) models.Findings {
	var findings models.Findings

	if req.URL != "" {
		return findings
	}

	var set pep440.SpecifierSet
	valid := true
	for _, s := range req.Specifiers {
		spec, err := pep440.ParseSpecifier(s.Op, s.Version)
		if err != nil {
			valid = false
			findings = append(findings, models.Finding{
				Rule:        RuleInvalidSpec,
				Severity:    models.SeverityError,
				Message:     fmt.Sprintf("%s: %v", req.Name, err),
				Requirement: req,
			})
			continue
		}
		set = append(set, spec)
	}

	if valid && set.Conflicts() {
		findings = append(findings, models.Finding{
			Rule:        RuleUnsatisfiable,
			Severity:    models.SeverityError,
			Message:     fmt.Sprintf("%s: constraints %s admit no version", req.Name, req.SpecString()),
			Requirement: req,
		})
	}

	if _, pinned := req.Pinned(); !pinned {
		findings = append(findings, models.Finding{
			Rule:        RuleUnpinned,
			Severity:    models.SeverityWarning,
			Message:     fmt.Sprintf("%s is not pinned to an exact version", req.Name),
			Requirement: req,
		})
	}

	return findings
}

// checkGeneric validates versions of non-PyPI requirements with the
// flexible semver parser
func (l *Linter) checkGeneric(req models.Requirement) models.Findings {
	var findings models.Findings

	for _, s := range req.Specifiers {
		if _, err := goversion.NewVersion(s.Version); err != nil {
			findings = append(findings, models.Finding{
				Rule:        RuleInvalidSpec,
				Severity:    models.SeverityError,
				Message:     fmt.Sprintf("%s: invalid version %q", req.Name, s.Version),
				Requirement: req,
			})
		}
	}

	return findings
}

// checkDuplicates groups requirements by canonical name within an
// ecosystem and flags repeats, conflicting pins and inconsistent spellings
func (l *Linter) checkDuplicates(reqs []models.Requirement) models.Findings {
	var findings models.Findings

	type key struct {
		eco  models.Ecosystem
		name string
	}
	groups := make(map[key][]models.Requirement)
	var order []key
	for _, req := range reqs {
		if req.Canonical == "" {
			continue
		}
		k := key{req.Ecosystem, req.Canonical}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], req)
	}

	for _, k := range order {
		group := groups[k]
		if len(group) < 2 {
			continue
		}

		first := group[0]
		firstPin, firstPinned := first.Pinned()

		for _, req := range group[1:] {
			pin, pinned := req.Pinned()
			if firstPinned && pinned && !sameVersion(req.Ecosystem, firstPin, pin) {
				findings = append(findings, models.Finding{
					Rule:     RuleConflict,
					Severity: models.SeverityError,
					Message: fmt.Sprintf("%s is pinned to %s here but %s at %s:%d",
						req.Name, pin, firstPin, first.SourceFile, first.Line),
					Requirement: req,
				})
				continue
			}

			findings = append(findings, models.Finding{
				Rule:     RuleDuplicate,
				Severity: models.SeverityWarning,
				Message: fmt.Sprintf("%s is already declared at %s:%d",
					req.Name, first.SourceFile, first.Line),
				Requirement: req,
			})

			if req.Name != first.Name {
				findings = append(findings, models.Finding{
					Rule:     RuleSpelling,
					Severity: models.SeverityWarning,
					Message: fmt.Sprintf("%s is also spelled %s at %s:%d",
						req.Name, first.Name, first.SourceFile, first.Line),
					Requirement: req,
				})
			}
		}
	}

	return findings
}

// sameVersion compares two pinned versions with ecosystem-appropriate
// semantics, falling back to string equality
func sameVersion(eco models.Ecosystem, a, b string) bool {
	if a == b {
		return true
	}
	if eco == models.EcosystemPyPI {
		va, errA := pep440.NewVersion(a)
		vb, errB := pep440.NewVersion(b)
		return errA == nil && errB == nil && va.Equal(vb)
	}
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	return errA == nil && errB == nil && va.Equal(vb)
}

func displayName(req models.Requirement) string {
	if req.Name != "" {
		return req.Name
	}
	return req.URL
}
