package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqlint/reqlint/internal/models"
	"github.com/reqlint/reqlint/internal/parsers"
	"github.com/reqlint/reqlint/internal/scanner"
)

func pypiReq(name string, line int, specs ...models.Specifier) models.Requirement {
	return models.Requirement{
		Name:       name,
		Canonical:  models.CanonicalName(name),
		Specifiers: specs,
		Ecosystem:  models.EcosystemPyPI,
		SourceFile: "requirements.txt",
		Line:       line,
	}
}

func newResult(reqs ...models.Requirement) *scanner.Result {
	res := &scanner.Result{Files: 1}
	res.Requirements = reqs
	return res
}

func rulesOf(fs models.Findings) []string {
	var rules []string
	for _, f := range fs {
		rules = append(rules, f.Rule)
	}
	return rules
}

func TestLinterParseErrors(t *testing.T) {
	res := newResult()
	res.Errors = []*parsers.ParseError{
		{File: "requirements.txt", Line: 3, Msg: `invalid version specifier ">== 1.0"`},
	}

	report := New(models.DefaultConfig()).Run(res)

	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, RuleSyntax, f.Rule)
	assert.Equal(t, models.SeverityError, f.Severity)
	assert.Equal(t, 3, f.Requirement.Line)
}

func TestLinterRules(t *testing.T) {
	tests := []struct {
		name      string
		reqs      []models.Requirement
		wantRules []string
	}{
		{
			name:      "pinned requirement is clean",
			reqs:      []models.Requirement{pypiReq("numpy", 1, models.Specifier{Op: "==", Version: "1.26.0"})},
			wantRules: nil,
		},
		{
			name:      "unpinned requirement",
			reqs:      []models.Requirement{pypiReq("numpy", 1, models.Specifier{Op: ">=", Version: "1.13.3"})},
			wantRules: []string{RuleUnpinned},
		},
		{
			name:      "bare requirement",
			reqs:      []models.Requirement{pypiReq("pyyaml", 1)},
			wantRules: []string{RuleUnpinned},
		},
		{
			name:      "invalid specifier version",
			reqs:      []models.Requirement{pypiReq("numpy", 1, models.Specifier{Op: ">=", Version: "not.a.version"})},
			wantRules: []string{RuleInvalidSpec, RuleUnpinned},
		},
		{
			name: "unsatisfiable range",
			reqs: []models.Requirement{pypiReq("torch", 1,
				models.Specifier{Op: ">=", Version: "2.0"},
				models.Specifier{Op: "<", Version: "1.0"})},
			wantRules: []string{RuleUnsatisfiable, RuleUnpinned},
		},
		{
			name: "conflicting pins",
			reqs: []models.Requirement{
				pypiReq("numpy", 1, models.Specifier{Op: "==", Version: "1.26.0"}),
				pypiReq("numpy", 7, models.Specifier{Op: "==", Version: "1.24.0"}),
			},
			wantRules: []string{RuleConflict},
		},
		{
			name: "compatible duplicate",
			reqs: []models.Requirement{
				pypiReq("numpy", 1, models.Specifier{Op: "==", Version: "1.26.0"}),
				pypiReq("numpy", 7, models.Specifier{Op: "==", Version: "1.26.0"}),
			},
			wantRules: []string{RuleDuplicate},
		},
		{
			name: "inconsistent spelling",
			reqs: []models.Requirement{
				pypiReq("PyYAML", 1, models.Specifier{Op: "==", Version: "6.0"}),
				pypiReq("pyyaml", 7, models.Specifier{Op: "==", Version: "6.0"}),
			},
			wantRules: []string{RuleDuplicate, RuleSpelling},
		},
		{
			name: "direct URL",
			reqs: []models.Requirement{{
				Name:       "custom",
				Canonical:  "custom",
				URL:        "https://example.com/custom.zip",
				Ecosystem:  models.EcosystemPyPI,
				SourceFile: "requirements.txt",
				Line:       2,
			}},
			wantRules: []string{RuleDirectURL},
		},
		{
			name: "editable requirement is tolerated",
			reqs: []models.Requirement{{
				Name:      "devpkg",
				Canonical: "devpkg",
				URL:       "git+https://example.com/devpkg.git#egg=devpkg",
				Editable:  true,
				Ecosystem: models.EcosystemPyPI,
			}},
			wantRules: nil,
		},
		{
			name: "invalid go version",
			reqs: []models.Requirement{{
				Name:       "example.com/mod",
				Canonical:  "example.com/mod",
				Specifiers: []models.Specifier{{Op: "==", Version: "???"}},
				Ecosystem:  models.EcosystemGo,
				SourceFile: "go.mod",
			}},
			wantRules: []string{RuleInvalidSpec},
		},
		{
			name: "valid go pin is clean",
			reqs: []models.Requirement{{
				Name:       "example.com/mod",
				Canonical:  "example.com/mod",
				Specifiers: []models.Specifier{{Op: "==", Version: "1.8.0"}},
				Ecosystem:  models.EcosystemGo,
				SourceFile: "go.mod",
			}},
			wantRules: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := New(models.DefaultConfig()).Run(newResult(tt.reqs...))
			assert.Equal(t, tt.wantRules, rulesOf(report.Findings))
		})
	}
}

func TestLinterStrictMode(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.Strict = true

	report := New(cfg).Run(newResult(pypiReq("numpy", 1, models.Specifier{Op: ">=", Version: "1.13.3"})))

	require.Len(t, report.Findings, 1)
	assert.Equal(t, RuleUnpinned, report.Findings[0].Rule)
	assert.Equal(t, models.SeverityError, report.Findings[0].Severity)
	assert.Equal(t, 1, report.Findings.Errors())
}

func TestLinterDisabledRules(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.DisabledRules = []string{RuleUnpinned}

	report := New(cfg).Run(newResult(pypiReq("numpy", 1, models.Specifier{Op: ">=", Version: "1.13.3"})))

	assert.Empty(t, report.Findings)
	assert.Equal(t, 1, report.RequirementCount)
}

func TestLinterReportTotals(t *testing.T) {
	res := newResult(
		pypiReq("numpy", 1, models.Specifier{Op: "==", Version: "1.26.0"}),
		pypiReq("tqdm", 2, models.Specifier{Op: ">=", Version: "4.35.0"}),
	)
	res.Files = 2

	report := New(models.DefaultConfig()).Run(res)

	assert.Equal(t, 2, report.RequirementCount)
	assert.Equal(t, 2, report.FileCount)
	assert.Equal(t, 0, report.Findings.Errors())
	assert.Equal(t, 1, report.Findings.Warnings())
}
