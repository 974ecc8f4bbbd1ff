package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reqlint/reqlint/internal/models"
)

// TerminalReporter outputs findings in a human-readable terminal format
type TerminalReporter struct{}

// Report generates terminal output for the given lint report
func (r *TerminalReporter) Report(report *models.Report) ([]byte, error) {
	if len(report.Findings) == 0 {
		return []byte(fmt.Sprintf("No problems found in %d requirements across %d files.\n",
			report.RequirementCount, report.FileCount)), nil
	}

	var sb strings.Builder

	errors := report.Findings.Errors()
	warnings := report.Findings.Warnings()

	sb.WriteString(fmt.Sprintf("\nFound %d problems (%d errors, %d warnings) in %d requirements across %d files\n",
		len(report.Findings), errors, warnings, report.RequirementCount, report.FileCount))
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	byFile := make(map[string]models.Findings)
	var files []string
	for _, f := range report.Findings {
		file := f.Requirement.SourceFile
		if _, seen := byFile[file]; !seen {
			files = append(files, file)
		}
		byFile[file] = append(byFile[file], f)
	}
	sort.Strings(files)

	for _, file := range files {
		name := file
		if name == "" {
			name = "(unknown file)"
		}
		sb.WriteString("\n" + name + "\n")

		findings := byFile[file]
		sort.SliceStable(findings, func(i, j int) bool {
			return findings[i].Requirement.Line < findings[j].Requirement.Line
		})

		for _, f := range findings {
			marker := "⚠"
			if f.Severity == models.SeverityError {
				marker = "✖"
			}

			pos := ""
			if f.Requirement.Line > 0 {
				pos = fmt.Sprintf(":%d", f.Requirement.Line)
			}

			sb.WriteString(fmt.Sprintf("  %s %s%s  [%s] %s\n", marker, name, pos, f.Rule, f.Message))
		}
	}

	sb.WriteString("\n")
	return []byte(sb.String()), nil
}
