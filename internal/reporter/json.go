package reporter

import (
	"encoding/json"

	"github.com/reqlint/reqlint/internal/models"
)

// JSONReporter outputs findings in JSON format
type JSONReporter struct{}

// jsonOutput represents the JSON output structure
type jsonOutput struct {
	Summary  jsonSummary   `json:"summary"`
	Findings []jsonFinding `json:"findings"`
}

type jsonSummary struct {
	Errors       int `json:"errors"`
	Warnings     int `json:"warnings"`
	Requirements int `json:"requirements"`
	Files        int `json:"files"`
}

type jsonFinding struct {
	Rule       string      `json:"rule"`
	Severity   string      `json:"severity"`
	Message    string      `json:"message"`
	Package    jsonPackage `json:"package,omitempty"`
	SourceFile string      `json:"source_file"`
	Line       int         `json:"line,omitempty"`
}

type jsonPackage struct {
	Name      string `json:"name,omitempty"`
	Spec      string `json:"spec,omitempty"`
	URL       string `json:"url,omitempty"`
	Ecosystem string `json:"ecosystem,omitempty"`
}

// Report generates JSON output for the given lint report
func (r *JSONReporter) Report(report *models.Report) ([]byte, error) {
	output := jsonOutput{
		Summary: jsonSummary{
			Errors:       report.Findings.Errors(),
			Warnings:     report.Findings.Warnings(),
			Requirements: report.RequirementCount,
			Files:        report.FileCount,
		},
		Findings: make([]jsonFinding, 0, len(report.Findings)),
	}

	for _, f := range report.Findings {
		output.Findings = append(output.Findings, jsonFinding{
			Rule:     f.Rule,
			Severity: string(f.Severity),
			Message:  f.Message,
			Package: jsonPackage{
				Name:      f.Requirement.Name,
				Spec:      f.Requirement.SpecString(),
				URL:       f.Requirement.URL,
				Ecosystem: string(f.Requirement.Ecosystem),
			},
			SourceFile: f.Requirement.SourceFile,
			Line:       f.Requirement.Line,
		})
	}

	return json.MarshalIndent(output, "", "  ")
}
