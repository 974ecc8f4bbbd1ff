package reporter

import "github.com/reqlint/reqlint/internal/models"

// Reporter is the interface for output formatters
type Reporter interface {
	// Report generates output for the given lint report
	Report(report *models.Report) ([]byte, error)
}

// Get returns a reporter for the specified format
func Get(format string) Reporter {
	switch format {
	case "json":
		return &JSONReporter{}
	case "sarif":
		return &SARIFReporter{}
	default:
		return &TerminalReporter{}
	}
}
