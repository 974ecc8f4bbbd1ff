package parsers

import (
	"fmt"

	"github.com/reqlint/reqlint/internal/models"
)

// ParseError describes a malformed manifest line. Parsing continues past
// malformed lines; the errors travel alongside the well-formed requirements.
type ParseError struct {
	File string
	Line int
	Msg  string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// Result is the outcome of parsing one or more manifests
type Result struct {
	Requirements []models.Requirement
	Errors       []*ParseError
}

// Merge appends another result's requirements and errors
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Requirements = append(r.Requirements, other.Requirements...)
	r.Errors = append(r.Errors, other.Errors...)
}

// Parser is the interface for dependency manifest parsers
type Parser interface {
	// CanParse returns true if this parser can handle the given filename
	CanParse(filename string) bool

	// Parse extracts requirements from the file content
	Parse(filepath string, content []byte) (*Result, error)
}

// GetAllParsers returns all available parsers
func GetAllParsers() []Parser {
	return []Parser{
		&RequirementsParser{},
		&PyProjectParser{},
		&CondaEnvParser{},
		&GoModParser{},
		&PackageJSONParser{},
	}
}
