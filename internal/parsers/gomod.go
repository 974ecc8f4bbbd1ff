package parsers

import (
	"strings"

	"github.com/reqlint/reqlint/internal/models"
	"golang.org/x/mod/modfile"
)

// GoModParser parses go.mod files
type GoModParser struct {
	IncludeIndirect bool // Whether to include indirect dependencies
}

// CanParse returns true for go.mod files
func (p *GoModParser) CanParse(filename string) bool {
	return filename == "go.mod"
}

// Parse extracts requirements from go.mod content
func (p *GoModParser) Parse(filepath string, content []byte) (*Result, error) {
	mod, err := modfile.Parse(filepath, content, nil)
	if err != nil {
		return nil, err
	}

	res := &Result{}

	for _, req := range mod.Require {
		if req.Indirect && !p.IncludeIndirect {
			continue
		}

		version := strings.TrimPrefix(req.Mod.Version, "v")

		line := 0
		if req.Syntax != nil {
			line = req.Syntax.Start.Line
		}

		res.Requirements = append(res.Requirements, models.Requirement{
			Name:       req.Mod.Path,
			Canonical:  strings.ToLower(req.Mod.Path),
			Specifiers: []models.Specifier{{Op: "==", Version: version}},
			Ecosystem:  models.EcosystemGo,
			SourceFile: filepath,
			Line:       line,
			Raw:        req.Mod.Path + " " + req.Mod.Version,
		})
	}

	return res, nil
}
