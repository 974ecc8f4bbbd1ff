package parsers

import (
	"encoding/json"
	"strings"

	"github.com/reqlint/reqlint/internal/models"
)

// PackageJSONParser parses package.json files (direct dependencies only)
type PackageJSONParser struct{}

// CanParse returns true for package.json files
func (p *PackageJSONParser) CanParse(filename string) bool {
	return filename == "package.json"
}

// packageJSON represents the structure of package.json
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Parse extracts requirements from package.json content
func (p *PackageJSONParser) Parse(filepath string, content []byte) (*Result, error) {
	var pkg packageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, err
	}

	res := &Result{}
	for name, rng := range pkg.Dependencies {
		res.Requirements = append(res.Requirements, npmRequirement(filepath, name, rng))
	}
	for name, rng := range pkg.DevDependencies {
		res.Requirements = append(res.Requirements, npmRequirement(filepath, name, rng))
	}

	return res, nil
}

// npmRequirement converts an npm range expression into a requirement.
// Caret and tilde ranges become minimum-version constraints; exact
// versions become pins. Complex ranges (workspace:, tags, unions) are
// kept without specifiers.
func npmRequirement(filepath, name, rng string) models.Requirement {
	req := models.Requirement{
		Name:       name,
		Canonical:  strings.ToLower(name),
		Ecosystem:  models.EcosystemNpm,
		SourceFile: filepath,
		Raw:        name + " " + rng,
	}

	rng = strings.TrimSpace(rng)
	switch {
	case rng == "" || rng == "*" || rng == "latest":
	case strings.HasPrefix(rng, "^") || strings.HasPrefix(rng, "~"):
		req.Specifiers = []models.Specifier{{Op: ">=", Version: strings.TrimLeft(rng, "^~")}}
	case strings.HasPrefix(rng, ">="):
		req.Specifiers = []models.Specifier{{Op: ">=", Version: strings.TrimSpace(rng[2:])}}
	case len(rng) > 0 && rng[0] >= '0' && rng[0] <= '9':
		req.Specifiers = []models.Specifier{{Op: "==", Version: rng}}
	}

	return req
}
